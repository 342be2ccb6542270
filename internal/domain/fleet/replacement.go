package fleet

import (
	"sort"

	"github.com/google/uuid"
)

// Candidates holds replacement vehicles partitioned against the original
// vehicle's daily rate. Higher-value suggestions are surfaced first: both
// partitions are sorted by rate descending.
type Candidates struct {
	HigherOrEqualPrice []*Vehicle
	LowerPrice         []*Vehicle
}

func (c Candidates) IsEmpty() bool {
	return len(c.HigherOrEqualPrice) == 0 && len(c.LowerPrice) == 0
}

// Contains reports whether id is a member of either partition. A caller's
// chosen replacement is re-validated against the freshly computed pool, never
// trusted blindly.
func (c Candidates) Contains(id uuid.UUID) bool {
	for _, v := range c.HigherOrEqualPrice {
		if v.ID() == id {
			return true
		}
	}
	for _, v := range c.LowerPrice {
		if v.ID() == id {
			return true
		}
	}
	return false
}

func (c Candidates) Find(id uuid.UUID) *Vehicle {
	for _, v := range c.HigherOrEqualPrice {
		if v.ID() == id {
			return v
		}
	}
	for _, v := range c.LowerPrice {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

// ReplacementCandidates filters the branch fleet down to vehicles that could
// substitute for the original and partitions them by price. A vehicle
// qualifies when it is eligible (available, no maintenance flag) and not
// committed to another active reservation in the period.
func ReplacementCandidates(branchFleet []*Vehicle, committed map[uuid.UUID]struct{}, originalRateCents int64) Candidates {
	var c Candidates
	for _, v := range branchFleet {
		if !v.IsEligible() {
			continue
		}
		if _, taken := committed[v.ID()]; taken {
			continue
		}
		if v.DailyRateCents() >= originalRateCents {
			c.HigherOrEqualPrice = append(c.HigherOrEqualPrice, v)
		} else {
			c.LowerPrice = append(c.LowerPrice, v)
		}
	}
	sortByRateDesc(c.HigherOrEqualPrice)
	sortByRateDesc(c.LowerPrice)
	return c
}

func sortByRateDesc(vehicles []*Vehicle) {
	sort.SliceStable(vehicles, func(i, j int) bool {
		return vehicles[i].DailyRateCents() > vehicles[j].DailyRateCents()
	})
}
