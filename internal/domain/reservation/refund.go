package reservation

import "time"

type RefundType string

const (
	RefundTotal   RefundType = "total"
	RefundPartial RefundType = "partial"
	RefundNone    RefundType = "none"
)

// RefundPolicy is a step function of the lead time between cancellation and
// the reservation's start date. The day thresholds are deployment
// configuration, not business constants.
type RefundPolicy struct {
	FullDays    int
	PartialDays int
	PartialRate float64
}

func DefaultRefundPolicy() RefundPolicy {
	return RefundPolicy{
		FullDays:    7,
		PartialDays: 2,
		PartialRate: 0.8,
	}
}

// leadDays is the whole-day distance from today (per now) to start.
func leadDays(now, start time.Time) int {
	today := truncateToDay(now)
	return int(truncateToDay(start).Sub(today).Hours() / 24)
}

// Calculate maps lead time to a refund amount. Deterministic for a given now.
func (p RefundPolicy) Calculate(now, start time.Time, totalCents int64) int64 {
	days := leadDays(now, start)
	switch {
	case days >= p.FullDays:
		return totalCents
	case days >= p.PartialDays:
		return int64(float64(totalCents) * p.PartialRate)
	default:
		return 0
	}
}

// Classify labels a computed refund for the cancellation response and email.
func Classify(refundCents, totalCents int64) RefundType {
	switch {
	case refundCents == totalCents && totalCents > 0:
		return RefundTotal
	case refundCents > 0:
		return RefundPartial
	default:
		return RefundNone
	}
}
