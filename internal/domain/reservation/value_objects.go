package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const millisPerDay = 24 * 60 * 60 * 1000

// DateRange is a half-open rental period [start, end) with day granularity.
// Both bounds are normalized to midnight UTC so comparisons never drift
// across timezones.
type DateRange struct {
	start time.Time
	end   time.Time
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDateRange validates a booking period against "today" derived from now.
func NewDateRange(start, end, now time.Time) (DateRange, error) {
	s := truncateToDay(start)
	e := truncateToDay(end)
	if !s.Before(e) {
		return DateRange{}, ErrEndNotAfterStart
	}
	if s.Before(truncateToDay(now)) {
		return DateRange{}, ErrStartInPast
	}
	return DateRange{start: s, end: e}, nil
}

// ReconstructDateRange rebuilds a range from storage without the
// start-not-in-past check, which only applies at creation time.
func ReconstructDateRange(start, end time.Time) DateRange {
	return DateRange{start: truncateToDay(start), end: truncateToDay(end)}
}

func (d DateRange) Start() time.Time { return d.start }
func (d DateRange) End() time.Time   { return d.end }

// Days is the billable duration: ceil of the span in milliseconds over a day.
func (d DateRange) Days() int {
	ms := d.end.Sub(d.start).Milliseconds()
	days := ms / millisPerDay
	if ms%millisPerDay != 0 {
		days++
	}
	return int(days)
}

// Overlaps reports whether two ranges intersect: [d1,d2) and [d3,d4) overlap
// iff d1 < d4 and d3 < d2.
func (d DateRange) Overlaps(other DateRange) bool {
	return d.start.Before(other.end) && other.start.Before(d.end)
}

// Money is an amount in integer cents.
type Money struct {
	cents int64
}

func NewMoney(cents int64) Money {
	return Money{cents: cents}
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) IsPositive() bool {
	return m.cents > 0
}

func (m Money) Equal(other Money) bool {
	return m.cents == other.cents
}

// AddOnLine is one extra charged to a reservation. UnitPriceCents is captured
// from the catalog at attachment time and never re-read afterwards.
type AddOnLine struct {
	AddOnID        uuid.UUID
	Quantity       int
	UnitPriceCents int64
}

func (l AddOnLine) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

var (
	ErrEndNotAfterStart = errors.New("end date must be after start date")
	ErrStartInPast      = errors.New("start date cannot be before today")
)
