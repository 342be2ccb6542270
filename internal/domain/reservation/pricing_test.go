//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"mobirent/internal/domain/reservation"
	"mobirent/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBaseCostCents(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		rate  int64
		want  int64
		err   error
	}{
		{"two days at 100", day(2024, 6, 1), day(2024, 6, 3), 10000, 20000, nil},
		{"single day", day(2024, 6, 1), day(2024, 6, 2), 5000, 5000, nil},
		{"week", day(2024, 6, 1), day(2024, 6, 8), 9900, 69300, nil},
		{"zero rate", day(2024, 6, 1), day(2024, 6, 3), 0, 0, reservation.ErrNonPositiveCost},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dates := reservation.ReconstructDateRange(tc.start, tc.end)
			got, err := reservation.BaseCostCents(dates, tc.rate)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBaseCostMatchesCeilDays(t *testing.T) {
	start := day(2024, 6, 1)
	for span := 1; span <= 30; span++ {
		dates := reservation.ReconstructDateRange(start, start.AddDate(0, 0, span))
		got, err := reservation.BaseCostCents(dates, 777)
		require.NoError(t, err)
		assert.Equal(t, int64(span)*777, got)
		assert.Positive(t, got)
	}
}

func TestTotalCostCents(t *testing.T) {
	lines := []reservation.AddOnLine{
		{Quantity: 2, UnitPriceCents: 1500},
		{Quantity: 1, UnitPriceCents: 500},
	}
	assert.EqualValues(t, 23500, reservation.TotalCostCents(20000, lines))
	assert.EqualValues(t, 20000, reservation.TotalCostCents(20000, nil))
}

func TestReprice(t *testing.T) {
	r := builder.NewReservationBuilder(now).
		WithDates(day(2024, 6, 1), day(2024, 6, 3)).
		WithAddOns(reservation.AddOnLine{Quantity: 1, UnitPriceCents: 3000}).
		BuildDomain()

	total, ok := reservation.RepriceCents(r, 10000)
	assert.True(t, ok)
	assert.EqualValues(t, 23000, total)

	// missing vehicle rate falls back to the stored total
	total, ok = reservation.RepriceCents(r, 0)
	assert.False(t, ok)
	assert.Equal(t, r.TotalCost().Cents(), total)
}
