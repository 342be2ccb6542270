//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"mobirent/internal/domain/reservation"

	"github.com/stretchr/testify/assert"
)

func TestRefundPolicyCalculate(t *testing.T) {
	policy := reservation.DefaultRefundPolicy()
	clock := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		total int64
		want  int64
	}{
		{"far in the future", day(2024, 7, 1), 20000, 20000},
		{"exactly at full threshold", day(2024, 6, 8), 20000, 20000},
		{"inside partial band", day(2024, 6, 4), 20000, 16000},
		{"exactly at partial threshold", day(2024, 6, 3), 20000, 16000},
		{"tomorrow", day(2024, 6, 2), 20000, 0},
		{"same day", day(2024, 6, 1), 20000, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := policy.Calculate(clock, tc.start, tc.total)
			assert.Equal(t, tc.want, got)

			// deterministic for a fixed now
			assert.Equal(t, got, policy.Calculate(clock, tc.start, tc.total))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, reservation.RefundTotal, reservation.Classify(20000, 20000))
	assert.Equal(t, reservation.RefundPartial, reservation.Classify(16000, 20000))
	assert.Equal(t, reservation.RefundNone, reservation.Classify(0, 20000))
}
