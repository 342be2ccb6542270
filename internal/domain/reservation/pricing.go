package reservation

// BaseCostCents is the rental period cost at the given daily rate:
// billable days times the rate. Fails when the result is not positive.
func BaseCostCents(dates DateRange, dailyRateCents int64) (int64, error) {
	total := int64(dates.Days()) * dailyRateCents
	if total <= 0 {
		return 0, ErrNonPositiveCost
	}
	return total, nil
}

// TotalCostCents is the base cost plus every add-on line subtotal.
func TotalCostCents(baseCents int64, lines []AddOnLine) int64 {
	total := baseCents
	for _, l := range lines {
		total += l.SubtotalCents()
	}
	return total
}

// RepriceCents recomputes a reservation's total against the currently
// assigned vehicle's rate. When the rate is unknown (vehicle snapshot
// missing) it returns the previous total unchanged and reports false so the
// caller can log the fallback instead of failing the operation.
func RepriceCents(r *Reservation, dailyRateCents int64) (int64, bool) {
	if dailyRateCents <= 0 {
		return r.TotalCost().Cents(), false
	}
	base, err := BaseCostCents(r.Dates(), dailyRateCents)
	if err != nil {
		return r.TotalCost().Cents(), false
	}
	return TotalCostCents(base, r.AddOns()), true
}
