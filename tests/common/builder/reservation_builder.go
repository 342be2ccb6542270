//go:build unit

package builder

import (
	"time"

	domres "mobirent/internal/domain/reservation"
	"mobirent/internal/usecase/queries"

	"github.com/google/uuid"
)

// ReservationBuilder assembles reservation fixtures. The defaults describe a
// two-day booking at 100.00/day created "now".
type ReservationBuilder struct {
	ID             uuid.UUID
	Number         string
	UserID         uuid.UUID
	VehicleID      uuid.UUID
	PickupBranchID uuid.UUID
	ReturnBranchID uuid.UUID
	Start          time.Time
	End            time.Time
	TotalCents     int64
	Status         domres.Status
	Payment        domres.PaymentInfo
	AddOns         []domres.AddOnLine
	CreatedAt      time.Time
}

func NewReservationBuilder(now time.Time) *ReservationBuilder {
	start := now.AddDate(0, 0, 10)
	return &ReservationBuilder{
		ID:             uuid.New(),
		Number:         "RES-20240601-ABC123",
		UserID:         uuid.New(),
		VehicleID:      uuid.New(),
		PickupBranchID: uuid.New(),
		ReturnBranchID: uuid.New(),
		Start:          start,
		End:            start.AddDate(0, 0, 2),
		TotalCents:     20000,
		Status:         domres.StatusPending,
		CreatedAt:      now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) WithStatus(s domres.Status) *ReservationBuilder {
	b.Status = s
	return b
}

func (b *ReservationBuilder) WithDates(start, end time.Time) *ReservationBuilder {
	b.Start = start
	b.End = end
	return b
}

func (b *ReservationBuilder) WithAddOns(lines ...domres.AddOnLine) *ReservationBuilder {
	b.AddOns = lines
	return b
}

// BuildView produces the joined read model the handlers return.
func (b *ReservationBuilder) BuildView() *queries.ReservationView {
	addOns := make([]queries.AddOnView, len(b.AddOns))
	for i, line := range b.AddOns {
		addOns[i] = queries.AddOnView{
			AddOnID:        line.AddOnID,
			Name:           "Add-on",
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		}
	}
	return &queries.ReservationView{
		ID:               b.ID,
		Number:           b.Number,
		UserID:           b.UserID,
		UserEmail:        "customer@example.com",
		UserName:         "customer",
		VehicleID:        b.VehicleID,
		VehicleBrand:     "Toyota",
		VehicleModel:     "Corolla",
		VehiclePlate:     "AB123CD",
		PickupBranchID:   b.PickupBranchID,
		PickupBranchName: "Downtown",
		ReturnBranchID:   b.ReturnBranchID,
		ReturnBranchName: "Airport",
		StartDate:        b.Start,
		EndDate:          b.End,
		TotalCents:       b.TotalCents,
		Status:           b.Status.String(),
		AddOns:           addOns,
		CreatedAt:        b.CreatedAt,
	}
}

// BuildDomain reconstructs the aggregate as if loaded from storage.
func (b *ReservationBuilder) BuildDomain() *domres.Reservation {
	return domres.ReconstructReservation(
		b.ID,
		b.Number,
		b.UserID, b.VehicleID, b.PickupBranchID, b.ReturnBranchID,
		domres.ReconstructDateRange(b.Start, b.End),
		domres.NewMoney(b.TotalCents),
		b.Status,
		b.Payment,
		b.AddOns,
		nil,
		nil, nil,
		b.CreatedAt,
	)
}
