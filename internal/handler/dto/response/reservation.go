package response

import (
	"time"

	"mobirent/internal/usecase/commands"
	"mobirent/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationResponse struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number"`
	UserID           uuid.UUID       `json:"userId"`
	UserEmail        string          `json:"userEmail"`
	VehicleID        uuid.UUID       `json:"vehicleId"`
	VehicleLabel     string          `json:"vehicleLabel"`
	PickupBranchID   uuid.UUID       `json:"pickupBranchId"`
	PickupBranchName string          `json:"pickupBranchName"`
	ReturnBranchID   uuid.UUID       `json:"returnBranchId"`
	ReturnBranchName string          `json:"returnBranchName"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	TotalCents       int64           `json:"totalCents"`
	Status           string          `json:"status"`
	PaymentStatus    *string         `json:"paymentStatus,omitempty"`
	AddOns           []AddOnResponse `json:"addOns"`
	RefundCents      *int64          `json:"refundCents,omitempty"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`
	PickedUpAt       *time.Time      `json:"pickedUpAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type AddOnResponse struct {
	AddOnID        uuid.UUID `json:"addOnId"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
}

type ReservationListResponse struct {
	ID           uuid.UUID `json:"id"`
	Number       string    `json:"number"`
	UserEmail    string    `json:"userEmail"`
	VehicleLabel string    `json:"vehicleLabel"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	TotalCents   int64     `json:"totalCents"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CancelResponse struct {
	ReservationID uuid.UUID `json:"reservationId"`
	RefundCents   int64     `json:"refundCents"`
	RefundType    string    `json:"refundType"`
	Status        string    `json:"status"`
}

type ReplacementOptionResponse struct {
	ID             uuid.UUID `json:"id"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	LicensePlate   string    `json:"licensePlate"`
	DailyRateCents int64     `json:"dailyRateCents"`
}

type ReplacementSetResponse struct {
	HigherOrEqualPrice []ReplacementOptionResponse `json:"higherOrEqualPrice"`
	LowerPrice         []ReplacementOptionResponse `json:"lowerPrice"`
}

// PickupPendingResponse is the selection payload returned when the assigned
// vehicle cannot be handed over. It is a normal outcome, not an error.
type PickupPendingResponse struct {
	OriginalVehicleUnavailable bool                   `json:"originalVehicleUnavailable"`
	AvailableReplacements      ReplacementSetResponse `json:"availableReplacements"`
}

type RevenueResponse struct {
	TotalCents int64 `json:"totalCents"`
}

func FromReservationView(rm *queries.ReservationView) *ReservationResponse {
	addOns := make([]AddOnResponse, len(rm.AddOns))
	for i, a := range rm.AddOns {
		addOns[i] = AddOnResponse{
			AddOnID:        a.AddOnID,
			Name:           a.Name,
			Quantity:       a.Quantity,
			UnitPriceCents: a.UnitPriceCents,
		}
	}

	return &ReservationResponse{
		ID:               rm.ID,
		Number:           rm.Number,
		UserID:           rm.UserID,
		UserEmail:        rm.UserEmail,
		VehicleID:        rm.VehicleID,
		VehicleLabel:     rm.VehicleBrand + " " + rm.VehicleModel + " (" + rm.VehiclePlate + ")",
		PickupBranchID:   rm.PickupBranchID,
		PickupBranchName: rm.PickupBranchName,
		ReturnBranchID:   rm.ReturnBranchID,
		ReturnBranchName: rm.ReturnBranchName,
		StartDate:        rm.StartDate,
		EndDate:          rm.EndDate,
		TotalCents:       rm.TotalCents,
		Status:           rm.Status,
		PaymentStatus:    rm.PaymentStatus,
		AddOns:           addOns,
		RefundCents:      rm.RefundCents,
		CancelledAt:      rm.CancelledAt,
		PickedUpAt:       rm.PickedUpAt,
		CreatedAt:        rm.CreatedAt,
	}
}

func FromReservationListItem(rm *queries.ReservationListItem) *ReservationListResponse {
	return &ReservationListResponse{
		ID:           rm.ID,
		Number:       rm.Number,
		UserEmail:    rm.UserEmail,
		VehicleLabel: rm.VehicleBrand + " " + rm.VehicleModel,
		StartDate:    rm.StartDate,
		EndDate:      rm.EndDate,
		TotalCents:   rm.TotalCents,
		Status:       rm.Status,
		CreatedAt:    rm.CreatedAt,
	}
}

func FromCancelResult(result *commands.CancelResult) *CancelResponse {
	return &CancelResponse{
		ReservationID: result.ReservationID,
		RefundCents:   result.RefundCents,
		RefundType:    string(result.RefundType),
		Status:        result.Status.String(),
	}
}

func FromReplacementOptions(options *commands.ReplacementOptions) *PickupPendingResponse {
	return &PickupPendingResponse{
		OriginalVehicleUnavailable: true,
		AvailableReplacements:      FromReplacementSet(options),
	}
}

func FromReplacementSet(options *commands.ReplacementOptions) ReplacementSetResponse {
	return ReplacementSetResponse{
		HigherOrEqualPrice: toOptionResponses(options.HigherOrEqualPrice),
		LowerPrice:         toOptionResponses(options.LowerPrice),
	}
}

func toOptionResponses(options []commands.ReplacementOption) []ReplacementOptionResponse {
	out := make([]ReplacementOptionResponse, len(options))
	for i, o := range options {
		out[i] = ReplacementOptionResponse{
			ID:             o.ID,
			Brand:          o.Brand,
			Model:          o.Model,
			LicensePlate:   o.LicensePlate,
			DailyRateCents: o.DailyRateCents,
		}
	}
	return out
}
