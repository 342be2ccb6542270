package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	VehicleID      uuid.UUID `json:"vehicle_id" binding:"required"`
	PickupBranchID uuid.UUID `json:"pickup_branch_id" binding:"required"`
	ReturnBranchID uuid.UUID `json:"return_branch_id" binding:"required"`
	StartDate      time.Time `json:"start_date" binding:"required"`
	EndDate        time.Time `json:"end_date" binding:"required"`
}

type PayReservationRequest struct {
	CardNumber string `json:"card_number" binding:"required"`
	Expiry     string `json:"expiry" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
	Method     string `json:"method" binding:"required"`
}

type PickupRequest struct {
	// Absent on the first call; set when the caller picked a replacement.
	ReplacementVehicleID *uuid.UUID `json:"replacement_vehicle_id,omitempty"`
}

type UpdateStatusRequest struct {
	Status            string `json:"status" binding:"required"`
	MaintenanceReason string `json:"maintenance_reason,omitempty"`
}

type AddOnItemRequest struct {
	AddOnID  uuid.UUID `json:"add_on_id" binding:"required"`
	Quantity int       `json:"quantity"`
}

type UpdateAddOnsRequest struct {
	AddOns []AddOnItemRequest `json:"add_ons" binding:"required"`
}
