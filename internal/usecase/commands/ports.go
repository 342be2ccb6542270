package commands

import (
	"context"

	"github.com/google/uuid"
)

// GatewayStatus is the closed set of outcomes the payment gateway can
// produce. Call sites switch exhaustively; an unknown value is a contract
// violation, not a fourth state.
type GatewayStatus uint8

const (
	GatewayApproved GatewayStatus = iota
	GatewayRejected
	GatewayPending
)

type CardDetails struct {
	Number string
	Expiry string
	CVV    string
	Method string
}

type GatewayResult struct {
	Status        GatewayStatus
	TransactionID string
}

// PaymentGateway is the simulated payment boundary. Only the contract
// matters here; the gateway's internals are a stand-in.
type PaymentGateway interface {
	Process(ctx context.Context, card CardDetails, amountCents int64) (GatewayResult, error)
}

// ReservationEvent is the outbound notification payload published after a
// state change commits. The notifier renders it into mail; delivery failures
// never reach back into the state machine.
type ReservationEvent struct {
	Kind          string    `json:"kind"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Number        string    `json:"number"`
	UserEmail     string    `json:"user_email"`
	UserName      string    `json:"user_name"`
	VehicleLabel  string    `json:"vehicle_label"`
	PickupBranch  string    `json:"pickup_branch"`
	ReturnBranch  string    `json:"return_branch"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	TotalCents    int64     `json:"total_cents"`
	RefundCents   *int64    `json:"refund_cents,omitempty"`
	RefundType    string    `json:"refund_type,omitempty"`
}

const (
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
)

type EventPublisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}
