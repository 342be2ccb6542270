package reservation

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus           = errors.New("invalid reservation status")
	ErrNonPositiveCost         = errors.New("total cost must be positive")
	ErrPaymentWindowElapsed    = errors.New("payment window has elapsed")
	ErrNotPending              = errors.New("reservation is not pending payment")
	ErrNotConfirmed            = errors.New("reservation is not confirmed")
	ErrAddOnsLocked            = errors.New("add-ons cannot be modified in the current status")
	ErrMaintenanceReasonNeeded = errors.New("maintenance reason is required")
)

// InvalidTransitionError reports a status change that is not in the
// transition table, including the attempted pair.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

type Reservation struct {
	id             uuid.UUID
	number         string
	userID         uuid.UUID
	vehicleID      uuid.UUID
	pickupBranchID uuid.UUID
	returnBranchID uuid.UUID
	dates          DateRange
	totalCost      Money
	status         Status
	payment        PaymentInfo
	addOns         []AddOnLine
	refundAmount   *Money
	cancelledAt    *time.Time
	pickedUpAt     *time.Time
	createdAt      time.Time
}

// NewReservation creates a pending reservation. The total cost is the base
// cost for the period at the vehicle's current daily rate; add-ons are
// attached later through ReplaceAddOns.
func NewReservation(
	userID, vehicleID, pickupBranchID, returnBranchID uuid.UUID,
	dates DateRange,
	dailyRateCents int64,
	now time.Time,
) (*Reservation, error) {
	base, err := BaseCostCents(dates, dailyRateCents)
	if err != nil {
		return nil, err
	}

	return &Reservation{
		id:             uuid.New(),
		number:         newReservationNumber(now),
		userID:         userID,
		vehicleID:      vehicleID,
		pickupBranchID: pickupBranchID,
		returnBranchID: returnBranchID,
		dates:          dates,
		totalCost:      NewMoney(base),
		status:         StatusPending,
		createdAt:      now,
	}, nil
}

func ReconstructReservation(
	id uuid.UUID,
	number string,
	userID, vehicleID, pickupBranchID, returnBranchID uuid.UUID,
	dates DateRange,
	totalCost Money,
	status Status,
	payment PaymentInfo,
	addOns []AddOnLine,
	refundAmount *Money,
	cancelledAt, pickedUpAt *time.Time,
	createdAt time.Time,
) *Reservation {
	return &Reservation{
		id:             id,
		number:         number,
		userID:         userID,
		vehicleID:      vehicleID,
		pickupBranchID: pickupBranchID,
		returnBranchID: returnBranchID,
		dates:          dates,
		totalCost:      totalCost,
		status:         status,
		payment:        payment,
		addOns:         addOns,
		refundAmount:   refundAmount,
		cancelledAt:    cancelledAt,
		pickedUpAt:     pickedUpAt,
		createdAt:      createdAt,
	}
}

func (r *Reservation) ID() uuid.UUID             { return r.id }
func (r *Reservation) Number() string            { return r.number }
func (r *Reservation) UserID() uuid.UUID         { return r.userID }
func (r *Reservation) VehicleID() uuid.UUID      { return r.vehicleID }
func (r *Reservation) PickupBranchID() uuid.UUID { return r.pickupBranchID }
func (r *Reservation) ReturnBranchID() uuid.UUID { return r.returnBranchID }
func (r *Reservation) Dates() DateRange          { return r.dates }
func (r *Reservation) TotalCost() Money          { return r.totalCost }
func (r *Reservation) Status() Status            { return r.status }
func (r *Reservation) Payment() PaymentInfo      { return r.payment }
func (r *Reservation) RefundAmount() *Money      { return r.refundAmount }
func (r *Reservation) CancelledAt() *time.Time   { return r.cancelledAt }
func (r *Reservation) PickedUpAt() *time.Time    { return r.pickedUpAt }
func (r *Reservation) CreatedAt() time.Time      { return r.createdAt }

func (r *Reservation) AddOns() []AddOnLine {
	lines := make([]AddOnLine, len(r.addOns))
	copy(lines, r.addOns)
	return lines
}

func (r *Reservation) IsOwnedBy(userID uuid.UUID) bool {
	return r.userID == userID
}

func (r *Reservation) transition(to Status) error {
	if !r.status.CanTransitionTo(to) {
		return &InvalidTransitionError{From: r.status, To: to}
	}
	r.status = to
	return nil
}

// TransitionTo is the administrative status change path. It only moves the
// status pointer; callers are responsible for the vehicle side effects that
// accompany returned/cancelled transitions.
func (r *Reservation) TransitionTo(to Status) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	return r.transition(to)
}

// WithinPaymentWindow reports whether a payment attempt at now is still
// inside the allowed window since creation.
func (r *Reservation) WithinPaymentWindow(now time.Time, window time.Duration) bool {
	return now.Sub(r.createdAt) <= window
}

// ExpirePaymentWindow cancels a pending reservation whose payment window has
// elapsed, recording the rejection on the payment sub-status.
func (r *Reservation) ExpirePaymentWindow() error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	if err := r.transition(StatusCancelled); err != nil {
		return err
	}
	r.payment.Status = PaymentRejected
	return nil
}

// Confirm applies an approved payment: pending -> confirmed with the payment
// info locked in.
func (r *Reservation) Confirm(payment PaymentInfo) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	if err := r.transition(StatusConfirmed); err != nil {
		return err
	}
	r.payment = payment
	return nil
}

// RecordPaymentAttempt persists a rejected or gateway-pending attempt without
// changing the reservation status.
func (r *Reservation) RecordPaymentAttempt(payment PaymentInfo) error {
	if r.status != StatusPending {
		return ErrNotPending
	}
	r.payment = payment
	return nil
}

// Cancel is the customer cancellation path, valid from confirmed only.
func (r *Reservation) Cancel(refund Money, now time.Time) error {
	if r.status != StatusConfirmed {
		return ErrNotConfirmed
	}
	if err := r.transition(StatusCancelled); err != nil {
		return err
	}
	r.refundAmount = &refund
	r.cancelledAt = &now
	return nil
}

// MarkPickedUp transitions confirmed -> picked_up and stamps the pickup time.
func (r *Reservation) MarkPickedUp(now time.Time) error {
	if r.status != StatusConfirmed {
		return ErrNotConfirmed
	}
	if err := r.transition(StatusPickedUp); err != nil {
		return err
	}
	r.pickedUpAt = &now
	return nil
}

// ReassignVehicle swaps in a replacement vehicle at pickup time. The total
// cost is left untouched: the customer pays what was quoted at booking time
// regardless of the replacement's rate.
func (r *Reservation) ReassignVehicle(vehicleID uuid.UUID) {
	r.vehicleID = vehicleID
}

// CanModifyAddOns reports whether the add-on list may still change.
func (r *Reservation) CanModifyAddOns() bool {
	switch r.status {
	case StatusPending, StatusConfirmed, StatusPickedUp:
		return true
	default:
		return false
	}
}

// ReplaceAddOns swaps the full add-on list (no merge semantics) and installs
// the recomputed total.
func (r *Reservation) ReplaceAddOns(lines []AddOnLine, newTotal Money) error {
	if !r.CanModifyAddOns() {
		return ErrAddOnsLocked
	}
	if !newTotal.IsPositive() {
		return ErrNonPositiveCost
	}
	r.addOns = lines
	r.totalCost = newTotal
	return nil
}

// SetTotalCost replaces the total after a reprice. Used by the add-on
// reconciliation fallback path where the vehicle snapshot is missing.
func (r *Reservation) SetTotalCost(total Money) {
	r.totalCost = total
}

// newReservationNumber builds the human-facing identifier assigned once at
// creation, e.g. RES-20240601-3FA2B1.
func newReservationNumber(now time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("RES-%s-%06d", now.UTC().Format("20060102"), now.UnixNano()%1000000)
	}
	return fmt.Sprintf("RES-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
