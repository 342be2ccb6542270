package commands

import (
	"context"
	"log/slog"
	"time"

	"mobirent/internal/domain/fleet"
	"mobirent/internal/domain/reservation"
	"mobirent/internal/infra"
	"mobirent/internal/pkg/clock"
	"mobirent/internal/pkg/errs"
	"mobirent/internal/usecase/queries"
	"mobirent/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound       = errs.New("reservation not found")
	ErrVehicleNotFound           = errs.New("vehicle not found")
	ErrBranchNotFound            = errs.New("branch not found")
	ErrAddOnNotFound             = errs.New("add-on not found")
	ErrValidation                = errs.New("validation failed")
	ErrVehicleUnavailable        = errs.New("vehicle unavailable for booking")
	ErrOverlappingReservation    = errs.New("overlapping reservation exists")
	ErrNotOwner                  = errs.New("caller does not own this reservation")
	ErrInvalidTransition         = errs.New("invalid status transition")
	ErrInvalidState              = errs.New("operation not allowed in current status")
	ErrPaymentWindowExpired      = errs.New("payment window expired, reservation cancelled")
	ErrPaymentDeclined           = errs.New("payment declined")
	ErrMaintenanceReasonRequired = errs.New("maintenance reason required for return")
	ErrReplacementNotEligible    = errs.New("chosen replacement is not in the eligible pool")
	ErrGatewayContract           = errs.New("unknown payment gateway status")
	ErrDatabaseOperationFailed   = errs.New("database operation failed")
)

type CreateReservationInput struct {
	VehicleID      uuid.UUID
	PickupBranchID uuid.UUID
	ReturnBranchID uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
}

type PayResult struct {
	Status reservation.PaymentStatus
}

type CancelResult struct {
	ReservationID uuid.UUID
	RefundCents   int64
	RefundType    reservation.RefundType
	Status        reservation.Status
}

// ReplacementOption is a candidate vehicle surfaced for interactive
// selection at pickup time.
type ReplacementOption struct {
	ID             uuid.UUID
	Brand          string
	Model          string
	LicensePlate   string
	DailyRateCents int64
}

type ReplacementOptions struct {
	HigherOrEqualPrice []ReplacementOption
	LowerPrice         []ReplacementOption
}

// PickupResult either carries the picked-up reservation view, or the
// partitioned replacement candidates when the assigned vehicle cannot be
// handed over and the caller still has to choose.
type PickupResult struct {
	PickedUp                   bool
	Reservation                *queries.ReservationView
	OriginalVehicleUnavailable bool
	Replacements               *ReplacementOptions
}

type AddOnItemInput struct {
	AddOnID  uuid.UUID
	Quantity int
}

type ReservationCommands interface {
	Create(ctx context.Context, input CreateReservationInput, userID uuid.UUID) (*queries.ReservationView, error)
	Pay(ctx context.Context, reservationID, userID uuid.UUID, card CardDetails) (*PayResult, error)
	Cancel(ctx context.Context, reservationID, userID uuid.UUID) (*CancelResult, error)
	Pickup(ctx context.Context, reservationID uuid.UUID, replacementID *uuid.UUID) (*PickupResult, error)
	UpdateStatus(ctx context.Context, reservationID uuid.UUID, to reservation.Status, maintenanceReason string) (*queries.ReservationView, error)
	UpdateAddOns(ctx context.Context, reservationID uuid.UUID, items []AddOnItemInput) (*queries.ReservationView, error)
}

type reservationCommandsImpl struct {
	uow           shared.UnitOfWork
	gateway       PaymentGateway
	publisher     EventPublisher
	resQueries    queries.ReservationQueries
	clock         clock.Clock
	paymentWindow time.Duration
	refundPolicy  reservation.RefundPolicy
}

func NewReservationCommands(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	publisher EventPublisher,
	resQueries queries.ReservationQueries,
	clk clock.Clock,
	paymentWindow time.Duration,
	refundPolicy reservation.RefundPolicy,
) ReservationCommands {
	return &reservationCommandsImpl{
		uow:           uow,
		gateway:       gateway,
		publisher:     publisher,
		resQueries:    resQueries,
		clock:         clk,
		paymentWindow: paymentWindow,
		refundPolicy:  refundPolicy,
	}
}

func (c *reservationCommandsImpl) Create(ctx context.Context, input CreateReservationInput, userID uuid.UUID) (*queries.ReservationView, error) {
	now := c.clock.Now()

	dates, err := reservation.NewDateRange(input.StartDate, input.EndDate, now)
	if err != nil {
		return nil, errs.Mark(err, ErrValidation)
	}

	var reservationID uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		vehicle, err := tx.Vehicles().FindByID(ctx, input.VehicleID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrVehicleNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		for _, branchID := range []uuid.UUID{input.PickupBranchID, input.ReturnBranchID} {
			if _, err := tx.Reads().BranchByID(ctx, branchID); err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrBranchNotFound
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		if !vehicle.IsEligible() {
			return ErrVehicleUnavailable
		}

		overlap, err := tx.Reservations().HasOverlap(ctx, input.VehicleID, dates, reservation.BookingBlockingStatuses, uuid.Nil)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if overlap {
			return ErrOverlappingReservation
		}

		entity, err := reservation.NewReservation(
			userID, input.VehicleID, input.PickupBranchID, input.ReturnBranchID,
			dates, vehicle.DailyRateCents(), now,
		)
		if err != nil {
			return errs.Mark(err, ErrValidation)
		}

		reservationID, err = tx.Reservations().Create(ctx, entity)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.resQueries.GetByID(ctx, reservationID)
}

func (c *reservationCommandsImpl) Pay(ctx context.Context, reservationID, userID uuid.UUID, card CardDetails) (*PayResult, error) {
	now := c.clock.Now()

	var (
		amountCents int64
		expired     bool
	)
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, reservationID, userID)
		if err != nil {
			return err
		}
		if res.Status() != reservation.StatusPending {
			return ErrInvalidState
		}
		if !res.WithinPaymentWindow(now, c.paymentWindow) {
			// The auto-cancel is committed even though the call fails: the
			// persisted state must reflect the expiry.
			if err := res.ExpirePaymentWindow(); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			if err := tx.Reservations().Update(ctx, res); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			expired = true
			return nil
		}
		amountCents = res.TotalCost().Cents()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, ErrPaymentWindowExpired
	}

	// The gateway is awaited before the transition commits. The reservation
	// is re-read afterwards so a concurrent mutation surfaces as an invalid
	// state instead of a blind overwrite.
	result, err := c.gateway.Process(ctx, card, amountCents)
	if err != nil {
		return nil, errs.Wrap(err, "payment gateway call failed")
	}

	payResult := &PayResult{}
	var declined bool
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, reservationID, userID)
		if err != nil {
			return err
		}
		if res.Status() != reservation.StatusPending {
			return ErrInvalidState
		}

		switch result.Status {
		case GatewayApproved:
			info := reservation.PaymentInfo{
				TransactionID: result.TransactionID,
				Method:        card.Method,
				Status:        reservation.PaymentApproved,
			}
			if err := res.Confirm(info); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			vehicle, err := tx.Vehicles().FindByID(ctx, res.VehicleID())
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return ErrVehicleNotFound
				}
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			vehicle.MarkUnavailable()
			if err := tx.Vehicles().Update(ctx, vehicle); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			payResult.Status = reservation.PaymentApproved

		case GatewayRejected:
			info := reservation.PaymentInfo{
				TransactionID: result.TransactionID,
				Method:        card.Method,
				Status:        reservation.PaymentRejected,
			}
			if err := res.RecordPaymentAttempt(info); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			declined = true
			payResult.Status = reservation.PaymentRejected

		case GatewayPending:
			info := reservation.PaymentInfo{
				TransactionID: result.TransactionID,
				Method:        card.Method,
				Status:        reservation.PaymentPending,
			}
			if err := res.RecordPaymentAttempt(info); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			payResult.Status = reservation.PaymentPending

		default:
			return ErrGatewayContract
		}

		return tx.Reservations().Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	if declined {
		return payResult, ErrPaymentDeclined
	}

	if payResult.Status == reservation.PaymentApproved {
		c.publishEvent(ctx, reservationID, EventReservationConfirmed, nil, "")
	}
	return payResult, nil
}

func (c *reservationCommandsImpl) Cancel(ctx context.Context, reservationID, userID uuid.UUID) (*CancelResult, error) {
	now := c.clock.Now()

	var out *CancelResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, reservationID, userID)
		if err != nil {
			return err
		}
		if res.Status() != reservation.StatusConfirmed {
			return ErrInvalidState
		}

		total := res.TotalCost().Cents()
		refund := c.refundPolicy.Calculate(now, res.Dates().Start(), total)
		if err := res.Cancel(reservation.NewMoney(refund), now); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		vehicle, err := tx.Vehicles().FindByID(ctx, res.VehicleID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrVehicleNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		vehicle.Release()
		if err := tx.Vehicles().Update(ctx, vehicle); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		out = &CancelResult{
			ReservationID: res.ID(),
			RefundCents:   refund,
			RefundType:    reservation.Classify(refund, total),
			Status:        res.Status(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publishEvent(ctx, reservationID, EventReservationCancelled, &out.RefundCents, string(out.RefundType))
	return out, nil
}

func (c *reservationCommandsImpl) Pickup(ctx context.Context, reservationID uuid.UUID, replacementID *uuid.UUID) (*PickupResult, error) {
	now := c.clock.Now()

	result := &PickupResult{}
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.load(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if res.Status() != reservation.StatusConfirmed {
			return ErrInvalidState
		}

		original, err := tx.Vehicles().FindByID(ctx, res.VehicleID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrVehicleNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		// An eligible assigned vehicle is always the one handed over; a
		// replacement id sent alongside is ignored.
		if original.IsEligible() {
			if err := res.MarkPickedUp(now); err != nil {
				return errs.Mark(err, ErrInvalidState)
			}
			original.MarkUnavailable()
			if err := tx.Vehicles().Update(ctx, original); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			if err := tx.Reservations().Update(ctx, res); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			result.PickedUp = true
			return nil
		}

		// The assigned vehicle cannot be handed over; compute the
		// replacement pool fresh on every call.
		committedIDs, err := tx.Reservations().CommittedVehicleIDs(ctx, res.Dates(), reservation.ReplacementBlockingStatuses, res.ID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		committed := make(map[uuid.UUID]struct{}, len(committedIDs))
		for _, id := range committedIDs {
			committed[id] = struct{}{}
		}

		branchFleet, err := tx.Vehicles().FindByBranch(ctx, res.PickupBranchID())
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		candidates := fleet.ReplacementCandidates(branchFleet, committed, original.DailyRateCents())
		result.OriginalVehicleUnavailable = true
		result.Replacements = toReplacementOptions(candidates)

		if replacementID == nil || candidates.IsEmpty() {
			// Selection payload only; the reservation stays confirmed.
			return nil
		}

		replacement := candidates.Find(*replacementID)
		if replacement == nil {
			return ErrReplacementNotEligible
		}

		original.Release()
		if err := tx.Vehicles().Update(ctx, original); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		res.ReassignVehicle(replacement.ID())
		if err := res.MarkPickedUp(now); err != nil {
			return errs.Mark(err, ErrInvalidState)
		}
		replacement.MarkUnavailable()
		if err := tx.Vehicles().Update(ctx, replacement); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		result.PickedUp = true
		result.OriginalVehicleUnavailable = false
		return nil
	})
	if err != nil {
		// The candidate lists ride along with the rejection so the caller
		// can re-select without another round trip.
		if errs.Is(err, ErrReplacementNotEligible) && result.Replacements != nil {
			return result, err
		}
		return nil, err
	}

	if result.PickedUp {
		view, err := c.resQueries.GetByID(ctx, reservationID)
		if err != nil {
			return nil, err
		}
		result.Reservation = view
	}
	return result, nil
}

func (c *reservationCommandsImpl) UpdateStatus(ctx context.Context, reservationID uuid.UUID, to reservation.Status, maintenanceReason string) (*queries.ReservationView, error) {
	now := c.clock.Now()

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.load(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		vehicle, err := tx.Vehicles().FindByID(ctx, res.VehicleID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrVehicleNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if to == reservation.StatusReturned && maintenanceReason == "" {
			return ErrMaintenanceReasonRequired
		}

		if err := res.TransitionTo(to); err != nil {
			return errs.Mark(err, ErrInvalidTransition)
		}

		switch to {
		case reservation.StatusPickedUp:
			vehicle.MarkUnavailable()
		case reservation.StatusReturned:
			if err := vehicle.FlagMaintenance(maintenanceReason, now); err != nil {
				return errs.Mark(err, ErrMaintenanceReasonRequired)
			}
		case reservation.StatusCancelled:
			vehicle.Release()
		}

		if err := tx.Vehicles().Update(ctx, vehicle); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.resQueries.GetByID(ctx, reservationID)
}

func (c *reservationCommandsImpl) UpdateAddOns(ctx context.Context, reservationID uuid.UUID, items []AddOnItemInput) (*queries.ReservationView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.load(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if !res.CanModifyAddOns() {
			return ErrInvalidState
		}

		inputs := make([]reservation.AddOnInput, len(items))
		ids := make([]uuid.UUID, len(items))
		for i, item := range items {
			inputs[i] = reservation.AddOnInput{AddOnID: item.AddOnID, Quantity: item.Quantity}
			ids[i] = item.AddOnID
		}

		catalog, err := tx.Reads().AddOnsByIDs(ctx, ids)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		lines, err := reservation.ReconcileAddOns(inputs, catalog)
		if err != nil {
			if errs.Is(err, reservation.ErrUnknownAddOn) {
				return errs.Mark(err, ErrAddOnNotFound)
			}
			return errs.Mark(err, ErrValidation)
		}

		total := c.repriceWithLines(ctx, tx, res, lines)
		if err := res.ReplaceAddOns(lines, reservation.NewMoney(total)); err != nil {
			return errs.Mark(err, ErrValidation)
		}

		if err := tx.Reservations().Update(ctx, res); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.resQueries.GetByID(ctx, reservationID)
}

// repriceWithLines recomputes the total for a prospective add-on list. When
// the vehicle cannot be resolved the previous total is kept and the fallback
// is logged instead of failing the update.
func (c *reservationCommandsImpl) repriceWithLines(ctx context.Context, tx shared.Tx, res *reservation.Reservation, lines []reservation.AddOnLine) int64 {
	vehicle, err := tx.Vehicles().FindByID(ctx, res.VehicleID())
	if err != nil {
		slog.Warn("vehicle unresolved during reprice, keeping previous total",
			"reservation_id", res.ID(), "vehicle_id", res.VehicleID(), "error", err.Error())
		return res.TotalCost().Cents()
	}

	base, err := reservation.BaseCostCents(res.Dates(), vehicle.DailyRateCents())
	if err != nil {
		slog.Warn("base cost not computable during reprice, keeping previous total",
			"reservation_id", res.ID(), "error", err.Error())
		return res.TotalCost().Cents()
	}
	return reservation.TotalCostCents(base, lines)
}

func (c *reservationCommandsImpl) load(ctx context.Context, tx shared.Tx, id uuid.UUID) (*reservation.Reservation, error) {
	res, err := tx.Reservations().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return res, nil
}

func (c *reservationCommandsImpl) loadOwned(ctx context.Context, tx shared.Tx, id, userID uuid.UUID) (*reservation.Reservation, error) {
	res, err := c.load(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !res.IsOwnedBy(userID) {
		return nil, ErrNotOwner
	}
	return res, nil
}

// publishEvent builds and publishes a notification event after a successful
// commit. Failures are logged and swallowed: delivery must never roll back
// or fail the state change that preceded it.
func (c *reservationCommandsImpl) publishEvent(ctx context.Context, reservationID uuid.UUID, kind string, refundCents *int64, refundType string) {
	view, err := c.resQueries.GetByID(ctx, reservationID)
	if err != nil {
		slog.Warn("notification skipped, reservation view unavailable",
			"reservation_id", reservationID, "kind", kind, "error", err.Error())
		return
	}

	event := ReservationEvent{
		Kind:          kind,
		ReservationID: view.ID,
		Number:        view.Number,
		UserEmail:     view.UserEmail,
		UserName:      view.UserName,
		VehicleLabel:  view.VehicleBrand + " " + view.VehicleModel + " (" + view.VehiclePlate + ")",
		PickupBranch:  view.PickupBranchName,
		ReturnBranch:  view.ReturnBranchName,
		StartDate:     view.StartDate.Format("2006-01-02"),
		EndDate:       view.EndDate.Format("2006-01-02"),
		TotalCents:    view.TotalCents,
		RefundCents:   refundCents,
		RefundType:    refundType,
	}

	if err := c.publisher.Publish(ctx, event); err != nil {
		slog.Warn("notification publish failed", "reservation_id", reservationID, "kind", kind, "error", err.Error())
	}
}

func toReplacementOptions(c fleet.Candidates) *ReplacementOptions {
	return &ReplacementOptions{
		HigherOrEqualPrice: toOptions(c.HigherOrEqualPrice),
		LowerPrice:         toOptions(c.LowerPrice),
	}
}

func toOptions(vehicles []*fleet.Vehicle) []ReplacementOption {
	options := make([]ReplacementOption, len(vehicles))
	for i, v := range vehicles {
		options[i] = ReplacementOption{
			ID:             v.ID(),
			Brand:          v.Brand(),
			Model:          v.Model(),
			LicensePlate:   v.LicensePlate(),
			DailyRateCents: v.DailyRateCents(),
		}
	}
	return options
}
