package repository

import (
	"context"
	"time"

	"mobirent/internal/domain/reservation"

	"github.com/google/uuid"
)

type ReservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error) {
	const query = `
		INSERT INTO reservations (
			id, number, user_id, vehicle_id, pickup_branch_id, return_branch_id,
			start_date, end_date, total_cents, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		res.ID(), res.Number(), res.UserID(), res.VehicleID(),
		res.PickupBranchID(), res.ReturnBranchID(),
		res.Dates().Start(), res.Dates().End(),
		res.TotalCost().Cents(), res.Status().String(), res.CreatedAt(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, wrapDBErr("failed to create reservation", err)
	}

	if err := r.replaceAddOnLines(ctx, res); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	const query = `
		UPDATE reservations
		SET vehicle_id = $2,
		    total_cents = $3,
		    status = $4,
		    payment_transaction_id = $5,
		    payment_method = $6,
		    payment_status = $7,
		    refund_cents = $8,
		    cancelled_at = $9,
		    picked_up_at = $10
		WHERE id = $1`

	var (
		paymentTxn    *string
		paymentMethod *string
		paymentStatus *string
		refundCents   *int64
	)
	if payment := res.Payment(); !payment.IsZero() {
		txn, method, status := payment.TransactionID, payment.Method, payment.Status.String()
		paymentTxn, paymentMethod, paymentStatus = &txn, &method, &status
	}
	if refund := res.RefundAmount(); refund != nil {
		cents := refund.Cents()
		refundCents = &cents
	}

	tag, err := r.db.Exec(ctx, query,
		res.ID(), res.VehicleID(), res.TotalCost().Cents(), res.Status().String(),
		paymentTxn, paymentMethod, paymentStatus,
		refundCents, res.CancelledAt(), res.PickedUpAt(),
	)
	if err != nil {
		return wrapDBErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr("reservation not found for update", errNoRowsAffected)
	}

	return r.replaceAddOnLines(ctx, res)
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	const query = `
		SELECT id, number, user_id, vehicle_id, pickup_branch_id, return_branch_id,
		       start_date, end_date, total_cents, status,
		       payment_transaction_id, payment_method, payment_status,
		       refund_cents, cancelled_at, picked_up_at, created_at
		FROM reservations
		WHERE id = $1`

	var (
		resID, userID, vehicleID     uuid.UUID
		pickupBranchID, returnBranch uuid.UUID
		number, status               string
		startDate, endDate           time.Time
		totalCents                   int64
		paymentTxn, paymentMethod    *string
		paymentStatus                *string
		refundCents                  *int64
		cancelledAt, pickedUpAt      *time.Time
		createdAt                    time.Time
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&resID, &number, &userID, &vehicleID, &pickupBranchID, &returnBranch,
		&startDate, &endDate, &totalCents, &status,
		&paymentTxn, &paymentMethod, &paymentStatus,
		&refundCents, &cancelledAt, &pickedUpAt, &createdAt,
	)
	if err != nil {
		return nil, wrapDBErr("failed to find reservation", err)
	}

	lines, err := r.findAddOnLines(ctx, resID)
	if err != nil {
		return nil, err
	}

	var payment reservation.PaymentInfo
	if paymentStatus != nil {
		payment = reservation.PaymentInfo{
			TransactionID: deref(paymentTxn),
			Method:        deref(paymentMethod),
			Status:        reservation.PaymentStatus(*paymentStatus),
		}
	}
	var refund *reservation.Money
	if refundCents != nil {
		m := reservation.NewMoney(*refundCents)
		refund = &m
	}

	return reservation.ReconstructReservation(
		resID, number, userID, vehicleID, pickupBranchID, returnBranch,
		reservation.ReconstructDateRange(startDate, endDate),
		reservation.NewMoney(totalCents),
		reservation.Status(status),
		payment,
		lines,
		refund,
		cancelledAt, pickedUpAt,
		createdAt,
	), nil
}

func (r *ReservationRepository) HasOverlap(ctx context.Context, vehicleID uuid.UUID, dates reservation.DateRange, statuses []reservation.Status, exclude uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM reservations
			WHERE vehicle_id = $1
			  AND status = ANY($2)
			  AND id <> $3
			  AND start_date < $5
			  AND $4 < end_date
		)`

	var exists bool
	err := r.db.QueryRow(ctx, query,
		vehicleID, statusStrings(statuses), exclude, dates.Start(), dates.End(),
	).Scan(&exists)
	if err != nil {
		return false, wrapDBErr("failed to check reservation overlap", err)
	}
	return exists, nil
}

func (r *ReservationRepository) CommittedVehicleIDs(ctx context.Context, dates reservation.DateRange, statuses []reservation.Status, exclude uuid.UUID) ([]uuid.UUID, error) {
	const query = `
		SELECT DISTINCT vehicle_id
		FROM reservations
		WHERE status = ANY($1)
		  AND id <> $2
		  AND start_date < $4
		  AND $3 < end_date`

	rows, err := r.db.Query(ctx, query, statusStrings(statuses), exclude, dates.Start(), dates.End())
	if err != nil {
		return nil, wrapDBErr("failed to list committed vehicles", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErr("failed to scan committed vehicle id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("failed to iterate committed vehicles", err)
	}
	return ids, nil
}

func (r *ReservationRepository) replaceAddOnLines(ctx context.Context, res *reservation.Reservation) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM reservation_add_ons WHERE reservation_id = $1`, res.ID()); err != nil {
		return wrapDBErr("failed to clear reservation add-ons", err)
	}

	const insert = `
		INSERT INTO reservation_add_ons (reservation_id, add_on_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4)`
	for _, line := range res.AddOns() {
		if _, err := r.db.Exec(ctx, insert, res.ID(), line.AddOnID, line.Quantity, line.UnitPriceCents); err != nil {
			return wrapDBErr("failed to insert reservation add-on", err)
		}
	}
	return nil
}

func (r *ReservationRepository) findAddOnLines(ctx context.Context, reservationID uuid.UUID) ([]reservation.AddOnLine, error) {
	const query = `
		SELECT add_on_id, quantity, unit_price_cents
		FROM reservation_add_ons
		WHERE reservation_id = $1`

	rows, err := r.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, wrapDBErr("failed to load reservation add-ons", err)
	}
	defer rows.Close()

	var lines []reservation.AddOnLine
	for rows.Next() {
		var line reservation.AddOnLine
		if err := rows.Scan(&line.AddOnID, &line.Quantity, &line.UnitPriceCents); err != nil {
			return nil, wrapDBErr("failed to scan reservation add-on", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("failed to iterate reservation add-ons", err)
	}
	return lines, nil
}

func statusStrings(statuses []reservation.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
