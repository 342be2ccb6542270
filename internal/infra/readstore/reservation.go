package readstore

import (
	"context"

	"mobirent/internal/infra/repository"
	"mobirent/internal/usecase/queries"

	"github.com/google/uuid"
)

type ReservationReadStore struct {
	db repository.DBTX
}

func NewReservationReadStore(db repository.DBTX) *ReservationReadStore {
	return &ReservationReadStore{db: db}
}

const reservationViewQuery = `
	SELECT r.id, r.number,
	       r.user_id, u.email, u.username,
	       r.vehicle_id, v.brand, v.model, v.license_plate,
	       r.pickup_branch_id, pb.name,
	       r.return_branch_id, rb.name,
	       r.start_date, r.end_date, r.total_cents, r.status,
	       r.payment_transaction_id, r.payment_method, r.payment_status,
	       r.refund_cents, r.cancelled_at, r.picked_up_at, r.created_at
	FROM reservations r
	JOIN users u ON u.id = r.user_id
	JOIN vehicles v ON v.id = r.vehicle_id
	JOIN branches pb ON pb.id = r.pickup_branch_id
	JOIN branches rb ON rb.id = r.return_branch_id`

func (s *ReservationReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	return s.findOne(ctx, reservationViewQuery+` WHERE r.id = $1`, id)
}

func (s *ReservationReadStore) FindByNumber(ctx context.Context, number string) (*queries.ReservationView, error) {
	return s.findOne(ctx, reservationViewQuery+` WHERE r.number = $1`, number)
}

func (s *ReservationReadStore) findOne(ctx context.Context, query string, arg any) (*queries.ReservationView, error) {
	var (
		view     queries.ReservationView
		username string
	)
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&view.ID, &view.Number,
		&view.UserID, &view.UserEmail, &username,
		&view.VehicleID, &view.VehicleBrand, &view.VehicleModel, &view.VehiclePlate,
		&view.PickupBranchID, &view.PickupBranchName,
		&view.ReturnBranchID, &view.ReturnBranchName,
		&view.StartDate, &view.EndDate, &view.TotalCents, &view.Status,
		&view.PaymentTransaction, &view.PaymentMethod, &view.PaymentStatus,
		&view.RefundCents, &view.CancelledAt, &view.PickedUpAt, &view.CreatedAt,
	)
	if err != nil {
		return nil, wrapReadErr("failed to load reservation view", err)
	}
	view.UserName = username

	addOns, err := s.findAddOns(ctx, view.ID)
	if err != nil {
		return nil, err
	}
	view.AddOns = addOns
	return &view, nil
}

func (s *ReservationReadStore) findAddOns(ctx context.Context, reservationID uuid.UUID) ([]queries.AddOnView, error) {
	const query = `
		SELECT ra.add_on_id, a.name, ra.quantity, ra.unit_price_cents
		FROM reservation_add_ons ra
		JOIN add_ons a ON a.id = ra.add_on_id
		WHERE ra.reservation_id = $1
		ORDER BY a.name`

	rows, err := s.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, wrapReadErr("failed to load reservation add-ons", err)
	}
	defer rows.Close()

	var out []queries.AddOnView
	for rows.Next() {
		var v queries.AddOnView
		if err := rows.Scan(&v.AddOnID, &v.Name, &v.Quantity, &v.UnitPriceCents); err != nil {
			return nil, wrapReadErr("failed to scan reservation add-on", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapReadErr("failed to iterate reservation add-ons", err)
	}
	return out, nil
}

const reservationListQuery = `
	SELECT r.id, r.number, u.email, v.brand, v.model,
	       r.start_date, r.end_date, r.total_cents, r.status, r.created_at
	FROM reservations r
	JOIN users u ON u.id = r.user_id
	JOIN vehicles v ON v.id = r.vehicle_id`

func (s *ReservationReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*queries.ReservationListItem, error) {
	return s.findList(ctx, reservationListQuery+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
}

func (s *ReservationReadStore) FindAll(ctx context.Context) ([]*queries.ReservationListItem, error) {
	return s.findList(ctx, reservationListQuery+` ORDER BY r.created_at DESC`)
}

func (s *ReservationReadStore) findList(ctx context.Context, query string, args ...any) ([]*queries.ReservationListItem, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapReadErr("failed to list reservations", err)
	}
	defer rows.Close()

	var out []*queries.ReservationListItem
	for rows.Next() {
		var item queries.ReservationListItem
		if err := rows.Scan(&item.ID, &item.Number, &item.UserEmail,
			&item.VehicleBrand, &item.VehicleModel,
			&item.StartDate, &item.EndDate, &item.TotalCents, &item.Status, &item.CreatedAt); err != nil {
			return nil, wrapReadErr("failed to scan reservation row", err)
		}
		out = append(out, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapReadErr("failed to iterate reservations", err)
	}
	return out, nil
}

// SumRevenueCents totals confirmed and later non-cancelled reservations.
func (s *ReservationReadStore) SumRevenueCents(ctx context.Context) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(total_cents), 0)
		FROM reservations
		WHERE status IN ('confirmed', 'picked_up', 'returned', 'completed')`

	var total int64
	if err := s.db.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, wrapReadErr("failed to sum revenue", err)
	}
	return total, nil
}
