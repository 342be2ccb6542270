package queries

import (
	"context"
	"time"

	"mobirent/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrReservationNotFound = errs.New("reservation not found")

// ReservationView is the joined read model returned by detail lookups.
type ReservationView struct {
	ID                 uuid.UUID      `json:"id"`
	Number             string         `json:"number"`
	UserID             uuid.UUID      `json:"user_id"`
	UserEmail          string         `json:"user_email"`
	UserName           string         `json:"user_name"`
	VehicleID          uuid.UUID      `json:"vehicle_id"`
	VehicleBrand       string         `json:"vehicle_brand"`
	VehicleModel       string         `json:"vehicle_model"`
	VehiclePlate       string         `json:"vehicle_plate"`
	PickupBranchID     uuid.UUID      `json:"pickup_branch_id"`
	PickupBranchName   string         `json:"pickup_branch_name"`
	ReturnBranchID     uuid.UUID      `json:"return_branch_id"`
	ReturnBranchName   string         `json:"return_branch_name"`
	StartDate          time.Time      `json:"start_date"`
	EndDate            time.Time      `json:"end_date"`
	TotalCents         int64          `json:"total_cents"`
	Status             string         `json:"status"`
	PaymentTransaction *string        `json:"payment_transaction,omitempty"`
	PaymentMethod      *string        `json:"payment_method,omitempty"`
	PaymentStatus      *string        `json:"payment_status,omitempty"`
	AddOns             []AddOnView    `json:"add_ons"`
	RefundCents        *int64         `json:"refund_cents,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	PickedUpAt         *time.Time     `json:"picked_up_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

type AddOnView struct {
	AddOnID        uuid.UUID `json:"add_on_id"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// ReservationListItem is the flat row used by my-reservations and the staff
// report.
type ReservationListItem struct {
	ID           uuid.UUID `json:"id"`
	Number       string    `json:"number"`
	UserEmail    string    `json:"user_email"`
	VehicleBrand string    `json:"vehicle_brand"`
	VehicleModel string    `json:"vehicle_model"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	TotalCents   int64     `json:"total_cents"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReservationStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindByNumber(ctx context.Context, number string) (*ReservationView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*ReservationListItem, error)
	FindAll(ctx context.Context) ([]*ReservationListItem, error)
	SumRevenueCents(ctx context.Context) (int64, error)
}

type ReservationQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	GetByNumber(ctx context.Context, number string) (*ReservationView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ReservationListItem, error)
	Report(ctx context.Context) ([]*ReservationListItem, error)
	TotalRevenueCents(ctx context.Context) (int64, error)
}

type reservationQueriesImpl struct {
	store ReservationStore
}

func NewReservationQueries(store ReservationStore) ReservationQueries {
	return &reservationQueriesImpl{store: store}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	return q.store.FindByID(ctx, id)
}

func (q *reservationQueriesImpl) GetByNumber(ctx context.Context, number string) (*ReservationView, error) {
	return q.store.FindByNumber(ctx, number)
}

func (q *reservationQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ReservationListItem, error) {
	return q.store.FindByUserID(ctx, userID)
}

func (q *reservationQueriesImpl) Report(ctx context.Context) ([]*ReservationListItem, error) {
	return q.store.FindAll(ctx)
}

func (q *reservationQueriesImpl) TotalRevenueCents(ctx context.Context) (int64, error) {
	return q.store.SumRevenueCents(ctx)
}
