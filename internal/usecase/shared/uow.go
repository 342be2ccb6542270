package shared

import (
	"context"

	"mobirent/internal/domain/fleet"
	"mobirent/internal/domain/reservation"
	"mobirent/internal/domain/user"

	"github.com/google/uuid"
)

// UnitOfWork runs command work inside a single transaction so the
// reservation and vehicle writes of one operation commit or roll back
// together.
type UnitOfWork interface {
	// Within: full transaction for write operations with retry on
	// serialization failures.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads: non-transactional reads for validation and lookups.
	Reads() CommandReads
}

type Tx interface {
	Reservations() ReservationRepository
	Vehicles() VehicleRepository
	Reads() CommandReads
}

type ReservationRepository interface {
	Create(ctx context.Context, res *reservation.Reservation) (uuid.UUID, error)
	// Update persists status, payment info, vehicle reference, cost, refund,
	// timestamps and the full add-on list of an already created reservation.
	Update(ctx context.Context, res *reservation.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	// HasOverlap reports whether any reservation for the vehicle in one of
	// the given statuses intersects the range. exclude skips one reservation
	// (uuid.Nil to skip none).
	HasOverlap(ctx context.Context, vehicleID uuid.UUID, dates reservation.DateRange, statuses []reservation.Status, exclude uuid.UUID) (bool, error)
	// CommittedVehicleIDs lists vehicles pinned by other reservations in the
	// given statuses over the range.
	CommittedVehicleIDs(ctx context.Context, dates reservation.DateRange, statuses []reservation.Status, exclude uuid.UUID) ([]uuid.UUID, error)
}

type VehicleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID) ([]*fleet.Vehicle, error)
	Update(ctx context.Context, v *fleet.Vehicle) error
}

type CommandReads interface {
	BranchByID(ctx context.Context, id uuid.UUID) (*fleet.Branch, error)
	// AddOnsByIDs resolves catalog entries; absent ids are simply missing
	// from the returned map.
	AddOnsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]reservation.CatalogEntry, error)
	UserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UserByEmail(ctx context.Context, email string) (*user.User, error)
}
