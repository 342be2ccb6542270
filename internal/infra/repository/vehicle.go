package repository

import (
	"context"
	"time"

	"mobirent/internal/domain/fleet"

	"github.com/google/uuid"
)

type VehicleRepository struct {
	db DBTX
}

func NewVehicleRepository(db DBTX) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `id, branch_id, brand, model, license_plate, daily_rate_cents,
	available, needs_maintenance, maintenance_reason, maintenance_started_at`

func (r *VehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapDBErr("failed to find vehicle", err)
	}
	return vehicle, nil
}

func (r *VehicleRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]*fleet.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE branch_id = $1 ORDER BY daily_rate_cents DESC`

	rows, err := r.db.Query(ctx, query, branchID)
	if err != nil {
		return nil, wrapDBErr("failed to list branch vehicles", err)
	}
	defer rows.Close()

	var out []*fleet.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, wrapDBErr("failed to scan vehicle", err)
		}
		out = append(out, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("failed to iterate branch vehicles", err)
	}
	return out, nil
}

func (r *VehicleRepository) Update(ctx context.Context, v *fleet.Vehicle) error {
	const query = `
		UPDATE vehicles
		SET available = $2,
		    needs_maintenance = $3,
		    maintenance_reason = $4,
		    maintenance_started_at = $5
		WHERE id = $1`

	var reason *string
	if v.MaintenanceReason() != "" {
		s := v.MaintenanceReason()
		reason = &s
	}

	tag, err := r.db.Exec(ctx, query,
		v.ID(), v.IsAvailable(), v.NeedsMaintenance(), reason, v.MaintenanceStartedAt(),
	)
	if err != nil {
		return wrapDBErr("failed to update vehicle", err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr("vehicle not found for update", errNoRowsAffected)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*fleet.Vehicle, error) {
	var (
		id, branchID         uuid.UUID
		brand, model, plate  string
		dailyRateCents       int64
		available, needsMnt  bool
		maintenanceReason    *string
		maintenanceStartedAt *time.Time
	)
	err := row.Scan(&id, &branchID, &brand, &model, &plate, &dailyRateCents,
		&available, &needsMnt, &maintenanceReason, &maintenanceStartedAt)
	if err != nil {
		return nil, err
	}

	reason := ""
	if maintenanceReason != nil {
		reason = *maintenanceReason
	}
	return fleet.ReconstructVehicle(
		id, branchID, brand, model, plate, dailyRateCents,
		available, needsMnt, reason, maintenanceStartedAt,
	), nil
}
