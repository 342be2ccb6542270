package readstore

import (
	"context"

	"mobirent/internal/domain/fleet"
	"mobirent/internal/infra/repository"
	"mobirent/internal/usecase/queries"

	"github.com/google/uuid"
)

type FleetReadStore struct {
	db repository.DBTX
}

func NewFleetReadStore(db repository.DBTX) *FleetReadStore {
	return &FleetReadStore{db: db}
}

func (s *FleetReadStore) BranchByID(ctx context.Context, id uuid.UUID) (*fleet.Branch, error) {
	const query = `SELECT id, name, address FROM branches WHERE id = $1`

	var b fleet.Branch
	if err := s.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.Address); err != nil {
		return nil, wrapReadErr("failed to find branch", err)
	}
	return &b, nil
}

func (s *FleetReadStore) ListBranches(ctx context.Context) ([]*queries.BranchView, error) {
	const query = `SELECT id, name, address FROM branches ORDER BY name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, wrapReadErr("failed to list branches", err)
	}
	defer rows.Close()

	var out []*queries.BranchView
	for rows.Next() {
		var v queries.BranchView
		if err := rows.Scan(&v.ID, &v.Name, &v.Address); err != nil {
			return nil, wrapReadErr("failed to scan branch", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapReadErr("failed to iterate branches", err)
	}
	return out, nil
}

func (s *FleetReadStore) ListVehicles(ctx context.Context, branchID *uuid.UUID) ([]*queries.VehicleView, error) {
	query := `
		SELECT v.id, v.branch_id, b.name, v.brand, v.model, v.license_plate,
		       v.daily_rate_cents, v.available, v.needs_maintenance
		FROM vehicles v
		JOIN branches b ON b.id = v.branch_id`
	var args []any
	if branchID != nil {
		query += ` WHERE v.branch_id = $1`
		args = append(args, *branchID)
	}
	query += ` ORDER BY v.brand, v.model`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapReadErr("failed to list vehicles", err)
	}
	defer rows.Close()

	var out []*queries.VehicleView
	for rows.Next() {
		var v queries.VehicleView
		if err := rows.Scan(&v.ID, &v.BranchID, &v.BranchName, &v.Brand, &v.Model,
			&v.LicensePlate, &v.DailyRateCents, &v.Available, &v.NeedsMaintenance); err != nil {
			return nil, wrapReadErr("failed to scan vehicle", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapReadErr("failed to iterate vehicles", err)
	}
	return out, nil
}

func (s *FleetReadStore) ListAddOns(ctx context.Context) ([]*queries.AddOnCatalogView, error) {
	const query = `SELECT id, name, price_cents FROM add_ons ORDER BY name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, wrapReadErr("failed to list add-ons", err)
	}
	defer rows.Close()

	var out []*queries.AddOnCatalogView
	for rows.Next() {
		var v queries.AddOnCatalogView
		if err := rows.Scan(&v.ID, &v.Name, &v.PriceCents); err != nil {
			return nil, wrapReadErr("failed to scan add-on", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapReadErr("failed to iterate add-ons", err)
	}
	return out, nil
}
