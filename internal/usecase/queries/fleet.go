package queries

import (
	"context"

	"github.com/google/uuid"
)

type VehicleView struct {
	ID               uuid.UUID `json:"id"`
	BranchID         uuid.UUID `json:"branch_id"`
	BranchName       string    `json:"branch_name"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	LicensePlate     string    `json:"license_plate"`
	DailyRateCents   int64     `json:"daily_rate_cents"`
	Available        bool      `json:"available"`
	NeedsMaintenance bool      `json:"needs_maintenance"`
}

type BranchView struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
}

type AddOnCatalogView struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
}

type FleetStore interface {
	// ListVehicles filters by branch when branchID is non-nil.
	ListVehicles(ctx context.Context, branchID *uuid.UUID) ([]*VehicleView, error)
	ListBranches(ctx context.Context) ([]*BranchView, error)
	ListAddOns(ctx context.Context) ([]*AddOnCatalogView, error)
}

type FleetQueries interface {
	Vehicles(ctx context.Context, branchID *uuid.UUID) ([]*VehicleView, error)
	Branches(ctx context.Context) ([]*BranchView, error)
	AddOns(ctx context.Context) ([]*AddOnCatalogView, error)
}

type fleetQueriesImpl struct {
	store FleetStore
}

func NewFleetQueries(store FleetStore) FleetQueries {
	return &fleetQueriesImpl{store: store}
}

func (q *fleetQueriesImpl) Vehicles(ctx context.Context, branchID *uuid.UUID) ([]*VehicleView, error) {
	return q.store.ListVehicles(ctx, branchID)
}

func (q *fleetQueriesImpl) Branches(ctx context.Context) ([]*BranchView, error) {
	return q.store.ListBranches(ctx)
}

func (q *fleetQueriesImpl) AddOns(ctx context.Context) ([]*AddOnCatalogView, error) {
	return q.store.ListAddOns(ctx)
}
