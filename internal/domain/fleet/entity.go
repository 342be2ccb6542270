package fleet

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyMaintenanceReason = errors.New("maintenance reason cannot be empty")

type Vehicle struct {
	id                   uuid.UUID
	branchID             uuid.UUID
	brand                string
	model                string
	licensePlate         string
	dailyRateCents       int64
	available            bool
	needsMaintenance     bool
	maintenanceReason    string
	maintenanceStartedAt *time.Time
}

func ReconstructVehicle(
	id, branchID uuid.UUID,
	brand, model, licensePlate string,
	dailyRateCents int64,
	available, needsMaintenance bool,
	maintenanceReason string,
	maintenanceStartedAt *time.Time,
) *Vehicle {
	return &Vehicle{
		id:                   id,
		branchID:             branchID,
		brand:                brand,
		model:                model,
		licensePlate:         licensePlate,
		dailyRateCents:       dailyRateCents,
		available:            available,
		needsMaintenance:     needsMaintenance,
		maintenanceReason:    maintenanceReason,
		maintenanceStartedAt: maintenanceStartedAt,
	}
}

func (v *Vehicle) ID() uuid.UUID                    { return v.id }
func (v *Vehicle) BranchID() uuid.UUID              { return v.branchID }
func (v *Vehicle) Brand() string                    { return v.brand }
func (v *Vehicle) Model() string                    { return v.model }
func (v *Vehicle) LicensePlate() string             { return v.licensePlate }
func (v *Vehicle) DailyRateCents() int64            { return v.dailyRateCents }
func (v *Vehicle) IsAvailable() bool                { return v.available }
func (v *Vehicle) NeedsMaintenance() bool           { return v.needsMaintenance }
func (v *Vehicle) MaintenanceReason() string        { return v.maintenanceReason }
func (v *Vehicle) MaintenanceStartedAt() *time.Time { return v.maintenanceStartedAt }

// IsEligible reports whether the vehicle can be handed to a customer:
// available and not flagged for maintenance.
func (v *Vehicle) IsEligible() bool {
	return v.available && !v.needsMaintenance
}

// MarkUnavailable takes the vehicle off the availability pool (payment
// approval, pickup).
func (v *Vehicle) MarkUnavailable() {
	v.available = false
}

// Release returns the vehicle to the pool unless it independently needs
// maintenance.
func (v *Vehicle) Release() {
	if v.needsMaintenance {
		return
	}
	v.available = true
}

// FlagMaintenance records a non-empty reason and pulls the vehicle from the
// pool. Applied when a rental is returned.
func (v *Vehicle) FlagMaintenance(reason string, now time.Time) error {
	if reason == "" {
		return ErrEmptyMaintenanceReason
	}
	v.needsMaintenance = true
	v.maintenanceReason = reason
	v.maintenanceStartedAt = &now
	v.available = false
	return nil
}

// Branch is a pickup/return location. Read-only in this core.
type Branch struct {
	ID      uuid.UUID
	Name    string
	Address string
}
