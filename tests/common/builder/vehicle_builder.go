//go:build unit

package builder

import (
	"time"

	"mobirent/internal/domain/fleet"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type VehicleBuilder struct {
	ID                   uuid.UUID
	BranchID             uuid.UUID
	Brand                string
	Model                string
	LicensePlate         string
	DailyRateCents       int64
	Available            bool
	NeedsMaintenance     bool
	MaintenanceReason    string
	MaintenanceStartedAt *time.Time
}

func NewVehicleBuilder() *VehicleBuilder {
	return &VehicleBuilder{
		ID:             uuid.New(),
		BranchID:       uuid.New(),
		Brand:          "Toyota",
		Model:          "Corolla",
		LicensePlate:   "AB123CD",
		DailyRateCents: 10000,
		Available:      true,
	}
}

func (b *VehicleBuilder) With(mutate func(*VehicleBuilder)) *VehicleBuilder {
	mutate(b)
	return b
}

func (b *VehicleBuilder) WithRate(cents int64) *VehicleBuilder {
	b.DailyRateCents = cents
	return b
}

func (b *VehicleBuilder) WithBranch(id uuid.UUID) *VehicleBuilder {
	b.BranchID = id
	return b
}

func (b *VehicleBuilder) UnderMaintenance(reason string) *VehicleBuilder {
	b.NeedsMaintenance = true
	b.MaintenanceReason = reason
	b.Available = false
	return b
}

func (b *VehicleBuilder) Unavailable() *VehicleBuilder {
	b.Available = false
	return b
}

// Clone copies the builder so variants can diverge from a shared base.
func (b *VehicleBuilder) Clone() *VehicleBuilder {
	var c VehicleBuilder
	_ = copier.Copy(&c, b)
	return &c
}

func (b *VehicleBuilder) BuildDomain() *fleet.Vehicle {
	return fleet.ReconstructVehicle(
		b.ID, b.BranchID,
		b.Brand, b.Model, b.LicensePlate,
		b.DailyRateCents,
		b.Available, b.NeedsMaintenance,
		b.MaintenanceReason, b.MaintenanceStartedAt,
	)
}
