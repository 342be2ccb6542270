package reservation

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNegativeQuantity = errors.New("add-on quantity cannot be negative")
	ErrUnknownAddOn     = errors.New("add-on not found in catalog")
)

// AddOnInput is one requested line on an add-on update call.
type AddOnInput struct {
	AddOnID  uuid.UUID
	Quantity int
}

// CatalogEntry is the current catalog state for an add-on.
type CatalogEntry struct {
	ID         uuid.UUID
	Name       string
	PriceCents int64
}

// ReconcileAddOns validates the requested lines against the catalog and
// builds the replacement list. Zero quantities are dropped silently, negative
// quantities are rejected, and unit prices are re-captured from the catalog's
// current price: each update re-locks pricing as of now.
func ReconcileAddOns(inputs []AddOnInput, catalog map[uuid.UUID]CatalogEntry) ([]AddOnLine, error) {
	lines := make([]AddOnLine, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity < 0 {
			return nil, ErrNegativeQuantity
		}
		if in.Quantity == 0 {
			continue
		}
		entry, ok := catalog[in.AddOnID]
		if !ok {
			return nil, ErrUnknownAddOn
		}
		lines = append(lines, AddOnLine{
			AddOnID:        entry.ID,
			Quantity:       in.Quantity,
			UnitPriceCents: entry.PriceCents,
		})
	}
	return lines, nil
}
