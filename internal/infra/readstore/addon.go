package readstore

import (
	"context"

	"mobirent/internal/domain/reservation"
	"mobirent/internal/infra/repository"

	"github.com/google/uuid"
)

type AddOnReadStore struct {
	db repository.DBTX
}

func NewAddOnReadStore(db repository.DBTX) *AddOnReadStore {
	return &AddOnReadStore{db: db}
}

// ByIDs resolves catalog entries for the given ids. Unknown ids are absent
// from the map; the caller decides whether that is an error.
func (s *AddOnReadStore) ByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]reservation.CatalogEntry, error) {
	out := make(map[uuid.UUID]reservation.CatalogEntry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const query = `SELECT id, name, price_cents FROM add_ons WHERE id = ANY($1)`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, wrapReadErr("failed to resolve add-ons", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry reservation.CatalogEntry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.PriceCents); err != nil {
			return nil, wrapReadErr("failed to scan add-on entry", err)
		}
		out[entry.ID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, wrapReadErr("failed to iterate add-on entries", err)
	}
	return out, nil
}
