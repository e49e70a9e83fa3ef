package postgres

import (
	"context"
	"fmt"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createListingsTable = `
CREATE TABLE IF NOT EXISTS adoption_listings (
	provider     TEXT    NOT NULL,
	shelter_id   TEXT    NOT NULL,
	animal_id    TEXT    NOT NULL,
	name         TEXT    NOT NULL,
	breed        TEXT    NOT NULL,
	photo_url    TEXT,
	pending      BOOLEAN NOT NULL,
	excluded     BOOLEAN NOT NULL,
	time_found   BIGINT  NOT NULL,
	time_pending BIGINT  NOT NULL,
	time_adopted BIGINT  NOT NULL,
	time_seen    BIGINT  NOT NULL,
	raw_data     JSONB,
	cycle_id     TEXT,
	archived_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (provider, shelter_id, animal_id)
)`

const upsertListing = `
INSERT INTO adoption_listings (
	provider, shelter_id, animal_id, name, breed, photo_url, pending, excluded,
	time_found, time_pending, time_adopted, time_seen, raw_data, cycle_id, archived_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
ON CONFLICT (provider, shelter_id, animal_id) DO UPDATE SET
	name         = EXCLUDED.name,
	breed        = EXCLUDED.breed,
	photo_url    = EXCLUDED.photo_url,
	pending      = EXCLUDED.pending,
	excluded     = EXCLUDED.excluded,
	time_found   = EXCLUDED.time_found,
	time_pending = EXCLUDED.time_pending,
	time_adopted = EXCLUDED.time_adopted,
	time_seen    = EXCLUDED.time_seen,
	raw_data     = COALESCE(EXCLUDED.raw_data, adoption_listings.raw_data),
	cycle_id     = EXCLUDED.cycle_id,
	archived_at  = now()`

// ListingArchiveAdapter копирует артефакты объявлений в PostgreSQL
type ListingArchiveAdapter struct {
	pool *pgxpool.Pool
}

// NewListingArchiveAdapter - конструктор, создает таблицу при необходимости
func NewListingArchiveAdapter(ctx context.Context, pool *pgxpool.Pool) (*ListingArchiveAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("ListingArchiveAdapter: pool is required")
	}
	if _, err := pool.Exec(ctx, createListingsTable); err != nil {
		return nil, fmt.Errorf("ListingArchiveAdapter: failed to create adoption_listings table: %w", err)
	}
	return &ListingArchiveAdapter{pool: pool}, nil
}

// Write вставляет или обновляет запись объявления
func (a *ListingArchiveAdapter) Write(ctx context.Context, l domain.Listing) error {
	var raw []byte
	if len(l.RawData) > 0 {
		raw = l.RawData
	}

	var cycle *string
	if id := contextkeys.CycleIDFromContext(ctx); id != "" {
		cycle = &id
	}

	_, err := a.pool.Exec(ctx, upsertListing,
		l.Provider, l.ShelterID, l.AnimalID, l.Name, l.Breed, l.PhotoURL, l.Pending, l.Excluded,
		l.TimeFound, l.TimePending, l.TimeAdopted, l.TimeSeen, raw, cycle,
	)
	if err != nil {
		return fmt.Errorf("ListingArchiveAdapter: failed to upsert listing %s: %w", l.Key(), err)
	}
	return nil
}
