package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const createListingsTable = `
CREATE TABLE IF NOT EXISTS adoption_listings (
	provider     TEXT    NOT NULL,
	shelter_id   TEXT    NOT NULL,
	animal_id    TEXT    NOT NULL,
	name         TEXT    NOT NULL,
	breed        TEXT    NOT NULL,
	photo_url    TEXT,
	pending      INTEGER NOT NULL,
	excluded     INTEGER NOT NULL,
	time_found   INTEGER NOT NULL,
	time_pending INTEGER NOT NULL,
	time_adopted INTEGER NOT NULL,
	time_seen    INTEGER NOT NULL,
	raw_data     TEXT,
	cycle_id     TEXT,
	archived_at  TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (provider, shelter_id, animal_id)
)`

const upsertListing = `
INSERT INTO adoption_listings (
	provider, shelter_id, animal_id, name, breed, photo_url, pending, excluded,
	time_found, time_pending, time_adopted, time_seen, raw_data, cycle_id, archived_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (provider, shelter_id, animal_id) DO UPDATE SET
	name         = excluded.name,
	breed        = excluded.breed,
	photo_url    = excluded.photo_url,
	pending      = excluded.pending,
	excluded     = excluded.excluded,
	time_found   = excluded.time_found,
	time_pending = excluded.time_pending,
	time_adopted = excluded.time_adopted,
	time_seen    = excluded.time_seen,
	raw_data     = COALESCE(excluded.raw_data, adoption_listings.raw_data),
	cycle_id     = excluded.cycle_id,
	archived_at  = CURRENT_TIMESTAMP`

// ListingArchiveAdapter копирует артефакты объявлений в локальный файл SQLite
type ListingArchiveAdapter struct {
	db *sql.DB
}

// NewListingArchiveAdapter открывает базу по пути к файлу и создает таблицу
func NewListingArchiveAdapter(ctx context.Context, path string) (*ListingArchiveAdapter, error) {
	if path == "" {
		return nil, fmt.Errorf("ListingArchiveAdapter: path is required")
	}
	// ncruces/go-sqlite3 регистрирует драйвер "sqlite3" и принимает DSN вида file:...
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("ListingArchiveAdapter: open db: %w", err)
	}
	// одна запись за раз из цикла опроса
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ListingArchiveAdapter: ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createListingsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("ListingArchiveAdapter: failed to create adoption_listings table: %w", err)
	}
	return &ListingArchiveAdapter{db: db}, nil
}

// Write вставляет или обновляет запись объявления
func (a *ListingArchiveAdapter) Write(ctx context.Context, l domain.Listing) error {
	var photo, raw sql.NullString
	if l.HasPhoto() {
		photo = sql.NullString{String: *l.PhotoURL, Valid: true}
	}
	if len(l.RawData) > 0 {
		raw = sql.NullString{String: string(l.RawData), Valid: true}
	}

	var cycle sql.NullString
	if id := contextkeys.CycleIDFromContext(ctx); id != "" {
		cycle = sql.NullString{String: id, Valid: true}
	}

	_, err := a.db.ExecContext(ctx, upsertListing,
		l.Provider, l.ShelterID, l.AnimalID, l.Name, l.Breed, photo, l.Pending, l.Excluded,
		l.TimeFound, l.TimePending, l.TimeAdopted, l.TimeSeen, raw, cycle,
	)
	if err != nil {
		return fmt.Errorf("ListingArchiveAdapter: failed to upsert listing %s: %w", l.Key(), err)
	}
	return nil
}

// CycleID возвращает идентификатор цикла, который последним записал объявление
func (a *ListingArchiveAdapter) CycleID(ctx context.Context, key domain.ListingKey) (string, error) {
	var cycle sql.NullString
	err := a.db.QueryRowContext(ctx,
		`SELECT cycle_id FROM adoption_listings WHERE provider = ? AND shelter_id = ? AND animal_id = ?`,
		key.Provider, key.ShelterID, key.AnimalID).Scan(&cycle)
	if err != nil {
		return "", fmt.Errorf("ListingArchiveAdapter: failed to read cycle of %s: %w", key, err)
	}
	return cycle.String, nil
}

// Get читает запись из архива. ok == false, если записи нет.
func (a *ListingArchiveAdapter) Get(ctx context.Context, key domain.ListingKey) (l domain.Listing, ok bool, err error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT provider, shelter_id, animal_id, name, breed, photo_url, pending, excluded,
		       time_found, time_pending, time_adopted, time_seen, raw_data
		FROM adoption_listings WHERE provider = ? AND shelter_id = ? AND animal_id = ?`,
		key.Provider, key.ShelterID, key.AnimalID)

	var photo, raw sql.NullString
	err = row.Scan(&l.Provider, &l.ShelterID, &l.AnimalID, &l.Name, &l.Breed, &photo, &l.Pending, &l.Excluded,
		&l.TimeFound, &l.TimePending, &l.TimeAdopted, &l.TimeSeen, &raw)
	if err == sql.ErrNoRows {
		return domain.Listing{}, false, nil
	}
	if err != nil {
		return domain.Listing{}, false, fmt.Errorf("ListingArchiveAdapter: failed to read listing %s: %w", key, err)
	}
	if photo.Valid {
		l.PhotoURL = domain.StringPtr(photo.String)
	}
	if raw.Valid {
		l.RawData = []byte(raw.String)
	}
	return l, true, nil
}

// Close закрывает базу
func (a *ListingArchiveAdapter) Close() error {
	return a.db.Close()
}
