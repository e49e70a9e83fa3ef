package filestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/contracts"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
)

// SnapshotFileStorage хранит таблицу активных объявлений в одном JSON-файле
type SnapshotFileStorage struct {
	path string
}

// NewSnapshotFileStorage - конструктор. Каталог файла создается при необходимости.
func NewSnapshotFileStorage(path string) (*SnapshotFileStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot storage: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("snapshot storage: create directory %s: %w", dir, err)
		}
	}
	return &SnapshotFileStorage{path: path}, nil
}

// Path - путь к файлу снимка
func (s *SnapshotFileStorage) Path() string {
	return s.path
}

// Save атомарно заменяет файл снимка. При ошибке предыдущий файл остается нетронутым.
func (s *SnapshotFileStorage) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(toDocument(snapshot), "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot storage: encode snapshot: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot storage: %w", err)
	}

	contextkeys.LoggerFromContext(ctx).Debug("Snapshot saved", port.Fields{
		"path":     s.path,
		"listings": snapshot.Len(),
		"bytes":    len(data),
	})
	return nil
}

// Load читает снимок. Отсутствие файла - не ошибка (SnapshotMissing).
// Неразбираемый или не прошедший схему файл возвращает ошибку, оборачивающую domain.ErrSnapshotCorrupt.
func (s *SnapshotFileStorage) Load(ctx context.Context) (domain.SnapshotLoadResult, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.SnapshotLoadResult{Status: domain.SnapshotMissing}, nil
	}
	if err != nil {
		return domain.SnapshotLoadResult{}, fmt.Errorf("snapshot storage: read %s: %w", s.path, err)
	}

	if err := contracts.ValidateSnapshot(data); err != nil {
		return domain.SnapshotLoadResult{}, fmt.Errorf("%w: %s: %v", domain.ErrSnapshotCorrupt, s.path, err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.SnapshotLoadResult{}, fmt.Errorf("%w: %s: %v", domain.ErrSnapshotCorrupt, s.path, err)
	}

	snap := doc.toSnapshot()
	contextkeys.LoggerFromContext(ctx).Debug("Snapshot loaded", port.Fields{
		"path":     s.path,
		"listings": snap.Len(),
	})
	return domain.SnapshotLoadResult{Status: domain.SnapshotLoaded, Snapshot: snap}, nil
}
