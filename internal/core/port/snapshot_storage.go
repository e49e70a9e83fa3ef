package port

import (
	"context"

	"adoption-tracker-service/internal/core/domain"
)

// SnapshotStoragePort сохраняет и загружает полный снимок активных объявлений
type SnapshotStoragePort interface {
	// Save должен быть атомарным: сбой посередине не портит предыдущий снимок
	Save(ctx context.Context, snapshot domain.Snapshot) error

	// Load не считает отсутствие снимка ошибкой (Status == SnapshotMissing)
	Load(ctx context.Context) (domain.SnapshotLoadResult, error)
}
