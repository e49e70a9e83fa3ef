package port

import (
	"context"

	"adoption-tracker-service/internal/core/domain"
)

// ArtifactStoragePort записывает отдельное объявление сразу после изменения
type ArtifactStoragePort interface {
	Write(ctx context.Context, listing domain.Listing) error
}
