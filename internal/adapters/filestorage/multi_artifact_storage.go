package filestorage

import (
	"context"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
)

// MultiArtifactStorage пишет артефакт в основное хранилище и копирует его во вторичные архивы.
// Ошибки архивов логируются и не влияют на результат.
type MultiArtifactStorage struct {
	primary     port.ArtifactStoragePort
	secondaries []port.ArtifactStoragePort
}

// NewMultiArtifactStorage - конструктор. nil среди вторичных хранилищ пропускаются.
func NewMultiArtifactStorage(primary port.ArtifactStoragePort, secondaries ...port.ArtifactStoragePort) port.ArtifactStoragePort {
	var valid []port.ArtifactStoragePort
	for _, s := range secondaries {
		if s != nil {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return primary
	}
	return &MultiArtifactStorage{primary: primary, secondaries: valid}
}

func (m *MultiArtifactStorage) Write(ctx context.Context, l domain.Listing) error {
	err := m.primary.Write(ctx, l)

	for _, s := range m.secondaries {
		if archiveErr := s.Write(ctx, l); archiveErr != nil {
			contextkeys.LoggerFromContext(ctx).Warn("Failed to archive listing", port.Fields{
				"listing": l.Key().String(),
				"error":   archiveErr.Error(),
			})
		}
	}
	return err
}
