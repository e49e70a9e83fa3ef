package usecase

import (
	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
	"context"
	"fmt"
)

// RestoreStateUseCase загружает снимок при старте и показывает оператору активные записи
type RestoreStateUseCase struct {
	snapshots port.SnapshotStoragePort
	store     *domain.StateStore
	printer   port.ListingPrinterPort
}

func NewRestoreStateUseCase(snapshots port.SnapshotStoragePort, store *domain.StateStore, printer port.ListingPrinterPort) (*RestoreStateUseCase, error) {
	if snapshots == nil || store == nil || printer == nil {
		return nil, fmt.Errorf("restore state: snapshots, store and printer are required")
	}
	return &RestoreStateUseCase{snapshots: snapshots, store: store, printer: printer}, nil
}

// Execute возвращает количество восстановленных записей.
// Поврежденный снимок - ошибка: продолжать с пустым состоянием значит потерять историю.
func (uc *RestoreStateUseCase) Execute(ctx context.Context) (int, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "RestoreState"})

	res, err := uc.snapshots.Load(ctx)
	if err != nil {
		logger.Error("Failed to load snapshot", err, nil)
		return 0, fmt.Errorf("restore state: %w", err)
	}

	if res.Status == domain.SnapshotMissing {
		logger.Info("No snapshot found, starting with empty state", nil)
		return 0, nil
	}

	if err := uc.store.Restore(res.Snapshot); err != nil {
		logger.Error("Snapshot contains invalid records", err, nil)
		return 0, fmt.Errorf("restore state: %w: %v", domain.ErrSnapshotCorrupt, err)
	}

	// печатаем по приютам, как они лежат в снимке
	listings := uc.store.Listings()
	for i, l := range listings {
		uc.printer.PrintListing(l)
		last := i == len(listings)-1
		if last || listings[i+1].Provider != l.Provider || listings[i+1].ShelterID != l.ShelterID {
			uc.printer.PrintBreak()
		}
	}

	logger.Info("State restored from snapshot", port.Fields{"active_listings": len(listings)})
	return len(listings), nil
}
