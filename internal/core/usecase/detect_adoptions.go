package usecase

import (
	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
	"context"
	"fmt"
	"time"
)

// DetectAdoptionsUseCase снимает с учета объявления, которые источник давно не возвращал
type DetectAdoptionsUseCase struct {
	store     *domain.StateStore
	artifacts port.ArtifactStoragePort
	printer   port.ListingPrinterPort
	threshold time.Duration
}

// NewDetectAdoptionsUseCase создает новый экземпляр DetectAdoptionsUseCase.
// threshold должен превышать длительность полного цикла опроса всех источников.
func NewDetectAdoptionsUseCase(
	store *domain.StateStore,
	artifacts port.ArtifactStoragePort,
	printer port.ListingPrinterPort,
	threshold time.Duration,
) (*DetectAdoptionsUseCase, error) {
	if store == nil || artifacts == nil || printer == nil {
		return nil, fmt.Errorf("detect adoptions: store, artifacts and printer are required")
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("detect adoptions: threshold must be positive, got %s", threshold)
	}
	return &DetectAdoptionsUseCase{
		store:     store,
		artifacts: artifacts,
		printer:   printer,
		threshold: threshold,
	}, nil
}

// Execute возвращает все снятые с учета записи, включая исключенные породы
func (uc *DetectAdoptionsUseCase) Execute(ctx context.Context) []domain.Listing {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":  "DetectAdoptions",
		"threshold": uc.threshold.String(),
	})

	retired := uc.store.Sweep(uc.threshold)
	if len(retired) == 0 {
		return nil
	}

	reported := 0
	for _, l := range retired {
		if l.Excluded {
			logger.Debug("Excluded listing retired silently", port.Fields{"listing": l.Key().String()})
			continue
		}

		if err := uc.artifacts.Write(ctx, l); err != nil {
			logger.Error("Failed to write adopted listing artifact", err, port.Fields{"listing": l.Key().String()})
		}

		uc.printer.PrintListing(l)
		reported++

		logger.Info("Listing retired as adopted", port.Fields{
			"listing":    l.Key().String(),
			"name":       l.Name,
			"unseen_for": (time.Duration(l.TimeAdopted-l.TimeSeen) * time.Second).String(),
		})
	}

	if reported > 0 {
		uc.printer.PrintBreak()
	}

	return retired
}
