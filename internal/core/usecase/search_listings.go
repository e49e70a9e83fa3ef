package usecase

import (
	"adoption-tracker-service/internal/core/domain"
	"strings"

	"golang.org/x/text/cases"
)

// SearchListingsUseCase фильтрует записи снимка для отчета. Снимок не изменяется.
type SearchListingsUseCase struct {
	fold cases.Caser
}

func NewSearchListingsUseCase() *SearchListingsUseCase {
	return &SearchListingsUseCase{fold: cases.Fold()}
}

func (uc *SearchListingsUseCase) Execute(snapshot domain.Snapshot, filter domain.ListingFilter) []domain.Listing {
	breed := ""
	if filter.Breed != "" {
		breed = uc.fold.String(filter.Breed)
	}

	var results []domain.Listing
	for _, l := range snapshot.Listings() {
		if filter.Provider != "" && l.Provider != filter.Provider {
			continue
		}
		if filter.ShelterID != "" && l.ShelterID != filter.ShelterID {
			continue
		}
		if filter.AnimalID != "" && l.AnimalID != filter.AnimalID {
			continue
		}
		if filter.Name != "" && l.Name != filter.Name {
			continue
		}
		if breed != "" && !strings.Contains(uc.fold.String(l.Breed), breed) {
			continue
		}
		if filter.HasPhoto != nil && l.HasPhoto() != *filter.HasPhoto {
			continue
		}
		if filter.Pending != nil && l.Pending != *filter.Pending {
			continue
		}
		if filter.FoundSince != 0 && l.TimeFound < filter.FoundSince {
			continue
		}
		if filter.PendingSince != 0 && l.TimePending < filter.PendingSince {
			continue
		}
		if filter.SeenSince != 0 && l.TimeSeen < filter.SeenSince {
			continue
		}

		rec := l.Clone()
		if !filter.IncludeRawData {
			rec.RawData = nil
		}
		results = append(results, rec)
	}
	return results
}
