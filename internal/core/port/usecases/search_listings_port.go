package usecases

import "adoption-tracker-service/internal/core/domain"

// SearchListingsPort - поиск по загруженному снимку для отчета
type SearchListingsPort interface {
	Execute(snapshot domain.Snapshot, filter domain.ListingFilter) []domain.Listing
}
