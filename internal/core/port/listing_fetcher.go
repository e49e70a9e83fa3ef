package port

import (
	"context"

	"adoption-tracker-service/internal/core/domain"
)

// ListingFetcherPort - граница с адаптером конкретного источника.
// Адаптер возвращает уже нормализованные объявления одной страницы и курсор следующей
// (пустая строка - страниц больше нет).
type ListingFetcherPort interface {
	Provider() string

	FetchListings(ctx context.Context, criteria domain.SearchCriteria) (listings []domain.Listing, nextCursor string, err error)
}
