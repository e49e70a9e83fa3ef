package pawsfetcher

import (
	"context"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// FetchListings загружает единственную страницу PAWS. Пагинации у источника нет.
func (a *PAWSFetcherAdapter) FetchListings(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "PAWSFetcherAdapter(FetchListings)"})

	collector := a.collector.Clone()
	collector.Context = ctx

	var listings []domain.Listing
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		logger.Debug("Making request to fetch listings", port.Fields{"url": r.URL.String()})
	})

	collector.OnHTML("section.cards article", func(e *colly.HTMLElement) {
		l, err := toDomainListing(e)
		if err != nil {
			logger.Warn("Skipping malformed PAWS card", port.Fields{"error": err.Error()})
			return
		}
		listings = append(listings, l)
	})

	collector.OnError(func(r *colly.Response, err error) {
		responseErr = &domain.FetchError{
			Provider:   domain.ProviderPAWS,
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Err:        err,
		}
	})

	visitErr := collector.Visit(a.baseURL)
	collector.Wait()

	if responseErr != nil {
		return nil, "", responseErr
	}
	if visitErr != nil {
		return nil, "", &domain.FetchError{Provider: domain.ProviderPAWS, URL: a.baseURL, Err: visitErr}
	}

	logger.Debug("Finished fetching listings", port.Fields{"url": a.baseURL, "listings_fetched": len(listings)})
	return listings, "", nil
}
