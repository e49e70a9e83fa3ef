package petfinderfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"

	"github.com/gocolly/colly/v2"
)

type searchResponse struct {
	Result struct {
		Animals    []json.RawMessage `json:"animals"`
		Pagination struct {
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	} `json:"result"`
}

func (a *PetfinderFetcherAdapter) buildURLFromCriteria(criteria domain.SearchCriteria, page int) (string, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit[]", strconv.Itoa(PageSize))
	q.Set("status", "adoptable")
	q.Set("token", criteria.Token)
	q.Set("distance[]", "Anywhere")
	q.Set("type[]", "dogs")
	q.Set("sort[]", "recently_added")
	q.Set("shelter_id[]", criteria.ShelterID)
	q.Set("include_transportable", "true")

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchListings загружает одну страницу приюта. Курсор - номер следующей страницы.
func (a *PetfinderFetcherAdapter) FetchListings(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PetfinderFetcherAdapter(FetchListings)",
		"shelter_id": criteria.ShelterID,
	})

	page := 1
	if criteria.Cursor != "" {
		n, err := strconv.Atoi(criteria.Cursor)
		if err != nil || n < 1 {
			return nil, "", fmt.Errorf("petfinder adapter: invalid cursor %q", criteria.Cursor)
		}
		page = n
	}

	targetURL, err := a.buildURLFromCriteria(criteria, page)
	if err != nil {
		return nil, "", fmt.Errorf("petfinder adapter: failed to build URL from criteria: %w", err)
	}

	collector := a.collector.Clone()
	collector.Context = ctx

	var listings []domain.Listing
	var totalPages int
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("X-Requested-With", "XMLHttpRequest")
		logger.Debug("Making request to fetch listings", port.Fields{"page": page})
	})

	collector.OnResponse(func(r *colly.Response) {
		var data searchResponse
		if err := json.Unmarshal(r.Body, &data); err != nil {
			responseErr = &domain.FetchError{
				Provider:   domain.ProviderPetfinder,
				URL:        r.Request.URL.String(),
				StatusCode: r.StatusCode,
				Err:        fmt.Errorf("decode search response: %w", err),
			}
			return
		}
		totalPages = data.Result.Pagination.TotalPages
		for _, item := range data.Result.Animals {
			l, err := toDomainListing(item, criteria.ShelterID)
			if err != nil {
				logger.Warn("Skipping malformed Petfinder animal", port.Fields{"error": err.Error()})
				continue
			}
			listings = append(listings, l)
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		responseErr = &domain.FetchError{
			Provider:   domain.ProviderPetfinder,
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Err:        err,
		}
	})

	visitErr := collector.Visit(targetURL)
	collector.Wait()

	if responseErr != nil {
		return nil, "", responseErr
	}
	if visitErr != nil {
		return nil, "", &domain.FetchError{Provider: domain.ProviderPetfinder, URL: a.baseURL, Err: visitErr}
	}

	nextCursor := ""
	if page < totalPages {
		nextCursor = strconv.Itoa(page + 1)
	}

	logger.Debug("Finished fetching listings", port.Fields{
		"page":             page,
		"total_pages":      totalPages,
		"listings_fetched": len(listings),
	})
	return listings, nextCursor, nil
}
