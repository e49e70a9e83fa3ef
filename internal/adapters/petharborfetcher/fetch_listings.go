package petharborfetcher

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"

	"github.com/gocolly/colly/v2"
)

func (a *PetharborFetcherAdapter) buildURLFromCriteria(criteria domain.SearchCriteria, page int) (string, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("searchtype", "ADOPT")
	q.Set("start", "3")
	q.Set("friends", "1")
	q.Set("samaritans", "1")
	q.Set("nosuccess", "0")
	q.Set("rows", strconv.Itoa(PageRows))
	q.Set("imght", "120")
	q.Set("imgres", "detail")
	q.Set("tWidth", "200")
	q.Set("view", "sysadm.v_animal_short")
	q.Set("fontface", "arial")
	q.Set("fontsize", "10")
	q.Set("miles", "50")
	q.Set("shelterlist", "'"+criteria.ShelterID+"'")
	q.Set("atype", "")
	q.Set("where", "type_DOG")
	q.Set("page", strconv.Itoa(page))

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchListings загружает одну страницу таблицы. Следующая страница есть, пока на странице есть ссылка "Next Page".
func (a *PetharborFetcherAdapter) FetchListings(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PetharborFetcherAdapter(FetchListings)",
		"shelter_id": criteria.ShelterID,
	})

	page := 1
	if criteria.Cursor != "" {
		n, err := strconv.Atoi(criteria.Cursor)
		if err != nil || n < 1 {
			return nil, "", fmt.Errorf("petharbor adapter: invalid cursor %q", criteria.Cursor)
		}
		page = n
	}

	targetURL, err := a.buildURLFromCriteria(criteria, page)
	if err != nil {
		return nil, "", fmt.Errorf("petharbor adapter: failed to build URL from criteria: %w", err)
	}

	collector := a.collector.Clone()
	collector.Context = ctx

	var listings []domain.Listing
	var hasNext bool
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		logger.Debug("Making request to fetch listings", port.Fields{"page": page})
	})

	collector.OnHTML("table.ResultsTable tr", func(e *colly.HTMLElement) {
		l, skip, err := a.toDomainListing(e, criteria.ShelterID)
		if skip {
			return
		}
		if err != nil {
			logger.Warn("Skipping malformed PetHarbor row", port.Fields{"error": err.Error()})
			return
		}
		listings = append(listings, l)
	})

	collector.OnHTML("a", func(e *colly.HTMLElement) {
		if strings.TrimSpace(e.Text) == "Next Page" {
			hasNext = true
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		responseErr = &domain.FetchError{
			Provider:   domain.ProviderPetharbor,
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
		return nil, "", &domain.FetchError{Provider: domain.ProviderPetharbor, URL: a.baseURL, Err: visitErr}
	}

	nextCursor := ""
	if hasNext {
		nextCursor = strconv.Itoa(page + 1)
	}

	logger.Debug("Finished fetching listings", port.Fields{
		"page":             page,
		"listings_fetched": len(listings),
		"next_cursor":      nextCursor,
	})
	return listings, nextCursor, nil
}
