package petangofetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"

	"github.com/gocolly/colly/v2"
)

type searchResponse struct {
	Items []json.RawMessage `json:"items"`
}

// isBreedSearch - поиск по локации и породе, а не по приюту
func isBreedSearch(criteria domain.SearchCriteria) bool {
	return criteria.BreedID != "" && criteria.ShelterID == domain.DefaultShelterID
}

// buildForm собирает тело формы. Cursor - смещение recordOffset.
func buildForm(criteria domain.SearchCriteria, offset int) (form map[string]string, moduleID, tabID string) {
	form = map[string]string{
		"speciesId":        "1",
		"goodWithDogs":     "false",
		"goodWithCats":     "false",
		"goodWithChildren": "false",
		"mustHavePhoto":    "false",
		"mustHaveVideo":    "false",
		"happyTails":       "false",
		"lostAnimals":      "false",
		"recordOffset":     strconv.Itoa(offset),
		"recordAmount":     strconv.Itoa(PageSize),
	}

	if isBreedSearch(criteria) {
		form["location"] = criteria.Location
		form["distance"] = searchDistanceMiles
		form["breedId"] = criteria.BreedID
		form["gender"] = criteria.Gender
		form["size"] = ""
		form["color"] = ""
		form["declawed"] = ""
		form["animalId"] = ""
		form["moduleId"] = breedModuleID
		return form, breedModuleID, breedTabID
	}

	form["shelterId"] = criteria.ShelterID
	form["moduleId"] = shelterModuleID
	return form, shelterModuleID, shelterTabID
}

// FetchListings выполняет один POST поиска. Полная страница означает, что есть следующая.
func (a *PetangoFetcherAdapter) FetchListings(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, string, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PetangoFetcherAdapter(FetchListings)",
		"shelter_id": criteria.ShelterID,
	})

	offset := 0
	if criteria.Cursor != "" {
		n, err := strconv.Atoi(criteria.Cursor)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("petango adapter: invalid cursor %q", criteria.Cursor)
		}
		offset = n
	}
	form, moduleID, tabID := buildForm(criteria, offset)

	collector := a.collector.Clone()
	collector.Context = ctx

	var listings []domain.Listing
	var itemCount int
	var responseErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("ModuleId", moduleID)
		r.Headers.Set("TabId", tabID)
		logger.Debug("Making request to fetch listings", port.Fields{"url": r.URL.String(), "offset": offset})
	})

	collector.OnResponse(func(r *colly.Response) {
		var data searchResponse
		if err := json.Unmarshal(r.Body, &data); err != nil {
			responseErr = &domain.FetchError{
				Provider:   domain.ProviderPetango,
				URL:        r.Request.URL.String(),
				StatusCode: r.StatusCode,
				Err:        fmt.Errorf("decode search response: %w", err),
			}
			return
		}
		itemCount = len(data.Items)
		for _, item := range data.Items {
			l, err := toDomainListing(item, criteria.ShelterID)
			if err != nil {
				logger.Warn("Skipping malformed Petango item", port.Fields{"error": err.Error()})
				continue
			}
			listings = append(listings, l)
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		responseErr = &domain.FetchError{
			Provider:   domain.ProviderPetango,
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Err:        err,
		}
	})

	visitErr := collector.Post(a.baseURL, form)
	collector.Wait()

	if responseErr != nil {
		return nil, "", responseErr
	}
	if visitErr != nil {
		return nil, "", &domain.FetchError{Provider: domain.ProviderPetango, URL: a.baseURL, Err: visitErr}
	}

	nextCursor := ""
	if itemCount >= PageSize {
		nextCursor = strconv.Itoa(offset + itemCount)
	}

	logger.Debug("Finished fetching listings", port.Fields{
		"listings_fetched": len(listings),
		"next_cursor":      nextCursor,
	})
	return listings, nextCursor, nil
}
