package petfinderfetcher

import (
	"fmt"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"

	"github.com/gocolly/colly/v2"
)

// PageSize - максимальный размер страницы поиска Petfinder
const PageSize = 100

// PetfinderFetcherAdapter работает с JSON-ответами страницы поиска Petfinder
type PetfinderFetcherAdapter struct {
	collector *colly.Collector
	baseURL   string
}

// NewPetfinderFetcherAdapter - конструктор
func NewPetfinderFetcherAdapter(baseURL string, opts scraper.Options) (*PetfinderFetcherAdapter, error) {
	c, err := scraper.NewCollector(baseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("PetfinderFetcherAdapter: %w", err)
	}
	return &PetfinderFetcherAdapter{collector: c, baseURL: baseURL}, nil
}

func (a *PetfinderFetcherAdapter) Provider() string {
	return domain.ProviderPetfinder
}
