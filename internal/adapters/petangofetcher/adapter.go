package petangofetcher

import (
	"fmt"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"

	"github.com/gocolly/colly/v2"
)

// Модули API поиска Petango и вкладки, с которых их вызывает сайт
const (
	shelterModuleID = "983"
	shelterTabID    = "278"
	breedModuleID   = "843"
	breedTabID      = "260"
)

// PageSize - сколько записей запрашивается за раз
const PageSize = 100

const searchDistanceMiles = "250"

// PetangoFetcherAdapter работает с JSON API поиска Petango
type PetangoFetcherAdapter struct {
	collector *colly.Collector
	baseURL   string
}

// NewPetangoFetcherAdapter - конструктор
func NewPetangoFetcherAdapter(baseURL string, opts scraper.Options) (*PetangoFetcherAdapter, error) {
	c, err := scraper.NewCollector(baseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("PetangoFetcherAdapter: %w", err)
	}
	return &PetangoFetcherAdapter{collector: c, baseURL: baseURL}, nil
}

func (a *PetangoFetcherAdapter) Provider() string {
	return domain.ProviderPetango
}
