package petharborfetcher

import (
	"fmt"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"

	"github.com/gocolly/colly/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PageRows - строк в одной странице результатов
const PageRows = 25

// PetharborFetcherAdapter разбирает HTML-таблицу результатов PetHarbor
type PetharborFetcherAdapter struct {
	collector *colly.Collector
	baseURL   string
	// PetHarbor отдает имена капсом
	nameCaser cases.Caser
}

// NewPetharborFetcherAdapter - конструктор
func NewPetharborFetcherAdapter(baseURL string, opts scraper.Options) (*PetharborFetcherAdapter, error) {
	c, err := scraper.NewCollector(baseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("PetharborFetcherAdapter: %w", err)
	}
	return &PetharborFetcherAdapter{
		collector: c,
		baseURL:   baseURL,
		nameCaser: cases.Title(language.English),
	}, nil
}

func (a *PetharborFetcherAdapter) Provider() string {
	return domain.ProviderPetharbor
}
