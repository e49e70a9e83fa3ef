package pawsfetcher

import (
	"fmt"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"

	"github.com/gocolly/colly/v2"
)

// PAWSFetcherAdapter читает страницу собак PAWS
type PAWSFetcherAdapter struct {
	// родительский коллектор, который разделяет лимиты
	collector *colly.Collector
	baseURL   string
}

// NewPAWSFetcherAdapter - конструктор
func NewPAWSFetcherAdapter(baseURL string, opts scraper.Options) (*PAWSFetcherAdapter, error) {
	c, err := scraper.NewCollector(baseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("PAWSFetcherAdapter: %w", err)
	}
	return &PAWSFetcherAdapter{collector: c, baseURL: baseURL}, nil
}

func (a *PAWSFetcherAdapter) Provider() string {
	return domain.ProviderPAWS
}
