package scraper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Options - общие настройки коллектора источника
type Options struct {
	// RequestTimeout ограничивает один HTTP-запрос, 0 - таймаут colly по умолчанию
	RequestTimeout time.Duration
	// RandomDelay - случайная пауза между запросами к одному домену
	RandomDelay time.Duration
}

// NewCollector создает родительский коллектор для источника.
// Домен берется из baseURL, клоны наследуют лимиты и обработчики расширений.
func NewCollector(baseURL string, opts Options) (*colly.Collector, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("scraper: invalid base URL %q: %w", baseURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("scraper: base URL %q has no host", baseURL)
	}

	c := colly.NewCollector(colly.AllowedDomains(host), colly.AllowURLRevisit())

	// colly сопоставляет правило с host:port
	err = c.Limit(&colly.LimitRule{
		DomainGlob:  host + "*",
		Parallelism: 1,
		RandomDelay: opts.RandomDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: failed to set limit rule: %w", err)
	}

	if opts.RequestTimeout > 0 {
		c.SetRequestTimeout(opts.RequestTimeout)
	}

	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	return c, nil
}

// FlexString принимает JSON-строку или число и хранит значение строкой.
// Источники возвращают id то так, то так.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("value %s is neither string nor number", raw)
	}
	*s = FlexString(num.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}
