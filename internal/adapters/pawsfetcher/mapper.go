package pawsfetcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"adoption-tracker-service/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// toDomainListing разбирает одну карточку:
// <article id="animal-123"> с заголовком, фото, метками и, для pending, "пилюлей"
func toDomainListing(e *colly.HTMLElement) (domain.Listing, error) {
	id := strings.TrimSpace(e.Attr("id"))
	_, number, ok := strings.Cut(id, "-")
	if !ok || number == "" {
		return domain.Listing{}, fmt.Errorf("unexpected card id %q", id)
	}

	name := strings.TrimSpace(e.ChildText("h3.card-block__title"))

	var labels []string
	e.ForEach("span.card-block__label", func(_ int, el *colly.HTMLElement) {
		labels = append(labels, strings.TrimSpace(el.Text))
	})
	breed := domain.UnknownBreed
	if len(labels) > 2 && labels[1] != "" {
		breed = labels[1]
	}

	var photo *string
	if src := e.ChildAttr("img.card-block__img-animal", "src"); src != "" {
		photo = domain.StringPtr(e.Request.AbsoluteURL(src))
	}

	pending := e.DOM.Find("span.card-block__pill").Length() > 0

	raw, err := goquery.OuterHtml(e.DOM)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("render card %s: %w", id, err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return domain.Listing{}, err
	}

	return domain.Listing{
		Provider:  domain.ProviderPAWS,
		ShelterID: domain.DefaultShelterID,
		AnimalID:  number + "-PAWS",
		Name:      name,
		Breed:     breed,
		PhotoURL:  photo,
		RawData:   data,
		Pending:   pending,
	}, nil
}
