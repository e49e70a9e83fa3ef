package petharborfetcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"adoption-tracker-service/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Колонки таблицы: Picture | Name (ID) | Gender | Color | Breed | Age | ...
const (
	colPicture = 0
	colName    = 1
	colBreed   = 4
)

// toDomainListing разбирает строку таблицы. skip == true для заголовка и пустых строк.
func (a *PetharborFetcherAdapter) toDomainListing(e *colly.HTMLElement, shelterID string) (l domain.Listing, skip bool, err error) {
	var cells []string
	e.ForEach("td", func(_ int, td *colly.HTMLElement) {
		cells = append(cells, strings.TrimSpace(td.Text))
	})
	if len(cells) == 0 || cells[colPicture] == "Picture" {
		return domain.Listing{}, true, nil
	}
	if len(cells) <= colBreed {
		return domain.Listing{}, false, fmt.Errorf("row has %d cells, want at least %d", len(cells), colBreed+1)
	}

	name, animalID, err := splitNameAndID(cells[colName])
	if err != nil {
		return domain.Listing{}, false, err
	}

	breed := cells[colBreed]
	if breed == "" {
		breed = domain.UnknownBreed
	}

	var photo *string
	if src := e.ChildAttr("img", "src"); src != "" {
		photo = domain.StringPtr(e.Request.AbsoluteURL(src))
	}

	raw, err := goquery.OuterHtml(e.DOM)
	if err != nil {
		return domain.Listing{}, false, fmt.Errorf("render row %s: %w", animalID, err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return domain.Listing{}, false, err
	}

	return domain.Listing{
		Provider:  domain.ProviderPetharbor,
		ShelterID: shelterID,
		AnimalID:  animalID,
		Name:      a.nameCaser.String(name),
		Breed:     breed,
		PhotoURL:  photo,
		RawData:   data,
	}, false, nil
}

// splitNameAndID: "BELLA (A123456)" -> "BELLA", "A123456"
func splitNameAndID(cell string) (name, id string, err error) {
	idx := strings.LastIndex(cell, " ")
	if idx < 0 {
		return "", "", fmt.Errorf("name cell %q has no animal id", cell)
	}
	name = strings.TrimSpace(cell[:idx])
	id = strings.NewReplacer("(", "", ")", "").Replace(cell[idx+1:])
	if id == "" {
		return "", "", fmt.Errorf("name cell %q has an empty animal id", cell)
	}
	return name, id, nil
}
