package petangofetcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"
)

type apiAnimal struct {
	ID    scraper.FlexString `json:"id"`
	Name  string             `json:"name"`
	Breed string             `json:"breed"`
	Photo string             `json:"photo"`
}

// toDomainListing - запись Petango никогда не бывает в статусе pending
func toDomainListing(item json.RawMessage, shelterID string) (domain.Listing, error) {
	var a apiAnimal
	if err := json.Unmarshal(item, &a); err != nil {
		return domain.Listing{}, fmt.Errorf("failed to unmarshal petango item: %w", err)
	}
	if a.ID == "" {
		return domain.Listing{}, fmt.Errorf("petango item without id")
	}

	breed := strings.TrimSpace(a.Breed)
	if breed == "" {
		breed = domain.UnknownBreed
	}

	return domain.Listing{
		Provider:  domain.ProviderPetango,
		ShelterID: shelterID,
		AnimalID:  a.ID.String(),
		Name:      strings.TrimSpace(a.Name),
		Breed:     breed,
		PhotoURL:  domain.StringPtr(strings.TrimSpace(a.Photo)),
		RawData:   append(json.RawMessage(nil), item...),
	}, nil
}
