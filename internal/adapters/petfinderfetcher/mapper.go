package petfinderfetcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"
)

type apiResult struct {
	Animal struct {
		ID              scraper.FlexString `json:"id"`
		Name            string             `json:"name"`
		BreedsLabel     string             `json:"breeds_label"`
		PrimaryPhotoURL *string            `json:"primary_photo_url"`
	} `json:"animal"`
}

// toDomainListing - в RawData сохраняется весь элемент результата, вместе с данными организации
func toDomainListing(item json.RawMessage, shelterID string) (domain.Listing, error) {
	var r apiResult
	if err := json.Unmarshal(item, &r); err != nil {
		return domain.Listing{}, fmt.Errorf("failed to unmarshal petfinder animal: %w", err)
	}
	if r.Animal.ID == "" {
		return domain.Listing{}, fmt.Errorf("petfinder animal without id")
	}

	breed := strings.TrimSpace(r.Animal.BreedsLabel)
	if breed == "" {
		breed = domain.UnknownBreed
	}

	var photo *string
	if r.Animal.PrimaryPhotoURL != nil {
		photo = domain.StringPtr(strings.TrimSpace(*r.Animal.PrimaryPhotoURL))
	}

	return domain.Listing{
		Provider:  domain.ProviderPetfinder,
		ShelterID: shelterID,
		AnimalID:  r.Animal.ID.String(),
		Name:      strings.TrimSpace(r.Animal.Name),
		Breed:     breed,
		PhotoURL:  photo,
		RawData:   append(json.RawMessage(nil), item...),
	}, nil
}
