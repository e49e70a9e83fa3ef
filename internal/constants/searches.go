package constants

import (
	"fmt"

	"adoption-tracker-service/internal/configs"
	"adoption-tracker-service/internal/core/domain"
)

// Адреса источников
const (
	PAWSURL      = "https://www.paws.org/adopt/dogs/"
	PetangoURL   = "https://www.petango.com/DesktopModules/Pethealth.Petango/Pethealth.Petango.DnnModules.AnimalSearchResult/API/Main/Search"
	PetfinderURL = "https://www.petfinder.com/search/"
	PetharborURL = "http://petharbor.com/results.asp"
)

// Параметры поиска Petango по породе
const (
	PetangoGoldenRetriever = "601"
	PetangoFemale          = "F"
)

// ProviderOrder - порядок опроса источников в цикле
var ProviderOrder = []string{
	domain.ProviderPAWS,
	domain.ProviderPetango,
	domain.ProviderPetfinder,
	domain.ProviderPetharbor,
}

// BuildSearches превращает документ ключей в список поисков каждого источника.
// Порядок поисков внутри источника совпадает с порядком приютов в ключах.
func BuildSearches(keys *configs.Keys) map[string][]domain.SearchCriteria {
	searches := make(map[string][]domain.SearchCriteria)

	searches[domain.ProviderPAWS] = []domain.SearchCriteria{{
		Name:      "paws-dogs",
		Provider:  domain.ProviderPAWS,
		ShelterID: domain.DefaultShelterID,
	}}

	for _, shelter := range keys.Shelters(domain.ProviderPetango) {
		searches[domain.ProviderPetango] = append(searches[domain.ProviderPetango], domain.SearchCriteria{
			Name:      fmt.Sprintf("petango-shelter-%s", shelter),
			Provider:  domain.ProviderPetango,
			ShelterID: shelter,
		})
	}
	// поиск по породе без локации API не принимает
	if keys != nil && keys.Location != "" {
		searches[domain.ProviderPetango] = append(searches[domain.ProviderPetango], domain.SearchCriteria{
			Name:      "petango-golden-retriever",
			Provider:  domain.ProviderPetango,
			ShelterID: domain.DefaultShelterID,
			Location:  keys.Location,
			BreedID:   PetangoGoldenRetriever,
			Gender:    PetangoFemale,
		})
	}

	for _, shelter := range keys.Shelters(domain.ProviderPetfinder) {
		searches[domain.ProviderPetfinder] = append(searches[domain.ProviderPetfinder], domain.SearchCriteria{
			Name:      fmt.Sprintf("petfinder-shelter-%s", shelter),
			Provider:  domain.ProviderPetfinder,
			ShelterID: shelter,
			Token:     keys.APIToken,
		})
	}

	for _, shelter := range keys.Shelters(domain.ProviderPetharbor) {
		searches[domain.ProviderPetharbor] = append(searches[domain.ProviderPetharbor], domain.SearchCriteria{
			Name:      fmt.Sprintf("petharbor-shelter-%s", shelter),
			Provider:  domain.ProviderPetharbor,
			ShelterID: shelter,
		})
	}

	return searches
}
