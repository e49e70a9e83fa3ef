package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"adoption-tracker-service/internal/contracts"
	"adoption-tracker-service/internal/core/domain"
)

// commentPattern вырезает всё от '#' до конца строки, в том числе внутри строковых значений
var commentPattern = regexp.MustCompile(`#[^\n]*`)

// Keys - пользовательский документ ключей: токен, локация, исключения пород и приюты
type Keys struct {
	APIToken       string
	Location       string
	ExcludedBreeds []string
	ShelterIDs     map[string][]string // источник -> id приютов
}

// Shelters возвращает приюты источника. Отсутствующий список означает "нет приютов".
func (k *Keys) Shelters(provider string) []string {
	if k == nil {
		return nil
	}
	return k.ShelterIDs[provider]
}

// shelterList принимает id приютов и строками, и числами
type shelterList []string

func (s *shelterList) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			out = append(out, str)
			continue
		}
		var num json.Number
		if err := json.Unmarshal(item, &num); err != nil {
			return fmt.Errorf("shelter id %s is neither string nor number", item)
		}
		out = append(out, num.String())
	}
	*s = out
	return nil
}

type keysDocument struct {
	APIToken              string                 `json:"apiToken"`
	PetfinderToken        string                 `json:"petfinderToken"`
	Location              string                 `json:"location"`
	ExcludedBreeds        []string               `json:"excludedBreeds"`
	ShelterIDsPerProvider map[string]shelterList `json:"shelterIdsPerProvider"`
	SheltersPetango       shelterList            `json:"sheltersPetango"`
	SheltersPetfinder     shelterList            `json:"sheltersPetfinder"`
	SheltersPetharbor     shelterList            `json:"sheltersPetharbor"`
}

// LoadKeys читает документ ключей с диска
func LoadKeys(path string) (*Keys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read keys file %s: %w", path, err)
	}
	keys, err := ParseKeys(data)
	if err != nil {
		return nil, fmt.Errorf("keys file %s: %w", path, err)
	}
	return keys, nil
}

// ParseKeys вырезает комментарии, проверяет документ по схеме и приводит
// старые ключи (petfinderToken, sheltersXxx) к текущему виду
func ParseKeys(data []byte) (*Keys, error) {
	body := commentPattern.ReplaceAll(data, nil)
	if strings.TrimSpace(string(body)) == "" {
		body = []byte("{}")
	}

	if err := contracts.ValidateKeys(body); err != nil {
		return nil, err
	}

	var doc keysDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("could not decode keys document: %w", err)
	}

	keys := &Keys{
		APIToken:       doc.APIToken,
		Location:       doc.Location,
		ExcludedBreeds: doc.ExcludedBreeds,
		ShelterIDs:     make(map[string][]string),
	}
	if keys.APIToken == "" {
		keys.APIToken = doc.PetfinderToken
	}

	legacy := map[string]shelterList{
		domain.ProviderPetango:   doc.SheltersPetango,
		domain.ProviderPetfinder: doc.SheltersPetfinder,
		domain.ProviderPetharbor: doc.SheltersPetharbor,
	}
	for _, provider := range []string{domain.ProviderPetango, domain.ProviderPetfinder, domain.ProviderPetharbor} {
		ids := mergeShelters(doc.ShelterIDsPerProvider[provider], legacy[provider])
		if len(ids) > 0 {
			keys.ShelterIDs[provider] = ids
		}
	}

	return keys, nil
}

// mergeShelters объединяет списки, сохраняя порядок и убирая повторы
func mergeShelters(lists ...shelterList) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, id := range list {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
