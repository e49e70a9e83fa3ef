package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Идентификаторы поддерживаемых источников
const (
	ProviderPAWS      = "PAWS"
	ProviderPetango   = "Petango"
	ProviderPetfinder = "Petfinder"
	ProviderPetharbor = "Petharbor"
)

// DefaultShelterID используется для поисков по всему источнику, а не по конкретному приюту
const DefaultShelterID = "0000"

// UnknownBreed подставляется, когда источник не сообщает породу
const UnknownBreed = "Breed Unknown"

var (
	ErrInvalidListing   = errors.New("invalid listing")
	ErrDuplicateListing = errors.New("duplicate listing")
)

// ListingKey - составной ключ объявления, уникальный в пределах StateStore
type ListingKey struct {
	Provider  string
	ShelterID string
	AnimalID  string
}

func (k ListingKey) String() string {
	return fmt.Sprintf("%s-%s-%s", k.Provider, k.ShelterID, k.AnimalID)
}

// Listing - нормализованное объявление от одного источника.
// Все временные метки - Unix-секунды.
type Listing struct {
	Provider  string
	ShelterID string
	AnimalID  string

	Name     string
	Breed    string
	PhotoURL *string         // nil, если источник не дал фото
	RawData  json.RawMessage // исходные данные, не хранятся для исключенных пород

	Pending  bool
	Excluded bool // решение фильтра пород на момент создания записи

	TimeFound   int64
	TimePending int64 // 0 - объявление никогда не было в статусе pending
	TimeAdopted int64 // 0 - объявление еще активно
	TimeSeen    int64
}

// Key возвращает составной ключ объявления
func (l Listing) Key() ListingKey {
	return ListingKey{Provider: l.Provider, ShelterID: l.ShelterID, AnimalID: l.AnimalID}
}

// Validate проверяет обязательные поля, которые должен заполнить адаптер источника
func (l Listing) Validate() error {
	var missing []string
	if strings.TrimSpace(l.Provider) == "" {
		missing = append(missing, "provider")
	}
	if strings.TrimSpace(l.ShelterID) == "" {
		missing = append(missing, "shelterId")
	}
	if strings.TrimSpace(l.AnimalID) == "" {
		missing = append(missing, "animalId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidListing, strings.Join(missing, ", "))
	}
	if len(l.RawData) > 0 && !json.Valid(l.RawData) {
		return fmt.Errorf("%w: raw data of %s is not valid JSON", ErrInvalidListing, l.Key())
	}
	return nil
}

// CompactRawData возвращает исходные данные без пробелов между токенами.
// В таком виде они переживают сохранение снимка байт в байт.
func CompactRawData(raw json.RawMessage) (json.RawMessage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%w: raw data is not valid JSON: %v", ErrInvalidListing, err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

// HasPhoto сообщает, есть ли у объявления ссылка на фото
func (l Listing) HasPhoto() bool {
	return l.PhotoURL != nil && *l.PhotoURL != ""
}

// Clone возвращает копию, не разделяющую изменяемые поля с оригиналом
func (l Listing) Clone() Listing {
	c := l
	if l.PhotoURL != nil {
		photo := *l.PhotoURL
		c.PhotoURL = &photo
	}
	if l.RawData != nil {
		c.RawData = append(json.RawMessage(nil), l.RawData...)
	}
	return c
}

// SightingOutcome - результат одного наблюдения объявления
type SightingOutcome int

const (
	OutcomeNew SightingOutcome = iota
	OutcomeUnchanged
	OutcomeStatusChanged
)

func (o SightingOutcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeStatusChanged:
		return "status_changed"
	default:
		return "unknown"
	}
}

// Notable - нужно ли сообщать о таком наблюдении (печать, артефакт, сигнал)
func (o SightingOutcome) Notable() bool {
	return o == OutcomeNew || o == OutcomeStatusChanged
}

// StringPtr - хелпер для опциональных строковых полей
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
