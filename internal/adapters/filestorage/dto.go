package filestorage

import (
	"encoding/json"

	"adoption-tracker-service/internal/core/domain"
)

// listingRecord - представление объявления в state.json и в файлах артефактов.
// Метки времени - секунды Unix; при чтении допускается дробная часть.
type listingRecord struct {
	AnimalID    string          `json:"animalId"`
	ShelterID   string          `json:"shelterId"`
	Provider    string          `json:"provider"`
	Name        string          `json:"name"`
	Breed       string          `json:"breed"`
	Photo       *string         `json:"photo"`
	Pending     bool            `json:"pending"`
	Excluded    bool            `json:"excluded"`
	TimeFound   float64         `json:"timeFound"`
	TimePending float64         `json:"timePending"`
	TimeAdopted float64         `json:"timeAdopted"`
	TimeSeen    float64         `json:"timeSeen"`
	Data        json.RawMessage `json:"data,omitempty"`
}

func toRecord(l domain.Listing) listingRecord {
	return listingRecord{
		AnimalID:    l.AnimalID,
		ShelterID:   l.ShelterID,
		Provider:    l.Provider,
		Name:        l.Name,
		Breed:       l.Breed,
		Photo:       l.PhotoURL,
		Pending:     l.Pending,
		Excluded:    l.Excluded,
		TimeFound:   float64(l.TimeFound),
		TimePending: float64(l.TimePending),
		TimeAdopted: float64(l.TimeAdopted),
		TimeSeen:    float64(l.TimeSeen),
		Data:        l.RawData,
	}
}

func (r listingRecord) toDomain() domain.Listing {
	l := domain.Listing{
		Provider:    r.Provider,
		ShelterID:   r.ShelterID,
		AnimalID:    r.AnimalID,
		Name:        r.Name,
		Breed:       r.Breed,
		PhotoURL:    r.Photo,
		Pending:     r.Pending,
		Excluded:    r.Excluded,
		TimeFound:   int64(r.TimeFound),
		TimePending: int64(r.TimePending),
		TimeAdopted: int64(r.TimeAdopted),
		TimeSeen:    int64(r.TimeSeen),
	}
	if len(r.Data) > 0 && string(r.Data) != "null" {
		// MarshalIndent переформатирует вложенный JSON, возвращаем его к компактному виду
		if raw, err := domain.CompactRawData(r.Data); err == nil {
			l.RawData = raw
		} else {
			l.RawData = append(json.RawMessage(nil), r.Data...)
		}
	}
	return l
}

type snapshotDocument map[string]map[string]map[string]listingRecord

func toDocument(snap domain.Snapshot) snapshotDocument {
	doc := make(snapshotDocument, len(snap))
	for provider, shelters := range snap {
		docShelters := make(map[string]map[string]listingRecord, len(shelters))
		for shelterID, animals := range shelters {
			docAnimals := make(map[string]listingRecord, len(animals))
			for animalID, l := range animals {
				docAnimals[animalID] = toRecord(l)
			}
			docShelters[shelterID] = docAnimals
		}
		doc[provider] = docShelters
	}
	return doc
}

// toSnapshot сохраняет положение записей как есть: сверку идентичности делает StateStore.Restore
func (d snapshotDocument) toSnapshot() domain.Snapshot {
	snap := make(domain.Snapshot, len(d))
	for provider, shelters := range d {
		snapShelters := make(map[string]map[string]domain.Listing, len(shelters))
		for shelterID, animals := range shelters {
			snapAnimals := make(map[string]domain.Listing, len(animals))
			for animalID, r := range animals {
				snapAnimals[animalID] = r.toDomain()
			}
			snapShelters[shelterID] = snapAnimals
		}
		snap[provider] = snapShelters
	}
	return snap
}
