package domain

import (
	"errors"
	"fmt"
)

// ErrSnapshotCorrupt - снимок есть на диске, но его нельзя разобрать
var ErrSnapshotCorrupt = errors.New("snapshot is corrupt")

// Snapshot - полная таблица активных объявлений: источник -> приют -> животное
type Snapshot map[string]map[string]map[string]Listing

// Put добавляет запись в снимок, создавая промежуточные уровни
func (s Snapshot) Put(l Listing) {
	shelters, ok := s[l.Provider]
	if !ok {
		shelters = make(map[string]map[string]Listing)
		s[l.Provider] = shelters
	}
	animals, ok := shelters[l.ShelterID]
	if !ok {
		animals = make(map[string]Listing)
		shelters[l.ShelterID] = animals
	}
	animals[l.AnimalID] = l
}

// Len - количество записей в снимке
func (s Snapshot) Len() int {
	n := 0
	for _, shelters := range s {
		for _, animals := range shelters {
			n += len(animals)
		}
	}
	return n
}

// Listings возвращает записи в стабильном порядке (источник, приют, животное)
func (s Snapshot) Listings() []Listing {
	out := make([]Listing, 0, s.Len())
	for _, shelters := range s {
		for _, animals := range shelters {
			for _, l := range animals {
				out = append(out, l)
			}
		}
	}
	sortListings(out)
	return out
}

// SnapshotStatus различает отсутствие снимка и успешную загрузку.
// Поврежденный снимок и ошибки ввода-вывода возвращаются как error.
type SnapshotStatus int

const (
	SnapshotMissing SnapshotStatus = iota
	SnapshotLoaded
)

// SnapshotLoadResult - результат загрузки снимка при старте
type SnapshotLoadResult struct {
	Status   SnapshotStatus
	Snapshot Snapshot
}

// FetchError - сбой запроса к источнику (транспорт, HTTP-статус, разбор ответа)
type FetchError struct {
	Provider   string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request to %s failed with status %d: %v", e.Provider, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: request to %s failed: %v", e.Provider, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
