package domain

import (
	"fmt"
	"sort"
	"time"
)

// StateStore - таблица отслеживаемых объявлений по составному ключу.
// Владеет всеми временными метками жизненного цикла.
// Не потокобезопасен: изменяется только из цикла опроса.
type StateStore struct {
	records map[ListingKey]Listing
	now     func() time.Time
}

// NewStateStore создает пустое хранилище. now == nil означает time.Now.
func NewStateStore(now func() time.Time) *StateStore {
	if now == nil {
		now = time.Now
	}
	return &StateStore{
		records: make(map[ListingKey]Listing),
		now:     now,
	}
}

// Ingest регистрирует одно наблюдение объявления.
// excluded учитывается только при создании записи: решение фильтра фиксируется навсегда.
func (s *StateStore) Ingest(l Listing, excluded bool) (SightingOutcome, Listing, error) {
	if err := l.Validate(); err != nil {
		return OutcomeUnchanged, Listing{}, err
	}

	raw, err := CompactRawData(l.RawData)
	if err != nil {
		return OutcomeUnchanged, Listing{}, err
	}
	l.RawData = raw

	now := s.now().Unix()
	key := l.Key()

	existing, ok := s.records[key]
	if !ok {
		rec := l.Clone()
		rec.Excluded = excluded
		if excluded {
			rec.RawData = nil
		}
		rec.TimeFound = now
		rec.TimeSeen = now
		rec.TimePending = 0
		if rec.Pending {
			rec.TimePending = now
		}
		rec.TimeAdopted = 0

		s.records[key] = rec
		return OutcomeNew, rec.Clone(), nil
	}

	// timeSeen не должен убывать, даже если часы сдвинулись назад
	seen := existing.TimeSeen
	if now > seen {
		seen = now
	}

	if existing.Pending == l.Pending {
		existing.TimeSeen = seen
		s.records[key] = existing
		return OutcomeUnchanged, existing.Clone(), nil
	}

	updated := l.Clone()
	updated.Excluded = existing.Excluded
	if updated.Excluded {
		updated.RawData = nil
	}
	updated.TimeFound = existing.TimeFound
	updated.TimePending = existing.TimePending
	if l.Pending {
		updated.TimePending = seen
	}
	updated.TimeAdopted = 0
	updated.TimeSeen = seen

	s.records[key] = updated
	return OutcomeStatusChanged, updated.Clone(), nil
}

// Touch обновляет timeSeen у всех активных записей источника.
// Используется, когда запрос к источнику не удался, чтобы сбой не выглядел как массовое усыновление.
func (s *StateStore) Touch(provider string) int {
	now := s.now().Unix()
	touched := 0
	for key, rec := range s.records {
		if key.Provider != provider {
			continue
		}
		if now > rec.TimeSeen {
			rec.TimeSeen = now
			s.records[key] = rec
		}
		touched++
	}
	return touched
}

// Sweep удаляет записи, которые не встречались threshold и дольше,
// и возвращает их с проставленным timeAdopted.
func (s *StateStore) Sweep(threshold time.Duration) []Listing {
	now := s.now().Unix()
	var retired []Listing

	for key, rec := range s.records {
		unseen := time.Duration(now-rec.TimeSeen) * time.Second
		if unseen < threshold {
			continue
		}
		delete(s.records, key)
		rec.TimeAdopted = now
		retired = append(retired, rec)
	}

	sortListings(retired)
	return retired
}

// Get возвращает копию записи по ключу
func (s *StateStore) Get(key ListingKey) (Listing, bool) {
	rec, ok := s.records[key]
	if !ok {
		return Listing{}, false
	}
	return rec.Clone(), true
}

// Len - количество активных записей
func (s *StateStore) Len() int {
	return len(s.records)
}

// Listings возвращает копии всех активных записей в стабильном порядке
func (s *StateStore) Listings() []Listing {
	out := make([]Listing, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	sortListings(out)
	return out
}

// Snapshot возвращает копию всей таблицы для сохранения
func (s *StateStore) Snapshot() Snapshot {
	snap := make(Snapshot)
	for _, rec := range s.records {
		snap.Put(rec.Clone())
	}
	return snap
}

// Restore заменяет содержимое хранилища записями из снимка.
// Пустые поля идентичности заполняются по положению записи в снимке,
// расхождение положения и полей считается ошибкой.
func (s *StateStore) Restore(snap Snapshot) error {
	records := make(map[ListingKey]Listing, snap.Len())

	for provider, shelters := range snap {
		for shelterID, animals := range shelters {
			for animalID, rec := range animals {
				if rec.Provider == "" {
					rec.Provider = provider
				}
				if rec.ShelterID == "" {
					rec.ShelterID = shelterID
				}
				if rec.AnimalID == "" {
					rec.AnimalID = animalID
				}
				key := rec.Key()
				if key != (ListingKey{Provider: provider, ShelterID: shelterID, AnimalID: animalID}) {
					return fmt.Errorf("%w: record %s stored under %s-%s-%s", ErrInvalidListing, key, provider, shelterID, animalID)
				}
				if err := rec.Validate(); err != nil {
					return err
				}
				if err := checkTimeline(rec); err != nil {
					return err
				}
				raw, err := CompactRawData(rec.RawData)
				if err != nil {
					return err
				}
				rec.RawData = raw
				if _, dup := records[key]; dup {
					return fmt.Errorf("%w: %s", ErrDuplicateListing, key)
				}
				// в активной таблице не бывает усыновленных записей
				rec.TimeAdopted = 0
				records[key] = rec.Clone()
			}
		}
	}

	s.records = records
	return nil
}

// checkTimeline проверяет порядок меток: timeFound <= timePending (если есть) <= timeSeen
func checkTimeline(l Listing) error {
	if l.TimeSeen < l.TimeFound {
		return fmt.Errorf("%w: %s seen at %d before found at %d", ErrInvalidListing, l.Key(), l.TimeSeen, l.TimeFound)
	}
	if l.TimePending != 0 && (l.TimePending < l.TimeFound || l.TimePending > l.TimeSeen) {
		return fmt.Errorf("%w: %s pending at %d outside [%d, %d]", ErrInvalidListing, l.Key(), l.TimePending, l.TimeFound, l.TimeSeen)
	}
	return nil
}

func sortListings(ls []Listing) {
	sort.Slice(ls, func(i, j int) bool {
		a, b := ls[i], ls[j]
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.ShelterID != b.ShelterID {
			return a.ShelterID < b.ShelterID
		}
		return a.AnimalID < b.AnimalID
	})
}
