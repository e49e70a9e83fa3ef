package domain

import "strings"

// BreedFilter исключает объявления, в породе которых встречается одна из заданных подстрок.
// Сравнение чувствительно к регистру и ищет именно подстроку, а не отдельное слово:
// "Pit" исключит и "Pit Bull Terrier", и "Pitsky".
type BreedFilter struct {
	terms []string
}

// NewBreedFilter создает фильтр. Пустые строки отбрасываются, иначе они совпали бы с любой породой.
func NewBreedFilter(excluded []string) *BreedFilter {
	terms := make([]string, 0, len(excluded))
	for _, t := range excluded {
		if t == "" {
			continue
		}
		terms = append(terms, t)
	}
	return &BreedFilter{terms: terms}
}

// Excludes возвращает true, если порода попадает под исключение
func (f *BreedFilter) Excludes(breed string) bool {
	if f == nil {
		return false
	}
	for _, t := range f.terms {
		if strings.Contains(breed, t) {
			return true
		}
	}
	return false
}

// Terms возвращает копию списка исключений
func (f *BreedFilter) Terms() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.terms...)
}
