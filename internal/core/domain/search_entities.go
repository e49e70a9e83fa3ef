package domain

// SearchCriteria описывает один поиск у источника.
// Cursor пуст для первой страницы, дальше его заполняет адаптер.
type SearchCriteria struct {
	Name string

	Provider  string
	ShelterID string

	Location string
	BreedID  string
	Gender   string
	Token    string

	// Пагинация
	Cursor string
}
