package domain

// ListingFilter - критерии поиска по снимку. nil/пустое значение означает "не фильтровать".
type ListingFilter struct {
	Provider  string
	ShelterID string
	AnimalID  string
	Name      string
	Breed     string // подстрока без учета регистра

	HasPhoto *bool
	Pending  *bool

	// Нижние границы временных меток (Unix-секунды)
	FoundSince   int64
	PendingSince int64
	SeenSince    int64

	IncludeRawData bool
}
