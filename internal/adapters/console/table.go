package console

import (
	"fmt"
	"io"
	"strings"
	"time"

	"adoption-tracker-service/internal/core/domain"
)

// TableColumns - какие колонки показывать в отчете
type TableColumns struct {
	Name        bool
	Status      bool
	Provider    bool
	Shelter     bool
	Animal      bool
	Breed       bool
	TimeFound   bool
	TimePending bool
	TimeAdopted bool
	TimeSeen    bool
	Photo       bool
	RawData     bool
}

// DefaultTableColumns - имя, идентификатор и порода
func DefaultTableColumns() TableColumns {
	return TableColumns{Name: true, Provider: true, Shelter: true, Animal: true, Breed: true}
}

// Table печатает результаты поиска колонками фиксированной ширины
type Table struct {
	out     io.Writer
	columns TableColumns
	now     func() time.Time
}

func NewTable(out io.Writer, columns TableColumns) *Table {
	return &Table{out: out, columns: columns, now: time.Now}
}

// Render печатает по строке на запись
func (t *Table) Render(listings []domain.Listing) error {
	now := t.now()
	for _, l := range listings {
		if _, err := fmt.Fprintln(t.out, t.row(l, now)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) row(l domain.Listing, now time.Time) string {
	c := t.columns
	var b strings.Builder

	if c.Name {
		fmt.Fprintf(&b, "%-22s ", l.Name)
	}
	if c.Status {
		status := "- AVAILABLE"
		if l.Pending {
			status = "- PENDING"
		}
		fmt.Fprintf(&b, "%-12s ", status)
	}

	if c.Provider || c.Shelter || c.Animal {
		var ids []string
		if c.Provider {
			ids = append(ids, fmt.Sprintf("%-9s", l.Provider))
		}
		if c.Shelter {
			ids = append(ids, fmt.Sprintf("%-5s", l.ShelterID))
		}
		if c.Animal {
			ids = append(ids, fmt.Sprintf("%-8s", l.AnimalID))
		}
		fmt.Fprintf(&b, "(%s) ", strings.Join(ids, "-"))
	}

	if c.Breed {
		fmt.Fprintf(&b, "- %-52s ", l.Breed)
	}

	ages := []struct {
		show  bool
		label string
		ts    int64
	}{
		{c.TimeFound, "Found", l.TimeFound},
		{c.TimePending, "Pending", l.TimePending},
		{c.TimeAdopted, "Adopted", l.TimeAdopted},
		{c.TimeSeen, "Seen", l.TimeSeen},
	}
	for _, a := range ages {
		if !a.show {
			continue
		}
		age := "-"
		if a.ts != 0 {
			age = formatAge(now.Sub(time.Unix(a.ts, 0))) + " ago"
		}
		fmt.Fprintf(&b, "%s: %-21s ", a.label, age)
	}

	if c.Photo {
		if l.HasPhoto() {
			b.WriteString(*l.PhotoURL)
		} else {
			b.WriteString("NO_PHOTO")
		}
		b.WriteString(" ")
	}
	if c.RawData && len(l.RawData) > 0 {
		b.Write(l.RawData)
	}

	return strings.TrimRight(b.String(), " ")
}
