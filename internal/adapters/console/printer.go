package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"adoption-tracker-service/internal/core/domain"
)

// Printer выводит объявления оператору, по одной строке на объявление
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPrinter - конструктор. nil означает os.Stdout.
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out}
}

// PrintListing печатает "Name - STATUS [in ...] (Provider-Shelter-Animal) - Breed"
func (p *Printer) PrintListing(l domain.Listing) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, FormatListing(l))
}

// PrintBreak печатает пустую строку между группами
func (p *Printer) PrintBreak() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out)
}

// FormatListing возвращает строку объявления без перевода строки
func FormatListing(l domain.Listing) string {
	status := ""
	switch {
	case l.TimeAdopted != 0:
		status = fmt.Sprintf(" - ADOPTED [in %s, unseen %s]",
			formatSpan(l.TimeAdopted-l.TimeFound), formatSpan(l.TimeAdopted-l.TimeSeen))
	case l.Pending:
		status = fmt.Sprintf(" - PENDING [in %s]", formatSpan(l.TimePending-l.TimeFound))
	}
	return fmt.Sprintf("%s%s (%s) - %s", l.Name, status, l.Key(), l.Breed)
}
