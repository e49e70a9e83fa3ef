package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
)

type fakeClock struct {
	t time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakePage struct {
	listings []domain.Listing
	next     string
	err      error
}

// fakeFetcher отдает страницы по ключу "имя поиска|курсор"
type fakeFetcher struct {
	provider string
	pages    map[string]fakePage
	calls    []domain.SearchCriteria
}

func (f *fakeFetcher) Provider() string { return f.provider }

func (f *fakeFetcher) FetchListings(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, string, error) {
	f.calls = append(f.calls, criteria)
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	page, ok := f.pages[criteria.Name+"|"+criteria.Cursor]
	if !ok {
		return nil, "", nil
	}
	return page.listings, page.next, page.err
}

type fakeArtifacts struct {
	written []domain.Listing
	err     error
}

func (a *fakeArtifacts) Write(_ context.Context, l domain.Listing) error {
	a.written = append(a.written, l)
	return a.err
}

type fakePrinter struct {
	lines  []string
	breaks int
}

func (p *fakePrinter) PrintListing(l domain.Listing) {
	p.lines = append(p.lines, l.Key().String())
}

func (p *fakePrinter) PrintBreak() { p.breaks++ }

type fakeSnapshots struct {
	saved   []domain.Snapshot
	saveErr error

	load    domain.SnapshotLoadResult
	loadErr error
}

func (s *fakeSnapshots) Save(_ context.Context, snap domain.Snapshot) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, snap)
	return nil
}

func (s *fakeSnapshots) Load(context.Context) (domain.SnapshotLoadResult, error) {
	return s.load, s.loadErr
}

type fakeAlerter struct {
	alerts []time.Time
	err    error
}

func (a *fakeAlerter) Alert(_ context.Context, at time.Time) error {
	a.alerts = append(a.alerts, at)
	return a.err
}

var errBoom = errors.New("boom")

func dog(provider, shelter, animal, breed string) domain.Listing {
	return domain.Listing{Provider: provider, ShelterID: shelter, AnimalID: animal, Name: "Dog " + animal, Breed: breed}
}

// recordingLogger запоминает уровень и сообщение каждой записи, включая записи дочерних логгеров
type recordingLogger struct {
	mu   *sync.Mutex
	logs *[]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, logs: &[]string{}}
}

func (r *recordingLogger) add(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.logs = append(*r.logs, level+": "+msg)
}

func (r *recordingLogger) entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), *r.logs...)
}

func (r *recordingLogger) has(level, msg string) bool {
	for _, e := range r.entries() {
		if e == level+": "+msg {
			return true
		}
	}
	return false
}

func (r *recordingLogger) Info(msg string, _ port.Fields)           { r.add("info", msg) }
func (r *recordingLogger) Warn(msg string, _ port.Fields)           { r.add("warn", msg) }
func (r *recordingLogger) Error(msg string, _ error, _ port.Fields) { r.add("error", msg) }
func (r *recordingLogger) Debug(msg string, _ port.Fields)          { r.add("debug", msg) }

func (r *recordingLogger) WithFields(port.Fields) port.LoggerPort {
	return &recordingLogger{mu: r.mu, logs: r.logs}
}
