package usecase

import (
	"context"
	"testing"
	"time"

	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
)

type pollFixture struct {
	clock     *fakeClock
	store     *domain.StateStore
	artifacts *fakeArtifacts
	printer   *fakePrinter
	snapshots *fakeSnapshots
	alerter   *fakeAlerter
	uc        *PollCycleUseCase
}

func newPollFixture(t *testing.T, fetchers []port.ListingFetcherPort, searches map[string][]domain.SearchCriteria, cfg PollCycleConfig) *pollFixture {
	t.Helper()

	f := &pollFixture{
		clock:     newClock(),
		artifacts: &fakeArtifacts{},
		printer:   &fakePrinter{},
		snapshots: &fakeSnapshots{},
		alerter:   &fakeAlerter{},
	}
	f.store = domain.NewStateStore(f.clock.Now)

	detector, err := NewDetectAdoptionsUseCase(f.store, f.artifacts, f.printer, 2*time.Minute)
	if err != nil {
		t.Fatalf("NewDetectAdoptionsUseCase() error = %v", err)
	}
	dispatcher, err := NewAlertDispatcher(f.alerter, f.clock.Now)
	if err != nil {
		t.Fatalf("NewAlertDispatcher() error = %v", err)
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = f.clock.Now
	}

	f.uc, err = NewPollCycleUseCase(fetchers, searches, f.store, domain.NewBreedFilter([]string{"Pit"}),
		f.artifacts, f.printer, detector, f.snapshots, dispatcher, cfg)
	if err != nil {
		t.Fatalf("NewPollCycleUseCase() error = %v", err)
	}
	return f
}

func search(provider, name string) domain.SearchCriteria {
	return domain.SearchCriteria{Name: name, Provider: provider, ShelterID: "0000"}
}

func TestPollCycleNewListingsAndAlerts(t *testing.T) {
	paws := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{
		"paws|": {listings: []domain.Listing{
			dog("PAWS", "0000", "1-PAWS", "Beagle"),
			dog("PAWS", "0000", "2-PAWS", "Pit Bull Terrier"),
		}},
	}}
	f := newPollFixture(t, []port.ListingFetcherPort{paws},
		map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "paws")}}, PollCycleConfig{})
	ctx := context.Background()

	if err := f.uc.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if f.store.Len() != 2 {
		t.Fatalf("store len = %d, want 2 (excluded breeds are still tracked)", f.store.Len())
	}
	rec, _ := f.store.Get(domain.ListingKey{Provider: "PAWS", ShelterID: "0000", AnimalID: "2-PAWS"})
	if !rec.Excluded {
		t.Fatal("pit bull not marked excluded")
	}
	if len(f.printer.lines) != 1 || f.printer.lines[0] != "PAWS-0000-1-PAWS" || f.printer.breaks != 1 {
		t.Fatalf("printed %v (breaks %d)", f.printer.lines, f.printer.breaks)
	}
	if len(f.artifacts.written) != 1 {
		t.Fatalf("artifacts written = %d, want 1", len(f.artifacts.written))
	}
	if len(f.snapshots.saved) != 1 || f.snapshots.saved[0].Len() != 2 {
		t.Fatal("snapshot not saved after the cycle")
	}
	if len(f.alerter.alerts) != 0 {
		t.Fatal("first cycle must not alert")
	}

	// второй цикл: одно объявление стало pending
	paws.pages["paws|"] = fakePage{listings: []domain.Listing{
		func() domain.Listing { l := dog("PAWS", "0000", "1-PAWS", "Beagle"); l.Pending = true; return l }(),
		dog("PAWS", "0000", "2-PAWS", "Pit Bull Terrier"),
	}}
	f.clock.Advance(30 * time.Second)
	if err := f.uc.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(f.alerter.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1 after status change", len(f.alerter.alerts))
	}
	if len(f.printer.lines) != 2 {
		t.Fatalf("printed %v", f.printer.lines)
	}

	// третий цикл без изменений: тишина
	f.clock.Advance(30 * time.Second)
	f.uc.Execute(ctx)
	if len(f.alerter.alerts) != 1 || len(f.printer.lines) != 2 {
		t.Fatal("unchanged cycle printed or alerted")
	}
}

func TestPollCycleExcludedOnlyChangesDoNotAlert(t *testing.T) {
	fetcher := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "paws")}}, PollCycleConfig{})
	ctx := context.Background()
	f.uc.Execute(ctx)

	fetcher.pages["paws|"] = fakePage{listings: []domain.Listing{dog("PAWS", "0000", "9-PAWS", "Pitsky")}}
	f.uc.Execute(ctx)
	if len(f.alerter.alerts) != 0 || len(f.printer.lines) != 0 {
		t.Fatal("excluded breed was reported")
	}
}

func TestPollCycleProviderFailureTouchesAndSkips(t *testing.T) {
	petango := &fakeFetcher{provider: "Petango", pages: map[string]fakePage{
		"first|":  {listings: []domain.Listing{dog("Petango", "1", "10", "Collie")}},
		"second|": {listings: []domain.Listing{dog("Petango", "2", "20", "Collie")}},
	}}
	paws := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{
		"paws|": {listings: []domain.Listing{dog("PAWS", "0000", "1-PAWS", "Beagle")}},
	}}
	searches := map[string][]domain.SearchCriteria{
		"Petango": {search("Petango", "first"), search("Petango", "second")},
		"PAWS":    {search("PAWS", "paws")},
	}
	f := newPollFixture(t, []port.ListingFetcherPort{petango, paws}, searches, PollCycleConfig{})
	ctx := context.Background()
	f.uc.Execute(ctx)

	// источник падает на первом же поиске
	petango.pages["first|"] = fakePage{err: &domain.FetchError{Provider: "Petango", URL: "u", StatusCode: 500, Err: errBoom}}
	petango.calls = nil
	paws.calls = nil

	f.clock.Advance(90 * time.Second)
	if err := f.uc.Execute(ctx); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(petango.calls) != 1 {
		t.Fatalf("petango calls = %d, remaining searches must be skipped", len(petango.calls))
	}
	if len(paws.calls) != 1 {
		t.Fatal("failure of one provider stopped the others")
	}

	want := f.clock.t.Unix()
	for _, id := range []domain.ListingKey{{Provider: "Petango", ShelterID: "1", AnimalID: "10"}, {Provider: "Petango", ShelterID: "2", AnimalID: "20"}} {
		rec, ok := f.store.Get(id)
		if !ok || rec.TimeSeen != want {
			t.Fatalf("%s = %+v, %v; want touched at %d", id, rec, ok, want)
		}
	}

	// сбой длиннее порога не приводит к ложному усыновлению
	f.clock.Advance(90 * time.Second)
	f.uc.Execute(ctx)
	if f.store.Len() != 3 {
		t.Fatalf("store len = %d, failing provider must not be retired", f.store.Len())
	}
}

func TestPollCyclePagination(t *testing.T) {
	fetcher := &fakeFetcher{provider: "Petfinder", pages: map[string]fakePage{
		"wa|":  {listings: []domain.Listing{dog("Petfinder", "WA", "1", "Husky")}, next: "2"},
		"wa|2": {listings: []domain.Listing{dog("Petfinder", "WA", "2", "Husky")}, next: "3"},
		"wa|3": {listings: []domain.Listing{dog("Petfinder", "WA", "3", "Husky")}},
	}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"Petfinder": {search("Petfinder", "wa")}}, PollCycleConfig{})

	f.uc.Execute(context.Background())
	if len(fetcher.calls) != 3 || f.store.Len() != 3 {
		t.Fatalf("calls = %d, stored = %d; want 3 pages", len(fetcher.calls), f.store.Len())
	}
	if fetcher.calls[2].Cursor != "3" || fetcher.calls[2].Name != "wa" {
		t.Fatalf("third call = %+v", fetcher.calls[2])
	}
	if f.printer.breaks != 1 {
		t.Fatalf("breaks = %d, want one per provider", f.printer.breaks)
	}
}

func TestPollCycleRepeatedCursorStops(t *testing.T) {
	fetcher := &fakeFetcher{provider: "Petharbor", pages: map[string]fakePage{
		"ph|":  {next: "2"},
		"ph|2": {next: "2"},
	}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"Petharbor": {search("Petharbor", "ph")}}, PollCycleConfig{})

	f.uc.Execute(context.Background())
	if len(fetcher.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(fetcher.calls))
	}
}

func TestPollCycleMaxPages(t *testing.T) {
	pages := map[string]fakePage{"ph|": {next: "c1"}}
	for _, c := range []string{"c1", "c2", "c3", "c4", "c5"} {
		pages["ph|"+c] = fakePage{next: c + "x"}
	}
	fetcher := &fakeFetcher{provider: "Petharbor", pages: pages}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"Petharbor": {search("Petharbor", "ph")}}, PollCycleConfig{MaxPagesPerSearch: 2})

	f.uc.Execute(context.Background())
	if len(fetcher.calls) != 2 {
		t.Fatalf("calls = %d, want page limit 2", len(fetcher.calls))
	}
}

func TestPollCycleSnapshotErrorIsNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{
		"paws|": {listings: []domain.Listing{dog("PAWS", "0000", "1-PAWS", "Beagle")}},
	}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "paws")}}, PollCycleConfig{})
	f.snapshots.saveErr = errBoom

	if err := f.uc.Execute(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v, save failure must only be logged", err)
	}
	if f.store.Len() != 1 {
		t.Fatal("state lost after failed save")
	}
}

func TestPollCycleSkipsMalformedListings(t *testing.T) {
	fetcher := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{
		"paws|": {listings: []domain.Listing{{Provider: "PAWS", Name: "Nameless"}, dog("PAWS", "0000", "1-PAWS", "Beagle")}},
	}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "paws")}}, PollCycleConfig{})

	f.uc.Execute(context.Background())
	if f.store.Len() != 1 || len(f.printer.lines) != 1 {
		t.Fatalf("store %d, printed %v", f.store.Len(), f.printer.lines)
	}
}

func TestPollCycleReportsAdoptions(t *testing.T) {
	fetcher := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{
		"paws|": {listings: []domain.Listing{dog("PAWS", "0000", "1-PAWS", "Beagle")}},
	}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "paws")}}, PollCycleConfig{})
	ctx := context.Background()
	f.uc.Execute(ctx)

	delete(fetcher.pages, "paws|")
	f.clock.Advance(2 * time.Minute)
	f.uc.Execute(ctx)

	if f.store.Len() != 0 {
		t.Fatal("unseen listing was not retired")
	}
	last := f.artifacts.written[len(f.artifacts.written)-1]
	if last.TimeAdopted == 0 {
		t.Fatalf("adopted artifact = %+v", last)
	}
	if n := f.snapshots.saved[len(f.snapshots.saved)-1].Len(); n != 0 {
		t.Fatalf("snapshot still holds %d listings", n)
	}
}

func TestPollCycleCancelled(t *testing.T) {
	fetcher := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "paws")}}, PollCycleConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.uc.Execute(ctx); err != context.Canceled {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestNewPollCycleValidation(t *testing.T) {
	store := domain.NewStateStore(nil)
	detector, _ := NewDetectAdoptionsUseCase(store, &fakeArtifacts{}, &fakePrinter{}, time.Minute)
	dispatcher, _ := NewAlertDispatcher(&fakeAlerter{}, nil)

	if _, err := NewPollCycleUseCase(nil, nil, store, nil, &fakeArtifacts{}, &fakePrinter{}, detector, &fakeSnapshots{}, dispatcher, PollCycleConfig{}); err == nil {
		t.Fatal("expected error for zero fetch timeout")
	}
	if _, err := NewPollCycleUseCase(nil, nil, nil, nil, &fakeArtifacts{}, &fakePrinter{}, detector, &fakeSnapshots{}, dispatcher, PollCycleConfig{FetchTimeout: time.Second}); err == nil {
		t.Fatal("expected error for nil store")
	}
}

// Rex: создан в цикле 1, без изменений в цикле 2, pending в цикле 3,
// пропадает с цикла 4 и снимается как усыновленный в цикле 7.
func TestPollCycleRexScenario(t *testing.T) {
	rex := domain.Listing{Provider: "Shelter-A", ShelterID: "42", AnimalID: "7", Name: "Rex", Breed: "Labrador"}
	fetcher := &fakeFetcher{provider: "Shelter-A", pages: map[string]fakePage{}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"Shelter-A": {search("Shelter-A", "a")}}, PollCycleConfig{})
	ctx := context.Background()
	key := rex.Key()
	start := f.clock.t.Unix()

	for cycle := 1; cycle <= 7; cycle++ {
		switch {
		case cycle <= 2:
			fetcher.pages["a|"] = fakePage{listings: []domain.Listing{rex}}
		case cycle == 3:
			pending := rex
			pending.Pending = true
			fetcher.pages["a|"] = fakePage{listings: []domain.Listing{pending}}
		default:
			delete(fetcher.pages, "a|")
		}

		if err := f.uc.Execute(ctx); err != nil {
			t.Fatalf("cycle %d: Execute() error = %v", cycle, err)
		}

		switch cycle {
		case 1, 2:
			if len(f.alerter.alerts) != 0 || len(f.printer.lines) != 1 {
				t.Fatalf("cycle %d: alerts %d, printed %v", cycle, len(f.alerter.alerts), f.printer.lines)
			}
		case 3:
			rec, _ := f.store.Get(key)
			if len(f.alerter.alerts) != 1 || rec.TimePending != f.clock.t.Unix() || rec.TimeFound != start {
				t.Fatalf("cycle 3: alerts %d, record %+v", len(f.alerter.alerts), rec)
			}
		case 4, 5, 6:
			if _, ok := f.store.Get(key); !ok {
				t.Fatalf("cycle %d: retired too early", cycle)
			}
		case 7:
			if _, ok := f.store.Get(key); ok {
				t.Fatal("cycle 7: Rex still active")
			}
			last := f.artifacts.written[len(f.artifacts.written)-1]
			if last.TimeAdopted != f.clock.t.Unix() || last.TimeAdopted < last.TimeFound {
				t.Fatalf("cycle 7: adopted artifact %+v", last)
			}
			// усыновление печатается, но не звенит
			if len(f.alerter.alerts) != 1 || len(f.printer.lines) != 3 {
				t.Fatalf("cycle 7: alerts %d, printed %v", len(f.alerter.alerts), f.printer.lines)
			}
		}
		f.clock.Advance(30 * time.Second)
	}
}

func TestPollCycleSavesSnapshotOnShutdown(t *testing.T) {
	fetcher := &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{}}
	f := newPollFixture(t, []port.ListingFetcherPort{fetcher},
		map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "paws")}}, PollCycleConfig{})
	f.store.Ingest(dog("PAWS", "0000", "1-PAWS", "Beagle"), false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f.uc.Execute(ctx)

	if len(f.snapshots.saved) != 1 || f.snapshots.saved[0].Len() != 1 {
		t.Fatal("snapshot must be saved even when the cycle was interrupted")
	}
}

// slowFetcher сдвигает часы на каждый запрос, имитируя медленный источник
type slowFetcher struct {
	*fakeFetcher
	clock *fakeClock
	delay time.Duration
}

func (f *slowFetcher) FetchListings(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Listing, string, error) {
	f.clock.Advance(f.delay)
	return f.fakeFetcher.FetchListings(ctx, criteria)
}

func TestPollCycleWarnsWhenFetchExceedsBudget(t *testing.T) {
	tests := []struct {
		name     string
		delay    time.Duration
		wantWarn bool
	}{
		{"within budget", 40 * time.Second, false},
		{"exactly at budget", 45 * time.Second, false},
		{"over budget", 50 * time.Second, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := newClock()
			fetcher := &slowFetcher{fakeFetcher: &fakeFetcher{provider: "PAWS", pages: map[string]fakePage{}}, clock: clock, delay: tc.delay}
			searches := map[string][]domain.SearchCriteria{"PAWS": {search("PAWS", "a"), search("PAWS", "b")}}
			f := newPollFixture(t, []port.ListingFetcherPort{fetcher}, searches,
				PollCycleConfig{FetchBudget: 90 * time.Second, Now: clock.Now})

			logs := newRecordingLogger()
			ctx := contextkeys.ContextWithLogger(context.Background(), logs)
			if err := f.uc.Execute(ctx); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}

			warned := logs.has("warn", "Fetching took longer than the staleness margin, adoption detection may misfire")
			if warned != tc.wantWarn {
				t.Fatalf("budget warning = %v, want %v (logged %v)", warned, tc.wantWarn, logs.entries())
			}
		})
	}
}
