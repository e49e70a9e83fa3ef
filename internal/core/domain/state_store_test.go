package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func listing(provider, shelter, animal string) Listing {
	return Listing{Provider: provider, ShelterID: shelter, AnimalID: animal, Name: "Rex", Breed: "Beagle"}
}

func TestIngestLifecycle(t *testing.T) {
	clock := newClock()
	store := NewStateStore(clock.Now)
	start := clock.t.Unix()

	l := listing(ProviderPetfinder, "WA01", "42")
	l.RawData = json.RawMessage(`{"id":42}`)

	outcome, rec, err := store.Ingest(l, false)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if outcome != OutcomeNew || rec.TimeFound != start || rec.TimeSeen != start || rec.TimePending != 0 || rec.TimeAdopted != 0 {
		t.Fatalf("new record = %v, %+v", outcome, rec)
	}

	clock.Advance(30 * time.Second)
	outcome, rec, _ = store.Ingest(l, false)
	if outcome != OutcomeUnchanged || rec.TimeSeen != start+30 || rec.TimeFound != start {
		t.Fatalf("re-sighting = %v, %+v", outcome, rec)
	}

	clock.Advance(30 * time.Second)
	l.Pending = true
	l.Name = "Rexy"
	outcome, rec, _ = store.Ingest(l, false)
	if outcome != OutcomeStatusChanged || !rec.Pending || rec.TimePending != start+60 || rec.Name != "Rexy" || rec.TimeFound != start {
		t.Fatalf("became pending = %v, %+v", outcome, rec)
	}

	clock.Advance(30 * time.Second)
	l.Pending = false
	outcome, rec, _ = store.Ingest(l, false)
	if outcome != OutcomeStatusChanged || rec.Pending || rec.TimePending != start+60 {
		t.Fatalf("left pending = %v, %+v (pending history must be kept)", outcome, rec)
	}

	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
}

func TestIngestNewPendingListing(t *testing.T) {
	clock := newClock()
	store := NewStateStore(clock.Now)
	l := listing(ProviderPAWS, DefaultShelterID, "7-PAWS")
	l.Pending = true

	_, rec, _ := store.Ingest(l, false)
	if rec.TimePending != clock.t.Unix() {
		t.Fatalf("TimePending = %d, want %d", rec.TimePending, clock.t.Unix())
	}
}

func TestIngestExcludedDecisionIsSticky(t *testing.T) {
	store := NewStateStore(newClock().Now)
	l := listing(ProviderPetango, "1", "9")
	l.RawData = json.RawMessage(`{"big":"payload"}`)

	_, rec, _ := store.Ingest(l, true)
	if !rec.Excluded || rec.RawData != nil {
		t.Fatalf("excluded record = %+v, raw data must be dropped", rec)
	}

	l.Pending = true
	_, rec, _ = store.Ingest(l, false)
	if !rec.Excluded || rec.RawData != nil {
		t.Fatalf("status change cleared exclusion: %+v", rec)
	}
}

func TestIngestRejectsInvalidListing(t *testing.T) {
	store := NewStateStore(nil)
	_, _, err := store.Ingest(Listing{Provider: ProviderPAWS}, false)
	if !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("Ingest() error = %v, want ErrInvalidListing", err)
	}
	if store.Len() != 0 {
		t.Fatal("invalid listing stored")
	}
}

func TestTimeSeenNeverDecreases(t *testing.T) {
	clock := newClock()
	store := NewStateStore(clock.Now)
	l := listing(ProviderPAWS, "0000", "1-PAWS")
	_, first, _ := store.Ingest(l, false)

	clock.Advance(-time.Hour)
	_, rec, _ := store.Ingest(l, false)
	if rec.TimeSeen != first.TimeSeen {
		t.Fatalf("TimeSeen went backwards: %d -> %d", first.TimeSeen, rec.TimeSeen)
	}
}

func TestSameAnimalIDAcrossShelters(t *testing.T) {
	store := NewStateStore(newClock().Now)
	store.Ingest(listing(ProviderPetfinder, "A", "1"), false)
	outcome, _, _ := store.Ingest(listing(ProviderPetfinder, "B", "1"), false)
	if outcome != OutcomeNew || store.Len() != 2 {
		t.Fatalf("composite key collision: outcome %v, len %d", outcome, store.Len())
	}
}

func TestTouchAndSweep(t *testing.T) {
	clock := newClock()
	store := NewStateStore(clock.Now)
	threshold := 120 * time.Second

	store.Ingest(listing(ProviderPAWS, "0000", "1-PAWS"), false)
	store.Ingest(listing(ProviderPetango, "1", "2"), false)

	clock.Advance(119 * time.Second)
	if retired := store.Sweep(threshold); len(retired) != 0 {
		t.Fatalf("retired %d listings before the threshold", len(retired))
	}

	if touched := store.Touch(ProviderPetango); touched != 1 {
		t.Fatalf("Touch() = %d, want 1", touched)
	}

	clock.Advance(time.Second)
	retired := store.Sweep(threshold)
	if len(retired) != 1 || retired[0].Provider != ProviderPAWS {
		t.Fatalf("retired = %+v, want only the PAWS listing", retired)
	}
	if retired[0].TimeAdopted != clock.t.Unix() {
		t.Fatalf("TimeAdopted = %d, want %d", retired[0].TimeAdopted, clock.t.Unix())
	}
	if _, ok := store.Get(retired[0].Key()); ok {
		t.Fatal("retired listing still active")
	}

	// вернувшееся объявление начинает новую жизнь
	outcome, rec, _ := store.Ingest(listing(ProviderPAWS, "0000", "1-PAWS"), false)
	if outcome != OutcomeNew || rec.TimeFound != clock.t.Unix() {
		t.Fatalf("reappeared listing = %v, %+v", outcome, rec)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	clock := newClock()
	store := NewStateStore(clock.Now)
	store.Ingest(listing(ProviderPAWS, "0000", "1-PAWS"), false)
	store.Ingest(listing(ProviderPetfinder, "WA01", "42"), true)

	snap := store.Snapshot()
	if snap.Len() != 2 {
		t.Fatalf("snapshot len = %d", snap.Len())
	}

	restored := NewStateStore(clock.Now)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	got := restored.Listings()
	want := store.Listings()
	if len(got) != len(want) {
		t.Fatalf("restored %d listings, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Key() != want[i].Key() || got[i].Excluded != want[i].Excluded || got[i].TimeFound != want[i].TimeFound {
			t.Fatalf("restored %+v, want %+v", got[i], want[i])
		}
	}
}

func TestRestoreFillsIdentityFromPosition(t *testing.T) {
	snap := Snapshot{"PAWS": {"0000": {"5-PAWS": {Name: "Old", Breed: "Mutt", TimeFound: 1, TimeSeen: 1, TimeAdopted: 99}}}}
	store := NewStateStore(nil)
	if err := store.Restore(snap); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	rec, ok := store.Get(ListingKey{Provider: "PAWS", ShelterID: "0000", AnimalID: "5-PAWS"})
	if !ok || rec.TimeAdopted != 0 {
		t.Fatalf("restored record = %+v, %v", rec, ok)
	}
}

func TestRestoreRejectsMismatchedRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  Listing
	}{
		{"identity differs from position", Listing{Provider: "PAWS", ShelterID: "0000", AnimalID: "6-PAWS", TimeFound: 1, TimeSeen: 1}},
		{"seen before found", Listing{TimeFound: 200, TimeSeen: 100}},
		{"pending before found", Listing{Pending: true, TimeFound: 200, TimePending: 100, TimeSeen: 300}},
		{"pending after seen", Listing{Pending: true, TimeFound: 100, TimePending: 400, TimeSeen: 300}},
		{"raw data is not JSON", Listing{TimeFound: 1, TimeSeen: 1, RawData: json.RawMessage(`{"id":`)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := Snapshot{"PAWS": {"0000": {"5-PAWS": tc.rec}}}
			store := NewStateStore(nil)
			store.Ingest(listing(ProviderPetango, "1", "1"), false)

			if err := store.Restore(snap); !errors.Is(err, ErrInvalidListing) {
				t.Fatalf("Restore() error = %v, want ErrInvalidListing", err)
			}
			if store.Len() != 1 {
				t.Fatal("failed restore replaced existing state")
			}
		})
	}
}

func TestRestoreAcceptsValidTimeline(t *testing.T) {
	snap := Snapshot{"PAWS": {"0000": {
		"1-PAWS": {Pending: true, TimeFound: 100, TimePending: 100, TimeSeen: 100},
		"2-PAWS": {TimeFound: 100, TimePending: 150, TimeSeen: 300},
		"3-PAWS": {TimeFound: 100, TimeSeen: 300},
	}}}
	store := NewStateStore(nil)
	if err := store.Restore(snap); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if store.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", store.Len())
	}
}

func TestIngestCompactsRawData(t *testing.T) {
	store := NewStateStore(newClock().Now)
	l := listing(ProviderPetfinder, "WA01", "42")
	l.RawData = json.RawMessage("{\n  \"id\": 42,\n  \"name\": \"Rex  Jr\"\n}")

	_, rec, err := store.Ingest(l, false)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if string(rec.RawData) != `{"id":42,"name":"Rex  Jr"}` {
		t.Fatalf("RawData = %q, want compact form", rec.RawData)
	}

	l.RawData = json.RawMessage(`{"id":`)
	l.AnimalID = "43"
	if _, _, err := store.Ingest(l, false); !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("Ingest() error = %v, want ErrInvalidListing for broken raw data", err)
	}
}
