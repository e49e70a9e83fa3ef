// Команда report печатает записи из файла снимка по фильтрам. Снимок не изменяется.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"adoption-tracker-service/internal/adapters/console"
	"adoption-tracker-service/internal/adapters/filestorage"
	"adoption-tracker-service/internal/core/domain"
	usecases_port "adoption-tracker-service/internal/core/port/usecases"
	"adoption-tracker-service/internal/core/usecase"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	statePath := fs.String("state", envOr("STATE_PATH", "state.json"), "path to the snapshot file")

	provider := fs.String("provider", "", "only this provider (PAWS, Petango, Petfinder, Petharbor)")
	shelter := fs.String("shelter", "", "only this shelter id")
	animal := fs.String("animal", "", "only this animal id")
	name := fs.String("name", "", "exact name")
	breed := fs.String("breed", "", "breed substring, case-insensitive")
	photo := fs.String("photo", "any", "has photo: yes, no or any")
	pending := fs.String("pending", "any", "pending: yes, no or any")
	foundWithin := fs.Duration("found-within", 0, "found no longer than this ago")
	pendingWithin := fs.Duration("pending-within", 0, "pending no longer than this ago")
	seenWithin := fs.Duration("seen-within", 0, "seen no longer than this ago")

	showStatus := fs.Bool("show-status", false, "show AVAILABLE/PENDING column")
	showFound := fs.Bool("show-found", false, "show time since found")
	showPending := fs.Bool("show-pending", false, "show time since pending")
	showAdopted := fs.Bool("show-adopted", false, "show time since adopted")
	showSeen := fs.Bool("show-seen", false, "show time since last seen")
	showPhoto := fs.Bool("show-photo", false, "show photo URL")
	showData := fs.Bool("data", false, "include raw provider data")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	hasPhoto, err := parseTriState(*photo)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -photo: %v\n", err)
		return 2
	}
	isPending, err := parseTriState(*pending)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -pending: %v\n", err)
		return 2
	}

	storage, err := filestorage.NewSnapshotFileStorage(*statePath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	res, err := storage.Load(context.Background())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if res.Status == domain.SnapshotMissing {
		fmt.Fprintf(stderr, "snapshot %s not found\n", *statePath)
		return 1
	}

	at := now()
	filter := domain.ListingFilter{
		Provider:       *provider,
		ShelterID:      *shelter,
		AnimalID:       *animal,
		Name:           *name,
		Breed:          *breed,
		HasPhoto:       hasPhoto,
		Pending:        isPending,
		FoundSince:     since(at, *foundWithin),
		PendingSince:   since(at, *pendingWithin),
		SeenSince:      since(at, *seenWithin),
		IncludeRawData: *showData,
	}
	var search usecases_port.SearchListingsPort = usecase.NewSearchListingsUseCase()
	results := search.Execute(res.Snapshot, filter)

	columns := console.DefaultTableColumns()
	columns.Status = *showStatus
	columns.TimeFound = *showFound
	columns.TimePending = *showPending
	columns.TimeAdopted = *showAdopted
	columns.TimeSeen = *showSeen
	columns.Photo = *showPhoto
	columns.RawData = *showData

	if err := console.NewTable(stdout, columns).Render(results); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func since(now time.Time, within time.Duration) int64 {
	if within <= 0 {
		return 0
	}
	return now.Add(-within).Unix()
}

func parseTriState(v string) (*bool, error) {
	switch strings.ToLower(v) {
	case "", "any":
		return nil, nil
	case "yes", "true", "y":
		t := true
		return &t, nil
	case "no", "false", "n":
		f := false
		return &f, nil
	default:
		return nil, fmt.Errorf("%q is not one of yes, no, any", v)
	}
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
