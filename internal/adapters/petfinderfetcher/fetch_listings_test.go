package petfinderfetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"
)

func TestFetchListingsPaginates(t *testing.T) {
	var mu sync.Mutex
	var queries []url.Values
	var ajaxHeaders []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query())
		ajaxHeaders = append(ajaxHeaders, r.Header.Get("X-Requested-With"))
		mu.Unlock()

		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"result": {"animals": [
			{"animal": {"id": %s01, "name": "Scout", "breeds_label": "Husky / Mixed", "primary_photo_url": "https://photos.example/%s.jpg"}},
			{"animal": {"id": "%s02", "name": "Olive", "breeds_label": ""}},
			{"animal": {"name": "missing id"}}
		], "pagination": {"total_pages": 2}}}`, page, page, page)
	}))
	defer srv.Close()

	adapter, err := NewPetfinderFetcherAdapter(srv.URL+"/search/", scraper.Options{})
	if err != nil {
		t.Fatal(err)
	}

	criteria := domain.SearchCriteria{ShelterID: "WA01", Token: "secret"}
	listings, cursor, err := adapter.FetchListings(context.Background(), criteria)
	if err != nil {
		t.Fatalf("FetchListings() error = %v", err)
	}
	if len(listings) != 2 || cursor != "2" {
		t.Fatalf("page 1: %d listings, cursor %q", len(listings), cursor)
	}
	if l := listings[0]; l.AnimalID != "101" || l.ShelterID != "WA01" || l.Breed != "Husky / Mixed" || !l.HasPhoto() {
		t.Fatalf("listing = %+v", l)
	}
	if l := listings[1]; l.AnimalID != "102" || l.Breed != domain.UnknownBreed || l.HasPhoto() {
		t.Fatalf("listing = %+v", l)
	}

	criteria.Cursor = cursor
	listings, cursor, err = adapter.FetchListings(context.Background(), criteria)
	if err != nil {
		t.Fatalf("FetchListings() error = %v", err)
	}
	if len(listings) != 2 || cursor != "" || listings[0].AnimalID != "201" {
		t.Fatalf("page 2: %d listings, cursor %q", len(listings), cursor)
	}

	q := queries[0]
	if q.Get("token") != "secret" || q.Get("shelter_id[]") != "WA01" || q.Get("type[]") != "dogs" || q.Get("page") != "1" {
		t.Fatalf("query = %v", q)
	}
	if ajaxHeaders[0] != "XMLHttpRequest" {
		t.Fatalf("X-Requested-With = %q", ajaxHeaders[0])
	}
}

func TestFetchListingsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	adapter, err := NewPetfinderFetcherAdapter(srv.URL, scraper.Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = adapter.FetchListings(context.Background(), domain.SearchCriteria{ShelterID: "WA01"})
	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("error = %v, want FetchError with status 401", err)
	}
}
