package petharborfetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/pkg/scraper"
)

const rowsPage1 = `
<tr><td>Picture</td><td>Name</td><td>Gender</td><td>Color</td><td>Breed</td><td>Age</td></tr>
<tr><td><a href="detail.asp?ID=A100"><img src="get_image.asp?RES=detail&ID=A100"></a></td>
    <td>BELLA MAE (A100)</td><td>Female</td><td>Black</td><td>Labrador Retriever</td><td>3 years</td></tr>
<tr><td></td><td>NOID</td><td>Male</td><td>Tan</td><td>Boxer</td><td>1 year</td></tr>`

const rowsPage2 = `
<tr><td>Picture</td><td>Name</td><td>Gender</td><td>Color</td><td>Breed</td><td>Age</td></tr>
<tr><td></td><td>MAX (A200)</td><td>Male</td><td>White</td><td></td><td>5 years</td></tr>`

func TestFetchListingsPaginates(t *testing.T) {
	var shelterLists []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shelterLists = append(shelterLists, r.URL.Query().Get("shelterlist"))
		rows, next := rowsPage1, `<a href="results.asp?page=2">Next Page</a>`
		if r.URL.Query().Get("page") == "2" {
			rows, next = rowsPage2, ""
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><table class="ResultsTable">%s</table>%s</body></html>`, rows, next)
	}))
	defer srv.Close()

	adapter, err := NewPetharborFetcherAdapter(srv.URL+"/results.asp", scraper.Options{})
	if err != nil {
		t.Fatal(err)
	}

	criteria := domain.SearchCriteria{ShelterID: "KING"}
	listings, cursor, err := adapter.FetchListings(context.Background(), criteria)
	if err != nil {
		t.Fatalf("FetchListings() error = %v", err)
	}
	if len(listings) != 1 || cursor != "2" {
		t.Fatalf("page 1: %d listings, cursor %q", len(listings), cursor)
	}
	bella := listings[0]
	if bella.AnimalID != "A100" || bella.Name != "Bella Mae" || bella.Breed != "Labrador Retriever" || bella.ShelterID != "KING" {
		t.Fatalf("bella = %+v", bella)
	}
	if !bella.HasPhoto() || *bella.PhotoURL != srv.URL+"/get_image.asp?RES=detail&ID=A100" {
		t.Fatalf("photo = %v", bella.PhotoURL)
	}

	criteria.Cursor = cursor
	listings, cursor, err = adapter.FetchListings(context.Background(), criteria)
	if err != nil {
		t.Fatalf("FetchListings() error = %v", err)
	}
	if len(listings) != 1 || cursor != "" {
		t.Fatalf("page 2: %d listings, cursor %q", len(listings), cursor)
	}
	if listings[0].Breed != domain.UnknownBreed || listings[0].HasPhoto() {
		t.Fatalf("max = %+v", listings[0])
	}
	if shelterLists[0] != "'KING'" {
		t.Fatalf("shelterlist = %q", shelterLists[0])
	}
}

func TestSplitNameAndID(t *testing.T) {
	name, id, err := splitNameAndID("SIR BARKS A LOT (A777)")
	if err != nil || name != "SIR BARKS A LOT" || id != "A777" {
		t.Fatalf("got %q, %q, %v", name, id, err)
	}
	if _, _, err := splitNameAndID("NOID"); err == nil {
		t.Fatal("cell without id accepted")
	}
}
