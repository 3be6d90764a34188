package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franz/roster-scout/internal/reconcile"
	"github.com/franz/roster-scout/internal/store"
)

const tmProfileFixture = `<html><body>
<h1>John Roe</h1>
<div>Date of birth/Age: Mar 18, 2004 (21)
Place of birth: Chicago, IL  Citizenship: United States
Height: 1,75 m</div>
</body></html>`

func TestParseTransfermarktProfile(t *testing.T) {
	fill, err := ParseTransfermarktProfile([]byte(tmProfileFixture), "https://www.transfermarkt.us/john-roe/profil/spieler/998877")
	if err != nil {
		t.Fatalf("ParseTransfermarktProfile failed: %v", err)
	}

	if fill.Birthdate != "2004-03-18" {
		t.Errorf("Birthdate = %q, want 2004-03-18", fill.Birthdate)
	}
	if fill.Birthplace != "Chicago, IL" {
		t.Errorf("Birthplace = %q, want %q", fill.Birthplace, "Chicago, IL")
	}
	if fill.Citizenship != "United States" {
		t.Errorf("Citizenship = %q, want %q", fill.Citizenship, "United States")
	}
	if fill.HeightIn != 69 {
		t.Errorf("HeightIn = %d, want 69", fill.HeightIn)
	}
	if fill.Empty() {
		t.Error("Empty() = true for a populated profile")
	}
}

func TestParseTransfermarktProfileSparse(t *testing.T) {
	fill, err := ParseTransfermarktProfile([]byte("<html><body><h1>Unknown</h1></body></html>"), "https://example.com")
	if err != nil {
		t.Fatalf("ParseTransfermarktProfile failed: %v", err)
	}
	if !fill.Empty() {
		t.Errorf("Empty() = false for a blank profile: %+v", fill)
	}
}

func newTransfermarktTestServer(t *testing.T) (*httptest.Server, *TransfermarktSource) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/schnellsuche/ergebnis/schnellsuche", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
<a href="/john-roe/profil/spieler/998877">John Roe</a>
</body></html>`)
	})
	mux.HandleFunc("/john-roe/profil/spieler/998877", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, tmProfileFixture)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	src := NewTransfermarktSource(newSourceTestClient(t))
	src.base = server.URL
	return server, src
}

func TestTransfermarktFindProfile(t *testing.T) {
	server, src := newTransfermarktTestServer(t)

	player := &store.Player{FirstName: "John", LastName: "Roe"}
	fill, err := src.FindProfile(context.Background(), player)
	if err != nil {
		t.Fatalf("FindProfile failed: %v", err)
	}
	if fill == nil {
		t.Fatal("FindProfile returned nil")
	}
	if fill.Birthdate != "2004-03-18" {
		t.Errorf("Birthdate = %q", fill.Birthdate)
	}
	if want := server.URL + "/john-roe/profil/spieler/998877"; fill.SourceURL != want {
		t.Errorf("SourceURL = %q, want %q", fill.SourceURL, want)
	}
}

func TestTransfermarktFindProfileNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No results.</p></body></html>`)
	}))
	defer server.Close()

	src := NewTransfermarktSource(newSourceTestClient(t))
	src.base = server.URL

	fill, err := src.FindProfile(context.Background(), &store.Player{FirstName: "Jean", LastName: "Doe"})
	if err != nil {
		t.Fatalf("FindProfile failed: %v", err)
	}
	if fill != nil {
		t.Errorf("fill = %+v, want nil", fill)
	}
}

func TestGapFill(t *testing.T) {
	st := newIngestTestStore(t, "test-gapfill.db")
	rec := reconcile.New(&reconcile.Config{Store: st})

	// Jane already has a birthdate; John has only a club-sourced height
	seed := []*reconcile.PlayerObservation{
		{Team: "Chicago Fire FC", Season: 2026, FirstName: "Jane", LastName: "Doe",
			Birthdate: "2004-01-01", Source: "club_site"},
		{Team: "Chicago Fire FC", Season: 2026, FirstName: "John", LastName: "Roe",
			HeightIn: 70, Source: "club_site"},
	}
	for _, obs := range seed {
		if _, err := rec.Player(obs); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	_, src := newTransfermarktTestServer(t)
	filler := NewGapFiller(&GapFillerConfig{
		Store:      st,
		Source:     src,
		Reconciler: rec,
		RunID:      "test-run",
	})

	stats, err := filler.Fill(context.Background(), "birthdate", nil, 2026, 0)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if stats.Players != 1 {
		t.Errorf("Players = %d, want 1", stats.Players)
	}
	if stats.Filled != 1 {
		t.Errorf("Filled = %d, want 1", stats.Filled)
	}

	john, err := st.GetPlayerByNaturalKey("Chicago Fire FC", 2026, "John", "Roe")
	if err != nil {
		t.Fatalf("GetPlayerByNaturalKey failed: %v", err)
	}
	if john.Birthdate != "2004-03-18" {
		t.Errorf("Birthdate = %q, want 2004-03-18", john.Birthdate)
	}
	if john.Citizenship != "United States" {
		t.Errorf("Citizenship = %q", john.Citizenship)
	}
	if john.HometownCity != "Chicago" || john.HometownState != "IL" {
		t.Errorf("hometown = %q, %q", john.HometownCity, john.HometownState)
	}

	// The club's height outranks the profile's
	if john.HeightIn != 70 {
		t.Errorf("HeightIn = %d, want the club value 70", john.HeightIn)
	}

	count, err := st.CountScrapeAttempts()
	if err != nil {
		t.Fatalf("CountScrapeAttempts failed: %v", err)
	}
	if count != 1 {
		t.Errorf("scrape attempts = %d, want 1", count)
	}
}

func TestGapFillNoProfile(t *testing.T) {
	st := newIngestTestStore(t, "test-gapfill-miss.db")
	rec := reconcile.New(&reconcile.Config{Store: st})

	if _, _, err := st.EnsurePlayer("Chicago Fire FC", 2026, "Jean", "Doe"); err != nil {
		t.Fatalf("EnsurePlayer failed: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No results.</p></body></html>`)
	}))
	defer server.Close()

	src := NewTransfermarktSource(newSourceTestClient(t))
	src.base = server.URL

	filler := NewGapFiller(&GapFillerConfig{
		Store:      st,
		Source:     src,
		Reconciler: rec,
		RunID:      "test-run",
	})

	stats, err := filler.Fill(context.Background(), "birthdate", nil, 2026, 0)
	if err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if stats.NoMatch != 1 {
		t.Errorf("NoMatch = %d, want 1", stats.NoMatch)
	}
	if stats.Filled != 0 {
		t.Errorf("Filled = %d, want 0", stats.Filled)
	}
}
