// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/litdigest/pkg/types"
)

func arxivEntryXML(id, title, published string) string {
	return fmt.Sprintf(`<entry>
		<id>http://arxiv.org/abs/%sv1</id>
		<title>%s</title>
		<summary>Abstract of %s.</summary>
		<published>%s</published>
		<author><name>Jane Doe</name></author>
		<author><name>John Roe</name></author>
	</entry>`, id, title, title, published)
}

func arxivFeedXML(entries ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">` + strings.Join(entries, "\n") + `</feed>`
}

func TestArxivFetchSince(t *testing.T) {
	recent := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)
	old := time.Now().UTC().Add(-72 * time.Hour).Format(time.RFC3339)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("search_query")
		if !strings.Contains(q, "cat:q-bio.TO") {
			t.Errorf("search_query = %q, missing category term", q)
		}
		fmt.Fprint(w, arxivFeedXML(
			arxivEntryXML("2608.01234", "Skin organoid atlas", recent),
			arxivEntryXML("2607.00001", "Stale paper", old),
		))
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	a := NewArxiv(testHTTPClient(), types.ArxivConfig{Categories: []string{"q-bio.TO"}})
	records, dropped, err := a.FetchSince(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1 (old entry past cutoff)", len(records))
	}

	r := records[0]
	if r.SourceID != "2608.01234" {
		t.Errorf("SourceID = %q, want version-stripped arXiv ID", r.SourceID)
	}
	if r.SourceKind != types.SourceArxiv {
		t.Errorf("SourceKind = %q", r.SourceKind)
	}
	if r.ExternalURL != "https://arxiv.org/abs/2608.01234" {
		t.Errorf("ExternalURL = %q", r.ExternalURL)
	}
	if len(r.Authors) != 2 || r.Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v", r.Authors)
	}
	if r.RawIdentifiers[types.IDKindArxiv] != "2608.01234" {
		t.Errorf("RawIdentifiers = %v", r.RawIdentifiers)
	}
}

func TestArxivStopsWhenPageNewestPredatesCutoff(t *testing.T) {
	old := time.Now().UTC().Add(-96 * time.Hour).Format(time.RFC3339)
	var pages int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		fmt.Fprint(w, arxivFeedXML(arxivEntryXML("2607.11111", "Very old", old)))
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	a := NewArxiv(testHTTPClient(), types.ArxivConfig{Categories: []string{"cs.LG"}, PageSize: 1})
	records, _, err := a.FetchSince(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
	if pages != 1 {
		t.Errorf("fetched %d pages, want 1 (stop once page is past cutoff)", pages)
	}
}

func TestArxivDropsUnparseableEntry(t *testing.T) {
	recent := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, arxivFeedXML(
			arxivEntryXML("2608.02222", "Good entry", recent),
			`<entry><id>http://arxiv.org/nothing-here</id><title>Bad ID</title><published>`+recent+`</published></entry>`,
		))
	}))
	defer ts.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = oldBase }()

	a := NewArxiv(testHTTPClient(), types.ArxivConfig{Categories: []string{"cs.LG"}})
	records, dropped, err := a.FetchSince(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FetchSince: %v", err)
	}
	if len(records) != 1 || dropped != 1 {
		t.Errorf("records = %d, dropped = %d; want 1, 1", len(records), dropped)
	}
}

func TestArxivDisabledWithoutCategories(t *testing.T) {
	a := NewArxiv(testHTTPClient(), types.ArxivConfig{})
	if a.Enabled() {
		t.Error("adapter with no categories should be disabled")
	}
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041v12", "2301.07041"},
		{"http://arxiv.org/no-abs", ""},
	}
	for _, tt := range tests {
		if got := extractArxivID(tt.in); got != tt.want {
			t.Errorf("extractArxivID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
