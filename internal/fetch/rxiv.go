// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/litdigest/internal/httputil"
	"github.com/pdiddy/litdigest/pkg/types"
)

// rxivAPIBase is the Cold Spring Harbor preprint details endpoint serving
// both bioRxiv and medRxiv. Declared as a var so tests can substitute an
// httptest server.
var rxivAPIBase = "https://api.biorxiv.org/details"

// rxivPageSize is the fixed page size of the details endpoint.
const rxivPageSize = 100

// RxivAdapter pages bioRxiv or medRxiv through their shared API. The API
// cannot combine category and keyword filters server-side, so both are
// OR-combined and applied client-side after fetch.
type RxivAdapter struct {
	client *httputil.Client
	kind   types.SourceKind
	server string
	cfg    types.RxivConfig
}

// NewBioRxiv builds the bioRxiv adapter.
func NewBioRxiv(client *httputil.Client, cfg types.RxivConfig) *RxivAdapter {
	return &RxivAdapter{client: client, kind: types.SourceBioRxiv, server: "biorxiv", cfg: cfg}
}

// NewMedRxiv builds the medRxiv adapter.
func NewMedRxiv(client *httputil.Client, cfg types.RxivConfig) *RxivAdapter {
	return &RxivAdapter{client: client, kind: types.SourceMedRxiv, server: "medrxiv", cfg: cfg}
}

// Kind returns the source identifier.
func (a *RxivAdapter) Kind() types.SourceKind { return a.kind }

// Enabled reports whether any category or keyword filter is configured.
func (a *RxivAdapter) Enabled() bool {
	return len(a.cfg.Categories) > 0 || len(a.cfg.Keywords) > 0
}

// FetchSince walks the cursor-paginated details listing for the cutoff→now
// window and filters each page client-side.
func (a *RxivAdapter) FetchSince(ctx context.Context, cutoff time.Time) ([]types.CandidateRecord, int, error) {
	start := cutoff.UTC().Format("2006-01-02")
	end := time.Now().UTC().Format("2006-01-02")

	var records []types.CandidateRecord
	dropped := 0

	for cursor := 0; ; cursor += rxivPageSize {
		reqURL := fmt.Sprintf("%s/%s/%s/%s/%d", rxivAPIBase, a.server, start, end, cursor)

		resp, err := a.client.Fetch(ctx, reqURL, a.kind)
		if err != nil {
			return records, dropped, err
		}

		var page rxivResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if decodeErr != nil {
			return records, dropped, types.NewFailure(types.FailUnavailable, a.kind,
				fmt.Errorf("parsing %s response: %w", a.server, decodeErr))
		}

		if len(page.Collection) == 0 {
			return records, dropped, nil
		}

		for _, item := range page.Collection {
			if !a.matches(item) {
				continue
			}
			r, ok := a.parseItem(item)
			if !ok {
				dropped++
				continue
			}
			records = append(records, r)
		}

		total := 0
		if len(page.Messages) > 0 {
			total = page.Messages[0].Total
		}
		if cursor+rxivPageSize >= total {
			return records, dropped, nil
		}
	}
}

// matches applies the OR-combined category and keyword filters. With no
// filters configured everything passes (the adapter would then be disabled
// anyway).
func (a *RxivAdapter) matches(item rxivItem) bool {
	if len(a.cfg.Categories) == 0 && len(a.cfg.Keywords) == 0 {
		return true
	}

	itemCat := strings.ReplaceAll(strings.ToLower(item.Category), " ", "_")
	for _, c := range a.cfg.Categories {
		if strings.Contains(itemCat, strings.ReplaceAll(strings.ToLower(c), " ", "_")) {
			return true
		}
	}

	text := strings.ToLower(item.Title + " " + item.Abstract)
	for _, kw := range a.cfg.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (a *RxivAdapter) parseItem(item rxivItem) (types.CandidateRecord, bool) {
	title := strings.TrimSpace(item.Title)
	doi := strings.TrimSpace(item.DOI)
	if title == "" || doi == "" {
		return types.CandidateRecord{}, false
	}

	published, err := time.Parse("2006-01-02", item.Date)
	if err != nil {
		return types.CandidateRecord{}, false
	}

	r := types.CandidateRecord{
		SourceID:    doi,
		SourceKind:  a.kind,
		Title:       title,
		Abstract:    strings.TrimSpace(item.Abstract),
		PublishedAt: published,
		ExternalURL: fmt.Sprintf("https://www.%s.org/content/%sv1", a.server, doi),
		RawIdentifiers: map[types.IdentifierKind]string{
			types.IDKindDOI: doi,
		},
	}

	// Authors arrive as one "Last, F.; Last, F." string.
	for _, name := range strings.Split(item.Authors, ";") {
		if name = strings.TrimSpace(name); name != "" {
			r.Authors = append(r.Authors, name)
		}
	}
	return r, true
}

// bioRxiv/medRxiv API JSON structures.
type rxivResponse struct {
	Messages   []rxivMessage `json:"messages"`
	Collection []rxivItem    `json:"collection"`
}

type rxivMessage struct {
	Total int `json:"total"`
}

type rxivItem struct {
	DOI      string `json:"doi"`
	Title    string `json:"title"`
	Authors  string `json:"authors"`
	Abstract string `json:"abstract"`
	Category string `json:"category"`
	Date     string `json:"date"`
}
