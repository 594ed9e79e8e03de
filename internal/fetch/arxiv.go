// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/litdigest/internal/httputil"
	"github.com/pdiddy/litdigest/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const defaultArxivPageSize = 100

// ArxivAdapter pages through the arXiv Atom feed for the configured
// categories.
type ArxivAdapter struct {
	client *httputil.Client
	cfg    types.ArxivConfig
}

// NewArxiv builds the arXiv adapter.
func NewArxiv(client *httputil.Client, cfg types.ArxivConfig) *ArxivAdapter {
	return &ArxivAdapter{client: client, cfg: cfg}
}

// Kind returns the source identifier.
func (a *ArxivAdapter) Kind() types.SourceKind { return types.SourceArxiv }

// Enabled reports whether any categories are configured.
func (a *ArxivAdapter) Enabled() bool { return len(a.cfg.Categories) > 0 }

// FetchSince pages through submissions newest-first until a page is empty
// or a page's newest entry predates the cutoff.
func (a *ArxivAdapter) FetchSince(ctx context.Context, cutoff time.Time) ([]types.CandidateRecord, int, error) {
	pageSize := a.cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultArxivPageSize
	}

	query := buildArxivQuery(a.cfg.Categories, cutoff)

	var records []types.CandidateRecord
	dropped := 0

	for start := 0; ; start += pageSize {
		reqURL := fmt.Sprintf("%s?search_query=%s&start=%d&max_results=%d&sortBy=submittedDate&sortOrder=descending",
			arxivAPIBase, url.QueryEscape(query), start, pageSize)

		resp, err := a.client.Fetch(ctx, reqURL, a.Kind())
		if err != nil {
			return records, dropped, err
		}

		var feed arxivFeed
		decodeErr := xml.NewDecoder(resp.Body).Decode(&feed)
		resp.Body.Close()
		if decodeErr != nil {
			return records, dropped, types.NewFailure(types.FailUnavailable, a.Kind(),
				fmt.Errorf("parsing arXiv feed: %w", decodeErr))
		}

		if len(feed.Entries) == 0 {
			return records, dropped, nil
		}

		pastCutoff := false
		for i, entry := range feed.Entries {
			r, ok := parseArxivEntry(entry)
			if !ok {
				dropped++
				continue
			}
			if r.PublishedAt.Before(cutoff) {
				// Entries are newest-first: once the newest entry of a
				// page is past the cutoff the remaining pages are too.
				if i == 0 {
					return records, dropped, nil
				}
				pastCutoff = true
				continue
			}
			records = append(records, r)
		}
		if pastCutoff || len(feed.Entries) < pageSize {
			return records, dropped, nil
		}
	}
}

// buildArxivQuery OR-combines category terms and restricts by submission date.
func buildArxivQuery(categories []string, cutoff time.Time) string {
	terms := make([]string, len(categories))
	for i, c := range categories {
		terms[i] = "cat:" + c
	}
	dateRange := fmt.Sprintf("submittedDate:[%s0000 TO %s2359]",
		cutoff.UTC().Format("20060102"), time.Now().UTC().Format("20060102"))
	return "(" + strings.Join(terms, " OR ") + ") AND " + dateRange
}

func parseArxivEntry(entry arxivEntry) (types.CandidateRecord, bool) {
	id := extractArxivID(entry.ID)
	if id == "" || strings.TrimSpace(entry.Title) == "" {
		return types.CandidateRecord{}, false
	}

	published, err := time.Parse(time.RFC3339, entry.Published)
	if err != nil {
		return types.CandidateRecord{}, false
	}

	r := types.CandidateRecord{
		SourceID:    id,
		SourceKind:  types.SourceArxiv,
		Title:       strings.Join(strings.Fields(entry.Title), " "),
		Abstract:    strings.TrimSpace(entry.Summary),
		PublishedAt: published,
		ExternalURL: "https://arxiv.org/abs/" + id,
		RawIdentifiers: map[types.IdentifierKind]string{
			types.IDKindArxiv: id,
		},
	}
	if entry.DOI != "" {
		r.RawIdentifiers[types.IDKindDOI] = entry.DOI
	}
	for _, au := range entry.Authors {
		r.Authors = append(r.Authors, strings.TrimSpace(au.Name))
	}
	return r, true
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	DOI       string        `xml:"doi"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
