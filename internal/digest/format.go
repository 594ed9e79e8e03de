// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/litdigest/pkg/types"
)

// FormatTable writes the ranked shortlist as a human-readable table to w.
func FormatTable(records []types.ScoredRecord, report Report, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records matched.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Score", "Sources")
	fmt.Fprintln(w, strings.Repeat("-", 112))

	for _, r := range records {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if !r.PublishedAt.IsZero() {
			year = fmt.Sprintf("%d", r.PublishedAt.Year())
		}
		score := "  -"
		if r.Scored {
			score = fmt.Sprintf("%.2f", r.Score)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6s  %s\n",
			r.Rank, title, formatAuthors(r.Authors), year, score,
			strings.Join(r.SourceLabels(), ","))
		if r.Digest != "" {
			fmt.Fprintf(w, "      %s\n", r.Digest)
		}
	}

	fmt.Fprintf(w, "\n%d records", len(records))
	if report.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", report.DupsRemoved)
	}
	if report.CacheSkipped > 0 {
		fmt.Fprintf(w, " (%d previously seen)", report.CacheSkipped)
	}
	if report.TimedOut {
		fmt.Fprint(w, " [partial: run deadline expired]")
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the ranked shortlist and run report as indented JSON to w.
func FormatJSON(records []types.ScoredRecord, report Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Report  Report               `json:"report"`
		Records []types.ScoredRecord `json:"records"`
	}{report, records})
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
