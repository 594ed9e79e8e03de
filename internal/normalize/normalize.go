// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps source-native candidate records into the canonical
// record shape and computes the synthetic dedup key.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/litdigest/pkg/types"
)

// Record converts a candidate into a NormalizedRecord carrying its synthetic
// key and an initial Sources set of the reporting source alone.
func Record(c types.CandidateRecord) types.NormalizedRecord {
	return types.NormalizedRecord{
		CandidateRecord: c,
		Key:             Key(c),
		Sources:         map[types.SourceKind]bool{c.SourceKind: true},
	}
}

// Key computes the synthetic dedup key for a candidate. The primary key is
// the normalized DOI; the fallback is the normalized title joined with the
// publication year, which still catches cross-posts that lack a shared DOI
// at fetch time.
func Key(c types.CandidateRecord) string {
	if doi := NormalizeDOI(c.DOI()); doi != "" {
		return "doi:" + doi
	}
	year := 0
	if !c.PublishedAt.IsZero() {
		year = c.PublishedAt.Year()
	}
	return fmt.Sprintf("title:%s:%d", NormalizeTitle(c.Title), year)
}

// NormalizeDOI lowercases a DOI and strips resolver URL prefixes so the same
// work keys identically across mirrors.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(strings.ToLower(doi))
	for _, prefix := range []string{
		"https://doi.org/",
		"http://doi.org/",
		"https://dx.doi.org/",
		"http://dx.doi.org/",
		"doi:",
	} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return doi
}

// NormalizeTitle returns a lowercased, punctuation-stripped,
// whitespace-collapsed version of the title.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
