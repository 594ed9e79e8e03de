// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"
	"time"

	"github.com/pdiddy/litdigest/pkg/types"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", "10.1101/2024.01.02.573943", "10.1101/2024.01.02.573943"},
		{"uppercase", "10.1101/2024.ABC", "10.1101/2024.abc"},
		{"https prefix", "https://doi.org/10.1101/2024.01.02.573943", "10.1101/2024.01.02.573943"},
		{"dx prefix", "http://dx.doi.org/10.1038/nature12373", "10.1038/nature12373"},
		{"doi scheme", "doi:10.1038/nature12373", "10.1038/nature12373"},
		{"whitespace", "  10.1101/xyz  ", "10.1101/xyz"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeDOI(tt.in); got != tt.want {
				t.Errorf("NormalizeDOI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "CRISPR gene editing in skin", "crispr gene editing in skin"},
		{"punctuation", "Attention Is All You Need!", "attention is all you need"},
		{"extra whitespace", "  spaced\t out \n title ", "spaced out title"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeyPrefersDOI(t *testing.T) {
	c := types.CandidateRecord{
		Title:          "Some Title",
		PublishedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		RawIdentifiers: map[types.IdentifierKind]string{types.IDKindDOI: "https://doi.org/10.1101/XYZ"},
	}
	if got, want := Key(c), "doi:10.1101/xyz"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestKeyFallsBackToTitleYear(t *testing.T) {
	c := types.CandidateRecord{
		Title:       "CRISPR-based keratinocyte editing!",
		PublishedAt: time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
	if got, want := Key(c), "title:crisprbased keratinocyte editing:2026"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestKeyZeroDateUsesYearZero(t *testing.T) {
	c := types.CandidateRecord{Title: "Undated Work"}
	if got, want := Key(c), "title:undated work:0"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestRecordSeedsSourcesSet(t *testing.T) {
	c := types.CandidateRecord{Title: "X", SourceKind: types.SourceBioRxiv}
	n := Record(c)
	if !n.Sources[types.SourceBioRxiv] || len(n.Sources) != 1 {
		t.Errorf("Sources = %v, want exactly {biorxiv}", n.Sources)
	}
	if n.Key == "" {
		t.Error("Key is empty")
	}
}
