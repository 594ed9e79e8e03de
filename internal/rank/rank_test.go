// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/pdiddy/litdigest/internal/embed"
	"github.com/pdiddy/litdigest/pkg/types"
)

func rec(title string, published time.Time) types.NormalizedRecord {
	return types.NormalizedRecord{
		CandidateRecord: types.CandidateRecord{Title: title, PublishedAt: published},
		Key:             "title:" + title,
	}
}

var day = 24 * time.Hour

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
		{"length mismatch", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRankMaxNotMeanSimilarity(t *testing.T) {
	// Corpus has two very different interests; the candidate matches only
	// one of them. Max-similarity must score it high anyway.
	ix := &embed.Index{Vectors: [][]float32{{1, 0}, {0, 1}}}
	records := []types.NormalizedRecord{rec("matches first interest", time.Now())}
	vectors := [][]float32{{1, 0}}

	out := Rank(ix, records, vectors, types.RankConfig{})
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if math.Abs(out[0].Score-1) > 1e-9 {
		t.Errorf("Score = %f, want 1.0 (max, not mean 0.5)", out[0].Score)
	}
}

func TestRankScoreFloorAndCap(t *testing.T) {
	now := time.Now()
	ix := &embed.Index{Vectors: [][]float32{{1, 0}}}
	records := []types.NormalizedRecord{
		rec("CRISPR-based keratinocyte editing", now),
		rec("stock market trends", now),
	}
	vectors := [][]float32{
		{0.9, 0.1}, // ≈0.99 vs corpus
		{0.05, 1},  // ≈0.05 vs corpus
	}

	out := Rank(ix, records, vectors, types.RankConfig{MinScore: 0.3, MaxResults: 10})
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (floor excludes the off-topic paper)", len(out))
	}
	if out[0].Title != "CRISPR-based keratinocyte editing" {
		t.Errorf("kept %q", out[0].Title)
	}
	if out[0].Rank != 1 {
		t.Errorf("Rank = %d, want 1", out[0].Rank)
	}
}

func TestRankMaxResultsTruncates(t *testing.T) {
	now := time.Now()
	ix := &embed.Index{Vectors: [][]float32{{1, 0}}}
	var records []types.NormalizedRecord
	var vectors [][]float32
	for i := 0; i < 5; i++ {
		records = append(records, rec(string(rune('a'+i)), now.Add(-time.Duration(i)*day)))
		vectors = append(vectors, []float32{1, float32(i)})
	}

	out := Rank(ix, records, vectors, types.RankConfig{MaxResults: 3})
	if len(out) != 3 {
		t.Errorf("len(out) = %d, want 3", len(out))
	}
	for i, sr := range out {
		if sr.Rank != i+1 {
			t.Errorf("out[%d].Rank = %d, want %d", i, sr.Rank, i+1)
		}
	}
}

func TestRankTieBreaks(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	ix := &embed.Index{Vectors: [][]float32{{1, 0}}}
	records := []types.NormalizedRecord{
		rec("zebra paper", now.Add(-day)), // same score, older
		rec("beta paper", now),            // same score, newer
		rec("alpha paper", now),           // same score, same date as beta
	}
	v := []float32{1, 0}
	vectors := [][]float32{v, v, v}

	out := Rank(ix, records, vectors, types.RankConfig{})
	got := []string{out[0].Title, out[1].Title, out[2].Title}
	want := []string{"alpha paper", "beta paper", "zebra paper"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v (date desc, then title asc)", got, want)
	}
}

func TestRankEmptyCorpusDegradesToRecency(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	records := []types.NormalizedRecord{
		rec("older", now.Add(-2*day)),
		rec("newest", now),
		rec("middle", now.Add(-day)),
	}

	out := Rank(&embed.Index{}, records, make([][]float32, 3), types.RankConfig{})
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	got := []string{out[0].Title, out[1].Title, out[2].Title}
	want := []string{"newest", "middle", "older"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	for _, sr := range out {
		if sr.Scored {
			t.Errorf("%q marked scored in empty-corpus mode", sr.Title)
		}
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	out := Rank(&embed.Index{Vectors: [][]float32{{1}}}, nil, nil, types.RankConfig{MaxResults: 10})
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
}

func TestRankEmbeddingFailureHandling(t *testing.T) {
	now := time.Now()
	ix := &embed.Index{Vectors: [][]float32{{1, 0}}}
	records := []types.NormalizedRecord{
		rec("embedded fine", now),
		rec("embedding failed", now),
	}
	vectors := [][]float32{{1, 0}, nil}

	// Excluded by default.
	out := Rank(ix, records, vectors, types.RankConfig{})
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}

	// Kept at the tail, unscored, when configured.
	out = Rank(ix, records, vectors, types.RankConfig{IncludeUnscored: true})
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if out[1].Title != "embedding failed" || out[1].Scored {
		t.Errorf("tail record = %q scored=%v, want unscored failure record", out[1].Title, out[1].Scored)
	}
}

func TestRankDeterministic(t *testing.T) {
	now := time.Now()
	ix := &embed.Index{Vectors: [][]float32{{1, 2}, {3, 1}}}
	var records []types.NormalizedRecord
	var vectors [][]float32
	for i := 0; i < 20; i++ {
		records = append(records, rec(string(rune('a'+i%7))+"-paper", now.Add(-time.Duration(i%5)*day)))
		vectors = append(vectors, []float32{float32(i % 4), float32(i % 3)})
	}

	first := Rank(ix, records, vectors, types.RankConfig{MaxResults: 10})
	second := Rank(ix, records, vectors, types.RankConfig{MaxResults: 10})
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated ranking of identical inputs differs")
	}
}
