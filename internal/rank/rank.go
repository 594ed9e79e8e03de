// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores candidate records against the embedded interest
// corpus and produces the final ordered shortlist. Ranking is a pure
// function of its inputs; repeated calls with the same inputs produce
// identical output.
package rank

import (
	"math"
	"sort"

	"github.com/pdiddy/litdigest/internal/embed"
	"github.com/pdiddy/litdigest/pkg/types"
)

// Rank scores each candidate as its maximum cosine similarity against any
// single corpus vector: "does this paper resemble at least one paper I
// already care about", which holds up better against a broad personal
// corpus than an average would.
//
// vectors[i] is the embedding of records[i]; a nil vector marks a record
// whose embedding failed, which is kept unscored at the tail when
// cfg.IncludeUnscored is set and excluded otherwise. With an empty corpus
// index all records are unscored and the output degrades to recency
// ordering.
func Rank(ix *embed.Index, records []types.NormalizedRecord, vectors [][]float32, cfg types.RankConfig) []types.ScoredRecord {
	var scored, unscored []types.ScoredRecord

	for i, r := range records {
		sr := types.ScoredRecord{NormalizedRecord: r}
		if !ix.Empty() && i < len(vectors) && vectors[i] != nil {
			sr.Score = maxSimilarity(vectors[i], ix.Vectors)
			sr.Scored = true
			if sr.Score < cfg.MinScore {
				continue
			}
			scored = append(scored, sr)
			continue
		}
		unscored = append(unscored, sr)
	}

	sort.SliceStable(scored, func(i, j int) bool { return less(scored[i], scored[j]) })
	sort.SliceStable(unscored, func(i, j int) bool { return recencyLess(unscored[i], unscored[j]) })

	var out []types.ScoredRecord
	out = append(out, scored...)
	if ix.Empty() || cfg.IncludeUnscored {
		out = append(out, unscored...)
	}

	if cfg.MaxResults > 0 && len(out) > cfg.MaxResults {
		out = out[:cfg.MaxResults]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// less orders scored records: score descending, then published date
// descending, then title ascending.
func less(a, b types.ScoredRecord) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return recencyLess(a, b)
}

// recencyLess orders by published date descending, then title ascending.
func recencyLess(a, b types.ScoredRecord) bool {
	if !a.PublishedAt.Equal(b.PublishedAt) {
		return a.PublishedAt.After(b.PublishedAt)
	}
	return a.Title < b.Title
}

// maxSimilarity returns the highest cosine similarity of v against any
// corpus vector.
func maxSimilarity(v []float32, corpus [][]float32) float64 {
	best := math.Inf(-1)
	for _, c := range corpus {
		if s := cosine(v, c); s > best {
			best = s
		}
	}
	if math.IsInf(best, -1) {
		return 0
	}
	return best
}

// cosine computes the cosine similarity of two vectors. Mismatched lengths
// or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
