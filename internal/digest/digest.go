// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest orchestrates one aggregation-and-ranking run: concurrent
// source fetch, normalization, cross-source dedup, embedding, ranking, and
// digest annotation. The run degrades gracefully — an unavailable source,
// a failed embedding batch, or a failed summary each shrink the output
// rather than abort it.
package digest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/litdigest/internal/cache"
	"github.com/pdiddy/litdigest/internal/corpus"
	"github.com/pdiddy/litdigest/internal/dedupe"
	"github.com/pdiddy/litdigest/internal/embed"
	"github.com/pdiddy/litdigest/internal/fetch"
	"github.com/pdiddy/litdigest/internal/normalize"
	"github.com/pdiddy/litdigest/internal/rank"
	"github.com/pdiddy/litdigest/internal/summary"
	"github.com/pdiddy/litdigest/pkg/types"
)

// Deps bundles the run's collaborators. Everything except Adapters is
// optional: a nil Corpus or Embedder degrades ranking to recency order, a
// nil Summarizer skips digests, a nil Cache disables seen-record skipping.
type Deps struct {
	Adapters   []fetch.Adapter
	Corpus     corpus.Provider
	Embedder   embed.Embedder
	Summarizer summary.Summarizer
	Cache      *cache.Store
	Log        *zap.Logger
}

// SourceStats summarizes one source's contribution to the run report.
type SourceStats struct {
	Kind    types.SourceKind `json:"kind" yaml:"kind"`
	Fetched int              `json:"fetched" yaml:"fetched"`
	Dropped int              `json:"dropped" yaml:"dropped"`
	Failure string           `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Report describes what one run did.
type Report struct {
	RunID         string        `json:"run_id" yaml:"run_id"`
	StartedAt     time.Time     `json:"started_at" yaml:"started_at"`
	Elapsed       time.Duration `json:"elapsed" yaml:"elapsed"`
	Sources       []SourceStats `json:"sources" yaml:"sources"`
	CorpusSize    int           `json:"corpus_size" yaml:"corpus_size"`
	Candidates    int           `json:"candidates" yaml:"candidates"`
	DupsRemoved   int           `json:"dups_removed" yaml:"dups_removed"`
	CacheSkipped  int           `json:"cache_skipped" yaml:"cache_skipped"`
	EmbedFailures int           `json:"embed_failures" yaml:"embed_failures"`
	TimedOut      bool          `json:"timed_out" yaml:"timed_out"`
}

// Run executes one digest run and returns the ranked, annotated shortlist.
// When the run deadline expires mid-flight the results gathered so far are
// still ranked and returned, unless cfg.FailOnTimeout is set.
func Run(ctx context.Context, deps Deps, cfg types.PipelineConfig) ([]types.ScoredRecord, Report, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	report := Report{RunID: uuid.NewString(), StartedAt: time.Now()}
	log.Info("starting digest run", zap.String("run_id", report.RunID))

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	// Corpus and sources are independent; the corpus is small, fetch it
	// first so a misconfigured provider surfaces before the slow part.
	items := loadCorpus(ctx, deps.Corpus, log)
	report.CorpusSize = len(items)

	lookback := cfg.Sources.Lookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	cutoff := time.Now().Add(-lookback)

	results := fetch.All(ctx, deps.Adapters, cutoff, log)

	var normalized []types.NormalizedRecord
	for _, sr := range results {
		stats := SourceStats{Kind: sr.Kind, Fetched: len(sr.Records), Dropped: sr.Dropped}
		if sr.Err != nil {
			stats.Failure = sr.Err.Error()
		}
		report.Sources = append(report.Sources, stats)

		for _, c := range sr.Records {
			normalized = append(normalized, normalize.Record(c))
		}
	}

	merged, removed := dedupe.Merge(normalized)
	report.DupsRemoved = removed

	merged, report.CacheSkipped = skipSeen(ctx, deps.Cache, cfg.Cache, merged, log)
	report.Candidates = len(merged)

	ix, vectors := embedAll(ctx, deps.Embedder, items, merged, cfg.Embed, &report, log)

	ranked := rank.Rank(ix, merged, vectors, cfg.Rank)
	summary.Annotate(ctx, deps.Summarizer, ranked, log)

	storeSeen(ctx, deps.Cache, report.RunID, merged, log)

	if ctx.Err() != nil {
		report.TimedOut = true
		if cfg.FailOnTimeout {
			return nil, report, types.NewFailure(types.FailRunTimeout, "", ctx.Err())
		}
		log.Warn("run deadline expired, returning partial results",
			zap.Int("ranked", len(ranked)))
	}

	report.Elapsed = time.Since(report.StartedAt)
	log.Info("digest run complete",
		zap.String("run_id", report.RunID),
		zap.Int("candidates", report.Candidates),
		zap.Int("ranked", len(ranked)),
		zap.Duration("elapsed", report.Elapsed))
	return ranked, report, nil
}

// loadCorpus fetches the interest corpus. A provider failure degrades to an
// empty corpus (recency-ordered output) with a loud warning.
func loadCorpus(ctx context.Context, p corpus.Provider, log *zap.Logger) []types.CorpusItem {
	if p == nil {
		return nil
	}
	items, err := p.ListItems(ctx)
	if err != nil {
		log.Warn("corpus provider failed, ranking by recency only", zap.Error(err))
		return nil
	}
	return items
}

// skipSeen filters out records already stored by prior runs.
func skipSeen(ctx context.Context, store *cache.Store, cfg types.CacheConfig, records []types.NormalizedRecord, log *zap.Logger) ([]types.NormalizedRecord, int) {
	if store == nil || !cfg.SkipSeen || len(records) == 0 {
		return records, 0
	}

	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	seen, err := store.Seen(ctx, keys)
	if err != nil {
		log.Warn("cache lookup failed, keeping all records", zap.Error(err))
		return records, 0
	}

	var fresh []types.NormalizedRecord
	for _, r := range records {
		if !seen[r.Key] {
			fresh = append(fresh, r)
		}
	}
	return fresh, len(records) - len(fresh)
}

// embedAll builds the corpus index and embeds the candidates. With no
// embedder or an empty corpus both come back empty and ranking degrades to
// recency order.
func embedAll(ctx context.Context, e embed.Embedder, items []types.CorpusItem, records []types.NormalizedRecord, cfg types.EmbedConfig, report *Report, log *zap.Logger) (*embed.Index, [][]float32) {
	if e == nil || len(items) == 0 || len(records) == 0 {
		return &embed.Index{}, nil
	}

	ix := embed.BuildIndex(ctx, e, items, cfg, log)
	if ix.Empty() {
		log.Warn("corpus embedding produced no vectors, ranking by recency only")
		return ix, nil
	}

	vectors, failures := embed.Candidates(ctx, e, records, cfg, log)
	report.EmbedFailures = failures
	return ix, vectors
}

// storeSeen snapshots the merged records for the next run's skip-seen pass.
func storeSeen(ctx context.Context, store *cache.Store, runID string, records []types.NormalizedRecord, log *zap.Logger) {
	if store == nil || len(records) == 0 {
		return
	}
	if err := store.Put(ctx, runID, records); err != nil {
		log.Warn("cache store failed", zap.Error(err))
	}
}
