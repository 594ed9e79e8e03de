// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed computes vector representations for the interest corpus and
// for candidate records. Embedding is an external, potentially expensive
// capability; per-batch failures degrade the run (fewer scored records)
// instead of aborting it.
package embed

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litdigest/pkg/types"
)

const (
	defaultBatchSize   = 32
	defaultConcurrency = 4
)

// Embedder converts texts to fixed-length vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the model identifier for logging.
	ModelName() string
}

// Index holds the embedded interest corpus. It is built once per run.
type Index struct {
	// Vectors holds one vector per successfully embedded corpus item.
	Vectors [][]float32
}

// Empty reports whether no corpus vectors are available, in which case
// ranking degrades to recency ordering.
func (ix *Index) Empty() bool { return ix == nil || len(ix.Vectors) == 0 }

// RecordText returns the embedding input for a record: title plus abstract,
// or title alone when the abstract is empty. An empty-abstract record is
// still embedded; its score is just title-driven and noisier.
func RecordText(r types.NormalizedRecord) string {
	if r.Abstract == "" {
		return r.Title
	}
	return r.Title + "\n\n" + r.Abstract
}

// BuildIndex embeds the corpus. A failed batch drops its items from the
// index with a warning; an entirely failed corpus yields an empty index,
// not an error.
func BuildIndex(ctx context.Context, e Embedder, corpus []types.CorpusItem, cfg types.EmbedConfig, log *zap.Logger) *Index {
	texts := make([]string, len(corpus))
	for i, item := range corpus {
		texts[i] = item.Text()
	}

	vectors, failures := embedAll(ctx, e, texts, cfg, log)

	ix := &Index{}
	for i := range corpus {
		if v := vectors[i]; v != nil {
			ix.Vectors = append(ix.Vectors, v)
		}
	}
	if failures > 0 && log != nil {
		log.Warn("corpus partially embedded",
			zap.Int("items", len(corpus)),
			zap.Int("embedded", len(ix.Vectors)))
	}
	return ix
}

// Candidates embeds every record and returns a vector per input position;
// a nil entry marks a record whose batch failed. The failure count is
// returned for the run report.
func Candidates(ctx context.Context, e Embedder, records []types.NormalizedRecord, cfg types.EmbedConfig, log *zap.Logger) ([][]float32, int) {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = RecordText(r)
	}
	vectors, failures := embedAll(ctx, e, texts, cfg, log)
	return vectors, failures
}

// embedAll embeds texts in batches, up to cfg.Concurrency batches in
// flight. A failure in one batch never cancels its siblings; the failed
// batch's positions stay nil.
func embedAll(ctx context.Context, e Embedder, texts []string, cfg types.EmbedConfig, log *zap.Logger) ([][]float32, int) {
	if log == nil {
		log = zap.NewNop()
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	vectors := make([][]float32, len(texts))
	failed := make([]int, (len(texts)+batchSize-1)/batchSize)

	var g errgroup.Group
	g.SetLimit(concurrency)

	for start, batchIdx := 0, 0; start < len(texts); start, batchIdx = start+batchSize, batchIdx+1 {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end, batchIdx := start, end, batchIdx

		g.Go(func() error {
			got, err := e.Embed(ctx, texts[start:end])
			if err != nil || len(got) != end-start {
				if err == nil {
					err = types.NewFailure(types.FailEmbedding, "", nil)
				}
				log.Warn("embedding batch failed",
					zap.Int("from", start), zap.Int("to", end), zap.Error(err))
				failed[batchIdx] = end - start
				return nil
			}
			copy(vectors[start:end], got)
			return nil
		})
	}
	g.Wait()

	failures := 0
	for _, n := range failed {
		failures += n
	}
	return vectors, failures
}
