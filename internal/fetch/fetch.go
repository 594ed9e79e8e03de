// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves candidate records from the literature sources.
// Each source has one adapter that pages through its API via the shared
// rate-limited client and emits source-native records; adapters for
// different sources run concurrently, one worker per source, while paging
// within an adapter stays strictly sequential.
package fetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/litdigest/pkg/types"
)

// Adapter fetches candidate records from one source. FetchSince produces
// the source's records newer than the cutoff by re-paging from the start;
// a returned stream is not resumable mid-way. Parse failures are dropped
// and counted, never fatal.
type Adapter interface {
	Kind() types.SourceKind

	// Enabled reports whether the adapter has a query to run. A disabled
	// adapter contributes zero records and is skipped entirely.
	Enabled() bool

	FetchSince(ctx context.Context, cutoff time.Time) (records []types.CandidateRecord, dropped int, err error)
}

// SourceResult is one adapter's contribution to a run.
type SourceResult struct {
	Kind    types.SourceKind
	Records []types.CandidateRecord

	// Dropped counts records that failed to parse.
	Dropped int

	// Err is the adapter's terminal failure, if any. A failed source
	// contributes whatever records it gathered before failing.
	Err error
}

// All runs every enabled adapter concurrently and waits for each stream to
// drain or fail. A single source outage is never fatal: the failed source's
// result carries the error and the run proceeds with the rest. Results are
// returned in types.SourceOrder.
func All(ctx context.Context, adapters []Adapter, cutoff time.Time, log *zap.Logger) []SourceResult {
	if log == nil {
		log = zap.NewNop()
	}

	ch := make(chan SourceResult, len(adapters))
	var wg sync.WaitGroup

	for _, a := range adapters {
		if !a.Enabled() {
			log.Debug("source disabled, skipping", zap.String("source", string(a.Kind())))
			continue
		}
		wg.Add(1)
		go func(a Adapter) {
			defer wg.Done()
			records, dropped, err := a.FetchSince(ctx, cutoff)
			ch <- SourceResult{Kind: a.Kind(), Records: records, Dropped: dropped, Err: err}
		}(a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	byKind := make(map[types.SourceKind]SourceResult)
	for sr := range ch {
		switch {
		case sr.Err != nil && types.FailureIs(sr.Err, types.FailBadRequest):
			log.Error("source rejected query, check its configuration",
				zap.String("source", string(sr.Kind)), zap.Error(sr.Err))
		case sr.Err != nil:
			log.Warn("source unavailable, continuing without it",
				zap.String("source", string(sr.Kind)), zap.Error(sr.Err))
		default:
			log.Info("source fetched",
				zap.String("source", string(sr.Kind)),
				zap.Int("records", len(sr.Records)),
				zap.Int("dropped", sr.Dropped))
		}
		byKind[sr.Kind] = sr
	}

	var results []SourceResult
	for _, kind := range types.SourceOrder {
		if sr, ok := byKind[kind]; ok {
			results = append(results, sr)
		}
	}
	return results
}
