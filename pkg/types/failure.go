// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// FailureKind classifies a pipeline failure.
type FailureKind string

const (
	// FailUnavailable means a remote source exhausted its retries. The
	// source contributes nothing; the run proceeds.
	FailUnavailable FailureKind = "unavailable"

	// FailBadRequest means a source rejected the query outright (HTTP 4xx
	// other than 429). Usually a misconfiguration; surfaced loudly, never
	// retried.
	FailBadRequest FailureKind = "bad_request"

	// FailParse means one record could not be normalized. The record is
	// dropped and counted.
	FailParse FailureKind = "parse_error"

	// FailEmbedding means one record or batch could not be embedded. The
	// affected records are excluded from scored ranking only.
	FailEmbedding FailureKind = "embedding_failure"

	// FailRunTimeout means the whole-run deadline expired. Results gathered
	// before the deadline are still returned.
	FailRunTimeout FailureKind = "run_timeout"
)

// Failure is the pipeline error type. Every non-fatal degradation in the run
// is recorded as a Failure in the run report; only FailRunTimeout can abort
// a run, and then only when configured as hard-fail.
type Failure struct {
	Kind FailureKind

	// SourceKind is set for source-scoped failures, empty otherwise.
	SourceKind SourceKind

	// Cause is the underlying error, if any.
	Cause error
}

func (f *Failure) Error() string {
	switch {
	case f.SourceKind != "" && f.Cause != nil:
		return fmt.Sprintf("%s (%s): %v", f.Kind, f.SourceKind, f.Cause)
	case f.SourceKind != "":
		return fmt.Sprintf("%s (%s)", f.Kind, f.SourceKind)
	case f.Cause != nil:
		return fmt.Sprintf("%s: %v", f.Kind, f.Cause)
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error { return f.Cause }

// NewFailure constructs a Failure for a source-scoped error.
func NewFailure(kind FailureKind, source SourceKind, cause error) *Failure {
	return &Failure{Kind: kind, SourceKind: source, Cause: cause}
}

// FailureIs reports whether err is, or wraps, a *Failure of the given kind.
func FailureIs(err error, kind FailureKind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}
