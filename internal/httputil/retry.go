// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-limited, retrying HTTP client shared by
// all source adapters.
package httputil

import (
	"context"
	"math/rand"
	"time"

	"github.com/pdiddy/litdigest/pkg/types"
)

const (
	defaultMaxAttempts = 4
	defaultBaseDelay   = 2 * time.Second
)

// Backoff is the bounded-attempt retry state machine. State is the attempt
// count and the last transient error; the delay doubles each retry with
// jitter in the upper half of the window.
type Backoff struct {
	attempt     int
	maxAttempts int
	baseDelay   time.Duration
	lastErr     error
}

// NewBackoff returns a Backoff bounded by cfg, with defaults applied for
// zero values.
func NewBackoff(cfg types.RetryConfig) *Backoff {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}
	return &Backoff{maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// Attempt returns the 1-based number of the attempt about to run.
func (b *Backoff) Attempt() int { return b.attempt + 1 }

// LastErr returns the transient error recorded by the most recent Record call.
func (b *Backoff) LastErr() error { return b.lastErr }

// Record notes a failed attempt and reports whether another attempt remains.
func (b *Backoff) Record(err error) bool {
	b.lastErr = err
	b.attempt++
	return b.attempt < b.maxAttempts
}

// Wait sleeps for the current attempt's backoff delay, or returns early with
// ctx.Err() when the context is cancelled. The delay before retry n is
// baseDelay * 2^(n-1), jittered to between half and the full value.
func (b *Backoff) Wait(ctx context.Context) error {
	delay := b.baseDelay << (b.attempt - 1)
	delay = delay/2 + time.Duration(rand.Int63n(int64(delay/2)+1))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
