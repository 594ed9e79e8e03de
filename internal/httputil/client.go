// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/litdigest/pkg/types"
)

// defaultBudgets holds the per-source request budgets matching each API's
// published limits: NCBI allows 3 req/s without a key, arXiv asks for one
// request every three seconds, bioRxiv and medRxiv share infrastructure and
// tolerate about one request per second.
var defaultBudgets = map[types.SourceKind]types.RateConfig{
	types.SourceArxiv:   {RequestsPerSecond: 1.0 / 3.0, Burst: 1},
	types.SourcePubMed:  {RequestsPerSecond: 3, Burst: 3},
	types.SourceBioRxiv: {RequestsPerSecond: 1, Burst: 1},
	types.SourceMedRxiv: {RequestsPerSecond: 1, Burst: 1},
}

// Client wraps an http.Client with per-source token budgets and bounded
// retries. Budgets are partitioned by source kind so a slow source never
// starves another; every attempt, retries included, consumes one token.
type Client struct {
	http      *http.Client
	userAgent string
	retry     types.RetryConfig
	limiters  map[types.SourceKind]*rate.Limiter
	log       *zap.Logger
}

// NewClient builds a Client scoped to one run. Rate overrides replace the
// default budget for the named sources only.
func NewClient(cfg types.HTTPConfig, retry types.RetryConfig, overrides map[types.SourceKind]types.RateConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiters := make(map[types.SourceKind]*rate.Limiter, len(defaultBudgets))
	for kind, budget := range defaultBudgets {
		if o, ok := overrides[kind]; ok && o.RequestsPerSecond > 0 {
			budget = o
		}
		burst := budget.Burst
		if burst <= 0 {
			burst = 1
		}
		limiters[kind] = rate.NewLimiter(rate.Limit(budget.RequestsPerSecond), burst)
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		retry:     retry,
		limiters:  limiters,
		log:       log,
	}
}

// Fetch issues a GET against url under the budget of the given source kind.
// Transient failures (network error, HTTP 5xx, HTTP 429) are retried with
// exponential backoff and jitter; on exhaustion an Unavailable failure is
// returned. Any other 4xx returns a BadRequest failure without retrying.
// The caller owns the response body on success.
func (c *Client) Fetch(ctx context.Context, url string, kind types.SourceKind) (*http.Response, error) {
	limiter := c.limiters[kind]
	backoff := NewBackoff(c.retry)

	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.do(ctx, url)
		switch {
		case err == nil && resp.StatusCode < 400:
			return resp, nil

		case err == nil && !transientStatus(resp.StatusCode):
			status := resp.StatusCode
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, types.NewFailure(types.FailBadRequest, kind,
				fmt.Errorf("GET %s: HTTP %d", url, status))

		case err == nil:
			status := resp.StatusCode
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			err = fmt.Errorf("GET %s: HTTP %d", url, status)
		}

		if !backoff.Record(err) {
			return nil, types.NewFailure(types.FailUnavailable, kind, backoff.LastErr())
		}

		c.log.Warn("transient fetch failure, backing off",
			zap.String("source", string(kind)),
			zap.Int("attempt", backoff.Attempt()-1),
			zap.Error(err))

		if werr := backoff.Wait(ctx); werr != nil {
			return nil, types.NewFailure(types.FailUnavailable, kind, werr)
		}
	}
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.http.Do(req)
}

// transientStatus reports whether an HTTP status is worth retrying: any 5xx,
// or 429 from a rate limiter we outran despite the local budget.
func transientStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}
