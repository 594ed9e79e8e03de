// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litdigest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RateConfig holds the token budget for one source.
type RateConfig struct {
	// RequestsPerSecond is the sustained request rate allowed against the
	// source. Values below 1 express slower-than-1rps budgets (e.g. 0.33
	// for one request every three seconds).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// Burst is the token bucket depth (default 1).
	Burst int `json:"burst" yaml:"burst"`
}

// RetryConfig bounds the backoff state machine in the HTTP client.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per request, first try
	// included (default 4).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseDelay is the backoff delay before the first retry; it doubles
	// each attempt with jitter (default 2s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`
}

// ArxivConfig configures the arXiv adapter. An empty Categories list
// disables the source.
type ArxivConfig struct {
	// Categories lists arXiv category codes (e.g. "q-bio.TO", "cs.LG").
	Categories []string `json:"categories" yaml:"categories"`

	// PageSize is the number of entries requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// PubMedConfig configures the PubMed adapter. An empty Query disables the
// source.
type PubMedConfig struct {
	// Query is the E-utilities search term; MeSH expressions are supported.
	Query string `json:"query" yaml:"query"`

	// APIKey is an optional NCBI key for the higher rate tier.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxIDs caps the number of PMIDs requested from esearch (default 200).
	MaxIDs int `json:"max_ids" yaml:"max_ids"`
}

// RxivConfig configures a bioRxiv-style adapter (bioRxiv or medRxiv).
// With no categories and no keywords the source is disabled. Category and
// keyword filters are OR-combined and applied client-side after fetch.
type RxivConfig struct {
	// Categories lists subject categories (e.g. "cell_biology", "immunology").
	Categories []string `json:"categories" yaml:"categories"`

	// Keywords filters on title plus abstract, case-insensitive.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// SourcesConfig groups per-source settings. A source whose query parameters
// are absent contributes zero records and is skipped.
type SourcesConfig struct {
	Arxiv   ArxivConfig  `json:"arxiv" yaml:"arxiv"`
	PubMed  PubMedConfig `json:"pubmed" yaml:"pubmed"`
	BioRxiv RxivConfig   `json:"biorxiv" yaml:"biorxiv"`
	MedRxiv RxivConfig   `json:"medrxiv" yaml:"medrxiv"`

	// Lookback is how far back from now adapters fetch (default 24h).
	Lookback time.Duration `json:"lookback" yaml:"lookback"`

	// RateOverrides replaces the per-source default budgets.
	RateOverrides map[SourceKind]RateConfig `json:"rate_overrides,omitempty" yaml:"rate_overrides,omitempty"`
}

// EmbedConfig holds settings for the embedding stage.
type EmbedConfig struct {
	// Model is the embedding model identifier (default "text-embedding-004").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the embedding API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of texts embedded per request (default 32).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Concurrency bounds the number of in-flight embedding batches (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// RankConfig holds settings for the ranking stage.
type RankConfig struct {
	// MaxResults caps the final list (default 50; 0 means no cap).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MinScore excludes candidates scoring below the floor, applied before
	// the MaxResults cap.
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// IncludeUnscored appends records whose embedding failed after all
	// scored records instead of dropping them.
	IncludeUnscored bool `json:"include_unscored" yaml:"include_unscored"`
}

// SummaryConfig holds settings for the digest summarizer.
type SummaryConfig struct {
	// Model is the Anthropic model identifier; empty disables summaries.
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the Anthropic API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Language is the output language for digests (default "English").
	Language string `json:"language" yaml:"language"`
}

// CacheConfig holds settings for the optional seen-record cache.
type CacheConfig struct {
	// Path is the SQLite database file; empty disables the cache.
	Path string `json:"path" yaml:"path"`

	// SkipSeen drops records whose synthetic key was stored by a prior run.
	SkipSeen bool `json:"skip_seen" yaml:"skip_seen"`
}

// PipelineConfig groups all stage configurations for one digest run.
type PipelineConfig struct {
	HTTPConfig `yaml:",inline"`

	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Retry   RetryConfig   `json:"retry" yaml:"retry"`
	Embed   EmbedConfig   `json:"embed" yaml:"embed"`
	Rank    RankConfig    `json:"rank" yaml:"rank"`
	Summary SummaryConfig `json:"summary" yaml:"summary"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`

	// RunTimeout bounds the whole run. Zero means no deadline.
	RunTimeout time.Duration `json:"run_timeout" yaml:"run_timeout"`

	// FailOnTimeout makes an expired RunTimeout fail the run instead of
	// returning the partial results gathered before the deadline.
	FailOnTimeout bool `json:"fail_on_timeout" yaml:"fail_on_timeout"`
}
