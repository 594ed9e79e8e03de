// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/litdigest/internal/cache"
	"github.com/pdiddy/litdigest/internal/corpus"
	"github.com/pdiddy/litdigest/internal/digest"
	"github.com/pdiddy/litdigest/internal/embed"
	"github.com/pdiddy/litdigest/internal/fetch"
	"github.com/pdiddy/litdigest/internal/httputil"
	"github.com/pdiddy/litdigest/internal/secrets"
	"github.com/pdiddy/litdigest/internal/summary"
	"github.com/pdiddy/litdigest/pkg/types"
)

// pipelineConfig assembles the run configuration from the config file,
// environment, and secrets.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("http.timeout"),
			UserAgent: viper.GetString("http.user_agent"),
		},
		Sources: types.SourcesConfig{
			Arxiv: types.ArxivConfig{
				Categories: viper.GetStringSlice("sources.arxiv.categories"),
				PageSize:   viper.GetInt("sources.arxiv.page_size"),
			},
			PubMed: types.PubMedConfig{
				Query:  viper.GetString("sources.pubmed.query"),
				APIKey: secretDefault(secrets.KeyNCBI, viper.GetString("sources.pubmed.api_key")),
				MaxIDs: viper.GetInt("sources.pubmed.max_ids"),
			},
			BioRxiv: types.RxivConfig{
				Categories: viper.GetStringSlice("sources.biorxiv.categories"),
				Keywords:   viper.GetStringSlice("sources.biorxiv.keywords"),
			},
			MedRxiv: types.RxivConfig{
				Categories: viper.GetStringSlice("sources.medrxiv.categories"),
				Keywords:   viper.GetStringSlice("sources.medrxiv.keywords"),
			},
			Lookback: viper.GetDuration("sources.lookback"),
		},
		Retry: types.RetryConfig{
			MaxAttempts: viper.GetInt("retry.max_attempts"),
			BaseDelay:   viper.GetDuration("retry.base_delay"),
		},
		Embed: types.EmbedConfig{
			Model:       viper.GetString("embed.model"),
			APIKey:      secretDefault(secrets.KeyGemini, viper.GetString("embed.api_key")),
			BatchSize:   viper.GetInt("embed.batch_size"),
			Concurrency: viper.GetInt("embed.concurrency"),
		},
		Rank: types.RankConfig{
			MaxResults:      viper.GetInt("rank.max_results"),
			MinScore:        viper.GetFloat64("rank.min_score"),
			IncludeUnscored: viper.GetBool("rank.include_unscored"),
		},
		Summary: types.SummaryConfig{
			Model:    viper.GetString("summary.model"),
			APIKey:   secretDefault(secrets.KeyAnthropic, viper.GetString("summary.api_key")),
			Language: viper.GetString("summary.language"),
		},
		Cache: types.CacheConfig{
			Path:     viper.GetString("cache.path"),
			SkipSeen: viper.GetBool("cache.skip_seen"),
		},
		RunTimeout:    viper.GetDuration("run_timeout"),
		FailOnTimeout: viper.GetBool("fail_on_timeout"),
	}

	if cfg.Rank.MaxResults == 0 {
		cfg.Rank.MaxResults = 50
	}

	// NCBI grants a higher request budget with an API key.
	if cfg.Sources.PubMed.APIKey != "" {
		cfg.Sources.RateOverrides = map[types.SourceKind]types.RateConfig{
			types.SourcePubMed: {RequestsPerSecond: 10, Burst: 10},
		}
	}

	return cfg
}

func newLogger() (*zap.Logger, error) {
	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildAdapters wires one source adapter per configured source.
func buildAdapters(cfg types.PipelineConfig, log *zap.Logger) []fetch.Adapter {
	client := httputil.NewClient(cfg.HTTPConfig, cfg.Retry, cfg.Sources.RateOverrides, log)
	return []fetch.Adapter{
		fetch.NewArxiv(client, cfg.Sources.Arxiv),
		fetch.NewPubMed(client, cfg.Sources.PubMed),
		fetch.NewBioRxiv(client, cfg.Sources.BioRxiv),
		fetch.NewMedRxiv(client, cfg.Sources.MedRxiv),
	}
}

// buildCorpusProvider picks Zotero when credentials are present, otherwise a
// local YAML corpus file if configured.
func buildCorpusProvider() corpus.Provider {
	userID := secretDefault(secrets.KeyZoteroUser, viper.GetString("corpus.zotero.user_id"))
	apiKey := secretDefault(secrets.KeyZoteroAPI, viper.GetString("corpus.zotero.api_key"))
	if userID != "" && apiKey != "" {
		return &corpus.ZoteroProvider{UserID: userID, APIKey: apiKey}
	}
	if path := viper.GetString("corpus.file"); path != "" {
		return &corpus.FileProvider{Path: path}
	}
	return nil
}

// buildDeps assembles the pipeline collaborators. The returned cleanup
// function closes whatever was opened and must be called after the run.
func buildDeps(ctx context.Context, cfg types.PipelineConfig, log *zap.Logger) (digest.Deps, func(), error) {
	deps := digest.Deps{
		Adapters: buildAdapters(cfg, log),
		Corpus:   buildCorpusProvider(),
		Log:      log,
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Embed.APIKey != "" {
		emb, err := embed.NewGemini(ctx, cfg.Embed)
		if err != nil {
			cleanup()
			return digest.Deps{}, nil, fmt.Errorf("creating embedder: %w", err)
		}
		closers = append(closers, func() { emb.Close() })
		deps.Embedder = emb
	} else {
		fmt.Fprintln(os.Stderr, "no gemini-api-key configured; ranking by recency only")
	}

	if cfg.Summary.APIKey != "" && cfg.Summary.Model != "" {
		sum, err := summary.NewAnthropic(cfg.Summary)
		if err != nil {
			cleanup()
			return digest.Deps{}, nil, fmt.Errorf("creating summarizer: %w", err)
		}
		deps.Summarizer = sum
	}

	if cfg.Cache.Path != "" {
		store, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			cleanup()
			return digest.Deps{}, nil, fmt.Errorf("opening cache: %w", err)
		}
		closers = append(closers, func() { store.Close() })
		deps.Cache = store
	}

	return deps, cleanup, nil
}
