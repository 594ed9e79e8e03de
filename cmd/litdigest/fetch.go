// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litdigest/internal/fetch"
	"github.com/pdiddy/litdigest/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch raw records from the configured sources",
	Long: `Fetch pulls recent records from every configured source and prints them
without deduplication or ranking. Useful for checking source configuration
and API connectivity before a full run.`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if v, _ := cmd.Flags().GetDuration("lookback"); v > 0 {
		cfg.Sources.Lookback = v
	}
	lookback := cfg.Sources.Lookback
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}

	if only, _ := cmd.Flags().GetString("source"); only != "" {
		if err := restrictSources(&cfg, only); err != nil {
			return err
		}
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	adapters := buildAdapters(cfg, log)
	results := fetch.All(context.Background(), adapters, time.Now().Add(-lookback), log)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		type sourceView struct {
			Kind    types.SourceKind        `json:"kind"`
			Records []types.CandidateRecord `json:"records"`
			Dropped int                     `json:"dropped"`
			Failure string                  `json:"failure,omitempty"`
		}
		views := make([]sourceView, 0, len(results))
		for _, sr := range results {
			v := sourceView{Kind: sr.Kind, Records: sr.Records, Dropped: sr.Dropped}
			if sr.Err != nil {
				v.Failure = sr.Err.Error()
			}
			views = append(views, v)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	for _, sr := range results {
		fmt.Printf("%s: %d records, %d dropped", sr.Kind.Label(), len(sr.Records), sr.Dropped)
		if sr.Err != nil {
			fmt.Printf(" (failed: %v)", sr.Err)
		}
		fmt.Println()
		for _, r := range sr.Records {
			fmt.Printf("  %-14s  %s\n", r.SourceID, r.Title)
		}
	}
	return nil
}

// restrictSources disables every source except the named one.
func restrictSources(cfg *types.PipelineConfig, only string) error {
	switch types.SourceKind(strings.ToLower(only)) {
	case types.SourceArxiv:
		cfg.Sources.PubMed.Query = ""
		cfg.Sources.BioRxiv = types.RxivConfig{}
		cfg.Sources.MedRxiv = types.RxivConfig{}
	case types.SourcePubMed:
		cfg.Sources.Arxiv.Categories = nil
		cfg.Sources.BioRxiv = types.RxivConfig{}
		cfg.Sources.MedRxiv = types.RxivConfig{}
	case types.SourceBioRxiv:
		cfg.Sources.Arxiv.Categories = nil
		cfg.Sources.PubMed.Query = ""
		cfg.Sources.MedRxiv = types.RxivConfig{}
	case types.SourceMedRxiv:
		cfg.Sources.Arxiv.Categories = nil
		cfg.Sources.PubMed.Query = ""
		cfg.Sources.BioRxiv = types.RxivConfig{}
	default:
		return fmt.Errorf("unknown source %q: use arxiv, pubmed, biorxiv, or medrxiv", only)
	}
	return nil
}

func init() {
	fetchCmd.Flags().Duration("lookback", 0, "how far back to fetch, e.g. 24h or 72h")
	fetchCmd.Flags().String("source", "", "fetch from a single source: arxiv, pubmed, biorxiv, medrxiv")
	fetchCmd.Flags().Bool("json", false, "output raw results as JSON")

	rootCmd.AddCommand(fetchCmd)
}
