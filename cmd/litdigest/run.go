// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litdigest/internal/digest"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the full digest pipeline",
	Long: `Run fetches recent records from every configured source, merges
duplicates, ranks the merged set against the interest corpus, annotates the
shortlist with TLDR digests, and prints the ranked result.

Sources that fail stay out of the digest without aborting the run; use the
JSON output to inspect per-source failures.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	if v, _ := cmd.Flags().GetInt("max-results"); v > 0 {
		cfg.Rank.MaxResults = v
	}
	if cmd.Flags().Changed("min-score") {
		cfg.Rank.MinScore, _ = cmd.Flags().GetFloat64("min-score")
	}
	if v, _ := cmd.Flags().GetDuration("lookback"); v > 0 {
		cfg.Sources.Lookback = v
	}
	if v, _ := cmd.Flags().GetBool("include-unscored"); v {
		cfg.Rank.IncludeUnscored = true
	}
	if v, _ := cmd.Flags().GetBool("no-summaries"); v {
		cfg.Summary.APIKey = ""
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	deps, cleanup, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	records, report, err := digest.Run(ctx, deps, cfg)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return digest.FormatJSON(records, report, os.Stdout)
	}
	digest.FormatTable(records, report, os.Stdout)
	return nil
}

func init() {
	runCmd.Flags().Int("max-results", 0, "maximum records in the digest (0 = config default)")
	runCmd.Flags().Float64("min-score", 0, "minimum relevance score to include a record")
	runCmd.Flags().Duration("lookback", 0, "how far back to fetch, e.g. 24h or 72h")
	runCmd.Flags().Bool("include-unscored", false, "append records whose embedding failed after the scored ones")
	runCmd.Flags().Bool("no-summaries", false, "skip TLDR digest generation")
	runCmd.Flags().Bool("json", false, "output the digest as JSON")

	rootCmd.AddCommand(runCmd)
}
