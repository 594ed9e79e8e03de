// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the interest corpus",
	Long: `Corpus lists the items the ranker embeds as the interest profile, pulled
from Zotero when credentials are configured or from the local corpus file
otherwise. Useful for verifying what the digest will be ranked against.`,
	RunE: runCorpus,
}

func runCorpus(cmd *cobra.Command, args []string) error {
	provider := buildCorpusProvider()
	if provider == nil {
		return fmt.Errorf("no corpus configured: set corpus.file or Zotero credentials")
	}

	items, err := provider.ListItems(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	for i, item := range items {
		title := item.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%-4d  %s\n", i+1, title)
	}
	fmt.Printf("\n%d corpus items\n", len(items))
	return nil
}

func init() {
	corpusCmd.Flags().Bool("json", false, "output corpus items as JSON")

	rootCmd.AddCommand(corpusCmd)
}
