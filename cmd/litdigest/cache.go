// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litdigest/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the seen-record cache",
	Long: `Cache manages the SQLite store of records seen by prior runs. With
cache.skip_seen enabled, records in the store are excluded from later
digests.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many records the cache holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("%d records cached\n", n)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cache entries older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetDuration("older-than")
		store, err := openCache(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Prune(context.Background(), age)
		if err != nil {
			return err
		}
		fmt.Printf("%d records pruned\n", removed)
		return nil
	},
}

func openCache(cmd *cobra.Command) (*cache.Store, error) {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = viper.GetString("cache.path")
	}
	if path == "" {
		return nil, fmt.Errorf("no cache configured: set cache.path or --path")
	}
	return cache.Open(path)
}

func init() {
	cacheCmd.PersistentFlags().String("path", "", "cache database path (default: cache.path from config)")
	cachePruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "remove entries first seen longer ago than this")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	rootCmd.AddCommand(cacheCmd)
}
