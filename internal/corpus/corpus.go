// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus supplies the user's reading-interest library. The engine
// only consumes the list; it never mutates the backing library.
package corpus

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litdigest/pkg/types"
)

// Provider lists the corpus items for one run.
type Provider interface {
	ListItems(ctx context.Context) ([]types.CorpusItem, error)
}

// FileProvider reads the corpus from a YAML file holding a list of
// {title, abstract} entries.
type FileProvider struct {
	Path string
}

// ListItems loads and parses the corpus file. Entries with neither title
// nor abstract are skipped.
func (p *FileProvider) ListItems(_ context.Context) ([]types.CorpusItem, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", p.Path, err)
	}

	var items []types.CorpusItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing corpus file %s: %w", p.Path, err)
	}

	var out []types.CorpusItem
	for _, item := range items {
		if item.Title == "" && item.Abstract == "" {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Static wraps a fixed item list as a Provider, mainly for tests and for
// callers that already hold the corpus in memory.
type Static []types.CorpusItem

// ListItems returns the wrapped items.
func (s Static) ListItems(_ context.Context) ([]types.CorpusItem, error) {
	return []types.CorpusItem(s), nil
}
