// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe collapses normalized records that describe the same
// underlying work across sources. Merging is strictly key-based: two records
// with distinct synthetic keys are never merged, however similar their
// titles look. A missed duplicate is acceptable; two distinct works wrongly
// merged is not.
package dedupe

import (
	"github.com/pdiddy/litdigest/pkg/types"
)

// Merge groups records by synthetic key and collapses each group into one
// record. It returns the merged set (internally unordered; the final order
// is fixed by ranking) and the number of duplicates removed.
func Merge(records []types.NormalizedRecord) ([]types.NormalizedRecord, int) {
	seen := make(map[string]int) // key → index in merged
	var merged []types.NormalizedRecord
	removed := 0

	for _, r := range records {
		idx, ok := seen[r.Key]
		if !ok {
			seen[r.Key] = len(merged)
			merged = append(merged, r)
			continue
		}
		mergeInto(&merged[idx], r)
		removed++
	}
	return merged, removed
}

// mergeInto folds src into dst. The retained body is the one with the
// longest non-empty abstract; on equal length the source enumerated first
// in types.SourceOrder wins, which keeps the outcome independent of fetch
// completion timing. Sources and raw identifiers are unioned either way.
func mergeInto(dst *types.NormalizedRecord, src types.NormalizedRecord) {
	if preferBody(src, *dst) {
		sources := dst.Sources
		ids := dst.RawIdentifiers
		key := dst.Key
		*dst = src
		dst.Sources = sources
		dst.RawIdentifiers = ids
		dst.Key = key
	}

	if dst.Sources == nil {
		dst.Sources = make(map[types.SourceKind]bool)
	}
	for kind := range src.Sources {
		dst.Sources[kind] = true
	}
	dst.Sources[src.SourceKind] = true

	if len(src.RawIdentifiers) > 0 && dst.RawIdentifiers == nil {
		dst.RawIdentifiers = make(map[types.IdentifierKind]string)
	}
	for kind, value := range src.RawIdentifiers {
		if _, ok := dst.RawIdentifiers[kind]; !ok {
			dst.RawIdentifiers[kind] = value
		}
	}
}

// preferBody reports whether a's record body should replace b's.
func preferBody(a, b types.NormalizedRecord) bool {
	if len(a.Abstract) != len(b.Abstract) {
		return len(a.Abstract) > len(b.Abstract)
	}
	return a.SourceKind.Rank() < b.SourceKind.Rank()
}
