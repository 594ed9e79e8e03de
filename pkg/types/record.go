// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litdigest pipeline:
// candidate and normalized paper records, corpus items, scored output, and
// per-stage configuration.
package types

import "time"

// SourceKind identifies one of the literature sources the engine can poll.
// The set is closed: adapters dispatch on it, the rate limiter partitions
// budgets by it, and the deduplicator uses its order for tie-breaking.
type SourceKind string

const (
	SourceArxiv   SourceKind = "arxiv"
	SourcePubMed  SourceKind = "pubmed"
	SourceBioRxiv SourceKind = "biorxiv"
	SourceMedRxiv SourceKind = "medrxiv"
)

// SourceOrder lists all source kinds in configuration order. The deduplicator
// prefers the earlier source when merged records tie on abstract length.
var SourceOrder = []SourceKind{SourceArxiv, SourcePubMed, SourceBioRxiv, SourceMedRxiv}

// sourceRank maps a kind to its position in SourceOrder.
var sourceRank = func() map[SourceKind]int {
	m := make(map[SourceKind]int, len(SourceOrder))
	for i, k := range SourceOrder {
		m[k] = i
	}
	return m
}()

// Rank returns the position of k in SourceOrder, or len(SourceOrder) for an
// unknown kind.
func (k SourceKind) Rank() int {
	if r, ok := sourceRank[k]; ok {
		return r
	}
	return len(SourceOrder)
}

// Label returns the human-readable name for the source.
func (k SourceKind) Label() string {
	switch k {
	case SourceArxiv:
		return "arXiv"
	case SourcePubMed:
		return "PubMed"
	case SourceBioRxiv:
		return "bioRxiv"
	case SourceMedRxiv:
		return "medRxiv"
	}
	return string(k)
}

// IdentifierKind names one identifier scheme carried in RawIdentifiers.
type IdentifierKind string

const (
	IDKindDOI   IdentifierKind = "doi"
	IDKindPMID  IdentifierKind = "pmid"
	IDKindPMCID IdentifierKind = "pmcid"
	IDKindArxiv IdentifierKind = "arxiv"
)

// CandidateRecord is a raw literature entry as parsed from one source's
// native payload, before normalization. SourceID is unique within a
// SourceKind but not globally; reconciling the same work reported by two
// sources is the deduplicator's job, never the adapter's.
type CandidateRecord struct {
	// SourceID is the source-native accession string (arXiv ID, PMID, DOI).
	SourceID string `json:"source_id" yaml:"source_id"`

	// SourceKind identifies the adapter that produced this record.
	SourceKind SourceKind `json:"source_kind" yaml:"source_kind"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Abstract is the paper abstract; may be empty.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists author display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublishedAt is the publication or preprint date.
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`

	// ExternalURL is the canonical landing page for the record.
	ExternalURL string `json:"external_url" yaml:"external_url"`

	// RawIdentifiers maps identifier kind to value (DOI, PMID, ...).
	RawIdentifiers map[IdentifierKind]string `json:"raw_identifiers,omitempty" yaml:"raw_identifiers,omitempty"`
}

// DOI returns the record's DOI, or "" when none was reported.
func (r CandidateRecord) DOI() string {
	return r.RawIdentifiers[IDKindDOI]
}

// NormalizedRecord is a CandidateRecord reconciled into the canonical shape,
// carrying the synthetic dedup key and the set of sources that reported the
// work (populated during dedup).
type NormalizedRecord struct {
	CandidateRecord `yaml:",inline"`

	// Key is the synthetic dedup key: normalized DOI when present, else
	// normalized title + publication year.
	Key string `json:"key" yaml:"key"`

	// Sources records every source kind that reported this work.
	Sources map[SourceKind]bool `json:"sources" yaml:"sources"`
}

// SourceLabels returns the labels of all reporting sources in SourceOrder.
func (r NormalizedRecord) SourceLabels() []string {
	var labels []string
	for _, k := range SourceOrder {
		if r.Sources[k] {
			labels = append(labels, k.Label())
		}
	}
	return labels
}

// CorpusItem is one entry of the user's reading-interest library. The corpus
// is immutable for a run and embedded once.
type CorpusItem struct {
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`
}

// Text returns the embedding input for the item: title plus abstract, or
// title alone when the abstract is empty.
func (c CorpusItem) Text() string {
	if c.Abstract == "" {
		return c.Title
	}
	return c.Title + "\n\n" + c.Abstract
}

// ScoredRecord is the terminal record form handed to the delivery
// collaborator: a normalized record with its relevance score, rank, and an
// optional digest text.
type ScoredRecord struct {
	NormalizedRecord `yaml:",inline"`

	// Score is the maximum cosine similarity against any corpus item.
	// Meaningful only when Scored is true.
	Score float64 `json:"score" yaml:"score"`

	// Scored reports whether the record was embedded and scored. A record
	// whose embedding failed, or every record in an empty-corpus run, is
	// unscored and ordered by recency instead.
	Scored bool `json:"scored" yaml:"scored"`

	// Rank is the 1-based position in the final ordering.
	Rank int `json:"rank" yaml:"rank"`

	// Digest is a short natural-language summary; empty when the summarizer
	// was disabled or failed for this record.
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
}
