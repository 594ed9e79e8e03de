// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summary generates short natural-language digests for ranked
// records. The summarizer is a collaborator the engine merely calls: a
// failed summary omits the digest and keeps the record.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/pdiddy/litdigest/pkg/types"
)

// maxAbstractChars bounds the prompt size for very long abstracts.
const maxAbstractChars = 8000

// Summarizer produces a one-sentence digest from a record's title and
// abstract.
type Summarizer interface {
	Summarize(ctx context.Context, title, abstract string) (string, error)
}

// AnthropicSummarizer calls the Anthropic Messages API.
type AnthropicSummarizer struct {
	client   anthropic.Client
	model    string
	language string
}

// NewAnthropic builds a summarizer from the summary config.
func NewAnthropic(cfg types.SummaryConfig) (*AnthropicSummarizer, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("summary model is not set")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("summary API key is not set")
	}
	language := cfg.Language
	if language == "" {
		language = "English"
	}
	return &AnthropicSummarizer{
		client:   anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:    cfg.Model,
		language: language,
	}, nil
}

// Summarize asks the model for a one-sentence digest.
func (s *AnthropicSummarizer) Summarize(ctx context.Context, title, abstract string) (string, error) {
	if len(abstract) > maxAbstractChars {
		abstract = abstract[:maxAbstractChars]
	}

	prompt := fmt.Sprintf(
		"Given the title and abstract of a scholarly paper, write a one-sentence TLDR summary in %s.\n\nTitle: %s\n\nAbstract: %s\n",
		s.language, title, abstract)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 200,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize request: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("summarize request: empty response")
	}
	return text, nil
}

// Annotate fills the Digest field of each record in place. A per-record
// failure is logged and leaves that record without a digest; it never drops
// the record or stops the loop.
func Annotate(ctx context.Context, s Summarizer, records []types.ScoredRecord, log *zap.Logger) {
	if s == nil {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}
	for i := range records {
		digest, err := s.Summarize(ctx, records[i].Title, records[i].Abstract)
		if err != nil {
			log.Warn("digest generation failed, keeping record without one",
				zap.String("title", records[i].Title), zap.Error(err))
			continue
		}
		records[i].Digest = digest
	}
}
