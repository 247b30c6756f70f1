package openai

import (
	"context"

	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// Description defaults.
const (
	DefaultDescribePrompt = "Describe this screenshot in 2-3 sentences focusing on UI elements, " +
		"colors, buttons, text, and key visual features that someone might search for."
	DefaultMaxTokens = 150

	// blankDescription replaces a completion that came back without text.
	blankDescription = "A screenshot or image with visual content."
)

// Describer generates visual descriptions with an OpenAI-compatible chat model.
type Describer struct {
	completer
}

// NewDescriber creates a vision describer. Empty prompt and non-positive
// max tokens fall back to the defaults.
func NewDescriber(cfg *Config) *Describer {
	c := *cfg
	if c.Prompt == "" {
		c.Prompt = DefaultDescribePrompt
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	return &Describer{completer: newCompleter(&c, "describe")}
}

// Describe implements domain.Describer.
func (d *Describer) Describe(ctx context.Context, img domain.Image) (domain.DescriptionResult, error) {
	text, usage, err := d.complete(ctx, img)
	if err != nil {
		return domain.DescriptionResult{}, err
	}
	if text == "" {
		text = blankDescription
	}
	return domain.DescriptionResult{
		Text:             text,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}
