package openai

import (
	"context"
	"strings"

	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// Transcription defaults.
const (
	DefaultTranscribePrompt = "Transcribe all text visible in this image exactly as written, " +
		"one line per line of text. Reply with the text only. " +
		"If there is no text, reply with " + noText + "."
	DefaultTranscribeMaxTokens = 1024

	noText = "NO_TEXT"
)

// Transcriber reads the visible text of an image with a vision chat model.
// It is the OCR backend behind the ocr worker.
type Transcriber struct {
	completer
}

// NewTranscriber creates a transcriber. Empty prompt and non-positive max
// tokens fall back to the defaults.
func NewTranscriber(cfg *Config) *Transcriber {
	c := *cfg
	if c.Prompt == "" {
		c.Prompt = DefaultTranscribePrompt
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultTranscribeMaxTokens
	}
	return &Transcriber{completer: newCompleter(&c, "transcribe")}
}

// Transcribe returns the visible text of img with the token usage of the
// call. An image without text yields an empty Text.
func (t *Transcriber) Transcribe(ctx context.Context, img domain.Image) (domain.DescriptionResult, error) {
	text, usage, err := t.complete(ctx, img)
	if err != nil {
		return domain.DescriptionResult{}, err
	}
	if strings.EqualFold(text, noText) {
		text = ""
	}
	return domain.DescriptionResult{
		Text:             text,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// Recognize implements domain.Recognizer. Token usage is dropped; wrap the
// transcriber in vision.InstrumentedRecognizer to account for it.
func (t *Transcriber) Recognize(ctx context.Context, img domain.Image) (string, error) {
	res, err := t.Transcribe(ctx, img)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
