package vision

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// InstrumentedRecognizer adapts a Transcriber to domain.Recognizer. OCR calls
// draw on the same token budget and per-request usage as descriptions.
type InstrumentedRecognizer struct {
	inner    domain.Transcriber
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedRecognizer wraps inner. budget may be nil.
func NewInstrumentedRecognizer(
	inner domain.Transcriber, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedRecognizer {
	return &InstrumentedRecognizer{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Recognize checks the budget, transcribes and records usage.
func (r *InstrumentedRecognizer) Recognize(ctx context.Context, img domain.Image) (string, error) {
	if r.budget != nil {
		if err := r.budget.Check(ctx); err != nil {
			r.logger.Warn("Vision budget exceeded, skipping OCR",
				zap.String("provider", r.provider),
				zap.String("model", r.model),
				zap.Error(err),
			)
			return "", fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := r.inner.Transcribe(ctx, img)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}

	domain.VisionUsageFromContext(ctx).AddTokens(result.TotalTokens)
	recordSpend(r.budget, r.provider, result.TotalTokens)

	r.logger.Debug("OCR request completed",
		zap.String("provider", r.provider),
		zap.String("model", r.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result.Text, nil
}
