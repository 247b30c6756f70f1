package vision

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedDescriber wraps a Describer with budget enforcement, per-request
// token accounting and logging. Transport metrics live in transport/openai.
type InstrumentedDescriber struct {
	inner    domain.Describer
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedDescriber wraps inner. budget may be nil.
func NewInstrumentedDescriber(
	inner domain.Describer, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedDescriber {
	return &InstrumentedDescriber{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Describe checks the budget, delegates and records usage.
func (p *InstrumentedDescriber) Describe(ctx context.Context, img domain.Image) (domain.DescriptionResult, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Vision budget exceeded",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Error(err),
			)
			return domain.DescriptionResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := p.inner.Describe(ctx, img)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Vision request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.DescriptionResult{}, fmt.Errorf("describe: %w", err)
	}

	domain.VisionUsageFromContext(ctx).AddTokens(result.TotalTokens)

	recordSpend(p.budget, p.provider, result.TotalTokens)

	p.logger.Debug("Vision request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("image_bytes", len(img.Data)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// recordSpend bills tokens to budget and refreshes the remaining gauges.
func recordSpend(budget BudgetChecker, provider string, tokens int) {
	if budget == nil || tokens <= 0 {
		return
	}
	budget.Record(int64(tokens))
	remaining := metrics.VisionBudgetTokensRemaining
	remaining.WithLabelValues(provider, "daily").Set(float64(budget.RemainingDaily()))
	remaining.WithLabelValues(provider, "monthly").Set(float64(budget.RemainingMonthly()))
}
