package vision

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
)

// GenericDescription stands in for a visual description whenever the
// provider is not configured or fails.
const GenericDescription = "A screenshot or image that can be searched for its visual content."

// FallbackDescriber never fails: provider errors, exhausted budgets and a
// missing provider all yield GenericDescription.
type FallbackDescriber struct {
	inner  domain.Describer
	logger *zap.Logger
}

// NewFallbackDescriber wraps inner. A nil inner means no provider is configured.
func NewFallbackDescriber(inner domain.Describer, logger *zap.Logger) *FallbackDescriber {
	if inner == nil {
		logger.Warn("Vision provider not configured, using generic descriptions")
	}
	return &FallbackDescriber{inner: inner, logger: logger}
}

// Describe implements domain.Describer.
func (f *FallbackDescriber) Describe(ctx context.Context, img domain.Image) (domain.DescriptionResult, error) {
	if f.inner == nil {
		metrics.VisionFallbackTotal.WithLabelValues("unconfigured").Inc()
		return domain.DescriptionResult{Text: GenericDescription}, nil
	}

	result, err := f.inner.Describe(ctx, img)
	if err != nil {
		metrics.VisionFallbackTotal.WithLabelValues("error").Inc()
		f.logger.Warn("Vision description failed, using generic description", zap.Error(err))
		return domain.DescriptionResult{Text: GenericDescription}, nil
	}
	return result, nil
}
