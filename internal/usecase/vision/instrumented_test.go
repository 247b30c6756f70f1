package vision

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterVisionMetrics()
	os.Exit(m.Run())
}

type mockDescriber struct {
	result domain.DescriptionResult
	err    error
	calls  int
}

func (m *mockDescriber) Describe(_ context.Context, _ domain.Image) (domain.DescriptionResult, error) {
	m.calls++
	return m.result, m.err
}

var testImage = domain.Image{Data: []byte("img"), MIME: domain.MIMEPNG}

func TestInstrumentedDescriber_Success(t *testing.T) {
	inner := &mockDescriber{result: domain.DescriptionResult{Text: "A login form", TotalTokens: 120}}
	bt := NewBudgetTracker("", "openai", 1000, 0, BudgetActionReject, zap.NewNop())
	p := NewInstrumentedDescriber(inner, "openai", "gpt-4o-mini", bt, zap.NewNop())

	ctx, usage := domain.NewContextWithVisionUsage(context.Background())
	got, err := p.Describe(ctx, testImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "A login form" {
		t.Errorf("Text = %q", got.Text)
	}
	if bt.DailyUsed() != 120 {
		t.Errorf("budget recorded %d", bt.DailyUsed())
	}
	if usage.TotalTokens() != 120 || usage.Calls() != 1 {
		t.Errorf("usage = %d tokens / %d calls", usage.TotalTokens(), usage.Calls())
	}
	gauge := metrics.VisionBudgetTokensRemaining.WithLabelValues("openai", "daily")
	if v := testutil.ToFloat64(gauge); v != 880 {
		t.Errorf("remaining gauge = %v, want 880", v)
	}
}

func TestInstrumentedDescriber_BudgetRejects(t *testing.T) {
	inner := &mockDescriber{result: domain.DescriptionResult{Text: "x"}}
	bt := NewBudgetTracker("", "openai", 10, 0, BudgetActionReject, zap.NewNop())
	bt.Record(10)
	p := NewInstrumentedDescriber(inner, "openai", "m", bt, zap.NewNop())

	_, err := p.Describe(context.Background(), testImage)
	if !errors.Is(err, domain.ErrVisionQuotaExceeded) {
		t.Fatalf("expected ErrVisionQuotaExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("provider must not be called over budget")
	}
}

func TestInstrumentedDescriber_InnerError(t *testing.T) {
	inner := &mockDescriber{err: domain.ErrVisionProviderError}
	bt := NewBudgetTracker("", "openai", 0, 0, BudgetActionReject, zap.NewNop())
	p := NewInstrumentedDescriber(inner, "openai", "m", bt, zap.NewNop())

	_, err := p.Describe(context.Background(), testImage)
	if !errors.Is(err, domain.ErrVisionProviderError) {
		t.Fatalf("expected ErrVisionProviderError, got %v", err)
	}
	if bt.DailyUsed() != 0 {
		t.Error("failed requests must not be billed")
	}
}

func TestInstrumentedDescriber_NoBudget(t *testing.T) {
	inner := &mockDescriber{result: domain.DescriptionResult{Text: "x", TotalTokens: 5}}
	p := NewInstrumentedDescriber(inner, "openai", "m", nil, zap.NewNop())

	if _, err := p.Describe(context.Background(), testImage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFallbackDescriber(t *testing.T) {
	tests := []struct {
		name  string
		inner domain.Describer
		want  string
	}{
		{"unconfigured", nil, GenericDescription},
		{"provider error", &mockDescriber{err: errors.New("boom")}, GenericDescription},
		{"quota", &mockDescriber{err: domain.ErrVisionQuotaExceeded}, GenericDescription},
		{"success", &mockDescriber{result: domain.DescriptionResult{Text: "A dashboard"}}, "A dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFallbackDescriber(tt.inner, zap.NewNop())
			got, err := f.Describe(context.Background(), testImage)
			if err != nil {
				t.Fatalf("fallback must not fail: %v", err)
			}
			if got.Text != tt.want {
				t.Errorf("Text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestFallbackDescriber_CountsReasons(t *testing.T) {
	before := testutil.ToFloat64(metrics.VisionFallbackTotal.WithLabelValues("error"))
	f := NewFallbackDescriber(&mockDescriber{err: errors.New("boom")}, zap.NewNop())
	_, _ = f.Describe(context.Background(), testImage)

	if got := testutil.ToFloat64(metrics.VisionFallbackTotal.WithLabelValues("error")); got != before+1 {
		t.Errorf("fallback counter = %v, want %v", got, before+1)
	}
}
