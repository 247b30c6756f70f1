package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/shotsearch/internal/domain/usage"
)

// --- Mock ---

type mockBudgetReader struct {
	dailyLimit       int64
	monthlyLimit     int64
	dailyUsed        int64
	monthlyUsed      int64
	remainingDaily   int64
	remainingMonthly int64
}

func (m *mockBudgetReader) Provider() string        { return "openai" }
func (m *mockBudgetReader) DailyLimit() int64       { return m.dailyLimit }
func (m *mockBudgetReader) MonthlyLimit() int64     { return m.monthlyLimit }
func (m *mockBudgetReader) DailyUsed() int64        { return m.dailyUsed }
func (m *mockBudgetReader) MonthlyUsed() int64      { return m.monthlyUsed }
func (m *mockBudgetReader) RemainingDaily() int64   { return m.remainingDaily }
func (m *mockBudgetReader) RemainingMonthly() int64 { return m.remainingMonthly }

var fixedNow = time.Date(2026, time.March, 15, 13, 45, 0, 0, time.UTC)

func newTestService(br BudgetReader) *Service {
	svc := New(br)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// --- Tests ---

func TestGetReport_Periods(t *testing.T) {
	br := &mockBudgetReader{
		dailyLimit: 10000, dailyUsed: 3000, remainingDaily: 7000,
		monthlyLimit: 100000, monthlyUsed: 50000, remainingMonthly: 50000,
	}

	tests := []struct {
		name      string
		period    domusage.Period
		wantStart time.Time
		wantEnd   time.Time
		wantLimit int
		wantUsed  int
		wantLeft  int
	}{
		{
			"day", domusage.PeriodDay,
			time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC),
			10000, 3000, 7000,
		},
		{
			"month", domusage.PeriodMonth,
			time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
			100000, 50000, 50000,
		},
		{
			"unknown falls back to day", domusage.Period("year"),
			time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC),
			10000, 3000, 7000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestService(br).GetReport(context.Background(), tt.period)

			if r.PeriodStart() != tt.wantStart.UnixMilli() {
				t.Errorf("start = %d, want %d", r.PeriodStart(), tt.wantStart.UnixMilli())
			}
			if r.PeriodEnd() != tt.wantEnd.UnixMilli() {
				t.Errorf("end = %d, want %d", r.PeriodEnd(), tt.wantEnd.UnixMilli())
			}
			if r.Budget().ResetsAt() != tt.wantEnd.UnixMilli() {
				t.Errorf("resets at = %d", r.Budget().ResetsAt())
			}
			if r.Budget().TokensLimit() != tt.wantLimit {
				t.Errorf("limit = %d, want %d", r.Budget().TokensLimit(), tt.wantLimit)
			}
			if r.Budget().TokensRemaining() != tt.wantLeft {
				t.Errorf("remaining = %d, want %d", r.Budget().TokensRemaining(), tt.wantLeft)
			}
			if r.Metrics().Tokens() != tt.wantUsed {
				t.Errorf("tokens = %d, want %d", r.Metrics().Tokens(), tt.wantUsed)
			}
			if r.Provider() != "openai" {
				t.Errorf("provider = %q", r.Provider())
			}
			if r.Budget().IsExhausted() {
				t.Error("budget should not be exhausted")
			}
		})
	}
}

func TestGetReport_Exhausted(t *testing.T) {
	br := &mockBudgetReader{dailyLimit: 100, dailyUsed: 120, remainingDaily: 0}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if !r.Budget().IsExhausted() {
		t.Error("expected exhausted budget")
	}
}

func TestGetReport_Unlimited(t *testing.T) {
	br := &mockBudgetReader{dailyUsed: 500, remainingDaily: -1}
	r := newTestService(br).GetReport(context.Background(), domusage.PeriodDay)

	if !r.Budget().IsUnlimited() {
		t.Error("expected unlimited budget")
	}
	if r.Budget().IsExhausted() {
		t.Error("unlimited budget cannot be exhausted")
	}
	if r.Budget().TokensRemaining() != 0 {
		t.Errorf("remaining = %d, want 0", r.Budget().TokensRemaining())
	}
	if r.Metrics().Tokens() != 500 {
		t.Errorf("tokens = %d", r.Metrics().Tokens())
	}
}

func TestGetReport_NoProvider(t *testing.T) {
	r := newTestService(nil).GetReport(context.Background(), domusage.PeriodMonth)

	if r.Provider() != "" {
		t.Errorf("provider = %q", r.Provider())
	}
	if !r.Budget().IsUnlimited() || r.Metrics().Tokens() != 0 {
		t.Error("nil reader should report an empty unlimited budget")
	}
}
