package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/shotsearch/internal/domain/usage"
	"github.com/kailas-cloud/shotsearch/internal/domain/usage/budget"
	"github.com/kailas-cloud/shotsearch/internal/domain/usage/metrics"
)

// Service handles vision usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil when no vision provider is configured.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var start, end time.Time
	var limit, used, remaining int64
	var provider string

	if period == domusage.PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	} else {
		period = domusage.PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
	}

	if s.br != nil {
		provider = s.br.Provider()
		if period == domusage.PeriodMonth {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		} else {
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		}
	}
	if limit == 0 {
		remaining = 0
	}

	exhausted := limit > 0 && remaining <= 0
	b := budget.New(int(limit), int(remaining), exhausted, end.UnixMilli())
	m := metrics.New(0, int(used)) // requests are not tracked per period yet

	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), provider, m, b)
}
