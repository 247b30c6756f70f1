package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
	"github.com/kailas-cloud/shotsearch/internal/domain/search/request"
	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
	logpkg "github.com/kailas-cloud/shotsearch/internal/logger"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
	"github.com/kailas-cloud/shotsearch/pkg/relevance"
)

// DefaultLogTimeout bounds one search log write.
const DefaultLogTimeout = 2 * time.Second

// Response is a completed search.
type Response struct {
	Query          string
	Results        []relevance.Result
	ResponseTimeMs int64
}

// Service ranks stored screenshots against free-text queries.
type Service struct {
	records    RecordSource
	sink       LogSink
	engine     *relevance.Engine
	limits     request.Limits
	logTimeout time.Duration
	pending    sync.WaitGroup
	now        func() time.Time
}

// New creates a search service. sink can be nil to disable the search log.
func New(records RecordSource, sink LogSink, engine *relevance.Engine) *Service {
	if engine == nil {
		engine = relevance.New(relevance.DefaultPolicy())
	}
	return &Service{
		records:    records,
		sink:       sink,
		engine:     engine,
		limits:     request.DefaultLimits(),
		logTimeout: DefaultLogTimeout,
		now:        time.Now,
	}
}

// WithLimits sets the accepted query length and result limits. Zero
// fields keep their defaults.
func (s *Service) WithLimits(l request.Limits) *Service {
	s.limits = l.WithDefaults()
	return s
}

// Limits returns the accepted query length and result limits.
func (s *Service) Limits() request.Limits {
	return s.limits
}

// WithLogTimeout sets the bound on each search log write.
func (s *Service) WithLogTimeout(d time.Duration) *Service {
	if d > 0 {
		s.logTimeout = d
	}
	return s
}

// Search validates the parameters, scores every stored screenshot and
// returns the best matches. A nil limit means the default.
// Validation errors wrap domain.ErrInvalidQuery or domain.ErrInvalidLimit.
func (s *Service) Search(ctx context.Context, query string, limit *int) (Response, error) {
	start := s.now()

	req, err := request.New(query, limit, s.limits)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("invalid").Inc()
		return Response{}, err
	}

	shots, err := s.records.List(ctx)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return Response{}, fmt.Errorf("list screenshots: %w", err)
	}
	metrics.SearchCandidatesTotal.Add(float64(len(shots)))

	results := s.engine.Search(req.Query(), domshot.Records(shots), req.Limit())

	elapsed := s.now().Sub(start)
	outcome := "hit"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.SearchRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.SearchDuration.Observe(elapsed.Seconds())
	metrics.SearchResults.Observe(float64(len(results)))

	resp := Response{Query: req.Query(), Results: results, ResponseTimeMs: elapsed.Milliseconds()}
	s.logAsync(ctx, domlog.New(resp.Query, len(results), resp.ResponseTimeMs, start.UnixMilli()))
	return resp, nil
}

// logAsync writes the entry without holding up the response. The write
// outlives request cancellation but not logTimeout; failures are logged
// and dropped.
func (s *Service) logAsync(ctx context.Context, e domlog.Entry) {
	if s.sink == nil {
		return
	}
	log := logpkg.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.logTimeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.sink.Log(ctx, e); err != nil {
			metrics.SearchLogErrorsTotal.Inc()
			log.Warn("Failed to log search", zap.String("query", e.Query()), zap.Error(err))
		}
	}()
}

// Wait blocks until pending search log writes finish.
func (s *Service) Wait() {
	s.pending.Wait()
}
