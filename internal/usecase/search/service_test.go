package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
	"github.com/kailas-cloud/shotsearch/internal/domain/search/request"
	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
	"github.com/kailas-cloud/shotsearch/pkg/relevance"
)

// --- Mocks ---

type mockRecords struct {
	shots []domshot.Screenshot
	err   error
}

func (m *mockRecords) List(_ context.Context) ([]domshot.Screenshot, error) {
	return m.shots, m.err
}

type mockSink struct {
	mu      sync.Mutex
	entries []domlog.Entry
	fn      func(ctx context.Context) error
}

func (m *mockSink) Log(ctx context.Context, e domlog.Entry) error {
	if m.fn != nil {
		if err := m.fn(ctx); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockSink) logged() []domlog.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domlog.Entry(nil), m.entries...)
}

func shot(id, name, ocr, visual string, at int64, st domshot.Status) domshot.Screenshot {
	return domshot.Reconstruct(id, name, "/api/files/"+id, "image/png", ocr, visual, at, 10, st)
}

func library() []domshot.Screenshot {
	return []domshot.Screenshot{
		shot("d", "invoice-2024.png", "", "A table of numbers", 4, domshot.StatusCompleted),
		shot("c", "draft.png", "login", "", 3, domshot.StatusPending),
		shot("a", "login.png", "Sign in to continue", "A blue login form", 2, domshot.StatusCompleted),
		shot("b", "chart.png", "", "A bar chart", 1, domshot.StatusCompleted),
	}
}

func intPtr(n int) *int { return &n }

// --- Tests ---

func TestSearch_RanksEligibleRecords(t *testing.T) {
	sink := &mockSink{}
	svc := New(&mockRecords{shots: library()}, sink, nil)

	resp, err := svc.Search(context.Background(), "  login  ", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	svc.Wait()

	if resp.Query != "login" {
		t.Errorf("query = %q, want trimmed", resp.Query)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "a" {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.Results[0].MatchType != relevance.MatchVisual {
		t.Errorf("match type = %q", resp.Results[0].MatchType)
	}

	logged := sink.logged()
	if len(logged) != 1 {
		t.Fatalf("logged %d entries", len(logged))
	}
	if logged[0].Query() != "login" || logged[0].ResultsCount() != 1 {
		t.Errorf("entry = %q / %d", logged[0].Query(), logged[0].ResultsCount())
	}
}

func TestSearch_Validation(t *testing.T) {
	svc := New(&mockRecords{shots: library()}, nil, nil).WithLimits(request.Limits{MaxQueryLength: 10, MaxLimit: 3})

	tests := []struct {
		name    string
		query   string
		limit   *int
		wantErr error
	}{
		{"empty", "   ", nil, domain.ErrInvalidQuery},
		{"too long", "abcdefghijk", nil, domain.ErrInvalidQuery},
		{"zero limit", "chart", intPtr(0), domain.ErrInvalidLimit},
		{"limit over max", "chart", intPtr(4), domain.ErrInvalidLimit},
		{"ok", "chart", intPtr(3), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("invalid"))
			_, err := svc.Search(context.Background(), tt.query, tt.limit)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				after := testutil.ToFloat64(metrics.SearchRequestsTotal.WithLabelValues("invalid"))
				if after != before+1 {
					t.Errorf("invalid counter = %v, want %v", after, before+1)
				}
			}
		})
	}
}

func TestSearch_Limit(t *testing.T) {
	shots := make([]domshot.Screenshot, 0, 8)
	for i := range 8 {
		shots = append(shots, shot(string(rune('a'+i)), "x.png", "error dialog", "", int64(i), domshot.StatusCompleted))
	}
	svc := New(&mockRecords{shots: shots}, nil, nil)

	resp, err := svc.Search(context.Background(), "error", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != request.DefaultLimit {
		t.Errorf("default limit returned %d", len(resp.Results))
	}
	// Equal scores: newest first.
	if resp.Results[0].ID != "h" {
		t.Errorf("first = %q, want newest", resp.Results[0].ID)
	}

	resp, _ = svc.Search(context.Background(), "error", intPtr(2))
	if len(resp.Results) != 2 {
		t.Errorf("limit 2 returned %d", len(resp.Results))
	}
}

func TestSearch_FilenameFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback bool
		want     int
	}{
		{"off", false, 0},
		{"on", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := relevance.DefaultPolicy()
			p.FilenameFallback = tt.fallback
			svc := New(&mockRecords{shots: library()}, nil, relevance.New(p))

			resp, err := svc.Search(context.Background(), "invoice", nil)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(resp.Results) != tt.want {
				t.Fatalf("results = %d, want %d", len(resp.Results), tt.want)
			}
			if tt.want == 1 && resp.Results[0].Confidence != relevance.DefaultFilenameConfidence {
				t.Errorf("confidence = %v", resp.Results[0].Confidence)
			}
		})
	}
}

func TestSearch_StoreError(t *testing.T) {
	sink := &mockSink{}
	svc := New(&mockRecords{err: domain.ErrStoreUnavailable}, sink, nil)

	_, err := svc.Search(context.Background(), "login", nil)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("err = %v", err)
	}
	svc.Wait()
	if len(sink.logged()) != 0 {
		t.Error("failed search was logged")
	}
}

func TestSearch_EmptyLibrary(t *testing.T) {
	svc := New(&mockRecords{}, nil, nil)

	resp, err := svc.Search(context.Background(), "login", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results = %d", len(resp.Results))
	}
}

func TestSearch_LogOutlivesRequest(t *testing.T) {
	release := make(chan struct{})
	var sawErr error
	sink := &mockSink{fn: func(ctx context.Context) error {
		<-release
		sawErr = ctx.Err()
		return nil
	}}
	svc := New(&mockRecords{shots: library()}, sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := svc.Search(ctx, "chart", nil); err != nil {
		t.Fatalf("Search: %v", err)
	}
	cancel()
	close(release)
	svc.Wait()

	if sawErr != nil {
		t.Errorf("log context canceled with request: %v", sawErr)
	}
	if len(sink.logged()) != 1 {
		t.Error("entry not logged")
	}
}

func TestSearch_LogFailureIsSwallowed(t *testing.T) {
	sink := &mockSink{fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	svc := New(&mockRecords{shots: library()}, sink, nil).WithLogTimeout(10 * time.Millisecond)

	before := testutil.ToFloat64(metrics.SearchLogErrorsTotal)
	resp, err := svc.Search(context.Background(), "chart", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("results = %d", len(resp.Results))
	}
	svc.Wait()

	if got := testutil.ToFloat64(metrics.SearchLogErrorsTotal); got != before+1 {
		t.Errorf("log errors = %v, want %v", got, before+1)
	}
}
