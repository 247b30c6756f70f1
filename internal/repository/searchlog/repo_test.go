package searchlog

import (
	"context"
	"errors"
	"testing"

	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
)

func TestLog_RecentNewestFirst(t *testing.T) {
	repo, _ := newTestRepo(t, 10)
	ctx := context.Background()

	for i, q := range []string{"login", "error", "dashboard"} {
		if err := repo.Log(ctx, domlog.New(q, i, int64(10*(i+1)), int64(1000+i))); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	got, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Query() != "dashboard" || got[1].Query() != "error" {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if got[0].ResultsCount() != 2 || got[0].ResponseTimeMs() != 30 || got[0].Timestamp() != 1002 {
		t.Errorf("unexpected entry fields: %+v", got[0])
	}
}

func TestLog_Retention(t *testing.T) {
	repo, ms := newTestRepo(t, 2)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		if err := repo.Log(ctx, domlog.New(q, 0, 1, 0)); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	if n := len(ms.lists["shotsearch:searches"]); n != 2 {
		t.Errorf("list length = %d, want 2", n)
	}

	totals, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if totals.Count() != 3 {
		t.Errorf("totals count = %d, want 3 (totals outlive retention)", totals.Count())
	}
}

func TestTotals(t *testing.T) {
	repo, _ := newTestRepo(t, 0)
	ctx := context.Background()

	empty, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if empty.Count() != 0 || empty.AvgResponseMs() != 0 {
		t.Errorf("unexpected empty totals: %+v", empty)
	}

	_ = repo.Log(ctx, domlog.New("a", 1, 10, 0))
	_ = repo.Log(ctx, domlog.New("b", 1, 30, 0))

	got, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals: %v", err)
	}
	if got.Count() != 2 || got.TotalResponseMs() != 40 || got.AvgResponseMs() != 20 {
		t.Errorf("unexpected totals: %+v", got)
	}
}

func TestRecent_SkipsCorruptEntries(t *testing.T) {
	repo, ms := newTestRepo(t, 10)
	ms.lists["shotsearch:searches"] = []string{`{"query":"ok"}`, "not json"}

	got, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Query() != "ok" {
		t.Errorf("unexpected entries: %+v", got)
	}
}

func TestRecent_NonPositive(t *testing.T) {
	repo, _ := newTestRepo(t, 10)
	got, err := repo.Recent(context.Background(), 0)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("Recent(0) = %v, %v", got, err)
	}
}

func TestLog_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t, 10)
	ms.lpushFn = func(_ context.Context, _ string, _ ...string) error { return errors.New("down") }

	if err := repo.Log(context.Background(), domlog.New("a", 0, 1, 0)); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.counters) != 0 {
		t.Error("totals must not move when the entry was not stored")
	}
}

func TestTotals_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t, 10)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("down") }

	if _, err := repo.Totals(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
