package searchlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/shotsearch/internal/db"
	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
)

// DefaultRetention is the number of entries kept when none is configured.
const DefaultRetention = 1000

// store is the consumer interface for the search log (ISP).
type store interface {
	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) ([]byte, error)
}

type entryDTO struct {
	Query          string `json:"query"`
	ResultsCount   int    `json:"results_count"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	Timestamp      int64  `json:"timestamp"`
}

// Repo records executed searches in a capped newest-first list and keeps
// running totals for statistics.
type Repo struct {
	store     store
	prefix    string
	retention int64
}

// New creates a search-log repository keeping at most retention entries.
func New(s store, prefix string, retention int) *Repo {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Repo{store: s, prefix: prefix, retention: int64(retention)}
}

// Log appends an entry and updates the totals.
func (r *Repo) Log(ctx context.Context, e domlog.Entry) error {
	data, err := json.Marshal(entryDTO{
		Query:          e.Query(),
		ResultsCount:   e.ResultsCount(),
		ResponseTimeMs: e.ResponseTimeMs(),
		Timestamp:      e.Timestamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal search log entry: %w", err)
	}

	if err := r.store.LPush(ctx, r.listKey(), string(data)); err != nil {
		return fmt.Errorf("lpush %s: %w", r.listKey(), err)
	}
	if err := r.store.LTrim(ctx, r.listKey(), 0, r.retention-1); err != nil {
		return fmt.Errorf("ltrim %s: %w", r.listKey(), err)
	}
	if err := r.store.IncrBy(ctx, r.countKey(), 1); err != nil {
		return fmt.Errorf("incr %s: %w", r.countKey(), err)
	}
	if err := r.store.IncrBy(ctx, r.responseKey(), e.ResponseTimeMs()); err != nil {
		return fmt.Errorf("incr %s: %w", r.responseKey(), err)
	}
	return nil
}

// Recent returns up to n newest entries. Unparseable entries are skipped.
func (r *Repo) Recent(ctx context.Context, n int) ([]domlog.Entry, error) {
	if n <= 0 {
		return []domlog.Entry{}, nil
	}
	raw, err := r.store.LRange(ctx, r.listKey(), 0, int64(n)-1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", r.listKey(), err)
	}

	entries := make([]domlog.Entry, 0, len(raw))
	for _, s := range raw {
		var dto entryDTO
		if err := json.Unmarshal([]byte(s), &dto); err != nil {
			continue
		}
		entries = append(entries, domlog.New(dto.Query, dto.ResultsCount, dto.ResponseTimeMs, dto.Timestamp))
	}
	return entries, nil
}

// Totals returns the number of logged searches and their summed latency.
func (r *Repo) Totals(ctx context.Context) (domlog.Totals, error) {
	count, err := r.counter(ctx, r.countKey())
	if err != nil {
		return domlog.Totals{}, err
	}
	total, err := r.counter(ctx, r.responseKey())
	if err != nil {
		return domlog.Totals{}, err
	}
	return domlog.NewTotals(count, total), nil
}

func (r *Repo) counter(ctx context.Context, key string) (int64, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func (r *Repo) listKey() string     { return r.prefix + "searches" }
func (r *Repo) countKey() string    { return r.prefix + "searches:count" }
func (r *Repo) responseKey() string { return r.prefix + "searches:response_ms" }
