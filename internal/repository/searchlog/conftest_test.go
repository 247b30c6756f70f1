package searchlog

import (
	"context"
	"strconv"
	"testing"

	"github.com/kailas-cloud/shotsearch/internal/db"
)

// memStore is an in-memory fake of the consumer interface with Redis list
// and counter semantics.
type memStore struct {
	lists    map[string][]string
	counters map[string]int64
	lpushFn  func(ctx context.Context, key string, values ...string) error
	getFn    func(ctx context.Context, key string) ([]byte, error)
}

func newMemStore() *memStore {
	return &memStore{lists: map[string][]string{}, counters: map[string]int64{}}
}

func (m *memStore) LPush(ctx context.Context, key string, values ...string) error {
	if m.lpushFn != nil {
		return m.lpushFn(ctx, key, values...)
	}
	for _, v := range values {
		m.lists[key] = append([]string{v}, m.lists[key]...)
	}
	return nil
}

func (m *memStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	l := m.lists[key]
	if stop < 0 || stop >= int64(len(l)) {
		stop = int64(len(l)) - 1
	}
	if start > stop {
		return []string{}, nil
	}
	return append([]string(nil), l[start:stop+1]...), nil
}

func (m *memStore) LTrim(ctx context.Context, key string, start, stop int64) error {
	l, _ := m.LRange(ctx, key, start, stop)
	m.lists[key] = l
	return nil
}

func (m *memStore) IncrBy(_ context.Context, key string, val int64) error {
	m.counters[key] += val
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.counters[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func newTestRepo(t *testing.T, retention int) (*Repo, *memStore) {
	t.Helper()
	ms := newMemStore()
	return New(ms, "shotsearch:", retention), ms
}
