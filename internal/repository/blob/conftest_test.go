package blob

import (
	"context"
	"testing"

	"github.com/kailas-cloud/shotsearch/internal/db"
)

// memStore is an in-memory fake of the consumer interface.
// Fn fields override the map behavior for error paths.
type memStore struct {
	data  map[string][]byte
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte) error
	delFn func(ctx context.Context, key string) error
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	delete(m.data, key)
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *memStore) {
	t.Helper()
	ms := &memStore{data: map[string][]byte{}}
	return New(ms, "shotsearch:", "http://localhost:3000/"), ms
}
