package visioncache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/db"
	"github.com/kailas-cloud/shotsearch/internal/domain"
)

type mockDescriber struct {
	result domain.DescriptionResult
	err    error
	calls  int
}

func (m *mockDescriber) Describe(_ context.Context, _ domain.Image) (domain.DescriptionResult, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn        func(ctx context.Context, key string) ([]byte, error)
	setFn        func(ctx context.Context, key string, value []byte) error
	setWithTTLFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	return nil
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setWithTTLFn != nil {
		return m.setWithTTLFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedDescriber(t *testing.T, inner *mockDescriber, opts ...Option) (*CachedDescriber, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, "shotsearch:", zap.NewNop(), opts...), ms
}

func testImage() domain.Image {
	return domain.Image{Data: []byte("\x89PNG fake"), MIME: domain.MIMEPNG}
}
