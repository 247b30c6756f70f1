package screenshot

import (
	"context"
	"testing"

	"github.com/kailas-cloud/shotsearch/internal/db"
	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn         func(ctx context.Context, key string, fields map[string]string) error
	hsetIfExistsFn func(ctx context.Context, key string, fields map[string]string) (bool, error)
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	getFn          func(ctx context.Context, key string) ([]byte, error)
	incrByFn       func(ctx context.Context, key string, val int64) error
	zaddFn         func(ctx context.Context, key string, score float64, member string) error
	zremFn         func(ctx context.Context, key, member string) error
	zrevRangeFn    func(ctx context.Context, key string, start, stop int64) ([]string, error)
	zcardFn        func(ctx context.Context, key string) (int64, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HSetIfExists(ctx context.Context, key string, fields map[string]string) (bool, error) {
	if m.hsetIfExistsFn != nil {
		return m.hsetIfExistsFn(ctx, key, fields)
	}
	return false, nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) error {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return nil
}

func (m *mockStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	if m.zaddFn != nil {
		return m.zaddFn(ctx, key, score, member)
	}
	return nil
}

func (m *mockStore) ZRem(ctx context.Context, key, member string) error {
	if m.zremFn != nil {
		return m.zremFn(ctx, key, member)
	}
	return nil
}

func (m *mockStore) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	if m.zrevRangeFn != nil {
		return m.zrevRangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) ZCard(ctx context.Context, key string) (int64, error) {
	if m.zcardFn != nil {
		return m.zcardFn(ctx, key)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "shotsearch:"), ms
}

func testScreenshot(t *testing.T) domshot.Screenshot {
	t.Helper()
	shot, err := domshot.New("shot-1", "login.png", "http://localhost/api/files/shot-1", "image/png", 2048, 1700000000000)
	if err != nil {
		t.Fatalf("new screenshot: %v", err)
	}
	return shot
}

func storedHash(id, status, uploadedAt string) map[string]string {
	return map[string]string{
		fieldID:          id,
		fieldFilename:    id + ".png",
		fieldImageURL:    "http://localhost/api/files/" + id,
		fieldContentType: "image/png",
		fieldOCRText:     "Login Failed",
		fieldVisual:      "A login form",
		fieldUploadedAt:  uploadedAt,
		fieldFileSize:    "2048",
		fieldStatus:      status,
	}
}
