package screenshot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/shotsearch/internal/db"
	"github.com/kailas-cloud/shotsearch/internal/domain"
	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
)

// store is the consumer interface for screenshot records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetIfExists(ctx context.Context, key string, fields map[string]string) (bool, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRem(ctx context.Context, key string, member string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZCard(ctx context.Context, key string) (int64, error)
}

// Repo stores screenshot records as hashes with sorted-set indexes
// scored by upload time.
type Repo struct {
	store  store
	prefix string
}

// New creates a screenshot repository. prefix namespaces every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Insert stores a new record and indexes it.
func (r *Repo) Insert(ctx context.Context, shot *domshot.Screenshot) error {
	key := r.shotKey(shot.ID())
	if err := r.store.HSet(ctx, key, buildHashFields(shot)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	score := float64(shot.UploadedAt())
	if err := r.store.ZAdd(ctx, r.allKey(), score, shot.ID()); err != nil {
		return fmt.Errorf("index %s: %w", shot.ID(), err)
	}
	if err := r.store.ZAdd(ctx, r.statusKey(shot.Status()), score, shot.ID()); err != nil {
		return fmt.Errorf("index status %s: %w", shot.ID(), err)
	}
	if err := r.store.IncrBy(ctx, r.bytesKey(), shot.FileSize()); err != nil {
		return fmt.Errorf("incr storage used: %w", err)
	}
	return nil
}

// Get returns a record by ID.
func (r *Repo) Get(ctx context.Context, id string) (domshot.Screenshot, error) {
	key := r.shotKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domshot.Screenshot{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domshot.Screenshot{}, domain.ErrScreenshotNotFound
	}
	return parseHashFields(id, m)
}

// UpdateProcessing persists the status and extracted texts of shot and
// moves it to the matching status index. A record deleted concurrently is
// never recreated and ends up in no index.
func (r *Repo) UpdateProcessing(ctx context.Context, shot *domshot.Screenshot) error {
	key := r.shotKey(shot.ID())
	fields := map[string]string{
		fieldStatus:  string(shot.Status()),
		fieldOCRText: shot.OCRText(),
		fieldVisual:  shot.VisualDescription(),
	}
	updated, err := r.store.HSetIfExists(ctx, key, fields)
	if err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if !updated {
		return domain.ErrScreenshotNotFound
	}

	for _, st := range domshot.Statuses() {
		if st == shot.Status() {
			continue
		}
		if err := r.store.ZRem(ctx, r.statusKey(st), shot.ID()); err != nil {
			return fmt.Errorf("unindex status %s: %w", st, err)
		}
	}
	statusKey := r.statusKey(shot.Status())
	if err := r.store.ZAdd(ctx, statusKey, float64(shot.UploadedAt()), shot.ID()); err != nil {
		return fmt.Errorf("index status %s: %w", shot.ID(), err)
	}

	// Delete drops the hash before sweeping the indexes. If the hash is
	// gone now, that sweep may have run before the ZAdd above.
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		if err := r.store.ZRem(ctx, statusKey, shot.ID()); err != nil {
			return fmt.Errorf("unindex status %s: %w", shot.ID(), err)
		}
		return domain.ErrScreenshotNotFound
	}
	return nil
}

// Delete removes a record and its entries from every index.
func (r *Repo) Delete(ctx context.Context, id string) error {
	shot, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	key := r.shotKey(id)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.ZRem(ctx, r.allKey(), id); err != nil {
		return fmt.Errorf("unindex %s: %w", id, err)
	}
	// Every status index, not just the one read above: an update may have
	// moved the record since.
	for _, st := range domshot.Statuses() {
		if err := r.store.ZRem(ctx, r.statusKey(st), id); err != nil {
			return fmt.Errorf("unindex status %s: %w", id, err)
		}
	}
	if err := r.store.IncrBy(ctx, r.bytesKey(), -shot.FileSize()); err != nil {
		return fmt.Errorf("decr storage used: %w", err)
	}
	return nil
}

// List returns every record, newest first.
func (r *Repo) List(ctx context.Context) ([]domshot.Screenshot, error) {
	return r.listIndex(ctx, r.allKey())
}

// ListByStatus returns records in the given status, newest first.
func (r *Repo) ListByStatus(ctx context.Context, status domshot.Status) ([]domshot.Screenshot, error) {
	return r.listIndex(ctx, r.statusKey(status))
}

// Count returns the number of stored records.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	n, err := r.store.ZCard(ctx, r.allKey())
	if err != nil {
		return 0, fmt.Errorf("zcard %s: %w", r.allKey(), err)
	}
	return n, nil
}

// CountByStatus returns the number of records in the given status.
func (r *Repo) CountByStatus(ctx context.Context, status domshot.Status) (int64, error) {
	key := r.statusKey(status)
	n, err := r.store.ZCard(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("zcard %s: %w", key, err)
	}
	return n, nil
}

// TotalSize returns the summed file size of all stored records in bytes.
func (r *Repo) TotalSize(ctx context.Context) (int64, error) {
	data, err := r.store.Get(ctx, r.bytesKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get %s: %w", r.bytesKey(), err)
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", r.bytesKey(), err)
	}
	return n, nil
}

// listIndex hydrates every member of a sorted-set index.
// Members whose hash is gone are skipped.
func (r *Repo) listIndex(ctx context.Context, index string) ([]domshot.Screenshot, error) {
	ids, err := r.store.ZRevRange(ctx, index, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", index, err)
	}
	if len(ids) == 0 {
		return []domshot.Screenshot{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.shotKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi %s: %w", index, err)
	}

	shots := make([]domshot.Screenshot, 0, len(ids))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		shot, err := parseHashFields(ids[i], m)
		if err != nil {
			return nil, err
		}
		shots = append(shots, shot)
	}
	return shots, nil
}

func (r *Repo) shotKey(id string) string {
	return r.prefix + "shot:" + id
}

func (r *Repo) allKey() string {
	return r.prefix + "shots:all"
}

func (r *Repo) statusKey(s domshot.Status) string {
	return r.prefix + "shots:status:" + string(s)
}

func (r *Repo) bytesKey() string {
	return r.prefix + "shots:bytes"
}
