package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/shotsearch/internal/db"
	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// store is the consumer interface for image bytes (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Repo keeps uploaded image bytes next to the records.
// Bytes and content type are separate KV entries so binary data never
// passes through a text encoding.
type Repo struct {
	store   store
	prefix  string
	baseURL string
}

// New creates a blob repository. baseURL is the public origin used to
// build image URLs; empty yields root-relative URLs.
func New(s store, prefix, baseURL string) *Repo {
	return &Repo{store: s, prefix: prefix, baseURL: strings.TrimRight(baseURL, "/")}
}

// URL returns the address the image with the given id is served from.
func (r *Repo) URL(id string) string {
	return r.baseURL + "/api/files/" + id
}

// Put stores image bytes under id.
func (r *Repo) Put(ctx context.Context, id string, data []byte, contentType string) error {
	if err := r.store.Set(ctx, r.dataKey(id), data); err != nil {
		return fmt.Errorf("set blob %s: %w", id, err)
	}
	if err := r.store.Set(ctx, r.typeKey(id), []byte(contentType)); err != nil {
		return fmt.Errorf("set blob type %s: %w", id, err)
	}
	return nil
}

// Get returns the image stored under id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Blob, error) {
	data, err := r.store.Get(ctx, r.dataKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Blob{}, domain.ErrFileNotFound
		}
		return domain.Blob{}, fmt.Errorf("get blob %s: %w", id, err)
	}

	ct, err := r.store.Get(ctx, r.typeKey(id))
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		ct = []byte("application/octet-stream")
	case err != nil:
		return domain.Blob{}, fmt.Errorf("get blob type %s: %w", id, err)
	}

	return domain.Blob{Data: data, ContentType: string(ct)}, nil
}

// Delete removes the image stored under id. Missing blobs are not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.dataKey(id)); err != nil {
		return fmt.Errorf("del blob %s: %w", id, err)
	}
	if err := r.store.Del(ctx, r.typeKey(id)); err != nil {
		return fmt.Errorf("del blob type %s: %w", id, err)
	}
	return nil
}

func (r *Repo) dataKey(id string) string {
	return r.prefix + "blob:" + id
}

func (r *Repo) typeKey(id string) string {
	return r.prefix + "blob:" + id + ":type"
}
