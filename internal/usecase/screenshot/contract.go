package screenshot

import (
	"context"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
)

// Repository reads and removes screenshot records.
type Repository interface {
	Get(ctx context.Context, id string) (domshot.Screenshot, error)
	List(ctx context.Context) ([]domshot.Screenshot, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domshot.Status) (int64, error)
	TotalSize(ctx context.Context) (int64, error)
}

// BlobStore reads and removes image bytes.
type BlobStore interface {
	Get(ctx context.Context, id string) (domain.Blob, error)
	Delete(ctx context.Context, id string) error
}

// SearchLog reports search totals and recent searches.
type SearchLog interface {
	Totals(ctx context.Context) (domlog.Totals, error)
	Recent(ctx context.Context, n int) ([]domlog.Entry, error)
}
