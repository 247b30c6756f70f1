package screenshot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
	logpkg "github.com/kailas-cloud/shotsearch/internal/logger"
)

// Stats summarizes the library and its search traffic.
type Stats struct {
	TotalScreenshots  int64
	StorageUsed       int64
	ByStatus          map[domshot.Status]int64
	TotalSearches     int64
	AvgResponseTimeMs float64
}

// Service manages stored screenshots.
type Service struct {
	repo  Repository
	blobs BlobStore
	log   SearchLog
}

// New creates a screenshot service.
func New(repo Repository, blobs BlobStore, log SearchLog) *Service {
	return &Service{repo: repo, blobs: blobs, log: log}
}

// List returns every screenshot, newest first.
func (s *Service) List(ctx context.Context) ([]domshot.Screenshot, error) {
	shots, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	return shots, nil
}

// Get returns one screenshot.
func (s *Service) Get(ctx context.Context, id string) (domshot.Screenshot, error) {
	shot, err := s.repo.Get(ctx, id)
	if err != nil {
		return domshot.Screenshot{}, fmt.Errorf("get screenshot: %w", err)
	}
	return shot, nil
}

// Delete removes the record and its image bytes. A blob that cannot be
// removed is logged and left behind.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete screenshot: %w", err)
	}
	if err := s.blobs.Delete(ctx, id); err != nil {
		logpkg.FromContext(ctx).Warn("Failed to delete screenshot image", zap.String("id", id), zap.Error(err))
	}
	return nil
}

// File returns the image bytes of a screenshot.
func (s *Service) File(ctx context.Context, id string) (domain.Blob, error) {
	b, err := s.blobs.Get(ctx, id)
	if err != nil {
		return domain.Blob{}, fmt.Errorf("get file: %w", err)
	}
	return b, nil
}

// Preview highlights query in the OCR text and visual description of a
// stored screenshot.
func (s *Service) Preview(ctx context.Context, id, query string) (domshot.Preview, error) {
	shot, err := s.Get(ctx, id)
	if err != nil {
		return domshot.Preview{}, err
	}
	return domshot.NewPreview(domshot.Stored{Screenshot: shot}, query), nil
}

// Recent returns the latest logged searches, newest first.
func (s *Service) Recent(ctx context.Context, n int) ([]domlog.Entry, error) {
	entries, err := s.log.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return entries, nil
}

// Stats aggregates record counts, storage and search totals.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count screenshots: %w", err)
	}
	size, err := s.repo.TotalSize(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("storage used: %w", err)
	}

	byStatus := make(map[domshot.Status]int64, len(domshot.Statuses()))
	for _, st := range domshot.Statuses() {
		n, cErr := s.repo.CountByStatus(ctx, st)
		if cErr != nil {
			return Stats{}, fmt.Errorf("count %s screenshots: %w", st, cErr)
		}
		byStatus[st] = n
	}

	totals, err := s.log.Totals(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("search totals: %w", err)
	}

	return Stats{
		TotalScreenshots:  total,
		StorageUsed:       size,
		ByStatus:          byStatus,
		TotalSearches:     totals.Count(),
		AvgResponseTimeMs: totals.AvgResponseMs(),
	}, nil
}
