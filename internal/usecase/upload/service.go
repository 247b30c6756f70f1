package upload

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
	domupload "github.com/kailas-cloud/shotsearch/internal/domain/upload"
	logpkg "github.com/kailas-cloud/shotsearch/internal/logger"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
)

// Upload defaults.
const (
	DefaultMaxFiles    = 50
	DefaultMaxFileSize = 10 << 20
	DefaultWindowSize  = 3
	DefaultWindowPause = 100 * time.Millisecond
	DefaultWorkers     = 8
)

// Limits bounds a batch and paces its processing.
type Limits struct {
	MaxFiles    int
	MaxFileSize int64
	WindowSize  int
	WindowPause time.Duration
}

// DefaultLimits returns the stock upload limits.
func DefaultLimits() Limits {
	return Limits{
		MaxFiles:    DefaultMaxFiles,
		MaxFileSize: DefaultMaxFileSize,
		WindowSize:  DefaultWindowSize,
		WindowPause: DefaultWindowPause,
	}
}

// Service stores uploaded screenshots and extracts their searchable text.
type Service struct {
	shots     ScreenshotWriter
	blobs     BlobWriter
	describer Describer
	ocr       Recognizer
	pool      *ants.Pool
	limits    Limits
	now       func() time.Time
	newID     func() string
}

// New creates an upload service with a worker pool of the given size.
// Non-positive workers fall back to DefaultWorkers.
func New(shots ScreenshotWriter, blobs BlobWriter, describer Describer, ocr Recognizer, workers int) (*Service, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create upload pool: %w", err)
	}
	return &Service{
		shots:     shots,
		blobs:     blobs,
		describer: describer,
		ocr:       ocr,
		pool:      pool,
		limits:    DefaultLimits(),
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// WithLimits overrides the defaults with every positive field of l.
func (s *Service) WithLimits(l Limits) *Service {
	if l.MaxFiles > 0 {
		s.limits.MaxFiles = l.MaxFiles
	}
	if l.MaxFileSize > 0 {
		s.limits.MaxFileSize = l.MaxFileSize
	}
	if l.WindowSize > 0 {
		s.limits.WindowSize = l.WindowSize
	}
	if l.WindowPause > 0 {
		s.limits.WindowPause = l.WindowPause
	}
	return s
}

// Limits returns the effective limits.
func (s *Service) Limits() Limits { return s.limits }

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// pending is a stored screenshot awaiting processing.
type pending struct {
	index int
	shot  domshot.Screenshot
	img   domain.Image
}

// Upload validates, stores and processes a batch. Per-file failures are
// reported in the summary; only batch-level problems return an error.
// Processing is detached from ctx cancellation so stored records always
// leave the pending state.
func (s *Service) Upload(ctx context.Context, files []File) (domupload.Summary, error) {
	if len(files) == 0 {
		return domupload.Summary{}, fmt.Errorf("no files provided: %w", domain.ErrInvalidUpload)
	}
	if len(files) > s.limits.MaxFiles {
		return domupload.Summary{}, fmt.Errorf("maximum %d files per batch: %w", s.limits.MaxFiles, domain.ErrBatchTooLarge)
	}

	start := time.Now()
	results := make([]domupload.FileResult, len(files))
	queue := make([]pending, 0, len(files))

	for i, f := range files {
		mime, err := s.validate(f)
		if err != nil {
			results[i] = domupload.NewError(f.Name, domupload.InvalidFileMessage(f.Name, s.limits.MaxFileSize), err)
			metrics.UploadFilesTotal.WithLabelValues("rejected").Inc()
			continue
		}
		p, err := s.store(ctx, i, f, mime)
		if err != nil {
			results[i] = domupload.NewError(f.Name, domupload.ProcessingFailedMessage(f.Name, err), err)
			metrics.UploadFilesTotal.WithLabelValues("failed").Inc()
			continue
		}
		queue = append(queue, p)
	}

	s.processWindows(context.WithoutCancel(ctx), queue, results)

	metrics.UploadBatchDuration.Observe(time.Since(start).Seconds())
	return domupload.NewSummary(results), nil
}

// validate checks type and size and returns the image MIME type.
func (s *Service) validate(f File) (string, error) {
	if len(f.Data) == 0 {
		return "", fmt.Errorf("empty file: %w", domain.ErrInvalidUpload)
	}
	if int64(len(f.Data)) > s.limits.MaxFileSize {
		return "", fmt.Errorf("%d bytes: %w", len(f.Data), domain.ErrFileTooLarge)
	}
	if domain.IsSupportedMIME(f.ContentType) {
		if byName, ok := domain.MIMEFromFilename(f.Name); ok {
			return byName, nil
		}
		return normalizeMIME(f.ContentType), nil
	}
	if f.ContentType == "" || f.ContentType == "application/octet-stream" {
		if byName, ok := domain.MIMEFromFilename(f.Name); ok {
			return byName, nil
		}
	}
	return "", fmt.Errorf("%q: %w", f.ContentType, domain.ErrUnsupportedMedia)
}

// store writes the blob and the pending record. A record that cannot be
// inserted takes its blob with it.
func (s *Service) store(ctx context.Context, index int, f File, mime string) (pending, error) {
	id := s.newID()
	shot, err := domshot.New(id, f.Name, s.blobs.URL(id), mime, int64(len(f.Data)), s.now().UnixMilli())
	if err != nil {
		return pending{}, err
	}
	if err := s.blobs.Put(ctx, id, f.Data, mime); err != nil {
		return pending{}, fmt.Errorf("store image: %w", err)
	}
	if err := s.shots.Insert(ctx, &shot); err != nil {
		if delErr := s.blobs.Delete(ctx, id); delErr != nil {
			logpkg.FromContext(ctx).Warn("Failed to remove orphaned blob", zap.String("id", id), zap.Error(delErr))
		}
		return pending{}, fmt.Errorf("store record: %w", err)
	}
	return pending{index: index, shot: shot, img: domain.Image{Data: f.Data, MIME: mime}}, nil
}

// processWindows runs the queue in windows of WindowSize on the pool with
// at least WindowPause between the end of one window and the start of
// the next.
func (s *Service) processWindows(ctx context.Context, queue []pending, results []domupload.FileResult) {
	for startIdx := 0; startIdx < len(queue); startIdx += s.limits.WindowSize {
		window := queue[startIdx:min(startIdx+s.limits.WindowSize, len(queue))]

		var wg sync.WaitGroup
		for _, p := range window {
			wg.Add(1)
			task := func() {
				defer wg.Done()
				results[p.index] = s.process(ctx, p)
			}
			if err := s.pool.Submit(task); err != nil {
				wg.Done()
				results[p.index] = s.fail(ctx, p, fmt.Errorf("schedule processing: %w", err))
			}
		}
		wg.Wait()

		if startIdx+s.limits.WindowSize < len(queue) {
			s.pause(ctx)
		}
	}
}

// pause blocks for WindowPause. The limiter starts with its single token
// spent so Wait returns one full interval later.
func (s *Service) pause(ctx context.Context) {
	if s.limits.WindowPause <= 0 {
		return
	}
	pacer := rate.NewLimiter(rate.Every(s.limits.WindowPause), 1)
	pacer.Allow()
	if err := pacer.Wait(ctx); err != nil {
		logpkg.FromContext(ctx).Debug("Window pause interrupted", zap.Error(err))
	}
}

// process runs OCR and the visual description concurrently and records
// the outcome.
func (s *Service) process(ctx context.Context, p pending) domupload.FileResult {
	var (
		wg      sync.WaitGroup
		ocrText string
		ocrErr  error
		desc    domain.DescriptionResult
		descErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ocrText, ocrErr = s.ocr.Recognize(ctx, p.img)
	}()
	go func() {
		defer wg.Done()
		desc, descErr = s.describer.Describe(ctx, p.img)
	}()
	wg.Wait()

	if err := errors.Join(ocrErr, descErr); err != nil {
		return s.fail(ctx, p, err)
	}

	done := p.shot.Processed(ocrText, desc.Text)
	if err := s.shots.UpdateProcessing(ctx, &done); err != nil {
		return s.fail(ctx, p, fmt.Errorf("save results: %w", err))
	}
	metrics.UploadFilesTotal.WithLabelValues("completed").Inc()
	return domupload.NewOK(done.Filename(), done)
}

// fail marks the record failed and builds the per-file error.
func (s *Service) fail(ctx context.Context, p pending, err error) domupload.FileResult {
	log := logpkg.FromContext(ctx)
	log.Warn("Screenshot processing failed",
		zap.String("id", p.shot.ID()),
		zap.String("filename", p.shot.Filename()),
		zap.Error(err),
	)

	failed := p.shot.Failed()
	if updErr := s.shots.UpdateProcessing(ctx, &failed); updErr != nil {
		log.Error("Failed to mark screenshot failed", zap.String("id", p.shot.ID()), zap.Error(updErr))
	}
	metrics.UploadFilesTotal.WithLabelValues("failed").Inc()
	name := p.shot.Filename()
	return domupload.NewError(name, domupload.ProcessingFailedMessage(name, err), err)
}

// normalizeMIME strips parameters and maps the image/jpg alias.
func normalizeMIME(ct string) string {
	base, _, _ := strings.Cut(ct, ";")
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "image/jpg" {
		return domain.MIMEJPEG
	}
	return base
}
