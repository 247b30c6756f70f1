// Package ocr extracts searchable text from screenshots. Images are
// converted to grayscale before they reach the recognizer, and failures
// degrade to empty text so a screenshot is never lost to OCR.
package ocr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	"github.com/kailas-cloud/shotsearch/internal/metrics"
)

// Worker defaults.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 2
)

// ErrTerminated is returned by Recognize after Terminate.
var ErrTerminated = errors.New("ocr worker terminated")

// Worker runs text recognition with bounded concurrency and a per-call
// timeout. It is safe for concurrent use.
type Worker struct {
	recognizer domain.Recognizer
	timeout    time.Duration
	grayscale  bool
	logger     *zap.Logger

	sem       chan struct{}
	done      chan struct{}
	terminate sync.Once
}

// Option configures a Worker.
type Option func(*Worker)

// WithTimeout bounds every recognition. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithConcurrency caps in-flight recognitions. Non-positive values are ignored.
func WithConcurrency(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.sem = make(chan struct{}, n)
		}
	}
}

// WithGrayscale toggles the grayscale preprocessing step (on by default).
func WithGrayscale(on bool) Option {
	return func(w *Worker) { w.grayscale = on }
}

// WithLogger sets the logger used for degraded recognitions.
func WithLogger(l *zap.Logger) Option {
	return func(w *Worker) { w.logger = l }
}

// NewWorker creates a worker around recognizer.
func NewWorker(recognizer domain.Recognizer, opts ...Option) *Worker {
	w := &Worker{
		recognizer: recognizer,
		timeout:    DefaultTimeout,
		grayscale:  true,
		logger:     zap.NewNop(),
		sem:        make(chan struct{}, DefaultConcurrency),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Recognize returns the trimmed text visible in img. Recognition errors
// and timeouts yield "" and are logged; the only error is ErrTerminated.
// Cancellation of ctx also yields "".
func (w *Worker) Recognize(ctx context.Context, img domain.Image) (string, error) {
	select {
	case <-w.done:
		return "", ErrTerminated
	default:
	}

	select {
	case w.sem <- struct{}{}:
		defer func() { <-w.sem }()
	case <-w.done:
		return "", ErrTerminated
	case <-ctx.Done():
		metrics.OCRRequestsTotal.WithLabelValues("timeout").Inc()
		return "", nil
	}

	start := time.Now()
	text, status := w.recognize(ctx, img)
	metrics.OCRDuration.Observe(time.Since(start).Seconds())
	metrics.OCRRequestsTotal.WithLabelValues(status).Inc()
	return text, nil
}

func (w *Worker) recognize(ctx context.Context, img domain.Image) (string, string) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	// Stop the call early if the worker is terminated mid-flight.
	go func() {
		select {
		case <-w.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	input := img
	if w.grayscale {
		gray, err := toGrayscale(img)
		if err != nil {
			w.logger.Debug("Grayscale conversion skipped", zap.String("mime", img.MIME), zap.Error(err))
		} else {
			input = gray
		}
	}

	text, err := w.recognizer.Recognize(ctx, input)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			w.logger.Warn("OCR timed out", zap.Duration("timeout", w.timeout))
			return "", "timeout"
		}
		w.logger.Warn("OCR failed", zap.Error(err))
		return "", "error"
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", "empty"
	}
	return text, "success"
}

// Terminate stops the worker. In-flight recognitions are canceled and
// later calls fail with ErrTerminated. Safe to call more than once.
func (w *Worker) Terminate() {
	w.terminate.Do(func() { close(w.done) })
}
