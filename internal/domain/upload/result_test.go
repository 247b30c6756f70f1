package upload

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
)

func TestNewOK(t *testing.T) {
	shot := screenshot.Reconstruct("id", "a.png", "", "image/png", "", "", 1, 1, screenshot.StatusCompleted)
	r := NewOK("a.png", shot)
	if r.Filename() != "a.png" {
		t.Errorf("Filename() = %q", r.Filename())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Err() != nil || r.Message() != "" {
		t.Errorf("unexpected error state: %v %q", r.Err(), r.Message())
	}
	if s := r.Screenshot(); s.ID() != "id" {
		t.Errorf("Screenshot().ID() = %q", s.ID())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("boom")
	r := NewError("b.png", "b.png: failed", err)
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v", r.Err())
	}
	if r.Message() != "b.png: failed" {
		t.Errorf("Message() = %q", r.Message())
	}
}

func TestMessages(t *testing.T) {
	if got := InvalidFileMessage("x.gif", 10<<20); got != "x.gif: Invalid file type or size. Must be PNG/JPG/JPEG/WebP under 10MB." {
		t.Errorf("InvalidFileMessage() = %q", got)
	}
	if got := ProcessingFailedMessage("x.png", errors.New("store down")); got != "x.png: Processing failed - store down" {
		t.Errorf("ProcessingFailedMessage() = %q", got)
	}
	if got := ProcessingFailedMessage("x.png", nil); got != "x.png: Processing failed - Unknown error" {
		t.Errorf("ProcessingFailedMessage(nil) = %q", got)
	}
}

func TestSummary(t *testing.T) {
	shot := screenshot.Reconstruct("id", "a.png", "", "", "", "", 1, 1, screenshot.StatusCompleted)
	s := NewSummary([]FileResult{
		NewOK("a.png", shot),
		NewError("b.gif", "b.gif: invalid", nil),
		NewError("c.png", "c.png: failed", errors.New("x")),
	})

	if s.TotalFiles() != 3 || s.UploadedCount() != 1 || s.FailedCount() != 2 {
		t.Errorf("counts: total=%d uploaded=%d failed=%d", s.TotalFiles(), s.UploadedCount(), s.FailedCount())
	}
	if !s.Success() {
		t.Error("Success() = false, want true")
	}
	errs := s.Errors()
	if len(errs) != 2 || errs[0] != "b.gif: invalid" || errs[1] != "c.png: failed" {
		t.Errorf("Errors() = %v", errs)
	}
	if len(s.Screenshots()) != 1 {
		t.Errorf("Screenshots() len = %d", len(s.Screenshots()))
	}
}

func TestSummary_AllFailed(t *testing.T) {
	s := NewSummary([]FileResult{NewError("a", "a: bad", nil)})
	if s.Success() {
		t.Error("Success() = true, want false")
	}
	if len(s.Screenshots()) != 0 {
		t.Error("expected no screenshots")
	}
}
