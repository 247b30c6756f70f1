package upload

import (
	"fmt"

	"github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
)

// FileStatus is the processing outcome of a single uploaded file.
type FileStatus string

// File status values.
const (
	StatusOK    FileStatus = "ok"
	StatusError FileStatus = "error"
)

// InvalidFileMessage is the per-file error for a rejected type or size.
func InvalidFileMessage(filename string, maxBytes int64) string {
	return fmt.Sprintf("%s: Invalid file type or size. Must be PNG/JPG/JPEG/WebP under %dMB.", filename, maxBytes>>20)
}

// ProcessingFailedMessage is the per-file error for a failure after validation.
func ProcessingFailedMessage(filename string, err error) string {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	return fmt.Sprintf("%s: Processing failed - %s", filename, msg)
}

// FileResult is the outcome of processing one uploaded file.
type FileResult struct {
	filename string
	status   FileStatus
	shot     screenshot.Screenshot
	message  string
	err      error
}

// NewOK creates a successful file result.
func NewOK(filename string, shot screenshot.Screenshot) FileResult {
	return FileResult{filename: filename, status: StatusOK, shot: shot}
}

// NewError creates a failed file result with its client-facing message.
func NewError(filename, message string, err error) FileResult {
	return FileResult{filename: filename, status: StatusError, message: message, err: err}
}

// Filename returns the uploaded file name.
func (r FileResult) Filename() string { return r.filename }

// Status returns the processing outcome.
func (r FileResult) Status() FileStatus { return r.status }

// Screenshot returns the stored screenshot of a successful result.
func (r FileResult) Screenshot() screenshot.Screenshot { return r.shot }

// Message returns the client-facing error message, if any.
func (r FileResult) Message() string { return r.message }

// Err returns the underlying error, if any.
func (r FileResult) Err() error { return r.err }

// Summary is the outcome of a whole upload batch. Results keep upload order.
type Summary struct {
	results []FileResult
}

// NewSummary creates a batch summary.
func NewSummary(results []FileResult) Summary {
	return Summary{results: results}
}

// Results returns every per-file result in upload order.
func (s Summary) Results() []FileResult { return s.results }

// TotalFiles returns the number of files in the batch.
func (s Summary) TotalFiles() int { return len(s.results) }

// UploadedCount returns the number of files stored and processed.
func (s Summary) UploadedCount() int {
	n := 0
	for _, r := range s.results {
		if r.status == StatusOK {
			n++
		}
	}
	return n
}

// FailedCount returns the number of files that failed.
func (s Summary) FailedCount() int { return len(s.results) - s.UploadedCount() }

// Success reports whether at least one file was uploaded.
func (s Summary) Success() bool { return s.UploadedCount() > 0 }

// Errors returns the per-file error messages in upload order.
func (s Summary) Errors() []string {
	msgs := make([]string, 0, s.FailedCount())
	for _, r := range s.results {
		if r.status == StatusError {
			msgs = append(msgs, r.message)
		}
	}
	return msgs
}

// Screenshots returns the successfully stored screenshots in upload order.
func (s Summary) Screenshots() []screenshot.Screenshot {
	shots := make([]screenshot.Screenshot, 0, s.UploadedCount())
	for _, r := range s.results {
		if r.status == StatusOK {
			shots = append(shots, r.shot)
		}
	}
	return shots
}
