package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrScreenshotNotFound signals a missing screenshot record.
	ErrScreenshotNotFound = errors.New("screenshot not found")
	// ErrFileNotFound signals missing image bytes.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidQuery signals an empty or oversized search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidLimit signals an out-of-range result limit.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidScreenshot signals invalid screenshot metadata.
	ErrInvalidScreenshot = errors.New("invalid screenshot")

	// ErrInvalidUpload signals a malformed upload request.
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrBatchTooLarge signals an upload with too many files.
	ErrBatchTooLarge = errors.New("too many files")
	// ErrUnsupportedMedia signals a file type other than PNG/JPG/JPEG/WebP.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrFileTooLarge signals a file over the upload size cap.
	ErrFileTooLarge = errors.New("file too large")

	// ErrVisionQuotaExceeded signals an exhausted vision token budget.
	ErrVisionQuotaExceeded = errors.New("vision quota exceeded")
	// ErrVisionProviderError signals a vision provider failure.
	ErrVisionProviderError = errors.New("vision provider error")
	// ErrStoreUnavailable signals that the record store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FileError ties a per-file failure to the uploaded file name.
type FileError struct {
	Filename string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// NewFileError wraps err with the file it belongs to.
func NewFileError(filename string, err error) error {
	return &FileError{Filename: filename, Err: err}
}
