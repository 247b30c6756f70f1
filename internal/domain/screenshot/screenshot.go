package screenshot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	"github.com/kailas-cloud/shotsearch/pkg/relevance"
)

// MaxFilenameLength is the maximum filename length after trimming.
const MaxFilenameLength = 255

// Status is the processing state of a screenshot.
type Status string

// Processing states.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsValid checks if the status is one of the known values.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

// ParseStatus converts a stored value into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("unknown processing status %q", s)
	}
	return st, nil
}

// Statuses lists every processing state in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusCompleted, StatusFailed}
}

// Screenshot is the screenshot aggregate (immutable value object).
type Screenshot struct {
	id                string
	filename          string
	imageURL          string
	contentType       string
	ocrText           string
	visualDescription string
	uploadedAt        int64 // unix millis
	fileSize          int64
	status            Status
}

// New validates and creates a pending Screenshot.
// Filename: 1-255 chars after trim. File size: > 0.
func New(id, filename, imageURL, contentType string, fileSize, uploadedAt int64) (Screenshot, error) {
	if id == "" {
		return Screenshot{}, fmt.Errorf("%w: id is required", domain.ErrInvalidScreenshot)
	}
	name := strings.TrimSpace(filename)
	if name == "" {
		return Screenshot{}, fmt.Errorf("%w: filename is required", domain.ErrInvalidScreenshot)
	}
	if utf8.RuneCountInString(name) > MaxFilenameLength {
		return Screenshot{}, fmt.Errorf("%w: filename too long (max %d)", domain.ErrInvalidScreenshot, MaxFilenameLength)
	}
	if fileSize <= 0 {
		return Screenshot{}, fmt.Errorf("%w: file size must be positive", domain.ErrInvalidScreenshot)
	}

	return Screenshot{
		id:          id,
		filename:    name,
		imageURL:    imageURL,
		contentType: contentType,
		uploadedAt:  uploadedAt,
		fileSize:    fileSize,
		status:      StatusPending,
	}, nil
}

// Reconstruct creates a Screenshot without validation (storage hydration).
func Reconstruct(
	id, filename, imageURL, contentType, ocrText, visualDescription string,
	uploadedAt, fileSize int64, status Status,
) Screenshot {
	return Screenshot{
		id: id, filename: filename, imageURL: imageURL, contentType: contentType,
		ocrText: ocrText, visualDescription: visualDescription,
		uploadedAt: uploadedAt, fileSize: fileSize, status: status,
	}
}

// ID returns the screenshot identifier.
func (s *Screenshot) ID() string { return s.id }

// Filename returns the original file name.
func (s *Screenshot) Filename() string { return s.filename }

// ImageURL returns the URL the image bytes are served from.
func (s *Screenshot) ImageURL() string { return s.imageURL }

// ContentType returns the image MIME type.
func (s *Screenshot) ContentType() string { return s.contentType }

// OCRText returns the recognized text, possibly empty.
func (s *Screenshot) OCRText() string { return s.ocrText }

// VisualDescription returns the generated description, possibly empty.
func (s *Screenshot) VisualDescription() string { return s.visualDescription }

// UploadedAt returns the upload timestamp (unix millis).
func (s *Screenshot) UploadedAt() int64 { return s.uploadedAt }

// FileSize returns the image size in bytes.
func (s *Screenshot) FileSize() int64 { return s.fileSize }

// Status returns the processing state.
func (s *Screenshot) Status() Status { return s.status }

// Processed returns a copy with the extracted texts and the completed status.
func (s *Screenshot) Processed(ocrText, visualDescription string) Screenshot {
	c := *s
	c.ocrText = ocrText
	c.visualDescription = visualDescription
	c.status = StatusCompleted
	return c
}

// Failed returns a copy in the failed status.
func (s *Screenshot) Failed() Screenshot {
	c := *s
	c.status = StatusFailed
	return c
}

// Record projects the screenshot into a search candidate.
func (s *Screenshot) Record() relevance.Record {
	return relevance.Record{
		ID:                s.id,
		Filename:          s.filename,
		ImageURL:          s.imageURL,
		OCRText:           s.ocrText,
		VisualDescription: s.visualDescription,
		UploadedAt:        s.uploadedAt,
		FileSize:          s.fileSize,
		Status:            relevance.Status(s.status),
	}
}

// Records projects a list of screenshots into search candidates.
func Records(shots []Screenshot) []relevance.Record {
	out := make([]relevance.Record, len(shots))
	for i := range shots {
		out[i] = shots[i].Record()
	}
	return out
}
