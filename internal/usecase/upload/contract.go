package upload

import (
	"context"

	"github.com/kailas-cloud/shotsearch/internal/domain"
	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
)

// ScreenshotWriter persists screenshot records.
type ScreenshotWriter interface {
	Insert(ctx context.Context, shot *domshot.Screenshot) error
	UpdateProcessing(ctx context.Context, shot *domshot.Screenshot) error
}

// BlobWriter stores image bytes and addresses them.
type BlobWriter interface {
	Put(ctx context.Context, id string, data []byte, contentType string) error
	Delete(ctx context.Context, id string) error
	URL(id string) string
}

// Describer produces the visual description of an image.
type Describer interface {
	Describe(ctx context.Context, img domain.Image) (domain.DescriptionResult, error)
}

// Recognizer extracts the visible text of an image.
type Recognizer interface {
	Recognize(ctx context.Context, img domain.Image) (string, error)
}

// File is one file of a multipart upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
