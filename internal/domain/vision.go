package domain

import (
	"context"
	"path/filepath"
	"strings"
)

// Image is raw uploaded image bytes with their MIME type.
type Image struct {
	Data []byte
	MIME string
}

// Describer produces a short visual description of a screenshot.
type Describer interface {
	Describe(ctx context.Context, img Image) (DescriptionResult, error)
}

// Recognizer extracts visible text from a screenshot.
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (string, error)
}

// Transcriber extracts visible text from a screenshot and reports the
// provider tokens spent doing so.
type Transcriber interface {
	Transcribe(ctx context.Context, img Image) (DescriptionResult, error)
}

// HealthChecker verifies vision provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// DescriptionResult carries the description and token usage through the decorator chain.
type DescriptionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Supported image MIME types.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEWebP = "image/webp"
)

var extMIME = map[string]string{
	".png":  MIMEPNG,
	".jpg":  MIMEJPEG,
	".jpeg": MIMEJPEG,
	".webp": MIMEWebP,
}

// MIMEFromFilename maps a file extension to a supported image MIME type.
// ok is false for anything but png, jpg, jpeg and webp.
func MIMEFromFilename(name string) (mime string, ok bool) {
	mime, ok = extMIME[strings.ToLower(filepath.Ext(name))]
	return mime, ok
}

// IsSupportedMIME reports whether mime is an accepted upload type.
// Parameters such as "; charset" are ignored.
func IsSupportedMIME(mime string) bool {
	base, _, _ := strings.Cut(mime, ";")
	switch strings.ToLower(strings.TrimSpace(base)) {
	case MIMEPNG, MIMEJPEG, "image/jpg", MIMEWebP:
		return true
	}
	return false
}

// Blob is stored image bytes with their MIME type.
type Blob struct {
	Data        []byte
	ContentType string
}
