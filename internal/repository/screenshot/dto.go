package screenshot

import (
	"fmt"
	"strconv"

	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
)

// Hash field names of a stored screenshot record.
const (
	fieldID          = "id"
	fieldFilename    = "filename"
	fieldImageURL    = "image_url"
	fieldContentType = "content_type"
	fieldOCRText     = "ocr_text"
	fieldVisual      = "visual_description"
	fieldUploadedAt  = "uploaded_at"
	fieldFileSize    = "file_size"
	fieldStatus      = "status"
)

// buildHashFields flattens a Screenshot into HSET fields.
func buildHashFields(s *domshot.Screenshot) map[string]string {
	return map[string]string{
		fieldID:          s.ID(),
		fieldFilename:    s.Filename(),
		fieldImageURL:    s.ImageURL(),
		fieldContentType: s.ContentType(),
		fieldOCRText:     s.OCRText(),
		fieldVisual:      s.VisualDescription(),
		fieldUploadedAt:  strconv.FormatInt(s.UploadedAt(), 10),
		fieldFileSize:    strconv.FormatInt(s.FileSize(), 10),
		fieldStatus:      string(s.Status()),
	}
}

// parseHashFields hydrates a Screenshot from a stored hash.
func parseHashFields(id string, m map[string]string) (domshot.Screenshot, error) {
	uploadedAt, err := strconv.ParseInt(m[fieldUploadedAt], 10, 64)
	if err != nil {
		return domshot.Screenshot{}, fmt.Errorf("parse %s of %s: %w", fieldUploadedAt, id, err)
	}
	size, err := strconv.ParseInt(m[fieldFileSize], 10, 64)
	if err != nil {
		return domshot.Screenshot{}, fmt.Errorf("parse %s of %s: %w", fieldFileSize, id, err)
	}
	status, err := domshot.ParseStatus(m[fieldStatus])
	if err != nil {
		return domshot.Screenshot{}, fmt.Errorf("parse %s of %s: %w", fieldStatus, id, err)
	}

	return domshot.Reconstruct(
		id, m[fieldFilename], m[fieldImageURL], m[fieldContentType],
		m[fieldOCRText], m[fieldVisual], uploadedAt, size, status,
	), nil
}
