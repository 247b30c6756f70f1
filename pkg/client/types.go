package client

import (
	"time"

	"github.com/kailas-cloud/shotsearch/pkg/relevance"
)

// Screenshot is a stored screenshot record.
type Screenshot struct {
	ID                string `json:"id"`
	Filename          string `json:"filename"`
	ImageURL          string `json:"imageUrl"`
	ContentType       string `json:"contentType"`
	OCRText           string `json:"ocrText"`
	VisualDescription string `json:"visualDescription"`
	UploadedAt        int64  `json:"uploadedAt"`
	FileSize          int64  `json:"fileSize"`
	ProcessingStatus  string `json:"processingStatus"`
}

// Uploaded returns UploadedAt as a time.
func (s Screenshot) Uploaded() time.Time { return time.UnixMilli(s.UploadedAt) }

// SearchResult is a ranked search hit.
type SearchResult struct {
	ID                string              `json:"id"`
	Filename          string              `json:"filename"`
	ImageURL          string              `json:"imageUrl"`
	OCRText           string              `json:"ocrText"`
	VisualDescription string              `json:"visualDescription"`
	UploadedAt        int64               `json:"uploadedAt"`
	FileSize          int64               `json:"fileSize"`
	Confidence        float64             `json:"confidence"`
	MatchType         relevance.MatchType `json:"matchType"`
}

// SearchResponse is the answer to Search.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	Query        string         `json:"query"`
	TotalFound   int            `json:"totalFound"`
	ResponseTime int64          `json:"responseTime"`
}

// BatchInfo summarizes an upload batch.
type BatchInfo struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// UploadResponse is the answer to Upload. Per-file problems are listed in
// Errors; they do not fail the call.
type UploadResponse struct {
	Success        bool         `json:"success"`
	UploadedCount  int          `json:"uploadedCount"`
	TotalFiles     int          `json:"totalFiles"`
	Errors         []string     `json:"errors"`
	ProcessedFiles []Screenshot `json:"processedFiles"`
	BatchInfo      *BatchInfo   `json:"batchInfo"`
	// VisionTokens is the X-Vision-Tokens header, 0 when absent.
	VisionTokens int `json:"-"`
}

// File is one file to upload.
type File struct {
	Name        string
	ContentType string // empty: derived from Name
	Data        []byte
}

// Segment is a highlighted span of text.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Preview is a screenshot's text split into highlighted segments.
type Preview struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	ImageURL          string    `json:"imageUrl"`
	Query             string    `json:"query"`
	OCRText           []Segment `json:"ocrText"`
	VisualDescription []Segment `json:"visualDescription"`
}

// Stats is the library summary.
type Stats struct {
	TotalScreenshots  int64            `json:"totalScreenshots"`
	StorageUsed       int64            `json:"storageUsed"`
	ByStatus          map[string]int64 `json:"byStatus"`
	TotalSearches     int64            `json:"totalSearches"`
	AvgResponseTimeMs float64          `json:"avgResponseTimeMs"`
}

// SearchLogEntry is one logged search.
type SearchLogEntry struct {
	Query        string `json:"query"`
	ResultsCount int    `json:"resultsCount"`
	ResponseTime int64  `json:"responseTime"`
	Timestamp    int64  `json:"timestamp"`
}

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport is vision token usage for a period.
type UsageReport struct {
	Period        UsagePeriod `json:"period"`
	Provider      string      `json:"provider"`
	PeriodStartAt time.Time   `json:"periodStartAt"`
	PeriodEndAt   time.Time   `json:"periodEndAt"`
	Usage         struct {
		VisionRequests int `json:"visionRequests"`
		Tokens         int `json:"tokens"`
	} `json:"usage"`
	Budget struct {
		TokensLimit     int        `json:"tokensLimit"`
		TokensRemaining int        `json:"tokensRemaining"`
		IsExhausted     bool       `json:"isExhausted"`
		ResetsAt        *time.Time `json:"resetsAt"`
	} `json:"budget"`
}

// HealthStatus is the aggregated server health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"`
}
