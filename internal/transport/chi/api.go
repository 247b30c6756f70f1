package chi

import (
	"time"

	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
	"github.com/kailas-cloud/shotsearch/pkg/relevance"
)

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

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

// SearchResponse is the body of GET /api/search, errors included.
type SearchResponse struct {
	Error        string         `json:"error,omitempty"`
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

// UploadResponse is the body of POST /api/upload.
type UploadResponse struct {
	Success        bool         `json:"success"`
	UploadedCount  int          `json:"uploadedCount"`
	TotalFiles     int          `json:"totalFiles,omitempty"`
	Errors         []string     `json:"errors"`
	ProcessedFiles []Screenshot `json:"processedFiles,omitempty"`
	BatchInfo      *BatchInfo   `json:"batchInfo,omitempty"`
}

// ScreenshotListResponse is the body of GET /api/screenshots.
type ScreenshotListResponse struct {
	Error       string       `json:"error,omitempty"`
	Screenshots []Screenshot `json:"screenshots"`
	Total       int          `json:"total"`
}

// DeleteResponse is the body of DELETE /api/screenshots/{id}.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Segment is a highlighted span of text.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// PreviewResponse is the body of GET /api/screenshots/{id}/preview.
type PreviewResponse struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	ImageURL          string    `json:"imageUrl"`
	Query             string    `json:"query"`
	OCRText           []Segment `json:"ocrText"`
	VisualDescription []Segment `json:"visualDescription"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
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

// SearchLogResponse is the body of GET /api/searches.
type SearchLogResponse struct {
	Searches []SearchLogEntry `json:"searches"`
	Total    int              `json:"total"`
}

// UsageMetrics is vision usage within a period.
type UsageMetrics struct {
	VisionRequests int `json:"visionRequests"`
	Tokens         int `json:"tokens"`
}

// BudgetStatus is the vision token budget within a period.
type BudgetStatus struct {
	TokensLimit     int        `json:"tokensLimit"`
	TokensRemaining int        `json:"tokensRemaining"`
	IsExhausted     bool       `json:"isExhausted"`
	ResetsAt        *time.Time `json:"resetsAt,omitempty"`
}

// UsageResponse is the body of GET /api/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider,omitempty"`
	PeriodStartAt time.Time    `json:"periodStartAt"`
	PeriodEndAt   time.Time    `json:"periodEndAt"`
	Usage         UsageMetrics `json:"usage"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func screenshotToAPI(s *domshot.Screenshot) Screenshot {
	return Screenshot{
		ID:                s.ID(),
		Filename:          s.Filename(),
		ImageURL:          s.ImageURL(),
		ContentType:       s.ContentType(),
		OCRText:           s.OCRText(),
		VisualDescription: s.VisualDescription(),
		UploadedAt:        s.UploadedAt(),
		FileSize:          s.FileSize(),
		ProcessingStatus:  string(s.Status()),
	}
}

func screenshotsToAPI(shots []domshot.Screenshot) []Screenshot {
	out := make([]Screenshot, len(shots))
	for i := range shots {
		out[i] = screenshotToAPI(&shots[i])
	}
	return out
}

func resultsToAPI(results []relevance.Result) []SearchResult {
	out := make([]SearchResult, len(results))
	for i, it := range domshot.Hits(results) {
		v := it.View()
		out[i] = SearchResult{
			ID:                v.ID,
			Filename:          v.Filename,
			ImageURL:          v.ImageURL,
			OCRText:           v.OCRText,
			VisualDescription: v.VisualDescription,
			UploadedAt:        v.UploadedAt,
			FileSize:          v.FileSize,
			Confidence:        results[i].Confidence,
			MatchType:         results[i].MatchType,
		}
	}
	return out
}

func segmentsToAPI(segs []relevance.Segment) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{Text: s.Text, Match: s.IsMatch}
	}
	return out
}

func previewToAPI(p *domshot.Preview) PreviewResponse {
	return PreviewResponse{
		ID:                p.View.ID,
		Filename:          p.View.Filename,
		ImageURL:          p.View.ImageURL,
		Query:             p.Query,
		OCRText:           segmentsToAPI(p.OCR),
		VisualDescription: segmentsToAPI(p.Visual),
	}
}

func searchLogToAPI(entries []domlog.Entry) []SearchLogEntry {
	out := make([]SearchLogEntry, len(entries))
	for i, e := range entries {
		out[i] = SearchLogEntry{
			Query:        e.Query(),
			ResultsCount: e.ResultsCount(),
			ResponseTime: e.ResponseTimeMs(),
			Timestamp:    e.Timestamp(),
		}
	}
	return out
}
