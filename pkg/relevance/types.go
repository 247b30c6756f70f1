package relevance

// Status is the processing state of a record. Only completed records are searchable.
type Status string

// Record processing states.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// MatchType reports which text field(s) produced a match.
type MatchType string

// Match types.
const (
	MatchText   MatchType = "text"
	MatchVisual MatchType = "visual"
	MatchBoth   MatchType = "both"
)

// IsValid checks if the match type is one of the known values.
func (m MatchType) IsValid() bool {
	return m == MatchText || m == MatchVisual || m == MatchBoth
}

// Record is a candidate screenshot. The engine only reads it.
type Record struct {
	ID                string
	Filename          string
	ImageURL          string
	OCRText           string
	VisualDescription string
	UploadedAt        int64 // epoch milliseconds
	FileSize          int64
	Status            Status
}

// Result is a ranked search hit built fresh for every query.
type Result struct {
	ID                string    `json:"id"`
	Filename          string    `json:"filename"`
	ImageURL          string    `json:"imageUrl"`
	OCRText           string    `json:"ocrText"`
	VisualDescription string    `json:"visualDescription"`
	Confidence        float64   `json:"confidence"`
	UploadedAt        int64     `json:"uploadedAt"`
	MatchType         MatchType `json:"matchType"`
	FileSize          int64     `json:"fileSize"`
}

// Relevance is the outcome of scoring one record against a query.
type Relevance struct {
	Score     float64
	MatchType MatchType
}
