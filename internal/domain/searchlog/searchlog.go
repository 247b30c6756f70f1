package searchlog

// Entry is one logged search.
type Entry struct {
	query          string
	resultsCount   int
	responseTimeMs int64
	timestamp      int64 // unix millis
}

// New creates a search log entry.
func New(query string, resultsCount int, responseTimeMs, timestamp int64) Entry {
	return Entry{query: query, resultsCount: resultsCount, responseTimeMs: responseTimeMs, timestamp: timestamp}
}

// Query returns the searched text.
func (e Entry) Query() string { return e.query }

// ResultsCount returns how many results were returned.
func (e Entry) ResultsCount() int { return e.resultsCount }

// ResponseTimeMs returns the request duration in milliseconds.
func (e Entry) ResponseTimeMs() int64 { return e.responseTimeMs }

// Timestamp returns when the search ran (unix millis).
func (e Entry) Timestamp() int64 { return e.timestamp }

// Totals aggregates every logged search.
type Totals struct {
	count           int64
	totalResponseMs int64
}

// NewTotals creates a Totals snapshot.
func NewTotals(count, totalResponseMs int64) Totals {
	return Totals{count: count, totalResponseMs: totalResponseMs}
}

// Count returns the number of logged searches.
func (t Totals) Count() int64 { return t.count }

// TotalResponseMs returns the summed response time.
func (t Totals) TotalResponseMs() int64 { return t.totalResponseMs }

// AvgResponseMs returns the mean response time, zero when nothing was logged.
func (t Totals) AvgResponseMs() float64 {
	if t.count == 0 {
		return 0
	}
	return float64(t.totalResponseMs) / float64(t.count)
}
