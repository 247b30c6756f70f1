package metrics

// Metrics holds vision API usage for a time period.
type Metrics struct {
	visionRequests int
	tokens         int
}

// New creates a Metrics snapshot.
func New(requests, tokens int) Metrics {
	return Metrics{visionRequests: requests, tokens: tokens}
}

// VisionRequests returns the number of vision API calls.
func (m Metrics) VisionRequests() int { return m.visionRequests }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int { return m.tokens }
