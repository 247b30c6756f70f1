package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum query length in characters after trimming.
	MaxQueryLength = 500
	DefaultLimit   = 5
	MaxLimit       = 50
)

// Limits bounds the accepted search parameters.
type Limits struct {
	MaxQueryLength int
	DefaultLimit   int
	MaxLimit       int
}

// DefaultLimits returns the stock search limits.
func DefaultLimits() Limits {
	return Limits{MaxQueryLength: MaxQueryLength, DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}
}

// Request is a validated search query.
type Request struct {
	query string
	limit int
}

// New validates and normalizes search parameters.
// The query is trimmed and must be 1..MaxQueryLength chars. A nil limit
// means the default; an explicit limit must be within 1..MaxLimit.
// Zero fields of l fall back to the package defaults.
func New(query string, limit *int, l Limits) (Request, error) {
	l = l.WithDefaults()

	q := strings.TrimSpace(query)
	if q == "" {
		return Request{}, fmt.Errorf("%w: query cannot be empty", domain.ErrInvalidQuery)
	}
	if utf8.RuneCountInString(q) > l.MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (maximum %d characters)", domain.ErrInvalidQuery, l.MaxQueryLength)
	}

	n := l.DefaultLimit
	if limit != nil {
		n = *limit
	}
	if n < 1 || n > l.MaxLimit {
		return Request{}, fmt.Errorf("%w: limit must be a number between 1 and %d", domain.ErrInvalidLimit, l.MaxLimit)
	}

	return Request{query: q, limit: n}, nil
}

// WithDefaults fills zero fields with the package defaults.
func (l Limits) WithDefaults() Limits {
	if l.MaxQueryLength <= 0 {
		l.MaxQueryLength = MaxQueryLength
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = MaxLimit
	}
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = DefaultLimit
	}
	if l.DefaultLimit > l.MaxLimit {
		l.DefaultLimit = l.MaxLimit
	}
	return l
}

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }
