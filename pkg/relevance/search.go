package relevance

import (
	"math"
	"sort"
	"strings"
)

// Default policy values.
const (
	DefaultLimit              = 5
	DefaultMinScore           = 0.05
	DefaultTieEpsilon         = 0.01
	DefaultFilenameConfidence = 0.5
)

// Policy holds the tunable constants of ranking.
type Policy struct {
	// MinScore is the exclusive inclusion threshold; scores at or below it are noise.
	MinScore float64
	// TieEpsilon is the score distance under which the newer upload wins.
	TieEpsilon float64
	// FilenameFallback lets a filename substring match rescue a record
	// whose text fields did not match at all.
	FilenameFallback bool
	// FilenameConfidence is the flat confidence given by the filename fallback.
	FilenameConfidence float64
}

// DefaultPolicy returns the stock ranking policy with the filename fallback off.
func DefaultPolicy() Policy {
	return Policy{
		MinScore:           DefaultMinScore,
		TieEpsilon:         DefaultTieEpsilon,
		FilenameConfidence: DefaultFilenameConfidence,
	}
}

// Engine ranks records under a fixed policy. The zero value is not usable; call New.
type Engine struct {
	policy Policy
}

// New creates an engine. Negative thresholds are clamped to zero.
func New(p Policy) *Engine {
	if p.MinScore < 0 {
		p.MinScore = 0
	}
	if p.TieEpsilon < 0 {
		p.TieEpsilon = 0
	}
	return &Engine{policy: p}
}

// Policy returns the engine's ranking policy.
func (e *Engine) Policy() Policy { return e.policy }

var defaultEngine = New(DefaultPolicy())

// Search ranks records with the default policy.
func Search(query string, records []Record, limit int) []Result {
	return defaultEngine.Search(query, records, limit)
}

// Search returns at most limit results for query, best first.
// A non-positive limit means DefaultLimit. Input records are not modified.
func (e *Engine) Search(query string, records []Record, limit int) []Result {
	if strings.TrimSpace(query) == "" || len(records) == 0 {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := Tokenize(query)
	normQuery := strings.ToLower(query)

	type hit struct {
		rec *Record
		rel Relevance
	}
	hits := make([]hit, 0, len(records))

	for i := range records {
		r := &records[i]
		if !Eligible(r) || !mayMatch(normQuery, tokens, r) {
			continue
		}

		b := score(query, tokens, r.OCRText, r.VisualDescription)
		rel := b.relevance()
		if e.policy.FilenameFallback && !b.matched() &&
			strings.Contains(strings.ToLower(r.Filename), normQuery) {
			rel = Relevance{Score: e.policy.FilenameConfidence, MatchType: MatchText}
		}

		if rel.Score > e.policy.MinScore {
			hits = append(hits, hit{rec: r, rel: rel})
		}
	}

	// Canonical order first so the near-tie comparison below does not
	// depend on the order the store returned records in.
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.rel.Score != b.rel.Score {
			return a.rel.Score > b.rel.Score
		}
		if a.rec.UploadedAt != b.rec.UploadedAt {
			return a.rec.UploadedAt > b.rec.UploadedAt
		}
		return a.rec.ID < b.rec.ID
	})
	eps := e.policy.TieEpsilon
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if math.Abs(a.rel.Score-b.rel.Score) < eps {
			return a.rec.UploadedAt > b.rec.UploadedAt
		}
		return a.rel.Score > b.rel.Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			ID:                h.rec.ID,
			Filename:          h.rec.Filename,
			ImageURL:          h.rec.ImageURL,
			OCRText:           h.rec.OCRText,
			VisualDescription: h.rec.VisualDescription,
			Confidence:        h.rel.Score,
			UploadedAt:        h.rec.UploadedAt,
			MatchType:         h.rel.MatchType,
			FileSize:          h.rec.FileSize,
		}
	}
	return results
}

// Eligible reports whether r can appear in search results: it must be
// completed and carry some OCR or visual text.
func Eligible(r *Record) bool {
	if r.Status != StatusCompleted {
		return false
	}
	return strings.TrimSpace(r.OCRText) != "" || strings.TrimSpace(r.VisualDescription) != ""
}

// mayMatch is a cheap pre-filter. It keeps every record Score could rate
// above zero, plus filename matches for the fallback.
func mayMatch(normQuery string, tokens []string, r *Record) bool {
	fields := [3]string{
		strings.ToLower(r.OCRText),
		strings.ToLower(r.VisualDescription),
		strings.ToLower(r.Filename),
	}
	for _, f := range fields {
		if strings.Contains(f, normQuery) {
			return true
		}
	}
	for _, tok := range tokens {
		for _, f := range fields {
			if strings.Contains(f, tok) {
				return true
			}
		}
	}
	return false
}
