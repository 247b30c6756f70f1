package relevance

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scoring weights.
const (
	exactPhraseBonus     = 2.0
	longTokenBoost       = 1.2
	longTokenMinLen      = 4
	maxTokenContribution = 0.8
	lengthPenalty        = 0.9
	longOCRChars         = 1000
	longVisualChars      = 500
	bothFieldsBonus      = 1.1
	maxScore             = 1.0
)

// fieldMatch accumulates the score of one text field.
type fieldMatch struct {
	score   float64
	matched bool
}

// breakdown keeps per-field results so callers can tell "no match" from a low score.
type breakdown struct {
	ocr    fieldMatch
	visual fieldMatch
}

func (b breakdown) matched() bool {
	return b.ocr.matched || b.visual.matched
}

func (b breakdown) relevance() Relevance {
	final := math.Min(math.Max(b.ocr.score, b.visual.score), maxScore)

	switch {
	case b.ocr.matched && b.visual.matched:
		return Relevance{Score: math.Min(final*bothFieldsBonus, maxScore), MatchType: MatchBoth}
	case b.ocr.matched:
		return Relevance{Score: final, MatchType: MatchText}
	case b.visual.matched:
		return Relevance{Score: final, MatchType: MatchVisual}
	default:
		return Relevance{Score: final, MatchType: MatchText}
	}
}

// Score rates how well ocrText and visualDescription match query.
// The score is in [0, 1]; a zero score with MatchText means no match.
func Score(query, ocrText, visualDescription string) Relevance {
	return score(query, Tokenize(query), ocrText, visualDescription).relevance()
}

func score(query string, tokens []string, ocrText, visualDescription string) breakdown {
	if len(tokens) == 0 {
		return breakdown{}
	}
	if strings.TrimSpace(ocrText) == "" && strings.TrimSpace(visualDescription) == "" {
		return breakdown{}
	}

	normQuery := strings.ToLower(query)
	return breakdown{
		ocr:    scoreField(normQuery, tokens, ocrText, longOCRChars),
		visual: scoreField(normQuery, tokens, visualDescription, longVisualChars),
	}
}

// scoreField applies the exact-phrase bonus, per-token term frequency and
// the long-text penalty to a single field.
func scoreField(normQuery string, tokens []string, text string, longText int) fieldMatch {
	norm := strings.ToLower(text)

	var m fieldMatch
	if strings.Contains(norm, normQuery) {
		m.score += exactPhraseBonus
		m.matched = true
	}

	words := splitWords(norm)
	for _, tok := range tokens {
		count := countContaining(words, tok)
		if count == 0 {
			continue
		}
		tf := float64(count) / float64(len(words))
		boost := 1.0
		if utf8.RuneCountInString(tok) >= longTokenMinLen {
			boost = longTokenBoost
		}
		m.score += math.Min(tf*boost, maxTokenContribution)
		m.matched = true
	}

	if utf8.RuneCountInString(text) > longText {
		m.score *= lengthPenalty
	}
	return m
}

// splitWords splits s on whitespace runs. Leading or trailing whitespace
// yields an empty first or last word, and those empty words count toward
// the term-frequency denominator.
func splitWords(s string) []string {
	if s == "" {
		return []string{""}
	}
	words := strings.Fields(s)
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		words = append([]string{""}, words...)
	}
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		words = append(words, "")
	}
	return words
}

func countContaining(words []string, token string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(w, token) {
			n++
		}
	}
	return n
}
