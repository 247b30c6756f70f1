package relevance

import (
	"regexp"
	"strings"
)

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// stopWords never become query tokens.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {},
}

// IsStopWord reports whether w (already lower-cased) is filtered out of queries.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Tokenize lower-cases the query, turns punctuation into spaces and splits on
// whitespace. Single-character tokens and stop words are dropped; order and
// duplicates are kept.
func Tokenize(query string) []string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(query), " ")
	fields := strings.Fields(cleaned)

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 1 || IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
