package relevance

import (
	"regexp"
	"strings"
)

// Segment is a piece of highlighted text. Consumers decide how to present matches.
type Segment struct {
	IsMatch bool   `json:"isMatch"`
	Text    string `json:"text"`
}

// Highlight splits text into matching and non-matching segments for query.
// Matches are case-insensitive on the full query or on whole-word tokens;
// the original casing is kept. Empty segments are dropped.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	whole := []Segment{{Text: text}}
	if strings.TrimSpace(query) == "" {
		return whole
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return whole
	}

	re, err := highlightPattern(query, tokens)
	if err != nil {
		return whole
	}

	locs := re.FindAllStringIndex(text, -1)
	segments := make([]Segment, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segments = append(segments, Segment{Text: text[prev:loc[0]]})
		}
		if loc[1] > loc[0] {
			segments = append(segments, Segment{IsMatch: true, Text: text[loc[0]:loc[1]]})
		}
		prev = loc[1]
	}
	if prev < len(text) {
		segments = append(segments, Segment{Text: text[prev:]})
	}
	return segments
}

func highlightPattern(query string, tokens []string) (*regexp.Regexp, error) {
	alts := make([]string, 0, len(tokens)+1)
	alts = append(alts, regexp.QuoteMeta(query))
	for _, tok := range tokens {
		alts = append(alts, `\b`+regexp.QuoteMeta(tok)+`\b`)
	}
	return regexp.Compile(`(?i)(` + strings.Join(alts, "|") + `)`)
}
