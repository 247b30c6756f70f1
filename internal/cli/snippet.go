package cli

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/kailas-cloud/shotsearch/pkg/relevance"
)

// snippetWidth is the number of characters shown per text field.
const snippetWidth = 160

// snippet highlights query in text and cuts a window of width runes
// around the first match. Whitespace runs collapse to one space.
func snippet(text, query string, width int) []relevance.Segment {
	text = strings.Join(strings.Fields(text), " ")
	segs := relevance.Highlight(text, query)
	out, cutStart, cutEnd := window(segs, width)
	if cutStart {
		out = append([]relevance.Segment{{Text: "…"}}, out...)
	}
	if cutEnd {
		out = append(out, relevance.Segment{Text: "…"})
	}
	return out
}

// window keeps at most width runes of segs. The first match, if any,
// starts a third of the way into the window.
func window(segs []relevance.Segment, width int) (out []relevance.Segment, cutStart, cutEnd bool) {
	total, firstMatch := 0, -1
	for _, s := range segs {
		if s.IsMatch && firstMatch < 0 {
			firstMatch = total
		}
		total += utf8.RuneCountInString(s.Text)
	}
	if total <= width {
		return segs, false, false
	}

	start := 0
	if firstMatch > width/3 {
		start = firstMatch - width/3
	}
	end := start + width
	if end > total {
		end = total
		start = max(0, end-width)
	}

	pos := 0
	for _, s := range segs {
		r := []rune(s.Text)
		segStart, segEnd := pos, pos+len(r)
		pos = segEnd

		lo, hi := max(segStart, start), min(segEnd, end)
		if lo >= hi {
			continue
		}
		out = append(out, relevance.Segment{IsMatch: s.IsMatch, Text: string(r[lo-segStart : hi-segStart])})
	}
	return out, start > 0, end < total
}

func renderSegments(segs []relevance.Segment, base lipgloss.Style) string {
	var b strings.Builder
	for _, s := range segs {
		if s.IsMatch {
			b.WriteString(styles.Match.Render(s.Text))
		} else {
			b.WriteString(base.Render(s.Text))
		}
	}
	return b.String()
}
