package relevance

import (
	"reflect"
	"testing"
)

func TestHighlight(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  []Segment
	}{
		{
			name:  "preserves casing",
			text:  "Login Failed",
			query: "login",
			want:  []Segment{{IsMatch: true, Text: "Login"}, {Text: " Failed"}},
		},
		{
			name:  "blank query",
			text:  "Login Failed",
			query: "  ",
			want:  []Segment{{Text: "Login Failed"}},
		},
		{
			name:  "only stop words",
			text:  "the end",
			query: "the",
			want:  []Segment{{Text: "the end"}},
		},
		{
			name:  "full phrase and tokens",
			text:  "Open settings page or page settings",
			query: "settings page",
			want: []Segment{
				{Text: "Open "},
				{IsMatch: true, Text: "settings page"},
				{Text: " or "},
				{IsMatch: true, Text: "page"},
				{Text: " "},
				{IsMatch: true, Text: "settings"},
			},
		},
		{
			name:  "token needs word boundary",
			text:  "formula form",
			query: "form xyz",
			want:  []Segment{{Text: "formula "}, {IsMatch: true, Text: "form"}},
		},
		{
			name:  "regex metacharacters escaped",
			text:  "Total (USD): 5",
			query: "(usd)",
			want:  []Segment{{Text: "Total "}, {IsMatch: true, Text: "(USD)"}, {Text: ": 5"}},
		},
		{
			name:  "no match",
			text:  "nothing here",
			query: "invoice",
			want:  []Segment{{Text: "nothing here"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Highlight(%q, %q) = %+v, want %+v", tt.text, tt.query, got, tt.want)
			}
		})
	}
}

func TestHighlight_EmptyText(t *testing.T) {
	if got := Highlight("", "login"); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
