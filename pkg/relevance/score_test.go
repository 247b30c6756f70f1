package relevance

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

const floatTol = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTol
}

func TestScore_NoTokens(t *testing.T) {
	got := Score("the of", "the of everything", "")
	if got.Score != 0 || got.MatchType != MatchText {
		t.Errorf("expected {0, text}, got %+v", got)
	}
}

func TestScore_BlankFields(t *testing.T) {
	got := Score("login", "   ", "\n")
	if got.Score != 0 || got.MatchType != MatchText {
		t.Errorf("expected {0, text}, got %+v", got)
	}
}

func TestScore_NoMatch(t *testing.T) {
	got := Score("invoice", "welcome back", "a blue button")
	if got.Score != 0 || got.MatchType != MatchText {
		t.Errorf("expected {0, text}, got %+v", got)
	}
}

func TestScore_ExactPhraseBeatsPartial(t *testing.T) {
	exact := Score("login form", "Please use the login form below", "")
	partial := Score("login form", "Submit the form now", "")

	if exact.Score <= partial.Score {
		t.Errorf("exact phrase %v should beat partial %v", exact.Score, partial.Score)
	}
	if !almostEqual(exact.Score, 1.0) {
		t.Errorf("exact phrase score = %v, want 1.0", exact.Score)
	}
	// "form" (len 4) boosted: 1/4 * 1.2
	if !almostEqual(partial.Score, 0.3) {
		t.Errorf("partial score = %v, want 0.3", partial.Score)
	}
}

func TestScore_ShortTokenNotBoosted(t *testing.T) {
	// "tab" (len 3): 1/5 * 1.0
	got := Score("tab xyzzy", "open a new tab here", "")
	if !almostEqual(got.Score, 0.2) {
		t.Errorf("score = %v, want 0.2", got.Score)
	}
}

func TestScore_TokenContributionCapped(t *testing.T) {
	// "menu" in 1 of 1 word: min(1.2, 0.8); "zzz" absent.
	got := Score("menu zzz", "menu", "")
	if !almostEqual(got.Score, 0.8) {
		t.Errorf("score = %v, want 0.8", got.Score)
	}
}

func TestScore_SubstringWordMatch(t *testing.T) {
	// "log" is contained in "login" and "logout": 2/4 * 1.0
	got := Score("log qqq", "login then logout again", "")
	if !almostEqual(got.Score, 0.5) {
		t.Errorf("score = %v, want 0.5", got.Score)
	}
}

func TestScore_EdgeWhitespaceCountsAsWord(t *testing.T) {
	tests := []struct {
		name string
		ocr  string
		want float64
	}{
		// "login" in 1 of 2 words: 1/2 * 1.2
		{"no edge whitespace", "login page", 0.6},
		// a trailing newline adds an empty word: 1/3 * 1.2
		{"trailing newline", "login page\n", 0.4},
		{"leading space", " login page", 0.4},
		// empty words at both ends: 1/4 * 1.2
		{"both ends", "\tlogin page ", 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score("login form", tt.ocr, "")
			if !almostEqual(got.Score, tt.want) {
				t.Errorf("Score = %v, want %v", got.Score, tt.want)
			}
		})
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"a b", []string{"a", "b"}},
		{"a  \n b", []string{"a", "b"}},
		{" a", []string{"", "a"}},
		{"a ", []string{"a", ""}},
		{"   ", []string{"", ""}},
	}
	for _, tt := range tests {
		got := splitWords(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitWords(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScore_LengthPenalty(t *testing.T) {
	short := "menu " + strings.Repeat("x ", 3)
	long := "menu " + strings.Repeat("x ", 3) + strings.Repeat("y", 1000)

	s := Score("menu qqq", short, "")
	l := Score("menu qqq", long, "")
	// short ends in a space, so it splits into 5 words: 1/5 * 1.2 = 0.24.
	// long: 1/5 * 1.2 * 0.9 = 0.216
	if !almostEqual(s.Score, 0.24) {
		t.Errorf("short score = %v, want 0.24", s.Score)
	}
	if !almostEqual(l.Score, 0.216) {
		t.Errorf("long score = %v, want 0.216", l.Score)
	}

	visual := Score("menu qqq", "", "menu "+strings.Repeat("x ", 3)+strings.Repeat("y", 500))
	if !almostEqual(visual.Score, 0.216) {
		t.Errorf("long visual score = %v, want 0.216", visual.Score)
	}
}

func TestScore_MatchTypes(t *testing.T) {
	tests := []struct {
		name   string
		ocr    string
		visual string
		want   MatchType
	}{
		{"both", "dashboard", "a dashboard view", MatchBoth},
		{"text only", "dashboard", "blue button", MatchText},
		{"visual only", "welcome", "dashboard with charts", MatchVisual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score("dashboard", tt.ocr, tt.visual)
			if got.MatchType != tt.want {
				t.Errorf("match type = %s, want %s", got.MatchType, tt.want)
			}
			if got.Score <= 0 || got.Score > 1 {
				t.Errorf("score %v out of (0, 1]", got.Score)
			}
		})
	}
}

func TestScore_BothBonus(t *testing.T) {
	// ocr: 1/4 * 1.2 = 0.3; visual: 1/5 * 1.2 = 0.24; both -> 0.3 * 1.1
	got := Score("menu qqq", "menu a b c", "menu d e f g")
	if got.MatchType != MatchBoth {
		t.Fatalf("match type = %s, want both", got.MatchType)
	}
	if !almostEqual(got.Score, 0.33) {
		t.Errorf("score = %v, want 0.33", got.Score)
	}
}

func TestScore_Deterministic(t *testing.T) {
	a := Score("Save Settings", "Click Save to store your settings", "a settings panel")
	b := Score("Save Settings", "Click Save to store your settings", "a settings panel")
	if a != b {
		t.Errorf("expected identical results, got %+v and %+v", a, b)
	}
}
