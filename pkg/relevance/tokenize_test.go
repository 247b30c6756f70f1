package relevance

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", []string{}},
		{"only stop words", "the and of", []string{}},
		{"lowercases", "Login Form", []string{"login", "form"}},
		{"punctuation becomes space", "error: 404!not-found", []string{"error", "404", "not", "found"}},
		{"drops single chars", "a b cd", []string{"cd"}},
		{"keeps duplicates in order", "save Save file", []string{"save", "save", "file"}},
		{"underscore is a word char", "user_name field", []string{"user_name", "field"}},
		{"collapses whitespace", "  dark \t mode\n", []string{"dark", "mode"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.query)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestIsStopWord(t *testing.T) {
	for _, w := range []string{"the", "should", "being", "with"} {
		if !IsStopWord(w) {
			t.Errorf("expected %q to be a stop word", w)
		}
	}
	for _, w := range []string{"login", "dashboard", "The"} {
		if IsStopWord(w) {
			t.Errorf("expected %q not to be a stop word", w)
		}
	}
}
