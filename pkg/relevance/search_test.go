package relevance

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func completed(id string, uploadedAt int64, ocr, visual string) Record {
	return Record{
		ID:                id,
		Filename:          id + ".png",
		ImageURL:          "/api/files/" + id,
		OCRText:           ocr,
		VisualDescription: visual,
		UploadedAt:        uploadedAt,
		FileSize:          1024,
		Status:            StatusCompleted,
	}
}

func fixture() []Record {
	return []Record{
		completed("r1", 1000, "Welcome to the User Dashboard. Sign In below.", "blue login form with email field"),
		completed("r2", 2000, "", "red error banner"),
		completed("r3", 3000, "Login failed: invalid password", "error dialog over login form"),
		completed("r4", 4000, "Settings saved", "dark mode settings page"),
		completed("r5", 5000, "Submit the form now", ""),
		completed("r6", 6000, "Dashboard overview with weekly charts", "analytics dashboard"),
		completed("r7", 7000, "Inbox (3) new messages", "mail client with sidebar"),
		completed("r8", 8000, "login", ""),
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Search(q, fixture(), 5)
		if got == nil || len(got) != 0 {
			t.Errorf("Search(%q) = %v, want empty", q, got)
		}
	}
}

func TestSearch_NoRecords(t *testing.T) {
	got := Search("login", nil, 5)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func TestSearch_ConcreteScenario(t *testing.T) {
	records := []Record{
		completed("first", 1000, "Welcome to the User Dashboard. Sign In below.", "blue login form with email field"),
		completed("second", 2000, "", "red error banner"),
	}

	got := Search("dashboard", records, 5)
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].ID != "first" {
		t.Errorf("expected first record, got %s", got[0].ID)
	}
	if got[0].MatchType != MatchText {
		t.Errorf("match type = %s, want text", got[0].MatchType)
	}
	if got[0].Confidence <= DefaultMinScore || got[0].Confidence > 1 {
		t.Errorf("confidence %v out of range", got[0].Confidence)
	}
}

func TestSearch_ExcludesIneligible(t *testing.T) {
	failed := completed("failed", 9000, "login", "login")
	failed.Status = StatusFailed
	pending := completed("pending", 9001, "login", "login")
	pending.Status = StatusPending
	blank := completed("blank", 9002, "  ", "")
	blank.Filename = "login.png"

	records := append(fixture(), failed, pending, blank)
	got := New(Policy{MinScore: DefaultMinScore, TieEpsilon: DefaultTieEpsilon, FilenameFallback: true, FilenameConfidence: 0.5}).
		Search("login", records, 50)

	for _, r := range got {
		switch r.ID {
		case "failed", "pending", "blank":
			t.Errorf("ineligible record %s leaked into results", r.ID)
		}
	}
	if len(got) == 0 {
		t.Fatal("expected completed login records")
	}
}

func TestSearch_ConfidenceRangeAndOrder(t *testing.T) {
	for _, q := range []string{"login", "dashboard", "form", "settings page", "error login", "mail"} {
		got := Search(q, fixture(), 50)
		for i, r := range got {
			if r.Confidence <= DefaultMinScore || r.Confidence > 1 {
				t.Errorf("%q: confidence %v out of (0.05, 1]", q, r.Confidence)
			}
			if i == 0 {
				continue
			}
			prev := got[i-1]
			if prev.Confidence+DefaultTieEpsilon < r.Confidence {
				t.Errorf("%q: results out of order at %d: %v then %v", q, i, prev.Confidence, r.Confidence)
			}
			if math.Abs(prev.Confidence-r.Confidence) < DefaultTieEpsilon && prev.UploadedAt < r.UploadedAt {
				t.Errorf("%q: near tie at %d not broken by recency", q, i)
			}
		}
	}
}

func TestSearch_TieBreakNewerFirst(t *testing.T) {
	records := []Record{
		completed("old", 100, "settings page", ""),
		completed("new", 200, "settings page", ""),
		completed("mid", 150, "settings page", ""),
	}
	got := Search("settings", records, 5)
	want := []string{"new", "mid", "old"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSearch_TieEpsilonPolicy(t *testing.T) {
	records := []Record{
		completed("older-higher", 1, "form a b c", ""),  // 0.3
		completed("newer-lower", 2, "form a b c d", ""), // 0.24
	}

	strict := Search("form xyz", records, 5)
	if strict[0].ID != "older-higher" {
		t.Errorf("default policy: expected higher score first, got %s", strict[0].ID)
	}

	loose := New(Policy{MinScore: DefaultMinScore, TieEpsilon: 0.1}).Search("form xyz", records, 5)
	if loose[0].ID != "newer-lower" {
		t.Errorf("wide epsilon: expected newer record first, got %s", loose[0].ID)
	}
}

func TestSearch_MinScorePolicy(t *testing.T) {
	records := []Record{completed("r", 1, "form a b c d", "")} // 0.24

	if got := Search("form xyz", records, 5); len(got) != 1 {
		t.Errorf("default threshold: expected 1 result, got %d", len(got))
	}
	if got := New(Policy{MinScore: 0.25}).Search("form xyz", records, 5); len(got) != 0 {
		t.Errorf("raised threshold: expected 0 results, got %d", len(got))
	}
}

func TestSearch_MinScoreExclusive(t *testing.T) {
	rec := completed("r", 1, "unrelated words", "")
	rec.Filename = "receipt.png"
	p := Policy{MinScore: 0.5, FilenameFallback: true, FilenameConfidence: 0.5}

	if got := New(p).Search("receipt", []Record{rec}, 5); len(got) != 0 {
		t.Errorf("score equal to threshold must be dropped, got %d results", len(got))
	}
}

func TestSearch_Limit(t *testing.T) {
	records := make([]Record, 0, 20)
	for i := range 20 {
		records = append(records, completed(fmt.Sprintf("r%02d", i), int64(i), "error screen", ""))
	}
	for n := 1; n <= 25; n++ {
		if got := Search("error", records, n); len(got) > n {
			t.Errorf("limit %d: got %d results", n, len(got))
		}
	}
	if got := Search("error", records, 0); len(got) != DefaultLimit {
		t.Errorf("zero limit: expected %d results, got %d", DefaultLimit, len(got))
	}
}

func TestSearch_FilenameFallback(t *testing.T) {
	rec := completed("inv", 1, "total due next week", "a table of numbers")
	rec.Filename = "Invoice-2024.png"
	records := []Record{rec}

	if got := Search("invoice", records, 5); len(got) != 0 {
		t.Errorf("fallback off: expected no results, got %d", len(got))
	}

	p := DefaultPolicy()
	p.FilenameFallback = true
	got := New(p).Search("invoice", records, 5)
	if len(got) != 1 {
		t.Fatalf("fallback on: expected 1 result, got %d", len(got))
	}
	if got[0].Confidence != DefaultFilenameConfidence || got[0].MatchType != MatchText {
		t.Errorf("expected {0.5, text}, got {%v, %s}", got[0].Confidence, got[0].MatchType)
	}
}

func TestSearch_FilenameFallbackDoesNotOverrideTextMatch(t *testing.T) {
	rec := completed("inv", 1, "invoice", "")
	rec.Filename = "invoice.png"
	p := DefaultPolicy()
	p.FilenameFallback = true

	got := New(p).Search("invoice", []Record{rec}, 5)
	if len(got) != 1 || got[0].Confidence != 1.0 {
		t.Errorf("expected scorer confidence 1.0, got %+v", got)
	}
}

func TestSearch_IdempotentAndPure(t *testing.T) {
	records := fixture()
	snapshot := make([]Record, len(records))
	copy(snapshot, records)

	a := Search("login form", records, 10)
	b := Search("login form", records, 10)

	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical output across calls")
	}
	if !reflect.DeepEqual(records, snapshot) {
		t.Errorf("input records were mutated")
	}
}

func TestSearch_InputOrderIndependent(t *testing.T) {
	records := fixture()
	reversed := make([]Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	a := Search("login", records, 10)
	b := Search("login", reversed, 10)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("result depends on input order:\n%v\n%v", a, b)
	}
}

func TestSearch_Concurrent(t *testing.T) {
	records := fixture()
	want := Search("dashboard", records, 5)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Search("dashboard", records, 5); !reflect.DeepEqual(got, want) {
				errs <- "concurrent search diverged"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

// Every record the pre-filter drops must score zero.
func TestMayMatch_Transparent(t *testing.T) {
	queries := []string{"login", "dashboard charts", "form", "zzz", "error: banner", "settings page"}
	for _, q := range queries {
		tokens := Tokenize(q)
		for _, r := range fixture() {
			if mayMatch(strings.ToLower(q), tokens, &r) {
				continue
			}
			if s := Score(q, r.OCRText, r.VisualDescription); s.Score > 0 {
				t.Errorf("%q: pre-filter dropped %s with score %v", q, r.ID, s.Score)
			}
		}
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"completed with ocr", Record{Status: StatusCompleted, OCRText: "x"}, true},
		{"completed with visual", Record{Status: StatusCompleted, VisualDescription: "x"}, true},
		{"completed blank", Record{Status: StatusCompleted, OCRText: " ", VisualDescription: "\t"}, false},
		{"pending", Record{Status: StatusPending, OCRText: "x"}, false},
		{"failed", Record{Status: StatusFailed, OCRText: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eligible(&tt.rec); got != tt.want {
				t.Errorf("Eligible() = %v, want %v", got, tt.want)
			}
		})
	}
}
