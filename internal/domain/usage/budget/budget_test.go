package budget

import "testing"

func TestNew(t *testing.T) {
	b := New(100000, 93700, false, 1700000000000)
	if b.TokensLimit() != 100000 {
		t.Errorf("TokensLimit() = %d", b.TokensLimit())
	}
	if b.TokensRemaining() != 93700 {
		t.Errorf("TokensRemaining() = %d", b.TokensRemaining())
	}
	if b.IsExhausted() || b.IsUnlimited() {
		t.Error("expected a limited, non-exhausted budget")
	}
	if b.ResetsAt() != 1700000000000 {
		t.Errorf("ResetsAt() = %d", b.ResetsAt())
	}
}

func TestNew_Exhausted(t *testing.T) {
	b := New(1000, -20, true, 0)
	if !b.IsExhausted() {
		t.Error("IsExhausted() = false, want true")
	}
	if b.TokensRemaining() != 0 {
		t.Errorf("TokensRemaining() = %d, want clamped to 0", b.TokensRemaining())
	}
}

func TestNew_Unlimited(t *testing.T) {
	if !New(0, 0, false, 0).IsUnlimited() {
		t.Error("zero limit should be unlimited")
	}
}
