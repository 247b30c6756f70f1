package budget

// Budget is a snapshot of the vision token budget for one period.
// A zero limit means the budget is unlimited.
type Budget struct {
	tokensLimit     int
	tokensRemaining int
	isExhausted     bool
	resetsAt        int64 // unix millis
}

// New creates a Budget snapshot. Negative remaining values are reported as zero.
func New(limit, remaining int, isExhausted bool, resetsAt int64) Budget {
	if remaining < 0 {
		remaining = 0
	}
	return Budget{
		tokensLimit:     limit,
		tokensRemaining: remaining,
		isExhausted:     isExhausted,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap.
func (b Budget) TokensLimit() int { return b.tokensLimit }

// TokensRemaining returns tokens left.
func (b Budget) TokensRemaining() int { return b.tokensRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// IsUnlimited reports whether no cap is configured.
func (b Budget) IsUnlimited() bool { return b.tokensLimit == 0 }

// ResetsAt returns the reset timestamp (unix millis).
func (b Budget) ResetsAt() int64 { return b.resetsAt }
