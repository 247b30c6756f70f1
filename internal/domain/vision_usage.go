package domain

import (
	"context"
	"sync"
)

type visionUsageKey struct{}

// VisionUsage collects vision token usage for a single HTTP request.
// The handler puts a pointer into the context; upload workers add to it
// concurrently, and the handler reads it for response headers.
type VisionUsage struct {
	mu          sync.Mutex
	totalTokens int
	calls       int
}

// NewContextWithVisionUsage returns a context with a usage collector.
func NewContextWithVisionUsage(ctx context.Context) (context.Context, *VisionUsage) {
	u := &VisionUsage{}
	return context.WithValue(ctx, visionUsageKey{}, u), u
}

// VisionUsageFromContext extracts the usage collector from context. Returns nil if not set.
func VisionUsageFromContext(ctx context.Context) *VisionUsage {
	u, _ := ctx.Value(visionUsageKey{}).(*VisionUsage)
	return u
}

// AddTokens records one provider call and its tokens. Safe on a nil receiver.
func (u *VisionUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.calls++
	u.mu.Unlock()
}

// TotalTokens returns the tokens recorded so far.
func (u *VisionUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}

// Calls returns the number of provider calls recorded, cache hits included.
func (u *VisionUsage) Calls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}
