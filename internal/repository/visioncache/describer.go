package visioncache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shotsearch/internal/db"
	"github.com/kailas-cloud/shotsearch/internal/domain"
)

// store is the consumer interface for the description cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedDescriber caches visual descriptions keyed by the image content,
// so re-uploading the same bytes does not spend provider tokens.
type CachedDescriber struct {
	inner      domain.Describer
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// Option configures a CachedDescriber.
type Option func(*CachedDescriber)

// WithTTL expires cached descriptions after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachedDescriber) { c.ttl = ttl }
}

// WithCacheCounter counts lookups by label "result" ("hit"/"miss").
func WithCacheCounter(cv *prometheus.CounterVec) Option {
	return func(c *CachedDescriber) { c.cacheTotal = cv }
}

// New creates a caching decorator around inner.
func New(inner domain.Describer, s store, prefix string, logger *zap.Logger, opts ...Option) *CachedDescriber {
	c := &CachedDescriber{
		inner:  inner,
		store:  s,
		prefix: prefix,
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Describe returns a cached description or calls the inner describer.
// A hit reports zero tokens. Empty descriptions are never cached.
func (c *CachedDescriber) Describe(ctx context.Context, img domain.Image) (domain.DescriptionResult, error) {
	key := c.cacheKey(img.Data)

	if text, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.DescriptionResult{Text: text}, nil
	}
	c.incCache("miss")

	result, err := c.inner.Describe(ctx, img)
	if err != nil {
		return domain.DescriptionResult{}, fmt.Errorf("describe image: %w", err)
	}

	if result.Text != "" {
		c.putToCache(ctx, key, result.Text)
	}
	return result, nil
}

func (c *CachedDescriber) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedDescriber) cacheKey(data []byte) string {
	h := sha256.Sum256(data)
	return c.prefix + "vision_cache:" + hex.EncodeToString(h[:])
}

func (c *CachedDescriber) getFromCache(ctx context.Context, key string) (string, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached description", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (c *CachedDescriber) putToCache(ctx context.Context, key, text string) {
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, []byte(text), c.ttl)
	} else {
		err = c.store.Set(ctx, key, []byte(text))
	}
	if err != nil {
		c.logger.Warn("Failed to cache description", zap.String("key", key), zap.Error(err))
	}
}
