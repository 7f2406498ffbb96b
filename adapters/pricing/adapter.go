// Package pricing provides material price resolvers for BOQ pricing.
// Resolvers abstract where a price comes from (built-in table, rate file,
// hosted search index) behind boq.PriceResolver.
package pricing

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"sitemate/core/boq"
	"sitemate/core/types"
	"sitemate/internal/errors"
	"sitemate/internal/logging"
)

// Mode selects the resolver chain
type Mode string

const (
	ModeStatic Mode = "static"
	ModeRemote Mode = "remote"
	ModeHybrid Mode = "hybrid"
)

// Options configures New
type Options struct {
	// Mode selects static, remote or hybrid resolution
	Mode Mode

	// RatesPath is an optional HCL rate file overlaid on the built-in table
	RatesPath string

	// CacheTTL enables caching when positive
	CacheTTL time.Duration

	// Remote configures the search index
	Remote RemoteConfig

	// Logger receives fallback and cache diagnostics
	Logger *zap.Logger
}

// New builds the resolver chain selected by opts.Mode, wrapped in counters
func New(opts Options) (*Metrics, error) {
	logger := logging.OrNop(opts.Logger)

	var resolver boq.PriceResolver
	switch Mode(strings.ToLower(string(opts.Mode))) {
	case ModeStatic, "":
		table, err := NewDefaultStaticTable(opts.RatesPath)
		if err != nil {
			return nil, err
		}
		resolver = table
	case ModeRemote:
		remote, err := NewRemoteSearch(opts.Remote)
		if err != nil {
			return nil, err
		}
		resolver = remote
	case ModeHybrid:
		table, err := NewDefaultStaticTable(opts.RatesPath)
		if err != nil {
			return nil, err
		}
		remote, err := NewRemoteSearch(opts.Remote)
		if err != nil {
			return nil, err
		}
		resolver = NewFallback(logger, remote, table)
	default:
		return nil, errors.Newf(errors.TypeConfig, "unsupported pricing mode: %s", opts.Mode)
	}

	if opts.CacheTTL > 0 {
		resolver = NewCaching(resolver, opts.CacheTTL)
	}
	return NewMetrics(resolver), nil
}

// Fallback tries each resolver in turn and returns the first usable quote
type Fallback struct {
	chain  []boq.PriceResolver
	logger *zap.Logger
}

// NewFallback creates a fallback chain
func NewFallback(logger *zap.Logger, chain ...boq.PriceResolver) *Fallback {
	return &Fallback{chain: chain, logger: logging.OrNop(logger)}
}

// Resolve implements boq.PriceResolver. The last error is returned only when
// no resolver produced a quote and at least one failed.
func (f *Fallback) Resolve(ctx context.Context, query string, location types.Location) (boq.Quote, error) {
	var lastErr error
	for _, r := range f.chain {
		q, err := r.Resolve(ctx, query, location)
		if err != nil {
			if ctx.Err() != nil {
				return boq.Quote{}, errors.Timeout("price lookup", ctx.Err())
			}
			f.logger.Warn("price resolver failed, falling back", logging.Material(query), zap.Error(err))
			lastErr = err
			continue
		}
		if q.Found() {
			return q, nil
		}
	}
	return boq.Quote{}, lastErr
}

// MaxCacheEntries bounds the quotes one Caching wrapper holds
const MaxCacheEntries = 2048

// Caching wraps a resolver with a TTL cache keyed by query and location.
// Only quotes that carry a price are cached; errors and misses always go
// back to the inner resolver.
type Caching struct {
	inner      boq.PriceResolver
	cache      map[string]*cachedQuote
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	mu         sync.RWMutex
}

type cachedQuote struct {
	quote     boq.Quote
	expiresAt time.Time
}

// NewCaching creates a caching wrapper
func NewCaching(inner boq.PriceResolver, ttl time.Duration) *Caching {
	return &Caching{
		inner:      inner,
		cache:      make(map[string]*cachedQuote),
		ttl:        ttl,
		maxEntries: MaxCacheEntries,
		now:        time.Now,
	}
}

func cacheKey(query string, location types.Location) string {
	return normalize(query) + "|" + string(location)
}

// Resolve implements boq.PriceResolver
func (c *Caching) Resolve(ctx context.Context, query string, location types.Location) (boq.Quote, error) {
	key := cacheKey(query, location)

	c.mu.RLock()
	if cached, ok := c.cache[key]; ok && c.now().Before(cached.expiresAt) {
		c.mu.RUnlock()
		return cached.quote, nil
	}
	c.mu.RUnlock()

	q, err := c.inner.Resolve(ctx, query, location)
	if err != nil || !q.Found() {
		return q, err
	}

	c.mu.Lock()
	c.store(key, q)
	c.mu.Unlock()

	return q, nil
}

// store inserts under the write lock, making room when the cache is full
func (c *Caching) store(key string, q boq.Quote) {
	if _, ok := c.cache[key]; !ok && len(c.cache) >= c.maxEntries {
		c.purgeLocked()
		if len(c.cache) >= c.maxEntries {
			c.evictOldest()
		}
	}
	c.cache[key] = &cachedQuote{quote: q, expiresAt: c.now().Add(c.ttl)}
}

func (c *Caching) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for k, v := range c.cache {
		if oldest == "" || v.expiresAt.Before(at) {
			oldest, at = k, v.expiresAt
		}
	}
	delete(c.cache, oldest)
}

// Len returns the number of cached quotes, expired or not
func (c *Caching) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Purge drops expired entries and returns how many were removed
func (c *Caching) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeLocked()
}

func (c *Caching) purgeLocked() int {
	now := c.now()
	removed := 0
	for k, v := range c.cache {
		if !now.Before(v.expiresAt) {
			delete(c.cache, k)
			removed++
		}
	}
	return removed
}

// Metrics wraps a resolver with lookup counters
type Metrics struct {
	inner        boq.PriceResolver
	lookups      int64
	misses       int64
	failures     int64
	totalLatency time.Duration
	mu           sync.RWMutex
}

// NewMetrics creates a metrics wrapper
func NewMetrics(inner boq.PriceResolver) *Metrics {
	return &Metrics{inner: inner}
}

// Resolve implements boq.PriceResolver
func (m *Metrics) Resolve(ctx context.Context, query string, location types.Location) (boq.Quote, error) {
	start := time.Now()
	q, err := m.inner.Resolve(ctx, query, location)

	m.mu.Lock()
	m.lookups++
	m.totalLatency += time.Since(start)
	switch {
	case err != nil:
		m.failures++
	case !q.Found():
		m.misses++
	}
	m.mu.Unlock()

	return q, err
}

// Stats is a snapshot of resolver counters
type Stats struct {
	Lookups      int64 `json:"lookups"`
	Misses       int64 `json:"misses"`
	Failures     int64 `json:"failures"`
	AvgLatencyMs int64 `json:"avg_latency_ms"`
}

// Stats returns the current counters
func (m *Metrics) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{Lookups: m.lookups, Misses: m.misses, Failures: m.failures}
	if m.lookups > 0 {
		s.AvgLatencyMs = m.totalLatency.Milliseconds() / m.lookups
	}
	return s
}
