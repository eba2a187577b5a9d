// Package cache provides list-view caches for the links repository:
// an in-process one and a Redis-backed one shared across instances.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/joestump/affilinks/internal/store"
)

// DefaultTTL bounds how long a cached list survives without a write.
const DefaultTTL = 5 * time.Minute

// Memory caches the list in process. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	gen     uint64
	links   []store.AffiliateLink
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory returns an empty in-process cache. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, now: time.Now}
}

func (m *Memory) Generation(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen, nil
}

func (m *Memory) Get(_ context.Context) ([]*store.AffiliateLink, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.links == nil || !m.now().Before(m.expires) {
		return nil, false, nil
	}
	return copyOut(m.links), true, nil
}

// Set stores links unless the cache was invalidated after gen was read.
func (m *Memory) Set(_ context.Context, gen uint64, links []*store.AffiliateLink) error {
	vals := make([]store.AffiliateLink, len(links))
	for i, l := range links {
		vals[i] = *l
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return nil
	}
	m.links = vals
	m.expires = m.now().Add(m.ttl)
	return nil
}

func (m *Memory) Invalidate(_ context.Context) error {
	m.mu.Lock()
	m.gen++
	m.links = nil
	m.mu.Unlock()
	return nil
}

// copyOut hands callers their own records so rendering cannot mutate the cache.
func copyOut(vals []store.AffiliateLink) []*store.AffiliateLink {
	out := make([]*store.AffiliateLink, len(vals))
	for i := range vals {
		l := vals[i]
		out[i] = &l
	}
	return out
}
