package channel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vidchill/backend/internal/models"
)

// ErrStatsUnavailable indicates the stats provider is not configured.
var ErrStatsUnavailable = errors.New("channel stats provider unavailable")

// StatsProvider aggregates dashboard figures for a creator.
type StatsProvider interface {
	DashboardStats(ctx context.Context, userID string) (models.ChannelStats, error)
}

type cacheEntry struct {
	stats   models.ChannelStats
	expires time.Time
}

// CachingStatsProvider wraps another StatsProvider with a TTL-based in-memory
// cache. Dashboard figures are aggregate queries over every video a creator
// owns, so a short cache keeps dashboard refreshes cheap.
type CachingStatsProvider struct {
	base StatsProvider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingStatsProvider returns a StatsProvider that caches lookups for the
// provided TTL.
func NewCachingStatsProvider(base StatsProvider, ttl time.Duration) *CachingStatsProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingStatsProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// DashboardStats returns cached stats when available, otherwise it delegates
// to the underlying provider and stores the result.
func (c *CachingStatsProvider) DashboardStats(ctx context.Context, userID string) (models.ChannelStats, error) {
	if c == nil || c.base == nil {
		return models.ChannelStats{}, ErrStatsUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[userID]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.stats, nil
	}

	stats, err := c.base.DashboardStats(ctx, userID)
	if err != nil {
		return models.ChannelStats{}, err
	}

	c.mu.Lock()
	c.items[userID] = cacheEntry{stats: stats, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return stats, nil
}

// Invalidate drops the cached entry for a user, forcing the next read to hit
// the underlying provider.
func (c *CachingStatsProvider) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.items, userID)
	c.mu.Unlock()
}
