package sword

import (
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/swordgate/internal/jper"
	"github.com/tphakala/swordgate/internal/observability/metrics"
)

// NotificationCache holds the notifications one Server has fetched. Entries
// never expire and are never invalidated; the cache lives as long as its Server.
type NotificationCache struct {
	store   *cache.Cache
	metrics *metrics.SwordMetrics
}

func newNotificationCache(m *metrics.SwordMetrics) *NotificationCache {
	// no cleanup interval, so no janitor goroutine
	return &NotificationCache{
		store:   cache.New(cache.NoExpiration, 0),
		metrics: m,
	}
}

// Get returns the cached notification for id.
func (c *NotificationCache) Get(id string) (*jper.Notification, bool) {
	if v, ok := c.store.Get(id); ok {
		c.metrics.RecordCacheLookup(metrics.CacheHit)
		return v.(*jper.Notification), true
	}
	c.metrics.RecordCacheLookup(metrics.CacheMiss)
	return nil, false
}

// Set stores n under id.
func (c *NotificationCache) Set(id string, n *jper.Notification) {
	c.store.Set(id, n, cache.NoExpiration)
}

// Len is the number of cached notifications.
func (c *NotificationCache) Len() int {
	return c.store.ItemCount()
}
