// Package credcache caches short-lived billing-backend session credentials
// so the bot does not re-authenticate on every request. It holds one entry
// per subscriber plus a single privileged manager entry. Entries
// self-invalidate by absolute expiry time; an expired entry is
// indistinguishable from one that was never written.
//
// Expiry is checked lazily on read. Without the background sweeper the
// subscriber map would grow without bound as identities churn, so
// StartSweeper should normally be running; reads stay correct either way.
package credcache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	token     string
	expiresAt int64
}

func (e entry) expired(now time.Time) bool {
	return now.Unix() >= e.expiresAt
}

// Cache is safe for concurrent use by any number of in-flight subscriber
// sequences. It performs no network or disk I/O.
type Cache struct {
	mu      sync.RWMutex
	subs    map[int64]entry
	manager *entry

	now func() time.Time
	log *slog.Logger
}

// NewCache creates an empty credential cache.
func NewCache(log *slog.Logger) *Cache {
	return &Cache{
		subs: make(map[int64]entry),
		now:  time.Now,
		log:  log,
	}
}

// SubscriberCredential returns the cached token for a subscriber, or false
// if none was ever stored or the stored one has expired. A stale row found
// on read is removed opportunistically.
func (c *Cache) SubscriberCredential(id int64) (string, bool) {
	c.mu.RLock()
	e, ok := c.subs[id]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// refreshed the entry since the read above.
		if cur, ok := c.subs[id]; ok && cur.expired(c.now()) {
			delete(c.subs, id)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.token, true
}

// PutSubscriberCredential unconditionally overwrites the subscriber's entry
// and echoes the token so callers can chain on the freshly issued value.
// Concurrent writers for the same id resolve last-writer-wins.
func (c *Cache) PutSubscriberCredential(id int64, token string, expiresAt int64) string {
	c.mu.Lock()
	c.subs[id] = entry{token: token, expiresAt: expiresAt}
	c.mu.Unlock()
	return token
}

// ManagerCredential returns the privileged token, or false if absent or
// expired.
func (c *Cache) ManagerCredential() (string, bool) {
	c.mu.RLock()
	e := c.manager
	c.mu.RUnlock()
	if e == nil || e.expired(c.now()) {
		return "", false
	}
	return e.token, true
}

// PutManagerCredential overwrites the single privileged slot and echoes the
// token.
func (c *Cache) PutManagerCredential(token string, expiresAt int64) string {
	c.mu.Lock()
	c.manager = &entry{token: token, expiresAt: expiresAt}
	c.mu.Unlock()
	return token
}

// StartSweeper periodically removes expired subscriber entries so churned
// identities do not accumulate. It blocks until the context is canceled.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) error {
	c.log.Info("Starting credential cache sweeper", slog.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("Credential cache sweeper shutting down")
			return ctx.Err()
		case <-ticker.C:
			if removed := c.sweep(); removed > 0 {
				c.log.Debug("Swept expired credentials", slog.Int("removed", removed))
			}
		}
	}
}

func (c *Cache) sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.subs {
		if e.expired(now) {
			delete(c.subs, id)
			removed++
		}
	}
	return removed
}
