package auth

import (
	"context"
	"sync"
	"time"
)

// CachedToken is a previously issued token kept for reuse until it expires.
type CachedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenCache maps a username to its most recently issued token.
// Implementations must never return an entry past its expiry.
type TokenCache interface {
	Get(ctx context.Context, key string) (CachedToken, bool, error)
	Set(ctx context.Context, key string, entry CachedToken, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	token    CachedToken
	deadline time.Time
}

// MemoryTokenCache is a process-local TokenCache with lazy expiry.
type MemoryTokenCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryTokenCache creates an empty cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock replaces the time source used for expiry checks.
func (c *MemoryTokenCache) WithClock(now func() time.Time) *MemoryTokenCache {
	c.now = now
	return c
}

// Get returns the live entry for key. Expired entries are removed and reported as absent.
func (c *MemoryTokenCache) Get(_ context.Context, key string) (CachedToken, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return CachedToken{}, false, nil
	}

	now := c.now()
	if !now.Before(entry.deadline) {
		c.mu.Lock()
		// a concurrent Set may have refreshed the slot since the read
		if cur, ok := c.entries[key]; ok && !now.Before(cur.deadline) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return CachedToken{}, false, nil
	}

	return entry.token, true, nil
}

// Set stores entry under key, overwriting any previous value. A non-positive ttl stores nothing.
func (c *MemoryTokenCache) Set(_ context.Context, key string, entry CachedToken, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	deadline := c.now().Add(ttl)
	if !entry.ExpiresAt.IsZero() && entry.ExpiresAt.Before(deadline) {
		deadline = entry.ExpiresAt
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{token: entry, deadline: deadline}
	c.mu.Unlock()
	return nil
}

// Delete removes key. Missing keys are ignored.
func (c *MemoryTokenCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryTokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep drops every expired entry and returns how many were removed.
func (c *MemoryTokenCache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !now.Before(entry.deadline) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on every tick until ctx is done.
func (c *MemoryTokenCache) StartSweeper(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := c.Sweep()
				if onSweep != nil {
					onSweep(removed)
				}
			}
		}
	}()
}

var _ TokenCache = (*MemoryTokenCache)(nil)
