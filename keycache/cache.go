// Package keycache holds the in-memory, per-username derivation state
// machine: it lazily computes each key or plaintext an account needs from
// whatever inputs are currently available, memoizes the result, and
// zeroes every secret on eviction. Modeled on how macaroons.Service
// separates its locking entry points from the lock-free helpers they call
// (see macaroons/account.go), and on keychain's use of named, non-
// interchangeable key roles rather than a single "the key" concept.
package keycache

import "sync"

// Cache maps username to Entry. A single mutex serializes every access,
// standing in for the source's process-wide recursive lock (see the
// concurrency design note this module carries): because WithEntry holds
// the lock for its entire closure and Entry methods never try to
// reacquire it, nested derivation inside Require needs no reentrancy.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*Entry)}
}

// WithEntry runs fn against the entry for username, lazily creating one
// if none exists, while holding the cache's lock for fn's entire
// duration. fn must not call back into the Cache.
func (c *Cache) WithEntry(username string, fn func(*Entry) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[username]
	if !ok {
		e = newEntry(username)
		c.entries[username] = e
	}
	return fn(e)
}

// Peek runs fn against the entry for username if one already exists,
// without creating it. It reports ErrNotFound if there is none.
func (c *Cache) Peek(username string, fn func(*Entry) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[username]
	if !ok {
		return ErrNotFound
	}
	return fn(e)
}

// Has reports whether the cache currently holds an entry for username.
func (c *Cache) Has(username string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[username]
	return ok
}

// Evict zeroes and removes the entry for username, if any exists. Safe
// to call for a username with no entry.
func (c *Cache) Evict(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[username]; ok {
		e.destroy()
		delete(c.entries, username)
	}
}

// EvictAll zeroes and removes every entry, for process shutdown.
func (c *Cache) EvictAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for username, e := range c.entries {
		e.destroy()
		delete(c.entries, username)
	}
}
