package application

import (
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	defaultWarningCacheTTL        = 30 * time.Second
	defaultWarningCacheMaxEntries = 64
)

// warningCache keeps the conflict warnings computed for an event's program so
// repeated listings skip the pairwise scan. An entry only answers for the
// session snapshot it was computed from: a lookup with a different
// fingerprint misses, whoever changed the sessions.
type warningCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]warningCacheEntry
}

type warningCacheEntry struct {
	fingerprint string
	warnings    []ConflictWarning
	expiresAt   time.Time
}

func newWarningCache(ttl time.Duration, maxEntries int, now func() time.Time) *warningCache {
	if ttl <= 0 {
		ttl = defaultWarningCacheTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultWarningCacheMaxEntries
	}
	if now == nil {
		now = time.Now
	}
	return &warningCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]warningCacheEntry),
	}
}

func (c *warningCache) Get(eventID, fingerprint string) ([]ConflictWarning, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[eventID]
	c.mu.RUnlock()
	if !ok || entry.fingerprint != fingerprint {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.InvalidateEvent(eventID)
		return nil, false
	}
	return cloneWarnings(entry.warnings), true
}

func (c *warningCache) Store(eventID, fingerprint string, warnings []ConflictWarning) {
	if c == nil {
		return
	}
	entry := warningCacheEntry{
		fingerprint: fingerprint,
		warnings:    cloneWarnings(warnings),
		expiresAt:   c.now().Add(c.ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.dropExpiredLocked()
	if _, exists := c.entries[eventID]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[eventID] = entry
}

// InvalidateEvent drops the cached warnings of a single event.
func (c *warningCache) InvalidateEvent(eventID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, eventID)
	c.mu.Unlock()
}

// Invalidate empties the cache.
func (c *warningCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]warningCacheEntry)
	c.mu.Unlock()
}

func (c *warningCache) dropExpiredLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *warningCache) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func cloneWarnings(warnings []ConflictWarning) []ConflictWarning {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]ConflictWarning, len(warnings))
	for i, warning := range warnings {
		out[i] = warning
		out[i].RoomID = cloneString(warning.RoomID)
	}
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

// sessionFingerprint digests the fields conflict detection reads, in list
// order. Renaming, moving, retiming or dropping a room or day changes it.
func sessionFingerprint(sessions []Session) string {
	h, _ := blake2b.New256(nil)
	for _, session := range sessions {
		for _, field := range []string{
			session.ID,
			session.Title,
			optionalField(session.RoomID),
			optionalField(session.DayID),
			strconv.FormatInt(session.Start.UnixNano(), 10),
			strconv.FormatInt(session.End.UnixNano(), 10),
		} {
			h.Write([]byte(field))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func optionalField(value *string) string {
	if value == nil {
		return "\x01"
	}
	return *value
}
