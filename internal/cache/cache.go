// Package cache memoizes derived scoring results keyed by typed
// composite keys, replacing the ad-hoc string keys the tabulation
// workflow is prone to. Invalidation is scoped: a score write removes
// exactly the affected round entry plus every stage and final entry of
// its pageant.
package cache

import (
	"sync"
	"time"
)

// Scope identifies which derived result a key addresses.
type Scope int

const (
	// ScopeRound caches a contestant's round aggregate.
	ScopeRound Scope = iota
	// ScopeStage caches a composed stage result.
	ScopeStage
	// ScopeFinal caches a blended final result.
	ScopeFinal
)

func (s Scope) String() string {
	switch s {
	case ScopeRound:
		return "round"
	case ScopeStage:
		return "stage"
	case ScopeFinal:
		return "final"
	}
	return "unknown"
}

// Default TTLs. Round aggregates churn as judges type, stage composites
// are read far more often than written.
const (
	RoundTTL = 15 * time.Minute
	StageTTL = 30 * time.Minute
)

// Key is a typed composite cache key. Unused fields stay zero: a round
// key sets ContestantID and RoundID, a stage key sets StageType.
type Key struct {
	Scope        Scope
	PageantID    int
	ContestantID int
	RoundID      int
	StageType    string
}

// RoundKey builds the key for a contestant's round aggregate
func RoundKey(pageantID, contestantID, roundID int) Key {
	return Key{Scope: ScopeRound, PageantID: pageantID, ContestantID: contestantID, RoundID: roundID}
}

// StageKey builds the key for a composed stage result
func StageKey(pageantID int, stageType string) Key {
	return Key{Scope: ScopeStage, PageantID: pageantID, StageType: stageType}
}

// FinalKey builds the key for a pageant's blended final result
func FinalKey(pageantID int) Key {
	return Key{Scope: ScopeFinal, PageantID: pageantID}
}

// Invalidation describes the minimal scope removed by a score write,
// for observability collaborators.
type Invalidation struct {
	PageantID    int `json:"pageant_id"`
	ContestantID int `json:"contestant_id,omitempty"`
	RoundID      int `json:"round_id,omitempty"`
	Removed      int `json:"removed"`
}

// Recorder observes cache traffic. Implemented by internal/metrics.
type Recorder interface {
	CacheHit(scope string)
	CacheMiss(scope string)
	CacheInvalidation(removed int)
}

type entry struct {
	value   interface{}
	expires time.Time
}

// Cache is an in-memory TTL cache for derived scoring results
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	rec     Recorder
	now     func() time.Time
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		entries: make(map[Key]entry),
		now:     time.Now,
	}
}

// SetRecorder attaches a traffic recorder. Must be called before use.
func (c *Cache) SetRecorder(r Recorder) {
	c.rec = r
}

// Get returns the cached value for key if present and unexpired
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().After(e.expires) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have
		// refreshed the entry.
		if cur, still := c.entries[key]; still && c.now().After(cur.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		ok = false
	}

	if c.rec != nil {
		if ok {
			c.rec.CacheHit(key.Scope.String())
		} else {
			c.rec.CacheMiss(key.Scope.String())
		}
	}
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl
func (c *Cache) Set(key Key, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes a single key
func (c *Cache) Delete(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateScore removes the round entry for the mutated
// (contestant, round) and every stage/final entry of the pageant.
// Called after the score write commits, never before.
func (c *Cache) InvalidateScore(pageantID, contestantID, roundID int) Invalidation {
	c.mu.Lock()
	removed := 0
	if _, ok := c.entries[RoundKey(pageantID, contestantID, roundID)]; ok {
		delete(c.entries, RoundKey(pageantID, contestantID, roundID))
		removed++
	}
	for key := range c.entries {
		if key.PageantID == pageantID && (key.Scope == ScopeStage || key.Scope == ScopeFinal) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if c.rec != nil {
		c.rec.CacheInvalidation(removed)
	}
	return Invalidation{PageantID: pageantID, ContestantID: contestantID, RoundID: roundID, Removed: removed}
}

// InvalidatePageant removes every entry belonging to a pageant. Used
// for administrative recomputation, e.g. after changing the ranking
// method.
func (c *Cache) InvalidatePageant(pageantID int) Invalidation {
	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if key.PageantID == pageantID {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if c.rec != nil {
		c.rec.CacheInvalidation(removed)
	}
	return Invalidation{PageantID: pageantID, Removed: removed}
}

// Len returns the number of live entries, expired ones included until
// their next read
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
