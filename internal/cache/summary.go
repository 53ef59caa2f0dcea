// Package cache holds a small in-process cache for month summaries.
// Summary reads dominate traffic while writes are rare, so a short TTL
// plus write-time invalidation keeps responses fresh enough.
package cache

import (
	"container/list"
	"sync"
	"time"

	"ledger/internal/core"
)

type summaryEntry struct {
	month     string
	summary   core.MonthSummary
	expiresAt time.Time
}

// SummaryCache is an LRU cache of month summaries keyed by month token.
type SummaryCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	lru     *list.List
}

// NewSummaryCache creates a summary cache bounded by maxSize months.
func NewSummaryCache(maxSize int, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// Get returns the cached summary for a month token, if still fresh.
func (c *SummaryCache) Get(month string) (core.MonthSummary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[month]
	if !ok {
		return core.MonthSummary{}, false
	}

	entry := elem.Value.(*summaryEntry)
	if time.Now().After(entry.expiresAt) {
		c.evict(elem)
		return core.MonthSummary{}, false
	}

	c.lru.MoveToFront(elem)
	return entry.summary, true
}

// Set stores a month summary, evicting the least recently used month
// when the cache is full.
func (c *SummaryCache) Set(month string, summary core.MonthSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &summaryEntry{
		month:     month,
		summary:   summary,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, ok := c.entries[month]; ok {
		elem.Value = entry
		c.lru.MoveToFront(elem)
		return
	}

	c.entries[month] = c.lru.PushFront(entry)

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.evict(oldest)
		}
	}
}

// InvalidateMonth drops the cached summary for one month. Call it after
// any write dated in that month.
func (c *SummaryCache) InvalidateMonth(month string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[month]; ok {
		c.evict(elem)
	}
}

// InvalidateAll clears the whole cache.
func (c *SummaryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.lru.Init()
}

// CleanExpired removes all expired entries and returns the count removed.
func (c *SummaryCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var stale []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*summaryEntry).expiresAt) {
			stale = append(stale, elem)
		}
	}

	for _, elem := range stale {
		c.evict(elem)
	}

	return len(stale)
}

// Size returns the current number of cached months.
func (c *SummaryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SummaryCache) evict(elem *list.Element) {
	entry := elem.Value.(*summaryEntry)
	delete(c.entries, entry.month)
	c.lru.Remove(elem)
}
