package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const DefaultMaxEntries = 1024

// Memory is an in-process LRU cache with TTL expiry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	summary   string
	expiresAt time.Time
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Memory{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}

	entry, ok := elem.Value.(*memoryEntry)
	if !ok {
		return "", false, nil
	}

	if c.now().After(entry.expiresAt) {
		c.removeElement(elem)

		return "", false, nil
	}

	c.order.MoveToFront(elem)

	return entry.summary, true, nil
}

func (c *Memory) Set(_ context.Context, key string, summary string, ttl time.Duration) error {
	if key == "" || summary == "" || ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiresAt := now.Add(ttl)

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*memoryEntry)
		if !castOk {
			return nil
		}

		entry.summary = summary
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return nil
	}

	elem := c.order.PushFront(&memoryEntry{
		key:       key,
		summary:   summary,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()

	return nil
}

func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Memory) Close() error {
	return nil
}

func (c *Memory) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if entry, ok := elem.Value.(*memoryEntry); ok && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *Memory) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *Memory) removeElement(elem *list.Element) {
	entry, ok := elem.Value.(*memoryEntry)
	if !ok {
		return
	}

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
