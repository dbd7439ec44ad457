package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is the small surface public-menu handlers need. Values are
// serialized JSON; keys are namespaced by the caller ("menu:<slug>").
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Memory is the in-process fallback used when no Redis URL is configured.
type Memory struct {
	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	val string
	exp time.Time
}

func NewMemory() *Memory {
	return &Memory{
		m: make(map[string]entry),
	}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return "", false
	}

	return e.val, true
}

func (c *Memory) Set(_ context.Context, key string, val string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	c.mu.Lock()
	c.m[key] = entry{val: val, exp: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Memory) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}
