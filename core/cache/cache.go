package cache

import (
	"sync"
	"time"
)

// Cache is a simple thread-safe key-value store using sync.Map.
// Used for hot availability reads; mutating paths invalidate by product tag.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to a set of keys
	tagIndex sync.Map // map[string]map[interface{}]struct{}
}

var (
	once     sync.Once
	instance *Cache
)

// GetInstance returns the process-wide cache.
func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix nanoseconds; 0 means no expiration
}

// Set stores a value with an optional TTL (in seconds) and optional tags.
// If ttl is 0 the value does not expire.
func (c *Cache) Set(key, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	for _, tag := range tags {
		c.tagKey(key, tag)
	}
}

// Get retrieves a value. Returns (nil, false) when missing or expired.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item, isItem := v.(cacheItem)
	if !isItem {
		return v, true
	}
	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
}

func (c *Cache) tagKey(key interface{}, tag string) {
	set, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
	set.(*sync.Map).Store(key, struct{}{})
}

// InvalidateTag deletes every key registered under the tag.
func (c *Cache) InvalidateTag(tag string) {
	v, ok := c.tagIndex.Load(tag)
	if !ok {
		return
	}
	set := v.(*sync.Map)
	set.Range(func(key, _ interface{}) bool {
		c.m.Delete(key)
		set.Delete(key)
		return true
	})
}

// Flush drops all entries and tag indexes (for tests).
func (c *Cache) Flush() {
	c.m.Range(func(key, _ interface{}) bool {
		c.m.Delete(key)
		return true
	})
	c.tagIndex.Range(func(key, _ interface{}) bool {
		c.tagIndex.Delete(key)
		return true
	})
}
