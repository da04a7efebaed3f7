package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewCache()
	c.Set("k", "v", 0, nil)
	v, ok := c.Get("k")
	if !ok || v.(string) != "v" {
		t.Fatalf("Get = (%v, %v), want (v, true)", v, ok)
	}
}

func TestGetMissing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("nope"); ok {
		t.Error("Get on missing key returned ok")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewCache()
	c.Set("k", "v", 1, nil)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("value expired immediately")
	}
	// Force expiry by rewriting with an already-past deadline.
	c.m.Store("k", cacheItem{Value: "v", ExpiresAt: time.Now().Add(-time.Second).UnixNano()})
	if _, ok := c.Get("k"); ok {
		t.Error("expired value still returned")
	}
}

func TestInvalidateTag(t *testing.T) {
	c := NewCache()
	c.Set("avail:P1", 10, 0, []string{"product:P1"})
	c.Set("avail:P2", 5, 0, []string{"product:P2"})
	c.InvalidateTag("product:P1")
	if _, ok := c.Get("avail:P1"); ok {
		t.Error("tagged key survived InvalidateTag")
	}
	if _, ok := c.Get("avail:P2"); !ok {
		t.Error("unrelated key was invalidated")
	}
}

func TestFlush(t *testing.T) {
	c := NewCache()
	c.Set("a", 1, 0, []string{"t"})
	c.Set("b", 2, 0, nil)
	c.Flush()
	if _, ok := c.Get("a"); ok {
		t.Error("Flush left key a")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Flush left key b")
	}
}
