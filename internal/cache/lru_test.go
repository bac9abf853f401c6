package cache

import (
	"sync"
	"testing"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Add("t", "a", 1)
	c.Add("t", "b", 2)
	c.Get("t", "a") // a becomes MRU
	c.Add("t", "c", 3)

	if _, ok := c.Get("t", "b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if v, ok := c.Get("t", "a"); !ok || v.(int) != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
}

func TestLRU_TagsAreIndependentNamespaces(t *testing.T) {
	c := New(8)
	c.Add("routing", "router", "r1")
	c.Add("routing", "table", "t1")
	c.Add("locales", "router", "l1")

	if v, _ := c.Get("locales", "router"); v != "l1" {
		t.Fatalf("same key under another tag = %v", v)
	}

	c.Invalidate("routing")

	if _, ok := c.Get("routing", "router"); ok {
		t.Fatalf("routing entries survived invalidation")
	}
	if _, ok := c.Get("routing", "table"); ok {
		t.Fatalf("routing entries survived invalidation")
	}
	if v, ok := c.Get("locales", "router"); !ok || v != "l1" {
		t.Fatalf("unrelated tag dropped: %v, %v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func TestLRU_InvalidateUnknownTag(t *testing.T) {
	c := New(1)
	c.Invalidate("nothing")
	c.Add("x", "k", 1)
	c.Add("y", "k", 2) // evicts x/k and must clean its tag index
	c.Invalidate("x")
	if v, ok := c.Get("y", "k"); !ok || v.(int) != 2 {
		t.Fatalf("y/k = %v, %v", v, ok)
	}
}

func TestLRU_UpdateKeepsSingleEntry(t *testing.T) {
	c := New(4)
	c.Add("t", "k", 1)
	c.Add("t", "k", 2)
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	if v, _ := c.Get("t", "k"); v.(int) != 2 {
		t.Fatalf("value = %v, want 2", v)
	}
}

func TestLRU_ConcurrentUse(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Add("routing", string(rune('a'+j%20)), j)
				c.Get("routing", "a")
				if j%50 == 0 {
					c.Invalidate("routing")
				}
			}
		}(i)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Fatalf("len = %d exceeds capacity", c.Len())
	}
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(0)
}
