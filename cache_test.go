package innerlife

import (
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTTLCache[string](5 * time.Minute)
	c.now = func() time.Time { return clock }

	if _, ok, _ := c.Get("k"); ok {
		t.Fatal("empty cache returned a value")
	}

	c.Set("k", "v")
	v, ok, fresh := c.Get("k")
	if !ok || !fresh || v != "v" {
		t.Fatalf("get = (%q, %v, %v)", v, ok, fresh)
	}

	clock = clock.Add(6 * time.Minute)
	v, ok, fresh = c.Get("k")
	if !ok || fresh {
		t.Fatalf("expired entry = (%q, %v, %v), want present but stale", v, ok, fresh)
	}

	c.Clear()
	if _, ok, _ := c.Get("k"); ok {
		t.Fatal("cleared cache returned a value")
	}
}

func TestTTLCacheStatus(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTTLCache[int](5 * time.Minute)
	c.now = func() time.Time { return clock }

	c.Set("a", 1)
	clock = clock.Add(2 * time.Minute)
	c.Set("b", 2)
	clock = clock.Add(4 * time.Minute)

	status := c.Status()
	if len(status) != 2 {
		t.Fatalf("status entries = %d", len(status))
	}
	if status["a"].Fresh {
		t.Fatalf("entry a = %+v, want stale at 6m", status["a"])
	}
	if !status["b"].Fresh {
		t.Fatalf("entry b = %+v, want fresh at 4m", status["b"])
	}
	if status["a"].Age != 6*time.Minute {
		t.Fatalf("entry a age = %v", status["a"].Age)
	}
}
