package profilecache

import (
	"fmt"
	"testing"

	"github.com/liftlog/liftlog-mcp/internal/model"
)

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New(4)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}

	if _, ok := c.Get("u1"); ok {
		t.Error("empty cache should miss")
	}

	c.Put(model.UserProfile{UserID: "u1", DisplayName: "Avery"})
	got, ok := c.Get("u1")
	if !ok || got.DisplayName != "Avery" {
		t.Errorf("got %+v, ok=%v", got, ok)
	}

	c.Invalidate("u1")
	if _, ok := c.Get("u1"); ok {
		t.Error("invalidated entry should miss")
	}
}

func TestCacheEvictsOldest(t *testing.T) {
	t.Parallel()

	c, err := New(2)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}

	for i := 1; i <= 3; i++ {
		c.Put(model.UserProfile{UserID: fmt.Sprintf("u%d", i)})
	}

	if c.Len() != 2 {
		t.Errorf("len = %d, want capacity 2", c.Len())
	}
	if _, ok := c.Get("u1"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("u3"); !ok {
		t.Error("newest entry should survive")
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	t.Parallel()

	c, err := New(0)
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}
	c.Put(model.UserProfile{UserID: "u1"})
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}
