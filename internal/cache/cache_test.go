package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mohammad-safakhou/doppel/tools/linkedin/models"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	posts := []models.PostRecord{{Index: 1, Title: "A post", Content: "body"}}
	if err := c.Set(ctx, posts); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("get after set: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Title != "A post" {
		t.Fatalf("unexpected posts: %+v", got)
	}
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, []models.PostRecord{{Index: 1, Title: "original"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _, _ := c.Get(ctx)
	got[0].Title = "mutated"

	again, _, _ := c.Get(ctx)
	if again[0].Title != "original" {
		t.Fatalf("cache contents mutated through a returned slice")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory(time.Millisecond)
	ctx := context.Background()

	if err := c.Set(ctx, []models.PostRecord{{Index: 1, Title: "ephemeral"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryCacheInvalidate(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, []models.PostRecord{{Index: 1, Title: "to be removed"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemory(0)
	ctx := context.Background()

	if err := c.Set(ctx, []models.PostRecord{{Index: 1, Title: "sticky"}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(2 * time.Millisecond)

	if _, ok, _ := c.Get(ctx); !ok {
		t.Fatalf("zero ttl entry should not expire")
	}
}
