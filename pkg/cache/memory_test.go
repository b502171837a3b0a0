package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_PutGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)

	if err := c.Put(ctx, TagOrderDetails, "o1", 0, []byte(`{"id":"o1"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, TagMenuItems, "landing", 0, []byte(`[]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, ok, err := c.Get(ctx, TagOrderDetails, "o1")
	if err != nil || !ok || string(data) != `{"id":"o1"}` {
		t.Fatalf("Get = %q %v %v", data, ok, err)
	}

	if err := c.Invalidate(ctx, TagOrderDetails, TagCookerOrders); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx, TagOrderDetails, "o1"); ok {
		t.Fatal("invalidated tag still served")
	}
	if _, ok, _ := c.Get(ctx, TagMenuItems, "landing"); !ok {
		t.Fatal("unrelated tag was dropped")
	}
}

func TestMemory_CopiesOnPut(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)

	buf := []byte("abc")
	_ = c.Put(ctx, TagUsers, "all", 0, buf)
	buf[0] = 'x'

	data, _, _ := c.Get(ctx, TagUsers, "all")
	if string(data) != "abc" {
		t.Fatalf("cached data aliased caller buffer: %q", data)
	}
}

func TestMemory_TTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Put(ctx, TagReviews, "all", 0, []byte("[]"))
	if _, ok, _ := c.Get(ctx, TagReviews, "all"); !ok {
		t.Fatal("fresh entry missing")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, TagReviews, "all"); ok {
		t.Fatal("expired entry served")
	}
}

func TestMemory_PutAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)

	gen, err := c.Generation(ctx, TagOrderDetails)
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	if err := c.Invalidate(ctx, TagOrderDetails); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := c.Put(ctx, TagOrderDetails, "o1", gen, []byte(`{"status":"placed"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := c.Get(ctx, TagOrderDetails, "o1"); ok {
		t.Fatal("load that started before the invalidation was stored")
	}

	fresh, _ := c.Generation(ctx, TagOrderDetails)
	if fresh == gen {
		t.Fatal("generation not bumped by Invalidate")
	}
	_ = c.Put(ctx, TagOrderDetails, "o1", fresh, []byte(`{"status":"delivered"}`))
	if data, ok, _ := c.Get(ctx, TagOrderDetails, "o1"); !ok || string(data) != `{"status":"delivered"}` {
		t.Fatalf("Get = %q %v", data, ok)
	}

	other, _ := c.Generation(ctx, TagMenuItems)
	if other != 0 {
		t.Fatalf("unrelated tag generation = %d", other)
	}
}
