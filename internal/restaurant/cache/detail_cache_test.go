package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type entry struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

func newCache(t *testing.T) (*DetailCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDetailCache(client, time.Minute), mr
}

func TestDetailCacheRoundTrip(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got entry
	if c.Get(ctx, 7, &got) {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, 7, entry{Name: "Burger King", Rating: 4.5})
	if !mr.Exists("restaurant:detail:7") {
		t.Fatal("expected key restaurant:detail:7")
	}
	if ttl := mr.TTL("restaurant:detail:7"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	if !c.Get(ctx, 7, &got) {
		t.Fatal("expected hit after Set")
	}
	if got.Name != "Burger King" || got.Rating != 4.5 {
		t.Errorf("got %+v", got)
	}

	c.Invalidate(ctx, 7)
	if c.Get(ctx, 7, &got) {
		t.Error("expected miss after Invalidate")
	}
}

func TestInvalidationRejectsStaleWrites(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	c.Set(ctx, 2, entry{Name: "Burger King", Rating: 4.0})
	c.Invalidate(ctx, 2)
	// a reader that loaded the old row before the write finishes late
	c.Set(ctx, 2, entry{Name: "Burger King", Rating: 4.0})

	var got entry
	if c.Get(ctx, 2, &got) {
		t.Fatalf("stale entry cached after invalidation: %+v", got)
	}

	mr.FastForward(InvalidationHold + time.Second)
	c.Set(ctx, 2, entry{Name: "Burger King", Rating: 4.5})
	if !c.Get(ctx, 2, &got) || got.Rating != 4.5 {
		t.Errorf("got %+v after hold expired, want fresh entry", got)
	}
}

func TestDetailCacheExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	c.Set(ctx, 1, entry{Name: "A"})
	mr.FastForward(2 * time.Minute)

	var got entry
	if c.Get(ctx, 1, &got) {
		t.Error("expected entry to expire")
	}
}

func TestDetailCacheDropsCorruptEntries(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	mr.Set("restaurant:detail:3", "{not json")

	var got entry
	if c.Get(ctx, 3, &got) {
		t.Fatal("corrupt entry must be a miss")
	}
	if mr.Exists("restaurant:detail:3") {
		t.Error("corrupt entry should be removed")
	}
}

func TestNilDetailCacheIsDisabled(t *testing.T) {
	ctx := context.Background()
	var got entry

	var c *DetailCache
	c.Set(ctx, 1, entry{})
	c.Invalidate(ctx, 1)
	if c.Get(ctx, 1, &got) {
		t.Error("nil cache must always miss")
	}

	noClient := NewDetailCache(nil, 0)
	noClient.Set(ctx, 1, entry{})
	if noClient.Get(ctx, 1, &got) {
		t.Error("cache without client must always miss")
	}
}

func TestRedisOutageIsAMiss(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	mr.Close()

	var got entry
	c.Set(ctx, 1, entry{Name: "A"})
	if c.Get(ctx, 1, &got) {
		t.Error("expected miss while redis is down")
	}
}
