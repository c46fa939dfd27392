package api

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupDeduper(t *testing.T, ttl time.Duration) (*RedisDeduper, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return NewRedisDeduper(rc, ttl), mr
}

func TestDeduperAddOnce(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	ctx := context.Background()

	added, err := d.Add(ctx, "user-1", "k1")
	if err != nil || !added {
		t.Fatalf("first add: %v, added=%v", err, added)
	}
	added, err = d.Add(ctx, "user-1", "k1")
	if err != nil || added {
		t.Fatalf("second add must report duplicate: %v, added=%v", err, added)
	}

	// Same key under another user is a distinct token.
	added, err = d.Add(ctx, "user-2", "k1")
	if err != nil || !added {
		t.Fatalf("other user's add: %v, added=%v", err, added)
	}
}

func TestDeduperStoresClaimTime(t *testing.T) {
	d, mr := setupDeduper(t, time.Hour)
	if _, err := d.Add(context.Background(), "user-1", "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	raw, err := mr.Get(tokenKey("user-1", "k1"))
	if err != nil {
		t.Fatalf("read claim: %v", err)
	}
	if _, err := time.Parse(time.RFC3339Nano, raw); err != nil {
		t.Fatalf("claim value must be a timestamp, got %q: %v", raw, err)
	}
}

func TestDeduperRemoveFreesKey(t *testing.T) {
	d, _ := setupDeduper(t, time.Hour)
	ctx := context.Background()

	if _, err := d.Add(ctx, "user-1", "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := d.Remove(ctx, "user-1", "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	added, err := d.Add(ctx, "user-1", "k1")
	if err != nil || !added {
		t.Fatalf("add after remove must succeed: %v, added=%v", err, added)
	}
}

func TestDeduperKeyExpires(t *testing.T) {
	d, mr := setupDeduper(t, time.Minute)
	ctx := context.Background()

	if _, err := d.Add(ctx, "user-1", "k1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	mr.FastForward(2 * time.Minute)
	added, err := d.Add(ctx, "user-1", "k1")
	if err != nil || !added {
		t.Fatalf("expired key must be claimable again: %v, added=%v", err, added)
	}
}
