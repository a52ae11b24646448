package application

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestFinalizeGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	guard := NewFinalizeGuard(rdb, time.Hour)
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "U123")
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	ok, err = guard.Acquire(ctx, "U123")
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Error("second acquire must lose")
	}

	// Another user is unaffected.
	ok, err = guard.Acquire(ctx, "U456")
	if err != nil || !ok {
		t.Fatalf("other user acquire: ok=%v err=%v", ok, err)
	}

	if err := guard.Release(ctx, "U123"); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = guard.Acquire(ctx, "U123")
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestFinalizeGuardTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	guard := NewFinalizeGuard(rdb, time.Minute)
	ctx := context.Background()

	if ok, _ := guard.Acquire(ctx, "U123"); !ok {
		t.Fatal("first acquire should win")
	}

	mr.FastForward(2 * time.Minute)

	if ok, _ := guard.Acquire(ctx, "U123"); !ok {
		t.Error("token should expire with its TTL")
	}
}
