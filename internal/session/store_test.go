package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/buskerbot/permit-assistant/internal/dates"
	"github.com/buskerbot/permit-assistant/internal/window"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, 30*time.Minute, nil), mr
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	target := window.MonthRef{Year: 2025, Month: time.October}
	sess := New("U123", target, time.Now())
	sess.Propose(dates.DefaultDates(target, 3), true, time.Now())

	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "U123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected a session")
	}
	if got.Step != StepConfirmingDates {
		t.Errorf("step = %s, want confirming_dates", got.Step)
	}
	if got.TargetMonth != target {
		t.Errorf("target = %+v", got.TargetMonth)
	}
	if got.Pending == nil || len(got.Pending.Dates) != 3 || !got.Pending.IsDefault {
		t.Errorf("pending = %+v", got.Pending)
	}
}

func TestStoreMissingSession(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil session, got %+v", got)
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess := New("U123", window.MonthRef{Year: 2025, Month: time.October}, time.Now())
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(31 * time.Minute)

	got, err := store.Get(ctx, "U123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("session should have expired")
	}
}

func TestStorePutRenewsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess := New("U123", window.MonthRef{Year: 2025, Month: time.October}, time.Now())
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}

	mr.FastForward(20 * time.Minute)
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("second put: %v", err)
	}
	mr.FastForward(20 * time.Minute)

	got, err := store.Get(ctx, "U123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Error("session should have survived: the second put renewed the TTL")
	}
}

func TestStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess := New("U123", window.MonthRef{Year: 2025, Month: time.October}, time.Now())
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "U123"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := store.Get(ctx, "U123")
	if err != nil || got != nil {
		t.Errorf("get after delete = %+v, %v", got, err)
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, "U123"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestStoreUnknownStepTreatedAsExpired(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set(sessionKey("U123"), `{"user_id":"U123","step":"legacy_step"}`)

	got, err := store.Get(context.Background(), "U123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("unknown step should read as no session, got %+v", got)
	}
}

func TestSessionTransitions(t *testing.T) {
	now := time.Now()
	target := window.MonthRef{Year: 2025, Month: time.October}
	sess := New("U1", target, now)

	if sess.Step != StepStarted {
		t.Fatalf("new session step = %s", sess.Step)
	}

	proposal := dates.DefaultDates(target, 3)
	sess.Propose(proposal, true, now)
	if sess.Step != StepConfirmingDates || sess.Pending == nil {
		t.Fatalf("after propose: step=%s pending=%v", sess.Step, sess.Pending)
	}

	sess.RejectPending(now)
	if sess.Step != StepSelectingDate || sess.Pending != nil {
		t.Fatalf("after reject: step=%s pending=%v", sess.Step, sess.Pending)
	}

	sess.Propose(proposal, true, now)
	sess.AcceptPending(now)
	if sess.Pending != nil || len(sess.SelectedDates) != 3 {
		t.Fatalf("after accept: pending=%v selected=%d", sess.Pending, len(sess.SelectedDates))
	}
}
