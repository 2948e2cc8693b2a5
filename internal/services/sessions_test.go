package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func setupRedisStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	cache := NewRedisService(mr.Addr(), testLogger())
	t.Cleanup(func() {
		_ = cache.Close()
		mr.Close()
	})

	return NewSessionStore(cache, testLogger()), mr
}

func TestSessionStore_IssueAndValidate(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	id, err := store.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if id == "" {
		t.Fatal("Issue returned empty session id")
	}

	ok, err := store.Validate(ctx, id)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !ok {
		t.Error("Validate = false for freshly issued session")
	}

	// Unknown and malformed ids are invalid, not errors.
	ok, err = store.Validate(ctx, "7b17cc04-0000-0000-0000-000000000000")
	if err != nil || ok {
		t.Errorf("Validate(unknown) = (%v, %v), want (false, nil)", ok, err)
	}
	ok, err = store.Validate(ctx, "not-a-uuid")
	if err != nil || ok {
		t.Errorf("Validate(malformed) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	id, err := store.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	mr.FastForward(sessionTTL * 2)

	ok, err := store.Validate(ctx, id)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if ok {
		t.Error("Validate = true for expired session")
	}
}

func TestSessionStore_TouchAndRevoke(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	id, err := store.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if err := store.Touch(ctx, id); err != nil {
		t.Errorf("Touch failed: %v", err)
	}
	if err := store.Touch(ctx, "7b17cc04-0000-0000-0000-000000000000"); err == nil {
		t.Error("Touch(unknown) expected error")
	}

	if err := store.Revoke(ctx, id); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	ok, err := store.Validate(ctx, id)
	if err != nil || ok {
		t.Errorf("Validate after revoke = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestSessionStore_MemoryCache(t *testing.T) {
	store := NewSessionStore(NewMemoryCache(), testLogger())
	ctx := context.Background()

	id, err := store.Issue(ctx)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	ok, err := store.Validate(ctx, id)
	if err != nil || !ok {
		t.Errorf("Validate = (%v, %v), want (true, nil)", ok, err)
	}
}
