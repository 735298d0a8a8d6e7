package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	r, _ := newTestRedisStore(t)
	ctx := context.Background()

	want := testSession("u1", time.Hour)
	if err := r.Save(ctx, "tok1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := r.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != want.UserID || got.CSRFToken != want.CSRFToken {
		t.Fatalf("round trip mismatch: got %+v", got)
	}
}

func TestRedisStoreGetMissing(t *testing.T) {
	r, _ := newTestRedisStore(t)

	if _, err := r.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	r, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := r.Save(ctx, "tok1", testSession("u1", time.Minute)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := r.Get(ctx, "tok1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRedisStoreDeleteRemovesIndex(t *testing.T) {
	r, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := r.Save(ctx, "tok1", testSession("alice", time.Hour)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	existed, err := r.Delete(ctx, "tok1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Fatal("Delete reported no record for a saved session")
	}
	if again, _ := r.Delete(ctx, "tok1"); again {
		t.Fatal("second Delete reported a record")
	}
	if mr.Exists(sessionKey("tok1")) {
		t.Fatal("session key still present after Delete")
	}
	members, err := mr.SMembers(userIndexKey("alice"))
	if err == nil && len(members) != 0 {
		t.Fatalf("index still references deleted session: %v", members)
	}
}

func TestRedisStoreDeleteForUser(t *testing.T) {
	r, _ := newTestRedisStore(t)
	ctx := context.Background()

	_ = r.Save(ctx, "a1", testSession("alice", time.Hour))
	_ = r.Save(ctx, "a2", testSession("alice", time.Hour))
	_ = r.Save(ctx, "b1", testSession("bob", time.Hour))

	removed, err := r.DeleteForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("DeleteForUser: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, err := r.Get(ctx, "a1"); err != ErrNotFound {
		t.Fatalf("alice session survived: %v", err)
	}
	if _, err := r.Get(ctx, "b1"); err != nil {
		t.Fatalf("bob session lost: %v", err)
	}
}

func TestRedisStoreCountForUser(t *testing.T) {
	r, mr := newTestRedisStore(t)
	ctx := context.Background()

	_ = r.Save(ctx, "a1", testSession("alice", time.Hour))
	_ = r.Save(ctx, "a2", testSession("alice", time.Hour))
	_ = r.Save(ctx, "b1", testSession("bob", time.Hour))

	got, err := r.CountForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CountForUser: %v", err)
	}
	if got != 2 {
		t.Fatalf("CountForUser(alice) = %d, want 2", got)
	}

	// A stale index member whose record is gone must not be counted.
	mr.Del(sessionKey("a2"))
	if got, _ := r.CountForUser(ctx, "alice"); got != 1 {
		t.Fatalf("CountForUser(alice) after record loss = %d, want 1", got)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisStore(client)
	mr.Close()

	if err := r.Save(context.Background(), "tok1", testSession("u1", time.Hour)); err == nil {
		t.Fatal("expected transport error, got nil")
	}
}
