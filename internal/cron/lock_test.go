package cron

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeLockStore struct {
	owners map[string]string
	ttl    time.Duration
	err    error
}

func (f *fakeLockStore) AcquireLock(_ context.Context, name, owner string, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, held := f.owners[name]; held {
		return false, nil
	}
	f.owners[name] = owner
	f.ttl = ttl
	return true, nil
}

func (f *fakeLockStore) ReleaseLock(_ context.Context, name, owner string) error {
	if f.owners[name] == owner {
		delete(f.owners, name)
	}
	return nil
}

func TestRedisLockIsPerJobAndPerOwner(t *testing.T) {
	store := &fakeLockStore{owners: map[string]string{}}
	replicaA, err := NewRedisLock(store, 0)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}
	replicaB, _ := NewRedisLock(store, time.Minute)
	ctx := context.Background()

	if ok, _ := replicaA.Acquire(ctx, "heartbeat"); !ok {
		t.Fatalf("expected replica A to take the heartbeat lock")
	}
	if store.ttl != defaultLockTTL {
		t.Fatalf("expected default ttl, got %v", store.ttl)
	}
	if ok, _ := replicaB.Acquire(ctx, "heartbeat"); ok {
		t.Fatalf("replica B must not overlap the same job")
	}
	if ok, _ := replicaB.Acquire(ctx, "low-stock"); !ok {
		t.Fatalf("different jobs must not block each other")
	}

	_ = replicaB.Release(ctx, "heartbeat")
	if _, held := store.owners["heartbeat"]; !held {
		t.Fatalf("non-owner release must not drop the lock")
	}
	_ = replicaA.Release(ctx, "heartbeat")
	if _, held := store.owners["heartbeat"]; held {
		t.Fatalf("owner release should drop the lock")
	}
}

func TestRedisLockErrors(t *testing.T) {
	if _, err := NewRedisLock(nil, time.Minute); err == nil {
		t.Fatalf("expected nil store error")
	}
	lock, _ := NewRedisLock(&fakeLockStore{owners: map[string]string{}, err: errors.New("conn refused")}, time.Minute)
	if _, err := lock.Acquire(context.Background(), "x"); err == nil {
		t.Fatalf("expected acquire error")
	}
}

func TestLocalLock(t *testing.T) {
	lock := NewLocalLock()
	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx, "a"); !ok {
		t.Fatalf("expected first acquire")
	}
	if ok, _ := lock.Acquire(ctx, "a"); ok {
		t.Fatalf("expected second acquire to fail")
	}
	_ = lock.Release(ctx, "a")
	if ok, _ := lock.Acquire(ctx, "a"); !ok {
		t.Fatalf("expected acquire after release")
	}
}
