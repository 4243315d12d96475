package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/crm-backend/pkg/instance"
	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Minute

// Lock guards a job so only one run of it happens at a time.
type Lock interface {
	Acquire(ctx context.Context, job string) (bool, error)
	Release(ctx context.Context, job string) error
}

// lockStore defines the Redis operations used by RedisLock.
type lockStore interface {
	AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, owner string) error
}

// RedisLock implements Lock with Redis SETNX + TTL, shared by every worker
// replica.
type RedisLock struct {
	store lockStore
	ttl   time.Duration
	owner string
}

// NewRedisLock constructs a Redis-backed lock. Each process gets its own owner
// token.
func NewRedisLock(store lockStore, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, ttl: ttl, owner: instance.GetID() + ":" + uuid.NewString()}, nil
}

func (l *RedisLock) Acquire(ctx context.Context, job string) (bool, error) {
	ok, err := l.store.AcquireLock(ctx, job, l.owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	return ok, nil
}

// Release frees the lock only if this process still owns it.
func (l *RedisLock) Release(ctx context.Context, job string) error {
	if err := l.store.ReleaseLock(ctx, job, l.owner); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// LocalLock is the in-process fallback used when Redis is not configured.
type LocalLock struct {
	mu      sync.Mutex
	running map[string]bool
}

func NewLocalLock() *LocalLock {
	return &LocalLock{running: map[string]bool{}}
}

func (l *LocalLock) Acquire(_ context.Context, job string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running[job] {
		return false, nil
	}
	l.running[job] = true
	return true, nil
}

func (l *LocalLock) Release(_ context.Context, job string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.running, job)
	return nil
}
