// Package lock provides per-owner mutual exclusion for commands that move
// balances or touch game sessions.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned when an owner's lock is not acquired in time.
var ErrLockTimeout = errors.New("lock acquisition timeout")

// entry is a one-slot semaphore shared by the holder and all waiters of
// one owner. refs counts both; the entry is dropped when it reaches zero.
type entry struct {
	sem  chan struct{}
	refs int
}

// UserLock serialises work per owner id. The zero value is not usable;
// create one with NewUserLock and inject it where needed.
type UserLock struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{entries: make(map[int64]*entry)}
}

func (ul *UserLock) ref(id int64) *entry {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	e, ok := ul.entries[id]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		ul.entries[id] = e
	}
	e.refs++
	return e
}

func (ul *UserLock) unref(id int64, e *entry) {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(ul.entries, id)
	}
}

// Lock blocks until the owner's lock is held or ctx is done.
func (ul *UserLock) Lock(ctx context.Context, id int64) error {
	e := ul.ref(id)
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		ul.unref(id, e)
		return ctx.Err()
	}
}

// Unlock releases the owner's lock. Unlocking an owner that is not locked
// is a no-op.
func (ul *UserLock) Unlock(id int64) {
	ul.mu.Lock()
	e, ok := ul.entries[id]
	ul.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-e.sem:
		ul.unref(id, e)
	default:
	}
}

// WithLock runs fn while holding the owner's lock. It gives up with
// ErrLockTimeout if the lock is not acquired within timeout.
func (ul *UserLock) WithLock(ctx context.Context, id int64, timeout time.Duration, fn func() error) error {
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ul.Lock(lctx, id); err != nil {
		return lockErr(ctx, err)
	}
	defer ul.Unlock(id)
	return fn()
}

// WithPair runs fn while holding the locks of two owners. Locks are taken
// in ascending id order so two opposite pairs cannot deadlock.
func (ul *UserLock) WithPair(ctx context.Context, a, b int64, timeout time.Duration, fn func() error) error {
	if a == b {
		return ul.WithLock(ctx, a, timeout, fn)
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ul.Lock(lctx, first); err != nil {
		return lockErr(ctx, err)
	}
	defer ul.Unlock(first)
	if err := ul.Lock(lctx, second); err != nil {
		return lockErr(ctx, err)
	}
	defer ul.Unlock(second)
	return fn()
}

// lockErr reports a timeout as ErrLockTimeout unless the caller's own
// context was cancelled.
func lockErr(parent context.Context, err error) error {
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return ErrLockTimeout
	}
	return err
}
