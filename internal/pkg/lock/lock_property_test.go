package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestConcurrentBalanceSafetyProperty checks that concurrent read-modify-write
// sequences under one owner's lock end where sequential execution would.
func TestConcurrentBalanceSafetyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(1000, 100000).Draw(t, "initial")
		numOps := rapid.IntRange(2, 20).Draw(t, "numOps")
		ownerID := rapid.Int64Range(1, 1000000).Draw(t, "ownerID")

		amounts := make([]int64, numOps)
		expected := initial
		for i := range amounts {
			amounts[i] = rapid.Int64Range(-500, 500).Draw(t, "amount")
			expected += amounts[i]
		}

		ul := NewUserLock()
		balance := initial

		var wg sync.WaitGroup
		wg.Add(numOps)
		for _, amount := range amounts {
			go func(amount int64) {
				defer wg.Done()
				_ = ul.WithLock(context.Background(), ownerID, time.Minute, func() error {
					balance += amount
					return nil
				})
			}(amount)
		}
		wg.Wait()

		if balance != expected {
			t.Fatalf("balance mismatch: expected %d, got %d", expected, balance)
		}
	})
}

// TestIndependentOwnersProperty checks that locks of different owners do
// not interfere and that the lock table drains once everything is released.
func TestIndependentOwnersProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOwners := rapid.IntRange(2, 10).Draw(t, "numOwners")
		opsPerOwner := rapid.IntRange(5, 20).Draw(t, "opsPerOwner")

		ul := NewUserLock()
		balances := make([]int64, numOwners)

		var wg sync.WaitGroup
		wg.Add(numOwners * opsPerOwner)
		for owner := 0; owner < numOwners; owner++ {
			for j := 0; j < opsPerOwner; j++ {
				go func(owner int) {
					defer wg.Done()
					if err := ul.Lock(context.Background(), int64(owner)); err != nil {
						return
					}
					defer ul.Unlock(int64(owner))
					balances[owner] += 10
				}(owner)
			}
		}
		wg.Wait()

		for owner, b := range balances {
			if b != int64(opsPerOwner)*10 {
				t.Fatalf("owner %d: expected %d, got %d", owner, opsPerOwner*10, b)
			}
		}
		ul.mu.Lock()
		left := len(ul.entries)
		ul.mu.Unlock()
		if left != 0 {
			t.Fatalf("expected empty lock table, %d entries left", left)
		}
	})
}

// held reports whether id's lock is currently taken.
func held(ul *UserLock, id int64) bool {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	e, ok := ul.entries[id]
	return ok && len(e.sem) == 1
}

// TestWithLockShortTimeoutExclusiveProperty checks that callers racing with
// a tiny timeout never get two holders in at once, and that the ones that
// give up leave nothing behind.
func TestWithLockShortTimeoutExclusiveProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ownerID := rapid.Int64Range(1, 1000000).Draw(t, "ownerID")
		attempts := rapid.IntRange(5, 20).Draw(t, "attempts")

		ul := NewUserLock()
		var holders, maxHolders atomic.Int32
		var wg sync.WaitGroup
		wg.Add(attempts)
		start := make(chan struct{})

		for i := 0; i < attempts; i++ {
			go func() {
				defer wg.Done()
				<-start
				_ = ul.WithLock(context.Background(), ownerID, time.Millisecond, func() error {
					n := holders.Add(1)
					for {
						m := maxHolders.Load()
						if n <= m || maxHolders.CompareAndSwap(m, n) {
							break
						}
					}
					holders.Add(-1)
					return nil
				})
			}()
		}
		close(start)
		wg.Wait()

		if maxHolders.Load() > 1 {
			t.Fatalf("lock admitted %d holders at once", maxHolders.Load())
		}
		ul.mu.Lock()
		left := len(ul.entries)
		ul.mu.Unlock()
		if left != 0 {
			t.Fatalf("%d lock entries left after all callers returned", left)
		}
	})
}

func TestWithLock_Timeout(t *testing.T) {
	ul := NewUserLock()
	require.NoError(t, ul.Lock(context.Background(), 7))
	assert.True(t, held(ul, 7))

	err := ul.WithLock(context.Background(), 7, 20*time.Millisecond, func() error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, ErrLockTimeout)

	ul.Unlock(7)
	assert.False(t, held(ul, 7))
	assert.NoError(t, ul.WithLock(context.Background(), 7, time.Second, func() error { return nil }))
}

func TestWithLock_ParentCancelled(t *testing.T) {
	ul := NewUserLock()
	require.NoError(t, ul.Lock(context.Background(), 1))
	defer ul.Unlock(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ul.WithLock(ctx, 1, time.Second, func() error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithPair_OppositeOrderDoesNotDeadlock(t *testing.T) {
	ul := NewUserLock()
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ul.WithPair(context.Background(), 1, 2, 5*time.Second, func() error { counter++; return nil })
		}()
		go func() {
			defer wg.Done()
			_ = ul.WithPair(context.Background(), 2, 1, 5*time.Second, func() error { counter++; return nil })
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
	assert.False(t, held(ul, 1))
	assert.False(t, held(ul, 2))
}

func TestUnlock_NotLockedIsNoop(t *testing.T) {
	ul := NewUserLock()
	ul.Unlock(99)
	assert.False(t, held(ul, 99))
	require.NoError(t, ul.WithLock(context.Background(), 99, time.Second, func() error { return nil }))
}
