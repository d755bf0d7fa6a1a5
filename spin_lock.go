package atomix

import (
	"sync/atomic"
)

// SpinLock is a non-reentrant mutual-exclusion lock for very short critical
// sections (a handle read or write, a refcount bump). Contended acquisition
// busy-waits with a hybrid spin/backoff strategy instead of parking on the
// scheduler, so it should never guard work that can block.
//
// Properties:
//   - Not reentrant: a goroutine calling Lock while already holding the
//     lock deadlocks. This is a precondition violation, not a recoverable
//     state.
//   - No owner: one goroutine may Lock and another Unlock.
//   - No fairness guarantee.
//
// It is zero-value usable (starts unlocked). Size: 4 bytes (plus padding).
type SpinLock struct {
	_     noCopy
	state atomic.Uint32
}

// Lock acquires the lock. Blocks until the lock is available.
func (l *SpinLock) Lock() {
	if l.state.CompareAndSwap(0, 1) {
		return
	}
	l.slowLock()
}

func (l *SpinLock) slowLock() {
	var spins int
	for !l.TryLock() {
		delay(&spins)
	}
}

// TryLock attempts to acquire the lock without blocking.
// It returns true if the lock was acquired.
//
//go:nosplit
func (l *SpinLock) TryLock() bool {
	return l.state.Load() == 0 && l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. It is only valid while the lock is held;
// unlocking a free lock corrupts its state.
//
//go:nosplit
func (l *SpinLock) Unlock() {
	l.state.Store(0)
}
