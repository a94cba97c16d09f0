package loader

import "sync/atomic"

// LoadLock provides non-blocking lock semantics using atomic operations.
// A second load started while one is running fails fast instead of queueing.
type LoadLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *LoadLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired the lock.
func (l *LoadLock) Release() {
	l.state.Store(0)
}

// Held reports whether a load is running
func (l *LoadLock) Held() bool {
	return l.state.Load() == 1
}
