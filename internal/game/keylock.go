package game

import (
	"context"
	"sync"
)

// KeyedLock provides strict mutual exclusion per string key. Callers
// that request a held key queue in arrival order and are granted the
// lock FIFO. Idle keys hold no memory.
type KeyedLock struct {
	mu    sync.Mutex
	locks map[string]*lockState
}

type lockState struct {
	held    bool
	waiters []chan struct{}
}

// NewKeyedLock creates an empty keyed lock manager.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{
		locks: make(map[string]*lockState),
	}
}

// Acquire blocks until the key's lock is granted or ctx is done. On
// success it returns a release func that must be called on every exit
// path; calling it more than once is a no-op.
func (l *KeyedLock) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	st, ok := l.locks[key]
	if !ok {
		st = &lockState{}
		l.locks[key] = st
	}

	if !st.held {
		st.held = true
		l.mu.Unlock()
		return l.releaseFunc(key), nil
	}

	grant := make(chan struct{})
	st.waiters = append(st.waiters, grant)
	l.mu.Unlock()

	select {
	case <-grant:
		return l.releaseFunc(key), nil
	case <-ctx.Done():
		l.mu.Lock()
		for i, w := range st.waiters {
			if w == grant {
				st.waiters = append(st.waiters[:i], st.waiters[i+1:]...)
				l.mu.Unlock()
				return nil, ctx.Err()
			}
		}
		// The grant raced the cancellation: we own the lock and must
		// pass it on before reporting the error.
		l.releaseLocked(key)
		l.mu.Unlock()
		return nil, ctx.Err()
	}
}

// releaseFunc wraps releaseLocked in a once guard.
func (l *KeyedLock) releaseFunc(key string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.releaseLocked(key)
			l.mu.Unlock()
		})
	}
}

// releaseLocked hands the lock to the oldest waiter, or clears it.
// Callers must hold l.mu.
func (l *KeyedLock) releaseLocked(key string) {
	st, ok := l.locks[key]
	if !ok {
		return
	}
	if len(st.waiters) > 0 {
		grant := st.waiters[0]
		st.waiters = st.waiters[1:]
		close(grant)
		return
	}
	delete(l.locks, key)
}
