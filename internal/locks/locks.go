package locks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrBusy means a wallet or product lock could not be acquired within
// the configured ceiling. Callers retry with backoff; the request left
// no state behind.
var ErrBusy = errors.New("resource busy, try again")

// KeyedMutex serializes operations per key (wallet id, product id).
// Operations on distinct keys proceed in parallel; two operations on the
// same key are strictly ordered. Acquire blocks until the lock is held,
// the context ends, or the acquire timeout elapses.
type KeyedMutex struct {
	mu      sync.Mutex
	held    map[string]chan struct{}
	timeout time.Duration
}

func NewKeyedMutex(timeout time.Duration) *KeyedMutex {
	return &KeyedMutex{
		held:    make(map[string]chan struct{}),
		timeout: timeout,
	}
}

func (m *KeyedMutex) Acquire(ctx context.Context, key string) error {
	deadline := time.NewTimer(m.timeout)
	defer deadline.Stop()

	for {
		m.mu.Lock()
		ch, taken := m.held[key]
		if !taken {
			m.held[key] = make(chan struct{})
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()

		select {
		case <-ch:
			// Holder released; loop and race for the lock again.
		case <-ctx.Done():
			return ErrBusy
		case <-deadline.C:
			return ErrBusy
		}
	}
}

func (m *KeyedMutex) Release(key string) {
	m.mu.Lock()
	ch, taken := m.held[key]
	if taken {
		delete(m.held, key)
		close(ch)
	}
	m.mu.Unlock()
}

// AcquireMany takes several locks in lexicographic key order, which is
// the fixed global order that keeps cross-wallet settlements from
// deadlocking. On failure every lock taken so far is released.
func (m *KeyedMutex) AcquireMany(ctx context.Context, keys ...string) error {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	for i, k := range sorted {
		if err := m.Acquire(ctx, k); err != nil {
			for j := 0; j < i; j++ {
				m.Release(sorted[j])
			}
			return err
		}
	}
	return nil
}

func (m *KeyedMutex) ReleaseMany(keys ...string) {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		m.Release(k)
	}
}
