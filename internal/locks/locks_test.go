package locks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	m := NewKeyedMutex(time.Second)
	ctx := context.Background()

	if err := m.Acquire(ctx, "w-1"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	// A different key is independent.
	if err := m.Acquire(ctx, "w-2"); err != nil {
		t.Fatalf("acquire of independent key: %v", err)
	}

	m.Release("w-1")
	m.Release("w-2")

	// Released keys can be taken again.
	if err := m.Acquire(ctx, "w-1"); err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	m.Release("w-1")
}

func TestAcquireTimesOutWithBusy(t *testing.T) {
	m := NewKeyedMutex(50 * time.Millisecond)
	ctx := context.Background()

	if err := m.Acquire(ctx, "w-1"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer m.Release("w-1")

	start := time.Now()
	err := m.Acquire(ctx, "w-1")
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("second acquire error = %v, want ErrBusy", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("acquire gave up after %v, expected it to wait for the timeout", elapsed)
	}
}

func TestAcquireHonorsContextCancel(t *testing.T) {
	m := NewKeyedMutex(10 * time.Second)

	if err := m.Acquire(context.Background(), "w-1"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer m.Release("w-1")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if err := m.Acquire(ctx, "w-1"); !errors.Is(err, ErrBusy) {
		t.Fatalf("acquire error = %v, want ErrBusy after cancel", err)
	}
}

func TestAcquireWaitsForRelease(t *testing.T) {
	m := NewKeyedMutex(time.Second)
	ctx := context.Background()

	if err := m.Acquire(ctx, "w-1"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	acquired := make(chan error, 1)
	go func() {
		acquired <- m.Acquire(ctx, "w-1")
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while the lock was held")
	case <-time.After(20 * time.Millisecond):
	}

	m.Release("w-1")

	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("acquire after release: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never got the lock after release")
	}
	m.Release("w-1")
}

func TestAcquireManyRollsBackOnFailure(t *testing.T) {
	m := NewKeyedMutex(30 * time.Millisecond)
	ctx := context.Background()

	// Hold "b" so AcquireMany fails midway through its sorted order.
	if err := m.Acquire(ctx, "b"); err != nil {
		t.Fatalf("setup acquire: %v", err)
	}

	if err := m.AcquireMany(ctx, "c", "a", "b"); !errors.Is(err, ErrBusy) {
		t.Fatalf("AcquireMany error = %v, want ErrBusy", err)
	}

	// "a" must have been rolled back, so it is immediately takable.
	if err := m.Acquire(ctx, "a"); err != nil {
		t.Fatalf("acquire of rolled-back key: %v", err)
	}
	m.Release("a")
	m.Release("b")
}

func TestAcquireManyDeduplicatesKeys(t *testing.T) {
	m := NewKeyedMutex(time.Second)
	ctx := context.Background()

	if err := m.AcquireMany(ctx, "w-1", "w-1", "w-2"); err != nil {
		t.Fatalf("AcquireMany with duplicate keys: %v", err)
	}
	m.ReleaseMany("w-1", "w-1", "w-2")

	// Everything must be released again.
	if err := m.AcquireMany(ctx, "w-1", "w-2"); err != nil {
		t.Fatalf("reacquire after ReleaseMany: %v", err)
	}
	m.ReleaseMany("w-1", "w-2")
}

func TestConcurrentHoldersAreSerialized(t *testing.T) {
	m := NewKeyedMutex(5 * time.Second)
	ctx := context.Background()

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Acquire(ctx, "w-1"); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			counter++
			m.Release("w-1")
		}()
	}
	wg.Wait()

	if counter != 20 {
		t.Errorf("counter = %d, want 20", counter)
	}
}
