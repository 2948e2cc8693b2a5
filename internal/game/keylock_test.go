package game

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestKeyedLock_MutualExclusion(t *testing.T) {
	l := NewKeyedLock()
	ctx := context.Background()

	var mu sync.Mutex
	active := 0
	maxActive := 0

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "room-a")
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer release()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("max concurrent holders = %d, want 1", maxActive)
	}
}

func TestKeyedLock_FIFOOrder(t *testing.T) {
	l := NewKeyedLock()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "room-a")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	started := make(chan struct{})

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n == 0 {
				close(started)
			} else {
				// Stagger arrivals so queue order is deterministic.
				time.Sleep(time.Duration(n) * 20 * time.Millisecond)
			}
			r, err := l.Acquire(ctx, "room-a")
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			r()
		}(i)
	}

	<-started
	time.Sleep(150 * time.Millisecond) // let all five queue up
	release()
	wg.Wait()

	for i, n := range order {
		if n != i {
			t.Fatalf("grant order = %v, want FIFO arrival order", order)
		}
	}
}

func TestKeyedLock_IndependentKeys(t *testing.T) {
	l := NewKeyedLock()
	ctx := context.Background()

	releaseA, err := l.Acquire(ctx, "room-a")
	if err != nil {
		t.Fatalf("Acquire(room-a) failed: %v", err)
	}
	defer releaseA()

	// A held lock on one room must not block another room.
	done := make(chan struct{})
	go func() {
		releaseB, err := l.Acquire(ctx, "room-b")
		if err != nil {
			t.Errorf("Acquire(room-b) failed: %v", err)
			return
		}
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Acquire(room-b) blocked behind room-a's lock")
	}
}

func TestKeyedLock_ReleaseIsIdempotent(t *testing.T) {
	l := NewKeyedLock()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "room-a")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	release()
	release() // second call must be a no-op

	// Lock must still be acquirable and releasable.
	release2, err := l.Acquire(ctx, "room-a")
	if err != nil {
		t.Fatalf("Acquire after double release failed: %v", err)
	}
	release2()
}

func TestKeyedLock_ContextCancellation(t *testing.T) {
	l := NewKeyedLock()

	release, err := l.Acquire(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := l.Acquire(ctx, "room-a")
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("Acquire expected context error")
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled Acquire did not return")
	}

	// The cancelled waiter must not corrupt the queue.
	release()
	release2, err := l.Acquire(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("Acquire after cancellation failed: %v", err)
	}
	release2()
}
