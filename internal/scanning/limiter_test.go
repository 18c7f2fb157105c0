package scanning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestProcessLimiter_Acquire(t *testing.T) {
	t.Run("successful acquisition", func(t *testing.T) {
		l := NewProcessLimiter(5)

		if err := l.Acquire(context.Background(), "scan-1"); err != nil {
			t.Fatalf("Expected successful acquisition, got error: %v", err)
		}
		if l.Active() != 1 {
			t.Errorf("Expected 1 active process, got %d", l.Active())
		}
		l.Release("scan-1")
	})

	t.Run("exhaustion blocks until deadline", func(t *testing.T) {
		l := NewProcessLimiter(2)
		ctx := context.Background()

		if err := l.Acquire(ctx, "scan-1"); err != nil {
			t.Fatal(err)
		}
		if err := l.Acquire(ctx, "scan-2"); err != nil {
			t.Fatal(err)
		}

		ctx3, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		if err := l.Acquire(ctx3, "scan-3"); err == nil {
			t.Error("Expected timeout error, got success")
		}

		l.Release("scan-1")
		l.Release("scan-2")
		if l.Available() != 2 {
			t.Errorf("Expected 2 available slots, got %d", l.Available())
		}
	})

	t.Run("closed limiter refuses", func(t *testing.T) {
		l := NewProcessLimiter(1)
		if err := l.Close(); err != nil {
			t.Fatal(err)
		}
		if err := l.Acquire(context.Background(), "late"); err != ErrLimiterClosed {
			t.Errorf("Expected ErrLimiterClosed, got %v", err)
		}
	})

	t.Run("capacity floor", func(t *testing.T) {
		if c := NewProcessLimiter(0).Capacity(); c != 1 {
			t.Errorf("Expected capacity 1, got %d", c)
		}
	})
}

func TestProcessLimiter_ReleaseUnknown(t *testing.T) {
	l := NewProcessLimiter(2)
	l.Release("never-acquired")
	if l.Active() != 0 || l.Available() != 2 {
		t.Errorf("Unexpected state: active=%d available=%d", l.Active(), l.Available())
	}
}

func TestProcessLimiter_Oldest(t *testing.T) {
	l := NewProcessLimiter(2)
	if l.Oldest() != 0 {
		t.Errorf("Expected zero with no holders, got %v", l.Oldest())
	}
	if err := l.Acquire(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if l.Oldest() < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms, got %v", l.Oldest())
	}
	l.Release("a")
}

func TestProcessLimiter_ConcurrentAccess(t *testing.T) {
	l := NewProcessLimiter(4)
	ctx := context.Background()

	const workers = 20
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				id := fmt.Sprintf("worker-%d-scan-%d", worker, j)
				if err := l.Acquire(ctx, id); err != nil {
					errs <- err
					return
				}
				if l.Active() > l.Capacity() {
					errs <- fmt.Errorf("active %d exceeds capacity", l.Active())
				}
				time.Sleep(time.Millisecond)
				l.Release(id)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}
	if l.Active() != 0 {
		t.Errorf("Expected 0 active after completion, got %d", l.Active())
	}
}

func TestProcessLimiter_TryAcquire(t *testing.T) {
	l := NewProcessLimiter(1)

	if err := l.TryAcquire("scan-1"); err != nil {
		t.Fatalf("Expected free slot, got error: %v", err)
	}
	if err := l.TryAcquire("scan-2"); !errors.Is(err, ErrLimiterBusy) {
		t.Fatalf("Expected ErrLimiterBusy, got %v", err)
	}
	if l.Active() != 1 {
		t.Errorf("Refused acquisition must not hold a slot, got %d active", l.Active())
	}

	l.Release("scan-1")
	if err := l.TryAcquire("scan-2"); err != nil {
		t.Fatalf("Expected slot after release, got error: %v", err)
	}

	_ = l.Close()
	if err := l.TryAcquire("scan-3"); !errors.Is(err, ErrLimiterClosed) {
		t.Errorf("Expected ErrLimiterClosed, got %v", err)
	}
}

func TestProcessLimiter_SlotTakenAfterClose(t *testing.T) {
	l := NewProcessLimiter(1)
	_ = l.Close()

	// A waiter whose send lands after Close drained the semaphore.
	l.semaphore <- struct{}{}
	if err := l.hold("late"); !errors.Is(err, ErrLimiterClosed) {
		t.Fatalf("Expected ErrLimiterClosed, got %v", err)
	}
	if l.Active() != 0 {
		t.Errorf("Expected no active holders, got %d", l.Active())
	}
	if len(l.semaphore) != 0 {
		t.Errorf("Expected the slot to be handed back, %d still taken", len(l.semaphore))
	}
}

func TestProcessLimiter_AcquireWaiterRefusedAfterClose(t *testing.T) {
	l := NewProcessLimiter(1)
	if err := l.Acquire(context.Background(), "holder"); err != nil {
		t.Fatal(err)
	}

	result := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		result <- l.Acquire(ctx, "waiter")
	}()

	time.Sleep(20 * time.Millisecond)
	_ = l.Close()

	err := <-result
	if err == nil {
		t.Fatal("Expected waiter to be refused after Close")
	}
	if l.Active() != 0 {
		t.Errorf("Expected no active holders after Close, got %d", l.Active())
	}
}
