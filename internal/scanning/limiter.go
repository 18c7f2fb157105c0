package scanning

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrLimiterClosed is returned by Acquire and TryAcquire after Close.
	ErrLimiterClosed = errors.New("process limiter is closed")
	// ErrLimiterBusy is returned by TryAcquire when every slot is held.
	ErrLimiterBusy = errors.New("all process slots are in use")
)

// ProcessLimiter caps how many scanner processes run at once. Each request
// still runs on its own goroutine; the limiter only decides when its child
// process may start.
type ProcessLimiter struct {
	capacity  int
	semaphore chan struct{}
	active    map[string]time.Time
	mutex     sync.RWMutex
	closed    bool
}

// NewProcessLimiter returns a limiter with capacity slots. Capacity below one
// is raised to one.
func NewProcessLimiter(capacity int) *ProcessLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	return &ProcessLimiter{
		capacity:  capacity,
		semaphore: make(chan struct{}, capacity),
		active:    make(map[string]time.Time),
	}
}

// Acquire blocks until a slot is free for id or ctx is done.
func (l *ProcessLimiter) Acquire(ctx context.Context, id string) error {
	if l.isClosed() {
		return ErrLimiterClosed
	}

	select {
	case l.semaphore <- struct{}{}:
		return l.hold(id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot for id without waiting. It returns ErrLimiterBusy
// when none is free.
func (l *ProcessLimiter) TryAcquire(id string) error {
	if l.isClosed() {
		return ErrLimiterClosed
	}

	select {
	case l.semaphore <- struct{}{}:
		return l.hold(id)
	default:
		return ErrLimiterBusy
	}
}

func (l *ProcessLimiter) isClosed() bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.closed
}

// hold records id as the owner of a slot just taken from the semaphore.
// Close may have run between the send and here; the slot is handed back.
func (l *ProcessLimiter) hold(id string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		select {
		case <-l.semaphore:
		default:
		}
		return ErrLimiterClosed
	}
	l.active[id] = time.Now()
	return nil
}

// Release frees the slot held by id. Unknown ids are ignored.
func (l *ProcessLimiter) Release(id string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, ok := l.active[id]; !ok {
		return
	}
	delete(l.active, id)
	select {
	case <-l.semaphore:
	default:
	}
}

// Active returns the number of held slots.
func (l *ProcessLimiter) Active() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.active)
}

// Available returns the number of free slots.
func (l *ProcessLimiter) Available() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.capacity - len(l.active)
}

// Capacity returns the configured number of slots.
func (l *ProcessLimiter) Capacity() int {
	return l.capacity
}

// Oldest returns how long the longest running holder has had its slot.
func (l *ProcessLimiter) Oldest() time.Duration {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	var oldest time.Duration
	now := time.Now()
	for _, started := range l.active {
		if d := now.Sub(started); d > oldest {
			oldest = d
		}
	}
	return oldest
}

// Close refuses further acquisitions and forgets held slots.
func (l *ProcessLimiter) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.active = make(map[string]time.Time)
	for {
		select {
		case <-l.semaphore:
		default:
			return nil
		}
	}
}
