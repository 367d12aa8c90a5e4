package ecs

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrSharedWhileExclusive   = errors.New("shared access while exclusively held")
	ErrExclusiveWhileBorrowed = errors.New("exclusive access while already held")
	ErrDoubleRelease          = errors.New("guard released twice")
)

// BorrowError is the panic value for an aliasing violation. These are logic
// defects, never retried.
type BorrowError struct {
	Handle Handle
	State  int32
	Err    error
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("borrow %s: %v (state %d)", e.Handle, e.Err, e.State)
}

func (e *BorrowError) Unwrap() error { return e.Err }

// exclusiveState marks a handle held by one exclusive guard.
const exclusiveState int32 = -1

// Tracker is the per-handle access side table: 0 free, n>0 shared by n guards,
// -1 held exclusively. The mutex only protects the table; the runtime is
// still driven by a single goroutine.
type Tracker struct {
	mu     sync.Mutex
	state  map[Handle]int32
	open   int
	onIdle func()
}

func NewTracker() *Tracker {
	return &Tracker{state: make(map[Handle]int32, 64)}
}

// OnIdle sets a hook called, outside the lock, whenever a release brings the
// number of open guards back to zero.
func (t *Tracker) OnIdle(fn func()) {
	t.onIdle = fn
}

func (t *Tracker) AcquireShared(h Handle) *Guard {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.state[h]
	if st < 0 {
		panic(&BorrowError{Handle: h, State: st, Err: ErrSharedWhileExclusive})
	}
	t.state[h] = st + 1
	t.open++
	return &Guard{t: t, h: h}
}

func (t *Tracker) AcquireExclusive(h Handle) *Guard {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.state[h]
	if st != 0 {
		panic(&BorrowError{Handle: h, State: st, Err: ErrExclusiveWhileBorrowed})
	}
	t.state[h] = exclusiveState
	t.open++
	return &Guard{t: t, h: h, exclusive: true}
}

func (t *Tracker) release(g *Guard) {
	t.mu.Lock()
	if g.released {
		st := t.state[g.h]
		t.mu.Unlock()
		panic(&BorrowError{Handle: g.h, State: st, Err: ErrDoubleRelease})
	}
	g.released = true
	st := t.state[g.h]
	switch {
	case g.exclusive || st <= 1:
		delete(t.state, g.h)
	default:
		t.state[g.h] = st - 1
	}
	t.open--
	idle := t.open == 0
	t.mu.Unlock()

	if idle && t.onIdle != nil {
		t.onIdle()
	}
}

// Open returns the number of guards not yet released.
func (t *Tracker) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// State returns the raw access counter for h.
func (t *Tracker) State(h Handle) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state[h]
}

// Guard is a scoped access claim. Release it exactly once, normally by defer.
type Guard struct {
	t         *Tracker
	h         Handle
	exclusive bool
	released  bool
}

func (g *Guard) Handle() Handle  { return g.h }
func (g *Guard) Exclusive() bool { return g.exclusive }

func (g *Guard) Release() {
	g.t.release(g)
}
