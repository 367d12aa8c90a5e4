package world

import (
	"testing"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Counter struct {
	N int
}

func (c *Counter) Bounds() ecs.Rect { return ecs.Rect{} }

type Gauge struct {
	Level int
}

func (g *Gauge) Bounds() ecs.Rect { return ecs.Rect{W: g.Level, H: 1} }

// Tag is stored by value to exercise write-back through RefMut.Set.
type Tag struct {
	Name string
}

func (Tag) Bounds() ecs.Rect { return ecs.Rect{} }

type Ping struct{}

func requireBorrowPanic(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a borrow panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, want)
	}()
	fn()
}

func TestInsertFetchRoundTrip(t *testing.T) {
	w := New()
	c := &Counter{N: 3}
	h := w.Insert(c)
	require.True(t, w.Alive(h))

	ref, ok := Fetch[*Counter](w, h)
	require.True(t, ok)
	assert.Same(t, c, ref.Value())
	assert.Equal(t, 3, ref.Value().N)
	ref.Release()

	_, ok = Fetch[*Gauge](w, h)
	assert.False(t, ok, "type mismatch must be absent")

	_, ok = Fetch[*Counter](w, h+100)
	assert.False(t, ok, "unknown handle must be absent")

	dyn, ok := FetchDyn(w, h)
	require.True(t, ok)
	assert.Equal(t, ecs.Rect{}, dyn.Value().Bounds())
	dyn.Release()

	assert.Equal(t, 0, w.OpenGuards())
}

func TestHandlesAreNotReused(t *testing.T) {
	w := New()
	h1 := w.Insert(&Counter{})
	w.Remove(h1)
	h2 := w.Insert(&Counter{})

	assert.NotEqual(t, h1, h2)
	assert.False(t, w.Alive(h1))
	_, ok := Fetch[*Counter](w, h1)
	assert.False(t, ok)
}

func TestAliasingRules(t *testing.T) {
	w := New()
	h := w.Insert(&Counter{})

	t.Run("shared with shared", func(t *testing.T) {
		a, ok := Fetch[*Counter](w, h)
		require.True(t, ok)
		b, ok := Fetch[*Counter](w, h)
		require.True(t, ok)
		assert.Equal(t, int32(2), w.BorrowState(h))
		a.Release()
		b.Release()
		assert.Equal(t, int32(0), w.BorrowState(h))
	})

	t.Run("exclusive while shared", func(t *testing.T) {
		a, _ := Fetch[*Counter](w, h)
		requireBorrowPanic(t, ecs.ErrExclusiveWhileBorrowed, func() {
			_, _ = FetchMut[*Counter](w, h)
		})
		a.Release()
	})

	t.Run("exclusive while exclusive", func(t *testing.T) {
		m, _ := FetchMut[*Counter](w, h)
		requireBorrowPanic(t, ecs.ErrExclusiveWhileBorrowed, func() {
			_, _ = FetchMut[*Counter](w, h)
		})
		m.Release()
	})

	t.Run("shared while exclusive", func(t *testing.T) {
		m, _ := FetchMut[*Counter](w, h)
		assert.Equal(t, int32(-1), w.BorrowState(h))
		requireBorrowPanic(t, ecs.ErrSharedWhileExclusive, func() {
			_, _ = Fetch[*Counter](w, h)
		})
		m.Release()
	})

	t.Run("double release", func(t *testing.T) {
		a, _ := Fetch[*Counter](w, h)
		a.Release()
		requireBorrowPanic(t, ecs.ErrDoubleRelease, a.Release)
	})

	assert.Equal(t, 0, w.OpenGuards())
}

func TestFetchMutSetWritesBack(t *testing.T) {
	w := New()
	h := w.Insert(Tag{Name: "a"})

	m, ok := FetchMut[Tag](w, h)
	require.True(t, ok)
	m.Set(Tag{Name: "b"})
	m.Release()

	ref, ok := Fetch[Tag](w, h)
	require.True(t, ok)
	assert.Equal(t, "b", ref.Value().Name)
	ref.Release()
}

func TestModifyAndUpdateOnValueElements(t *testing.T) {
	w := New()
	h := w.Insert(Tag{Name: "a"})

	called := false
	assert.False(t, Modify(w, h, func(tg Tag) { called = true }), "a copy cannot be modified in place")
	assert.False(t, called)

	require.True(t, Update(w, h, func(tg Tag) Tag {
		tg.Name += "b"
		return tg
	}))
	With(w, h, func(tg Tag) { assert.Equal(t, "ab", tg.Name) })

	c := w.Insert(&Counter{N: 1})
	require.True(t, Update(w, c, func(cn *Counter) *Counter {
		cn.N++
		return cn
	}))
	With(w, c, func(cn *Counter) { assert.Equal(t, 2, cn.N) })
	assert.False(t, Update(w, c, func(tg Tag) Tag { return tg }))
	assert.Equal(t, 0, w.OpenGuards())
}

func TestSingletonTransitions(t *testing.T) {
	w := New()

	_, ok := SingleHandle[*Counter](w)
	assert.False(t, ok)
	assert.Equal(t, 0, SingletonOf[*Counter](w).Count)

	e1 := w.Insert(&Counter{N: 1})
	got, ok := SingleHandle[*Counter](w)
	require.True(t, ok)
	assert.Equal(t, e1, got)

	e2 := w.Insert(&Counter{N: 2})
	_, ok = Single[*Counter](w)
	assert.False(t, ok)
	st := SingletonOf[*Counter](w)
	assert.True(t, st.Multiple())
	assert.Equal(t, 2, st.Count)

	// Other types are unaffected.
	g := w.Insert(&Gauge{})
	gh, ok := SingleHandle[*Gauge](w)
	require.True(t, ok)
	assert.Equal(t, g, gh)

	w.Remove(e1)
	ref, ok := Single[*Counter](w)
	require.True(t, ok, "removing one of two must make the survivor unique again")
	assert.Equal(t, e2, ref.Handle())
	assert.Equal(t, 2, ref.Value().N)
	ref.Release()

	m, ok := SingleMut[*Counter](w)
	require.True(t, ok)
	m.Value().N = 20
	m.Release()

	w.Remove(e2)
	assert.Equal(t, 0, SingletonOf[*Counter](w).Count)
}

func TestTriggerOnIsVisibleImmediately(t *testing.T) {
	w := New()
	e1 := w.Insert(&Counter{})
	w.Insert(&Counter{})

	_, ok := SingleHandle[*Counter](w)
	assert.False(t, ok)

	Observe(w, e1, func(w *World, self ecs.Handle, _ Ping) {
		Modify(w, self, func(c *Counter) { c.N++ })
	})

	n := TriggerOn(w, e1, Ping{})
	assert.Equal(t, 1, n)

	ref, ok := Fetch[*Counter](w, e1)
	require.True(t, ok)
	assert.Equal(t, 1, ref.Value().N)
	ref.Release()
}

func TestObserverRegisteredDuringDispatchIsDeferred(t *testing.T) {
	w := New()
	h1 := w.Insert(&Counter{})
	h2 := w.Insert(&Counter{})

	var o1Calls, o2Calls int
	refired := false
	Observe(w, h1, func(w *World, _ ecs.Handle, _ Ping) {
		o1Calls++
		if refired {
			return
		}
		refired = true

		Observe(w, h2, func(*World, ecs.Handle, Ping) { o2Calls++ })
		assert.Equal(t, 1, w.Pending())
		assert.Equal(t, 0, w.ObserverCount(h2))

		Trigger(w, Ping{})
		assert.Equal(t, 0, o2Calls, "observer registered mid-dispatch must not run before the flush")
	})

	Trigger(w, Ping{})
	assert.Equal(t, 2, o1Calls)
	assert.Equal(t, 0, o2Calls)
	assert.Equal(t, 0, w.Pending())
	assert.Equal(t, 1, w.ObserverCount(h2))

	Trigger(w, Ping{})
	assert.Equal(t, 3, o1Calls)
	assert.Equal(t, 1, o2Calls)
}

func TestGlobalTriggerOrder(t *testing.T) {
	w := New()
	a := w.Insert(&Counter{})
	b := w.Insert(&Counter{})
	c := w.Insert(&Counter{})

	var got []string
	record := func(name string) Handler[Ping] {
		return func(*World, ecs.Handle, Ping) { got = append(got, name) }
	}
	Observe(w, b, record("b1"))
	Observe(w, a, record("a1"))
	Observe(w, b, record("b2"))
	Observe(w, c, record("c1"))
	Observe(w, a, record("a2"))
	Observe(w, c, func(*World, ecs.Handle, Gauge) { got = append(got, "wrong type") })

	assert.Equal(t, 5, Trigger(w, Ping{}))
	assert.Equal(t, []string{"b1", "b2", "a1", "a2", "c1"}, got)

	got = nil
	assert.Equal(t, 2, TriggerOn(w, a, Ping{}))
	assert.Equal(t, []string{"a1", "a2"}, got)
}

func TestStructuralChangesWaitForOpenGuards(t *testing.T) {
	w := New()
	h := w.Insert(&Counter{})

	ref, ok := Fetch[*Counter](w, h)
	require.True(t, ok)

	n := w.Insert(&Gauge{Level: 2})
	w.Remove(h)
	assert.False(t, w.Alive(n), "insert requested under an open guard must wait")
	assert.True(t, w.Alive(h), "remove requested under an open guard must wait")
	assert.Equal(t, 2, w.Pending())
	_, ok = Fetch[*Gauge](w, n)
	assert.False(t, ok)

	ref.Release()
	assert.Equal(t, 0, w.Pending())
	assert.True(t, w.Alive(n))
	assert.False(t, w.Alive(h))
}

func TestQueueIsFIFOAcrossSubmitters(t *testing.T) {
	w := New()
	a := w.Insert(&Counter{})
	b := w.Insert(&Counter{})

	var order []string
	var inserted []ecs.Handle
	Observe(w, a, func(w *World, _ ecs.Handle, _ Ping) {
		PostOn(w, b, Tag{Name: "a to b"})
		inserted = append(inserted, w.Insert(&Gauge{Level: 1}))
	})
	Observe(w, b, func(w *World, _ ecs.Handle, _ Ping) {
		PostOn(w, a, Tag{Name: "b to a"})
		inserted = append(inserted, w.Insert(&Gauge{Level: 2}))
	})
	for _, h := range []ecs.Handle{a, b} {
		Observe(w, h, func(_ *World, self ecs.Handle, tg Tag) {
			order = append(order, tg.Name)
		})
	}
	watcher := w.Insert(&Counter{})
	Observe(w, watcher, func(w *World, _ ecs.Handle, ev event.Inserted) {
		var g *Gauge
		With(w, ev.Handle, func(v *Gauge) { g = v })
		if g != nil {
			order = append(order, "gauge")
		}
	})

	Trigger(w, Ping{})

	assert.Equal(t, []string{"a to b", "gauge", "b to a", "gauge"}, order)
	require.Len(t, inserted, 2)
	for i, h := range inserted {
		ref, ok := Fetch[*Gauge](w, h)
		require.True(t, ok)
		assert.Equal(t, i+1, ref.Value().Level)
		ref.Release()
	}
}

func TestRemoveInsideCallbackIsDeferred(t *testing.T) {
	w := New()
	victim := w.Insert(&Counter{})
	host := w.Insert(&Counter{})

	Observe(w, host, func(w *World, _ ecs.Handle, _ Ping) {
		w.Remove(victim)
		assert.True(t, w.Alive(victim))
		assert.True(t, With(w, victim, func(*Counter) {}), "victim stays fetchable until the flush")
	})

	Trigger(w, Ping{})
	assert.False(t, w.Alive(victim))
	assert.Equal(t, 0, w.OpenGuards())
}

func TestCallbackMayFetchItself(t *testing.T) {
	w := New()
	h := w.Insert(&Counter{N: 5})

	var seen int
	Observe(w, h, func(w *World, self ecs.Handle, _ Ping) {
		With(w, self, func(c *Counter) { seen = c.N })
		Modify(w, self, func(c *Counter) { c.N = 6 })

		ref, _ := Fetch[*Counter](w, self)
		defer ref.Release()
		requireBorrowPanic(t, ecs.ErrExclusiveWhileBorrowed, func() {
			_, _ = FetchMut[*Counter](w, self)
		})
	})

	TriggerOn(w, h, Ping{})
	assert.Equal(t, 5, seen)
	With(w, h, func(c *Counter) { assert.Equal(t, 6, c.N) })
	assert.Equal(t, 0, w.OpenGuards())
}

func TestLifecycleEvents(t *testing.T) {
	w := New()
	watcher := w.Insert(&Counter{})

	var log []string
	Observe(w, watcher, func(w *World, _ ecs.Handle, ev event.Inserted) {
		name, _ := w.TypeName(ev.Handle)
		log = append(log, "inserted "+name)
	})
	Observe(w, watcher, func(w *World, _ ecs.Handle, ev event.Removed) {
		assert.False(t, w.Alive(ev.Handle))
		log = append(log, "removed")
	})

	h := w.Insert(&Gauge{})
	Observe(w, h, func(w *World, self ecs.Handle, ev event.Destroyed) {
		assert.True(t, w.Alive(self), "destroyed fires before the slot is freed")
		log = append(log, "destroyed")
	})
	w.Remove(h)

	assert.Equal(t, []string{"inserted *world.Gauge", "destroyed", "removed"}, log)
	assert.Equal(t, 0, w.ObserverCount(h))
}

func TestRunFlushesAtEnd(t *testing.T) {
	w := New()
	var h ecs.Handle
	w.Run(func() {
		h = w.Insert(&Counter{})
		assert.False(t, w.Alive(h))
		assert.Equal(t, 1, w.Pending())
	})
	assert.True(t, w.Alive(h))
}

func TestPostRunsAfterDispatch(t *testing.T) {
	w := New()
	h := w.Insert(&Counter{})

	var order []string
	Observe(w, h, func(w *World, _ ecs.Handle, _ Ping) {
		order = append(order, "ping")
		Post(w, Tag{Name: "posted"})
		order = append(order, "ping done")
	})
	Observe(w, h, func(_ *World, _ ecs.Handle, tg Tag) {
		order = append(order, tg.Name)
	})

	Trigger(w, Ping{})
	assert.Equal(t, []string{"ping", "ping done", "posted"}, order)
}

func TestFlushOverflowPanicsAndDropsQueue(t *testing.T) {
	w := New(WithMaxFlushCommands(3))
	h := w.Insert(&Counter{})
	Observe(w, h, func(w *World, self ecs.Handle, _ Ping) {
		PostOn(w, self, Ping{})
	})

	require.PanicsWithValue(t, ErrFlushOverflow, func() { Trigger(w, Ping{}) })
	assert.Equal(t, 0, w.Pending())
	assert.False(t, w.Busy())
}

func TestPanicInCallbackLeavesWorldUsable(t *testing.T) {
	w := New()
	h := w.Insert(&Counter{})
	Observe(w, h, func(w *World, self ecs.Handle, _ Ping) {
		w.Insert(&Gauge{})
		m, _ := FetchMut[*Counter](w, self)
		defer m.Release()
		_, _ = Fetch[*Counter](w, self)
	})

	requireBorrowPanic(t, ecs.ErrSharedWhileExclusive, func() { TriggerOn(w, h, Ping{}) })
	assert.False(t, w.Busy())
	assert.Equal(t, 0, w.Pending(), "commands of an aborted activation are dropped")
	assert.Equal(t, int32(0), w.BorrowState(h))
	assert.Equal(t, 0, SingletonOf[*Gauge](w).Count)

	g := w.Insert(&Gauge{})
	assert.True(t, w.Alive(g))
}

func TestAbortKeepsCommandsQueuedBeforeActivation(t *testing.T) {
	w := New()
	a := w.Insert(&Counter{})
	Observe(w, a, func(w *World, _ ecs.Handle, _ Ping) {
		w.Insert(&Counter{})
		panic("boom")
	})

	ref, ok := Fetch[*Counter](w, a)
	require.True(t, ok)
	b := w.Insert(&Gauge{})
	require.Equal(t, 1, w.Pending())

	assert.PanicsWithValue(t, "boom", func() { TriggerOn(w, a, Ping{}) })
	assert.Equal(t, 1, w.Pending(), "only the aborted activation's insert is dropped")
	assert.False(t, w.Alive(b))

	ref.Release()
	assert.True(t, w.Alive(b))
	assert.Equal(t, 0, w.Pending())
	assert.Equal(t, 1, SingletonOf[*Counter](w).Count)
}
