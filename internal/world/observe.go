package world

import (
	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
	"go.uber.org/zap"
)

// Handler observes events of type E on the entity it was registered on.
// It runs inside an activation: it may fetch any entity, including self,
// trigger nested events, and request structural changes, which are queued.
type Handler[E any] func(w *World, self ecs.Handle, ev E)

// Observe registers fn for events of type E on h. Applied immediately when
// the world is quiet, otherwise queued, so a trigger already in progress
// never sees it. Registrations on handles that are gone by then are dropped.
func Observe[E any](w *World, h ecs.Handle, fn Handler[E]) {
	typ := event.TypeOf[E]()
	cb := func(w *World, self ecs.Handle, ev any) { fn(w, self, ev.(E)) }
	w.submit(command{kind: CmdObserve, handle: h, apply: func(w *World) {
		if !w.store.Contains(h) {
			w.log.Warn("observer for unknown handle dropped",
				zap.Stringer("handle", h),
				zap.Stringer("event", typ))
			return
		}
		w.observers.Add(h, typ, cb)
	}})
}

// Trigger delivers ev to every matching observer, entities in the order they
// first registered, callbacks in registration order. Synchronous and
// reentrant. Returns the number of callbacks invoked.
func Trigger[E any](w *World, ev E) int {
	return w.dispatch(w.observers.Matching(event.TypeOf[E]()), ev)
}

// TriggerOn delivers ev only to observers registered on h.
func TriggerOn[E any](w *World, h ecs.Handle, ev E) int {
	return w.dispatch(w.observers.MatchingOn(h, event.TypeOf[E]()), ev)
}

// Post queues a global trigger for ev; it runs at the next flush, or now if
// the world is quiet.
func Post[E any](w *World, ev E) {
	w.submit(command{kind: CmdTrigger, apply: func(w *World) { Trigger(w, ev) }})
}

// PostOn queues a trigger of ev on h.
func PostOn[E any](w *World, h ecs.Handle, ev E) {
	w.submit(command{kind: CmdTrigger, handle: h, apply: func(w *World) { TriggerOn(w, h, ev) }})
}

func (w *World) dispatch(deliveries []event.Delivery[*World], ev any) int {
	w.activate(func() {
		for _, d := range deliveries {
			d.Fn(w, d.Handle, ev)
		}
	})
	return len(deliveries)
}
