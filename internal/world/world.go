package world

import (
	"errors"
	"reflect"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
	"go.uber.org/zap"
)

// ErrFlushOverflow is the panic value when one flush applies more commands
// than the configured limit, which means commands keep re-enqueueing each other.
var ErrFlushOverflow = errors.New("world: deferred command flush exceeded limit")

// DefaultMaxFlushCommands bounds a single flush.
const DefaultMaxFlushCommands = 1 << 16

// World is the entity/event runtime. It owns the entity store, the borrow
// tracker, the observer table, dependency links and the deferred command
// queue directly. Accessed only from the goroutine driving it.
//
// An activation is any public entry that runs user code (insert hooks,
// triggers, flushes, Run). While an activation is in progress or any guard is
// open the world is busy, and structural requests are queued instead of
// applied. The queue flushes when the outermost activation ends with no guard
// open, or when the last guard is released outside any activation.
type World struct {
	store     *ecs.Store
	borrow    *ecs.Tracker
	links     *ecs.Links
	observers *event.Table[*World]
	queue     commandQueue

	depth    int
	mark     int // queue position where the outermost activation's commands start
	flushing bool
	maxFlush int

	log *zap.Logger
}

// Option configures a World.
type Option func(*World)

func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// WithMaxFlushCommands overrides DefaultMaxFlushCommands. Zero or less disables the bound.
func WithMaxFlushCommands(n int) Option {
	return func(w *World) {
		w.maxFlush = n
	}
}

func New(opts ...Option) *World {
	w := &World{
		store:     ecs.NewStore(),
		borrow:    ecs.NewTracker(),
		links:     ecs.NewLinks(),
		observers: event.NewTable[*World](),
		maxFlush:  DefaultMaxFlushCommands,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.borrow.OnIdle(w.settle)
	return w
}

func (w *World) Log() *zap.Logger { return w.log }

// Busy reports whether structural requests are currently being queued.
func (w *World) Busy() bool {
	return w.depth > 0 || w.borrow.Open() > 0
}

// Pending returns the number of queued structural commands.
func (w *World) Pending() int { return w.queue.len() }

// Run executes fn as one activation. Structural requests made inside fn are
// applied in order once fn returns and no guard is left open.
func (w *World) Run(fn func()) {
	w.activate(fn)
}

func (w *World) activate(fn func()) {
	w.enter(fn, false)
}

// enter runs fn as an activation. If the outermost activation unwinds, the
// commands it queued are dropped; commands queued before it began survive
// and apply once the world is quiet. A flush owns the whole queue it drains.
func (w *World) enter(fn func(), ownsQueue bool) {
	if w.depth == 0 {
		if ownsQueue {
			w.mark = 0
		} else {
			w.mark = w.queue.end()
		}
	}
	w.depth++
	done := false
	defer func() {
		w.depth--
		if !done {
			if w.depth == 0 {
				if n := w.queue.truncate(w.mark); n > 0 {
					w.log.Warn("activation aborted, dropping queued commands",
						zap.Int("dropped", n))
				}
			}
			return
		}
		w.settle()
	}()
	fn()
	done = true
}

// settle flushes the queue if the world is quiet.
func (w *World) settle() {
	if w.depth > 0 || w.flushing || w.queue.len() == 0 {
		return
	}
	if w.borrow.Open() > 0 {
		return
	}
	w.flush()
}

func (w *World) flush() {
	w.flushing = true
	defer func() { w.flushing = false }()

	applied := 0
	w.enter(func() {
		for {
			cmd, ok := w.queue.pop()
			if !ok {
				return
			}
			applied++
			if w.maxFlush > 0 && applied > w.maxFlush {
				panic(ErrFlushOverflow)
			}
			w.log.Debug("apply deferred command",
				zap.Stringer("kind", cmd.kind),
				zap.Stringer("handle", cmd.handle))
			cmd.apply(w)
		}
	}, true)
	w.log.Debug("deferred queue flushed", zap.Int("applied", applied))
}

// submit applies cmd now when the world is quiet, or queues it.
func (w *World) submit(cmd command) {
	if w.Busy() {
		w.queue.push(cmd)
		w.log.Debug("queued command",
			zap.Stringer("kind", cmd.kind),
			zap.Stringer("handle", cmd.handle),
			zap.Int("pending", w.queue.len()))
		return
	}
	w.activate(func() { cmd.apply(w) })
}

// Insert registers el and returns its handle. When the world is quiet the
// on-inserted hook and the Inserted trigger run before Insert returns. When
// busy, the handle is reserved now and the slot is filled at flush time;
// fetches on it report absent until then.
func (w *World) Insert(el ecs.Element) ecs.Handle {
	if el == nil {
		panic("world: insert nil element")
	}
	h := w.store.Reserve()
	w.submit(command{kind: CmdInsert, handle: h, apply: func(w *World) { w.place(h, el) }})
	return h
}

func (w *World) place(h ecs.Handle, el ecs.Element) {
	w.store.Place(h, el)
	w.log.Debug("entity inserted", zap.Stringer("handle", h), zap.String("type", typeName(el)))
	if hook, ok := el.(InsertHook); ok {
		hook.OnInserted(&Registrar{w: w, h: h})
	}
	Trigger(w, event.Inserted{Handle: h})
}

// Remove tears down h: Destroyed on h, Teardown on each dependent (cascading
// removals are queued), then the slot, its observers and links are freed and
// Removed fires globally. Unknown handles are ignored.
func (w *World) Remove(h ecs.Handle) {
	w.submit(command{kind: CmdRemove, handle: h, apply: func(w *World) { w.destroy(h) }})
}

func (w *World) destroy(h ecs.Handle) {
	if !w.store.Contains(h) {
		w.log.Debug("remove of unknown handle ignored", zap.Stringer("handle", h))
		return
	}

	TriggerOn(w, h, event.Destroyed{Handle: h})

	for _, l := range w.links.DependentsOf(h) {
		if !w.store.Contains(l.Dependent) {
			continue
		}
		TriggerOn(w, l.Dependent, event.Teardown{Handle: l.Dependent, Source: h, Set: l.Set, Mode: l.Mode})
		if el, ok := w.store.Lookup(l.Dependent); ok {
			if d, ok := el.(Dependent); ok {
				d.OnDependencyRemoved(w, l.Dependent, h)
			}
		}
		if l.Mode == ecs.LinkCascade {
			w.Remove(l.Dependent)
		}
	}

	el, _ := w.store.Remove(h)
	dropped := w.observers.Drop(h)
	w.links.Drop(h)
	w.log.Debug("entity removed",
		zap.Stringer("handle", h),
		zap.String("type", typeName(el)),
		zap.Int("observers", dropped))

	Trigger(w, event.Removed{Handle: h})
}

// Alive reports whether h names a live entity.
func (w *World) Alive(h ecs.Handle) bool { return w.store.Contains(h) }

// Len returns the number of live entities.
func (w *World) Len() int { return w.store.Len() }

// Handles returns live handles in insertion order.
func (w *World) Handles() []ecs.Handle { return w.store.Handles() }

// TypeName returns the concrete type name of the entity at h.
func (w *World) TypeName(h ecs.Handle) (string, bool) {
	t, ok := w.store.TypeOf(h)
	if !ok {
		return "", false
	}
	return t.String(), true
}

// BorrowState exposes the raw access counter for h: 0 free, n shared, -1 exclusive.
func (w *World) BorrowState(h ecs.Handle) int32 { return w.borrow.State(h) }

// OpenGuards returns the number of guards not yet released.
func (w *World) OpenGuards() int { return w.borrow.Open() }

// ObserverCount returns the number of callbacks registered on h.
func (w *World) ObserverCount(h ecs.Handle) int { return w.observers.Count(h) }

// Capabilities describes what h registered, as "kind:type" strings.
func (w *World) Capabilities(h ecs.Handle) []string {
	caps, ok := w.store.Capabilities(h)
	if !ok {
		return nil
	}
	return caps.Describe()
}

// Stats is a point-in-time summary for diagnostics.
type Stats struct {
	Entities  int
	Types     int
	Observers int
	Links     int
	Pending   int
}

func (w *World) Stats() Stats {
	return Stats{
		Entities:  w.store.Len(),
		Types:     w.store.Singletons().Types(),
		Observers: w.observers.Len(),
		Links:     w.links.Len(),
		Pending:   w.queue.len(),
	}
}

func typeName(el ecs.Element) string {
	if el == nil {
		return "<nil>"
	}
	return reflect.TypeOf(el).String()
}
