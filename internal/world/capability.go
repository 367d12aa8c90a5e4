package world

import (
	"reflect"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
)

// InsertHook is implemented by elements that want to register capabilities
// and observers as part of their insertion, before any other subsystem sees
// them.
type InsertHook interface {
	OnInserted(r *Registrar)
}

// Dependent is implemented by elements that react to removal of an entity
// they were linked to with Depend.
type Dependent interface {
	OnDependencyRemoved(w *World, self, removed ecs.Handle)
}

// Registrar attaches capabilities to one entity.
type Registrar struct {
	w *World
	h ecs.Handle
}

func (r *Registrar) Handle() ecs.Handle { return r.h }
func (r *Registrar) World() *World      { return r.w }

// Registrar returns a registrar for a live entity, for capabilities added
// after insertion.
func (w *World) Registrar(h ecs.Handle) (*Registrar, bool) {
	if !w.store.Contains(h) {
		return nil, false
	}
	return &Registrar{w: w, h: h}, true
}

func (r *Registrar) register(kind ecs.CapabilityKind, typ reflect.Type, accessor any) {
	caps, ok := r.w.store.Capabilities(r.h)
	if !ok {
		panic("world: capability registration on a removed entity " + r.h.String())
	}
	caps.Register(kind, typ, accessor)
}

// ProvideGetter registers a typed property getter. fn receives the concrete element.
func ProvideGetter[E ecs.Element, V any](r *Registrar, fn func(E) V) {
	r.register(ecs.CapGetter, event.TypeOf[V](), func(el ecs.Element) V { return fn(el.(E)) })
}

// ProvideSetter registers a typed property setter. E must be a pointer type:
// a setter on an element stored by value would only ever change a copy.
func ProvideSetter[E ecs.Element, V any](r *Registrar, fn func(E, V)) {
	if t := event.TypeOf[E](); t.Kind() != reflect.Pointer {
		panic("world: ProvideSetter on non-pointer element type " + t.String())
	}
	r.register(ecs.CapSetter, event.TypeOf[V](), func(el ecs.Element, v V) { fn(el.(E), v) })
}

// ProvideInterface registers an abstract view I of the element.
func ProvideInterface[I any, E ecs.Element](r *Registrar, fn func(E) I) {
	r.register(ecs.CapInterface, event.TypeOf[I](), func(el ecs.Element) I { return fn(el.(E)) })
}

func capability(w *World, h ecs.Handle, kind ecs.CapabilityKind, typ reflect.Type) (ecs.Element, any, bool) {
	el, ok := w.store.Lookup(h)
	if !ok {
		return nil, nil, false
	}
	caps, _ := w.store.Capabilities(h)
	acc, ok := caps.Lookup(kind, typ)
	if !ok {
		return nil, nil, false
	}
	return el, acc, true
}

// Get reads property V of h through its registered getter, under a shared guard.
func Get[V any](w *World, h ecs.Handle) (V, bool) {
	var zero V
	el, acc, ok := capability(w, h, ecs.CapGetter, event.TypeOf[V]())
	if !ok {
		return zero, false
	}
	g := w.borrow.AcquireShared(h)
	defer g.Release()
	return acc.(func(ecs.Element) V)(el), true
}

// Set writes property V of h through its registered setter, under an
// exclusive guard. Reports false when h has no setter for V.
func Set[V any](w *World, h ecs.Handle, v V) bool {
	el, acc, ok := capability(w, h, ecs.CapSetter, event.TypeOf[V]())
	if !ok {
		return false
	}
	g := w.borrow.AcquireExclusive(h)
	defer g.Release()
	acc.(func(ecs.Element, V))(el, v)
	return true
}

// AsInterface returns a shared view of h as the registered interface I.
func AsInterface[I any](w *World, h ecs.Handle) (Ref[I], bool) {
	el, acc, ok := capability(w, h, ecs.CapInterface, event.TypeOf[I]())
	if !ok {
		return Ref[I]{}, false
	}
	g := w.borrow.AcquireShared(h)
	return Ref[I]{value: acc.(func(ecs.Element) I)(el), guard: g}, true
}

// AsInterfaceMut returns an exclusive view of h as the registered interface I.
func AsInterfaceMut[I any](w *World, h ecs.Handle) (*RefMut[I], bool) {
	el, acc, ok := capability(w, h, ecs.CapInterface, event.TypeOf[I]())
	if !ok {
		return nil, false
	}
	g := w.borrow.AcquireExclusive(h)
	return &RefMut[I]{value: acc.(func(ecs.Element) I)(el), guard: g}, true
}
