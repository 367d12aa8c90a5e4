package world

import (
	"reflect"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
)

// Ref is a shared, guarded view of an entity or one of its interfaces.
// The value must not be used after Release.
type Ref[T any] struct {
	value T
	guard *ecs.Guard
}

func (r Ref[T]) Value() T           { return r.value }
func (r Ref[T]) Handle() ecs.Handle { return r.guard.Handle() }
func (r Ref[T]) Release()           { r.guard.Release() }

// RefMut is an exclusive, guarded view. Set writes a new value back into the
// entity slot; it is only available on refs obtained for the entity itself.
type RefMut[T any] struct {
	value T
	guard *ecs.Guard
	store *ecs.Store
}

func (r *RefMut[T]) Value() T           { return r.value }
func (r *RefMut[T]) Handle() ecs.Handle { return r.guard.Handle() }
func (r *RefMut[T]) Release()           { r.guard.Release() }

// Set replaces the stored value. Panics on interface views, which have no slot
// to write to.
func (r *RefMut[T]) Set(v T) {
	if r.store == nil {
		panic("world: Set on an interface view")
	}
	el, ok := any(v).(ecs.Element)
	if !ok || !r.store.Replace(r.guard.Handle(), el) {
		panic("world: Set with a value of a different concrete type")
	}
	r.value = v
}

// Fetch returns a shared view of h as T. Unknown handles and type mismatches
// are reported as absent. Acquiring while h is held exclusively panics.
func Fetch[T any](w *World, h ecs.Handle) (Ref[T], bool) {
	v, ok := lookupAs[T](w, h)
	if !ok {
		return Ref[T]{}, false
	}
	return Ref[T]{value: v, guard: w.borrow.AcquireShared(h)}, true
}

// FetchMut returns an exclusive view of h as T. Acquiring while any guard on h
// is open panics.
func FetchMut[T any](w *World, h ecs.Handle) (*RefMut[T], bool) {
	v, ok := lookupAs[T](w, h)
	if !ok {
		return nil, false
	}
	return &RefMut[T]{value: v, guard: w.borrow.AcquireExclusive(h), store: w.store}, true
}

// FetchDyn returns a shared view of h without naming its concrete type.
func FetchDyn(w *World, h ecs.Handle) (Ref[ecs.Element], bool) {
	return Fetch[ecs.Element](w, h)
}

// With runs fn with a shared view of h and reports whether h resolved as T.
func With[T any](w *World, h ecs.Handle, fn func(T)) bool {
	ref, ok := Fetch[T](w, h)
	if !ok {
		return false
	}
	defer ref.Release()
	fn(ref.Value())
	return true
}

// Modify runs fn with an exclusive view of h and reports whether it ran.
// fn mutates the element in place, so h must be stored by pointer; an element
// stored by value reports false without calling fn. Use Update for those.
func Modify[T any](w *World, h ecs.Handle, fn func(T)) bool {
	ref, ok := FetchMut[T](w, h)
	if !ok {
		return false
	}
	defer ref.Release()
	if !storedByPointer(ref.Value()) {
		return false
	}
	fn(ref.Value())
	return true
}

// Update replaces h's value with fn's result under an exclusive guard and
// reports whether h resolved as T. It works for elements stored by value.
func Update[T any](w *World, h ecs.Handle, fn func(T) T) bool {
	ref, ok := FetchMut[T](w, h)
	if !ok {
		return false
	}
	defer ref.Release()
	ref.Set(fn(ref.Value()))
	return true
}

func storedByPointer(v any) bool {
	t := reflect.TypeOf(v)
	return t != nil && t.Kind() == reflect.Pointer
}

func lookupAs[T any](w *World, h ecs.Handle) (T, bool) {
	var zero T
	el, ok := w.store.Lookup(h)
	if !ok {
		return zero, false
	}
	v, ok := el.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// SingletonOf reports the population of concrete type T.
func SingletonOf[T any](w *World) ecs.SingletonStatus {
	return w.store.Singletons().Status(event.TypeOf[T]())
}

// SingleHandle returns the handle of the only live T, if exactly one exists.
func SingleHandle[T any](w *World) (ecs.Handle, bool) {
	st := SingletonOf[T](w)
	if !st.Unique() {
		return 0, false
	}
	return st.Handle, true
}

// Single returns a shared view of the only live T.
func Single[T any](w *World) (Ref[T], bool) {
	h, ok := SingleHandle[T](w)
	if !ok {
		return Ref[T]{}, false
	}
	return Fetch[T](w, h)
}

// SingleMut returns an exclusive view of the only live T.
func SingleMut[T any](w *World) (*RefMut[T], bool) {
	h, ok := SingleHandle[T](w)
	if !ok {
		return nil, false
	}
	return FetchMut[T](w, h)
}
