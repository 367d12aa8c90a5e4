package event

import (
	"reflect"
	"slices"

	"github.com/l1jgo/elemrt/internal/core/ecs"
)

// TypeOf returns the identity used to key events of type T.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Callback is a type-erased observer. C is the world view handed to it.
type Callback[C any] func(ctx C, self ecs.Handle, ev any)

type entry[C any] struct {
	typ reflect.Type
	fn  Callback[C]
}

// Delivery is one callback selected for an event, bound to its subscriber.
type Delivery[C any] struct {
	Handle ecs.Handle
	Fn     Callback[C]
}

// Table maps handles to ordered observer lists. Handles are visited in the
// order they first registered, callbacks within a handle in registration
// order. Mutate it only from the deferred command queue.
type Table[C any] struct {
	order []ecs.Handle
	lists map[ecs.Handle][]entry[C]
	total int
}

func NewTable[C any]() *Table[C] {
	return &Table[C]{lists: make(map[ecs.Handle][]entry[C])}
}

// Add appends fn for events of type typ on h.
func (t *Table[C]) Add(h ecs.Handle, typ reflect.Type, fn Callback[C]) {
	if _, ok := t.lists[h]; !ok {
		t.order = append(t.order, h)
	}
	t.lists[h] = append(t.lists[h], entry[C]{typ: typ, fn: fn})
	t.total++
}

// Drop forgets every callback registered on h and returns how many there were.
func (t *Table[C]) Drop(h ecs.Handle) int {
	list, ok := t.lists[h]
	if !ok {
		return 0
	}
	delete(t.lists, h)
	if i := slices.Index(t.order, h); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	t.total -= len(list)
	return len(list)
}

// Matching snapshots every callback for typ across all handles.
func (t *Table[C]) Matching(typ reflect.Type) []Delivery[C] {
	var out []Delivery[C]
	for _, h := range t.order {
		for _, e := range t.lists[h] {
			if e.typ == typ {
				out = append(out, Delivery[C]{Handle: h, Fn: e.fn})
			}
		}
	}
	return out
}

// MatchingOn snapshots the callbacks for typ registered on h only.
func (t *Table[C]) MatchingOn(h ecs.Handle, typ reflect.Type) []Delivery[C] {
	var out []Delivery[C]
	for _, e := range t.lists[h] {
		if e.typ == typ {
			out = append(out, Delivery[C]{Handle: h, Fn: e.fn})
		}
	}
	return out
}

// Count returns the number of callbacks on h.
func (t *Table[C]) Count(h ecs.Handle) int { return len(t.lists[h]) }

// Len returns the number of callbacks across all handles.
func (t *Table[C]) Len() int { return t.total }
