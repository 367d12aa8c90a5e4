package ecs

import (
	"fmt"
	"reflect"
	"slices"
)

type slot struct {
	el   Element
	typ  reflect.Type
	caps *Capabilities
}

// Store owns every entity as a boxed Element. It keeps insertion order so
// iteration is deterministic, and feeds the singleton cache on every insert
// and removal. Accessed only from the driving goroutine; no locks.
type Store struct {
	pool       *HandlePool
	slots      map[Handle]*slot
	order      []Handle
	singletons *Singletons
}

func NewStore() *Store {
	return &Store{
		pool:       NewHandlePool(),
		slots:      make(map[Handle]*slot, 256),
		order:      make([]Handle, 0, 256),
		singletons: NewSingletons(),
	}
}

// Reserve allocates a handle without filling its slot. Used when an insert is
// deferred: the caller gets the handle now, the slot is filled by Place later.
func (s *Store) Reserve() Handle {
	return s.pool.Create()
}

// Insert allocates a handle and places el in it.
func (s *Store) Insert(el Element) Handle {
	h := s.pool.Create()
	s.Place(h, el)
	return h
}

// Place fills a reserved slot. Placing nil, an unissued handle or an occupied
// slot is a logic error.
func (s *Store) Place(h Handle, el Element) {
	if el == nil {
		panic(fmt.Sprintf("ecs: place nil element at %s", h))
	}
	if !s.pool.Issued(h) {
		panic(fmt.Sprintf("ecs: place at unissued handle %s", h))
	}
	if _, ok := s.slots[h]; ok {
		panic(fmt.Sprintf("ecs: slot %s already occupied", h))
	}
	typ := reflect.TypeOf(el)
	s.slots[h] = &slot{el: el, typ: typ, caps: NewCapabilities()}
	s.order = append(s.order, h)
	s.singletons.add(typ, h)
}

// Replace swaps the value stored at h. The concrete type must not change.
func (s *Store) Replace(h Handle, el Element) bool {
	sl, ok := s.slots[h]
	if !ok || el == nil || reflect.TypeOf(el) != sl.typ {
		return false
	}
	sl.el = el
	return true
}

func (s *Store) Lookup(h Handle) (Element, bool) {
	sl, ok := s.slots[h]
	if !ok {
		return nil, false
	}
	return sl.el, true
}

func (s *Store) Contains(h Handle) bool {
	_, ok := s.slots[h]
	return ok
}

// Issued reports whether h was ever allocated, live or not.
func (s *Store) Issued(h Handle) bool { return s.pool.Issued(h) }

func (s *Store) TypeOf(h Handle) (reflect.Type, bool) {
	sl, ok := s.slots[h]
	if !ok {
		return nil, false
	}
	return sl.typ, true
}

// Capabilities returns the accessor table attached to h.
func (s *Store) Capabilities(h Handle) (*Capabilities, bool) {
	sl, ok := s.slots[h]
	if !ok {
		return nil, false
	}
	return sl.caps, true
}

// Remove frees the slot at h together with its capability table.
func (s *Store) Remove(h Handle) (Element, bool) {
	sl, ok := s.slots[h]
	if !ok {
		return nil, false
	}
	delete(s.slots, h)
	if i := slices.Index(s.order, h); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	s.singletons.remove(sl.typ, h)
	return sl.el, true
}

func (s *Store) Len() int { return len(s.slots) }

// Handles returns live handles in insertion order.
func (s *Store) Handles() []Handle {
	return slices.Clone(s.order)
}

// Each visits live entities in insertion order. fn must not insert or remove.
func (s *Store) Each(fn func(Handle, Element)) {
	for _, h := range s.order {
		fn(h, s.slots[h].el)
	}
}

func (s *Store) Singletons() *Singletons { return s.singletons }
