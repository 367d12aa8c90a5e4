package ecs

import "reflect"

// SingletonStatus is the population of one concrete type.
// Handle is only set when Count is exactly one.
type SingletonStatus struct {
	Count  int
	Handle Handle
}

func (s SingletonStatus) Unique() bool   { return s.Count == 1 }
func (s SingletonStatus) Multiple() bool { return s.Count > 1 }

// Singletons tracks live handles per concrete type so "the one instance of T"
// is an O(1) lookup. Kept exact on removal too: dropping from two instances to
// one makes the survivor unique again.
type Singletons struct {
	byType map[reflect.Type]map[Handle]struct{}
}

func NewSingletons() *Singletons {
	return &Singletons{byType: make(map[reflect.Type]map[Handle]struct{})}
}

func (s *Singletons) add(t reflect.Type, h Handle) {
	set := s.byType[t]
	if set == nil {
		set = make(map[Handle]struct{}, 1)
		s.byType[t] = set
	}
	set[h] = struct{}{}
}

func (s *Singletons) remove(t reflect.Type, h Handle) {
	set := s.byType[t]
	if set == nil {
		return
	}
	delete(set, h)
	if len(set) == 0 {
		delete(s.byType, t)
	}
}

// Status returns the population record for t. An absent record means zero.
func (s *Singletons) Status(t reflect.Type) SingletonStatus {
	set := s.byType[t]
	st := SingletonStatus{Count: len(set)}
	if st.Count == 1 {
		for h := range set {
			st.Handle = h
		}
	}
	return st
}

// Types returns the number of distinct concrete types with live instances.
func (s *Singletons) Types() int { return len(s.byType) }
