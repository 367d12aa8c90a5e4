package ecs

import (
	"reflect"
	"slices"
)

// LinkMode decides what removing the depended-on side does to the dependent.
type LinkMode uint8

const (
	// LinkNotify delivers a teardown notification and leaves the dependent alive.
	LinkNotify LinkMode = iota
	// LinkCascade notifies and then removes the dependent as well.
	LinkCascade
)

// Link is a directed edge Dependent -> On inside one edge set. Set is the
// marker type keying the set; nil is the default set.
type Link struct {
	Set       reflect.Type
	Dependent Handle
	On        Handle
	Mode      LinkMode
}

// Links records dependency edges. Independent sets keep unrelated subsystems
// from colliding on the same pair of handles.
type Links struct {
	byOn        map[Handle][]Link
	byDependent map[Handle][]Handle
}

func NewLinks() *Links {
	return &Links{
		byOn:        make(map[Handle][]Link),
		byDependent: make(map[Handle][]Handle),
	}
}

// Add records l. Self edges and duplicates (same set and pair) are ignored.
func (ls *Links) Add(l Link) bool {
	if l.Dependent == l.On || l.Dependent.IsZero() || l.On.IsZero() {
		return false
	}
	for _, e := range ls.byOn[l.On] {
		if e.Set == l.Set && e.Dependent == l.Dependent {
			return false
		}
	}
	ls.byOn[l.On] = append(ls.byOn[l.On], l)
	if !slices.Contains(ls.byDependent[l.Dependent], l.On) {
		ls.byDependent[l.Dependent] = append(ls.byDependent[l.Dependent], l.On)
	}
	return true
}

// DependentsOf returns a copy of the edges pointing at on, in insertion order.
func (ls *Links) DependentsOf(on Handle) []Link {
	return slices.Clone(ls.byOn[on])
}

// DependenciesOf returns the handles h depends on in any set.
func (ls *Links) DependenciesOf(h Handle) []Handle {
	return slices.Clone(ls.byDependent[h])
}

// Remove deletes the edge dependent -> on in set and reports whether it existed.
func (ls *Links) Remove(set reflect.Type, dependent, on Handle) bool {
	edges := ls.byOn[on]
	i := slices.IndexFunc(edges, func(l Link) bool { return l.Set == set && l.Dependent == dependent })
	if i < 0 {
		return false
	}
	edges = slices.Delete(edges, i, i+1)
	if len(edges) == 0 {
		delete(ls.byOn, on)
	} else {
		ls.byOn[on] = edges
	}
	if !slices.ContainsFunc(edges, func(l Link) bool { return l.Dependent == dependent }) {
		ls.unlinkDependent(dependent, on)
	}
	return true
}

// Drop removes every edge touching h, in either direction.
func (ls *Links) Drop(h Handle) {
	for _, l := range ls.byOn[h] {
		ls.unlinkDependent(l.Dependent, h)
	}
	delete(ls.byOn, h)

	for _, on := range ls.byDependent[h] {
		edges := slices.DeleteFunc(ls.byOn[on], func(l Link) bool { return l.Dependent == h })
		if len(edges) == 0 {
			delete(ls.byOn, on)
		} else {
			ls.byOn[on] = edges
		}
	}
	delete(ls.byDependent, h)
}

func (ls *Links) unlinkDependent(dep, on Handle) {
	ons := slices.DeleteFunc(ls.byDependent[dep], func(o Handle) bool { return o == on })
	if len(ons) == 0 {
		delete(ls.byDependent, dep)
	} else {
		ls.byDependent[dep] = ons
	}
}

// Len returns the total number of edges.
func (ls *Links) Len() int {
	n := 0
	for _, edges := range ls.byOn {
		n += len(edges)
	}
	return n
}
