package ecs

import "reflect"

// CapabilityKind distinguishes the three accessor flavours an entity can
// register for the same value type.
type CapabilityKind uint8

const (
	CapGetter CapabilityKind = iota
	CapSetter
	CapInterface
)

func (k CapabilityKind) String() string {
	switch k {
	case CapGetter:
		return "getter"
	case CapSetter:
		return "setter"
	case CapInterface:
		return "interface"
	default:
		return "unknown"
	}
}

type capKey struct {
	kind CapabilityKind
	typ  reflect.Type
}

// Capabilities is the per-entity accessor table. Accessors are stored type
// erased; the typed wrappers in package world know the concrete func shape
// for each kind:
//
//	CapGetter:    func(Element) V
//	CapSetter:    func(Element, V)
//	CapInterface: func(Element) I
type Capabilities struct {
	entries map[capKey]any
	order   []capKey
}

func NewCapabilities() *Capabilities {
	return &Capabilities{entries: make(map[capKey]any, 4)}
}

// Register attaches accessor for (kind, typ). A later registration for the
// same key replaces the earlier one.
func (c *Capabilities) Register(kind CapabilityKind, typ reflect.Type, accessor any) {
	k := capKey{kind: kind, typ: typ}
	if _, ok := c.entries[k]; !ok {
		c.order = append(c.order, k)
	}
	c.entries[k] = accessor
}

func (c *Capabilities) Lookup(kind CapabilityKind, typ reflect.Type) (any, bool) {
	a, ok := c.entries[capKey{kind: kind, typ: typ}]
	return a, ok
}

func (c *Capabilities) Len() int { return len(c.entries) }

// Describe lists registered capabilities as "kind:type" in registration order.
func (c *Capabilities) Describe() []string {
	out := make([]string, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, k.kind.String()+":"+k.typ.String())
	}
	return out
}
