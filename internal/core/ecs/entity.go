package ecs

import "strconv"

// Handle names one entity slot. Handles come from a monotonic counter and are
// never issued twice, so a stale handle resolves to nothing instead of aliasing
// a newer entity. Zero is never issued.
type Handle uint64

func (h Handle) IsZero() bool { return h == 0 }

func (h Handle) String() string { return "#" + strconv.FormatUint(uint64(h), 10) }

// HandlePool allocates handles. Removal frees the slot, not the identifier.
type HandlePool struct {
	next Handle
}

func NewHandlePool() *HandlePool {
	return &HandlePool{next: 1}
}

func (p *HandlePool) Create() Handle {
	h := p.next
	p.next++
	return h
}

// Issued reports whether h was ever handed out by this pool.
func (p *HandlePool) Issued(h Handle) bool {
	return h != 0 && h < p.next
}

// Peek returns the handle the next Create call will return.
func (p *HandlePool) Peek() Handle { return p.next }
