package system

import (
	"time"

	"github.com/l1jgo/elemrt/internal/core/event"
	coresys "github.com/l1jgo/elemrt/internal/core/system"
	"github.com/l1jgo/elemrt/internal/world"
)

// TickSystem broadcasts a "tick" signal each tick so scripts can animate.
// Phase 1 (Update).
type TickSystem struct {
	w *world.World
	n int
}

func NewTickSystem(w *world.World) *TickSystem {
	return &TickSystem{w: w}
}

func (s *TickSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *TickSystem) Update(dt time.Duration) {
	s.n++
	world.Trigger(s.w, event.Signal{Name: "tick", Args: map[string]any{
		"n":  s.n,
		"dt": dt.Seconds(),
	}})
}
