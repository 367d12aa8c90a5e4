package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. Each Update runs as its
// own activation, so changes a system queues are visible to the next one.
type Runner struct {
	systems []System
	sorted  bool
	act     Activator
	ticks   uint64
}

// NewRunner returns a runner. act may be nil, in which case systems run bare.
func NewRunner(act Activator) *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
		act:     act,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		r.update(s, dt)
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase, in registration order, and
// does not count as a tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase() == phase {
			r.update(s, dt)
		}
	}
}

// Ticks returns the number of completed full ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) update(s System, dt time.Duration) {
	if r.act == nil {
		s.Update(dt)
		return
	}
	r.act.Run(func() { s.Update(dt) })
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
