package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput   Phase = iota // 0: drain terminal events, hit-test, trigger
	PhaseUpdate               // 1: element logic
	PhaseRender               // 2: paint drawables
	PhaseCleanup              // 3: remove expired elements
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseUpdate:
		return "update"
	case PhaseRender:
		return "render"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every host system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Activator runs fn as one unit of work whose deferred structural changes are
// applied when it returns. *world.World satisfies it.
type Activator interface {
	Run(fn func())
}
