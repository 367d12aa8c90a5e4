package world

import (
	"reflect"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
	"go.uber.org/zap"
)

// Depend records that dependent relies on on. Removing on delivers a
// Teardown event to dependent and calls its OnDependencyRemoved hook.
func Depend(w *World, dependent, on ecs.Handle) {
	w.link(ecs.Link{Dependent: dependent, On: on, Mode: ecs.LinkNotify})
}

// DependCascade is Depend, and additionally removes dependent after notifying it.
func DependCascade(w *World, dependent, on ecs.Handle) {
	w.link(ecs.Link{Dependent: dependent, On: on, Mode: ecs.LinkCascade})
}

// DependIn records a notify edge in the set keyed by marker type K, so
// unrelated subsystems can link the same pair independently.
func DependIn[K any](w *World, dependent, on ecs.Handle) {
	w.link(ecs.Link{Set: event.TypeOf[K](), Dependent: dependent, On: on, Mode: ecs.LinkNotify})
}

// Undepend removes the default-set edge dependent -> on.
func Undepend(w *World, dependent, on ecs.Handle) {
	w.unlink(nil, dependent, on)
}

// UndependIn removes the edge dependent -> on from the set keyed by K.
func UndependIn[K any](w *World, dependent, on ecs.Handle) {
	w.unlink(event.TypeOf[K](), dependent, on)
}

// DependenciesOf returns the handles h depends on, across all sets.
func (w *World) DependenciesOf(h ecs.Handle) []ecs.Handle {
	return w.links.DependenciesOf(h)
}

// DependentsOf returns the links pointing at h.
func (w *World) DependentsOf(h ecs.Handle) []ecs.Link {
	return w.links.DependentsOf(h)
}

func (w *World) link(l ecs.Link) {
	w.submit(command{kind: CmdDepend, handle: l.Dependent, apply: func(w *World) {
		if !w.store.Contains(l.Dependent) || !w.store.Contains(l.On) {
			w.log.Warn("dependency on unknown handle dropped",
				zap.Stringer("dependent", l.Dependent),
				zap.Stringer("on", l.On))
			return
		}
		if w.links.Add(l) {
			w.log.Debug("dependency linked",
				zap.Stringer("dependent", l.Dependent),
				zap.Stringer("on", l.On),
				zap.String("set", setName(l.Set)))
		}
	}})
}

func (w *World) unlink(set reflect.Type, dependent, on ecs.Handle) {
	w.submit(command{kind: CmdUnlink, handle: dependent, apply: func(w *World) {
		if w.links.Remove(set, dependent, on) {
			w.log.Debug("dependency unlinked",
				zap.Stringer("dependent", dependent),
				zap.Stringer("on", on),
				zap.String("set", setName(set)))
		}
	}})
}

func setName(t reflect.Type) string {
	if t == nil {
		return "default"
	}
	return t.String()
}
