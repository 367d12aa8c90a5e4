package element

import (
	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
	"github.com/l1jgo/elemrt/internal/world"
)

// focusLink keys the dependency edges Focus keeps on its target, apart from
// any links scenes or scripts add.
type focusLink struct{}

// Focus tracks the element that last reported a Clicked event and forwards
// key presses to it as Typed. Meant to be inserted once; look it up with
// world.Single.
type Focus struct {
	Current ecs.Handle
}

func NewFocus() *Focus { return &Focus{} }

func (f *Focus) Bounds() ecs.Rect { return ecs.Rect{} }

func (f *Focus) OnInserted(r *world.Registrar) {
	w, h := r.World(), r.Handle()
	world.Observe(w, h, func(w *world.World, self ecs.Handle, ev Clicked) {
		moveFocus(w, self, ev.Handle)
	})
	world.Observe(w, h, func(w *world.World, self ecs.Handle, ev Key) {
		var target ecs.Handle
		world.With(w, self, func(f *Focus) { target = f.Current })
		if !target.IsZero() {
			world.TriggerOn(w, target, Typed{Key: ev})
		}
	})
	world.Observe(w, h, func(w *world.World, self ecs.Handle, ev event.Teardown) {
		if ev.Set != event.TypeOf[focusLink]() {
			return
		}
		cleared := false
		world.Modify(w, self, func(f *Focus) {
			if f.Current == ev.Source {
				f.Current = 0
				cleared = true
			}
		})
		if cleared {
			world.Trigger(w, FocusChanged{From: ev.Source})
		}
	})
}

func moveFocus(w *world.World, self, target ecs.Handle) {
	var prev ecs.Handle
	world.Modify(w, self, func(f *Focus) {
		prev = f.Current
		f.Current = target
	})
	if prev == target {
		return
	}
	if !prev.IsZero() {
		world.UndependIn[focusLink](w, self, prev)
	}
	world.DependIn[focusLink](w, self, target)
	world.Trigger(w, FocusChanged{From: prev, To: target})
}

// FocusedHandle returns the focused element, if a single Focus exists and
// holds one.
func FocusedHandle(w *world.World) (ecs.Handle, bool) {
	var cur ecs.Handle
	h, ok := world.SingleHandle[*Focus](w)
	if !ok {
		return 0, false
	}
	world.With(w, h, func(f *Focus) { cur = f.Current })
	return cur, !cur.IsZero()
}
