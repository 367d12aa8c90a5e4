package element

import (
	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/world"
)

// Button counts presses, from the pointer or from Enter/Space while focused,
// and announces each one with a global Clicked event.
type Button struct {
	base
	Text   string
	Clicks int
}

// NewButton sizes the button to fit text when area has no width.
func NewButton(area ecs.Rect, z ZOrder, text string) *Button {
	if area.W <= 0 {
		area.W = CellWidth(text) + 4
	}
	if area.H <= 0 {
		area.H = 1
	}
	return &Button{base: base{Area: area, Layer: z}, Text: text}
}

func (b *Button) OnInserted(r *world.Registrar) {
	provideBase[*Button](r)
	world.ProvideInterface[Drawable](r, func(b *Button) Drawable { return b })
	world.ProvideInterface[Clickable](r, func(b *Button) Clickable { return b })

	w, h := r.World(), r.Handle()
	world.Observe(w, h, func(w *world.World, self ecs.Handle, _ Click) {
		press(w, self)
	})
	world.Observe(w, h, func(w *world.World, self ecs.Handle, ev Typed) {
		if ev.Key.Key == tcell.KeyEnter || (ev.Key.Key == tcell.KeyRune && ev.Rune == ' ') {
			press(w, self)
		}
	})
}

func press(w *world.World, self ecs.Handle) {
	n := 0
	if !world.Modify(w, self, func(b *Button) {
		b.Clicks++
		n = b.Clicks
	}) {
		return
	}
	world.Trigger(w, Clicked{Handle: self, Count: n})
}

func (b *Button) Hit(x, y int) bool { return b.Area.Contains(x, y) }

func (b *Button) Draw(c Canvas) {
	a := b.Area
	style := tcell.StyleDefault.Reverse(true)
	for y := a.Y; y < a.Y+a.H; y++ {
		for x := a.X; x < a.X+a.W; x++ {
			c.SetContent(x, y, ' ', nil, style)
		}
	}
	tw := CellWidth(b.Text)
	if tw > a.W {
		tw = a.W
	}
	drawText(c, a.X+(a.W-tw)/2, a.Y+a.H/2, b.Text, a.W, style)
}
