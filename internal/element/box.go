package element

import (
	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/world"
)

// Box is a bordered frame with an optional title. It is drawn but never
// hit, so presses fall through to whatever clickable lies inside it.
type Box struct {
	base
	Title string
	Style tcell.Style
}

func NewBox(area ecs.Rect, z ZOrder, title string) *Box {
	return &Box{base: base{Area: area, Layer: z}, Title: title, Style: tcell.StyleDefault}
}

func (b *Box) OnInserted(r *world.Registrar) {
	provideBase[*Box](r)
	world.ProvideInterface[Drawable](r, func(b *Box) Drawable { return b })
}

func (b *Box) Draw(c Canvas) {
	a := b.Area
	if a.W < 2 || a.H < 2 {
		return
	}
	right, bottom := a.X+a.W-1, a.Y+a.H-1
	for x := a.X + 1; x < right; x++ {
		c.SetContent(x, a.Y, tcell.RuneHLine, nil, b.Style)
		c.SetContent(x, bottom, tcell.RuneHLine, nil, b.Style)
	}
	for y := a.Y + 1; y < bottom; y++ {
		c.SetContent(a.X, y, tcell.RuneVLine, nil, b.Style)
		c.SetContent(right, y, tcell.RuneVLine, nil, b.Style)
	}
	c.SetContent(a.X, a.Y, tcell.RuneULCorner, nil, b.Style)
	c.SetContent(right, a.Y, tcell.RuneURCorner, nil, b.Style)
	c.SetContent(a.X, bottom, tcell.RuneLLCorner, nil, b.Style)
	c.SetContent(right, bottom, tcell.RuneLRCorner, nil, b.Style)

	if b.Title != "" {
		drawText(c, a.X+1, a.Y, b.Title, a.W-2, b.Style.Bold(true))
	}
}
