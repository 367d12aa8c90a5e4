package element

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/world"
)

// Label is one line of text. Its width follows the text's cell width.
type Label struct {
	base
	Text  string
	Style tcell.Style
}

func NewLabel(x, y int, z ZOrder, text string) *Label {
	l := &Label{base: base{Area: ecs.Rect{X: x, Y: y, H: 1}, Layer: z}, Style: tcell.StyleDefault}
	l.SetText(text)
	return l
}

// SetText replaces the text and resizes the label.
func (l *Label) SetText(s string) {
	l.Text = s
	l.Area.W = CellWidth(s)
	l.Area.H = 1
}

func (l *Label) OnInserted(r *world.Registrar) {
	provideBase[*Label](r)
	world.ProvideGetter(r, func(l *Label) string { return l.Text })
	world.ProvideSetter(r, func(l *Label, s string) { l.SetText(s) })
	world.ProvideInterface[Drawable](r, func(l *Label) Drawable { return l })
}

func (l *Label) Draw(c Canvas) {
	drawText(c, l.Area.X, l.Area.Y, l.Text, 0, l.Style)
}

// Toast is a label that expires.
type Toast struct {
	Label
	Expires time.Time
}

func NewToast(x, y int, z ZOrder, text string, expires time.Time) *Toast {
	t := &Toast{Label: *NewLabel(x, y, z, text), Expires: expires}
	t.Style = tcell.StyleDefault.Bold(true)
	return t
}

func (t *Toast) OnInserted(r *world.Registrar) {
	provideBase[*Toast](r)
	world.ProvideGetter(r, func(t *Toast) string { return t.Text })
	world.ProvideInterface[Drawable](r, func(t *Toast) Drawable { return t })
	world.ProvideInterface[Expirable](r, func(t *Toast) Expirable { return t })
}

func (t *Toast) Expired(now time.Time) bool { return !now.Before(t.Expires) }
