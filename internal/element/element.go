// Package element holds the stock elements a scene is built from. Each one
// registers its capabilities when inserted so host systems can draw, hit-test
// and expire it without knowing its concrete type.
package element

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/world"
)

// ZOrder stacks elements; higher values draw later and win hit-tests.
type ZOrder int

// Canvas is the drawing surface. tcell.Screen satisfies it.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// Drawable is registered by elements the render system should paint.
type Drawable interface {
	Draw(c Canvas)
}

// Clickable is registered by elements that accept pointer presses.
// Hit refines the bounding rect test.
type Clickable interface {
	Hit(x, y int) bool
}

// Expirable is registered by elements with a limited lifetime.
type Expirable interface {
	Expired(now time.Time) bool
}

// Click is triggered on the element under a pointer press.
type Click struct {
	X, Y int
}

// Clicked is triggered globally after a button handled a press.
type Clicked struct {
	Handle ecs.Handle
	Count  int
}

// Key is triggered globally for every key press.
type Key struct {
	Key  tcell.Key
	Rune rune
	Mod  tcell.ModMask
}

// Typed is a key press forwarded to the focused element.
type Typed struct {
	Key
}

// Resize is triggered globally when the terminal changes size.
type Resize struct {
	W, H int
}

// FocusChanged is triggered globally when the focus moves. To is zero when
// the focused element went away.
type FocusChanged struct {
	From, To ecs.Handle
}

// base is the placement every stock element carries.
type base struct {
	Area  ecs.Rect
	Layer ZOrder
}

func (b *base) Bounds() ecs.Rect { return b.Area }
func (b *base) place() *base     { return b }

type placed interface {
	ecs.Element
	place() *base
}

// provideBase registers the Rect getter and setter and the ZOrder getter.
func provideBase[E placed](r *world.Registrar) {
	world.ProvideGetter(r, func(e E) ecs.Rect { return e.place().Area })
	world.ProvideSetter(r, func(e E, rc ecs.Rect) { e.place().Area = rc })
	world.ProvideGetter(r, func(e E) ZOrder { return e.place().Layer })
}
