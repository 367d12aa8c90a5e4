package system

import (
	"slices"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/world"
)

// HitGrid indexes clickable element rects by cell so a pointer press only
// looks at the elements near it. Accessed only from the host loop goroutine,
// no locks.

const cellSize = 8

type cellKey struct {
	cx int
	cy int
}

func toCellCoord(v int) int {
	if v < 0 {
		return (v - cellSize + 1) / cellSize
	}
	return v / cellSize
}

type HitGrid struct {
	cells map[cellKey]map[ecs.Handle]struct{} // cellKey → set of handles
	rects map[ecs.Handle]ecs.Rect
}

func NewHitGrid() *HitGrid {
	return &HitGrid{
		cells: make(map[cellKey]map[ecs.Handle]struct{}),
		rects: make(map[ecs.Handle]ecs.Rect),
	}
}

func (g *HitGrid) span(rc ecs.Rect, fn func(cellKey)) {
	if rc.Empty() {
		return
	}
	x0, y0 := toCellCoord(rc.X), toCellCoord(rc.Y)
	x1, y1 := toCellCoord(rc.X+rc.W-1), toCellCoord(rc.Y+rc.H-1)
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			fn(cellKey{cx: cx, cy: cy})
		}
	}
}

// Add places h into every cell its rect covers.
func (g *HitGrid) Add(h ecs.Handle, rc ecs.Rect) {
	g.rects[h] = rc
	g.span(rc, func(k cellKey) {
		cell := g.cells[k]
		if cell == nil {
			cell = make(map[ecs.Handle]struct{})
			g.cells[k] = cell
		}
		cell[h] = struct{}{}
	})
}

// Remove takes h out of the grid.
func (g *HitGrid) Remove(h ecs.Handle) {
	rc, ok := g.rects[h]
	if !ok {
		return
	}
	delete(g.rects, h)
	g.span(rc, func(k cellKey) {
		cell := g.cells[k]
		if cell != nil {
			delete(cell, h)
			if len(cell) == 0 {
				delete(g.cells, k)
			}
		}
	})
}

// Move updates h's cells when its rect changes.
func (g *HitGrid) Move(h ecs.Handle, rc ecs.Rect) {
	if old, ok := g.rects[h]; ok && old == rc {
		return
	}
	g.Remove(h)
	g.Add(h, rc)
}

// At returns the handles whose rect contains (x, y), in handle order.
func (g *HitGrid) At(x, y int) []ecs.Handle {
	var result []ecs.Handle
	for h := range g.cells[cellKey{cx: toCellCoord(x), cy: toCellCoord(y)}] {
		if g.rects[h].Contains(x, y) {
			result = append(result, h)
		}
	}
	slices.Sort(result)
	return result
}

// Len returns the number of indexed handles.
func (g *HitGrid) Len() int { return len(g.rects) }

// Sync brings the grid in line with the clickable elements of w.
func (g *HitGrid) Sync(w *world.World) {
	seen := make(map[ecs.Handle]struct{}, len(g.rects))
	for _, h := range w.Handles() {
		c, ok := world.AsInterface[element.Clickable](w, h)
		if !ok {
			continue
		}
		c.Release()
		var rc ecs.Rect
		world.With(w, h, func(el ecs.Element) { rc = el.Bounds() })
		seen[h] = struct{}{}
		g.Move(h, rc)
	}
	for h := range g.rects {
		if _, ok := seen[h]; !ok {
			g.Remove(h)
		}
	}
}

// Pick returns the clickable at (x, y) with the highest z-order. Ties go to
// the later handle, which is the one drawn on top.
func (g *HitGrid) Pick(w *world.World, x, y int) (ecs.Handle, bool) {
	var (
		best  ecs.Handle
		bestZ element.ZOrder
		found bool
	)
	for _, h := range g.At(x, y) {
		c, ok := world.AsInterface[element.Clickable](w, h)
		if !ok {
			continue
		}
		hit := c.Value().Hit(x, y)
		c.Release()
		if !hit {
			continue
		}
		z, _ := world.Get[element.ZOrder](w, h)
		if !found || z >= bestZ {
			best, bestZ, found = h, z, true
		}
	}
	return best, found
}
