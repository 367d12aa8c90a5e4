package system

import (
	"sort"
	"time"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	coresys "github.com/l1jgo/elemrt/internal/core/system"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/world"
)

// Screen is the part of tcell.Screen the renderer needs.
type Screen interface {
	element.Canvas
	Clear()
	Show()
}

// RenderSystem paints every Drawable in z-order, insertion order breaking
// ties. Phase 2 (Render).
type RenderSystem struct {
	w      *world.World
	screen Screen
	drawn  int
}

func NewRenderSystem(w *world.World, screen Screen) *RenderSystem {
	return &RenderSystem{w: w, screen: screen}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

type paintItem struct {
	h   ecs.Handle
	z   element.ZOrder
	ref world.Ref[element.Drawable]
}

func (s *RenderSystem) Update(_ time.Duration) {
	var items []paintItem
	defer func() {
		for _, it := range items {
			it.ref.Release()
		}
	}()
	for _, h := range s.w.Handles() {
		d, ok := world.AsInterface[element.Drawable](s.w, h)
		if !ok {
			continue
		}
		z, _ := world.Get[element.ZOrder](s.w, h)
		items = append(items, paintItem{h: h, z: z, ref: d})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].z < items[j].z })

	s.screen.Clear()
	for _, it := range items {
		it.ref.Value().Draw(s.screen)
	}
	s.screen.Show()
	s.drawn = len(items)
}

// Drawn returns the number of elements painted by the last update.
func (s *RenderSystem) Drawn() int { return s.drawn }
