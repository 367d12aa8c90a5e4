package system

import (
	"time"

	"github.com/gdamore/tcell/v2"
	coresys "github.com/l1jgo/elemrt/internal/core/system"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/world"
	"go.uber.org/zap"
)

// InputSystem drains terminal events and turns them into world events:
// pointer presses become Click on the element under the pointer, keys become
// a global Key, resizes a global Resize. Phase 0 (Input).
type InputSystem struct {
	w          *world.World
	events     <-chan tcell.Event
	grid       *HitGrid
	maxPerTick int
	buttons    tcell.ButtonMask
	quit       func()
	log        *zap.Logger

	clicks int
	misses int
}

// NewInputSystem reads from events, which the host fills from the screen.
// quit is called on Escape or Ctrl-C.
func NewInputSystem(w *world.World, events <-chan tcell.Event, grid *HitGrid, maxPerTick int, quit func(), log *zap.Logger) *InputSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &InputSystem{
		w:          w,
		events:     events,
		grid:       grid,
		maxPerTick: maxPerTick,
		quit:       quit,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	s.grid.Sync(s.w)
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case ev := <-s.events:
			if ev == nil {
				return
			}
			s.handle(ev)
		default:
			return
		}
	}
}

func (s *InputSystem) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		btn := ev.Buttons()
		pressed := btn&tcell.Button1 != 0 && s.buttons&tcell.Button1 == 0
		s.buttons = btn
		if !pressed {
			return
		}
		x, y := ev.Position()
		h, ok := s.grid.Pick(s.w, x, y)
		if !ok {
			s.misses++
			return
		}
		s.clicks++
		s.log.Debug("click", zap.Stringer("handle", h), zap.Int("x", x), zap.Int("y", y))
		world.TriggerOn(s.w, h, element.Click{X: x, Y: y})

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			if s.quit != nil {
				s.quit()
			}
			return
		}
		world.Trigger(s.w, element.Key{Key: ev.Key(), Rune: ev.Rune(), Mod: ev.Modifiers()})

	case *tcell.EventResize:
		w, h := ev.Size()
		world.Trigger(s.w, element.Resize{W: w, H: h})
	}
}

// Clicks returns presses that hit an element; Misses those that did not.
func (s *InputSystem) Clicks() int { return s.clicks }
func (s *InputSystem) Misses() int { return s.misses }
