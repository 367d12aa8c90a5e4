package system

import (
	"time"

	coresys "github.com/l1jgo/elemrt/internal/core/system"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem removes elements whose Expirable capability reports them
// expired. Phase 3 (Cleanup).
type CleanupSystem struct {
	w       *world.World
	now     func() time.Time
	removed int
	log     *zap.Logger
}

// NewCleanupSystem uses now as its clock; nil means time.Now.
func NewCleanupSystem(w *world.World, now func() time.Time, log *zap.Logger) *CleanupSystem {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{w: w, now: now, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	now := s.now()
	for _, h := range s.w.Handles() {
		e, ok := world.AsInterface[element.Expirable](s.w, h)
		if !ok {
			continue
		}
		expired := e.Value().Expired(now)
		e.Release()
		if expired {
			s.log.Debug("element expired", zap.Stringer("handle", h))
			s.w.Remove(h)
			s.removed++
		}
	}
}

// Removed returns the number of elements expired so far.
func (s *CleanupSystem) Removed() int { return s.removed }
