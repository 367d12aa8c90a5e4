package element

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/l1jgo/elemrt/internal/core/ecs"
)

var ErrUnknownKind = errors.New("unknown element kind")

// Spec is the kind-independent description of an element, as read from a scene.
type Spec struct {
	Kind string
	Rect ecs.Rect
	Z    ZOrder
	Text string
	TTL  time.Duration
}

// Factory builds one element kind from a Spec.
type Factory func(s Spec) (ecs.Element, error)

// Registry maps kind names to factories.
type Registry struct {
	factories map[string]Factory
	now       func() time.Time
}

// NewRegistry returns a registry with the stock kinds. now stamps toast
// expiry; nil means time.Now.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	r := &Registry{factories: make(map[string]Factory, 8), now: now}
	r.Register("box", func(s Spec) (ecs.Element, error) {
		return NewBox(s.Rect, s.Z, s.Text), nil
	})
	r.Register("button", func(s Spec) (ecs.Element, error) {
		if s.Text == "" {
			return nil, fmt.Errorf("button needs text")
		}
		return NewButton(s.Rect, s.Z, s.Text), nil
	})
	r.Register("label", func(s Spec) (ecs.Element, error) {
		return NewLabel(s.Rect.X, s.Rect.Y, s.Z, s.Text), nil
	})
	r.Register("toast", func(s Spec) (ecs.Element, error) {
		if s.TTL <= 0 {
			return nil, fmt.Errorf("toast needs a positive ttl")
		}
		return NewToast(s.Rect.X, s.Rect.Y, s.Z, s.Text, r.now().Add(s.TTL)), nil
	})
	r.Register("focus", func(Spec) (ecs.Element, error) {
		return NewFocus(), nil
	})
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

func (r *Registry) Build(s Spec) (ecs.Element, error) {
	f, ok := r.factories[s.Kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, s.Kind)
	}
	el, err := f(s)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", s.Kind, err)
	}
	return el, nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
