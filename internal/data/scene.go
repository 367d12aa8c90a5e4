package data

import (
	"fmt"
	"os"
	"time"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/world"
	"golang.org/x/text/encoding/traditionalchinese"
	"gopkg.in/yaml.v3"
)

// SceneEntry describes one element of a scene file.
type SceneEntry struct {
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind"`
	Rect      ecs.Rect      `yaml:"rect"`
	Z         int           `yaml:"z"`
	Text      string        `yaml:"text"`
	TTL       time.Duration `yaml:"ttl"`
	DependsOn []string      `yaml:"depends_on"`
	Cascade   bool          `yaml:"cascade"` // remove this element along with its dependencies
	Script    string        `yaml:"script"`
}

// Scene is a list of elements inserted together.
type Scene struct {
	Elements []SceneEntry `yaml:"elements"`
}

// ScriptBinding pairs a spawned element with the script to attach to it.
type ScriptBinding struct {
	Name   string
	Handle ecs.Handle
	File   string
}

// LoadScene loads a UTF-8 scene file.
func LoadScene(path string) (*Scene, error) {
	return LoadSceneEncoded(path, "utf-8")
}

// LoadSceneEncoded loads a scene file written in encoding ("utf-8" or "big5").
func LoadSceneEncoded(path, encoding string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	switch encoding {
	case "", "utf-8":
	case "big5":
		raw, err = traditionalchinese.Big5.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, fmt.Errorf("decode scene %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("scene %s: unsupported encoding %q", path, encoding)
	}
	return ParseScene(raw)
}

// ParseScene decodes and validates scene YAML.
func ParseScene(raw []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	names := make(map[string]int, len(s.Elements))
	for i, e := range s.Elements {
		if e.Kind == "" {
			return fmt.Errorf("scene element %d: missing kind", i)
		}
		if e.Name == "" {
			if e.Script != "" {
				return fmt.Errorf("scene element %d: script %q needs a name", i, e.Script)
			}
			continue
		}
		if prev, ok := names[e.Name]; ok {
			return fmt.Errorf("scene element %d: name %q already used by element %d", i, e.Name, prev)
		}
		names[e.Name] = i
	}
	for i, e := range s.Elements {
		for _, dep := range e.DependsOn {
			if _, ok := names[dep]; !ok {
				return fmt.Errorf("scene element %d: depends on unknown %q", i, dep)
			}
			if dep == e.Name {
				return fmt.Errorf("scene element %d: depends on itself", i)
			}
		}
	}
	return nil
}

// Count returns the number of elements.
func (s *Scene) Count() int { return len(s.Elements) }

// KindCounts returns the number of elements per kind.
func (s *Scene) KindCounts() map[string]int {
	out := make(map[string]int)
	for _, e := range s.Elements {
		out[e.Kind]++
	}
	return out
}

// Build constructs every element without inserting any, so a bad entry
// leaves the world untouched.
func (s *Scene) Build(reg *element.Registry) ([]ecs.Element, error) {
	els := make([]ecs.Element, 0, len(s.Elements))
	for i, e := range s.Elements {
		el, err := reg.Build(element.Spec{
			Kind: e.Kind,
			Rect: e.Rect,
			Z:    element.ZOrder(e.Z),
			Text: e.Text,
			TTL:  e.TTL,
		})
		if err != nil {
			return nil, fmt.Errorf("scene element %d (%s): %w", i, e.Name, err)
		}
		els = append(els, el)
	}
	return els, nil
}

// Spawn inserts the scene in file order inside one activation, then links
// dependencies by name. Returns the handles of named elements.
func (s *Scene) Spawn(w *world.World, reg *element.Registry) (map[string]ecs.Handle, error) {
	els, err := s.Build(reg)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]ecs.Handle, len(els))
	handles := make([]ecs.Handle, len(els))
	w.Run(func() {
		for i, el := range els {
			handles[i] = w.Insert(el)
			if name := s.Elements[i].Name; name != "" {
				byName[name] = handles[i]
			}
		}
		for i, e := range s.Elements {
			for _, dep := range e.DependsOn {
				if e.Cascade {
					world.DependCascade(w, handles[i], byName[dep])
				} else {
					world.Depend(w, handles[i], byName[dep])
				}
			}
		}
	})
	return byName, nil
}

// Scripts lists the script bindings of a spawned scene. Entries without a
// name cannot be bound and are skipped.
func (s *Scene) Scripts(handles map[string]ecs.Handle) []ScriptBinding {
	var out []ScriptBinding
	for _, e := range s.Elements {
		h, ok := handles[e.Name]
		if e.Script == "" || !ok {
			continue
		}
		out = append(out, ScriptBinding{Name: e.Name, Handle: h, File: e.Script})
	}
	return out
}
