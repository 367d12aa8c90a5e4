package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
)

const demoScene = `
elements:
  - name: panel
    kind: box
    rect: {x: 0, y: 0, w: 20, h: 6}
    text: Menu
  - name: ok
    kind: button
    rect: {x: 2, y: 2}
    z: 1
    text: OK
    depends_on: [panel]
    cascade: true
    script: ok.lua
  - name: hint
    kind: toast
    rect: {x: 2, y: 4}
    text: press OK
    ttl: 3s
    depends_on: [ok]
  - kind: focus
`

func TestParseScene(t *testing.T) {
	s, err := ParseScene([]byte(demoScene))
	require.NoError(t, err)
	require.Equal(t, 4, s.Count())

	ok := s.Elements[1]
	assert.Equal(t, ecs.Rect{X: 2, Y: 2}, ok.Rect)
	assert.Equal(t, 1, ok.Z)
	assert.True(t, ok.Cascade)
	assert.Equal(t, 3*time.Second, s.Elements[2].TTL)
	assert.Equal(t, map[string]int{"box": 1, "button": 1, "toast": 1, "focus": 1}, s.KindCounts())
}

func TestParseSceneRejects(t *testing.T) {
	for name, body := range map[string]string{
		"missing kind":   "elements:\n  - name: a\n",
		"duplicate name": "elements:\n  - {name: a, kind: box}\n  - {name: a, kind: box}\n",
		"unknown dep":    "elements:\n  - {name: a, kind: box, depends_on: [b]}\n",
		"self dep":       "elements:\n  - {name: a, kind: box, depends_on: [a]}\n",
		"unnamed script": "elements:\n  - {kind: button, script: ok.lua}\n",
		"bad yaml":       "elements: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScene([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestParseSceneScriptNeedsName(t *testing.T) {
	_, err := ParseScene([]byte("elements:\n  - {kind: box}\n  - {kind: button, script: ok.lua}\n"))
	assert.ErrorContains(t, err, `scene element 1: script "ok.lua" needs a name`)
}

func TestSpawnInsertsAndLinks(t *testing.T) {
	s, err := ParseScene([]byte(demoScene))
	require.NoError(t, err)

	w := world.New()
	reg := element.NewRegistry(nil)
	handles, err := s.Spawn(w, reg)
	require.NoError(t, err)

	require.Len(t, handles, 3)
	assert.Equal(t, 4, w.Len())
	assert.Equal(t, []ecs.Handle{handles["panel"]}, w.DependenciesOf(handles["ok"]))
	assert.Equal(t, 0, w.Pending())

	_, ok := world.SingleHandle[*element.Focus](w)
	assert.True(t, ok)

	assert.Equal(t, []ScriptBinding{{Name: "ok", Handle: handles["ok"], File: "ok.lua"}}, s.Scripts(handles))

	// The button cascades with the panel; the toast only gets notified.
	w.Remove(handles["panel"])
	assert.False(t, w.Alive(handles["ok"]))
	assert.True(t, w.Alive(handles["hint"]))
}

func TestSpawnLeavesWorldUntouchedOnBuildError(t *testing.T) {
	s, err := ParseScene([]byte("elements:\n  - {kind: box}\n  - {kind: slider}\n"))
	require.NoError(t, err)

	w := world.New()
	_, err = s.Spawn(w, element.NewRegistry(nil))
	assert.ErrorIs(t, err, element.ErrUnknownKind)
	assert.Equal(t, 0, w.Len())
}

func TestLoadSceneBig5(t *testing.T) {
	body := "elements:\n  - {name: title, kind: label, text: 天堂}\n"
	enc, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte(body))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, enc, 0o644))

	s, err := LoadSceneEncoded(path, "big5")
	require.NoError(t, err)
	assert.Equal(t, "天堂", s.Elements[0].Text)

	_, err = LoadSceneEncoded(path, "latin1")
	assert.ErrorContains(t, err, "unsupported encoding")

	_, err = LoadScene(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read scene")
}
