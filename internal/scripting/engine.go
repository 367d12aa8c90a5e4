package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM whose scripts observe and drive a World.
// Single-goroutine access only, the same goroutine that drives the World.
// Close it only after the World stops dispatching, since observers it
// registered call back into the VM.
type Engine struct {
	vm  *lua.LState
	w   *world.World
	dir string
	log *zap.Logger

	attached int
	loaded   int

	// fatal holds a Go panic raised inside an rt call until the protected
	// Lua call that wrapped it returns, so it can be re-raised unchanged.
	fatal any
}

// NewEngine creates a Lua engine bound to w and loads the shared library
// chunks under dir/lib.
func NewEngine(w *world.World, dir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, w: w, dir: dir, log: log}
	vm.SetGlobal("rt", e.api())

	if err := e.loadDir(filepath.Join(dir, "lib")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lib scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		err := e.vm.DoFile(path)
		e.rethrow()
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.loaded++
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Attach runs the script file (relative to the engine dir) for element h.
// While the chunk runs the global self is h; the chunk also receives h as
// its first vararg. Callbacks it registers get their handle as an argument.
func (e *Engine) Attach(h ecs.Handle, file string) error {
	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.dir, file)
	}
	fn, err := e.vm.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	prev := e.vm.GetGlobal("self")
	e.vm.SetGlobal("self", lua.LNumber(h))
	defer e.vm.SetGlobal("self", prev)

	err = e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(h))
	e.rethrow()
	if err != nil {
		return fmt.Errorf("run %s for %s: %w", path, h, err)
	}
	e.attached++
	e.log.Debug("attached lua script", zap.String("file", path), zap.Stringer("handle", h))
	return nil
}

// DoString runs a chunk of Lua source, mostly for tests and the check command.
func (e *Engine) DoString(src string) error {
	err := e.vm.DoString(src)
	e.rethrow()
	return err
}

// Global returns a global Lua value, converted to Go.
func (e *Engine) Global(name string) any {
	return fromLua(e.vm.GetGlobal(name))
}

// Attached returns the number of scripts attached so far.
func (e *Engine) Attached() int { return e.attached }

// Loaded returns the number of library chunks loaded.
func (e *Engine) Loaded() int { return e.loaded }

func (e *Engine) Close() {
	e.vm.Close()
}

// call invokes a Lua callback from a world observer. Lua errors are logged
// and the callback skipped; Go panics raised underneath keep propagating.
func (e *Engine) call(fn *lua.LFunction, what string, args ...lua.LValue) {
	err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...)
	e.rethrow()
	if err != nil {
		e.log.Error("lua callback error", zap.String("event", what), zap.Error(err))
	}
}

// rethrow re-raises a Go panic captured by guard, even when a Lua pcall
// swallowed the error it became.
func (e *Engine) rethrow() {
	if p := e.fatal; p != nil {
		e.fatal = nil
		panic(p)
	}
}

// guard wraps an rt function so a Go panic inside it (an access violation,
// a flush overflow) is remembered before gopher-lua converts it into a
// Lua error.
func (e *Engine) guard(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(*lua.ApiError); !ok && e.fatal == nil {
					e.fatal = r
				}
				panic(r)
			}
		}()
		return fn(L)
	}
}
