package scripting

import (
	"sort"

	"github.com/l1jgo/elemrt/internal/core/ecs"
	"github.com/l1jgo/elemrt/internal/core/event"
	"github.com/l1jgo/elemrt/internal/element"
	"github.com/l1jgo/elemrt/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// api builds the rt table. Handles cross as numbers, event payloads as tables.
//
//	rt.on(h, name, fn)          fn(self, args, name) on signal name at h
//	rt.emit(h, name, args)      trigger now on h, returns callbacks run
//	rt.broadcast(name, args)    trigger now on every observer
//	rt.post(h, name, args)      trigger on h at the next flush
//	rt.remove(h)
//	rt.depend(dep, on, cascade)
//	rt.dependencies(h)          handles h depends on
//	rt.bounds(h)                {x, y, w, h} or nil
//	rt.alive(h)
//	rt.log(msg)
//
// A few names map to runtime events instead of signals: "click",
// "destroyed", "teardown", "typed".
func (e *Engine) api() *lua.LTable {
	fns := map[string]lua.LGFunction{
		"on":           e.luaOn,
		"emit":         e.luaEmit,
		"broadcast":    e.luaBroadcast,
		"post":         e.luaPost,
		"remove":       e.luaRemove,
		"depend":       e.luaDepend,
		"dependencies": e.luaDependencies,
		"bounds":       e.luaBounds,
		"alive":        e.luaAlive,
		"log":          e.luaLog,
	}
	t := e.vm.NewTable()
	for name, fn := range fns {
		t.RawSetString(name, e.vm.NewFunction(e.guard(fn)))
	}
	return t
}

func checkHandle(L *lua.LState, n int) ecs.Handle {
	v := L.CheckNumber(n)
	if v < 1 {
		L.ArgError(n, "handle expected")
	}
	return ecs.Handle(v)
}

func (e *Engine) luaOn(L *lua.LState) int {
	h := checkHandle(L, 1)
	name := L.CheckString(2)
	fn := L.CheckFunction(3)

	switch name {
	case "click":
		world.Observe(e.w, h, func(_ *world.World, self ecs.Handle, ev element.Click) {
			e.call(fn, name, lua.LNumber(self), e.table(map[string]any{"x": ev.X, "y": ev.Y}), lua.LString(name))
		})
	case "typed":
		world.Observe(e.w, h, func(_ *world.World, self ecs.Handle, ev element.Typed) {
			args := map[string]any{"key": int(ev.Key.Key), "rune": string(ev.Rune)}
			e.call(fn, name, lua.LNumber(self), e.table(args), lua.LString(name))
		})
	case "destroyed":
		world.Observe(e.w, h, func(_ *world.World, self ecs.Handle, _ event.Destroyed) {
			e.call(fn, name, lua.LNumber(self), e.vm.NewTable(), lua.LString(name))
		})
	case "teardown":
		world.Observe(e.w, h, func(_ *world.World, self ecs.Handle, ev event.Teardown) {
			args := map[string]any{"source": ev.Source, "cascade": ev.Mode == ecs.LinkCascade}
			e.call(fn, name, lua.LNumber(self), e.table(args), lua.LString(name))
		})
	default:
		world.Observe(e.w, h, func(_ *world.World, self ecs.Handle, ev event.Signal) {
			if ev.Name != name {
				return
			}
			e.call(fn, name, lua.LNumber(self), e.table(ev.Args), lua.LString(name))
		})
	}
	return 0
}

func (e *Engine) luaEmit(L *lua.LState) int {
	h := checkHandle(L, 1)
	sig := event.Signal{Name: L.CheckString(2), Args: tableToMap(L.OptTable(3, nil))}
	L.Push(lua.LNumber(world.TriggerOn(e.w, h, sig)))
	return 1
}

func (e *Engine) luaBroadcast(L *lua.LState) int {
	sig := event.Signal{Name: L.CheckString(1), Args: tableToMap(L.OptTable(2, nil))}
	L.Push(lua.LNumber(world.Trigger(e.w, sig)))
	return 1
}

func (e *Engine) luaPost(L *lua.LState) int {
	h := checkHandle(L, 1)
	world.PostOn(e.w, h, event.Signal{Name: L.CheckString(2), Args: tableToMap(L.OptTable(3, nil))})
	return 0
}

func (e *Engine) luaRemove(L *lua.LState) int {
	e.w.Remove(checkHandle(L, 1))
	return 0
}

func (e *Engine) luaDepend(L *lua.LState) int {
	dep, on := checkHandle(L, 1), checkHandle(L, 2)
	if L.OptBool(3, false) {
		world.DependCascade(e.w, dep, on)
	} else {
		world.Depend(e.w, dep, on)
	}
	return 0
}

func (e *Engine) luaDependencies(L *lua.LState) int {
	t := L.NewTable()
	for _, on := range e.w.DependenciesOf(checkHandle(L, 1)) {
		t.Append(lua.LNumber(on))
	}
	L.Push(t)
	return 1
}

func (e *Engine) luaBounds(L *lua.LState) int {
	h := checkHandle(L, 1)
	var rc ecs.Rect
	if !world.With(e.w, h, func(el ecs.Element) { rc = el.Bounds() }) {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(e.table(map[string]any{"x": rc.X, "y": rc.Y, "w": rc.W, "h": rc.H}))
	return 1
}

func (e *Engine) luaAlive(L *lua.LState) int {
	L.Push(lua.LBool(e.w.Alive(checkHandle(L, 1))))
	return 1
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

func (e *Engine) table(m map[string]any) *lua.LTable {
	t := e.vm.NewTable()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		t.RawSetString(k, e.toLua(m[k]))
	}
	return t
}

func (e *Engine) toLua(v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case string:
		return lua.LString(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case ecs.Handle:
		return lua.LNumber(v)
	case map[string]any:
		return e.table(v)
	case []any:
		t := e.vm.NewTable()
		for _, item := range v {
			t.Append(e.toLua(item))
		}
		return t
	default:
		return lua.LNil
	}
}

// tableToMap converts the string-keyed entries of t; other keys are dropped.
func tableToMap(t *lua.LTable) map[string]any {
	if t == nil {
		return nil
	}
	out := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			out[string(ks)] = fromLua(v)
		}
	})
	return out
}

func fromLua(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return float64(v)
	case *lua.LTable:
		if v.Len() > 0 {
			items := make([]any, 0, v.Len())
			for i := 1; i <= v.Len(); i++ {
				items = append(items, fromLua(v.RawGetInt(i)))
			}
			return items
		}
		return tableToMap(v)
	default:
		return nil
	}
}
