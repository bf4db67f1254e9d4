package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/imjasonh/hookreg/internal/config"
	"github.com/imjasonh/hookreg/internal/hooks"
	lua "github.com/yuin/gopher-lua"
)

// DefaultLuaFunction is called when a lua definition names no function.
const DefaultLuaFunction = "run"

// luaHook owns one Lua state. gopher-lua states are not goroutine-safe, so
// every call holds mu.
type luaHook struct {
	mu     sync.Mutex
	L      *lua.LState
	fn     string
	closed bool
}

func newLuaHook(dir string, def config.HookDefinition) (*luaHook, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	var err error
	if def.Script != "" {
		path := def.Script
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		err = L.DoFile(path)
	} else {
		err = L.DoString(def.Source)
	}
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to load lua script: %w", err)
	}

	fn := def.Function
	if fn == "" {
		fn = DefaultLuaFunction
	}
	if v := L.GetGlobal(fn); v.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%q is not a function (got %s)", fn, v.Type())
	}

	return &luaHook{L: L, fn: fn}, nil
}

// openSafeLibraries opens only the Lua libraries without file or process access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func (h *luaHook) callback(kind hooks.Kind) hooks.Callback {
	return func(ctx context.Context, args ...any) (any, error) {
		ret, err := h.call(ctx, args)
		if err != nil {
			return nil, err
		}
		if kind != hooks.Filter {
			return nil, nil
		}
		return ret, nil
	}
}

func (h *luaHook) call(ctx context.Context, args []any) (ret any, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, fmt.Errorf("lua state is closed")
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLua(h.L, a)
	}

	if err := h.L.CallByParam(lua.P{
		Fn:      h.L.GetGlobal(h.fn),
		NRet:    1,
		Protect: true,
	}, largs...); err != nil {
		return nil, fmt.Errorf("lua function %s failed: %w", h.fn, err)
	}

	result := h.L.Get(-1)
	h.L.Pop(1)
	return fromLua(result, make(map[*lua.LTable]bool)), nil
}

func (h *luaHook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.L.Close()
	h.closed = true
	return nil
}

// toLua converts a Go value to a Lua value. Unsupported types become their
// string form.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []any:
		t := L.NewTable()
		for _, item := range val {
			t.Append(toLua(L, item))
		}
		return t
	case []string:
		t := L.NewTable()
		for _, item := range val {
			t.Append(lua.LString(item))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(L, val[k]))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(val))
	}
}

// fromLua converts a Lua value to a Go value. Tables with keys 1..n become
// slices, other tables become maps. visited holds the tables on the current
// path; a table that contains itself converts to nil at the repeat.
func fromLua(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.MaxN()
	count := 0
	t.ForEach(func(_, _ lua.LValue) {
		count++
	})

	if n > 0 && count == n {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = fromLua(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = fromLua(v, visited)
	})
	return m
}
