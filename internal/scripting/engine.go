package scripting

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/l1jgo/entitycore/internal/component"
	"github.com/l1jgo/entitycore/internal/core/ecs"
	"github.com/l1jgo/entitycore/internal/world"
	"github.com/rotisserie/eris"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// SpawnFunc stages an entity from a named template.
type SpawnFunc func(name string) (*ecs.Entity, error)

// Engine wraps a single gopher-lua VM driving one entity collection.
// Single-goroutine access only: each world owns its own Engine.
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	c     *ecs.EntityCollection
	spawn SpawnFunc
	grid  *world.Grid
}

// NewEngine creates a Lua engine and loads all scripts from scriptsDir.
// A missing directory is not an error.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	e.installEntities()

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, eris.Wrap(err, "load scripts")
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return eris.Wrapf(err, "load %s", path)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// Bind points the entities API at c. Spawn may be nil.
func (e *Engine) Bind(c *ecs.EntityCollection, spawn SpawnFunc) {
	e.c = c
	e.spawn = spawn
}

// BindGrid enables entities.near against g.
func (e *Engine) BindGrid(g *world.Grid) {
	e.grid = g
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return eris.Wrap(err, "lua")
	}
	return nil
}

// HasFunction reports whether a global Lua function is defined.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// CallTick calls the global function name with the current tick number.
// A missing function is logged once per call and ignored.
func (e *Engine) CallTick(name string, tick int64) error {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Debug("lua tick function not found", zap.String("fn", name))
		return nil
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(tick)); err != nil {
		return eris.Wrapf(err, "lua %s", name)
	}
	return nil
}

// CallNumber calls a global function and returns its first result as a number.
func (e *Engine) CallNumber(name string, args ...lua.LValue) (float64, error) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return 0, eris.Errorf("lua function %s not found", name)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		return 0, eris.Wrapf(err, "lua %s", name)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		return 0, eris.Errorf("lua %s returned %s, want number", name, result.Type())
	}
	return float64(n), nil
}

// installEntities registers the global `entities` table.
func (e *Engine) installEntities() {
	fns := map[string]lua.LGFunction{
		"create":           e.luaCreate(false),
		"create_permanent": e.luaCreate(true),
		"merge":            e.luaMerge,
		"cleanup":          e.luaCleanup,
		"mark":             e.luaMark,
		"count":            e.luaCount,
		"staged":           e.luaStaged,
		"handle":           e.luaHandle,
		"resolve":          e.luaResolve,
		"delete_all":       e.luaDeleteAll,
		"reset":            e.luaReset,
		"spawn":            e.luaSpawn,
		"ids":              e.luaIDs,
		"permanent":        e.luaPermanent,
		"near":             e.luaNear,
		"position":         e.luaPosition,
	}
	e.vm.SetGlobal("entities", e.vm.SetFuncs(e.vm.NewTable(), fns))
}

func (e *Engine) collection(L *lua.LState) *ecs.EntityCollection {
	if e.c == nil {
		L.RaiseError("entities: no collection bound")
	}
	return e.c
}

func (e *Engine) luaCreate(permanent bool) lua.LGFunction {
	return func(L *lua.LState) int {
		c := e.collection(L)
		var ent *ecs.Entity
		if permanent {
			ent = c.CreatePermanentEntity()
		} else {
			ent = c.CreateEntity()
		}
		L.Push(lua.LNumber(ent.ID()))
		return 1
	}
}

func (e *Engine) luaMerge(L *lua.LState) int {
	e.collection(L).Merge()
	return 0
}

func (e *Engine) luaCleanup(L *lua.LState) int {
	L.Push(lua.LNumber(e.collection(L).Cleanup()))
	return 1
}

func (e *Engine) luaMark(L *lua.LState) int {
	id := ecs.EntityID(L.CheckInt(1))
	L.Push(lua.LBool(e.collection(L).MarkIDForCleanup(id)))
	return 1
}

func (e *Engine) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(e.collection(L).Len()))
	return 1
}

func (e *Engine) luaStaged(L *lua.LState) int {
	L.Push(lua.LNumber(e.collection(L).StagedLen()))
	return 1
}

// luaHandle returns {slot=, gen=} for a live entity id, or nil.
func (e *Engine) luaHandle(L *lua.LState) int {
	c := e.collection(L)
	ent, ok := c.EntityByID(ecs.EntityID(L.CheckInt(1)))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	h := c.HandleFor(ent)
	t := L.NewTable()
	t.RawSetString("slot", lua.LNumber(h.Slot))
	t.RawSetString("gen", lua.LNumber(h.Gen))
	L.Push(t)
	return 1
}

// luaResolve takes a handle table and returns the entity id, or nil when stale.
func (e *Engine) luaResolve(L *lua.LState) int {
	t := L.CheckTable(1)
	h := ecs.EntityHandle{
		Slot: uint32(lua.LVAsNumber(t.RawGetString("slot"))),
		Gen:  uint32(lua.LVAsNumber(t.RawGetString("gen"))),
	}
	ent, ok := e.collection(L).Resolve(h)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(ent.ID()))
	return 1
}

func (e *Engine) luaDeleteAll(L *lua.LState) int {
	n := e.collection(L).DeleteAll(L.OptBool(1, false))
	L.Push(lua.LNumber(n))
	return 1
}

func (e *Engine) luaReset(L *lua.LState) int {
	e.collection(L).DeleteAllNoReallyIMeanAll()
	return 0
}

func (e *Engine) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	if e.spawn == nil {
		L.Push(lua.LNil)
		L.Push(lua.LString("entities.spawn: no templates bound"))
		return 2
	}
	ent, err := e.spawn(name)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(ent.ID()))
	return 1
}

func (e *Engine) luaIDs(L *lua.LState) int {
	t := L.NewTable()
	e.collection(L).Each(func(ent *ecs.Entity) {
		t.Append(lua.LNumber(ent.ID()))
	})
	L.Push(t)
	return 1
}

func (e *Engine) luaPermanent(L *lua.LState) int {
	ent, ok := e.collection(L).EntityByID(ecs.EntityID(L.CheckInt(1)))
	L.Push(lua.LBool(ok && ent.IsPermanent()))
	return 1
}

// luaNear returns the ids of live entities within r of (x, y), as of the
// last grid rebuild.
func (e *Engine) luaNear(L *lua.LState) int {
	c := e.collection(L)
	if e.grid == nil {
		L.RaiseError("entities.near: no grid bound")
	}
	x, y, r := float64(L.CheckNumber(1)), float64(L.CheckNumber(2)), float64(L.CheckNumber(3))
	t := L.NewTable()
	for _, h := range e.grid.Nearby(x, y, r) {
		if ent, ok := c.Resolve(h); ok {
			t.Append(lua.LNumber(ent.ID()))
		}
	}
	L.Push(t)
	return 1
}

func (e *Engine) luaPosition(L *lua.LState) int {
	ent, ok := e.collection(L).EntityByID(ecs.EntityID(L.CheckInt(1)))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	p, ok := ecs.Get[component.Position](ent)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(p.X))
	L.Push(lua.LNumber(p.Y))
	return 2
}
