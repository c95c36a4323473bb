package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/dice"
)

// RegisterModules registers all engine.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "unit", L.NewFunction(m.luaUnit))
	L.SetField(engine, "restore", L.NewFunction(m.luaRestore))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logf := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logf(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		expr, err := dice.Parse(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		total := m.roller.Roll(expr)
		result := L.NewTable()
		L.SetField(result, "total", lua.LNumber(total))
		L.SetField(result, "dice", lua.LNumber(total-expr.Modifier))
		L.SetField(result, "modifier", lua.LNumber(expr.Modifier))
		L.Push(result)
		return 1
	}))
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.roller.Chance(L.CheckInt(1))))
		return 1
	}))
	return mod
}

// luaUnit implements engine.unit(uid): a table describing the unit, or nil.
func (m *Manager) luaUnit(L *lua.LState) int {
	uid := uint32(L.CheckInt(1))
	if m.GetUnit == nil {
		L.Push(lua.LNil)
		return 1
	}
	info := m.GetUnit(uid)
	if info == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	L.SetField(t, "uid", lua.LNumber(info.UID))
	L.SetField(t, "creature", lua.LString(info.Creature))
	L.SetField(t, "color", lua.LString(info.Color))
	L.SetField(t, "count", lua.LNumber(info.Count))
	L.SetField(t, "dead", lua.LNumber(info.Dead))
	L.SetField(t, "hp", lua.LNumber(info.HitPoints))
	L.SetField(t, "member_hp", lua.LNumber(info.MemberHP))
	L.Push(t)
	return 1
}

// luaRestore implements engine.restore(uid, points, overflow): returns the
// number of members revived.
func (m *Manager) luaRestore(L *lua.LState) int {
	uid := uint32(L.CheckInt(1))
	points := L.CheckInt(2)
	overflow := L.OptBool(3, false)
	revived := 0
	if m.Restore != nil && points > 0 {
		revived = m.Restore(uid, points, overflow)
	}
	L.Push(lua.LNumber(revived))
	return 1
}
