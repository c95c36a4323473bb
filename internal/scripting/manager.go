package scripting

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/dice"
)

// UnitInfo is a snapshot of a battle unit passed to Lua callbacks.
type UnitInfo struct {
	UID       uint32
	Creature  string
	Color     string
	Count     int
	Dead      int
	HitPoints int
	MemberHP  int
}

// Manager owns one sandboxed LState holding every loaded hook script and
// dispatches hook calls into it.
//
// Manager is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	limit  int
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetUnit func(uid uint32) *UnitInfo
	Restore func(uid uint32, points int, overflow bool) int
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: NewManager requires a non-nil roller")
	}
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{roller: roller, logger: logger}
}

// LoadDir loads every *.lua file in dir. See Load.
func (m *Manager) LoadDir(dir string, instLimit int) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	return m.Load(os.DirFS(dir), instLimit)
}

// Load creates a fresh sandboxed VM, registers the engine.* modules, then
// executes every *.lua file at the root of fsys in lexicographic order. On
// success the new VM replaces any previously loaded one.
//
// Postcondition: Returns an error naming the failing file, leaving the
// previous VM in place.
func (m *Manager) Load(fsys fs.FS, instLimit int) error {
	files, err := fs.Glob(fsys, "*.lua")
	if err != nil {
		return fmt.Errorf("scripting: listing scripts: %w", err)
	}
	sort.Strings(files)

	L := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, name := range files {
		if err := runFile(L, fsys, name, instLimit); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", name, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.limit = instLimit
	m.mu.Unlock()

	m.logger.Debug("scripts loaded", zap.Int("files", len(files)))
	return nil
}

func runFile(L *lua.LState, fsys fs.FS, name string, limit int) error {
	f, err := fsys.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	fn, err := L.Load(f, path.Base(name))
	if err != nil {
		return err
	}
	disarm := armLimit(L, limit)
	defer disarm()
	L.Push(fn)
	return L.PCall(0, lua.MultRet, nil)
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined or no scripts are loaded. Lua runtime errors, including
// an exhausted instruction budget, are logged at Warn level and never
// propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L := m.state
	if L == nil {
		m.logger.Info("scripting: no scripts loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	disarm := armLimit(L, m.limit)
	defer disarm()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// CallKillHook runs a creature's on-kill hook with the attacker and victim
// unit identifiers and the number of members killed.
func (m *Manager) CallKillHook(hook string, attacker, victim uint32, killed int) {
	_, _ = m.CallHook(hook, lua.LNumber(attacker), lua.LNumber(victim), lua.LNumber(killed))
}

// Close releases the loaded VM. Later hook calls are no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
