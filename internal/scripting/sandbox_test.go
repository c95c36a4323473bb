package scripting_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/scripting"
)

func newSandbox(t *testing.T, limit int) *lua.LState {
	t.Helper()
	L := scripting.NewSandboxedState(limit)
	require.NotNil(t, L)
	t.Cleanup(L.Close)
	return L
}

func TestSandbox_StrippedGlobals(t *testing.T) {
	L := newSandbox(t, 0)
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "%s must not reach hook code", name)
	}
}

func TestSandbox_HookLibraries(t *testing.T) {
	L := newSandbox(t, 0)
	// The shape of an on-kill hook: count arithmetic, a name check and a
	// table of raised stacks.
	require.NoError(t, L.DoString(`
		function harvest(killed, creature)
			local raised = {}
			if string.find(creature, "lich") then
				table.insert(raised, math.floor(killed / 5))
			end
			return raised
		end
	`))
	require.NoError(t, L.CallByParam(lua.P{Fn: L.GetGlobal("harvest"), NRet: 1, Protect: true},
		lua.LNumber(11), lua.LString("power_lich")))
	raised, ok := L.Get(-1).(*lua.LTable)
	require.True(t, ok)
	assert.Equal(t, lua.LNumber(2), raised.RawGetInt(1))
}

func TestSandbox_InstructionLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		script  string
		wantErr bool
	}{
		{"default limit runs a short loop", 0, `local n = 0 for i = 1, 100 do n = n + i end`, false},
		{"small limit stops a long loop", 50, `local n = 0 for i = 1, 10000 do n = n + i end`, true},
		{"small limit stops a spin", 10, `while true do end`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := newSandbox(t, tc.limit).DoString(tc.script)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSandbox_ErrorMessageSurvives(t *testing.T) {
	L := newSandbox(t, 0)
	err := L.DoString(`error("stack of " .. 3 .. " ghosts")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack of 3 ghosts")
}

func TestSandbox_LimitAlwaysStopsUnboundedLoops_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 200).Draw(rt, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		script := fmt.Sprintf(`local n = 0 while n < %d do n = n + 1 end`, limit*100)
		if err := L.DoString(script); err == nil {
			rt.Fatalf("loop of %d steps finished under limit %d", limit*100, limit)
		}
	})
}
