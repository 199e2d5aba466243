package system

import (
	"context"
	"time"

	coresys "github.com/l1jgo/entitycore/internal/core/system"
	"github.com/l1jgo/entitycore/internal/scripting"
	"go.uber.org/zap"
)

// ScriptSystem calls a Lua tick function once per tick. Phase 0 (Input).
// Entities the script creates are staged and merge in PreUpdate.
type ScriptSystem struct {
	lua       *scripting.Engine
	fn        string
	log       *zap.Logger
	tickCount int64
}

func NewScriptSystem(lua *scripting.Engine, fn string, log *zap.Logger) *ScriptSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScriptSystem{lua: lua, fn: fn, log: log}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ScriptSystem) Update(_ context.Context, _ time.Duration) {
	s.tickCount++
	if s.fn == "" {
		return
	}
	if err := s.lua.CallTick(s.fn, s.tickCount); err != nil {
		s.log.Error("lua tick failed", zap.String("fn", s.fn), zap.Int64("tick", s.tickCount), zap.Error(err))
	}
}
