package ssr

import "github.com/cryguy/ssr/internal/core"

// Type aliases re-exporting internal/core so callers can plug in their own
// engine without importing the internal package.

type Engine = core.Engine
type Renderer = core.Renderer
type EngineConfig = core.EngineConfig

// NewEngine returns the built-in engine: QuickJS by default, V8 when built
// with -tags v8.
func NewEngine(cfg EngineConfig) Engine {
	return newEngine(cfg)
}
