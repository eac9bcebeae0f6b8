package core

import (
	"time"

	"go.uber.org/zap"
)

// EngineConfig holds the settings a concrete engine adapter needs.
type EngineConfig struct {
	EntryPoint    string        // global holding the render entry object; empty uses the bundle's completion value
	MemoryLimitMB int           // per-instance heap limit, 0 for none
	RenderTimeout time.Duration // upper bound for settling async render results
	Logger        *zap.Logger   // receives the bundle's console output
}

// DefaultRenderTimeout bounds how long a render may wait on promises and
// timers when EngineConfig.RenderTimeout is zero.
const DefaultRenderTimeout = 5 * time.Second

// Timeout returns the configured render timeout or DefaultRenderTimeout.
func (c EngineConfig) Timeout() time.Duration {
	if c.RenderTimeout <= 0 {
		return DefaultRenderTimeout
	}
	return c.RenderTimeout
}

// Log returns the configured logger, or a no-op logger when none is set.
func (c EngineConfig) Log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
