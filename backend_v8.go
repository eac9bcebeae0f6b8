//go:build v8

package ssr

import (
	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/v8engine"
)

func newEngine(cfg core.EngineConfig) core.Engine {
	return v8engine.NewEngine(cfg)
}
