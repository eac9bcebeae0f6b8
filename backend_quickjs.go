//go:build !v8

package ssr

import (
	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/quickjs"
)

func newEngine(cfg core.EngineConfig) core.Engine {
	return quickjs.NewEngine(cfg)
}
