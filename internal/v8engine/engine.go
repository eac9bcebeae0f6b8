//go:build v8

// Package v8engine backs core.Engine with V8 through tommie/v8go. Selected
// with -tags v8.
package v8engine

import (
	"fmt"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
	"github.com/cryguy/ssr/internal/webapi"
	v8 "github.com/tommie/v8go"
)

// Engine compiles server bundles into dedicated V8 isolates.
type Engine struct {
	config core.EngineConfig
}

var _ core.Engine = (*Engine)(nil)

// NewEngine creates an Engine with the given configuration.
func NewEngine(cfg core.EngineConfig) *Engine {
	return &Engine{config: cfg}
}

// Compile creates an isolate and context, installs the SSR polyfills,
// compiles and runs source and binds its render entry.
func (e *Engine) Compile(source string) (core.Renderer, error) {
	var iso *v8.Isolate
	if e.config.MemoryLimitMB > 0 {
		heapSize := uint64(e.config.MemoryLimitMB) * 1024 * 1024
		iso = v8.NewIsolate(v8.WithResourceConstraints(heapSize/2, heapSize))
	} else {
		iso = v8.NewIsolate()
	}
	ctx := v8.NewContext(iso)
	rt := &v8Runtime{iso: iso, ctx: ctx}
	el := eventloop.New()

	dispose := func() {
		ctx.Close()
		iso.Dispose()
	}

	if err := webapi.Setup(rt, el, e.config); err != nil {
		dispose()
		return nil, fmt.Errorf("setup: %w", err)
	}

	capture := func(src string) error {
		script, err := iso.CompileUnboundScript(src, "server-bundle.js", v8.CompileOptions{})
		if err != nil {
			return fmt.Errorf("compiling: %w", err)
		}
		val, err := script.Run(ctx)
		if err != nil {
			return err
		}
		return rt.SetGlobal(webapi.EntryGlobal, val)
	}
	if err := webapi.LoadBundle(rt, source, e.config.EntryPoint, capture); err != nil {
		dispose()
		return nil, err
	}
	rt.RunMicrotasks()

	return &renderer{iso: iso, ctx: ctx, rt: rt, eventLoop: el, config: e.config}, nil
}

// renderer is a compiled bundle living in one V8 isolate.
type renderer struct {
	iso       *v8.Isolate
	ctx       *v8.Context
	rt        *v8Runtime
	eventLoop *eventloop.EventLoop
	config    core.EngineConfig
	closed    bool
}

// Render calls the bundle's entry with payload.
func (r *renderer) Render(payload string) (string, error) {
	if r.closed {
		return "", fmt.Errorf("renderer is closed")
	}
	return webapi.RenderEntry(r.rt, r.eventLoop, payload, r.config.Timeout())
}

// Close disposes the context and isolate. It is safe to call more than once.
func (r *renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.eventLoop.Reset()
	r.ctx.Close()
	r.iso.Dispose()
}
