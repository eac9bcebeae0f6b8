//go:build !v8

// Package quickjs backs core.Engine with modernc.org/quickjs, a pure-Go
// translation of QuickJS. It is the default engine; build with -tags v8 to
// use internal/v8engine instead.
package quickjs

import (
	"fmt"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
	"github.com/cryguy/ssr/internal/webapi"
	"modernc.org/quickjs"
)

// Engine compiles server bundles into dedicated QuickJS VMs.
type Engine struct {
	config core.EngineConfig
}

var _ core.Engine = (*Engine)(nil)

// NewEngine creates an Engine with the given configuration.
func NewEngine(cfg core.EngineConfig) *Engine {
	return &Engine{config: cfg}
}

// Compile creates a VM, installs the SSR polyfills, evaluates source and
// binds its render entry. The VM is closed again on any failure.
func (e *Engine) Compile(source string) (core.Renderer, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("creating QuickJS VM: %w", err)
	}

	if e.config.MemoryLimitMB > 0 {
		vm.SetMemoryLimit(uintptr(e.config.MemoryLimitMB) * 1024 * 1024)
	}

	jobs, err := newJobQueue(vm)
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("attaching job queue: %w", err)
	}

	rt := &qjsRuntime{vm: vm, jobs: jobs}
	el := eventloop.New()

	if err := webapi.Setup(rt, el, e.config); err != nil {
		vm.Close()
		return nil, fmt.Errorf("setup: %w", err)
	}

	capture := func(src string) error {
		v, err := vm.EvalValue(src, quickjs.EvalGlobal)
		if err != nil {
			return err
		}
		defer v.Free()
		return rt.SetGlobal(webapi.EntryGlobal, v)
	}
	if err := webapi.LoadBundle(rt, source, e.config.EntryPoint, capture); err != nil {
		vm.Close()
		return nil, err
	}
	// Module-level promises (top-level .then chains) settle before the first render.
	rt.RunMicrotasks()

	return &renderer{vm: vm, rt: rt, eventLoop: el, config: e.config}, nil
}

// renderer is a compiled bundle living in one QuickJS VM.
type renderer struct {
	vm        *quickjs.VM
	rt        *qjsRuntime
	eventLoop *eventloop.EventLoop
	config    core.EngineConfig
	closed    bool
}

// Render calls the bundle's entry with payload. A panic inside the VM
// bindings is reported as an error rather than taking the caller down.
func (r *renderer) Render(payload string) (html string, err error) {
	if r.closed {
		return "", fmt.Errorf("renderer is closed")
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("quickjs panic: %v", p)
		}
	}()
	return webapi.RenderEntry(r.rt, r.eventLoop, payload, r.config.Timeout())
}

// Close frees the VM. It is safe to call more than once.
func (r *renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.eventLoop.Reset()
	r.vm.Close()
}
