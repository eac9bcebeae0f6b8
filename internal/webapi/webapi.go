// Package webapi installs the browser-ish globals a server bundle expects
// and drives its render entry point. Everything here is engine-neutral and
// talks to the engine through core.JSRuntime.
package webapi

import (
	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
)

// SetupFunc configures a fresh runtime before the bundle is evaluated.
type SetupFunc func(rt core.JSRuntime, el *eventloop.EventLoop) error

// SetupFuncs returns the polyfills installed into every engine instance,
// in dependency order.
func SetupFuncs(cfg core.EngineConfig) []SetupFunc {
	return []SetupFunc{
		// Globals: globalThis.window/self/process.env shims
		SetupGlobals,
		// Timers: setTimeout, setInterval, setImmediate, queueMicrotask
		SetupTimers,
		// Encoding: TextEncoder, TextDecoder, atob, btoa
		SetupEncoding,
		// Crypto: getRandomValues, randomUUID (requires encoding)
		SetupCrypto,
		// Events: Event, EventTarget, MessageEvent, MessageChannel (requires timers)
		SetupEvents,
		// Console: routed to the engine logger
		SetupConsole(cfg.Log()),
	}
}

// Setup runs every function from SetupFuncs against rt.
func Setup(rt core.JSRuntime, el *eventloop.EventLoop, cfg core.EngineConfig) error {
	for _, setup := range SetupFuncs(cfg) {
		if err := setup(rt, el); err != nil {
			return err
		}
	}
	return nil
}
