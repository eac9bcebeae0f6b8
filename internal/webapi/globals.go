package webapi

import (
	"fmt"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
)

// globalsJS gives bundles built for the browser a few names they check for at
// load time. process.env.NODE_ENV is left to the bundler's define step.
const globalsJS = `
(function() {
	if (typeof globalThis.self === 'undefined') globalThis.self = globalThis;
	if (typeof globalThis.global === 'undefined') globalThis.global = globalThis;
	if (typeof globalThis.process === 'undefined') {
		globalThis.process = { env: {}, browser: false, nextTick: function(fn) {
			var args = Array.prototype.slice.call(arguments, 1);
			Promise.resolve().then(function() { fn.apply(null, args); });
		} };
	}
	if (typeof globalThis.performance === 'undefined') {
		var origin = Date.now();
		globalThis.performance = { now: function() { return Date.now() - origin; }, timeOrigin: origin };
	}
})();
`

// SetupGlobals installs self, global, a minimal process and performance.now.
func SetupGlobals(rt core.JSRuntime, _ *eventloop.EventLoop) error {
	if err := rt.Eval(globalsJS); err != nil {
		return fmt.Errorf("evaluating globals.js: %w", err)
	}
	return nil
}
