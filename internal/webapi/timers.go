package webapi

import (
	"time"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
)

// timersJS is the JavaScript side of setTimeout/setInterval/setImmediate.
// Callbacks live in __timerCallbacks; Go only tracks deadlines.
const timersJS = `
(function() {
	globalThis.__timerCallbacks = {};
	function schedule(fn, delay, interval, rest) {
		if (typeof fn !== 'function') {
			return 0;
		}
		var id = __timerRegister(Math.max(0, Math.floor(Number(delay) || 0)), interval);
		globalThis.__timerCallbacks[id] = { fn: fn, args: rest, interval: interval };
		return id;
	}
	function clear(id) {
		if (typeof id !== 'number') {
			return;
		}
		__timerClear(id);
		delete globalThis.__timerCallbacks[id];
	}
	globalThis.setTimeout = function(fn, delay) {
		return schedule(fn, delay, false, Array.prototype.slice.call(arguments, 2));
	};
	globalThis.setInterval = function(fn, interval) {
		return schedule(fn, interval, true, Array.prototype.slice.call(arguments, 2));
	};
	globalThis.setImmediate = function(fn) {
		return schedule(fn, 0, false, Array.prototype.slice.call(arguments, 1));
	};
	globalThis.clearTimeout = globalThis.clearInterval = globalThis.clearImmediate = clear;
	globalThis.queueMicrotask = function(fn) {
		if (typeof fn !== 'function') {
			throw new TypeError('queueMicrotask: callback is not a function');
		}
		Promise.resolve().then(fn);
	};
})();
`

// SetupTimers registers Go-backed timers and queueMicrotask.
func SetupTimers(rt core.JSRuntime, el *eventloop.EventLoop) error {
	if err := rt.RegisterFunc("__timerRegister", func(delayMs int, isInterval bool) int {
		return el.RegisterTimer(time.Duration(delayMs)*time.Millisecond, isInterval)
	}); err != nil {
		return err
	}

	if err := rt.RegisterFunc("__timerClear", func(id int) {
		el.ClearTimer(id)
	}); err != nil {
		return err
	}

	return rt.Eval(timersJS)
}
