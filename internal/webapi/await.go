package webapi

import (
	"fmt"
	"runtime"
	"time"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
)

// AwaitValue resolves a potentially-promise value stored in a global variable
// by pumping the microtask queue and the event loop. The global variable is
// updated in-place with the resolved value.
func AwaitValue(rt core.JSRuntime, globalVar string, deadline time.Time, el *eventloop.EventLoop) error {
	isThenable, err := rt.EvalBool(fmt.Sprintf(
		"(function(v) { return v !== null && typeof v === 'object' && typeof v.then === 'function'; })(globalThis.%s)", globalVar))
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", globalVar, err)
	}
	if !isThenable {
		return nil
	}

	setupJS := fmt.Sprintf(`
		delete globalThis.__awaited_result;
		delete globalThis.__awaited_state;
		Promise.resolve(globalThis.%s).then(
			function(r) { globalThis.__awaited_result = r; globalThis.__awaited_state = 'fulfilled'; },
			function(e) { globalThis.__awaited_result = e; globalThis.__awaited_state = 'rejected'; }
		);
	`, globalVar)
	if err := rt.Eval(setupJS); err != nil {
		return fmt.Errorf("setting up promise await: %w", err)
	}

	for {
		rt.RunMicrotasks()

		if el != nil && el.HasPending() {
			shortDeadline := time.Now().Add(10 * time.Millisecond)
			if shortDeadline.After(deadline) {
				shortDeadline = deadline
			}
			el.Drain(rt, shortDeadline)
			rt.RunMicrotasks()
		}

		state, err := rt.EvalString("String(globalThis.__awaited_state)")
		if err != nil {
			return fmt.Errorf("checking promise state: %w", err)
		}
		if state != "undefined" {
			break
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("promise resolution timed out")
		}
		runtime.Gosched()
	}

	state, _ := rt.EvalString("String(globalThis.__awaited_state)")
	if state == "rejected" {
		msg, _ := rt.EvalString(`(function(e) {
			var s = String(e);
			if (e instanceof Error && e.stack && String(e.stack).indexOf(s) < 0) s += '\n' + e.stack;
			return s;
		})(globalThis.__awaited_result)`)
		_ = rt.Eval("delete globalThis.__awaited_result; delete globalThis.__awaited_state;")
		return fmt.Errorf("promise rejected: %s", msg)
	}

	return rt.Eval(fmt.Sprintf(
		"globalThis.%s = globalThis.__awaited_result; delete globalThis.__awaited_result; delete globalThis.__awaited_state;",
		globalVar))
}
