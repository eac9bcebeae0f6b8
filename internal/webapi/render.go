package webapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
)

// entryCheckJS is true when the entry object is callable or exposes at
// least one function property.
const entryCheckJS = `
(function() {
	var entry = globalThis.` + EntryGlobal + `;
	if (typeof entry === 'function') return true;
	if (entry === null || typeof entry !== 'object') return false;
	var keys = Object.keys(entry);
	for (var i = 0; i < keys.length; i++) {
		if (typeof entry[keys[i]] === 'function') return true;
	}
	return false;
})()
`

// invokeJS calls every render function of the entry object with the payload,
// in property order, and stores the concatenated output (or a promise of it)
// in __ssr_result. undefined and null results contribute nothing.
const invokeJS = `
(function() {
	var entry = globalThis.` + EntryGlobal + `;
	var payload = globalThis.__ssr_payload;
	var fns = [];
	if (typeof entry === 'function') {
		fns.push(entry);
	} else {
		var keys = Object.keys(entry);
		for (var i = 0; i < keys.length; i++) {
			if (typeof entry[keys[i]] === 'function') fns.push(entry[keys[i]]);
		}
	}
	var parts = [];
	var pending = false;
	for (var j = 0; j < fns.length; j++) {
		var r = fns[j].call(undefined, payload);
		if (r !== null && typeof r === 'object' && typeof r.then === 'function') pending = true;
		parts.push(r);
	}
	function join(values) {
		var out = '';
		for (var k = 0; k < values.length; k++) {
			var v = values[k];
			if (v === undefined || v === null) continue;
			out += String(v);
		}
		return out;
	}
	globalThis.__ssr_result = pending ? Promise.all(parts).then(join) : join(parts);
})();
`

// cleanupJS removes per-render state so a reused engine starts clean.
const cleanupJS = `
(function() {
	var perRender = ['__ssr_payload', '__ssr_result', '__awaited_result', '__awaited_state'];
	for (var i = 0; i < perRender.length; i++) {
		try { delete globalThis[perRender[i]]; } catch (e) {}
	}
	if (globalThis.__timerCallbacks) {
		globalThis.__timerCallbacks = {};
	}
})();
`

// LoadBundle evaluates source and binds the render entry object to
// EntryGlobal. Classic scripts are evaluated by evalCapture, which must store
// the script's completion value in EntryGlobal; ES modules are rewritten by
// WrapModule and evaluated directly. A non-empty entryPoint names a global
// that overrides either.
func LoadBundle(rt core.JSRuntime, source, entryPoint string, evalCapture func(src string) error) error {
	if IsModule(source) {
		wrapped, err := WrapModule(source)
		if err != nil {
			return err
		}
		if err := rt.Eval(wrapped); err != nil {
			return fmt.Errorf("evaluating bundle: %w", err)
		}
	} else if err := evalCapture(source); err != nil {
		return fmt.Errorf("evaluating bundle: %w", err)
	}

	if entryPoint != "" {
		if err := rt.Eval(fmt.Sprintf("globalThis.%s = globalThis[%q];", EntryGlobal, entryPoint)); err != nil {
			return fmt.Errorf("binding entry point %q: %w", entryPoint, err)
		}
	}

	ok, err := rt.EvalBool(entryCheckJS)
	if err != nil {
		return fmt.Errorf("inspecting bundle entry: %w", err)
	}
	if !ok {
		if entryPoint != "" {
			return fmt.Errorf("entry point %q exposes no render function", entryPoint)
		}
		return fmt.Errorf("bundle exposes no render function")
	}
	return nil
}

// RenderEntry invokes the bound entry object with payload and returns its
// HTML. Async results are awaited for at most timeout. Per-render globals
// and pending timers are cleared before returning, whatever the outcome.
func RenderEntry(rt core.JSRuntime, el *eventloop.EventLoop, payload string, timeout time.Duration) (string, error) {
	defer func() {
		_ = rt.Eval(cleanupJS)
		el.Reset()
	}()

	if err := rt.SetGlobal("__ssr_payload", payload); err != nil {
		return "", fmt.Errorf("setting payload: %w", err)
	}

	if err := rt.Eval(invokeJS); err != nil {
		return "", fmt.Errorf("invoking render entry: %w", err)
	}
	rt.RunMicrotasks()

	if err := AwaitValue(rt, "__ssr_result", time.Now().Add(timeout), el); err != nil {
		return "", fmt.Errorf("awaiting render result: %w", err)
	}

	// QuickJS hands strings back as C strings, so the result crosses as JSON
	// to keep NUL characters.
	encoded, err := rt.EvalString("JSON.stringify(String(globalThis.__ssr_result))")
	if err != nil {
		return "", fmt.Errorf("reading render result: %w", err)
	}
	var html string
	if err := json.Unmarshal([]byte(encoded), &html); err != nil {
		return "", fmt.Errorf("decoding render result: %w", err)
	}
	return html, nil
}
