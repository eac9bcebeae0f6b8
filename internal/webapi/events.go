package webapi

import (
	"fmt"

	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
)

// eventsJS provides Event, EventTarget, MessageEvent and MessageChannel.
// React 19's server renderer schedules work through MessageChannel, so
// messages are delivered as macrotasks on the Go event loop.
const eventsJS = `
(function() {
	if (typeof globalThis.Event === 'undefined') {
		class Event {
			constructor(type, init) {
				this.type = String(type);
				this.bubbles = !!(init && init.bubbles);
				this.cancelable = !!(init && init.cancelable);
				this.defaultPrevented = false;
				this.target = null;
				this.currentTarget = null;
				this.timeStamp = Date.now();
			}
			preventDefault() { if (this.cancelable) this.defaultPrevented = true; }
			stopPropagation() {}
			stopImmediatePropagation() { this._stop = true; }
		}
		globalThis.Event = Event;
	}

	if (typeof globalThis.EventTarget === 'undefined') {
		class EventTarget {
			constructor() { this._listeners = {}; }
			addEventListener(type, fn, opts) {
				if (typeof fn !== 'function' && !(fn && typeof fn.handleEvent === 'function')) return;
				var list = this._listeners[type] || (this._listeners[type] = []);
				for (var i = 0; i < list.length; i++) if (list[i].fn === fn) return;
				list.push({ fn: fn, once: !!(opts && opts.once) });
			}
			removeEventListener(type, fn) {
				var list = this._listeners[type];
				if (!list) return;
				this._listeners[type] = list.filter(function(l) { return l.fn !== fn; });
			}
			dispatchEvent(evt) {
				evt.target = evt.currentTarget = this;
				var list = (this._listeners[evt.type] || []).slice();
				for (var i = 0; i < list.length; i++) {
					var l = list[i];
					if (l.once) this.removeEventListener(evt.type, l.fn);
					if (typeof l.fn === 'function') l.fn.call(this, evt); else l.fn.handleEvent(evt);
					if (evt._stop) break;
				}
				return !evt.defaultPrevented;
			}
		}
		globalThis.EventTarget = EventTarget;
	}

	if (typeof globalThis.MessageEvent === 'undefined') {
		class MessageEvent extends Event {
			constructor(type, init) {
				super(type, init);
				this.data = init && 'data' in init ? init.data : null;
				this.origin = (init && init.origin) || '';
				this.ports = (init && init.ports) || [];
			}
		}
		globalThis.MessageEvent = MessageEvent;
	}

	if (typeof globalThis.MessageChannel === 'undefined') {
		class MessagePort extends EventTarget {
			constructor() {
				super();
				this._remote = null;
				this._closed = false;
				this.onmessage = null;
			}
			postMessage(data) {
				if (this._closed || !this._remote) return;
				var remote = this._remote;
				setTimeout(function() {
					if (remote._closed) return;
					var evt = new MessageEvent('message', { data: data });
					if (typeof remote.onmessage === 'function') remote.onmessage(evt);
					remote.dispatchEvent(evt);
				}, 0);
			}
			start() {}
			close() { this._closed = true; this._remote = null; }
		}

		class MessageChannel {
			constructor() {
				this.port1 = new MessagePort();
				this.port2 = new MessagePort();
				this.port1._remote = this.port2;
				this.port2._remote = this.port1;
			}
		}

		globalThis.MessagePort = MessagePort;
		globalThis.MessageChannel = MessageChannel;
	}
})();
`

// SetupEvents installs the event and messaging globals. Requires SetupTimers.
func SetupEvents(rt core.JSRuntime, _ *eventloop.EventLoop) error {
	if err := rt.Eval(eventsJS); err != nil {
		return fmt.Errorf("evaluating events.js: %w", err)
	}
	return nil
}
