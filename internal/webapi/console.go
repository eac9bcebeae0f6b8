package webapi

import (
	"github.com/cryguy/ssr/internal/core"
	"github.com/cryguy/ssr/internal/eventloop"
	"go.uber.org/zap"
)

// consoleJS builds a console object whose methods forward a formatted line
// to the Go-side __console function.
const consoleJS = `
(function() {
	function fmt(args) {
		var parts = [];
		for (var i = 0; i < args.length; i++) {
			var arg = args[i];
			if (typeof arg === 'string') {
				parts.push(arg);
			} else if (arg instanceof Error) {
				var s = String(arg);
				if (arg.stack && String(arg.stack).indexOf(s) < 0) s += '\n' + arg.stack;
				parts.push(s);
			} else if (typeof arg === 'object' && arg !== null) {
				try { parts.push(JSON.stringify(arg)); } catch (e) { parts.push(String(arg)); }
			} else {
				parts.push(String(arg));
			}
		}
		return parts.join(' ');
	}
	var con = {};
	['log', 'info', 'warn', 'error', 'debug', 'trace'].forEach(function(lvl) {
		con[lvl] = function() { __console(lvl, fmt(arguments)); };
	});
	con.dir = con.log;
	con.table = con.log;
	con.assert = function(cond) {
		if (!cond) {
			__console('error', 'Assertion failed: ' + fmt(Array.prototype.slice.call(arguments, 1)));
		}
	};
	con.group = con.groupCollapsed = con.groupEnd = con.time = con.timeEnd = function() {};
	globalThis.console = con;
})();
`

// SetupConsole returns a setup function that routes the bundle's console
// output to logger, one entry per call.
func SetupConsole(logger *zap.Logger) SetupFunc {
	logger = logger.With(zap.String("source", "bundle"))
	return func(rt core.JSRuntime, _ *eventloop.EventLoop) error {
		if err := rt.RegisterFunc("__console", func(level, message string) {
			switch level {
			case "error":
				logger.Error(message)
			case "warn":
				logger.Warn(message)
			case "debug", "trace":
				logger.Debug(message)
			default:
				logger.Info(message)
			}
		}); err != nil {
			return err
		}
		return rt.Eval(consoleJS)
	}
}
