// Package ssr renders tuono pages on the server by running the compiled
// client bundle in an embedded JavaScript engine.
//
// In production one engine per worker is compiled lazily from
// out/server/prod-server.js and reused; failures are returned to the caller.
// In development .tuono/server/dev-server.js is reloaded on every call and
// any failure degrades to .tuono/index.html with the payload spliced in.
package ssr

import (
	"time"

	"github.com/cryguy/ssr/internal/core"
	"go.uber.org/zap"
)

// Dispatcher routes render calls to the production or development renderer
// according to the mode it was built with. It is safe for concurrent use.
type Dispatcher struct {
	mode   Mode
	prod   *prodPool
	dev    *devRenderer
	logger *zap.Logger
}

// Option customises a Dispatcher.
type Option func(*options)

type options struct {
	engine core.Engine
	files  FileReader
	logger *zap.Logger
}

// WithEngine replaces the built-in JavaScript engine.
func WithEngine(e Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithFileReader replaces filesystem access, mainly for tests.
func WithFileReader(f FileReader) Option {
	return func(o *options) { o.files = f }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds a Dispatcher. No file is read and no engine is created until
// the first render (or Warmup).
func New(cfg Config, opts ...Option) *Dispatcher {
	o := options{files: OSFiles{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	cfg = cfg.withDefaults()
	if o.engine == nil {
		o.engine = newEngine(cfg.engineConfig(o.logger))
	}
	logger := o.logger.With(zap.Stringer("mode", cfg.Mode))

	return &Dispatcher{
		mode: cfg.Mode,
		prod: newProdPool(cfg.Workers, cfg.ProdBundle, o.files, o.engine, logger),
		dev: &devRenderer{
			bundlePath:   cfg.DevBundle,
			fallbackPath: cfg.FallbackPage,
			files:        o.files,
			engine:       o.engine,
			logger:       logger,
		},
		logger: logger,
	}
}

// Mode returns the mode the Dispatcher was built with.
func (d *Dispatcher) Mode() Mode {
	return d.mode
}

// RenderToString renders payload to HTML. An empty payload stands for "no
// payload". In ModeDev it never returns an error; in ModeProd bundle and
// engine failures are returned unchanged.
func (d *Dispatcher) RenderToString(payload string) (string, error) {
	start := time.Now()
	switch d.mode {
	case ModeProd:
		html, err := d.prod.renderToString(payload)
		if err != nil {
			return "", err
		}
		d.logger.Debug("rendered", zap.Int("bytes", len(html)), zap.Duration("took", time.Since(start)))
		return html, nil
	case ModeDev:
		html := d.dev.renderToString(payload)
		d.logger.Debug("rendered", zap.Int("bytes", len(html)), zap.Duration("took", time.Since(start)))
		return html, nil
	default:
		return "", ErrModeNotSet
	}
}

// Warmup compiles every production worker up front so a missing or broken
// bundle is reported at startup. It is a no-op in ModeDev.
func (d *Dispatcher) Warmup() error {
	switch d.mode {
	case ModeProd:
		return d.prod.warmup()
	case ModeDev:
		return nil
	default:
		return ErrModeNotSet
	}
}

// Close releases the production engines after in-flight renders finish.
func (d *Dispatcher) Close() {
	d.prod.close()
}
