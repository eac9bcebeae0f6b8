package ssr

import (
	"sync"
	"time"

	"github.com/cryguy/ssr/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// prodWorker is one slot in the production pool. Whoever holds the slot owns
// its renderer exclusively; engines are never shared between goroutines.
type prodWorker struct {
	id       int
	renderer core.Renderer
	err      error // sticky initialisation failure
	ready    bool  // initialisation attempted
}

// prodPool renders with a fixed set of lazily initialised engines. Each slot
// reads and compiles the production bundle on its first use and keeps the
// result for the pool's lifetime.
type prodPool struct {
	workers chan *prodWorker
	size    int
	path    string
	files   FileReader
	engine  core.Engine
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool

	// holdAll serialises taking every slot at once, so warmup and close
	// cannot each end up with part of the pool.
	holdAll sync.Mutex
}

func newProdPool(size int, path string, files FileReader, engine core.Engine, logger *zap.Logger) *prodPool {
	p := &prodPool{
		workers: make(chan *prodWorker, size),
		size:    size,
		path:    path,
		files:   files,
		engine:  engine,
		logger:  logger,
	}
	for i := 0; i < size; i++ {
		p.workers <- &prodWorker{id: i}
	}
	return p
}

// get acquires a worker from the pool. Blocks until one is available.
func (p *prodPool) get() *prodWorker {
	return <-p.workers
}

// put returns a worker to the pool.
func (p *prodPool) put(w *prodWorker) {
	p.workers <- w
}

// getAll acquires every worker, waiting for in-flight renders to finish.
func (p *prodPool) getAll() []*prodWorker {
	p.holdAll.Lock()
	defer p.holdAll.Unlock()
	held := make([]*prodWorker, 0, p.size)
	for i := 0; i < p.size; i++ {
		held = append(held, p.get())
	}
	return held
}

func (p *prodPool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// renderToString renders payload on whichever worker is free. Bundle and
// engine failures are returned as-is; nothing falls back.
func (p *prodPool) renderToString(payload string) (string, error) {
	if p.isClosed() {
		return "", ErrClosed
	}
	w := p.get()
	defer p.put(w)

	if err := p.ensure(w); err != nil {
		return "", err
	}
	html, err := w.renderer.Render(payload)
	if err != nil {
		return "", &EngineError{Op: "render", Err: err}
	}
	return html, nil
}

// ensure initialises w on first use. A failure is remembered and returned
// on every later call; a production bundle that is missing or broken at
// startup is not retried.
func (p *prodPool) ensure(w *prodWorker) error {
	if w.ready {
		return w.err
	}
	w.ready = true

	start := time.Now()
	source, err := readBundle(p.files, p.path)
	if err != nil {
		w.err = &MissingBundleError{Path: p.path, Err: err}
		p.logger.Error("server bundle not found",
			zap.Int("worker", w.id), zap.String("path", p.path), zap.Error(err))
		return w.err
	}

	renderer, err := p.engine.Compile(source)
	if err != nil {
		w.err = &EngineError{Op: "compile", Err: err}
		p.logger.Error("compiling server bundle",
			zap.Int("worker", w.id), zap.String("path", p.path), zap.Error(err))
		return w.err
	}
	w.renderer = renderer

	p.logger.Info("server bundle compiled",
		zap.Int("worker", w.id),
		zap.String("path", p.path),
		zap.Int("bytes", len(source)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// warmup initialises every worker concurrently so a broken deployment fails
// at boot. It holds all slots while it runs.
func (p *prodPool) warmup() error {
	if p.isClosed() {
		return ErrClosed
	}
	held := p.getAll()
	defer func() {
		for _, w := range held {
			p.put(w)
		}
	}()

	var g errgroup.Group
	for _, w := range held {
		g.Go(func() error { return p.ensure(w) })
	}
	return g.Wait()
}

// close waits for in-flight renders, then frees every engine. Later renders
// return ErrClosed.
func (p *prodPool) close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	for _, w := range p.getAll() {
		if w.renderer != nil {
			w.renderer.Close()
			w.renderer = nil
		}
		w.ready = true
		w.err = ErrClosed
		p.put(w)
	}
}
