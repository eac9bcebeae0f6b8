package ssr

import (
	"strings"

	"github.com/cryguy/ssr/internal/core"
	"go.uber.org/zap"
)

// devRenderer recompiles the development bundle on every call. The bundle
// is rewritten by the dev watcher and may be half-written or broken at any
// moment, so every failure degrades to the fallback page instead of an error.
type devRenderer struct {
	bundlePath   string
	fallbackPath string
	files        FileReader
	engine       core.Engine
	logger       *zap.Logger
}

// renderToString never fails. Read, compile and render errors all end in
// the same fallback page.
func (d *devRenderer) renderToString(payload string) string {
	source, err := readBundle(d.files, d.bundlePath)
	if err != nil {
		d.logger.Warn("dev bundle unavailable, serving fallback page",
			zap.String("path", d.bundlePath), zap.Error(err))
		return d.fallback(payload)
	}

	renderer, err := d.engine.Compile(source)
	if err != nil {
		d.logger.Warn("dev bundle failed to compile, serving fallback page",
			zap.String("path", d.bundlePath), zap.Error(err))
		return d.fallback(payload)
	}
	defer renderer.Close()

	html, err := renderer.Render(payload)
	if err != nil {
		d.logger.Warn("dev bundle failed to render, serving fallback page",
			zap.String("path", d.bundlePath), zap.Error(err))
		return d.fallback(payload)
	}
	return html
}

// fallback splices payload into the static page, or into FallbackNotLoaded
// when the page is missing too.
func (d *devRenderer) fallback(payload string) string {
	page, ok := loadBundle(d.files, d.fallbackPath)
	if !ok {
		d.logger.Debug("fallback page unavailable", zap.String("path", d.fallbackPath))
		page = FallbackNotLoaded
	}
	return fillPayload(page, payload)
}

// fillPayload replaces every PayloadPlaceholder in page. Only the literal
// token is touched.
func fillPayload(page, payload string) string {
	return strings.ReplaceAll(page, PayloadPlaceholder, payload)
}
