// Package server exposes a Dispatcher over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cryguy/ssr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// DefaultMaxPayloadBytes caps the request body of POST /render.
const DefaultMaxPayloadBytes = 8 << 20

// compressionLevel is passed to every response encoder.
const compressionLevel = 5

// PageRenderer is the part of ssr.Dispatcher the server needs.
type PageRenderer interface {
	RenderToString(payload string) (string, error)
	Mode() ssr.Mode
}

// Server is the HTTP front of the SSR dispatcher.
type Server struct {
	renderer   PageRenderer
	logger     *zap.Logger
	router     *chi.Mux
	maxPayload int64
}

// New creates a Server. A nil logger discards output.
func New(renderer PageRenderer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		renderer:   renderer,
		logger:     logger,
		router:     chi.NewRouter(),
		maxPayload: DefaultMaxPayloadBytes,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)
	s.router.Use(newCompressor().Handler)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/render", s.handleRender)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.Stringer("mode", s.renderer.Mode()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// handleRender renders the request body as payload.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxPayload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "reading payload", http.StatusBadRequest)
		return
	}

	html, err := s.renderer.RenderToString(string(body))
	if err != nil {
		status := http.StatusInternalServerError
		if ssr.IsFatal(err) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("render failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Int("status", status),
			zap.Error(err))
		http.Error(w, err.Error(), status)
		return
	}

	writeHTML(w, html)
}

// writeHTML writes html. Compression is left to the compressor middleware.
func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

// newCompressor compresses text/html with brotli, gzip or deflate, in that
// order of preference.
func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(compressionLevel, "text/html")
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c
}
