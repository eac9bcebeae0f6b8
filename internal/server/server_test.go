package server

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/cryguy/ssr"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubRenderer struct {
	mu       sync.Mutex
	payloads []string
	html     string
	err      error
}

func (s *stubRenderer) RenderToString(payload string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return "", s.err
	}
	return strings.ReplaceAll(s.html, "{payload}", payload), nil
}

func (s *stubRenderer) Mode() ssr.Mode { return ssr.ModeProd }

func TestHealthz(t *testing.T) {
	srv := New(&stubRenderer{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRender(t *testing.T) {
	stub := &stubRenderer{html: "<main>{payload}</main>"}
	srv := New(stub, nil)

	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"route":"/"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<main>{"route":"/"}</main>`, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, []string{`{"route":"/"}`}, stub.payloads)
}

func TestRender_EmptyBodyMeansNoPayload(t *testing.T) {
	stub := &stubRenderer{html: "<main>{payload}</main>"}
	srv := New(stub, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<main></main>", rec.Body.String())
}

func TestRender_Brotli(t *testing.T) {
	html := strings.Repeat("<p>compress me</p>", 100)
	srv := New(&stubRenderer{html: html}, nil)

	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(""))
	req.Header.Set("Accept-Encoding", "gzip, br;q=0.9")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "br", rec.Header().Get("Content-Encoding"))
	assert.Less(t, rec.Body.Len(), len(html))

	decoded, err := io.ReadAll(brotli.NewReader(rec.Body))
	require.NoError(t, err)
	assert.Equal(t, html, string(decoded))
}

func TestRender_EncodingNegotiation(t *testing.T) {
	html := strings.Repeat("<p>compress me</p>", 100)
	srv := New(&stubRenderer{html: html}, nil)

	tests := []struct {
		acceptEncoding string
		want           string
		decode         func(io.Reader) (io.Reader, error)
	}{
		{"", "", nil},
		{"identity", "", nil},
		{"br", "br", func(r io.Reader) (io.Reader, error) { return brotli.NewReader(r), nil }},
		{"gzip", "gzip", func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }},
		{"deflate, gzip", "gzip", func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }},
		{"gzip, deflate, br", "br", func(r io.Reader) (io.Reader, error) { return brotli.NewReader(r), nil }},
	}
	for _, tt := range tests {
		t.Run(tt.acceptEncoding, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/render", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Content-Encoding"))
			if tt.decode == nil {
				assert.Equal(t, html, rec.Body.String())
				return
			}
			r, err := tt.decode(rec.Body)
			require.NoError(t, err)
			decoded, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, html, string(decoded))
		})
	}
}

func TestRender_ErrorsAreNotCompressed(t *testing.T) {
	srv := New(&stubRenderer{err: errors.New("boom")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("x"))
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Body.String(), "boom")
}

func TestRender_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing bundle", &ssr.MissingBundleError{Path: "out/server/prod-server.js", Err: errors.New("no such file")}, http.StatusServiceUnavailable},
		{"compile failure", &ssr.EngineError{Op: "compile", Err: errors.New("SyntaxError")}, http.StatusServiceUnavailable},
		{"render failure", &ssr.EngineError{Op: "render", Err: errors.New("TypeError")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			srv := New(&stubRenderer{err: tt.err}, zap.New(core))

			req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("x"))
			req.Header.Set(middleware.RequestIDHeader, "req-123")
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
		})
	}
}

func TestRender_PayloadTooLarge(t *testing.T) {
	stub := &stubRenderer{html: "x"}
	srv := New(stub, nil)
	srv.maxPayload = 16

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(strings.Repeat("a", 64))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, stub.payloads)
}

func TestRender_MethodNotAllowed(t *testing.T) {
	srv := New(&stubRenderer{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	srv := New(&stubRenderer{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "caller-id")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", rec.Header().Get(middleware.RequestIDHeader))

	first := httptest.NewRecorder()
	second := httptest.NewRecorder()
	srv.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	srv.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEqual(t, first.Header().Get(middleware.RequestIDHeader), second.Header().Get(middleware.RequestIDHeader))
}

func TestListenAndServe_Shutdown(t *testing.T) {
	srv := New(&stubRenderer{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
