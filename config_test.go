package ssr

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: dev
root: /srv/site
workers: 3
entry_point: SSR
render_timeout: 250ms
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ModeDev, cfg.Mode)
	assert.Equal(t, "/srv/site", cfg.Root)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "SSR", cfg.EntryPoint)
	assert.Equal(t, 250*time.Millisecond, cfg.RenderTimeout)
	assert.Equal(t, ProdBundlePath, cfg.ProdBundle, "unset keys keep their defaults")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [dev\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Mode: ModeProd, Root: "/app", ProdBundle: "/abs/bundle.js"}.withDefaults()

	assert.Positive(t, cfg.Workers)
	assert.Equal(t, "/abs/bundle.js", cfg.ProdBundle, "absolute paths are kept")
	assert.Equal(t, filepath.Join("/app", ".tuono", "server", "dev-server.js"), cfg.DevBundle)
	assert.Equal(t, filepath.Join("/app", ".tuono", "index.html"), cfg.FallbackPage)
	assert.Equal(t, DefaultConfig().RenderTimeout, cfg.RenderTimeout)
}
