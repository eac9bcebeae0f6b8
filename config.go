package ssr

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cryguy/ssr/internal/core"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config holds dispatcher settings. Zero values fall back to the defaults
// from DefaultConfig, except Mode which must be set explicitly.
type Config struct {
	Mode          Mode          `yaml:"mode"`            // dev or prod, fixed for the dispatcher's lifetime
	Root          string        `yaml:"root"`            // project directory the paths are relative to; empty for cwd
	Workers       int           `yaml:"workers"`         // prod engine instances, one per concurrent render
	ProdBundle    string        `yaml:"prod_bundle"`     // production server bundle, read once per worker
	DevBundle     string        `yaml:"dev_bundle"`      // development server bundle, read on every call
	FallbackPage  string        `yaml:"fallback_page"`   // static page served when dev rendering fails
	EntryPoint    string        `yaml:"entry_point"`     // global holding the render entry; empty uses the bundle's completion value
	MemoryLimitMB int           `yaml:"memory_limit_mb"` // per-engine heap limit, 0 for none
	RenderTimeout time.Duration `yaml:"render_timeout"`  // bound for async render results
}

// DefaultConfig returns the tuono layout with one worker per CPU. Mode is
// left unset.
func DefaultConfig() Config {
	return Config{
		Workers:       runtime.GOMAXPROCS(0),
		ProdBundle:    ProdBundlePath,
		DevBundle:     DevBundlePath,
		FallbackPage:  FallbackPagePath,
		RenderTimeout: core.DefaultRenderTimeout,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// withDefaults fills zero fields and resolves paths against Root.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.ProdBundle == "" {
		c.ProdBundle = def.ProdBundle
	}
	if c.DevBundle == "" {
		c.DevBundle = def.DevBundle
	}
	if c.FallbackPage == "" {
		c.FallbackPage = def.FallbackPage
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = def.RenderTimeout
	}
	if c.Root != "" {
		c.ProdBundle = c.resolve(c.ProdBundle)
		c.DevBundle = c.resolve(c.DevBundle)
		c.FallbackPage = c.resolve(c.FallbackPage)
	}
	return c
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

func (c Config) engineConfig(logger *zap.Logger) core.EngineConfig {
	return core.EngineConfig{
		EntryPoint:    c.EntryPoint,
		MemoryLimitMB: c.MemoryLimitMB,
		RenderTimeout: c.RenderTimeout,
		Logger:        logger,
	}
}
