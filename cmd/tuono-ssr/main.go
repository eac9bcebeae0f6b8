// Command tuono-ssr renders tuono pages from the command line or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/cryguy/ssr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	modeFlag   string
	configPath string
	rootDir    string
	workers    int
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tuono-ssr",
	Short: "Server-side render a tuono bundle",
	Long: `tuono-ssr runs the compiled tuono server bundle in an embedded JavaScript
engine and prints or serves the resulting HTML.

In prod mode out/server/prod-server.js is compiled once per worker.
In dev mode .tuono/server/dev-server.js is reloaded on every render and a
broken bundle falls back to .tuono/index.html.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "render mode: dev or prod (default from $"+ssr.ModeEnv+", else prod)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project directory (default: current directory)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "prod engine instances (default: GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(renderCmd, serveCmd)
}

// loadConfig merges defaults, the config file, the environment and flags,
// in increasing precedence.
func loadConfig() (ssr.Config, error) {
	cfg := ssr.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = ssr.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}

	if os.Getenv(ssr.ModeEnv) != "" || cfg.Mode == ssr.ModeUnset {
		m, err := ssr.ModeFromEnv()
		if err != nil {
			return cfg, fmt.Errorf("$%s: %w", ssr.ModeEnv, err)
		}
		cfg.Mode = m
	}
	if modeFlag != "" {
		m, err := ssr.ParseMode(modeFlag)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = m
	}
	if rootDir != "" {
		cfg.Root = rootDir
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	return cfg, nil
}

func newDispatcher() (*ssr.Dispatcher, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return ssr.New(cfg, ssr.WithLogger(logger)), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
