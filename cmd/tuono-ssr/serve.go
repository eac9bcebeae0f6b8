package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cryguy/ssr/internal/server"
	"github.com/spf13/cobra"
)

var (
	addr   string
	warmup bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve POST /render over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		defer d.Close()

		if warmup {
			if err := d.Warmup(); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(d, logger).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	serveCmd.Flags().BoolVar(&warmup, "warmup", true, "compile every prod worker before listening")
}
