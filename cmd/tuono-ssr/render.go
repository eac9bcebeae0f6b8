package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var payloadFlag string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one page and print the HTML",
	Long: `Render one page and print the HTML to stdout.

The payload comes from --payload, or from stdin when --payload is "-".
Without either the bundle is rendered with no payload.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := payloadFlag
		if payload == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading payload: %w", err)
			}
			payload = string(data)
		}

		d, err := newDispatcher()
		if err != nil {
			return err
		}
		defer d.Close()

		html, err := d.RenderToString(payload)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), html)
		return err
	},
}

func init() {
	renderCmd.Flags().StringVarP(&payloadFlag, "payload", "p", "", `payload passed to the bundle ("-" reads stdin)`)
}
