package main

import (
	"github.com/spf13/cobra"

	"slotcast/internal/api"
	"slotcast/internal/config"
)

func newHealthCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Health(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("%s (up %.0fs)\n", resp.Status, resp.UptimeSeconds)
			})
		},
	}
}
