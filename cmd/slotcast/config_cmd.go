package main

import (
	"strings"

	"github.com/spf13/cobra"

	"slotcast/internal/config"
)

func newConfigCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writePlain(
				"api_url: %s\ndata_dir: %s\nstorage: %s\ndb_path: %s\npublic_url: %s\nallowed_origins: %s\nmax_upload_bytes: %d\nlog_level: %s\n",
				cfg.APIURL,
				cfg.DataDir,
				cfg.Storage,
				cfg.SQLitePath(),
				cfg.PublicURL,
				strings.Join(cfg.AllowedOrigins, ", "),
				cfg.MaxUploadBytes,
				cfg.LogLevel,
			)
		},
	})
	return cmd
}
