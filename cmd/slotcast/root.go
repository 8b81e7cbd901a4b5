package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"slotcast/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var jsonOutput bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "slotcast",
		Short: "Slotcast pushes images into named display slots and drives remote screens",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newSlotCmd(cfg, &jsonOutput),
		newSceneCmd(cfg, &jsonOutput),
		newImageCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newHealthCmd(cfg, &jsonOutput),
	)

	return cmd
}
