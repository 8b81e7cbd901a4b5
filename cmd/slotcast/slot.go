package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slotcast/internal/api"
	"slotcast/internal/config"
)

func newSlotCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Inspect and update display slots",
	}

	cmd.AddCommand(
		newSlotListCmd(cfg, jsonOutput),
		newSlotShowCmd(cfg, jsonOutput),
		newSlotSetCmd(cfg, jsonOutput),
		newSlotClearCmd(cfg, jsonOutput),
	)
	return cmd
}

func newSlotListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all slots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				slots, err := client.GetSlots(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(slots)
				}
				return writeSlotTable(slots)
			})
		},
	}
}

func newSlotShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slot>",
		Short: "Show one slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetSlot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeSlotDetail(resp)
			})
		},
	}
}

func newSlotSetCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var imageURL string
	var imageID string

	cmd := &cobra.Command{
		Use:   "set <slot>",
		Short: "Point a slot at an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if imageURL == "" && imageID == "" {
				return fmt.Errorf("one of --url or --image is required")
			}

			var req api.SlotUpdateRequest
			if imageURL != "" {
				req.ImageURL = &imageURL
			}
			if imageID != "" {
				req.ImageID = &imageID
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.SetSlot(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeSlotDetail(resp)
			})
		},
	}

	cmd.Flags().StringVar(&imageURL, "url", "", "image URL to display")
	cmd.Flags().StringVar(&imageID, "image", "", "library image id to display")
	return cmd
}

func newSlotClearCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <slot>",
		Short: "Clear a slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.ClearSlot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("cleared %s\n", resp.Slot)
			})
		},
	}
}
