package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slotcast/internal/api"
	"slotcast/internal/config"
)

func newImageCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage the image library",
	}

	cmd.AddCommand(
		newImageListCmd(cfg, jsonOutput),
		newImageUploadCmd(cfg, jsonOutput),
		newImageAddURLCmd(cfg, jsonOutput),
		newImageDeleteCmd(cfg),
	)
	return cmd
}

func imageIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid image id %q", arg)
	}
	return id, nil
}

func newImageListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List library images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				images, err := client.ListImages(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(images)
				}
				return writeImageList(images)
			})
		},
	}
}

func newImageUploadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withClient(cfg, func(client *api.Client) error {
				image, err := client.UploadImage(cmd.Context(), filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(image)
				}
				return writePlain("uploaded %s as image %d: %s\n", image.OriginalName, image.ID, image.URL)
			})
		},
	}
}

func newImageAddURLCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add-url <url>",
		Short: "Register an externally hosted image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				image, err := client.AddImageURL(cmd.Context(), api.ImageURLRequest{
					URL:  args[0],
					Name: name,
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(image)
				}
				return writePlain("added image %d: %s\n", image.ID, image.URL)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for the image")
	return cmd
}

func newImageDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a library image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := imageIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteImage(cmd.Context(), id); err != nil {
					return err
				}
				return writePlain("deleted image %d\n", id)
			})
		},
	}
}
