package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slotcast/internal/api"
	"slotcast/internal/config"
)

func newSceneCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Save, inspect and load scenes",
	}

	cmd.AddCommand(
		newSceneListCmd(cfg, jsonOutput),
		newSceneShowCmd(cfg, jsonOutput),
		newSceneCreateCmd(cfg, jsonOutput),
		newSceneUpdateCmd(cfg, jsonOutput),
		newSceneDeleteCmd(cfg),
		newSceneLoadCmd(cfg, jsonOutput),
		newSceneCaptureCmd(cfg, jsonOutput),
		newSceneExportCmd(cfg),
		newSceneImportCmd(cfg),
	)
	return cmd
}

func sceneIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scene id %q", arg)
	}
	return id, nil
}

func newSceneListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				scenes, err := client.ListScenes(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(scenes)
				}
				return writeSceneList(scenes)
			})
		},
	}
}

func newSceneShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show scene details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sceneIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				scene, err := client.GetScene(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(scene)
				}
				return writeSceneDetail(scene)
			})
		},
	}
}

func newSceneCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var description string
	var fromCurrent bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				req := api.SceneCreateRequest{Name: args[0], Description: description}

				if fromCurrent {
					slots, err := client.GetSlots(cmd.Context())
					if err != nil {
						return err
					}
					req.Slots = slots
				}

				scene, err := client.CreateScene(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(scene)
				}
				return writeSceneDetail(scene)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "scene description")
	cmd.Flags().BoolVar(&fromCurrent, "from-current", false, "seed the scene from the live slot state")
	return cmd
}

func newSceneUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var name string
	var description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or re-describe a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sceneIDArg(args[0])
			if err != nil {
				return err
			}

			var req api.SceneUpdateRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if req.Name == nil && req.Description == nil {
				return fmt.Errorf("nothing to update; pass --name or --description")
			}

			return withClient(cfg, func(client *api.Client) error {
				scene, err := client.UpdateScene(cmd.Context(), id, req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(scene)
				}
				return writeSceneDetail(scene)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new scene name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new scene description")
	return cmd
}

func newSceneDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sceneIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteScene(cmd.Context(), id); err != nil {
					return err
				}
				return writePlain("deleted scene %d\n", id)
			})
		},
	}
}

func newSceneLoadCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "load <id>",
		Short: "Apply a scene to all slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sceneIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				result, err := client.LoadScene(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(result)
				}
				return writePlain("loaded %q: %d slots updated\n", result.SceneName, result.SlotsUpdated)
			})
		},
	}
}

func newSceneCaptureCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "capture <id>",
		Short: "Overwrite a scene with the live slot state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := sceneIDArg(args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				result, err := client.CaptureScene(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(result)
				}
				return writePlain("captured %d slots into %q\n", result.SlotsCaptured, result.SceneName)
			})
		},
	}
}
