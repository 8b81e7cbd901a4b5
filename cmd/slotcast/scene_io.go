package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"slotcast/internal/api"
	"slotcast/internal/config"
	"slotcast/internal/models"
)

// sceneDocument is the YAML shape used by scene export/import. Ids are
// intentionally omitted: imported scenes get fresh ids on the server.
type sceneDocument struct {
	Scenes []sceneYAML `yaml:"scenes"`
}

type sceneYAML struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Slots       map[string]slotYAML `yaml:"slots,omitempty"`
}

type slotYAML struct {
	ImageID  *string `yaml:"imageId,omitempty"`
	ImageURL *string `yaml:"imageUrl,omitempty"`
}

func newSceneExportCmd(cfg *config.Config) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all scenes as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				scenes, err := client.ListScenes(cmd.Context())
				if err != nil {
					return err
				}

				doc := sceneDocument{Scenes: make([]sceneYAML, 0, len(scenes))}
				for _, scene := range scenes {
					doc.Scenes = append(doc.Scenes, sceneToYAML(scene))
				}

				var w io.Writer = os.Stdout
				if outputPath != "" {
					f, err := os.Create(outputPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}

				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(doc); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newSceneImportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import scenes from a YAML export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var doc sceneDocument
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if len(doc.Scenes) == 0 {
				return fmt.Errorf("no scenes found in %s", args[0])
			}

			return withClient(cfg, func(client *api.Client) error {
				for _, entry := range doc.Scenes {
					scene, err := client.CreateScene(cmd.Context(), api.SceneCreateRequest{
						Name:        entry.Name,
						Description: entry.Description,
						Slots:       slotsFromYAML(entry.Slots),
					})
					if err != nil {
						return fmt.Errorf("import scene %q: %w", entry.Name, err)
					}
					if err := writePlain("imported %q as scene %d\n", scene.Name, scene.ID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	return cmd
}

func sceneToYAML(scene models.Scene) sceneYAML {
	out := sceneYAML{Name: scene.Name, Description: scene.Description}
	if len(scene.Slots) > 0 {
		out.Slots = make(map[string]slotYAML, len(scene.Slots))
		for id, slot := range scene.Slots {
			out.Slots[id] = slotYAML{ImageID: slot.ImageID, ImageURL: slot.ImageURL}
		}
	}
	return out
}

func slotsFromYAML(slots map[string]slotYAML) map[string]models.Slot {
	if len(slots) == 0 {
		return nil
	}
	out := make(map[string]models.Slot, len(slots))
	for id, slot := range slots {
		out[id] = models.Slot{ImageID: slot.ImageID, ImageURL: slot.ImageURL}
	}
	return out
}
