package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"slotcast/internal/api"
	"slotcast/internal/models"
)

func writeJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeSlotTable(slots map[string]models.Slot) error {
	ids := make([]string, 0, len(slots))
	for id := range slots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := writePlain("%s\n", formatSlotLine(id, slots[id])); err != nil {
			return err
		}
	}
	return nil
}

func formatSlotLine(id string, slot models.Slot) string {
	switch {
	case slot.ImageURL != nil:
		return fmt.Sprintf("%s -> %s (%s)", id, *slot.ImageURL, formatOptTime(slot.UpdatedAt))
	case slot.ImageID != nil:
		return fmt.Sprintf("%s -> image %s (%s)", id, *slot.ImageID, formatOptTime(slot.UpdatedAt))
	default:
		return fmt.Sprintf("%s -> (empty)", id)
	}
}

func writeSlotDetail(resp api.SlotResponse) error {
	lines := []string{fmt.Sprintf("slot: %s", resp.Slot)}
	if resp.ImageID != nil {
		lines = append(lines, fmt.Sprintf("image_id: %s", *resp.ImageID))
	}
	if resp.ImageURL != nil {
		lines = append(lines, fmt.Sprintf("image_url: %s", *resp.ImageURL))
	}
	if resp.UpdatedAt != nil {
		lines = append(lines, fmt.Sprintf("updated_at: %s", formatTime(*resp.UpdatedAt)))
	} else {
		lines = append(lines, "updated_at: (never)")
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeSceneList(scenes []models.Scene) error {
	for _, scene := range scenes {
		if err := writePlain("%d  %-24s %d slots  %s\n",
			scene.ID, scene.Name, len(scene.Slots), formatTime(scene.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func writeSceneDetail(scene models.Scene) error {
	lines := []string{
		fmt.Sprintf("id: %d", scene.ID),
		fmt.Sprintf("name: %s", scene.Name),
	}
	if scene.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", scene.Description))
	}
	lines = append(lines,
		fmt.Sprintf("created_at: %s", formatTime(scene.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(scene.UpdatedAt)),
	)

	if len(scene.Slots) > 0 {
		lines = append(lines, "slots:")
		ids := make([]string, 0, len(scene.Slots))
		for id := range scene.Slots {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			lines = append(lines, "  "+formatSlotLine(id, scene.Slots[id]))
		}
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeImageList(images []models.Image) error {
	for _, image := range images {
		if err := writePlain("%d  [%s]  %-24s %s\n",
			image.ID, image.Type, image.OriginalName, image.URL); err != nil {
			return err
		}
	}
	return nil
}

func formatOptTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return formatTime(*t)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
