package main

import (
	"fmt"
	"os"

	"github.com/lumina-devices/luminad/pkg/api"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var routinesApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Replace the routine set from a YAML file",
	Long: `Replace the device's routine set from a YAML file.

The file replaces the whole set, just like a sync from the companion
app. Example:

  routines:
    - id: 1
      name: sunrise
      hour: 6
      minute: 45
      days: "1111100"
      enabled: true
      power: true
      presetName: dawn
      sliders: [255, 128, 0, 0, 0, 64]
    - id: 2
      name: lights out
      hour: 22
      minute: 0
      days: "1111111"
      enabled: true
      power: false`,
	RunE: runRoutinesApply,
}

func init() {
	routinesApplyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = routinesApplyCmd.MarkFlagRequired("file")

	routinesCmd.AddCommand(routinesApplyCmd)
}

// RoutineFile is the YAML shape accepted by routines apply
type RoutineFile struct {
	Routines []RoutineSpec `yaml:"routines"`
}

type RoutineSpec struct {
	ID         int    `yaml:"id"`
	Name       string `yaml:"name"`
	Hour       int    `yaml:"hour"`
	Minute     int    `yaml:"minute"`
	Days       string `yaml:"days"`
	Enabled    bool   `yaml:"enabled"`
	Power      bool   `yaml:"power"`
	PresetName string `yaml:"presetName"`
	Sliders    []int  `yaml:"sliders"`
	CreatedAt  int64  `yaml:"createdAt"`
}

func runRoutinesApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}

	var file RoutineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML: %v", err)
	}
	if len(file.Routines) == 0 {
		return fmt.Errorf("no routines in %s", filename)
	}

	routines := make([]api.SyncRoutine, len(file.Routines))
	for i, spec := range file.Routines {
		routines[i] = api.SyncRoutine{
			ID:           spec.ID,
			Name:         spec.Name,
			Hour:         spec.Hour,
			Minute:       spec.Minute,
			DaysOfWeek:   spec.Days,
			IsEnabled:    spec.Enabled,
			DevicePower:  spec.Power,
			PresetName:   spec.PresetName,
			SliderPreset: spec.Sliders,
			CreatedAt:    spec.CreatedAt,
		}
	}

	fmt.Printf("Applying %d routines from %s\n", len(routines), filename)
	accepted, err := deviceClient(cmd).SyncRoutines(routines)
	if err != nil {
		return fmt.Errorf("failed to apply routines: %v", err)
	}

	if accepted < len(routines) {
		fmt.Printf("⚠ Device accepted %d of %d routines (check device logs for rejections)\n",
			accepted, len(routines))
	} else {
		fmt.Printf("✓ Routine set replaced: %d stored\n", accepted)
	}
	return nil
}
