package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vladimiradmaev/diabetes-companion/internal/config"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
)

const defaultConfigTemplate = `# dosectl configuration

[dosing]
# grams of carbs covered by 1 unit
carb_ratio = 10
# mg/dL lowered by 1 unit
glucose_ratio = 50
# IANA zone used to split days
timezone = "UTC"
`

func newConfigCmd(root *rootOptions) *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective dosing settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if initFile {
				if err := writeDefaultConfig(root.configPath); err != nil {
					return err
				}
			}
			return runConfig(cmd, root)
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "create the config file if it does not exist")

	return cmd
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func runConfig(cmd *cobra.Command, root *rootOptions) error {
	fileCfg, err := config.LoadFile(root.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := dosing.Resolve(fileCfg.Dosing.CarbRatio, fileCfg.Dosing.GlucoseRatio)

	tz := "UTC"
	if fileCfg.Dosing.Timezone != nil && *fileCfg.Dosing.Timezone != "" {
		tz = *fileCfg.Dosing.Timezone
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config:         %s\n", root.configPath)
	fmt.Fprintf(out, "carb ratio:     %g g/U\n", settings.CarbRatio)
	fmt.Fprintf(out, "glucose ratio:  %g mg/dL/U\n", settings.GlucoseRatio)
	fmt.Fprintf(out, "timezone:       %s\n", tz)
	return nil
}
