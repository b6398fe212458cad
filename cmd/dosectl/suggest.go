package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladimiradmaev/diabetes-companion/internal/config"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
)

type suggestOptions struct {
	glucose      string
	carbs        string
	carbRatio    string
	glucoseRatio string
	target       float64
}

func newSuggestCmd(root *rootOptions) *cobra.Command {
	opts := &suggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest an insulin dose for the current glucose and carbs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuggest(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.glucose, "glucose", "g", "", "current blood glucose, mg/dL (required)")
	cmd.Flags().StringVarP(&opts.carbs, "carbs", "c", "", "carbs to eat, grams")
	cmd.Flags().StringVar(&opts.carbRatio, "carb-ratio", "", "grams of carbs per 1 unit (overrides config)")
	cmd.Flags().StringVar(&opts.glucoseRatio, "glucose-ratio", "", "mg/dL per 1 unit (overrides config)")
	cmd.Flags().Float64Var(&opts.target, "target", dosing.DefaultTargetGlucose, "target glucose, mg/dL")
	_ = cmd.MarkFlagRequired("glucose")

	return cmd
}

func runSuggest(cmd *cobra.Command, root *rootOptions, opts *suggestOptions) error {
	fileCfg, err := config.LoadFile(root.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	glucose, err := dosing.ParseGlucose(opts.glucose)
	if err != nil {
		return err
	}
	carbs, err := dosing.ParseAmount(opts.carbs)
	if err != nil {
		return err
	}
	var grams float64
	if carbs != nil {
		grams = *carbs
	}

	settings := dosing.Resolve(
		rawRatio(cmd, "carb-ratio", opts.carbRatio, fileCfg.Dosing.CarbRatio),
		rawRatio(cmd, "glucose-ratio", opts.glucoseRatio, fileCfg.Dosing.GlucoseRatio),
	)
	s := dosing.SuggestForTarget(float64(glucose), grams, settings, opts.target)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "carb ratio:     %g g/U\n", settings.CarbRatio)
	fmt.Fprintf(out, "glucose ratio:  %g mg/dL/U\n", settings.GlucoseRatio)
	fmt.Fprintf(out, "carb units:     %.2f\n", s.CarbUnits)
	fmt.Fprintf(out, "correction:     %.2f\n", s.CorrectionUnits)
	fmt.Fprintf(out, "suggestion:     %s\n", s)
	return nil
}

// rawRatio prefers an explicitly set flag over the config file value
func rawRatio(cmd *cobra.Command, name, flagValue string, fileValue any) any {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return fileValue
}
