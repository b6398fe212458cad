package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/vladimiradmaev/diabetes-companion/internal/config"
	"github.com/vladimiradmaev/diabetes-companion/internal/domain"
	"github.com/vladimiradmaev/diabetes-companion/internal/dosing"
	"github.com/vladimiradmaev/diabetes-companion/internal/utils"
)

type trendOptions struct {
	file     string
	day      string
	timezone string
}

// fileEntry is one element of the entries JSON array
type fileEntry struct {
	ID           string   `json:"id"`
	Timestamp    int64    `json:"timestamp"`
	BloodGlucose int      `json:"bloodGlucose"`
	InsulinUnits *float64 `json:"insulinUnits,omitempty"`
	CarbsGrams   *float64 `json:"carbsGrams,omitempty"`
}

func newTrendCmd(root *rootOptions) *cobra.Command {
	opts := &trendOptions{}

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Summarize one day of readings from a JSON entries file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrend(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON array of log entries (required)")
	cmd.Flags().StringVar(&opts.day, "day", "", "calendar day as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&opts.timezone, "tz", "", "IANA time zone (overrides config, default UTC)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runTrend(cmd *cobra.Command, root *rootOptions, opts *trendOptions) error {
	fileCfg, err := config.LoadFile(root.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tzName := "UTC"
	if fileCfg.Dosing.Timezone != nil && *fileCfg.Dosing.Timezone != "" {
		tzName = *fileCfg.Dosing.Timezone
	}
	if cmd.Flags().Changed("tz") {
		tzName = opts.timezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return fmt.Errorf("invalid time zone %q: %w", tzName, err)
	}

	day := civil.DateOf(time.Now().In(loc))
	if opts.day != "" {
		day, err = civil.ParseDate(opts.day)
		if err != nil {
			return fmt.Errorf("invalid day %q: %w", opts.day, err)
		}
	}

	entries, err := readEntries(opts.file)
	if err != nil {
		return err
	}

	trend := dosing.Aggregate(entries, day, loc)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "day:      %s (%s)\n", trend.Day, loc)
	if !trend.HasData() {
		fmt.Fprintln(out, "no readings")
		return nil
	}
	fmt.Fprintf(out, "readings: %d\n", trend.Count)
	fmt.Fprintf(out, "average:  %d mg/dL\n", trend.Average)
	fmt.Fprintf(out, "min/max:  %d / %d mg/dL\n", trend.Min, trend.Max)
	fmt.Fprintf(out, "carbs:    %g g\n", trend.TotalCarbs)
	fmt.Fprintf(out, "insulin:  %g U\n", trend.TotalInsulin)
	fmt.Fprintf(out, "trend:    %s\n", utils.Sparkline(trend.Normalized()))
	return nil
}

func readEntries(path string) ([]domain.LogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	var raw []fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	entries := make([]domain.LogEntry, len(raw))
	for i, e := range raw {
		entries[i] = domain.LogEntry{
			ID:           e.ID,
			Timestamp:    e.Timestamp,
			BloodGlucose: e.BloodGlucose,
			InsulinUnits: e.InsulinUnits,
			CarbsGrams:   e.CarbsGrams,
		}
	}
	return entries, nil
}
