// Package main provides dosectl, an offline front end to the dosing engine.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vladimiradmaev/diabetes-companion/internal/config"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "dosectl",
		Short:         "Dose suggestions and daily glucose summaries from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "path to config.toml")

	rootCmd.AddCommand(newSuggestCmd(opts))
	rootCmd.AddCommand(newTrendCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}
