// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docbatch CLI, the command-line
// front end of the document batch core. It assembles a session from the
// files given on the command line and drives the merge, export, and
// inspect operations against it.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docbatch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docbatch CLI.
var rootCmd = &cobra.Command{
	Use:   "docbatch",
	Short: "Batch, merge, and export PDF, TIFF, and JPG documents",
	Long: `docbatch assembles an ordered batch of PDF, TIFF, and JPG files and
either merges them into a single PDF or exports every page and frame as
JPG images. The batch lives only for the duration of one invocation.

Files are processed in the order given. Unsupported or unreadable files
are reported and skipped; the remaining files still go through.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docbatch.yaml or ~/.config/docbatch/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docbatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docbatch"))
		}
	}

	viper.SetEnvPrefix("DOCBATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig merges the defaults with any config file or environment
// overrides.
func loadConfig() types.Config {
	cfg := types.DefaultConfig()
	if viper.IsSet("merge.include_images") {
		cfg.Merge.IncludeImages = viper.GetBool("merge.include_images")
	}
	if viper.IsSet("export.quality") {
		cfg.Export.Quality = viper.GetInt("export.quality")
	}
	if viper.IsSet("export.dpi") {
		cfg.Export.DPI = viper.GetFloat64("export.dpi")
	}
	return cfg
}

// writeReport marshals an operation result to YAML at path.
func writeReport(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Report written to", path)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
