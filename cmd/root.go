// Package cmd provides command-line interface functionality for gcmtools.
// gcmtools builds GameCube disc images from extracted directory trees and
// extracts them back.
package cmd

import (
	"os"

	"github.com/hansbonini/gcmtools/pkg/common"
	"github.com/hansbonini/gcmtools/pkg/gcm"
	"github.com/spf13/cobra"
)

// loaded configuration, filled in by PersistentPreRunE
var config common.Config

// rootCmd represents the base command when called without any subcommands.
// It provides the main entry point for the gcmtools application.
var rootCmd = &cobra.Command{
	Use:   "gcmtools",
	Short: "Tools for building and extracting GameCube disc images",
	Long: `gcmtools - Utilities for GameCube disc images (GCM).

Currently supports:
  - Building a disc image from an extracted tree (sys/, disc/, files/)
  - Extracting a disc image into an extracted tree
  - Reporting the region and FST layout of a disc image as YAML

Examples:
  gcmtools iso build ./extracted game.iso
  gcmtools iso export game.iso ./extracted
  gcmtools iso layout -v game.iso layout.yaml

Layout defaults can be overridden in $XDG_CONFIG_HOME/gcmtools/config.toml.

Use 'gcmtools [command] --help' for more information about a command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		config, err = common.LoadConfig(path)
		if err != nil {
			return err
		}
		if config.Log.Verbose != nil {
			common.SetVerboseMode(*config.Log.Verbose)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// layoutFromConfig applies configured overrides to the retail layout
func layoutFromConfig(cfg common.Config) gcm.Layout {
	layout := gcm.DefaultLayout()
	if v := cfg.Layout.DOLAlignment; v != nil {
		layout.DOLAlignment = *v
	}
	if v := cfg.Layout.FSTAlignment; v != nil {
		layout.FSTAlignment = *v
	}
	if v := cfg.Layout.HeaderSize; v != nil {
		layout.HeaderSize = *v
	}
	if v := cfg.Layout.HeaderPatchOffset; v != nil {
		layout.HeaderPatchOffset = *v
	}
	return layout
}

// init initializes the root command with flags and configuration settings.
func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/gcmtools/config.toml)")
}
