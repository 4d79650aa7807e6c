// Package cmd provides command-line interface for disc image processing.
// This file contains commands for building, extracting and inspecting
// GameCube disc images.
package cmd

import (
	"fmt"

	"github.com/hansbonini/gcmtools/pkg"
	"github.com/hansbonini/gcmtools/pkg/common"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// isoCmd represents the parent command for all disc image operations.
var isoCmd = &cobra.Command{
	Use:   "iso",
	Short: "Build, extract and inspect GameCube disc images",
	Long: `Build, extract and inspect GameCube disc images.

Commands:
  build     Create a disc image from an extracted tree
  export    Extract a disc image into a tree
  layout    Write a YAML report of the image layout

Examples:
  gcmtools iso build ./extracted game.iso
  gcmtools iso export game.iso ./extracted
  gcmtools iso layout game.iso layout.yaml`,
}

// isoBuildCmd creates a disc image from an extracted tree.
var isoBuildCmd = &cobra.Command{
	Use:   "build [input_directory] [output_file]",
	Short: "Create a disc image from an extracted tree",
	Long: `Create a disc image from an extracted tree.

Input layout:
  sys/bi2.bin, sys/apploader.img, sys/main.dol    Required system files
  sys/boot.bin, sys/fst.bin                       Optional
  cert.bin, h3.bin, ticket.bin, tmd.bin           Optional &&rootdata
  disc/header.bin, disc/region.bin                Optional &&discdata
  files/                                          Disc file tree

The header, apploader and DOL are written first, followed by the FST and
every file of files/ aligned to 32 bytes. The DOL offset, FST offset and
FST length are then patched into the header.

Example:
  gcmtools iso build ./extracted game.iso
  gcmtools iso build -v ./extracted game.iso`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir := args[0]
		outputFile := args[1]

		if err := applyVerbose(cmd); err != nil {
			return err
		}

		processor := pkg.NewISOProcessor(afero.NewOsFs(), layoutFromConfig(config))

		fmt.Printf("Input directory: %s\n", inputDir)
		fmt.Printf("Output image: %s\n", outputFile)

		info, err := processor.Build(inputDir, outputFile)
		if err != nil {
			return fmt.Errorf("failed to build disc image: %w", err)
		}

		fmt.Println("Disc image built successfully!")
		fmt.Printf("- DOL offset: 0x%X\n", info.DOLOffset)
		fmt.Printf("- FST offset: 0x%X (%d bytes, %d entries)\n", info.FSTOffset, info.FSTLength, info.EntryCount)
		fmt.Printf("- Image size: %d bytes\n", info.End)
		return nil
	},
}

// isoExportCmd extracts a disc image into a tree.
var isoExportCmd = &cobra.Command{
	Use:   "export [input_file] [output_directory]",
	Short: "Extract a disc image into a tree",
	Long: `Extract a disc image into a tree.

Output:
  - sys/bi2.bin, sys/apploader.img, sys/main.dol, sys/fst.bin
  - files/ with the disc file tree

The apploader and DOL are extracted as the raw spans between the header,
DOL and FST offsets, including their alignment padding.

Example:
  gcmtools iso export game.iso ./extracted`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		outputDir := args[1]

		if err := applyVerbose(cmd); err != nil {
			return err
		}

		processor := pkg.NewISOProcessor(afero.NewOsFs(), layoutFromConfig(config))

		fmt.Printf("Processing disc image: %s\n", inputFile)
		fmt.Printf("Output directory: %s\n", outputDir)

		if err := processor.Export(inputFile, outputDir); err != nil {
			return fmt.Errorf("failed to export disc image: %w", err)
		}

		fmt.Println("Disc image exported successfully!")
		return nil
	},
}

// isoLayoutCmd writes a YAML report of an image layout.
var isoLayoutCmd = &cobra.Command{
	Use:   "layout [input_file] [report_file]",
	Short: "Write a YAML report of the image layout",
	Long: `Write a YAML report of the image layout.

The report lists the header, apploader, DOL and FST regions and every
FST entry with its path, offset and size (files) or parent and next
index (directories). Each file payload carries its BLAKE3 digest.

Example:
  gcmtools iso layout game.iso layout.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]
		reportFile := args[1]

		if err := applyVerbose(cmd); err != nil {
			return err
		}

		processor := pkg.NewISOProcessor(afero.NewOsFs(), layoutFromConfig(config))

		report, err := processor.Layout(inputFile, reportFile)
		if err != nil {
			return fmt.Errorf("failed to report disc layout: %w", err)
		}

		fmt.Printf("Layout report written to: %s (%d entries)\n", reportFile, report.EntryCount)
		return nil
	},
}

// applyVerbose lets an explicit -v flag override the configured log level
func applyVerbose(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("verbose") {
		return nil
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("error getting verbose flag: %w", err)
	}
	common.SetVerboseMode(verbose)
	return nil
}

// init initializes the ISO command and its subcommands with appropriate flags.
func init() {
	rootCmd.AddCommand(isoCmd)

	isoCmd.AddCommand(isoBuildCmd)
	isoCmd.AddCommand(isoExportCmd)
	isoCmd.AddCommand(isoLayoutCmd)

	for _, c := range []*cobra.Command{isoBuildCmd, isoExportCmd, isoLayoutCmd} {
		c.Flags().BoolP("verbose", "v", false, "Enable verbose output (show debug messages)")
	}
}
