// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kanapdf/internal/combine"
	"github.com/pdiddy/kanapdf/pkg/types"
)

var resizeCmd = &cobra.Command{
	Use:   "resize [files or dirs...]",
	Short: "Normalize PDF pages to A4",
	Long: `Resize renders every page of each PDF, scales it to fit an A4 page, and
writes the result as <name>_A4.pdf. Copies larger than --limit-bytes are split
into numbered parts. Directory arguments expand to the PDFs inside them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResize,
}

func init() {
	d := types.DefaultPipelineConfig().Combine
	addResizeFlags(resizeCmd, d.Resize)
	resizeCmd.Flags().String("output-dir", "", "output directory (default: next to each input)")
	resizeCmd.Flags().Int64("limit-bytes", d.Split.LimitBytes, "maximum output file size; 0 disables splitting")

	rootCmd.AddCommand(resizeCmd)
}

func runResize(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"combine.resize.dpi":        "dpi",
		"combine.split.limit_bytes": "limit-bytes",
	})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Combine.Resize.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %v", cfg.Combine.Resize.DPI)
	}
	paths, err := pdfArgs(args)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("output-dir")

	// Photo alignment is a split option and stays off here.
	cfg.Combine.Split.Photo.Enabled = false
	log := newLogger(cmd)
	deps, closeDeps, err := newDeps(cfg, true, log)
	if err != nil {
		return err
	}
	defer closeDeps()

	result, err := combine.ResizeFiles(cmd.Context(), paths, outDir, cfg.Combine, deps, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed resizing", result.Failed)
	}
	return nil
}
