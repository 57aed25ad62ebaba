// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kanapdf/internal/combine"
	"github.com/pdiddy/kanapdf/pkg/types"
)

var splitCmd = &cobra.Command{
	Use:   "split [files or dirs...]",
	Short: "Split PDFs larger than the size limit",
	Long: `Split cuts each PDF larger than --limit-bytes into consecutive parts
named <name>-1.pdf, <name>-2.pdf, and so on, each no larger than the limit
unless a single page already exceeds it. Sizes are measured by writing each
candidate part, not estimated. Files under the limit are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSplit,
}

func init() {
	addSplitFlags(splitCmd, types.DefaultPipelineConfig().Combine.Split)
	splitCmd.Flags().String("output-dir", "", "output directory (default: next to each input)")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	bindSplitFlags(cmd)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := pdfArgs(args)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("output-dir")

	log := newLogger(cmd)
	deps, closeDeps, err := newDeps(cfg, false, log)
	if err != nil {
		return err
	}
	defer closeDeps()

	result, err := combine.SplitFiles(cmd.Context(), paths, outDir, cfg.Combine, deps, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed splitting", result.Failed)
	}
	return nil
}
