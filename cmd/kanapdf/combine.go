// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/kanapdf/internal/combine"
	"github.com/pdiddy/kanapdf/internal/photo/dnn"
	"github.com/pdiddy/kanapdf/internal/render/fitz"
	"github.com/pdiddy/kanapdf/pkg/types"
)

var combineCmd = &cobra.Command{
	Use:   "combine [input-dir]",
	Short: "Merge PDFs into one file per kana row",
	Long: `Combine scans every subfolder of the input directory, classifies each PDF
by the kana row of its file name, and merges each row into
<prefix>_<row>.pdf in the output directory. Files whose names match no row
are left alone. A status log lists every file with its final state.

With --resize each merged file also gets an A4 copy. Output larger than
--limit-bytes is split into numbered parts; --photo moves split points so a
part starts on a page with a face photo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCombine,
}

func init() {
	d := types.DefaultPipelineConfig().Combine
	f := combineCmd.Flags()
	f.String("input-dir", d.InputDir, "directory of source folders")
	f.String("output-dir", d.OutputDir, "output directory (default ./YYYYMMDD_output)")
	f.String("prefix", d.Prefix, "output file name prefix (default: input directory name)")
	f.String("log-format", string(d.LogFormat), "status log format: xlsx, csv, or txt")
	f.Bool("fold-voiced", d.Classify.FoldVoiced, "classify voiced kana under their plain row")
	f.Bool("fold-hiragana", d.Classify.FoldHiragana, "classify hiragana like katakana")
	addResizeFlags(combineCmd, d.Resize)
	f.Bool("resize", d.Resize.Enabled, "also write an A4 copy of each merged file")
	addSplitFlags(combineCmd, d.Split)

	rootCmd.AddCommand(combineCmd)
}

func addResizeFlags(cmd *cobra.Command, d types.ResizeConfig) {
	cmd.Flags().Float64("dpi", d.DPI, "rasterization density for A4 conversion")
}

func addSplitFlags(cmd *cobra.Command, d types.SplitConfig) {
	f := cmd.Flags()
	f.Int64("limit-bytes", d.LimitBytes, "maximum output file size; 0 disables splitting")
	f.Bool("photo", d.Photo.Enabled, "align split points to pages with face photos")
	f.String("prototxt", d.Photo.Prototxt, "face detector network description")
	f.String("model", d.Photo.Model, "face detector weights")
	f.Float64("confidence", d.Photo.Confidence, "minimum face detection confidence")
	f.Float64("photo-dpi", d.Photo.DPI, "rasterization density for face detection")
}

func bindSplitFlags(cmd *cobra.Command) {
	bindFlags(cmd, map[string]string{
		"combine.split.limit_bytes":      "limit-bytes",
		"combine.split.photo.enabled":    "photo",
		"combine.split.photo.prototxt":   "prototxt",
		"combine.split.photo.model":      "model",
		"combine.split.photo.confidence": "confidence",
		"combine.split.photo.dpi":        "photo-dpi",
	})
}

func runCombine(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"combine.input_dir":              "input-dir",
		"combine.output_dir":             "output-dir",
		"combine.prefix":                 "prefix",
		"combine.log_format":             "log-format",
		"combine.classify.fold_voiced":   "fold-voiced",
		"combine.classify.fold_hiragana": "fold-hiragana",
		"combine.resize.enabled":         "resize",
		"combine.resize.dpi":             "dpi",
	})
	bindSplitFlags(cmd)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Combine.InputDir = args[0]
	}

	log := newLogger(cmd)
	deps, closeDeps, err := newDeps(cfg, cfg.Combine.Resize.Enabled, log)
	if err != nil {
		return err
	}
	defer closeDeps()

	result, err := combine.Run(cmd.Context(), cfg.Combine, deps, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) and %d row(s) failed", result.Failed, result.FailedBuckets)
	}
	return nil
}

// newDeps builds the backends a run needs. The renderer is created when
// resizing or photo alignment is on, the face detector only for photo
// alignment. The returned func releases them.
func newDeps(cfg types.PipelineConfig, resize bool, log zerolog.Logger) (combine.Deps, func(), error) {
	deps := combine.Deps{Log: log, Ledger: openLedger(cfg.Ledger, log)}
	closers := []func(){}
	if deps.Ledger != nil {
		closers = append(closers, func() { deps.Ledger.Close() })
	}
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	photoCfg := cfg.Combine.Split.Photo
	if resize || photoCfg.Enabled {
		deps.Renderer = fitz.New()
	}
	if photoCfg.Enabled {
		det, err := dnn.New(photoCfg.Prototxt, photoCfg.Model, photoCfg.Confidence)
		if err != nil {
			release()
			return deps, nil, err
		}
		deps.Detector = det
		closers = append(closers, func() { det.Close() })
	}
	return deps, release, nil
}
