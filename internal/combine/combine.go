// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package combine runs the batch pipeline: scan the input tree, merge each
// kana row into one PDF, optionally normalize it to A4, split anything over
// the size limit, and write a status log of every input file.
package combine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/kanapdf/internal/kana"
	"github.com/pdiddy/kanapdf/internal/ledger"
	"github.com/pdiddy/kanapdf/internal/pdfdoc"
	"github.com/pdiddy/kanapdf/internal/photo"
	"github.com/pdiddy/kanapdf/internal/render"
	"github.com/pdiddy/kanapdf/internal/report"
	"github.com/pdiddy/kanapdf/internal/resize"
	"github.com/pdiddy/kanapdf/internal/scan"
	"github.com/pdiddy/kanapdf/internal/split"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// Deps carries the backends a run may need. Renderer is required when resize
// or photo alignment is enabled, Detector when photo alignment is. Ledger is
// optional.
type Deps struct {
	Renderer render.Renderer
	Detector photo.FaceDetector
	Ledger   *ledger.Store
	Log      zerolog.Logger

	// Now returns the run time; nil means time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// BatchResult holds the outcome of a combine run.
type BatchResult struct {
	// Merged counts input files that made it into a merged PDF.
	Merged int
	// Failed counts input files that could not be merged.
	Failed int
	// Skipped counts input files that matched no kana row.
	Skipped int

	// Buckets counts rows that produced output; FailedBuckets counts rows
	// whose output could not be written.
	Buckets       int
	FailedBuckets int

	Outputs []types.OutputFile

	// OutputDir and StatusLog are the paths actually used.
	OutputDir string
	StatusLog string
}

// Total returns the number of input files seen.
func (r BatchResult) Total() int {
	return r.Merged + r.Failed + r.Skipped
}

// HasFailures reports whether any file or bucket failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.FailedBuckets > 0
}

// DefaultOutputDir returns ./YYYYMMDD_output for t.
func DefaultOutputDir(t time.Time) string {
	return "./" + t.Format("20060102") + "_output"
}

// OutputName returns the merged file name for a row.
func OutputName(prefix string, row kana.Row) string {
	return fmt.Sprintf("%s_%s.pdf", prefix, row)
}

// A4Name returns the name of the A4 version of a merged file.
func A4Name(prefix string, row kana.Row) string {
	return fmt.Sprintf("%s_%s_A4.pdf", prefix, row)
}

// Run executes the pipeline described by cfg. Per-file and per-bucket
// problems are reported on w and counted in the result; the returned error is
// reserved for failures that stop the whole run.
func Run(ctx context.Context, cfg types.CombineConfig, deps Deps, w io.Writer) (BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return BatchResult{}, err
	}
	if (cfg.Resize.Enabled || cfg.Split.Photo.Enabled) && deps.Renderer == nil {
		return BatchResult{}, fmt.Errorf("resize and photo detection need a page renderer")
	}
	if cfg.Split.Photo.Enabled && deps.Detector == nil {
		return BatchResult{}, fmt.Errorf("photo detection needs a face detector")
	}

	log := deps.Log
	started := deps.now()

	outDir := cfg.OutputDir
	if outDir == "" {
		outDir = DefaultOutputDir(started)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating output directory: %w", err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = filepath.Base(filepath.Clean(cfg.InputDir))
	}

	fmt.Fprintf(w, "input:  %s\noutput: %s\n", cfg.InputDir, outDir)

	cls := kana.Classifier{FoldVoiced: cfg.Classify.FoldVoiced, FoldHiragana: cfg.Classify.FoldHiragana}
	res, err := scan.Scan(cfg.InputDir, cls, w, log)
	if err != nil {
		return BatchResult{}, err
	}

	runID := beginRun(ctx, deps.Ledger, "combine", cfg.InputDir, outDir, log)

	result := BatchResult{OutputDir: outDir, Skipped: res.Unmatched()}
	p := &pipeline{cfg: cfg, deps: deps, log: log, w: w, runID: runID}

	for _, row := range res.Rows() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		p.bucket(ctx, res, row, outDir, prefix, &result)
	}

	result.StatusLog = filepath.Join(outDir, report.StatusLogName(outDir, cfg.LogFormat))
	if err := report.WriteStatusLog(res.Records, result.StatusLog, cfg.LogFormat); err != nil {
		return result, fmt.Errorf("writing status log: %w", err)
	}
	fmt.Fprintf(w, "status log: %s\n", result.StatusLog)

	if deps.Ledger != nil && runID > 0 {
		if err := deps.Ledger.RecordFiles(ctx, runID, res.Records); err != nil {
			log.Warn().Err(err).Msg("recording file statuses in ledger")
		}
		if err := deps.Ledger.FinishRun(ctx, runID, result.Failed+result.FailedBuckets); err != nil {
			log.Warn().Err(err).Msg("finishing ledger run")
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d merged, %d skipped, %d failed (total: %d, outputs: %d)\n",
		result.Merged, result.Skipped, result.Failed, result.Total(), len(result.Outputs))
	log.Info().
		Int("buckets", result.Buckets).
		Int("outputs", len(result.Outputs)).
		Dur("elapsed", deps.now().Sub(started)).
		Msg("combine complete")
	return result, nil
}

type pipeline struct {
	cfg   types.CombineConfig
	deps  Deps
	log   zerolog.Logger
	w     io.Writer
	runID int64
}

// bucket validates, merges, and writes one row.
func (p *pipeline) bucket(ctx context.Context, res *scan.Result, row kana.Row, outDir, prefix string, result *BatchResult) {
	files := res.Groups[row]
	fmt.Fprintf(p.w, "\n%s: %d files\n", row, len(files))

	valid := make([]string, 0, len(files))
	for _, f := range files {
		if err := pdfdoc.Validate(f); err != nil {
			res.SetStatus(f, types.ErrorStatus(err))
			fmt.Fprintf(p.w, "failed:  %s (%v)\n", filepath.Base(f), err)
			p.log.Warn().Err(err).Str("file", f).Msg("skipping invalid PDF")
			result.Failed++
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		fmt.Fprintf(p.w, "skipped: %s (no valid files)\n", row)
		return
	}

	var merged bytes.Buffer
	if err := pdfdoc.MergeFiles(valid, &merged); err != nil {
		for _, f := range valid {
			res.SetStatus(f, types.ErrorStatus(err))
		}
		fmt.Fprintf(p.w, "failed:  %s (%v)\n", row, err)
		result.Failed += len(valid)
		result.FailedBuckets++
		return
	}
	for _, f := range valid {
		res.SetStatus(f, types.StatusMerged)
	}
	result.Merged += len(valid)
	fmt.Fprintf(p.w, "merged:  %s (%d files, %d bytes)\n", row, len(valid), merged.Len())

	ok := true
	if err := p.write(ctx, merged.Bytes(), filepath.Join(outDir, OutputName(prefix, row)), row.String(), result); err != nil {
		p.fail(row, "writing merged PDF", err)
		ok = false
	}

	if p.cfg.Resize.Enabled {
		a4, err := resize.ToA4(ctx, p.deps.Renderer, merged.Bytes(), p.cfg.Resize.DPI)
		if err == nil {
			err = p.write(ctx, a4, filepath.Join(outDir, A4Name(prefix, row)), row.String(), result)
		}
		if err != nil {
			p.fail(row, "A4 conversion", err)
			ok = false
		}
	}

	if ok {
		result.Buckets++
	} else {
		result.FailedBuckets++
	}
}

// write stores data at path, splitting it when it exceeds the size limit.
func (p *pipeline) write(ctx context.Context, data []byte, path, row string, result *BatchResult) error {
	var photoFn split.PhotoFunc
	if p.cfg.Split.Photo.Enabled {
		photoFn = func(data []byte, _ int) ([]bool, error) {
			return photo.Classify(ctx, p.deps.Renderer, p.deps.Detector, data, p.cfg.Split.Photo, p.log)
		}
	}

	outputs, err := split.WriteOrSplit(data, path, int(p.cfg.Split.LimitBytes), photoFn, p.w)
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	for _, o := range outputs {
		o.Row = row
		result.Outputs = append(result.Outputs, o)
		if p.deps.Ledger != nil && p.runID > 0 {
			if err := p.deps.Ledger.RecordOutput(ctx, p.runID, o); err != nil {
				p.log.Warn().Err(err).Str("path", o.Path).Msg("recording output in ledger")
			}
		}
	}
	return nil
}

func (p *pipeline) fail(row kana.Row, stage string, err error) {
	fmt.Fprintf(p.w, "failed:  %s %s (%v)\n", row, stage, err)
	p.log.Error().Err(err).Str("row", row.String()).Msg(stage + " failed")
}

// beginRun opens a ledger run, returning 0 when there is no ledger or the
// insert fails. The ledger never blocks the pipeline.
func beginRun(ctx context.Context, store *ledger.Store, command, in, out string, log zerolog.Logger) int64 {
	if store == nil {
		return 0
	}
	id, err := store.BeginRun(ctx, command, in, out)
	if err != nil {
		log.Warn().Err(err).Msg("starting ledger run")
		return 0
	}
	return id
}
