// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package combine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/kanapdf/internal/resize"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// FileResult holds the outcome of a per-file batch (resize or split).
type FileResult struct {
	Done    int
	Skipped int
	Failed  int
	Outputs []types.OutputFile
}

// Total returns the number of files processed.
func (r FileResult) Total() int {
	return r.Done + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r FileResult) HasFailures() bool {
	return r.Failed > 0
}

// ResizeFiles writes an A4 copy of each PDF to outDir as <name>_A4.pdf,
// splitting copies that exceed the size limit. An empty outDir writes next to
// each input.
func ResizeFiles(ctx context.Context, paths []string, outDir string, cfg types.CombineConfig, deps Deps, w io.Writer) (FileResult, error) {
	if deps.Renderer == nil {
		return FileResult{}, fmt.Errorf("resize needs a page renderer")
	}
	return eachFile(ctx, "resize", paths, outDir, cfg, deps, w, func(p *pipeline, data []byte, in, dir string, r *FileResult) error {
		a4, err := resize.ToA4(ctx, deps.Renderer, data, cfg.Resize.DPI)
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		return p.writeFile(ctx, a4, filepath.Join(dir, stem+"_A4.pdf"), r)
	})
}

// SplitFiles splits each PDF larger than the size limit into parts in
// outDir. Files under the limit are skipped. An empty outDir writes next to
// each input.
func SplitFiles(ctx context.Context, paths []string, outDir string, cfg types.CombineConfig, deps Deps, w io.Writer) (FileResult, error) {
	if cfg.Split.LimitBytes <= 0 {
		return FileResult{}, fmt.Errorf("split needs a positive size limit")
	}
	if cfg.Split.Photo.Enabled && (deps.Renderer == nil || deps.Detector == nil) {
		return FileResult{}, fmt.Errorf("photo detection needs a page renderer and a face detector")
	}
	return eachFile(ctx, "split", paths, outDir, cfg, deps, w, func(p *pipeline, data []byte, in, dir string, r *FileResult) error {
		if int64(len(data)) <= cfg.Split.LimitBytes {
			return errSkip
		}
		return p.writeFile(ctx, data, filepath.Join(dir, filepath.Base(in)), r)
	})
}

var errSkip = errors.New("under size limit")

type fileFunc func(p *pipeline, data []byte, in, dir string, r *FileResult) error

func eachFile(ctx context.Context, command string, paths []string, outDir string, cfg types.CombineConfig, deps Deps, w io.Writer, fn fileFunc) (FileResult, error) {
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return FileResult{}, fmt.Errorf("creating output directory: %w", err)
		}
	}

	runID := beginRun(ctx, deps.Ledger, command, strings.Join(paths, ","), outDir, deps.Log)
	p := &pipeline{cfg: cfg, deps: deps, log: deps.Log, w: w, runID: runID}

	var result FileResult
	for _, in := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(in)
		}

		data, err := os.ReadFile(in)
		if err == nil {
			err = fn(p, data, in, dir, &result)
		}
		switch {
		case errors.Is(err, errSkip):
			fmt.Fprintf(w, "skipped: %s (%v)\n", filepath.Base(in), err)
			result.Skipped++
		case err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", filepath.Base(in), err)
			deps.Log.Warn().Err(err).Str("file", in).Msg(command + " failed")
			result.Failed++
		default:
			fmt.Fprintf(w, "%s: %s\n", doneVerb(command), filepath.Base(in))
			result.Done++
		}
	}

	if deps.Ledger != nil && runID > 0 {
		if err := deps.Ledger.FinishRun(ctx, runID, result.Failed); err != nil {
			deps.Log.Warn().Err(err).Msg("finishing ledger run")
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d %s, %d skipped, %d failed (total: %d)\n",
		result.Done, doneVerb(command), result.Skipped, result.Failed, result.Total())
	return result, nil
}

func doneVerb(command string) string {
	if command == "resize" {
		return "resized"
	}
	return command
}

// writeFile is write for per-file batches: outputs carry no row.
func (p *pipeline) writeFile(ctx context.Context, data []byte, path string, r *FileResult) error {
	var batch BatchResult
	if err := p.write(ctx, data, path, "", &batch); err != nil {
		return err
	}
	r.Outputs = append(r.Outputs, batch.Outputs...)
	return nil
}
