// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bank reads bank code, branch code, and account number from scanned
// transfer forms. Each field is OCR'd from its own region of a rendered page
// and matched against a regular expression.
package bank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/pdiddy/kanapdf/internal/ocr"
	"github.com/pdiddy/kanapdf/internal/render"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// ErrNoMatch is returned when recognized text does not match a field pattern.
var ErrNoMatch = errors.New("no match")

// Record statuses.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	statusError   = "error"
)

// separators are dropped before matching. OCR reads dashes and the long vowel
// mark interchangeably, and forms often space digits into boxes.
var separators = strings.NewReplacer(
	" ", "", "\t", "", "\n", "", "\r", "",
	"-", "", "‐", "", "‑", "", "‒", "", "–", "", "—", "", "―", "", "−", "", "ー", "",
)

// Normalize folds full-width characters to ASCII and removes separators.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = width.Fold.String(text)
	return separators.Replace(text)
}

// ExtractText normalizes text and returns the first match of re, or its
// first capture group when the pattern has one.
func ExtractText(text string, re *regexp.Regexp) (string, error) {
	m := re.FindStringSubmatch(Normalize(text))
	if m == nil {
		return "", ErrNoMatch
	}
	if len(m) > 1 {
		return m[1], nil
	}
	return m[0], nil
}

// Extractor reads the profile's fields from PDFs.
type Extractor struct {
	Engine   ocr.Engine
	Renderer render.Renderer
	Profile  Profile

	// Timeout bounds each recognition call. Zero means no limit.
	Timeout time.Duration

	Log zerolog.Logger
}

// ExtractFile reads every field of the profile from the PDF at path. Fields
// whose text does not match leave the record partial; rendering and OCR
// failures are returned as errors.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (types.BankRecord, error) {
	rec := types.BankRecord{File: path, Page: e.Profile.Page}

	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := e.Renderer.Open(data)
	if err != nil {
		return rec, err
	}
	defer doc.Close()

	idx := e.Profile.Page - 1
	if idx >= doc.NumPage() {
		return rec, fmt.Errorf("page %d requested but document has %d pages", e.Profile.Page, doc.NumPage())
	}
	img, err := doc.Image(idx, e.Profile.DPI)
	if err != nil {
		return rec, err
	}
	png, err := ocr.EncodePNG(img)
	if err != nil {
		return rec, err
	}
	b := img.Bounds()

	var missing []string
	for _, f := range e.Profile.Fields {
		value, err := e.readField(ctx, path, png, b.Dx(), b.Dy(), f)
		if err != nil {
			if !errors.Is(err, ErrNoMatch) {
				return rec, err
			}
			e.Log.Debug().Err(err).Str("file", path).Str("field", f.Name).Msg("field not found")
			missing = append(missing, f.Name)
			continue
		}
		switch f.Name {
		case FieldBankCode:
			rec.BankCode = value
		case FieldBranchCode:
			rec.BranchCode = value
		case FieldAccountNumber:
			rec.AccountNumber = value
		}
	}

	rec.Status = StatusOK
	if len(missing) > 0 {
		rec.Status = StatusPartial + ": missing " + strings.Join(missing, ", ")
	}
	return rec, nil
}

func (e *Extractor) readField(ctx context.Context, path string, png []byte, w, h int, f Field) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	opts := []ocr.InputOption{
		ocr.WithRegion(f.Region.Pixels(w, h)),
		ocr.WithDPI(int(e.Profile.DPI)),
		ocr.WithLanguages(e.Profile.Languages...),
	}
	if f.PSM > 0 {
		opts = append(opts, ocr.WithPSM(f.PSM))
	}
	if f.Whitelist != "" {
		opts = append(opts, ocr.WithWhitelist(f.Whitelist))
	}

	res, err := e.Engine.Recognize(ctx, ocr.NewInput(filepath.Base(path)+"#"+f.Name, png, opts...))
	if err != nil {
		return "", err
	}
	value, err := ExtractText(res.Text, f.re)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", f.Name, res.Text, err)
	}
	return value, nil
}

// BatchResult holds the outcome of a batch extraction.
type BatchResult struct {
	Extracted int
	Partial   int
	Failed    int
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Extracted + r.Partial + r.Failed
}

// HasFailures reports whether any file could not be read.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ExtractBatch runs ExtractFile over paths with at most jobs files in flight.
// Records come back in input order; a file that fails becomes a record with
// an error status. Per-file status lines and a summary go to w. The returned
// error is non-nil only when ctx is canceled.
func (e *Extractor) ExtractBatch(ctx context.Context, paths []string, jobs int, w io.Writer) ([]types.BankRecord, BatchResult, error) {
	if jobs < 1 {
		jobs = 1
	}
	records := make([]types.BankRecord, len(paths))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := e.ExtractFile(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				rec.Status = statusError + ": " + err.Error()
				e.Log.Warn().Err(err).Str("file", path).Msg("extraction failed")
			}
			records[i] = rec

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				fmt.Fprintf(w, "failed:    %s (%v)\n", filepath.Base(path), err)
			case rec.Status == StatusOK:
				fmt.Fprintf(w, "extracted: %s bank=%s branch=%s account=%s\n",
					filepath.Base(path), rec.BankCode, rec.BranchCode, rec.AccountNumber)
			default:
				fmt.Fprintf(w, "partial:   %s (%s)\n", filepath.Base(path), rec.Status)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, BatchResult{}, err
	}

	var result BatchResult
	for _, rec := range records {
		switch {
		case rec.Status == StatusOK:
			result.Extracted++
		case strings.HasPrefix(rec.Status, StatusPartial):
			result.Partial++
		default:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d partial, %d failed (total: %d)\n",
		result.Extracted, result.Partial, result.Failed, result.Total())
	return records, result, nil
}
