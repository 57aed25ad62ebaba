// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc wraps the PDF operations the pipeline needs: validation,
// concatenation, page-range re-serialization, and building image-only
// documents. All operations go through pdfcpu.
package pdfdoc

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// A4 page size in points.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Validate reads and validates the PDF at path. Files that fail here would
// abort a merge, so callers check each input first.
func Validate(path string) error {
	if err := api.ValidateFile(path, newConfig()); err != nil {
		return fmt.Errorf("validating %s: %w", path, err)
	}
	return nil
}

// MergeFiles concatenates the PDFs at paths, in order, and writes the result
// to w.
func MergeFiles(paths []string, w io.Writer) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files to merge")
	}

	readers := make([]io.ReadSeeker, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll(readers)
			return fmt.Errorf("opening %s: %w", p, err)
		}
		readers = append(readers, f)
	}
	defer closeAll(readers)

	if err := api.MergeRaw(readers, w, false, newConfig()); err != nil {
		return fmt.Errorf("merging %d files: %w", len(paths), err)
	}
	return nil
}

func closeAll(readers []io.ReadSeeker) {
	for _, r := range readers {
		if c, ok := r.(io.Closer); ok {
			c.Close()
		}
	}
}

// Document is a parsed PDF whose pages can be re-serialized in ranges.
type Document struct {
	ctx *model.Context
}

// Load parses and validates a PDF from rs.
func Load(rs io.ReadSeeker) (*Document, error) {
	ctx, err := api.ReadValidateAndOptimize(rs, newConfig())
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	return &Document{ctx: ctx}, nil
}

// LoadBytes parses a PDF held in memory.
func LoadBytes(data []byte) (*Document, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile parses the PDF at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// Serialize writes pages [from, to) (zero-based) as a standalone PDF and
// returns its bytes. Only the objects the pages reach are copied. The length
// of the result is the size the pages occupy on disk when written on their
// own.
func (d *Document) Serialize(from, to int) ([]byte, error) {
	if from < 0 || to > d.ctx.PageCount || from >= to {
		return nil, fmt.Errorf("page range [%d, %d) out of bounds for %d pages", from, to, d.ctx.PageCount)
	}

	pageNrs := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		pageNrs = append(pageNrs, i+1)
	}

	part, err := pdfcpu.ExtractPages(d.ctx, pageNrs, false)
	if err != nil {
		return nil, fmt.Errorf("extracting pages %d-%d: %w", from+1, to, err)
	}
	var buf bytes.Buffer
	if err := api.WriteContext(part, &buf); err != nil {
		return nil, fmt.Errorf("writing pages %d-%d: %w", from+1, to, err)
	}
	return buf.Bytes(), nil
}

// ImagesToPDF writes a PDF with one A4 page per image. Each image is scaled
// to fit the page, preserving its aspect ratio, and centered.
func ImagesToPDF(imgs []image.Image, w io.Writer) error {
	if len(imgs) == 0 {
		return fmt.Errorf("no images to import")
	}

	readers := make([]io.Reader, 0, len(imgs))
	for i, img := range imgs {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encoding page %d: %w", i+1, err)
		}
		readers = append(readers, &buf)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.PageSize = "A4"
	imp.PageDim = types.PaperSize["A4"]
	imp.Pos = types.Center
	imp.Scale = 1.0
	imp.ScaleAbs = false

	if err := api.ImportImages(nil, w, readers, imp, newConfig()); err != nil {
		return fmt.Errorf("importing %d images: %w", len(imgs), err)
	}
	return nil
}

// PageCount returns the page count of the PDF held in data.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), newConfig())
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}
