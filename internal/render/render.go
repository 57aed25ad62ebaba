// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render defines how PDF pages are rasterized. The MuPDF-backed
// implementation lives in render/fitz so that packages depending only on the
// interface build without cgo.
package render

import "image"

// PointsPerInch is the PDF user-space unit.
const PointsPerInch = 72.0

// Renderer opens PDF documents for rasterization.
type Renderer interface {
	Open(data []byte) (Pages, error)
}

// Pages is an open document. Page indexes are zero-based.
type Pages interface {
	NumPage() int
	// Bounds returns the page size in points.
	Bounds(i int) (width, height float64, err error)
	// Image rasterizes page i at dpi dots per inch.
	Image(i int, dpi float64) (image.Image, error)
	Close() error
}

// PixelSize returns the pixel dimensions of a page of w×h points rendered at
// dpi.
func PixelSize(w, h, dpi float64) (int, int) {
	scale := dpi / PointsPerInch
	return int(w*scale + 0.5), int(h*scale + 0.5)
}
