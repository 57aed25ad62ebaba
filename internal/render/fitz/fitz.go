// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fitz rasterizes PDF pages with MuPDF through go-fitz.
package fitz

import (
	"fmt"
	"image"

	gofitz "github.com/gen2brain/go-fitz"

	"github.com/pdiddy/kanapdf/internal/render"
)

// Renderer implements render.Renderer.
type Renderer struct{}

// New returns a MuPDF renderer.
func New() Renderer { return Renderer{} }

// Open parses data as a PDF.
func (Renderer) Open(data []byte) (render.Pages, error) {
	doc, err := gofitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	return &pages{doc: doc}, nil
}

type pages struct {
	doc *gofitz.Document
}

func (p *pages) NumPage() int { return p.doc.NumPage() }

// Bounds reports the page box in points. MuPDF measures at 72 dpi, so the
// bound rectangle is already in points.
func (p *pages) Bounds(i int) (float64, float64, error) {
	r, err := p.doc.Bound(i)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d bounds: %w", i+1, err)
	}
	return float64(r.Dx()), float64(r.Dy()), nil
}

func (p *pages) Image(i int, dpi float64) (image.Image, error) {
	img, err := p.doc.ImageDPI(i, dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d at %.0f dpi: %w", i+1, dpi, err)
	}
	return img, nil
}

func (p *pages) Close() error { return p.doc.Close() }
