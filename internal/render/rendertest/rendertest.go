// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rendertest provides an in-memory render.Renderer for tests.
package rendertest

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/pdiddy/kanapdf/internal/render"
)

// Page describes one fake page.
type Page struct {
	// Width and Height are in points.
	Width, Height float64
	// Fill colors the rendered image.
	Fill color.Color
	// Err fails rendering of this page.
	Err error
}

// Renderer returns the same pages for every document it opens. When OpenErr
// is set, Open fails. It is safe for concurrent use.
type Renderer struct {
	Pages   []Page
	OpenErr error

	// Rendered records each (page, dpi) request in order.
	Rendered []Request

	mu sync.Mutex
}

// Request is one recorded Image call.
type Request struct {
	Page int
	DPI  float64
}

// Open implements render.Renderer.
func (r *Renderer) Open(data []byte) (render.Pages, error) {
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	return &doc{r: r}, nil
}

type doc struct {
	r      *Renderer
	closed bool
}

func (d *doc) NumPage() int { return len(d.r.Pages) }

func (d *doc) Bounds(i int) (float64, float64, error) {
	if i < 0 || i >= len(d.r.Pages) {
		return 0, 0, fmt.Errorf("page %d out of range", i)
	}
	p := d.r.Pages[i]
	return p.Width, p.Height, nil
}

func (d *doc) Image(i int, dpi float64) (image.Image, error) {
	if d.closed {
		return nil, errors.New("document closed")
	}
	if i < 0 || i >= len(d.r.Pages) {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	d.r.mu.Lock()
	d.r.Rendered = append(d.r.Rendered, Request{Page: i, DPI: dpi})
	d.r.mu.Unlock()
	p := d.r.Pages[i]
	if p.Err != nil {
		return nil, p.Err
	}
	w, h := render.PixelSize(p.Width, p.Height, dpi)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := p.Fill
	if fill == nil {
		fill = color.White
	}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
	return img, nil
}

func (d *doc) Close() error {
	d.closed = true
	return nil
}
