// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resize normalizes PDFs to A4 by rasterizing every page and
// re-embedding it, fitted and centered, on an A4 page.
package resize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/pdiddy/kanapdf/internal/pdfdoc"
	"github.com/pdiddy/kanapdf/internal/render"
)

// DefaultDPI renders one pixel per A4 point.
const DefaultDPI = 72.0

// Scale returns the factor that fits a w×h page inside A4 while keeping its
// aspect ratio.
func Scale(w, h float64) float64 {
	return math.Min(pdfdoc.A4Width/w, pdfdoc.A4Height/h)
}

// ToA4 returns src with every page rasterized and placed on an A4 page. The
// page is rendered at Scale*dpi so the fitted image carries dpi pixels per
// inch of A4. A non-positive dpi means DefaultDPI.
func ToA4(ctx context.Context, r render.Renderer, src []byte, dpi float64) ([]byte, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	doc, err := r.Open(src)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := fitPage(doc, i, dpi)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}

	var buf bytes.Buffer
	if err := pdfdoc.ImagesToPDF(imgs, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fitPage(doc render.Pages, i int, dpi float64) (image.Image, error) {
	w, h, err := doc.Bounds(i)
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has empty bounds %vx%v", i+1, w, h)
	}

	scale := Scale(w, h)
	img, err := doc.Image(i, scale*dpi)
	if err != nil {
		return nil, err
	}

	tw, th := render.PixelSize(w*scale, h*scale, dpi)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	if b := img.Bounds(); b.Dx() == tw && b.Dy() == th {
		return img, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}
