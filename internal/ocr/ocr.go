// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ocr defines the contract between the extraction stages and the OCR
// engines. Engines live in subpackages: tesseract links libtesseract through
// gosseract, container runs the tesseract CLI inside a docker or podman
// image.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
)

// Region is a rectangle in pixel coordinates with the origin at the top-left
// corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Rect returns the region rounded to whole pixels.
func (r Region) Rect() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}

// Input is one image submitted for recognition.
type Input struct {
	// ID is echoed back in the Result.
	ID string

	// Image is a PNG-encoded image.
	Image []byte

	// Region restricts recognition to part of the image. Nil means the
	// whole image.
	Region *Region

	// DPI is the resolution the image was rendered at; zero means unknown.
	DPI int

	// Languages are Tesseract language codes, e.g. "jpn", "eng".
	Languages []string

	// PSM is the Tesseract page segmentation mode; zero keeps the engine
	// default.
	PSM int

	// Whitelist limits recognized characters when non-empty.
	Whitelist string

	// Metadata passes engine variables through unchanged.
	Metadata map[string]string
}

// Result is the recognized text of one input.
type Result struct {
	InputID string
	Text    string
	// Confidence is the mean word confidence in [0, 1], when the engine
	// reports it.
	Confidence float64
}

// Engine recognizes text in images.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// CropPNG returns the region of a PNG image re-encoded as PNG. A nil or empty
// region returns data unchanged.
func CropPNG(data []byte, region *Region) ([]byte, error) {
	if region == nil || region.IsEmpty() {
		return data, nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode for region: %w", err)
	}
	rect := region.Rect().Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region outside image bounds")
	}
	sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	})
	if !ok {
		return nil, fmt.Errorf("image does not support sub-image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, sub.SubImage(rect)); err != nil {
		return nil, fmt.Errorf("encode cropped image: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img for an Input.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
