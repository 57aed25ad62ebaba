// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tesseract recognizes text with libtesseract through gosseract.
package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/pdiddy/kanapdf/internal/ocr"
)

// Engine implements ocr.Engine. Each call uses a fresh client, so an Engine
// is safe for concurrent use.
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New returns a Tesseract engine.
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs Tesseract on in.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	img, err := ocr.CropPNG(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(img); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(in.PSM)); err != nil {
			return ocr.Result{}, fmt.Errorf("set psm: %w", err)
		}
	}
	if in.Whitelist != "" {
		if err := c.SetWhitelist(in.Whitelist); err != nil {
			return ocr.Result{}, fmt.Errorf("set whitelist: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", strconv.Itoa(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Result{
		InputID:    in.ID,
		Text:       strings.TrimSpace(text),
		Confidence: meanConfidence(c),
	}, nil
}

func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
