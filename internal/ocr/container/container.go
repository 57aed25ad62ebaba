// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container recognizes text by piping images through the tesseract
// CLI inside a container image. It needs no native libraries on the host.
package container

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/kanapdf/internal/container"
	"github.com/pdiddy/kanapdf/internal/ocr"
)

// Engine implements ocr.Engine on a container runtime.
type Engine struct {
	rt    container.Runtime
	image string
}

// New detects a container runtime and checks that image is present.
func New(ctx context.Context, image string) (*Engine, error) {
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return nil, err
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("OCR image %s is not available (pull or build it first): %w", image, err)
	}
	return NewWithRuntime(rt, image), nil
}

// NewWithRuntime returns an engine on an already detected runtime.
func NewWithRuntime(rt container.Runtime, image string) *Engine {
	return &Engine{rt: rt, image: image}
}

func (e *Engine) Name() string { return "tesseract-" + e.rt.Name() }

// Recognize crops the input, runs tesseract in the container, and returns its
// stdout.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	img, err := ocr.CropPNG(in.Image, in.Region)
	if err != nil {
		return ocr.Result{}, err
	}

	var out bytes.Buffer
	if err := e.rt.Run(ctx, e.image, Args(in), bytes.NewReader(img), &out); err != nil {
		return ocr.Result{}, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	return ocr.Result{
		InputID: in.ID,
		Text:    strings.TrimSpace(out.String()),
	}, nil
}

// Args returns the tesseract command line for in, reading the image from
// stdin and writing text to stdout.
func Args(in ocr.Input) []string {
	args := []string{"tesseract", "stdin", "stdout"}
	if len(in.Languages) > 0 {
		args = append(args, "-l", strings.Join(in.Languages, "+"))
	}
	if in.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(in.DPI))
	}
	if in.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(in.PSM))
	}
	if in.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+in.Whitelist)
	}

	keys := make([]string, 0, len(in.Metadata))
	for k := range in.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-c", k+"="+in.Metadata[k])
	}
	return args
}
