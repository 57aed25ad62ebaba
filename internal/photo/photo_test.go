// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package photo

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kanapdf/internal/logx"
	"github.com/pdiddy/kanapdf/internal/render/rendertest"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// colorDetector reports one face for every image whose top-left pixel is
// black and fails on red.
type colorDetector struct{}

func (colorDetector) CountFaces(img image.Image) (int, error) {
	r, g, b, _ := img.At(0, 0).RGBA()
	switch {
	case r == 0 && g == 0 && b == 0:
		return 1, nil
	case r == 0xffff && g == 0 && b == 0:
		return 0, errors.New("detector crashed")
	}
	return 0, nil
}

func page(c color.Color) rendertest.Page {
	return rendertest.Page{Width: 10, Height: 10, Fill: c}
}

func TestClassify(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	r := &rendertest.Renderer{Pages: []rendertest.Page{
		page(color.White),
		page(color.Black),
		page(red),
		{Width: 10, Height: 10, Err: errors.New("bad page")},
		page(color.Black),
	}}
	cfg := types.PhotoConfig{Enabled: true, DPI: 300, Confidence: 0.3}

	marks, err := Classify(context.Background(), r, colorDetector{}, nil, cfg, logx.Nop())
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false, true}, marks)

	for _, req := range r.Rendered {
		assert.InDelta(t, 300.0, req.DPI, 1e-9)
	}
}

func TestClassifyOpenError(t *testing.T) {
	r := &rendertest.Renderer{OpenErr: errors.New("corrupt")}
	_, err := Classify(context.Background(), r, colorDetector{}, nil, types.PhotoConfig{DPI: 72}, logx.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestClassifyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &rendertest.Renderer{Pages: []rendertest.Page{page(color.Black)}}

	_, err := Classify(ctx, r, colorDetector{}, nil, types.PhotoConfig{DPI: 72}, logx.Nop())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyEmptyDocument(t *testing.T) {
	marks, err := Classify(context.Background(), &rendertest.Renderer{}, colorDetector{}, nil, types.PhotoConfig{DPI: 72}, logx.Nop())
	require.NoError(t, err)
	assert.Empty(t, marks)
}
