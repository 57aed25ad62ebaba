// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resize

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kanapdf/internal/pdfdoc"
	"github.com/pdiddy/kanapdf/internal/render"
	"github.com/pdiddy/kanapdf/internal/render/rendertest"
)

func TestScale(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		want float64
	}{
		{"already A4", 595, 842, 1},
		{"A3 shrinks by width", 842, 1191, 595.0 / 842},
		{"landscape A4 limited by width", 842, 595, 595.0 / 842},
		{"small card grows", 297.5, 421, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Scale(tt.w, tt.h), 1e-9)
		})
	}
}

func TestToA4(t *testing.T) {
	r := &rendertest.Renderer{Pages: []rendertest.Page{
		{Width: 612, Height: 792},
		{Width: 842, Height: 595, Fill: color.Black},
		{Width: 595, Height: 842},
	}}

	out, err := ToA4(context.Background(), r, []byte("pdf"), 0)
	require.NoError(t, err)

	n, err := pdfdoc.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, r.Rendered, 3)
	assert.InDelta(t, 72*595.0/612, r.Rendered[0].DPI, 1e-9)
	assert.InDelta(t, 72*595.0/842, r.Rendered[1].DPI, 1e-9)
	assert.InDelta(t, 72.0, r.Rendered[2].DPI, 1e-9)
}

func TestToA4CustomDPI(t *testing.T) {
	r := &rendertest.Renderer{Pages: []rendertest.Page{{Width: 595, Height: 842}}}

	_, err := ToA4(context.Background(), r, nil, 150)
	require.NoError(t, err)
	require.Len(t, r.Rendered, 1)
	assert.InDelta(t, 150.0, r.Rendered[0].DPI, 1e-9)
}

func TestToA4Errors(t *testing.T) {
	boom := errors.New("render failed")
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		r       *rendertest.Renderer
		wantErr string
	}{
		{
			name:    "open fails",
			ctx:     context.Background(),
			r:       &rendertest.Renderer{OpenErr: errors.New("not a pdf")},
			wantErr: "not a pdf",
		},
		{
			name:    "no pages",
			ctx:     context.Background(),
			r:       &rendertest.Renderer{},
			wantErr: "no pages",
		},
		{
			name:    "empty bounds",
			ctx:     context.Background(),
			r:       &rendertest.Renderer{Pages: []rendertest.Page{{Width: 595, Height: 842}, {}}},
			wantErr: "page 2 has empty bounds",
		},
		{
			name:    "render error",
			ctx:     context.Background(),
			r:       &rendertest.Renderer{Pages: []rendertest.Page{{Width: 595, Height: 842, Err: boom}}},
			wantErr: "render failed",
		},
		{
			name:    "canceled",
			ctx:     canceled,
			r:       &rendertest.Renderer{Pages: []rendertest.Page{{Width: 595, Height: 842}}},
			wantErr: context.Canceled.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToA4(tt.ctx, tt.r, nil, 72)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// shrunk renders one pixel short in each direction so fitPage has to
// resample.
type shrunk struct{ render.Pages }

func (s shrunk) Image(i int, dpi float64) (image.Image, error) {
	img, err := s.Pages.Image(i, dpi)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return img.(*image.RGBA).SubImage(image.Rect(0, 0, b.Dx()-1, b.Dy()-1)), nil
}

func TestFitPageResamples(t *testing.T) {
	r := &rendertest.Renderer{Pages: []rendertest.Page{{Width: 612, Height: 792}}}
	doc, err := r.Open(nil)
	require.NoError(t, err)

	img, err := fitPage(shrunk{doc}, 0, 72)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 595, 770), img.Bounds())
}
