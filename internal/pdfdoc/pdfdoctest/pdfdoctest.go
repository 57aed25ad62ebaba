// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoctest builds small PDF fixtures for tests.
package pdfdoctest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kanapdf/internal/pdfdoc"
)

// NoiseImage returns a w×h image filled with seeded noise. Noise does not
// compress, so every page built from it adds roughly w*h*3 bytes.
func NoiseImage(w, h int, seed int64) image.Image {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

// FlatImage returns a w×h image of a single color. It compresses to almost
// nothing.
func FlatImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// Bytes returns a PDF with one page per image.
func Bytes(t testing.TB, imgs ...image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, pdfdoc.ImagesToPDF(imgs, &buf))
	return buf.Bytes()
}

// NoisePDF returns a PDF of n noise pages, each side×side pixels.
func NoisePDF(t testing.TB, n, side int) []byte {
	t.Helper()
	imgs := make([]image.Image, n)
	for i := range imgs {
		imgs[i] = NoiseImage(side, side, int64(i+1))
	}
	return Bytes(t, imgs...)
}

// WriteFile writes a PDF of n small flat pages to path, creating parent
// directories.
func WriteFile(t testing.TB, path string, n int) {
	t.Helper()
	imgs := make([]image.Image, n)
	for i := range imgs {
		imgs[i] = FlatImage(20, 20, color.Gray{Y: uint8(40 * i)})
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, Bytes(t, imgs...), 0o644))
}

// PageDigests returns one digest per page of data, in page order, built from
// the page's embedded images. Two documents with equal digests carry the same
// pages in the same order.
func PageDigests(t testing.TB, data []byte) []string {
	t.Helper()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	require.NoError(t, err)
	require.NoError(t, ctx.EnsurePageCount())

	digests := make([]string, 0, ctx.PageCount)
	for nr := 1; nr <= ctx.PageCount; nr++ {
		imgs, err := pdfcpu.ExtractPageImages(ctx, nr, false)
		require.NoError(t, err)

		keys := make([]int, 0, len(imgs))
		for k := range imgs {
			keys = append(keys, k)
		}
		sort.Ints(keys)

		h := sha256.New()
		for _, k := range keys {
			_, err := io.Copy(h, imgs[k])
			require.NoError(t, err)
		}
		digests = append(digests, hex.EncodeToString(h.Sum(nil)))
	}
	return digests
}
