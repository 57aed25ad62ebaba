// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bank

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kanapdf/internal/logx"
	"github.com/pdiddy/kanapdf/internal/ocr"
	"github.com/pdiddy/kanapdf/internal/render/rendertest"
)

// fakeEngine answers with canned text per "<file>#<field>" input ID.
type fakeEngine struct {
	mu     sync.Mutex
	text   map[string]string
	fail   map[string]error
	inputs []ocr.Input
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	if err := f.fail[in.ID]; err != nil {
		return ocr.Result{}, err
	}
	return ocr.Result{InputID: in.ID, Text: f.text[in.ID]}, nil
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 stub"), 0o644))
	return path
}

func a4Renderer(pages int) *rendertest.Renderer {
	r := &rendertest.Renderer{}
	for i := 0; i < pages; i++ {
		r.Pages = append(r.Pages, rendertest.Page{Width: 595, Height: 842})
	}
	return r
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		want    string
		wantErr error
	}{
		{"full-width digits", "０００１", `\d{4}`, "0001", nil},
		{"capture group", "銀行 ０１２３ 支店", `(\d{4})`, "0123", nil},
		{"spaced boxes", "1 2 3", `(\d{3})`, "123", nil},
		{"hyphenated", "123-4567", `(\d{7})`, "1234567", nil},
		{"long vowel mark as dash", "123ー4567", `(\d{7})`, "1234567", nil},
		{"half-width long vowel mark", "123ｰ4567", `(\d{7})`, "1234567", nil},
		{"full-width hyphen", "１２３－４５６７", `(\d{7})`, "1234567", nil},
		{"first match wins", "1111 2222", `\d{4}`, "1111", nil},
		{"no match", "abc", `\d{4}`, "", ErrNoMatch},
		{"too short", "123", `\d{4}`, "", ErrNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(tt.text, regexp.MustCompile(tt.pattern))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "form.pdf")
	eng := &fakeEngine{text: map[string]string{
		"form.pdf#bank_code":      "金融機関コード ０００５",
		"form.pdf#branch_code":    "支店 ０１２",
		"form.pdf#account_number": "口座番号 1234-567",
	}}
	e := &Extractor{Engine: eng, Renderer: a4Renderer(2), Profile: DefaultProfile(), Log: logx.Nop()}

	rec, err := e.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, rec.File)
	assert.Equal(t, 1, rec.Page)
	assert.Equal(t, "0005", rec.BankCode)
	assert.Equal(t, "012", rec.BranchCode)
	assert.Equal(t, "1234567", rec.AccountNumber)
	assert.Equal(t, StatusOK, rec.Status)

	require.Len(t, eng.inputs, 3)
	in := eng.inputs[0]
	assert.Equal(t, 300, in.DPI)
	assert.Equal(t, 7, in.PSM)
	assert.Equal(t, []string{"jpn", "eng"}, in.Languages)
	require.NotNil(t, in.Region)
	// 595pt at 300 dpi is 2479px wide.
	assert.InDelta(t, 0.05*2479, in.Region.X, 1e-6)
}

func TestExtractFilePartial(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "smudged.pdf")
	eng := &fakeEngine{text: map[string]string{
		"smudged.pdf#bank_code":   "0005",
		"smudged.pdf#branch_code": "??",
	}}
	e := &Extractor{Engine: eng, Renderer: a4Renderer(1), Profile: DefaultProfile(), Log: logx.Nop()}

	rec, err := e.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "0005", rec.BankCode)
	assert.Empty(t, rec.BranchCode)
	assert.Equal(t, "partial: missing branch_code, account_number", rec.Status)
}

func TestExtractFileErrors(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "x.pdf")

	profile := DefaultProfile()
	profile.Page = 3

	tests := []struct {
		name    string
		path    string
		e       *Extractor
		wantErr string
	}{
		{
			name:    "missing file",
			path:    filepath.Join(dir, "missing.pdf"),
			e:       &Extractor{Engine: &fakeEngine{}, Renderer: a4Renderer(1), Profile: DefaultProfile()},
			wantErr: "reading",
		},
		{
			name:    "page out of range",
			path:    path,
			e:       &Extractor{Engine: &fakeEngine{}, Renderer: a4Renderer(2), Profile: profile},
			wantErr: "page 3 requested but document has 2 pages",
		},
		{
			name:    "renderer cannot open",
			path:    path,
			e:       &Extractor{Engine: &fakeEngine{}, Renderer: &rendertest.Renderer{OpenErr: errors.New("encrypted")}, Profile: DefaultProfile()},
			wantErr: "encrypted",
		},
		{
			name: "engine failure",
			path: path,
			e: &Extractor{
				Engine:   &fakeEngine{fail: map[string]error{"x.pdf#bank_code": errors.New("tesseract crashed")}},
				Renderer: a4Renderer(1),
				Profile:  DefaultProfile(),
			},
			wantErr: "tesseract crashed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.e.Log = logx.Nop()
			_, err := tt.e.ExtractFile(context.Background(), tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExtractBatch(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	text := map[string]string{}
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"} {
		paths = append(paths, writePDF(t, dir, name))
		text[name+"#bank_code"] = "0001"
		text[name+"#branch_code"] = "002"
		text[name+"#account_number"] = "0000003"
	}
	delete(text, "c.pdf#account_number")
	paths = append(paths, filepath.Join(dir, "gone.pdf"))

	e := &Extractor{Engine: &fakeEngine{text: text}, Renderer: a4Renderer(1), Profile: DefaultProfile(), Log: logx.Nop()}

	var out bytes.Buffer
	records, result, err := e.ExtractBatch(context.Background(), paths, 3, &out)
	require.NoError(t, err)
	require.Len(t, records, 6)

	for i, rec := range records {
		assert.Equal(t, paths[i], rec.File, "records keep input order")
	}
	assert.Equal(t, StatusOK, records[0].Status)
	assert.True(t, strings.HasPrefix(records[2].Status, "partial"))
	assert.True(t, strings.HasPrefix(records[5].Status, "error: reading"))

	assert.Equal(t, BatchResult{Extracted: 4, Partial: 1, Failed: 1}, result)
	assert.True(t, result.HasFailures())
	assert.Equal(t, 6, result.Total())
	assert.Contains(t, out.String(), "extracted: a.pdf bank=0001 branch=002 account=0000003")
	assert.Contains(t, out.String(), "failed:    gone.pdf")
	assert.Contains(t, out.String(), "Batch summary: 4 extracted, 1 partial, 1 failed (total: 6)")
}

func TestExtractBatchCanceled(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writePDF(t, dir, "a.pdf"), writePDF(t, dir, "b.pdf")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &Extractor{Engine: &fakeEngine{}, Renderer: a4Renderer(1), Profile: DefaultProfile(), Log: logx.Nop()}
	_, _, err := e.ExtractBatch(ctx, paths, 1, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}
