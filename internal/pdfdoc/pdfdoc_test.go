// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kanapdf/internal/pdfdoc"
	"github.com/pdiddy/kanapdf/internal/pdfdoc/pdfdoctest"
)

func TestImagesToPDF(t *testing.T) {
	data := pdfdoctest.NoisePDF(t, 3, 16)

	n, err := pdfdoc.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	err = pdfdoc.ImagesToPDF(nil, &bytes.Buffer{})
	require.Error(t, err)
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	pdfdoctest.WriteFile(t, a, 2)
	pdfdoctest.WriteFile(t, b, 3)

	var out bytes.Buffer
	require.NoError(t, pdfdoc.MergeFiles([]string{a, b}, &out))

	n, err := pdfdoc.PageCount(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestMergeFilesErrors(t *testing.T) {
	err := pdfdoc.MergeFiles(nil, &bytes.Buffer{})
	require.Error(t, err)

	err = pdfdoc.MergeFiles([]string{filepath.Join(t.TempDir(), "missing.pdf")}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.pdf")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	pdfdoctest.WriteFile(t, good, 1)
	require.NoError(t, pdfdoc.Validate(good))

	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf"), 0o644))
	err := pdfdoc.Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.pdf")
}

func TestDocumentSerialize(t *testing.T) {
	doc, err := pdfdoc.LoadBytes(pdfdoctest.NoisePDF(t, 4, 32))
	require.NoError(t, err)
	require.Equal(t, 4, doc.PageCount())

	tests := []struct {
		name      string
		from, to  int
		wantPages int
		wantErr   bool
	}{
		{name: "first page", from: 0, to: 1, wantPages: 1},
		{name: "middle range", from: 1, to: 3, wantPages: 2},
		{name: "all pages", from: 0, to: 4, wantPages: 4},
		{name: "empty range", from: 2, to: 2, wantErr: true},
		{name: "past end", from: 3, to: 5, wantErr: true},
		{name: "negative start", from: -1, to: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := doc.Serialize(tt.from, tt.to)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			n, err := pdfdoc.PageCount(data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPages, n)
		})
	}
}

func TestSerializeKeepsPageOrder(t *testing.T) {
	data := pdfdoctest.NoisePDF(t, 5, 24)
	want := pdfdoctest.PageDigests(t, data)

	doc, err := pdfdoc.LoadBytes(data)
	require.NoError(t, err)

	var got []string
	for _, r := range [][2]int{{0, 2}, {2, 3}, {3, 5}} {
		part, err := doc.Serialize(r[0], r[1])
		require.NoError(t, err)
		got = append(got, pdfdoctest.PageDigests(t, part)...)
	}
	assert.Equal(t, want, got)
	assert.Len(t, want, 5)
}

func TestSerializeSizeGrowsWithNoisePages(t *testing.T) {
	doc, err := pdfdoc.LoadBytes(pdfdoctest.NoisePDF(t, 3, 64))
	require.NoError(t, err)

	one, err := doc.Serialize(0, 1)
	require.NoError(t, err)
	three, err := doc.Serialize(0, 3)
	require.NoError(t, err)

	assert.Greater(t, len(three), 2*len(one)-1024)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := pdfdoc.LoadFile(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
}
