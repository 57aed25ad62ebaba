// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kanapdf/internal/ocr"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	assert.Equal(t, 1, p.Page)
	require.Len(t, p.Fields, 3)

	patterns := map[string]string{}
	for _, f := range p.Fields {
		patterns[f.Name] = f.Pattern
		assert.NotNil(t, f.re)
	}
	assert.Equal(t, map[string]string{
		FieldBankCode:      `(\d{4})`,
		FieldBranchCode:    `(\d{3})`,
		FieldAccountNumber: `(\d{7})`,
	}, patterns)
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile([]byte(`
fields:
  - name: account_number
    pattern: '(\d{7})'
    region: {x: 100, y: 200, width: 600, height: 80, unit: px}
  - name: bank_code
    pattern: '\d{4}'
    region: {x: 0.1, y: 0.1, width: 0.2, height: 0.05}
`))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.InDelta(t, 300.0, p.DPI, 1e-9)
	assert.Equal(t, []string{"jpn", "eng"}, p.Languages)
	require.Len(t, p.Fields, 2)
	assert.Equal(t, UnitPixel, p.Fields[0].Region.Unit)
	assert.Equal(t, UnitRatio, p.Fields[1].Region.Unit, "unit defaults to ratio")
}

func TestParseProfileErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"not yaml", "fields: [", "parsing profile"},
		{"no fields", "page: 1", "no fields"},
		{"negative page", "page: -1\nfields: [{name: bank_code, pattern: x, region: {width: 1, height: 1}}]", "page must be at least 1"},
		{"unknown field", "fields: [{name: iban, pattern: x, region: {width: 1, height: 1}}]", `unknown field "iban"`},
		{"duplicate", "fields: [{name: bank_code, pattern: x, region: {width: 1, height: 1}}, {name: bank_code, pattern: y, region: {width: 1, height: 1}}]", "defined twice"},
		{"bad unit", "fields: [{name: bank_code, pattern: x, region: {unit: mm, width: 1, height: 1}}]", "unknown region unit"},
		{"no area", "fields: [{name: bank_code, pattern: x, region: {width: 0, height: 1}}]", "no area"},
		{"empty pattern", "fields: [{name: bank_code, region: {width: 1, height: 1}}]", "pattern is required"},
		{"bad regex", "fields: [{name: bank_code, pattern: '(', region: {width: 1, height: 1}}]", "bank_code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProfile([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dpi: 200\nfields: [{name: branch_code, pattern: '\\d{3}', region: {width: 0.5, height: 0.5}}]\n"), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, p.DPI, 1e-9)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRegionPixels(t *testing.T) {
	ratio := Region{Unit: UnitRatio, X: 0.1, Y: 0.5, Width: 0.5, Height: 0.25}
	assert.Equal(t, ocr.Region{X: 100, Y: 1000, Width: 500, Height: 500}, ratio.Pixels(1000, 2000))

	px := Region{Unit: UnitPixel, X: 10, Y: 20, Width: 30, Height: 40}
	assert.Equal(t, ocr.Region{X: 10, Y: 20, Width: 30, Height: 40}, px.Pixels(1000, 2000))
}
