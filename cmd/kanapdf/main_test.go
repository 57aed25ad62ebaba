// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kanapdf/pkg/types"
)

func TestPDFArgs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "B.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))
	single := filepath.Join(t.TempDir(), "one.pdf")
	require.NoError(t, os.WriteFile(single, nil, 0o644))

	paths, err := pdfArgs([]string{single, dir})
	require.NoError(t, err)
	assert.Equal(t, []string{single, filepath.Join(dir, "B.PDF"), filepath.Join(dir, "a.pdf")}, paths)

	_, err = pdfArgs([]string{filepath.Join(dir, "missing.pdf")})
	require.Error(t, err)

	_, err = pdfArgs([]string{t.TempDir()})
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "kanapdf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
combine:
  prefix: 名簿
  log_format: csv
  split:
    limit_bytes: 1024
    photo:
      confidence: 0.5
bank:
  timeout: 5s
  jobs: 4
`), 0o644))

	viper.Reset()
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig()
	require.NoError(t, err)

	want := types.DefaultPipelineConfig()
	want.Combine.Prefix = "名簿"
	want.Combine.LogFormat = types.LogCSV
	want.Combine.Split.LimitBytes = 1024
	want.Combine.Split.Photo.Confidence = 0.5
	want.Bank.Timeout = 5e9
	want.Bank.Jobs = 4
	assert.Equal(t, want, cfg)
}
