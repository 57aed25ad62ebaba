// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	// Init creates models/ for the face detector files.
	photo := cfg.Combine.Split.Photo
	assert.Equal(t, "models", filepath.Dir(photo.Prototxt))
	assert.Equal(t, "models", filepath.Dir(photo.Model))
	assert.Equal(t, "deploy.prototxt", filepath.Base(photo.Prototxt))

	assert.Equal(t, DefaultSizeLimit, cfg.Combine.Split.LimitBytes)
	require.NoError(t, cfg.Combine.Validate())
	require.NoError(t, cfg.Bank.Validate())

	photo.Enabled = true
	cfg.Combine.Split.Photo = photo
	require.NoError(t, cfg.Combine.Validate())
}

func TestCombineConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CombineConfig)
	}{
		{"no input", func(c *CombineConfig) { c.InputDir = "" }},
		{"log format", func(c *CombineConfig) { c.LogFormat = "pdf" }},
		{"resize dpi", func(c *CombineConfig) { c.Resize.Enabled, c.Resize.DPI = true, 0 }},
		{"photo confidence", func(c *CombineConfig) { c.Split.Photo.Enabled, c.Split.Photo.Confidence = true, 1 }},
		{"photo dpi", func(c *CombineConfig) { c.Split.Photo.Enabled, c.Split.Photo.DPI = true, -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPipelineConfig().Combine
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBankConfigValidate(t *testing.T) {
	cfg := DefaultPipelineConfig().Bank
	cfg.Backend = "easyocr"
	assert.Error(t, cfg.Validate())

	cfg = DefaultPipelineConfig().Bank
	cfg.Format = "json"
	assert.Error(t, cfg.Validate())

	cfg = DefaultPipelineConfig().Bank
	cfg.Jobs = 0
	assert.Error(t, cfg.Validate())
}
