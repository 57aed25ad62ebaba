// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// DefaultSizeLimit is the byte ceiling applied to merged output (9 MiB).
const DefaultSizeLimit int64 = 9 * 1024 * 1024

// ClassifyConfig controls how file names are mapped to kana rows.
type ClassifyConfig struct {
	// FoldVoiced treats voiced and semi-voiced kana as their plain row
	// (e.g. ガ as カ行, パ as ハ行).
	FoldVoiced bool `json:"fold_voiced" yaml:"fold_voiced"`

	// FoldHiragana treats hiragana as the matching katakana.
	FoldHiragana bool `json:"fold_hiragana" yaml:"fold_hiragana"`
}

// ResizeConfig holds settings for A4 normalization.
type ResizeConfig struct {
	// Enabled turns on A4 normalization of merged output.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DPI is the rasterization density relative to the A4 page. 72 yields one
	// pixel per A4 point.
	DPI float64 `json:"dpi" yaml:"dpi"`
}

// PhotoConfig holds settings for face-detection based photo page detection.
type PhotoConfig struct {
	// Enabled turns on photo page detection before splitting.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Prototxt is the path to the Caffe network description.
	Prototxt string `json:"prototxt" yaml:"prototxt"`

	// Model is the path to the Caffe weights file.
	Model string `json:"model" yaml:"model"`

	// Confidence is the minimum detection confidence counted as a face.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// DPI is the rasterization density used for detection.
	DPI float64 `json:"dpi" yaml:"dpi"`
}

// SplitConfig holds settings for size-bounded splitting.
type SplitConfig struct {
	// LimitBytes is the maximum size of a single output file. Zero or a
	// negative value disables splitting.
	LimitBytes int64 `json:"limit_bytes" yaml:"limit_bytes"`

	// Photo configures alignment of split points to photo pages.
	Photo PhotoConfig `json:"photo" yaml:"photo"`
}

// LogFormat selects the status log output format.
type LogFormat string

const (
	LogXLSX LogFormat = "xlsx"
	LogCSV  LogFormat = "csv"
	LogText LogFormat = "txt"
)

// CombineConfig holds settings for the combine stage.
type CombineConfig struct {
	// InputDir contains one subdirectory per source folder, each holding PDFs.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir receives merged PDFs and the status log. Empty means
	// ./YYYYMMDD_output for the run date.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Prefix is prepended to every output file name. Empty means the base
	// name of InputDir.
	Prefix string `json:"prefix" yaml:"prefix"`

	// LogFormat selects the status log format.
	LogFormat LogFormat `json:"log_format" yaml:"log_format"`

	Classify ClassifyConfig `json:"classify" yaml:"classify"`
	Resize   ResizeConfig   `json:"resize" yaml:"resize"`
	Split    SplitConfig    `json:"split" yaml:"split"`
}

// OCRBackend identifies the OCR engine implementation.
type OCRBackend string

const (
	OCRTesseract OCRBackend = "tesseract"
	OCRContainer OCRBackend = "container"
)

// OCRConfig holds settings shared by OCR-based stages.
type OCRConfig struct {
	// Backend selects the OCR engine.
	Backend OCRBackend `json:"backend" yaml:"backend"`

	// Image is the container image used by the container backend.
	Image string `json:"image" yaml:"image"`

	// Timeout bounds a single recognition call. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OutputFormat selects the tabular output format of the bank stage.
type OutputFormat string

const (
	OutputCSV  OutputFormat = "csv"
	OutputXLSX OutputFormat = "xlsx"
)

// BankConfig holds settings for the bank-account extraction stage.
type BankConfig struct {
	OCRConfig `yaml:",inline"`

	// Profile is the path to a YAML region profile. Empty means the built-in
	// default profile.
	Profile string `json:"profile" yaml:"profile"`

	// Output is the path of the CSV or Excel file to write.
	Output string `json:"output" yaml:"output"`

	// Format selects the output format.
	Format OutputFormat `json:"format" yaml:"format"`

	// Jobs is the number of PDFs processed concurrently.
	Jobs int `json:"jobs" yaml:"jobs"`
}

// LedgerConfig holds settings for the run history database.
type LedgerConfig struct {
	// Dir is the directory holding kanapdf.db. Empty disables the ledger.
	Dir string `json:"dir" yaml:"dir"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Combine CombineConfig `json:"combine" yaml:"combine"`
	Bank    BankConfig    `json:"bank" yaml:"bank"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
}

// DefaultPipelineConfig returns the configuration used when neither a config
// file nor flags override a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Combine: CombineConfig{
			InputDir:  "./input_combine",
			LogFormat: LogXLSX,
			Resize: ResizeConfig{
				DPI: 72,
			},
			Split: SplitConfig{
				LimitBytes: DefaultSizeLimit,
				Photo: PhotoConfig{
					Prototxt:   "models/deploy.prototxt",
					Model:      "models/res10_300x300_ssd_iter_140000.caffemodel",
					Confidence: 0.3,
					DPI:        300,
				},
			},
		},
		Bank: BankConfig{
			OCRConfig: OCRConfig{
				Backend: OCRTesseract,
				Image:   "tesseract:latest",
				Timeout: 60 * time.Second,
			},
			Output: "bank_accounts.csv",
			Format: OutputCSV,
			Jobs:   1,
		},
		Ledger: LedgerConfig{
			Dir: ".kanapdf",
		},
	}
}

// Validate reports the first configuration value that cannot be used.
func (c CombineConfig) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	switch c.LogFormat {
	case LogXLSX, LogCSV, LogText:
	default:
		return fmt.Errorf("unsupported log format %q: use xlsx, csv, or txt", c.LogFormat)
	}
	if c.Resize.Enabled && c.Resize.DPI <= 0 {
		return fmt.Errorf("resize dpi must be positive, got %v", c.Resize.DPI)
	}
	return c.Split.Photo.validate()
}

func (p PhotoConfig) validate() error {
	if !p.Enabled {
		return nil
	}
	if p.Confidence < 0 || p.Confidence >= 1 {
		return fmt.Errorf("photo confidence must be in [0, 1), got %v", p.Confidence)
	}
	if p.DPI <= 0 {
		return fmt.Errorf("photo dpi must be positive, got %v", p.DPI)
	}
	return nil
}

// Validate reports the first configuration value that cannot be used.
func (c BankConfig) Validate() error {
	switch c.Backend {
	case OCRTesseract, OCRContainer:
	default:
		return fmt.Errorf("unsupported OCR backend %q: use tesseract or container", c.Backend)
	}
	switch c.Format {
	case OutputCSV, OutputXLSX:
	default:
		return fmt.Errorf("unsupported output format %q: use csv or xlsx", c.Format)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}
