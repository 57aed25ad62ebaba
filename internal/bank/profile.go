// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bank

import (
	"fmt"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kanapdf/internal/ocr"
)

// Field names recognized in a profile.
const (
	FieldBankCode      = "bank_code"
	FieldBranchCode    = "branch_code"
	FieldAccountNumber = "account_number"
)

// Region units.
const (
	UnitRatio = "ratio"
	UnitPixel = "px"
)

// Region locates a field on the rendered page. Ratio regions are fractions of
// the page image; px regions are pixels at the profile DPI.
type Region struct {
	Unit   string  `yaml:"unit"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Pixels converts r to pixel coordinates on an image of w×h pixels.
func (r Region) Pixels(w, h int) ocr.Region {
	if r.Unit == UnitPixel {
		return ocr.Region{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return ocr.Region{
		X:      r.X * float64(w),
		Y:      r.Y * float64(h),
		Width:  r.Width * float64(w),
		Height: r.Height * float64(h),
	}
}

// Field is one value read from a region and matched against a pattern.
type Field struct {
	Name    string `yaml:"name"`
	Region  Region `yaml:"region"`
	Pattern string `yaml:"pattern"`

	// PSM overrides the page segmentation mode for this field.
	PSM int `yaml:"psm,omitempty"`

	// Whitelist limits recognized characters for this field.
	Whitelist string `yaml:"whitelist,omitempty"`

	re *regexp.Regexp
}

// Profile describes where the fields sit on a form.
type Profile struct {
	// Page is the 1-based page holding the fields.
	Page int `yaml:"page"`

	// DPI is the rendering resolution for OCR.
	DPI float64 `yaml:"dpi"`

	// Languages are the Tesseract languages.
	Languages []string `yaml:"languages"`

	Fields []Field `yaml:"fields"`
}

const digitWhitelist = "0123456789- "

// DefaultProfile reads the three fields from the top of the first page.
func DefaultProfile() Profile {
	p := Profile{
		Page:      1,
		DPI:       300,
		Languages: []string{"jpn", "eng"},
		Fields: []Field{
			{
				Name:      FieldBankCode,
				Region:    Region{Unit: UnitRatio, X: 0.05, Y: 0.10, Width: 0.40, Height: 0.08},
				Pattern:   `(\d{4})`,
				PSM:       7,
				Whitelist: digitWhitelist,
			},
			{
				Name:      FieldBranchCode,
				Region:    Region{Unit: UnitRatio, X: 0.50, Y: 0.10, Width: 0.40, Height: 0.08},
				Pattern:   `(\d{3})`,
				PSM:       7,
				Whitelist: digitWhitelist,
			},
			{
				Name:      FieldAccountNumber,
				Region:    Region{Unit: UnitRatio, X: 0.05, Y: 0.20, Width: 0.85, Height: 0.08},
				Pattern:   `(\d{7})`,
				PSM:       7,
				Whitelist: digitWhitelist,
			},
		},
	}
	if err := p.compile(); err != nil {
		panic(err)
	}
	return p
}

// LoadProfile reads a YAML profile. Missing page, dpi, and languages take the
// default profile's values.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a YAML profile.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	def := DefaultProfile()
	if p.Page == 0 {
		p.Page = def.Page
	}
	if p.DPI == 0 {
		p.DPI = def.DPI
	}
	if len(p.Languages) == 0 {
		p.Languages = def.Languages
	}
	if err := p.compile(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p *Profile) compile() error {
	if p.Page < 1 {
		return fmt.Errorf("profile page must be at least 1, got %d", p.Page)
	}
	if p.DPI <= 0 {
		return fmt.Errorf("profile dpi must be positive, got %v", p.DPI)
	}
	if len(p.Fields) == 0 {
		return fmt.Errorf("profile has no fields")
	}
	seen := make(map[string]bool)
	for i := range p.Fields {
		f := &p.Fields[i]
		switch f.Name {
		case FieldBankCode, FieldBranchCode, FieldAccountNumber:
		default:
			return fmt.Errorf("unknown field %q: use %s, %s, or %s", f.Name, FieldBankCode, FieldBranchCode, FieldAccountNumber)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %s defined twice", f.Name)
		}
		seen[f.Name] = true

		switch f.Region.Unit {
		case "":
			f.Region.Unit = UnitRatio
		case UnitRatio, UnitPixel:
		default:
			return fmt.Errorf("field %s: unknown region unit %q", f.Name, f.Region.Unit)
		}
		if f.Region.Width <= 0 || f.Region.Height <= 0 {
			return fmt.Errorf("field %s: region has no area", f.Name)
		}

		if f.Pattern == "" {
			return fmt.Errorf("field %s: pattern is required", f.Name)
		}
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		f.re = re
	}
	return nil
}
