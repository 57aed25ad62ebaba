// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"go.yaml.in/yaml/v3"
)

// ExportYAML writes every run with its details to w as YAML, zstd-compressed
// when compress is set.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, compress bool) error {
	return s.export(ctx, w, compress, func(w io.Writer, v any) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	})
}

// ExportJSON writes every run with its details to w as indented JSON,
// zstd-compressed when compress is set.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, compress bool) error {
	return s.export(ctx, w, compress, func(w io.Writer, v any) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	})
}

func (s *Store) export(ctx context.Context, w io.Writer, compress bool, encode func(io.Writer, any) error) error {
	details, err := s.exportDetails(ctx)
	if err != nil {
		return err
	}

	if !compress {
		return encode(w, details)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if err := encode(zw, details); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flushing zstd stream: %w", err)
	}
	return nil
}

func (s *Store) exportDetails(ctx context.Context) ([]Detail, error) {
	runs, err := s.Runs(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	details := make([]Detail, 0, len(runs))
	for _, r := range runs {
		d, err := s.RunDetail(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}
