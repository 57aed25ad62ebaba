// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan walks the input tree and groups PDFs by kana row.
//
// The input root holds one directory per source folder; PDFs directly inside
// those folders are classified by the first character of their file name.
// Files that match no row are kept in the status records but left out of
// every group.
package scan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/kanapdf/internal/kana"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// Result holds the outcome of a scan.
type Result struct {
	// Groups maps each non-empty row to its files in merge order.
	Groups map[kana.Row][]string

	// Records lists every PDF found, in scan order.
	Records []types.FileRecord

	index map[string]int
}

// Rows returns the non-empty rows in syllabary order.
func (r *Result) Rows() []kana.Row {
	var rows []kana.Row
	for _, row := range kana.Rows() {
		if len(r.Groups[row]) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

// SetStatus updates the status of the record for path. Unknown paths are
// ignored.
func (r *Result) SetStatus(path string, status types.FileStatus) {
	if i, ok := r.index[path]; ok {
		r.Records[i].Status = status
	}
}

// Status returns the current status of path.
func (r *Result) Status(path string) (types.FileStatus, bool) {
	i, ok := r.index[path]
	if !ok {
		return "", false
	}
	return r.Records[i].Status, true
}

// Unmatched returns the number of PDFs that matched no row.
func (r *Result) Unmatched() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Row == types.NoRow {
			n++
		}
	}
	return n
}

// Scan lists the subdirectories of root and classifies every PDF inside them.
// Entries at the top level that are not directories are ignored. Per-file
// status lines go to w; the unmatched notice is also logged.
func Scan(root string, cls kana.Classifier, w io.Writer, log zerolog.Logger) (*Result, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", root, err)
	}

	res := &Result{
		Groups: make(map[kana.Row][]string),
		index:  make(map[string]int),
	}

	folders := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folders++
		folder := filepath.Join(root, entry.Name())
		log.Debug().Str("folder", entry.Name()).Msg("scanning folder")

		files, err := os.ReadDir(folder)
		if err != nil {
			return nil, fmt.Errorf("reading folder %s: %w", folder, err)
		}

		for _, f := range files {
			if f.IsDir() || !isPDF(f.Name()) {
				continue
			}
			path := filepath.Join(folder, f.Name())
			rec := types.FileRecord{
				Path:   path,
				Status: types.StatusPending,
				Row:    types.NoRow,
			}

			if row, ok := cls.Classify(f.Name()); ok {
				rec.Status = types.StatusScheduled
				rec.Row = row.String()
				res.Groups[row] = append(res.Groups[row], path)
				fmt.Fprintf(w, "classified: %s -> %s\n", f.Name(), row)
			} else {
				fmt.Fprintf(w, "unmatched:  %s\n", f.Name())
				log.Warn().Str("file", path).Msg("file name matches no kana row; skipping")
			}

			res.index[path] = len(res.Records)
			res.Records = append(res.Records, rec)
		}
	}

	for row := range res.Groups {
		kana.SortPaths(res.Groups[row])
	}

	log.Info().
		Int("folders", folders).
		Int("files", len(res.Records)).
		Int("unmatched", res.Unmatched()).
		Msg("scan complete")
	return res, nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
