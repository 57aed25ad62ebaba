// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split cuts a PDF into consecutive parts that each fit under a byte
// ceiling.
//
// PDF compression is not additive: shared resources, object streams, and
// font subsets make the size of a page range impossible to predict from the
// sizes of its pages. The packer therefore re-serializes the tentative part
// after every page it adds and compares the real byte count to the ceiling.
package split

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/kanapdf/internal/pdfdoc"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// ErrNoPages is returned when there is nothing to write.
var ErrNoPages = errors.New("document has no pages")

// Oracle reports the serialized size of page ranges. pdfdoc.Document
// satisfies it.
type Oracle interface {
	PageCount() int
	// Serialize returns pages [from, to) as a standalone PDF.
	Serialize(from, to int) ([]byte, error)
}

// Part is the half-open page range [From, To) of one output file.
type Part struct {
	From int
	To   int
	Size int
}

// Pages returns the number of pages in the part.
func (p Part) Pages() int { return p.To - p.From }

// PhotoFunc marks the photo pages of a document. It is only called when the
// document has to be split.
type PhotoFunc func(data []byte, pages int) ([]bool, error)

// Plan packs the oracle's pages greedily into parts no larger than ceiling
// bytes. A page that alone exceeds the ceiling becomes a part of its own.
//
// When photo is non-nil it must have one entry per page. A part that fills
// up is then cut right before its last photo page (never its first page), so
// the next part opens on a photo. Pages are never dropped: the parts cover
// [0, PageCount()) in order.
func Plan(o Oracle, ceiling int, photo []bool) ([]Part, error) {
	n := o.PageCount()
	if photo != nil && len(photo) != n {
		return nil, fmt.Errorf("photo marks cover %d pages, document has %d", len(photo), n)
	}

	var parts []Part
	start := 0
	for start < n {
		// sizes[k] is the measured size of [start, start+k+1).
		var sizes []int
		end := start
		overflow := 0
		for end < n {
			data, err := o.Serialize(start, end+1)
			if err != nil {
				return nil, fmt.Errorf("measuring pages %d-%d: %w", start+1, end+1, err)
			}
			if len(data) > ceiling {
				overflow = len(data)
				break
			}
			sizes = append(sizes, len(data))
			end++
		}

		if end == start {
			parts = append(parts, Part{From: start, To: start + 1, Size: overflow})
			start++
			continue
		}

		if end < n && photo != nil && !photo[end] {
			if cut := lastPhoto(photo, start+1, end); cut > 0 {
				end = cut
			}
		}

		parts = append(parts, Part{From: start, To: end, Size: sizes[end-start-1]})
		start = end
	}
	return parts, nil
}

// lastPhoto returns the index of the last photo page in [lo, hi), or -1.
func lastPhoto(photo []bool, lo, hi int) int {
	for i := hi - 1; i >= lo; i-- {
		if photo[i] {
			return i
		}
	}
	return -1
}

// PartPath returns the file name of part k (1-based) of basePath:
// "dir/name.pdf" becomes "dir/name-k.pdf".
func PartPath(basePath string, k int) string {
	ext := filepath.Ext(basePath)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(basePath, ext), k, ext)
}

// Write serializes each part and writes it next to basePath. A status line
// per file goes to w.
func Write(o Oracle, parts []Part, basePath string, w io.Writer) ([]types.OutputFile, error) {
	if len(parts) == 0 {
		return nil, ErrNoPages
	}

	out := make([]types.OutputFile, 0, len(parts))
	for k, p := range parts {
		data, err := o.Serialize(p.From, p.To)
		if err != nil {
			return out, fmt.Errorf("serializing part %d: %w", k+1, err)
		}
		path := PartPath(basePath, k+1)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return out, fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(w, "  wrote: %s (pages %d-%d, %d bytes)\n", filepath.Base(path), p.From+1, p.To, len(data))
		out = append(out, types.OutputFile{
			Path:  path,
			Part:  k + 1,
			Pages: p.Pages(),
			Bytes: int64(len(data)),
		})
	}
	return out, nil
}

// WriteOrSplit writes data to basePath unchanged when it fits under ceiling
// (or ceiling is not positive). Otherwise it plans parts, aligned to photo
// pages when photo is non-nil, and writes them as basePath-1, basePath-2, ...
func WriteOrSplit(data []byte, basePath string, ceiling int, photo PhotoFunc, w io.Writer) ([]types.OutputFile, error) {
	if ceiling <= 0 || len(data) <= ceiling {
		pages, err := pdfdoc.PageCount(data)
		if err != nil {
			return nil, err
		}
		if pages == 0 {
			return nil, ErrNoPages
		}
		if err := os.WriteFile(basePath, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", basePath, err)
		}
		fmt.Fprintf(w, "  wrote: %s (%d pages, %d bytes)\n", filepath.Base(basePath), pages, len(data))
		return []types.OutputFile{{Path: basePath, Pages: pages, Bytes: int64(len(data))}}, nil
	}

	doc, err := pdfdoc.Load(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if doc.PageCount() == 0 {
		return nil, ErrNoPages
	}

	var marks []bool
	if photo != nil {
		marks, err = photo(data, doc.PageCount())
		if err != nil {
			return nil, fmt.Errorf("detecting photo pages: %w", err)
		}
	}

	parts, err := Plan(doc, ceiling, marks)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "  splitting %s: %d bytes into %d parts (limit %d)\n",
		filepath.Base(basePath), len(data), len(parts), ceiling)
	return Write(doc, parts, basePath, w)
}
