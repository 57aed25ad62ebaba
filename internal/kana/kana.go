// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kana maps file names to the ten rows of the Japanese syllabary
// (ア行 through ワ行) and orders names by their normalized form.
package kana

import (
	"path/filepath"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Row is one of the ten kana rows. The zero value is ア行.
type Row int

const (
	RowA Row = iota
	RowKa
	RowSa
	RowTa
	RowNa
	RowHa
	RowMa
	RowYa
	RowRa
	RowWa
)

var rowTable = [...]struct {
	name  string
	chars string
}{
	RowA:  {"ア行", "アイウエオ"},
	RowKa: {"カ行", "カキクケコ"},
	RowSa: {"サ行", "サシスセソ"},
	RowTa: {"タ行", "タチツテト"},
	RowNa: {"ナ行", "ナニヌネノ"},
	RowHa: {"ハ行", "ハヒフヘホ"},
	RowMa: {"マ行", "マミムメモ"},
	RowYa: {"ヤ行", "ヤユヨ"},
	RowRa: {"ラ行", "ラリルレロ"},
	RowWa: {"ワ行", "ワヲン"},
}

// Rows returns every row in syllabary order.
func Rows() []Row {
	rows := make([]Row, len(rowTable))
	for i := range rowTable {
		rows[i] = Row(i)
	}
	return rows
}

// String returns the row name, e.g. "カ行".
func (r Row) String() string {
	if r < 0 || int(r) >= len(rowTable) {
		return "?"
	}
	return rowTable[r].name
}

// Chars returns the katakana that belong to the row.
func (r Row) Chars() string {
	if r < 0 || int(r) >= len(rowTable) {
		return ""
	}
	return rowTable[r].chars
}

// ParseRow returns the row with the given name.
func ParseRow(name string) (Row, bool) {
	for i, entry := range rowTable {
		if entry.name == name {
			return Row(i), true
		}
	}
	return 0, false
}

// rowOf indexes every row character.
var rowOf = func() map[rune]Row {
	m := make(map[rune]Row)
	for i, entry := range rowTable {
		for _, c := range entry.chars {
			m[c] = Row(i)
		}
	}
	return m
}()

// Normalize returns the NFKC form of s. Half-width katakana become full-width
// and full-width ASCII becomes ASCII.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}

// Classifier assigns file names to rows by their first character.
type Classifier struct {
	// FoldVoiced strips voiced and semi-voiced marks before lookup.
	FoldVoiced bool

	// FoldHiragana maps hiragana to katakana before lookup.
	FoldHiragana bool
}

// Either fold also maps small kana to their full-size form.
var smallKana = map[rune]rune{
	'ァ': 'ア', 'ィ': 'イ', 'ゥ': 'ウ', 'ェ': 'エ', 'ォ': 'オ',
	'ッ': 'ツ', 'ャ': 'ヤ', 'ュ': 'ユ', 'ョ': 'ヨ', 'ヮ': 'ワ',
	'ヵ': 'カ', 'ヶ': 'ケ',
}

// Classify returns the row of the first character of name. The character is
// NFKC-normalized first. ok is false for empty names and characters outside
// the ten rows.
func (c Classifier) Classify(name string) (row Row, ok bool) {
	first, size := utf8.DecodeRuneInString(name)
	if size == 0 || first == utf8.RuneError {
		return 0, false
	}
	ch, _ := utf8.DecodeRuneInString(Normalize(string(first)))

	if c.FoldHiragana {
		ch = toKatakana(ch)
	}
	if c.FoldVoiced || c.FoldHiragana {
		if large, small := smallKana[ch]; small {
			ch = large
		}
	}
	if c.FoldVoiced {
		ch = stripVoicing(ch)
	}

	row, ok = rowOf[ch]
	return row, ok
}

// toKatakana maps the hiragana block onto the katakana block.
func toKatakana(r rune) rune {
	if r >= 'ぁ' && r <= 'ゖ' {
		return r + ('ァ' - 'ぁ')
	}
	return r
}

// stripVoicing removes a combining dakuten or handakuten, e.g. ガ → カ.
func stripVoicing(r rune) rune {
	decomposed := norm.NFD.String(string(r))
	base, _ := utf8.DecodeRuneInString(decomposed)
	return base
}

// SortKey returns the key files are ordered by: the NFKC form of the base name.
func SortKey(path string) string {
	return Normalize(filepath.Base(path))
}

// SortPaths orders paths by SortKey, breaking ties by the full path so the
// order is deterministic across runs.
func SortPaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		ki, kj := SortKey(paths[i]), SortKey(paths[j])
		if ki != kj {
			return ki < kj
		}
		return paths[i] < paths[j]
	})
}
