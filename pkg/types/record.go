// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the kanapdf pipeline:
// stage configuration, per-file status records, output descriptions, and
// bank-account extraction results.
package types

import (
	"strings"
	"time"
)

// FileStatus is the processing state of a scanned input file. Values are the
// labels written to the status log.
type FileStatus string

const (
	StatusPending   FileStatus = "未結合"
	StatusScheduled FileStatus = "結合予定"
	StatusMerged    FileStatus = "結合済"
	statusError     FileStatus = "エラー"
)

// ErrorStatus returns the status label for a file that failed to merge.
func ErrorStatus(err error) FileStatus {
	return FileStatus(string(statusError) + ": " + err.Error())
}

// IsError reports whether s records a failure.
func (s FileStatus) IsError() bool {
	return strings.HasPrefix(string(s), string(statusError))
}

// NoRow is the row label of a file that matched no kana row.
const NoRow = "なし"

// FileRecord tracks one input PDF through the combine stage.
type FileRecord struct {
	// Path is the file path as found during the scan.
	Path string `json:"path" yaml:"path"`

	// Status is the current processing state.
	Status FileStatus `json:"status" yaml:"status"`

	// Row is the kana row name, or NoRow.
	Row string `json:"row" yaml:"row"`
}

// OutputFile describes one PDF written by the combine or split stages.
type OutputFile struct {
	// Path is the written file.
	Path string `json:"path" yaml:"path"`

	// Row is the kana row the file was built from, if any.
	Row string `json:"row,omitempty" yaml:"row,omitempty"`

	// Part is the 1-based part number when the file is one piece of a split,
	// zero otherwise.
	Part int `json:"part" yaml:"part"`

	// Pages is the page count of the file.
	Pages int `json:"pages" yaml:"pages"`

	// Bytes is the file size.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// BankRecord holds the fields extracted from one PDF by the bank stage.
type BankRecord struct {
	// File is the source PDF path.
	File string `json:"file" yaml:"file"`

	// Page is the 1-based page the regions were read from.
	Page int `json:"page" yaml:"page"`

	BankCode      string `json:"bank_code" yaml:"bank_code"`
	BranchCode    string `json:"branch_code" yaml:"branch_code"`
	AccountNumber string `json:"account_number" yaml:"account_number"`

	// Status is "ok", "partial", or "error: <message>".
	Status string `json:"status" yaml:"status"`
}

// Run summarizes one recorded pipeline run.
type Run struct {
	ID         int64     `json:"id" yaml:"id"`
	Command    string    `json:"command" yaml:"command"`
	InputDir   string    `json:"input_dir" yaml:"input_dir"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Failed     int       `json:"failed" yaml:"failed"`
}
