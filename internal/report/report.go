// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the status log of the combine stage and the result
// table of the bank stage as text, CSV, or Excel.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/kanapdf/pkg/types"
)

const sheet = "Sheet1"

// Status log column headers.
var statusHeader = []string{"ファイルパス", "状態", "分類"}

// Bank table column headers.
var bankHeader = []string{"file", "page", "bank_code", "branch_code", "account_number", "status"}

// StatusLogName returns the log file name for an output directory: the
// directory's base name followed by ログ and the format's extension.
func StatusLogName(outputDir string, format types.LogFormat) string {
	return filepath.Base(filepath.Clean(outputDir)) + "ログ." + string(format)
}

// WriteStatusLog writes one row per record to path.
func WriteStatusLog(records []types.FileRecord, path string, format types.LogFormat) error {
	switch format {
	case types.LogText:
		return writeText(records, path)
	case types.LogCSV:
		return writeCSV(path, statusHeader, statusRows(records))
	case types.LogXLSX:
		return writeXLSX(path, statusHeader, statusRows(records))
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
}

// WriteBankRecords writes the extracted bank fields to path.
func WriteBankRecords(records []types.BankRecord, path string, format types.OutputFormat) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		page := ""
		if r.Page > 0 {
			page = strconv.Itoa(r.Page)
		}
		rows = append(rows, []string{r.File, page, r.BankCode, r.BranchCode, r.AccountNumber, r.Status})
	}

	switch format {
	case types.OutputCSV:
		return writeCSV(path, bankHeader, rows)
	case types.OutputXLSX:
		return writeXLSX(path, bankHeader, rows)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func statusRows(records []types.FileRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Path, string(r.Status), r.Row})
	}
	return rows
}

func writeText(records []types.FileRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, r := range records {
		fmt.Fprintf(bw, "%s: %s\n", r.Path, r.Status)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	// Excel only detects UTF-8 CSV with a byte order mark.
	if _, err := f.WriteString("\ufeff"); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeXLSX(path string, header []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("writing row %d: %w", n, err)
	}
	return nil
}
