// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/kanapdf/internal/bank"
	"github.com/pdiddy/kanapdf/internal/ocr"
	ocrcontainer "github.com/pdiddy/kanapdf/internal/ocr/container"
	"github.com/pdiddy/kanapdf/internal/ocr/tesseract"
	"github.com/pdiddy/kanapdf/internal/render/fitz"
	"github.com/pdiddy/kanapdf/internal/report"
	"github.com/pdiddy/kanapdf/pkg/types"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr",
	Short: "Read fields from scanned forms with OCR",
}

var ocrBankCmd = &cobra.Command{
	Use:   "bank [files or dirs...]",
	Short: "Extract bank code, branch code, and account number",
	Long: `Bank renders one page of each PDF, runs OCR over the regions named in the
profile, and writes one row per file to a CSV or Excel table. Fields the
profile pattern does not match are left empty and the row is marked partial.

The tesseract backend links libtesseract; the container backend runs the
tesseract CLI in a docker or podman image instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOCRBank,
}

func init() {
	d := types.DefaultPipelineConfig().Bank
	f := ocrBankCmd.Flags()
	f.String("backend", string(d.Backend), "OCR backend: tesseract or container")
	f.String("image", d.Image, "container image for the container backend")
	f.Duration("timeout", d.Timeout, "timeout for a single recognition call; 0 disables")
	f.String("profile", d.Profile, "YAML region profile (default: built-in)")
	f.StringP("output", "o", d.Output, "output table path")
	f.String("format", string(d.Format), "output format: csv or xlsx")
	f.Int("jobs", d.Jobs, "files processed concurrently")

	ocrCmd.AddCommand(ocrBankCmd)
	rootCmd.AddCommand(ocrCmd)
}

func runOCRBank(cmd *cobra.Command, args []string) error {
	bindFlags(cmd, map[string]string{
		"bank.backend": "backend",
		"bank.image":   "image",
		"bank.timeout": "timeout",
		"bank.profile": "profile",
		"bank.output":  "output",
		"bank.format":  "format",
		"bank.jobs":    "jobs",
	})
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Bank.Validate(); err != nil {
		return err
	}
	paths, err := pdfArgs(args)
	if err != nil {
		return err
	}

	profile := bank.DefaultProfile()
	if cfg.Bank.Profile != "" {
		if profile, err = bank.LoadProfile(cfg.Bank.Profile); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	engine, err := newEngine(ctx, cfg.Bank.OCRConfig)
	if err != nil {
		return err
	}

	log := newLogger(cmd)
	ex := &bank.Extractor{
		Engine:   engine,
		Renderer: fitz.New(),
		Profile:  profile,
		Timeout:  cfg.Bank.Timeout,
		Log:      log,
	}

	store := openLedger(cfg.Ledger, log)
	if store != nil {
		defer store.Close()
	}
	runID := int64(0)
	if store != nil {
		if runID, err = store.BeginRun(ctx, "ocr bank", args[0], cfg.Bank.Output); err != nil {
			log.Warn().Err(err).Msg("starting ledger run")
		}
	}

	records, result, err := ex.ExtractBatch(ctx, paths, cfg.Bank.Jobs, os.Stdout)
	if err != nil {
		return err
	}
	if err := report.WriteBankRecords(records, cfg.Bank.Output, cfg.Bank.Format); err != nil {
		return err
	}
	fmt.Printf("wrote: %s (%d rows)\n", cfg.Bank.Output, len(records))

	if store != nil && runID > 0 {
		if err := store.RecordBank(ctx, runID, records); err != nil {
			log.Warn().Err(err).Msg("recording bank records in ledger")
		}
		if err := store.FinishRun(ctx, runID, result.Failed); err != nil {
			log.Warn().Err(err).Msg("finishing ledger run")
		}
	}

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed OCR", result.Failed)
	}
	return nil
}

func newEngine(ctx context.Context, cfg types.OCRConfig) (ocr.Engine, error) {
	switch cfg.Backend {
	case types.OCRContainer:
		return ocrcontainer.New(ctx, cfg.Image)
	default:
		return tesseract.New(), nil
	}
}
