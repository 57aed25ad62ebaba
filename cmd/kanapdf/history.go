// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kanapdf/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded runs",
	Long: `History reads the run ledger: which files each run saw, their final
status, the outputs it wrote, and any extracted bank records.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its files and outputs as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every run as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs; 0 lists all")
	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().Bool("zstd", false, "compress the export with zstd")
	historyExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyStore() (*ledger.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Ledger.Dir == "" {
		return nil, fmt.Errorf("ledger is disabled: set --ledger-dir")
	}
	return ledger.Open(cfg.Ledger.Dir)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMMAND\tSTARTED\tFAILED\tINPUT\tOUTPUT")
	for _, r := range runs {
		started := r.StartedAt.Local().Format(time.DateTime)
		failed := strconv.Itoa(r.Failed)
		if r.FinishedAt.IsZero() {
			failed = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Command, started, failed, r.InputDir, r.OutputDir)
	}
	return tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q", args[0])
	}
	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	detail, err := store.RunDetail(cmd.Context(), id)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(detail); err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}
	return enc.Close()
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	compress, _ := cmd.Flags().GetBool("zstd")
	output, _ := cmd.Flags().GetString("output")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported export format %q: use yaml or json", format)
	}

	store, err := historyStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if format == "json" {
		err = store.ExportJSON(cmd.Context(), w, compress)
	} else {
		err = store.ExportYAML(cmd.Context(), w, compress)
	}
	if err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "exported: %s\n", output)
	}
	return nil
}
