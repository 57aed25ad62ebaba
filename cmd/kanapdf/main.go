// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the kanapdf CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/kanapdf/internal/ledger"
	"github.com/pdiddy/kanapdf/internal/logx"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the kanapdf CLI.
var rootCmd = &cobra.Command{
	Use:   "kanapdf",
	Short: "Sort, merge, and split scanned PDFs by kana row",
	Long: `kanapdf batches scanned PDF documents. It groups files by the kana row
of their file names, merges each row into one PDF, optionally normalizes the
pages to A4, and splits anything larger than the upload limit. It can also read
bank account numbers from scanned forms with OCR.

Each stage is a subcommand: combine, resize, split, and ocr. Every run is
recorded in a local ledger that the history command reads back.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./kanapdf.yaml or ~/.config/kanapdf/kanapdf.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("ledger-dir", types.DefaultPipelineConfig().Ledger.Dir, "run history directory; empty disables the ledger")
	bindFlag(rootCmd.PersistentFlags(), "ledger.dir", "ledger-dir")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("kanapdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "kanapdf"))
		}
	}

	viper.SetEnvPrefix("KANAPDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlag ties a flag to a config key so that an explicit flag wins over the
// config file and the environment.
func bindFlag(fs *pflag.FlagSet, key, flag string) {
	if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

// bindFlags binds a command's local flags. Several commands share config
// keys, so binding happens when a command runs rather than at init.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		bindFlag(cmd.Flags(), key, flag)
	}
}

// loadConfig overlays the config file, environment, and bound flags onto the
// built-in defaults.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	})
	if err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logx.NewLogger(os.Stderr, level)
}

// openLedger opens the run history, or returns nil when it is disabled or
// cannot be opened. A broken ledger never stops a run.
func openLedger(cfg types.LedgerConfig, log zerolog.Logger) *ledger.Store {
	if cfg.Dir == "" {
		return nil
	}
	store, err := ledger.Open(cfg.Dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.Dir).Msg("ledger unavailable; run will not be recorded")
		return nil
	}
	return store
}

// pdfArgs expands directory arguments to the PDFs directly inside them.
func pdfArgs(args []string) ([]string, error) {
	var paths []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, a)
			continue
		}
		entries, err := os.ReadDir(a)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				paths = append(paths, filepath.Join(a, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PDF files given")
	}
	return paths, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
