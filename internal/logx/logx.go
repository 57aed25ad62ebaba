// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logx builds the zerolog logger shared by all stages.
package logx

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger writing to w at the given level
// ("debug", "info", "warn", "error"). An unknown level falls back to info.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return fmt.Sprintf("%-20s", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
}

// Nop returns a logger that discards everything. Tests and library callers
// that do not care about diagnostics use it.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
