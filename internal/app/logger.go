package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger on stdout. LOG_FORMAT=json selects
// machine-readable output; anything else keeps the text handler.
func NewLogger(cfg *Config) *slog.Logger {
	format := ""
	if cfg != nil {
		format = cfg.LogFormat
	}
	return slog.New(newLogHandler(os.Stdout, format))
}

func newLogHandler(w io.Writer, format string) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: true}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
