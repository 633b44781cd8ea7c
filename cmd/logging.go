package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/sadopc/playtime/internal/config"
)

// setupLogger builds the process logger. When cfg.File is set the returned
// closer owns the opened file.
func setupLogger(cfg config.LoggingConfig, out io.Writer) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var closer io.Closer
	noColor := false
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closer = f
		noColor = true
	}

	if cfg.Format == "text" {
		out = zerolog.ConsoleWriter{Out: out, NoColor: noColor}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer, nil
}
