package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	clog "github.com/charmbracelet/log"
)

// newLogger builds the process logger. Output goes to app.log_file when
// set, otherwise to fallback. The json format uses slog's JSON handler;
// text uses charmbracelet/log.
func newLogger(cfg ApplicationConfig, fallback io.Writer) (*slog.Logger, func() error, error) {
	out := fallback
	closeFn := func() error { return nil }
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, f.Close
	}

	var h slog.Handler
	switch cfg.LogFormat {
	case LogFormatText:
		// charmbracelet/log levels share slog's numeric values.
		h = clog.NewWithOptions(out, clog.Options{
			ReportTimestamp: true,
			Level:           clog.Level(cfg.LogLevel),
		})
	default:
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel})
	}
	return slog.New(h), closeFn, nil
}
