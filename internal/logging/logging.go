// Package logging builds the slog loggers used across the harness. Records
// are rendered by a charmbracelet/log handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// Prefix tags every line written by New.
const Prefix = "txsandbox"

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("logging: %w", err)
	}
	return slog.Level(lvl), nil
}

// New returns a logger writing to w at level. A nil w writes to stderr.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           log.Level(level),
		Prefix:          Prefix,
		ReportTimestamp: level <= slog.LevelDebug,
		TimeFormat:      "15:04:05.000",
	})
	return slog.New(handler)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// TestLogger returns a debug logger prefixed with the test name.
//
// By default it discards output unless `go test -v` is used.
func TestLogger(t testing.TB) *slog.Logger {
	t.Helper()

	var out io.Writer = io.Discard
	if testing.Verbose() {
		out = os.Stderr
	}

	return slog.New(log.NewWithOptions(out, log.Options{
		Level:  log.DebugLevel,
		Prefix: t.Name(),
	}))
}
