// Package cli implements the photonkit command-line interface.
//
// Commands build cells from the generator registry, inspect the layer
// table and cross-sections of a PDK, extract netlists, guard geometry with
// reference digests and serve the catalog over HTTP. The CLI is built with
// cobra; status output is styled with lipgloss and diagnostics go through
// charmbracelet/log.
//
// # Commands
//
//   - build: build one factory and export its flattened layout
//   - list, layers: show factories, cross-sections and layers
//   - netlist: extract connectivity as JSON, DOT or SVG
//   - difftest: compare builds against stored geometry digests
//   - serve: run the HTTP server
//   - browse: pick a factory interactively
//   - cache: manage the reference store directory
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps filtered at
// level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of one operation.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "built mzi (12ms)".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
