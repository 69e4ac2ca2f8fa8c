// Package cli implements the zigzag command-line interface.
//
// This package provides commands for generating ZigZag graphs, inspecting
// parents, encoding sectors and serving parent queries. The CLI is built
// using cobra and logs through the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Build (or load from the cache) the DRG and expander graph
//   - parents: Print the parents of a node on a layer
//   - replicate: Encode a sector file layer by layer
//   - render: Draw a layer as a node-link diagram
//   - verify: Check a graph's structural invariants
//   - serve: Answer parent queries over HTTP
//   - cache, config: Manage the graph cache and inspect settings
//
// # Configuration
//
// Settings come from a TOML file (--config, or ~/.config/zigzag/config.toml
// when present). Flags override the file.
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

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one step of a command.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the time elapsed since newProgress.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
