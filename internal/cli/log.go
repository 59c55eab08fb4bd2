// Package cli implements the trackgrid command-line interface.
//
// Commands read grid documents (TOML or JSON), arrange them through the
// cached pipeline and write layouts or rendered artifacts. The CLI is built
// using cobra and logs via charmbracelet/log.
//
// # Commands
//
//   - arrange: Arrange a document and write its JSON layout
//   - render: Render a document or layout to SVG, PNG, DOT, JSON or text
//   - preview: Explore a document interactively in the terminal
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//   - completion: Generate shell completions, including document file names
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports the duration of every arrangement phase. Loggers are passed
// through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackgrid/pkg/document"
)

// newLogger creates the CLI logger. Lines carry the application name as a
// prefix and a timestamp to the hundredth of a second.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// gridTimer measures one arrange or render command on an input file.
type gridTimer struct {
	logger *log.Logger
	input  string
	start  time.Time
}

func startTimer(l *log.Logger, input string) *gridTimer {
	return &gridTimer{logger: l, input: input, start: time.Now()}
}

// done logs the finished layout with its grid size and the elapsed time:
//
//	arranged board.toml items=3 grid=3x2 cached=false elapsed=2ms
func (t *gridTimer) done(verb string, l document.Layout, cached bool) {
	t.logger.Info(verb+" "+t.input,
		"items", len(l.Items),
		"grid", fmt.Sprintf("%dx%d", len(l.Columns), len(l.Rows)),
		"cached", cached,
		"elapsed", time.Since(t.start).Round(time.Millisecond))
}

type loggerKey struct{}

// withLogger attaches the command logger to ctx. setup calls it before any
// command runs.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFrom returns the logger attached by withLogger. Without one, output
// is discarded.
func loggerFrom(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.New(io.Discard)
}
