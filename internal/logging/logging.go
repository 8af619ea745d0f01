// Package logging builds the process-wide log sink handed to every build
// component. Records are serialized through one mutex so concurrent
// workers never interleave partial lines.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Options configures New.
type Options struct {
	// Writer receives formatted records. Defaults to os.Stderr.
	Writer io.Writer
	// Verbose enables Debug records (per-artifact progress).
	Verbose bool
	// JSON switches the handler from logfmt-style text to JSON lines.
	JSON bool
}

// lockedWriter makes each Write call atomic with respect to the others.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// New returns a logger whose handler emits each record with a single
// mutex-guarded Write.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	sink := &lockedWriter{w: w}
	hopts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(sink, hopts)
	} else {
		h = slog.NewTextHandler(sink, hopts)
	}
	return slog.New(h)
}

// Discard returns a logger that drops everything; used as the default
// when a component is constructed without one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
