package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		stderr:  os.Stderr,
	}
}

// ExitCodeFor determines the process exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	e, ok := As(err)
	if !ok {
		return 1
	}

	switch e.Category {
	case CategoryValidation:
		return 2
	case CategoryConfig:
		return 7
	case CategoryExternal:
		return 8
	case CategoryBuild, CategoryRender, CategoryFileSystem:
		return 11
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-facing display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		lines := make([]string, 0, len(joined.Unwrap()))
		for _, inner := range joined.Unwrap() {
			lines = append(lines, a.FormatError(inner))
		}
		return strings.Join(lines, "\n")
	}

	e, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return e.Error()
	}

	msg := e.Message
	if e.Category != CategoryConfig && e.Category != CategoryValidation {
		msg = fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	for _, key := range []string{"path", "field", "source_dir", "threads"} {
		if v, ok := e.Context[key]; ok {
			msg = fmt.Sprintf("%s (%s=%v)", msg, key, v)
		}
	}
	return msg
}

// Handle logs the error, prints a diagnostic and returns the exit code.
// It never exits so callers keep control of deferred cleanup.
func (a *CLIErrorAdapter) Handle(err error) int {
	if err == nil {
		return 0
	}

	a.logError(err)
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) logError(err error) {
	e, ok := As(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{slog.String("category", string(e.Category))}
	for k, v := range e.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), levelFor(e.Severity), e.Message, attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
