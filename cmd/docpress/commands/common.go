// Package commands holds the kong command tree of the docpress binary.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docpress/internal/build"
	"git.home.luguber.info/inful/docpress/internal/config"
	"git.home.luguber.info/inful/docpress/internal/deploy"
	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/history"
	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/logging"
	"git.home.luguber.info/inful/docpress/internal/metrics"
	"git.home.luguber.info/inful/docpress/internal/notify"
)

// Global is shared state handed to every command.
type Global struct {
	Logger *slog.Logger
	// Stdout receives user-facing summaries. Defaults to os.Stdout.
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging (per-artifact progress)"`
	JSONLog bool             `name:"json-log" help:"Emit logs as JSON lines"`
	Threads *int             `short:"t" help:"Worker threads (1-20); overrides the configuration"`
	DryRun  bool             `short:"n" name:"dry-run" help:"Log filesystem changes instead of performing them"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Rebuild the whole site from scratch"`
	Add     AddCmd     `cmd:"" help:"Publish only new articles (incremental build)"`
	Init    InitCmd    `cmd:"" help:"Create an example site layout"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild incrementally whenever the source directory changes"`
	History HistoryCmd `cmd:"" help:"Show recent builds from the history database"`

	logger *slog.Logger
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	c.logger = logging.New(logging.Options{
		Writer:  os.Stderr,
		Verbose: c.Verbose,
		JSON:    c.JSONLog,
	})
	slog.SetDefault(c.logger)
	return nil
}

// Logger returns the process logger, creating it if AfterApply has not run.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		_ = c.AfterApply()
	}
	return c.logger
}

// loadConfig loads the configuration and applies flag overrides.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	// nil when the flag is absent; an explicit value, 0 included, goes to Validate.
	if root.Threads != nil {
		cfg.Threads = *root.Threads
	}
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// pipeline is a build service wired to the side channels the configuration
// enables. close releases them and writes the metrics textfile.
type pipeline struct {
	service  *build.DefaultService
	recorder *metrics.PrometheusRecorder
	store    *history.SQLiteStore
	notifier notify.Notifier
	cfg      *config.Config
	logger   *slog.Logger
}

// newPipeline never fails on side channels: an unreachable NATS server or
// an unopenable history database is logged and skipped.
func newPipeline(g *Global, cfg *config.Config, dryRun bool) *pipeline {
	p := &pipeline{cfg: cfg, logger: g.Logger, notifier: notify.Noop{}}
	opts := []build.Option{build.WithLogger(g.Logger)}

	if cfg.MetricsFile != "" {
		p.recorder = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, build.WithRecorder(p.recorder))
	}
	if cfg.HistoryDB != "" && !dryRun {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			g.Logger.Warn("History disabled", logfields.Path(cfg.HistoryDB), logfields.Error(err))
		} else {
			p.store = store
			opts = append(opts, build.WithHistory(store))
		}
	}
	if cfg.Notify.NATSURL != "" && !dryRun {
		n, err := notify.NewNATS(cfg.Notify.NATSURL, cfg.Notify.Subject, g.Logger)
		if err != nil {
			g.Logger.Warn("Build notifications disabled", slog.String("url", cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			p.notifier = n
			opts = append(opts, build.WithNotifier(n))
		}
	}

	p.service = build.NewService(opts...)
	return p
}

func (p *pipeline) run(ctx context.Context, mode deploy.Mode, prune, dryRun bool) (*build.Report, error) {
	rep, err := p.service.Run(ctx, build.Request{
		Config: p.cfg,
		Mode:   mode,
		Prune:  prune,
		DryRun: dryRun,
	})
	p.flushMetrics()
	return rep, err
}

func (p *pipeline) flushMetrics() {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.WriteTextfile(p.cfg.MetricsFile); err != nil {
		p.logger.Warn("Failed to write metrics", logfields.Path(p.cfg.MetricsFile), logfields.Error(derrors.ExternalFailed("metrics", err)))
	}
}

func (p *pipeline) close() {
	p.notifier.Close()
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.logger.Warn("Failed to close history database", logfields.Error(err))
		}
	}
}

// printReport writes a one-line summary for humans.
func printReport(w io.Writer, rep *build.Report) {
	if rep == nil || rep.Status == build.StatusFailed {
		return
	}
	prefix := ""
	if rep.DryRun {
		prefix = "[dry-run] "
	}
	if rep.Status == build.StatusNoop {
		_, _ = fmt.Fprintf(w, "%sNothing new to publish (newest: %s)\n", prefix, rep.Newest)
		return
	}
	_, _ = fmt.Fprintf(w, "%s%s build %s: %d published, %d failed, %d empty, %d stale removed in %s\n",
		prefix, rep.Mode, rep.Status, rep.Published, rep.Failed, rep.Empty, rep.StaleRemoved, rep.Duration.Round(1e6))
}

// runPipeline is shared by build and add.
func runPipeline(g *Global, root *CLI, mode deploy.Mode, prune bool) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	p := newPipeline(g, cfg, root.DryRun)
	defer p.close()

	rep, err := p.run(ctx, mode, prune, root.DryRun)
	if err != nil {
		return err
	}
	printReport(g.stdout(), rep)
	return nil
}
