package commands

import (
	"context"
	"regexp"
	"time"

	"git.home.luguber.info/inful/docpress/internal/deploy"
	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce     time.Duration `help:"Quiet period after the last change before building" default:"2s"`
	RebuildEvery time.Duration `name:"rebuild-every" help:"Run a full rebuild at this interval (0 disables)" default:"0s"`
	Prune        bool          `short:"p" help:"Remove stale artifacts during incremental builds"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	// fail fast instead of logging the same error on every change
	if err := cfg.Validate(); err != nil {
		return err
	}
	ignore, err := regexp.Compile(cfg.IgnorePattern)
	if err != nil {
		return derrors.ValidationFailed("ignore_pattern", err.Error())
	}

	ctx, cancel := signalContext()
	defer cancel()

	p := newPipeline(g, cfg, root.DryRun)
	defer p.close()

	buildFn := func(ctx context.Context, mode deploy.Mode) error {
		rep, err := p.run(ctx, mode, w.Prune && mode == deploy.ModeIncremental, root.DryRun)
		printReport(g.stdout(), rep)
		return err
	}

	watcher, err := watch.New(buildFn, watch.Options{
		SourceDir:    cfg.SourceDir,
		Ignore:       ignore,
		Debounce:     w.Debounce,
		RebuildEvery: w.RebuildEvery,
		Logger:       g.Logger,
	})
	if err != nil {
		return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "cannot watch source directory").
			WithContext("source_dir", cfg.SourceDir)
	}
	return watcher.Run(ctx)
}
