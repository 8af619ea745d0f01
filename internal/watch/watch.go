// Package watch rebuilds the site when the source directory changes and,
// optionally, on a fixed schedule.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docpress/internal/deploy"
	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/logging"
)

// DefaultDebounce is the quiet period after the last change before an
// incremental build starts.
const DefaultDebounce = 2 * time.Second

// BuildFunc runs one build. Watcher never calls it concurrently.
type BuildFunc func(ctx context.Context, mode deploy.Mode) error

// Options configures a Watcher.
type Options struct {
	// SourceDir is the directory to watch.
	SourceDir string
	// Ignore skips events for file names it matches.
	Ignore *regexp.Regexp
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// RebuildEvery schedules full rebuilds. Zero disables them.
	RebuildEvery time.Duration
	Logger       *slog.Logger
}

// Watcher serializes incremental builds triggered by source changes and
// scheduled full rebuilds.
type Watcher struct {
	opts    Options
	build   BuildFunc
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	buildMu sync.Mutex
	trigger chan struct{}
}

// New creates a Watcher for opts.SourceDir.
func New(build BuildFunc, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch source directory %s: %w", dir, err)
	}
	opts.SourceDir = dir

	return &Watcher{
		opts:    opts,
		build:   build,
		logger:  logger,
		watcher: fw,
		trigger: make(chan struct{}, 1),
	}, nil
}

// Run performs an initial incremental build, then reacts to changes until
// ctx is done. A running build is allowed to finish before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	w.runBuild(ctx, deploy.ModeIncremental)

	if w.opts.RebuildEvery > 0 {
		sched, err := w.schedule(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				w.logger.Warn("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	w.logger.Info("Watching for changes", logfields.Path(w.opts.SourceDir))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.debounceLoop(ctx)
	}()
	w.watchLoop(ctx)
	wg.Wait()

	// wait for an in-flight build
	w.buildMu.Lock()
	defer w.buildMu.Unlock()
	w.logger.Info("Watcher stopped")
	return nil
}

func (w *Watcher) schedule(ctx context.Context) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(w.opts.RebuildEvery),
		gocron.NewTask(w.runBuild, ctx, deploy.ModeFull),
		gocron.WithName("full-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to create periodic build job: %w", err)
	}
	sched.Start()
	w.logger.Info("Scheduled periodic full rebuild", slog.Duration("every", w.opts.RebuildEvery))
	return sched, nil
}

// watchLoop forwards relevant file system events to the debouncer.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			select {
			case w.trigger <- struct{}{}:
			default:
				// already pending
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Source watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if w.opts.Ignore != nil && w.opts.Ignore.MatchString(filepath.Base(event.Name)) {
		return false
	}
	return true
}

// debounceLoop starts an incremental build once changes have been quiet
// for the debounce period.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.trigger:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.opts.Debounce, func() {
				w.runBuild(ctx, deploy.ModeIncremental)
			})
		}
	}
}

// runBuild holds the build lock for the whole build. Errors are logged;
// watching continues.
func (w *Watcher) runBuild(ctx context.Context, mode deploy.Mode) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if err := w.build(ctx, mode); err != nil {
		w.logger.Error("Build failed", logfields.Mode(string(mode)), logfields.Error(err))
	}
}
