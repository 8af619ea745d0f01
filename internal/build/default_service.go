package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"regexp"
	"slices"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docpress/internal/changes"
	"git.home.luguber.info/inful/docpress/internal/deploy"
	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/fileops"
	"git.home.luguber.info/inful/docpress/internal/history"
	"git.home.luguber.info/inful/docpress/internal/indexer"
	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/logging"
	"git.home.luguber.info/inful/docpress/internal/markdown"
	"git.home.luguber.info/inful/docpress/internal/metrics"
	"git.home.luguber.info/inful/docpress/internal/notify"
	"git.home.luguber.info/inful/docpress/internal/pagetemplate"
	"git.home.luguber.info/inful/docpress/internal/publish"
	"git.home.luguber.info/inful/docpress/internal/site"
)

// sideEffectTimeout bounds history and notification calls after a build.
const sideEffectTimeout = 5 * time.Second

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	logger   *slog.Logger
	recorder metrics.Recorder
	history  history.Store
	notifier notify.Notifier
	renderer publish.Renderer
	newID    func() string
	now      func() time.Time
}

// Option configures a DefaultService.
type Option func(*DefaultService)

func WithLogger(l *slog.Logger) Option {
	return func(s *DefaultService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(s *DefaultService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithHistory records every build in store.
func WithHistory(store history.Store) Option {
	return func(s *DefaultService) { s.history = store }
}

// WithNotifier announces every finished build.
func WithNotifier(n notify.Notifier) Option {
	return func(s *DefaultService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRenderer replaces the markdown renderer.
func WithRenderer(r publish.Renderer) Option {
	return func(s *DefaultService) { s.renderer = r }
}

// WithClock sets the clock used for build timing and backup names.
func WithClock(now func() time.Time) Option {
	return func(s *DefaultService) { s.now = now }
}

// NewService creates a DefaultService with no-op side channels.
func NewService(opts ...Option) *DefaultService {
	s := &DefaultService{
		logger:   logging.Discard(),
		recorder: metrics.NoopRecorder{},
		notifier: notify.Noop{},
		renderer: markdown.New(markdown.Options{}),
		newID:    func() string { return uuid.NewString() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Service = (*DefaultService)(nil)

// Run executes one build. Configuration-class errors are returned before
// the deploy root is touched. Per-artifact failures are logged and counted
// in the report; they do not make Run return an error.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Report, error) {
	rep := &Report{
		BuildID:   s.newID(),
		Mode:      req.Mode,
		DryRun:    req.DryRun,
		StartTime: s.now(),
	}
	logger := s.logger.With(logfields.BuildID(rep.BuildID), logfields.Mode(string(req.Mode)))

	err := s.run(ctx, req, rep, logger)
	rep.EndTime = s.now()
	rep.Duration = rep.EndTime.Sub(rep.StartTime)

	switch {
	case err != nil:
		rep.Status = StatusFailed
		rep.Err = err
	case rep.Status == StatusNoop:
	case rep.Failed > 0:
		rep.Status = StatusWarning
	default:
		rep.Status = StatusSuccess
	}

	s.finish(ctx, rep, logger)
	return rep, err
}

func (s *DefaultService) run(ctx context.Context, req Request, rep *Report, logger *slog.Logger) error {
	cfg := req.Config
	if cfg == nil {
		return derrors.ConfigRequired("config")
	}
	if req.Mode != deploy.ModeFull && req.Mode != deploy.ModeIncremental {
		return derrors.ValidationFailed("mode", "unknown build mode "+string(req.Mode))
	}

	// Stage 1: everything that can fail on configuration.
	stageStart := s.now()
	if err := cfg.Validate(); err != nil {
		return err
	}
	tmpl, err := pagetemplate.Load(cfg.Template)
	if err != nil {
		return derrors.TemplateUnreadable(cfg.Template, err)
	}
	if !slices.Contains(tmpl.Placeholders(), pagetemplate.Content) {
		logger.Warn("Template has no content placeholder", logfields.Path(cfg.Template))
	}
	ignore, err := regexp.Compile(cfg.IgnorePattern)
	if err != nil {
		return derrors.ValidationFailed("ignore_pattern", err.Error())
	}
	s.recorder.ObserveStageDuration("validate", s.now().Sub(stageStart))

	// Stage 2: index.
	stageStart = s.now()
	idx, err := indexer.Scan(cfg.SourceDir, indexer.Options{
		Ignore:      ignore,
		DisplayName: cfg.CategoryDisplayName,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	rep.Indexed = idx.Len()
	s.recorder.SetIndexedPages(idx.Len())
	s.recorder.ObserveStageDuration("index", s.now().Sub(stageStart))
	logger.Info("Indexed sources",
		logfields.Count(idx.Len()),
		slog.Int("articles", idx.ArticleCount()),
		slog.Int("categories", idx.Len()-idx.ArticleCount()))
	if logger.Enabled(ctx, slog.LevelDebug) {
		logger.Debug("Index order\n" + indexer.String(idx))
	}

	var ops fileops.FileOps = fileops.OS{}
	if req.DryRun {
		ops = fileops.DryRun{Logger: logger}
	}
	mgr := deploy.NewManager(ops, cfg.DeployPath,
		deploy.WithAssets(cfg.AssetDir),
		deploy.WithBackup(cfg.BackupPath),
		deploy.WithIgnored(cfg.Ignored...),
		deploy.WithLogger(logger),
		deploy.WithClock(s.now))

	// Stage 3: work set.
	work, err := s.workSet(req.Mode, idx, mgr)
	if stderrors.Is(err, changes.ErrNothingNew) {
		logger.Info("Nothing new to publish")
		rep.Status = StatusNoop
	} else if err != nil {
		return derrors.StageFailed("detect", err)
	}
	rep.Work = len(work)

	// Stage 4: prepare, publish, finalize.
	if err := mgr.Prepare(req.Mode); err != nil {
		return err
	}

	if len(work) > 0 {
		stageStart = s.now()
		shared := &publish.Shared{
			Template:           tmpl,
			Renderer:           s.renderer,
			BaseURI:            cfg.BaseURI,
			TimeFormat:         cfg.TimeFormat,
			CategoryTimeFormat: cfg.Category.TimeFormat,
			Categlist:          publish.CategoryList(idx),
		}
		pubOpts := []publish.Option{
			publish.WithLogger(logger),
			publish.WithRecorder(s.recorder),
			publish.WithClock(s.now),
		}
		if cfg.BackupPath != "" {
			pubOpts = append(pubOpts, publish.WithBackup(cfg.BackupPath))
		}
		publisher := publish.NewPublisher(shared, ops, cfg.DeployPath, pubOpts...)

		stats := publish.NewPool(publisher, cfg.Threads).Run(publish.Snapshot(idx, work))
		rep.Published = stats.Published
		rep.Failed = stats.Failed
		rep.Empty = stats.Empty
		rep.BackedUp = stats.BackedUp
		s.recorder.ObserveStageDuration("publish", s.now().Sub(stageStart))
	}

	stageStart = s.now()
	fin, err := mgr.Finalize(idx, req.Prune)
	if err != nil {
		return err
	}
	rep.Newest = fin.Newest
	rep.StaleRemoved = fin.StaleRemoved
	s.recorder.ObserveStageDuration("finalize", s.now().Sub(stageStart))
	return nil
}

// workSet returns the index positions to publish.
func (s *DefaultService) workSet(mode deploy.Mode, idx *site.Index, mgr *deploy.Manager) ([]int, error) {
	if mode == deploy.ModeFull {
		return changes.All(idx), nil
	}
	work, err := changes.Detect(idx, mgr.Published)
	if err != nil {
		return nil, err
	}
	return changes.WithCategories(idx, work), nil
}

// finish logs the report and feeds the side channels. Their failures are
// logged, never returned.
func (s *DefaultService) finish(ctx context.Context, rep *Report, logger *slog.Logger) {
	s.recorder.ObserveBuildDuration(string(rep.Mode), rep.Duration)
	s.recorder.IncBuildOutcome(outcomeLabel(rep.Status))

	attrs := []any{
		slog.String("status", string(rep.Status)),
		slog.Int("indexed", rep.Indexed),
		slog.Int("work", rep.Work),
		slog.Int("published", rep.Published),
		slog.Int("failed", rep.Failed),
		slog.Int("empty", rep.Empty),
		slog.Int("backups", rep.BackedUp),
		slog.Int("stale_removed", rep.StaleRemoved),
		slog.String("newest", rep.Newest),
		logfields.DurationMS(float64(rep.Duration.Microseconds()) / 1000),
	}
	if rep.Status == StatusFailed {
		logger.Error("build failed", append(attrs, logfields.Error(rep.Err))...)
	} else {
		logger.Info("build complete", attrs...)
	}

	if rep.DryRun {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if s.history != nil {
		if err := s.history.Append(ctx, historyEntry(rep)); err != nil {
			logger.Warn("failed to record build history", logfields.Error(derrors.ExternalFailed("history", err)))
		}
	}
	if err := s.notifier.BuildCompleted(ctx, buildEvent(rep)); err != nil {
		logger.Warn("failed to publish build event", logfields.Error(derrors.ExternalFailed("nats", err)))
	}
}

func outcomeLabel(st Status) metrics.BuildOutcomeLabel {
	switch st {
	case StatusWarning:
		return metrics.BuildOutcomeWarning
	case StatusNoop:
		return metrics.BuildOutcomeNoop
	case StatusFailed:
		return metrics.BuildOutcomeFailed
	default:
		return metrics.BuildOutcomeSuccess
	}
}

func historyEntry(rep *Report) history.Entry {
	e := history.Entry{
		BuildID:      rep.BuildID,
		Mode:         string(rep.Mode),
		Outcome:      string(rep.Status),
		StartedAt:    rep.StartTime,
		Duration:     rep.Duration,
		Indexed:      rep.Indexed,
		Work:         rep.Work,
		Published:    rep.Published,
		Failed:       rep.Failed,
		Empty:        rep.Empty,
		BackedUp:     rep.BackedUp,
		StaleRemoved: rep.StaleRemoved,
		Newest:       rep.Newest,
	}
	if rep.Err != nil {
		e.Error = rep.Err.Error()
	}
	return e
}

func buildEvent(rep *Report) notify.BuildCompleted {
	return notify.BuildCompleted{
		BuildID:      rep.BuildID,
		Mode:         string(rep.Mode),
		Outcome:      string(rep.Status),
		Indexed:      rep.Indexed,
		Work:         rep.Work,
		Published:    rep.Published,
		Failed:       rep.Failed,
		StaleRemoved: rep.StaleRemoved,
		Newest:       rep.Newest,
		DurationMS:   rep.Duration.Milliseconds(),
		FinishedAt:   rep.EndTime,
	}
}
