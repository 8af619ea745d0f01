package publish

import (
	"log/slog"
	"path/filepath"
	"time"

	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/fileops"
	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/logging"
	"git.home.luguber.info/inful/docpress/internal/metrics"
)

// Publisher renders a WorkUnit and writes it below the deploy root.
type Publisher struct {
	shared     *Shared
	ops        fileops.FileOps
	deployRoot string
	backupRoot string
	recorder   metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBackup enables backup-before-overwrite into root.
func WithBackup(root string) Option {
	return func(p *Publisher) { p.backupRoot = root }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(p *Publisher) {
		if r != nil {
			p.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock sets the clock used for backup timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func NewPublisher(shared *Shared, ops fileops.FileOps, deployRoot string, opts ...Option) *Publisher {
	p := &Publisher{
		shared:     shared,
		ops:        ops,
		deployRoot: deployRoot,
		recorder:   metrics.NoopRecorder{},
		logger:     logging.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Outcome describes one successful publish.
type Outcome struct {
	Empty    bool
	BackedUp bool
}

// Publish renders u, backs up an existing artifact when enabled and writes
// the new one. Errors are classified but never fatal to the build.
func (p *Publisher) Publish(u *WorkUnit) (Outcome, error) {
	var out Outcome

	r, err := p.shared.Render(u)
	if err != nil {
		return out, derrors.RenderFailed(u.Name, err).WithContext("path", u.RelPath)
	}
	if r.Empty {
		out.Empty = true
		p.logger.Warn("rendered content is empty",
			logfields.Kind(u.Kind.String()),
			logfields.Name(u.Name),
			logfields.Path(u.RelPath))
	}

	dest := filepath.Join(p.deployRoot, filepath.FromSlash(u.RelPath))
	if p.backupRoot != "" && p.ops.Exists(dest) {
		if _, err := fileops.BackupArtifact(p.ops, p.backupRoot, p.deployRoot, u.RelPath, p.now()); err != nil {
			return out, derrors.BackupFailed(dest, err)
		}
		out.BackedUp = true
	}

	if err := p.ops.Publish(dest, r.Page); err != nil {
		return out, derrors.PublishFailed(dest, err)
	}
	return out, nil
}
