// Package deploy manages the deploy root around a publish run: clearing
// it for full rebuilds, copying assets, pointing index.html at the newest
// article and removing stale artifacts.
package deploy

import (
	"log/slog"
	"path"
	"path/filepath"
	"time"

	derrors "git.home.luguber.info/inful/docpress/internal/errors"
	"git.home.luguber.info/inful/docpress/internal/fileops"
	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/logging"
	"git.home.luguber.info/inful/docpress/internal/site"
	"git.home.luguber.info/inful/docpress/internal/util/sets"
)

// IndexFile is the alias for the newest article.
const IndexFile = "index.html"

// Mode selects how Prepare treats an existing deploy root.
type Mode string

const (
	// ModeFull republishes everything into an emptied root.
	ModeFull Mode = "full"
	// ModeIncremental publishes only new pages into the existing root.
	ModeIncremental Mode = "add"
)

// Manager owns the deploy root.
type Manager struct {
	ops        fileops.FileOps
	root       string
	assetDir   string
	backupRoot string
	ignored    sets.Set[string]
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithAssets sets the directory copied verbatim into the root.
func WithAssets(dir string) Option { return func(m *Manager) { m.assetDir = dir } }

// WithBackup backs up stale artifacts into root before removing them.
func WithBackup(root string) Option { return func(m *Manager) { m.backupRoot = root } }

// WithIgnored exempts file names (base names or root-relative paths) from
// stale cleanup.
func WithIgnored(names ...string) Option {
	return func(m *Manager) {
		for _, n := range names {
			m.ignored.Add(n)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func NewManager(ops fileops.FileOps, root string, opts ...Option) *Manager {
	m := &Manager{
		ops:     ops,
		root:    root,
		ignored: sets.New[string](),
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Prepare readies the root for publishing. Full mode removes an existing
// root and recreates it empty; incremental mode only makes sure it exists.
func (m *Manager) Prepare(mode Mode) error {
	if mode == ModeFull && m.ops.Exists(m.root) {
		m.logger.Info("clearing deploy root", logfields.Path(m.root))
		if err := m.ops.RemoveAll(m.root); err != nil {
			return fsError("clear deploy root", m.root, err)
		}
	}
	if err := m.ops.MkdirAll(m.root); err != nil {
		return fsError("create deploy root", m.root, err)
	}
	return nil
}

// Published reports whether p's artifact exists below the root.
func (m *Manager) Published(p site.Page) bool {
	return m.ops.Exists(m.artifactPath(site.RelPath(p)))
}

func (m *Manager) artifactPath(rel string) string {
	return filepath.Join(m.root, filepath.FromSlash(rel))
}

// Report describes a finalize run.
type Report struct {
	Newest       string
	AssetsCopied bool
	StaleRemoved int
	StaleFailed  int
}

// Finalize copies assets, links index.html to the newest article of the
// full index and, when prune is set, removes stale artifacts.
func (m *Manager) Finalize(idx *site.Index, prune bool) (Report, error) {
	var rep Report

	copied, err := m.CopyAssets()
	if err != nil {
		return rep, err
	}
	rep.AssetsCopied = copied

	newest, err := m.LinkNewest(idx)
	if err != nil {
		return rep, err
	}
	rep.Newest = newest

	if prune {
		rep.StaleRemoved, rep.StaleFailed, err = m.Prune(idx)
		if err != nil {
			return rep, err
		}
	}
	return rep, nil
}

// CopyAssets copies the asset directory into the root, overwriting. It
// reports false when no asset directory is configured or present.
func (m *Manager) CopyAssets() (bool, error) {
	if m.assetDir == "" || !m.ops.Exists(m.assetDir) {
		return false, nil
	}
	if err := m.ops.CopyTree(m.assetDir, m.root); err != nil {
		return false, fsError("copy assets", m.assetDir, err)
	}
	m.logger.Debug("assets copied", logfields.Path(m.assetDir))
	return true, nil
}

// LinkNewest points index.html at the newest article's artifact and
// returns its root-relative path.
func (m *Manager) LinkNewest(idx *site.Index) (string, error) {
	newest := idx.Newest()
	if newest == nil {
		return "", nil
	}
	rel := site.RelPath(newest)
	link := m.artifactPath(IndexFile)
	if err := m.ops.Symlink(rel, link); err != nil {
		return "", fsError("link index", link, err)
	}
	m.logger.Debug("index linked", logfields.Path(rel))
	return rel, nil
}

// Required returns every root-relative path the current build owns:
// the artifact of each page, index.html and the asset files.
func (m *Manager) Required(idx *site.Index) (sets.Set[string], error) {
	req := sets.New[string](IndexFile)
	for i := range idx.Len() {
		req.Add(site.RelPath(idx.At(i)))
	}
	if m.assetDir != "" && m.ops.Exists(m.assetDir) {
		assets, err := m.ops.ListFiles(m.assetDir)
		if err != nil {
			return nil, fsError("list assets", m.assetDir, err)
		}
		for _, a := range assets {
			req.Add(a)
		}
	}
	return req, nil
}

// Stale returns the root-relative paths of files that are neither required
// nor ignored, sorted.
func (m *Manager) Stale(idx *site.Index) ([]string, error) {
	required, err := m.Required(idx)
	if err != nil {
		return nil, err
	}
	existing, err := m.ops.ListFiles(m.root)
	if err != nil {
		return nil, fsError("list deploy root", m.root, err)
	}

	stale := sets.New(existing...).Minus(required)
	for _, rel := range sets.Sorted(stale) {
		if m.ignored.Has(rel) || m.ignored.Has(path.Base(rel)) {
			stale.Delete(rel)
		}
	}
	return sets.Sorted(stale), nil
}

// Prune backs up (when enabled) and removes every stale file. Failures on
// single files are logged and counted.
func (m *Manager) Prune(idx *site.Index) (removed, failed int, err error) {
	stale, err := m.Stale(idx)
	if err != nil {
		return 0, 0, err
	}
	for _, rel := range stale {
		if err := m.removeStale(rel); err != nil {
			failed++
			m.logger.Warn("stale cleanup failed", logfields.Path(rel), logfields.Error(err))
			continue
		}
		removed++
		m.logger.Info("stale artifact removed", logfields.Path(rel))
	}
	return removed, failed, nil
}

func (m *Manager) removeStale(rel string) error {
	if m.backupRoot != "" {
		if _, err := fileops.BackupArtifact(m.ops, m.backupRoot, m.root, rel, m.now()); err != nil {
			return derrors.BackupFailed(rel, err)
		}
	}
	return m.ops.Remove(m.artifactPath(rel))
}

func fsError(op, path string, err error) *derrors.Error {
	return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, op+" failed").
		WithContext("path", path)
}
