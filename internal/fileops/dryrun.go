package fileops

import (
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/docpress/internal/logfields"
	"git.home.luguber.info/inful/docpress/internal/logging"
)

// DryRun logs every mutation instead of performing it. Reads go to disk so
// change detection and stale cleanup report what a real run would do.
type DryRun struct {
	Logger *slog.Logger
}

var _ FileOps = DryRun{}

func (d DryRun) log(op, path string, attrs ...any) {
	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger.Info("dry-run: skipped "+op, append([]any{logfields.Path(path)}, attrs...)...)
}

func (DryRun) Exists(path string) bool { return OS{}.Exists(path) }

func (DryRun) ListFiles(root string) ([]string, error) { return listFiles(root) }

func (d DryRun) Publish(path string, data []byte) error {
	d.log("publish", path, slog.Int("bytes", len(data)))
	return nil
}

func (d DryRun) Backup(src, dir, name string) (string, error) {
	d.log("backup", src, slog.String("dir", dir), slog.String("as", name))
	return filepath.Join(dir, name), nil
}

func (d DryRun) Remove(path string) error {
	d.log("remove", path)
	return nil
}

func (d DryRun) RemoveAll(path string) error {
	d.log("remove tree", path)
	return nil
}

func (d DryRun) MkdirAll(path string) error {
	d.log("mkdir", path)
	return nil
}

func (d DryRun) Symlink(target, link string) error {
	d.log("symlink", link, slog.String("target", target))
	return nil
}

func (d DryRun) CopyTree(src, dst string) error {
	d.log("copy tree", dst, slog.String("from", src))
	return nil
}
