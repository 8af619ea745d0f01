package fileops

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// BackupTimeLayout is the timestamp suffix of backup copies.
const BackupTimeLayout = "20060102T150405"

// BackupArtifact copies the artifact at rel (slash separated, relative to
// deployRoot) to {backupRoot}/{dir of rel}/{key}/{key}.{timestamp}, where
// key is the artifact's base name without ".html".
func BackupArtifact(ops FileOps, backupRoot, deployRoot, rel string, now time.Time) (string, error) {
	key := strings.TrimSuffix(path.Base(rel), ".html")
	dir := filepath.Join(backupRoot, filepath.FromSlash(path.Dir(rel)), key)
	src := filepath.Join(deployRoot, filepath.FromSlash(rel))
	return ops.Backup(src, dir, key+"."+now.UTC().Format(BackupTimeLayout))
}
