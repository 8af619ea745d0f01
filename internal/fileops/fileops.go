// Package fileops is the filesystem strategy used by the publish pool and
// the deploy lifecycle. OS mutates the disk; DryRun only logs what it would
// have done. Both read the real filesystem.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// WritableMode is applied for the duration of a write.
	WritableMode fs.FileMode = 0o644
	// PublishedMode is the at-rest mode of a published artifact.
	PublishedMode fs.FileMode = 0o444
	dirMode       fs.FileMode = 0o755
)

// FileOps is every filesystem operation the pipeline performs.
type FileOps interface {
	// Exists reports whether path exists (without following symlinks).
	Exists(path string) bool
	// ListFiles returns slash-separated paths of all non-directory entries
	// below root, relative to root. A missing root yields no entries.
	ListFiles(root string) ([]string, error)

	// Publish writes data to path under an exclusive lock, truncates the
	// file to exactly len(data) and leaves it read-only.
	Publish(path string, data []byte) error
	// Backup copies src into dir as name, or name.1, name.2, ... when
	// name is taken. It never overwrites and returns the path written.
	Backup(src, dir, name string) (string, error)
	Remove(path string) error
	RemoveAll(path string) error
	MkdirAll(path string) error
	// Symlink points link at target, replacing an existing link.
	Symlink(target, link string) error
	// CopyTree copies the contents of src into dst, overwriting files.
	CopyTree(src, dst string) error
}

// OS is the real implementation.
type OS struct{}

var _ FileOps = OS{}

func (OS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (OS) ListFiles(root string) ([]string, error) {
	return listFiles(root)
}

func listFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

// A failed Publish leaves an existing artifact with the mode it had before
// the call, so a published file stays read-only.
func (OS) Publish(path string, data []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if info, statErr := os.Lstat(path); statErr == nil && info.Mode().Perm() != WritableMode {
		prior := info.Mode().Perm()
		if err := os.Chmod(path, WritableMode); err != nil {
			return fmt.Errorf("make writable: %w", err)
		}
		defer func() {
			if err != nil {
				_ = os.Chmod(path, prior)
			}
		}()
	}

	// #nosec G304 - path is an artifact path below the deploy root
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, WritableMode)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if err := writeLocked(f, data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(path, PublishedMode); err != nil {
		return fmt.Errorf("make read-only: %w", err)
	}
	return nil
}

// writeLocked holds the exclusive lock for the whole write and releases it
// on every exit path.
func writeLocked(f *os.File, data []byte) (err error) {
	if err := lockExclusive(f); err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	defer func() {
		if uerr := unlock(f); uerr != nil && err == nil {
			err = fmt.Errorf("unlock: %w", uerr)
		}
	}()

	if _, err := f.WriteAt(data, 0); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := f.Truncate(int64(len(data))); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

func (OS) Backup(src, dir, name string) (string, error) {
	// #nosec G304 - src is an artifact path below the deploy root
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", err
	}

	for n := 0; ; n++ {
		candidate := filepath.Join(dir, name)
		if n > 0 {
			candidate += "." + strconv.Itoa(n)
		}
		// #nosec G304 - candidate is below the configured backup root
		out, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, WritableMode)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, in); err != nil {
			_ = out.Close()
			return "", err
		}
		return candidate, out.Close()
	}
}

func (OS) Remove(path string) error    { return os.Remove(path) }
func (OS) RemoveAll(path string) error { return os.RemoveAll(path) }
func (OS) MkdirAll(path string) error  { return os.MkdirAll(path, dirMode) }

func (OS) Symlink(target, link string) error {
	if _, err := os.Lstat(link); err == nil {
		if err := os.Remove(link); err != nil {
			return err
		}
	}
	return os.Symlink(target, link)
}

func (OS) CopyTree(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := (OS{}).CopyTree(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies a single file, replacing a read-only destination.
func copyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	// #nosec G304 - src is below the configured asset directory
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if info, err := os.Lstat(dst); err == nil && (info.Mode()&0o200 == 0 || info.Mode()&fs.ModeSymlink != 0) {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	// #nosec G304 - dst is below the deploy root
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode().Perm())
}
