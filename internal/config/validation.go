package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	derrors "git.home.luguber.info/inful/docpress/internal/errors"
)

// Validate checks everything that must hold before the destination tree is
// touched. All problems are reported together, joined with errors.Join.
func (c *Config) Validate() error {
	var errs []error

	if err := c.validateTemplate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.validateDeployPath(); err != nil {
		errs = append(errs, err)
	}
	if c.Threads < MinThreads || c.Threads > MaxThreads {
		errs = append(errs, derrors.InvalidThreads(c.Threads, MinThreads, MaxThreads))
	}
	if _, err := regexp.Compile(c.IgnorePattern); err != nil {
		errs = append(errs, derrors.ValidationFailed("ignore_pattern", err.Error()))
	}
	if c.BaseURI != "" {
		if u, err := url.Parse(c.BaseURI); err != nil || (u.Scheme != "" && u.Host == "") {
			errs = append(errs, derrors.ValidationFailed("base_uri", fmt.Sprintf("malformed URI %q", c.BaseURI)))
		}
	}
	if c.BackupPath != "" && c.DeployPath != "" && isWithin(c.BackupPath, c.DeployPath) {
		errs = append(errs, derrors.ValidationFailed("backup_path", "must not live inside deploy_path"))
	}

	return stderrors.Join(errs...)
}

func (c *Config) validateTemplate() error {
	f, err := os.Open(c.Template)
	if err != nil {
		return derrors.TemplateUnreadable(c.Template, err)
	}
	_ = f.Close()
	return nil
}

func (c *Config) validateDeployPath() error {
	if c.DeployPath == "" {
		return derrors.ConfigRequired("deploy_path")
	}
	parent := filepath.Dir(filepath.Clean(c.DeployPath))
	info, err := os.Stat(parent)
	if err != nil {
		return derrors.DestinationNotWritable(c.DeployPath, err)
	}
	if !info.IsDir() {
		return derrors.DestinationNotWritable(c.DeployPath, fmt.Errorf("%s is not a directory", parent))
	}
	if err := writable(parent); err != nil {
		return derrors.DestinationNotWritable(c.DeployPath, err)
	}
	return nil
}

// isWithin reports whether p equals dir or lives below it.
func isWithin(p, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
