package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docpress/internal/errors"
)

// Config is the site configuration read from config.yaml.
type Config struct {
	SourceDir     string         `yaml:"source_dir"`
	Template      string         `yaml:"template"`
	AssetDir      string         `yaml:"asset_dir"`
	DeployPath    string         `yaml:"deploy_path"`
	BackupPath    string         `yaml:"backup_path,omitempty"`
	BaseURI       string         `yaml:"base_uri"`
	TimeFormat    string         `yaml:"time_format"`
	Category      CategoryConfig `yaml:"category"`
	Ignored       []string       `yaml:"ignored,omitempty"`
	IgnorePattern string         `yaml:"ignore_pattern,omitempty"`
	Threads       int            `yaml:"threads"`
	HistoryDB     string         `yaml:"history_db,omitempty"`
	MetricsFile   string         `yaml:"metrics_file,omitempty"`
	Notify        NotifyConfig   `yaml:"notify,omitempty"`

	// root is the directory holding the config file; relative paths
	// resolve against it.
	root string
}

// CategoryConfig controls category pages.
type CategoryConfig struct {
	TimeFormat   string            `yaml:"time_format"`
	DisplayNames map[string]string `yaml:"display_names,omitempty"`
}

// NotifyConfig enables build-completed events on NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Load reads, expands, defaults and resolves the configuration at path.
// It does not validate; call Validate before mutating anything.
func Load(path string) (*Config, error) {
	loadEnvFiles(filepath.Dir(path))

	// #nosec G304 - path is operator supplied
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.ConfigNotFound(path)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, derrors.ConfigInvalid(path, err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, derrors.ConfigInvalid(path, fmt.Errorf("resolve config directory: %w", err))
	}
	cfg.root = root

	applyDefaults(&cfg)
	cfg.resolvePaths()
	return &cfg, nil
}

// resolvePaths makes every filesystem path absolute relative to root.
func (c *Config) resolvePaths() {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.root, p)
	}
	c.SourceDir = abs(c.SourceDir)
	c.Template = abs(c.Template)
	c.AssetDir = abs(c.AssetDir)
	c.DeployPath = abs(c.DeployPath)
	c.BackupPath = abs(c.BackupPath)
	c.HistoryDB = abs(c.HistoryDB)
	c.MetricsFile = abs(c.MetricsFile)
}

// CategoryDisplayName maps a category identifier through the display table.
func (c *Config) CategoryDisplayName(name string) string {
	if v, ok := c.Category.DisplayNames[name]; ok && v != "" {
		return v
	}
	return name
}
