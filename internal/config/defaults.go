package config

const (
	DefaultSourceDir          = "library"
	DefaultTemplate           = "template.html"
	DefaultAssetDir           = "asset"
	DefaultTimeFormat         = "%Y-%m-%d %H:%M"
	DefaultCategoryTimeFormat = "%Y-%m-%d"
	DefaultThreads            = 4
	MinThreads                = 1
	MaxThreads                = 20
	DefaultNotifySubject      = "docpress.build.completed"

	// DefaultIgnorePattern skips dot files, editor swap/backup files and
	// lock artifacts in the source directory.
	DefaultIgnorePattern = `^\.|^#.*#$|~$|\.(swp|swx|swo|bak|tmp|lock)$`
)

func applyDefaults(c *Config) {
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if c.AssetDir == "" {
		c.AssetDir = DefaultAssetDir
	}
	if c.TimeFormat == "" {
		c.TimeFormat = DefaultTimeFormat
	}
	if c.Category.TimeFormat == "" {
		c.Category.TimeFormat = DefaultCategoryTimeFormat
	}
	if c.IgnorePattern == "" {
		c.IgnorePattern = DefaultIgnorePattern
	}
	if c.Threads == 0 {
		c.Threads = DefaultThreads
	}
	if c.Notify.NATSURL != "" && c.Notify.Subject == "" {
		c.Notify.Subject = DefaultNotifySubject
	}
}
