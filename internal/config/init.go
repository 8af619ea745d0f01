package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ExampleTemplate is written by Init. Placeholders use %{name}; any other
// percent sign passes through untouched.
const ExampleTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8" />
<title>%{title}</title>
<meta name="description" content="%{description}" />
<link rel="canonical" href="%{canonical}" />
<style>main { width: 100%; }</style>
</head>
<body>
<main>
<h1>%{title}</h1>
<p class="modified">%{modified}</p>
<nav class="categories">%{category}</nav>
%{content}
%{prev}
%{next}
</main>
<aside><ul>
%{categlist}
</ul></aside>
</body>
</html>
`

// Init writes an example site skeleton into the directory of configPath:
// config.yaml, template.html and empty library/ and asset/ directories.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	root := filepath.Dir(configPath)
	example := Config{
		SourceDir:  DefaultSourceDir,
		Template:   DefaultTemplate,
		AssetDir:   DefaultAssetDir,
		DeployPath: "public",
		BackupPath: "backup",
		BaseURI:    "https://example.com",
		TimeFormat: DefaultTimeFormat,
		Category: CategoryConfig{
			TimeFormat:   DefaultCategoryTimeFormat,
			DisplayNames: map[string]string{"tech": "Technology"},
		},
		Ignored: []string{"robots.txt"},
		Threads: DefaultThreads,
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	tpl := filepath.Join(root, DefaultTemplate)
	if _, err := os.Stat(tpl); os.IsNotExist(err) || force {
		if err := os.WriteFile(tpl, []byte(ExampleTemplate), 0o644); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}
	}
	for _, dir := range []string{DefaultSourceDir, DefaultAssetDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
