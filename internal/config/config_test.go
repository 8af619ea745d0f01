package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docpress/internal/errors"
)

func writeSite(t *testing.T, yamlBody string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte(yamlBody), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "template.html"), []byte("%{content}"), 0o644))
	return filepath.Join(root, "config.yaml")
}

func TestLoad_AppliesDefaultsAndResolvesPaths(t *testing.T) {
	path := writeSite(t, "deploy_path: public\nbase_uri: https://example.com\n")
	root := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "library"), cfg.SourceDir)
	assert.Equal(t, filepath.Join(root, "template.html"), cfg.Template)
	assert.Equal(t, filepath.Join(root, "asset"), cfg.AssetDir)
	assert.Equal(t, filepath.Join(root, "public"), cfg.DeployPath)
	assert.Empty(t, cfg.BackupPath)
	assert.Equal(t, DefaultThreads, cfg.Threads)
	assert.Equal(t, DefaultTimeFormat, cfg.TimeFormat)
	assert.Equal(t, DefaultCategoryTimeFormat, cfg.Category.TimeFormat)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCPRESS_TEST_URI", "https://blog.example.org")
	path := writeSite(t, "deploy_path: public\nbase_uri: ${DOCPRESS_TEST_URI}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://blog.example.org", cfg.BaseURI)
}

func TestLoad_DotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	t.Setenv("DOCPRESS_TEST_DEPLOY", "from-shell")
	path := writeSite(t, "deploy_path: ${DOCPRESS_TEST_DEPLOY}\nthreads: ${DOCPRESS_TEST_THREADS}\n")
	envFile := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DOCPRESS_TEST_DEPLOY=from-file\nDOCPRESS_TEST_THREADS=6\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("DOCPRESS_TEST_THREADS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "from-shell"), cfg.DeployPath)
	assert.Equal(t, 6, cfg.Threads)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeSite(t, "deploy_path: [unterminated\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, derrors.IsCategory(err, derrors.CategoryConfig))
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	path := writeSite(t, "deploy_path: missing-parent/public\nthreads: 21\nignore_pattern: '('\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(cfg.Template))

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template file does not exist")
	assert.Contains(t, err.Error(), "deploy path does not exist or is not writable")
	assert.Contains(t, err.Error(), "thread count out of range")
	assert.Contains(t, err.Error(), "ignore_pattern")
	assert.True(t, derrors.IsFatal(err))
}

func TestValidate_ThreadBounds(t *testing.T) {
	path := writeSite(t, "deploy_path: public\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	for _, n := range []int{MinThreads, MaxThreads} {
		cfg.Threads = n
		assert.NoError(t, cfg.Validate(), "threads=%d", n)
	}
	for _, n := range []int{-1, MaxThreads + 1} {
		cfg.Threads = n
		assert.Error(t, cfg.Validate(), "threads=%d", n)
	}
}

func TestValidate_BackupInsideDeployRejected(t *testing.T) {
	path := writeSite(t, "deploy_path: public\nbackup_path: public/backup\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup_path")
}

func TestCategoryDisplayName(t *testing.T) {
	cfg := &Config{Category: CategoryConfig{DisplayNames: map[string]string{"tech": "Technology", "blank": ""}}}
	assert.Equal(t, "Technology", cfg.CategoryDisplayName("tech"))
	assert.Equal(t, "life", cfg.CategoryDisplayName("life"))
	assert.Equal(t, "blank", cfg.CategoryDisplayName("blank"))
}

func TestInit_WritesSkeletonAndRefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "config.yaml")

	require.NoError(t, Init(path, false))
	assert.FileExists(t, filepath.Join(root, "template.html"))
	assert.DirExists(t, filepath.Join(root, "library"))
	assert.DirExists(t, filepath.Join(root, "asset"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Technology", cfg.CategoryDisplayName("tech"))
	require.NoError(t, cfg.Validate())

	assert.Error(t, Init(path, false))
	assert.NoError(t, Init(path, true))
}
