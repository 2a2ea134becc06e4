package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Contains(t, cfg.DBPath, ".draftctl")
	assert.Equal(t, "-", cfg.IDSeparator)
	assert.Equal(t, 4, cfg.IDWidth)
	assert.Equal(t, 10*time.Second, cfg.Tracker.Timeout)
	assert.Empty(t, cfg.Tracker.BaseURL)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("DRAFTCTL_DB", "/tmp/custom.db")
	t.Setenv("DRAFTCTL_ID_WIDTH", "6")
	t.Setenv("DRAFTCTL_TRACKER_BASE_URL", "https://tracker.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom.db", cfg.DBPath)
	assert.Equal(t, 6, cfg.IDWidth)
	assert.Equal(t, "https://tracker.example.com", cfg.Tracker.BaseURL)
}

func TestLoad_ProjectLocalFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	content := "db: project.db\nid:\n  width: 5\ntracker:\n  timeout: 30s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".draftctl.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "project.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.IDWidth)
	assert.Equal(t, 30*time.Second, cfg.Tracker.Timeout)
}

func TestLoad_RejectsInvalidWidth(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())
	t.Setenv("DRAFTCTL_ID_WIDTH", "0")

	_, err := Load()
	assert.Error(t, err)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
