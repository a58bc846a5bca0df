package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesBuiltInTargets(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:3001", cfg.Target.BaseURL)
	assert.Equal(t, "test_failure.png", cfg.Target.ScreenshotPath)
	assert.Equal(t, Size{Width: 375, Height: 667}, cfg.Viewport.Mobile)
	assert.Equal(t, Size{Width: 1024, Height: 768}, cfg.Viewport.Desktop)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Wait.Duration)
	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.Strict)
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
strict = true

[target]
base_url = "http://127.0.0.1:8080"

[timeouts]
wait = "750ms"

[viewport.desktop]
width = 1280
height = 800
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.Strict)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Target.BaseURL)
	assert.Equal(t, "test_failure.png", cfg.Target.ScreenshotPath)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeouts.Wait.Duration)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.Action.Duration)
	assert.Equal(t, Size{Width: 1280, Height: 800}, cfg.Viewport.Desktop)
	assert.Equal(t, Size{Width: 375, Height: 667}, cfg.Viewport.Mobile)
}

func TestLoadFileRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[timeouts]\nwait = \"soon\"\n"), 0600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}

func TestLoadFileRejectsInvalidViewport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[viewport.mobile]\nwidth = 0\n"), 0600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewport.mobile")
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Target.BaseURL = "http://localhost:5173"
	cfg.Timeouts.Run = Duration{90 * time.Second}
	require.NoError(t, cfg.SaveFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
