package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inkmap/internal/mindmap"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"INKMAP_CONFIG", "INKMAP_LOG_LEVEL", "INKMAP_LOG_FORMAT", "INKMAP_H_SPACING", "INKMAP_V_SPACING", "INKMAP_GENERATOR"} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"defaults"}, cfg.LoadedFrom)
	assert.Equal(t, mindmap.DefaultConfig(), cfg.Mindmap())
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
layout:
  horizontal_spacing: 300
  origin_y: 20
gestures:
  double_click_window: 450ms
log:
  level: debug
  format: json
assist:
  generator: "ideas --json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	mc := cfg.Mindmap()
	assert.Equal(t, 300.0, mc.HorizontalSpacing)
	assert.Equal(t, 100.0, mc.VerticalSpacing, "unset keys keep defaults")
	assert.Equal(t, mindmap.Position{Y: 20}, mc.Origin)
	assert.Equal(t, 450*time.Millisecond, mc.DoubleClickWindow)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "ideas --json", cfg.Assist.Generator)
	assert.Equal(t, []string{"defaults", path}, cfg.LoadedFrom)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "layout:\n  vertical_spacing: 80\n")
	t.Setenv("INKMAP_V_SPACING", "60")
	t.Setenv("INKMAP_LOG_LEVEL", "ERROR")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.Layout.VerticalSpacing)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Contains(t, cfg.LoadedFrom, "environment")
}

func TestLoad_DefaultPathFromEnv(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "layout:\n  node_width: 200\n")
	t.Setenv("INKMAP_CONFIG", path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 200.0, cfg.Layout.NodeWidth)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist, "an explicit path must exist")

	_, err = Load(writeConfig(t, "layout: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "layout:\n  horizontal_spacing: -5\nlog:\n  format: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "layout.horizontalspacing must be greater than 0")
	assert.Contains(t, err.Error(), "log.format must be one of")

	t.Setenv("INKMAP_H_SPACING", "wide")
	_, err = Load("")
	assert.ErrorContains(t, err, "INKMAP_H_SPACING")
}

func TestNewLogger(t *testing.T) {
	logger, err := Log{Level: "error", Format: "json"}.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = Log{Level: "error", Format: "console"}.NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}
