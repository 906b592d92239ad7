package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestGetFromEnvironmentSection(t *testing.T) {
	settings := t.TempDir()
	writeFile(t, settings, "analytics.yaml", `
production:
  counterDurationMs: 2000
  scrollFadeRangePx: 100
staging:
  counterDurationMs: 500
`)

	cfg := New(Params{
		Env:          "production",
		SettingsPath: settings,
		Sugar:        zap.NewNop().Sugar(),
	})

	val, err := cfg.Get("counterDurationMs")
	require.NoError(t, err)
	require.Equal(t, 2000, val)

	_, err = cfg.Get("missingKey")
	require.Error(t, err)
}

func TestOverrideFilesWin(t *testing.T) {
	settings := t.TempDir()
	override := t.TempDir()
	writeFile(t, settings, "analytics.yaml", `
production:
  theme: system
`)
	writeFile(t, override, "local.json", `{"production": {"theme": "dark"}}`)

	cfg := New(Params{
		Env:          "production",
		SettingsPath: settings,
		OverridePath: override,
		Sugar:        zap.NewNop().Sugar(),
	})

	val, err := cfg.Get("theme")
	require.NoError(t, err)
	require.Equal(t, "dark", val)
}

func TestGetWithoutEnvironmentSection(t *testing.T) {
	settings := t.TempDir()
	writeFile(t, settings, "flat.yml", `storeBackend: memory`)

	cfg := New(Params{
		Env:          "production",
		SettingsPath: settings,
		Sugar:        zap.NewNop().Sugar(),
	})

	val, err := cfg.Get("storeBackend")
	require.NoError(t, err)
	require.Equal(t, "memory", val)
}
