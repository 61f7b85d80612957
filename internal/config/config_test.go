package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, Validate(cfg))
}

func TestLoadFileFillsMissingDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[general]
focus_follows_cursor = true
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.True(t, cfg.General.FocusFollowsCursor)
	assert.Equal(t, DefaultConfig().General.FocusOverrideWindowMillis, cfg.General.FocusOverrideWindowMillis)
	assert.NotEmpty(t, cfg.Workspaces)
	assert.NotEmpty(t, cfg.Appearance.FocusedWindowEffect.BorderColor)
	assert.Contains(t, cfg.BindingModes, "default")
}

func TestLoadFileParsesWindowRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[window_rules]]
class_contains = "Gimp"
[window_rules.action]
force_floating = true
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.WindowRules, 1)
	assert.True(t, cfg.WindowRules[0].Matches("org.gimp.Gimp", "", ""))
	assert.True(t, cfg.WindowRules[0].Action.ForceFloating)
	assert.False(t, cfg.WindowRules[0].Matches("firefox", "", ""))
}

func TestWindowRuleRequiresAtLeastOneMatcher(t *testing.T) {
	r := WindowRule{}
	assert.False(t, r.Matches("anything", "anything", "anything"))
}

func TestValidateFlagsDuplicateWorkspaceNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workspaces = append(cfg.Workspaces, WorkspaceConfig{Name: "1"})
	errs := Validate(cfg)
	require.NotEmpty(t, errs)
}

func TestValidateFlagsOutOfRangeTransparency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Appearance.FocusedWindowEffect.Transparency = 1.5
	errs := Validate(cfg)
	require.NotEmpty(t, errs)
}

func TestLengthUnmarshalText(t *testing.T) {
	var l Length
	require.NoError(t, l.UnmarshalText([]byte("12px")))
	assert.Equal(t, 12.0, l.Pixels)

	var pct Length
	require.NoError(t, pct.UnmarshalText([]byte("5%")))
	assert.Equal(t, 0.05, pct.Percent)

	var bare Length
	require.NoError(t, bare.UnmarshalText([]byte("3")))
	assert.Equal(t, 3.0, bare.Pixels)
}

func TestWatchFileDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[general]
focus_follows_cursor = false
`), 0o600))

	w, err := WatchFile(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`
[general]
focus_follows_cursor = true
`), 0o600))

	select {
	case cfg := <-w.Events:
		assert.True(t, cfg.General.FocusFollowsCursor)
	case err := <-w.Errors:
		t.Fatalf("unexpected watch error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload event")
	}
}
