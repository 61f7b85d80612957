// Package config loads, validates, and hot-reloads the user's TOML
// configuration file: workspace definitions, gap sizes, window rules,
// focused/unfocused window effects, and binding modes. The on-disk
// format and path resolution follow the same pattern the teacher
// (tuios) used for its own config.toml, swapped to this daemon's
// domain.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "config",
	})
}

// SetLogLevel sets the logging level for the config package.
func SetLogLevel(level log.Level) { logger.SetLevel(level) }

const configRelPath = "corewm/config.toml"

// Length is a gap or border measurement: an absolute pixel value, or a
// percentage of the relevant axis if Percent is non-zero. Mirrors
// container.Length so config can be parsed independently of the tree
// package.
type Length struct {
	Pixels  float64
	Percent float64
}

// UnmarshalText parses strings like "10px", "2%", or a bare number
// (treated as pixels), the same `<number>(px|%)` syntax spec.md §6.1
// uses for command arguments.
func (l *Length) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	switch {
	case strings.HasSuffix(s, "%"):
		var pct float64
		if _, err := fmt.Sscanf(strings.TrimSuffix(s, "%"), "%g", &pct); err != nil {
			return fmt.Errorf("config: invalid percent length %q: %w", s, err)
		}
		l.Percent = pct / 100
		return nil
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
		fallthrough
	default:
		var px float64
		if _, err := fmt.Sscanf(s, "%g", &px); err != nil {
			return fmt.Errorf("config: invalid pixel length %q: %w", s, err)
		}
		l.Pixels = px
		return nil
	}
}

// OuterGaps is the per-side margin between a workspace and its
// monitor's working area.
type OuterGaps struct {
	Left   Length `toml:"left"`
	Top    Length `toml:"top"`
	Right  Length `toml:"right"`
	Bottom Length `toml:"bottom"`
}

// GapsConfig holds the default outer/inner gaps applied to every
// workspace unless a WorkspaceConfig overrides them.
type GapsConfig struct {
	Outer              OuterGaps  `toml:"outer"`
	Inner              Length     `toml:"inner"`
	SingleWindowOuter  *OuterGaps `toml:"single_window_outer"`
}

// WorkspaceConfig describes one configured workspace slot.
type WorkspaceConfig struct {
	Name               string     `toml:"name"`
	DisplayName        string     `toml:"display_name"`
	PinnedMonitorIndex int        `toml:"pinned_monitor_index"`
	KeepAlive          bool       `toml:"keep_alive"`
	Outer              *OuterGaps `toml:"outer"`
	Inner              *Length    `toml:"inner"`
}

// WindowEffect is a visual treatment (border color, corner style,
// transparency) applied to windows in a given focus state.
type WindowEffect struct {
	BorderColor  string  `toml:"border_color"`
	CornerStyle  string  `toml:"corner_style"`
	Transparency float64 `toml:"transparency"`
}

// AppearanceConfig groups the focused/unfocused window effects the
// pending-sync flush applies (spec.md §4.5 step 4).
type AppearanceConfig struct {
	FocusedWindowEffect WindowEffect `toml:"focused_window"`
	OtherWindowsEffect  WindowEffect `toml:"other_windows"`
}

// WindowRuleAction is one mutation manage_window may apply to a
// newly-managed window once a WindowRule matches it.
type WindowRuleAction struct {
	Ignore           bool    `toml:"ignore"`
	ForceFloating    bool    `toml:"force_floating"`
	ForceWorkspace   string  `toml:"force_workspace"`
	BorderDeltaPixels float64 `toml:"border_delta_pixels"`
}

// WindowRule matches a managed window by class/process/title substring
// and applies WindowRuleAction to it. Rules are evaluated in
// declaration order and only the first matching rule applies; later
// matching rules are not consulted, even for actions it leaves unset.
type WindowRule struct {
	ClassContains   string           `toml:"class_contains"`
	ProcessContains string           `toml:"process_contains"`
	TitleContains   string           `toml:"title_contains"`
	Action          WindowRuleAction `toml:"action"`
}

// Matches reports whether the rule applies to a window with the given
// reported class/process/title. An empty matcher field always matches.
func (r WindowRule) Matches(class, process, title string) bool {
	if r.ClassContains != "" && !strings.Contains(class, r.ClassContains) {
		return false
	}
	if r.ProcessContains != "" && !strings.Contains(process, r.ProcessContains) {
		return false
	}
	if r.TitleContains != "" && !strings.Contains(title, r.TitleContains) {
		return false
	}
	return r.ClassContains != "" || r.ProcessContains != "" || r.TitleContains != ""
}

// GeneralConfig holds top-level behavior toggles.
type GeneralConfig struct {
	FocusFollowsCursor        bool `toml:"focus_follows_cursor"`
	CursorJumpOnFocus         bool `toml:"cursor_jump_on_focus"`
	FocusOverrideWindowMillis int  `toml:"focus_override_window_millis"`
	SummonWorkspaceToCurrentMonitor bool `toml:"summon_workspace_to_current_monitor"`
}

// BindingMode maps a key chord string to the textual Command it
// invokes (parsed by engine.ParseCommandLine, the same grammar
// `wmctl raw` accepts). The "default" mode is always active; named
// modes are entered/exited via WmEnableBindingMode/WmDisableBindingMode.
type BindingMode struct {
	Bindings map[string]string `toml:"bindings"`
}

// UserConfig is the full parsed configuration snapshot. The engine
// reads it at dispatch time and swaps it atomically on reload
// (spec.md §5).
type UserConfig struct {
	General      GeneralConfig          `toml:"general"`
	Gaps         GapsConfig             `toml:"gaps"`
	Workspaces   []WorkspaceConfig      `toml:"workspaces"`
	WindowRules  []WindowRule           `toml:"window_rules"`
	Appearance   AppearanceConfig       `toml:"appearance"`
	BindingModes map[string]BindingMode `toml:"binding_modes"`
}

// DefaultConfig returns the configuration used when no file exists yet
// and to fill in anything a partial user file omits.
func DefaultConfig() *UserConfig {
	return &UserConfig{
		General: GeneralConfig{
			FocusFollowsCursor:              false,
			CursorJumpOnFocus:               true,
			FocusOverrideWindowMillis:       100,
			SummonWorkspaceToCurrentMonitor: true,
		},
		Gaps: GapsConfig{
			Outer: OuterGaps{},
			Inner: Length{Pixels: 8},
		},
		Workspaces: []WorkspaceConfig{
			{Name: "1", PinnedMonitorIndex: -1},
			{Name: "2", PinnedMonitorIndex: -1},
			{Name: "3", PinnedMonitorIndex: -1},
			{Name: "4", PinnedMonitorIndex: -1},
			{Name: "5", PinnedMonitorIndex: -1},
		},
		Appearance: AppearanceConfig{
			FocusedWindowEffect: WindowEffect{BorderColor: "#89b4fa", CornerStyle: "rounded", Transparency: 1.0},
			OtherWindowsEffect:  WindowEffect{BorderColor: "#45475a", CornerStyle: "square", Transparency: 0.97},
		},
		BindingModes: map[string]BindingMode{
			"default": {Bindings: map[string]string{
				"alt+h":       "focus direction=left",
				"alt+l":       "focus direction=right",
				"alt+j":       "focus direction=down",
				"alt+k":       "focus direction=up",
				"alt+shift+h": "move direction=left",
				"alt+shift+l": "move direction=right",
				"alt+shift+j": "move direction=down",
				"alt+shift+k": "move direction=up",
				"alt+f":       "set-floating toggle",
				"alt+shift+f": "set-fullscreen toggle",
				"alt+t":       "set-tiling toggle",
				"alt+q":       "close",
			}},
		},
	}
}

// Load resolves the config file path via xdg and parses it, filling in
// anything missing with DefaultConfig. If no file exists yet, it writes
// one out (mirroring the teacher's createDefaultConfig behavior) and
// returns the defaults.
func Load() (*UserConfig, error) {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		return writeDefaultConfig()
	}
	return LoadFile(path)
}

// LoadFile parses the TOML file at path, filling in missing sections
// from DefaultConfig.
func LoadFile(path string) (*UserConfig, error) {
	// #nosec G304 - path is resolved via xdg or passed explicitly by the caller.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &UserConfig{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	fillMissingDefaults(cfg, DefaultConfig())

	if errs := Validate(cfg); len(errs) > 0 {
		for _, e := range errs {
			logger.Warn("config validation", "err", e)
		}
	}
	return cfg, nil
}

func writeDefaultConfig() (*UserConfig, error) {
	cfg := DefaultConfig()

	path, err := xdg.ConfigFile(configRelPath)
	if err != nil {
		return nil, fmt.Errorf("config: resolve default path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("config: create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("config: write default config: %w", err)
	}
	logger.Info("wrote default config", "path", path)
	return cfg, nil
}

// fillMissingDefaults merges zero-value top-level sections of cfg with
// defaults, the same per-section merge the teacher's
// fillMissingKeybinds used for keybinding maps.
func fillMissingDefaults(cfg, defaults *UserConfig) {
	if cfg.General.FocusOverrideWindowMillis == 0 {
		cfg.General.FocusOverrideWindowMillis = defaults.General.FocusOverrideWindowMillis
	}
	if len(cfg.Workspaces) == 0 {
		cfg.Workspaces = defaults.Workspaces
	}
	if cfg.Appearance.FocusedWindowEffect.BorderColor == "" {
		cfg.Appearance.FocusedWindowEffect = defaults.Appearance.FocusedWindowEffect
	}
	if cfg.Appearance.OtherWindowsEffect.BorderColor == "" {
		cfg.Appearance.OtherWindowsEffect = defaults.Appearance.OtherWindowsEffect
	}
	if cfg.BindingModes == nil {
		cfg.BindingModes = defaults.BindingModes
		return
	}
	if _, ok := cfg.BindingModes["default"]; !ok {
		cfg.BindingModes["default"] = defaults.BindingModes["default"]
	}
}

// Path returns the config file's resolved or would-be path, for
// diagnostics (`wmctl config-path`).
func Path() (string, error) {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err == nil {
		return path, nil
	}
	return xdg.ConfigFile(configRelPath)
}
