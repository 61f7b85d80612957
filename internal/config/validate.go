package config

import "fmt"

// Validate checks cfg for internally inconsistent settings that would
// otherwise surface as confusing runtime behavior. It returns every
// problem found rather than stopping at the first, since the caller
// only logs these as warnings and proceeds with best-effort defaults.
func Validate(cfg *UserConfig) []error {
	var errs []error

	seen := make(map[string]struct{}, len(cfg.Workspaces))
	for _, ws := range cfg.Workspaces {
		if ws.Name == "" {
			errs = append(errs, fmt.Errorf("config: workspace entry with empty name"))
			continue
		}
		if _, dup := seen[ws.Name]; dup {
			errs = append(errs, fmt.Errorf("config: duplicate workspace name %q", ws.Name))
		}
		seen[ws.Name] = struct{}{}
	}

	if cfg.General.FocusOverrideWindowMillis < 0 {
		errs = append(errs, fmt.Errorf("config: general.focus_override_window_millis must be >= 0, got %d", cfg.General.FocusOverrideWindowMillis))
	}

	for i, rule := range cfg.WindowRules {
		if rule.ClassContains == "" && rule.ProcessContains == "" && rule.TitleContains == "" {
			errs = append(errs, fmt.Errorf("config: window_rules[%d] has no matcher fields set", i))
		}
	}

	for _, effect := range []struct {
		name string
		e    WindowEffect
	}{
		{"appearance.focused_window", cfg.Appearance.FocusedWindowEffect},
		{"appearance.other_windows", cfg.Appearance.OtherWindowsEffect},
	} {
		if effect.e.Transparency < 0 || effect.e.Transparency > 1 {
			errs = append(errs, fmt.Errorf("config: %s.transparency must be within [0,1], got %g", effect.name, effect.e.Transparency))
		}
	}

	return errs
}
