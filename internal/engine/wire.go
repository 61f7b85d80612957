package engine

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON renders a WmEvent as a JSON object tagged by "type",
// carrying only the fields relevant to its Kind (spec.md §6.2,
// SPEC_FULL.md §6: "every WmEvent is a JSON object with a type tag
// field"). encoding/json plus this small discriminator covers a
// Rust-style tagged enum as well as a dedicated codec would; see
// DESIGN.md for why no third-party serialization library was reached
// for here.
func (e WmEvent) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": e.Kind.String()}
	switch e.Kind {
	case EvFocusChanged, EvFocusedContainerMoved:
		m["focused_container"] = e.Container
	case EvWindowManaged:
		m["managed_window"] = e.Container
	case EvWindowUnmanaged:
		m["unmanaged_id"] = e.UnmanagedID
		m["unmanaged_handle"] = e.UnmanagedHandle
	case EvMonitorAdded, EvMonitorRemoved, EvMonitorUpdated:
		m["monitor"] = e.Monitor
	case EvWorkspaceActivated, EvWorkspaceDeactivated, EvWorkspaceUpdated:
		m["workspace"] = e.Workspace
	case EvTilingDirectionChanged:
		m["direction_container"] = e.DirectionContainer
		m["new_tiling_direction"] = e.NewTilingDirection
	case EvBindingModesChanged:
		m["new_binding_modes"] = e.NewBindingModes
	case EvPauseChanged:
		m["is_paused"] = e.IsPaused
	case EvApplicationExiting, EvUserConfigChanged:
		// no extra fields
	}
	return json.Marshal(m)
}

// MarshalJSON renders a Command as a JSON object tagged by "type".
// wmctl uses this to send a parsed Command over the IPC WebSocket.
func (c Command) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": c.Kind.String()}
	if c.HasDirection {
		m["direction"] = c.Direction.String()
	}
	if c.HasWorkspace {
		m["workspace"] = workspaceTargetWire(c.Workspace)
	}
	if c.Width != nil {
		m["width"] = lengthDeltaWire(*c.Width)
	}
	if c.Height != nil {
		m["height"] = lengthDeltaWire(*c.Height)
	}
	switch c.Kind {
	case CmdSetFloating, CmdSetFullscreen, CmdSetMaximized, CmdSetMinimized, CmdSetTiling:
		m["toggle"] = toggleWire(c.Toggle)
	}
	if c.BindingMode != "" {
		m["mode"] = c.BindingMode
	}
	if len(c.ShellArgs) > 0 {
		m["cmd"] = c.ShellArgs
	}
	return json.Marshal(m)
}

func workspaceTargetWire(t WorkspaceTarget) string {
	switch t.Kind {
	case WSTargetNext:
		return "next"
	case WSTargetPrevious:
		return "prev"
	case WSTargetRecent:
		return "recent"
	case WSTargetDirection:
		return t.Direction.String()
	default:
		return t.Name
	}
}

func toggleWire(t Toggle) string {
	switch t {
	case ToggleOn:
		return "on"
	case ToggleOff:
		return "off"
	default:
		return "toggle"
	}
}

func lengthDeltaWire(ld LengthDelta) string {
	sign := ""
	if ld.Signed && ld.Sign > 0 {
		sign = "+"
	} else if ld.Signed && ld.Sign < 0 {
		sign = "-"
	}
	if ld.Length.Percent != 0 {
		return fmt.Sprintf("%s%g%%", sign, ld.Length.Percent*100)
	}
	return fmt.Sprintf("%s%gpx", sign, ld.Length.Pixels)
}

// UnmarshalJSON parses the wire format produced by Command.MarshalJSON
// back into a Command.
func (c *Command) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	typeRaw, ok := raw["type"]
	if !ok {
		return fmt.Errorf("engine: command json missing \"type\"")
	}
	var typ string
	if err := json.Unmarshal(typeRaw, &typ); err != nil {
		return err
	}
	kind, ok := verbKind(typ)
	if !ok {
		return fmt.Errorf("engine: unknown command type %q", typ)
	}
	cmd := Command{Kind: kind}

	if v, ok := raw["direction"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if d, err := ParseDirection(s); err == nil {
				cmd.Direction, cmd.HasDirection = d, true
			}
		}
	}
	if v, ok := raw["workspace"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if err := applyArg(&cmd, "workspace", s, true); err != nil {
				return err
			}
		}
	}
	if v, ok := raw["width"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if err := applyArg(&cmd, "width", s, true); err != nil {
				return err
			}
		}
	}
	if v, ok := raw["height"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if err := applyArg(&cmd, "height", s, true); err != nil {
				return err
			}
		}
	}
	if v, ok := raw["toggle"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if err := applyArg(&cmd, "toggle", s, true); err != nil {
				return err
			}
		}
	}
	if v, ok := raw["mode"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			cmd.BindingMode = s
		}
	}
	if v, ok := raw["cmd"]; ok {
		var args []string
		if err := json.Unmarshal(v, &args); err == nil {
			cmd.ShellArgs = args
		}
	}

	*c = cmd
	return nil
}
