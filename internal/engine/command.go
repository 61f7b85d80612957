package engine

import (
	"fmt"
	"strings"

	"github.com/corewm/corewm/internal/config"
)

// CommandKind tags the Command variants consumed by the core from IPC
// (spec.md §6.1). It mirrors platform.EventKind's shape: a flat enum
// plus a struct carrying only the fields relevant to the active kind.
type CommandKind int

const (
	CmdClose CommandKind = iota
	CmdFocus
	CmdMove
	CmdMoveWorkspace
	CmdResize
	CmdChangeBorders
	CmdSetFloating
	CmdSetFullscreen
	CmdSetMaximized
	CmdSetMinimized
	CmdSetTiling
	CmdShellExec
	CmdWmEnableBindingMode
	CmdWmDisableBindingMode
	CmdWmTogglePause
	CmdWmReloadConfig
	CmdWmRedraw
	CmdWmExit
)

func (k CommandKind) String() string {
	switch k {
	case CmdClose:
		return "close"
	case CmdFocus:
		return "focus"
	case CmdMove:
		return "move"
	case CmdMoveWorkspace:
		return "move-workspace"
	case CmdResize:
		return "resize"
	case CmdChangeBorders:
		return "change-borders"
	case CmdSetFloating:
		return "set-floating"
	case CmdSetFullscreen:
		return "set-fullscreen"
	case CmdSetMaximized:
		return "set-maximized"
	case CmdSetMinimized:
		return "set-minimized"
	case CmdSetTiling:
		return "set-tiling"
	case CmdShellExec:
		return "shell-exec"
	case CmdWmEnableBindingMode:
		return "wm-enable-binding-mode"
	case CmdWmDisableBindingMode:
		return "wm-disable-binding-mode"
	case CmdWmTogglePause:
		return "wm-toggle-pause"
	case CmdWmReloadConfig:
		return "wm-reload-config"
	case CmdWmRedraw:
		return "wm-redraw"
	case CmdWmExit:
		return "wm-exit"
	default:
		return "unknown"
	}
}

// WorkspaceTargetKind tags which way a Focus/Move workspace argument
// resolves a workspace (spec.md §4.4 "focus_workspace").
type WorkspaceTargetKind int

const (
	WSTargetName WorkspaceTargetKind = iota
	WSTargetRecent
	WSTargetNext
	WSTargetPrevious
	WSTargetDirection
)

// WorkspaceTarget identifies a workspace by name, recency, sequence or
// monitor direction.
type WorkspaceTarget struct {
	Kind      WorkspaceTargetKind
	Name      string
	Direction Direction
}

// Toggle is the three-state argument SetFloating/SetFullscreen/etc take:
// force on, force off, or flip whatever the current state is.
type Toggle int

const (
	ToggleFlip Toggle = iota
	ToggleOn
	ToggleOff
)

// LengthDelta is a `<number>(px|%)` argument, optionally signed to mean
// "grow/shrink by" rather than "set to" (spec.md §6.1).
type LengthDelta struct {
	Length config.Length
	Signed bool
	Sign   int // +1 or -1, meaningful only if Signed
}

func parseLengthDelta(s string) (LengthDelta, error) {
	var ld LengthDelta
	sign := 0
	if strings.HasPrefix(s, "+") {
		sign = 1
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}
	var l config.Length
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return ld, err
	}
	ld.Length = l
	if sign != 0 {
		ld.Signed = true
		ld.Sign = sign
	}
	return ld, nil
}

// Command is the tagged union of user-invoked operations the core
// accepts from the IPC layer (spec.md §6.1). Only the fields relevant
// to Kind are populated; callers that construct one directly (e.g.
// cmd/wmctl's cobra tree) should set only those fields.
type Command struct {
	Kind CommandKind

	Direction    Direction
	HasDirection bool

	Workspace    WorkspaceTarget
	HasWorkspace bool

	Width  *LengthDelta
	Height *LengthDelta

	Toggle Toggle

	BindingMode string

	ShellArgs []string
}

// ParseCommandLine parses the small textual command grammar used both
// by config.BindingMode.Bindings entries and by wmctl's raw-command
// passthrough: `<verb> [key=value ...]`. e.g. "focus direction=left",
// "move workspace=next", "resize width=+5%", "set-floating toggle".
func ParseCommandLine(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("engine: empty command")
	}
	verb := fields[0]
	args := fields[1:]

	kind, ok := verbKind(verb)
	if !ok {
		return Command{}, fmt.Errorf("engine: unknown command verb %q", verb)
	}
	cmd := Command{Kind: kind}

	for _, arg := range args {
		key, val, hasVal := strings.Cut(arg, "=")
		if err := applyArg(&cmd, key, val, hasVal); err != nil {
			return Command{}, fmt.Errorf("engine: command %q: %w", line, err)
		}
	}
	return cmd, nil
}

func verbKind(verb string) (CommandKind, bool) {
	switch verb {
	case "close":
		return CmdClose, true
	case "focus":
		return CmdFocus, true
	case "move":
		return CmdMove, true
	case "move-workspace":
		return CmdMoveWorkspace, true
	case "resize":
		return CmdResize, true
	case "change-borders":
		return CmdChangeBorders, true
	case "set-floating":
		return CmdSetFloating, true
	case "set-fullscreen":
		return CmdSetFullscreen, true
	case "set-maximized":
		return CmdSetMaximized, true
	case "set-minimized":
		return CmdSetMinimized, true
	case "set-tiling":
		return CmdSetTiling, true
	case "shell-exec":
		return CmdShellExec, true
	case "wm-enable-binding-mode":
		return CmdWmEnableBindingMode, true
	case "wm-disable-binding-mode":
		return CmdWmDisableBindingMode, true
	case "wm-toggle-pause":
		return CmdWmTogglePause, true
	case "wm-reload-config":
		return CmdWmReloadConfig, true
	case "wm-redraw":
		return CmdWmRedraw, true
	case "wm-exit":
		return CmdWmExit, true
	default:
		return 0, false
	}
}

func applyArg(cmd *Command, key, val string, hasVal bool) error {
	switch key {
	case "toggle":
		switch val {
		case "on":
			cmd.Toggle = ToggleOn
		case "off":
			cmd.Toggle = ToggleOff
		default:
			cmd.Toggle = ToggleFlip
		}
	case "on":
		cmd.Toggle = ToggleOn
	case "off":
		cmd.Toggle = ToggleOff
	case "direction":
		d, err := ParseDirection(val)
		if err != nil {
			return err
		}
		cmd.Direction = d
		cmd.HasDirection = true
	case "workspace":
		switch val {
		case "next":
			cmd.Workspace = WorkspaceTarget{Kind: WSTargetNext}
		case "prev", "previous":
			cmd.Workspace = WorkspaceTarget{Kind: WSTargetPrevious}
		case "recent":
			cmd.Workspace = WorkspaceTarget{Kind: WSTargetRecent}
		default:
			if d, err := ParseDirection(val); err == nil {
				cmd.Workspace = WorkspaceTarget{Kind: WSTargetDirection, Direction: d}
			} else {
				cmd.Workspace = WorkspaceTarget{Kind: WSTargetName, Name: val}
			}
		}
		cmd.HasWorkspace = true
	case "width":
		ld, err := parseLengthDelta(val)
		if err != nil {
			return err
		}
		cmd.Width = &ld
	case "height":
		ld, err := parseLengthDelta(val)
		if err != nil {
			return err
		}
		cmd.Height = &ld
	case "mode":
		cmd.BindingMode = val
	case "cmd":
		cmd.ShellArgs = strings.Fields(val)
	default:
		if !hasVal {
			// Bare tokens like "next"/"prev"/"recent" directly after
			// "move"/"focus" without a "workspace=" key.
			switch key {
			case "next":
				cmd.Workspace = WorkspaceTarget{Kind: WSTargetNext}
				cmd.HasWorkspace = true
			case "prev", "previous":
				cmd.Workspace = WorkspaceTarget{Kind: WSTargetPrevious}
				cmd.HasWorkspace = true
			case "recent":
				cmd.Workspace = WorkspaceTarget{Kind: WSTargetRecent}
				cmd.HasWorkspace = true
			default:
				return fmt.Errorf("unrecognized argument %q", key)
			}
			return nil
		}
		return fmt.Errorf("unrecognized argument key %q", key)
	}
	return nil
}

// resolveLengthDelta applies a LengthDelta to a current absolute pixel
// value, returning the new absolute value. scale is the monitor scale
// factor used to resolve percentage/pixel lengths.
func resolveLengthDelta(ld *LengthDelta, current, axisExtent, scale float64) float64 {
	if ld == nil {
		return current
	}
	v := ld.Length.Resolve(axisExtent, scale)
	if !ld.Signed {
		return v
	}
	return current + float64(ld.Sign)*v
}

// lengthDeltaAbs returns ld's length in pixels against axisExtent/scale,
// ignoring its sign, and false when ld is nil.
func lengthDeltaAbs(ld *LengthDelta, axisExtent, scale float64) (float64, bool) {
	if ld == nil {
		return 0, false
	}
	return ld.Length.Resolve(axisExtent, scale), true
}
