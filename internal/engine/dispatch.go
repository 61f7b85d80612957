package engine

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/corewm/corewm/internal/config"
	"github.com/corewm/corewm/internal/container"
)

// errExit is runCommand's signal that the WmExit command was
// processed; dispatchCommand translates it into the Run loop
// returning, after one final flush.
var errExit = errors.New("engine: wm-exit requested")

// focusedWindow returns the globally focused container narrowed to a
// WindowContainer, if the focus currently rests on a window.
func (e *Engine) focusedWindow() (container.WindowContainer, bool) {
	return container.AsWindowContainer(container.FocusedDescendant(e.root))
}

// runCommand dispatches one user-invoked Command (spec.md §6.1) to the
// engine method that implements it.
func (e *Engine) runCommand(cmd Command) error {
	switch cmd.Kind {
	case CmdClose:
		return e.runClose()
	case CmdFocus:
		return e.runFocus(cmd)
	case CmdMove:
		return e.runMove(cmd)
	case CmdMoveWorkspace:
		if !cmd.HasDirection {
			return fmt.Errorf("engine: move-workspace: missing direction argument")
		}
		return e.MoveWorkspaceInDirection(cmd.Direction)
	case CmdResize:
		return e.runResize(cmd)
	case CmdChangeBorders:
		return e.runChangeBorders(cmd)
	case CmdSetFloating:
		return e.toggleWindowState(container.StateFloating, cmd.Toggle)
	case CmdSetFullscreen:
		return e.toggleWindowState(container.StateFullscreen, cmd.Toggle)
	case CmdSetMaximized:
		return e.setMaximized(cmd.Toggle)
	case CmdSetMinimized:
		return e.toggleWindowState(container.StateMinimized, cmd.Toggle)
	case CmdSetTiling:
		return e.toggleWindowState(container.StateTiling, cmd.Toggle)
	case CmdShellExec:
		return e.runShellExec(cmd.ShellArgs)
	case CmdWmEnableBindingMode:
		return e.runSetBindingMode(cmd.BindingMode, true)
	case CmdWmDisableBindingMode:
		return e.runSetBindingMode(cmd.BindingMode, false)
	case CmdWmTogglePause:
		return e.runTogglePause()
	case CmdWmReloadConfig:
		return e.runReloadConfig()
	case CmdWmRedraw:
		e.pending.QueueRedraw(e.root)
		e.pending.QueueAllWindowEffects()
		return nil
	case CmdWmExit:
		e.emit(WmEvent{Kind: EvApplicationExiting})
		return errExit
	default:
		return fmt.Errorf("engine: unhandled command kind %s", cmd.Kind)
	}
}

func (e *Engine) runClose() error {
	wc, ok := e.focusedWindow()
	if !ok {
		return fmt.Errorf("engine: close: no focused window")
	}
	native, ok := e.Lookup(wc.WindowID())
	if !ok {
		return fmt.Errorf("engine: close: no native window for %s", wc.WindowID())
	}
	return e.plat.CloseWindow(native)
}

func (e *Engine) runFocus(cmd Command) error {
	switch {
	case cmd.HasDirection:
		return e.FocusInDirection(container.FocusedDescendant(e.root), cmd.Direction)
	case cmd.HasWorkspace:
		return e.FocusWorkspace(cmd.Workspace)
	default:
		return fmt.Errorf("engine: focus: missing direction or workspace argument")
	}
}

func (e *Engine) runMove(cmd Command) error {
	wc, ok := e.focusedWindow()
	if !ok {
		return fmt.Errorf("engine: move: no focused window")
	}
	switch {
	case cmd.HasDirection:
		return e.MoveWindowInDirection(wc, cmd.Direction)
	case cmd.HasWorkspace:
		return e.MoveWindowToWorkspace(wc, cmd.Workspace)
	default:
		return fmt.Errorf("engine: move: missing direction or workspace argument")
	}
}

func (e *Engine) runResize(cmd Command) error {
	focused := container.FocusedDescendant(e.root)
	tc, ok := container.AsTilingContainer(focused)
	if !ok {
		return fmt.Errorf("engine: resize: focused container %s is not tiling", focused.ID())
	}
	return e.ResizeFocused(tc, cmd.Width, cmd.Height)
}

// runChangeBorders implements the ChangeBorders(width?, height?) command:
// an explicit override of the border_delta compensation a window's
// own measurement normally produces (spec.md §4.2 "border_delta is
// measured once per window ... and re-applied each redraw").
func (e *Engine) runChangeBorders(cmd Command) error {
	wc, ok := e.focusedWindow()
	if !ok {
		return fmt.Errorf("engine: change-borders: no focused window")
	}
	c := wc.(container.Container)
	delta := container.BorderDeltaOf(c)
	scale := 1.0
	if mon := container.MonitorOf(c); mon != nil && mon.Native.ScaleFactor != 0 {
		scale = mon.Native.ScaleFactor
	}
	if cmd.Width != nil {
		v := resolveLengthDelta(cmd.Width, delta.Left, 0, scale)
		delta.Left, delta.Right = v, v
	}
	if cmd.Height != nil {
		v := resolveLengthDelta(cmd.Height, delta.Top, 0, scale)
		delta.Top, delta.Bottom = v, v
	}
	setBorderDelta(c, delta)
	e.pending.QueueRedraw(c)
	return nil
}

// toggleWindowState implements SetFloating/SetFullscreen/SetMinimized/
// SetTiling's three-way toggle argument: On forces state, Off forces a
// return to Tiling (a no-op if the window isn't currently in state),
// Flip does whichever of those two the window isn't currently in.
func (e *Engine) toggleWindowState(state container.WindowState, toggle Toggle) error {
	wc, ok := e.focusedWindow()
	if !ok {
		return fmt.Errorf("engine: no focused window to toggle state on")
	}
	cur := container.StateOf(wc.(container.Container))

	var want container.WindowState
	switch toggle {
	case ToggleOn:
		want = state
	case ToggleOff:
		if cur != state {
			return nil
		}
		want = container.StateTiling
	default: // ToggleFlip
		if cur == state {
			want = container.StateTiling
		} else {
			want = state
		}
	}
	if want == cur {
		return nil
	}
	return e.UpdateWindowState(wc, want)
}

// setMaximized implements SetMaximized(toggle): a Fullscreen variant
// reached via OS-maximize that ignores the working-area delta
// (container.NonTilingWindow.Maximized), distinct from SetFullscreen's
// plain workspace-bounded fullscreen.
func (e *Engine) setMaximized(toggle Toggle) error {
	wc, ok := e.focusedWindow()
	if !ok {
		return fmt.Errorf("engine: set-maximized: no focused window")
	}
	handle := wc.WindowID()
	cur := container.StateOf(wc.(container.Container))
	curMaximized := false
	if nt, ok := wc.(*container.NonTilingWindow); ok {
		curMaximized = nt.Maximized && cur == container.StateFullscreen
	}

	want := !curMaximized
	switch toggle {
	case ToggleOn:
		want = true
	case ToggleOff:
		want = false
	}
	if want == curMaximized {
		return nil
	}

	if want {
		if cur != container.StateFullscreen {
			if err := e.UpdateWindowState(wc, container.StateFullscreen); err != nil {
				return err
			}
		}
		if rewc, ok := e.findWindow(handle); ok {
			if nt, ok := rewc.(*container.NonTilingWindow); ok {
				nt.Maximized = true
				e.pending.QueueRedraw(nt)
			}
		}
		return nil
	}

	if rewc, ok := e.findWindow(handle); ok {
		if nt, ok := rewc.(*container.NonTilingWindow); ok {
			nt.Maximized = false
		}
	}
	return e.UpdateWindowState(wc, container.StateTiling)
}

// runShellExec implements ShellExec(cmd...): the core only ever starts
// the process and reaps it in the background, never blocking the
// single-threaded dispatch loop on a user-launched program (mirroring
// the detached shell spawn in the teacher's terminal/window.go).
func (e *Engine) runShellExec(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("engine: shell-exec: missing command")
	}
	// #nosec G204 - args originate from the user's own config/IPC command, the same trust boundary as a shell alias.
	c := exec.Command(args[0], args[1:]...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("engine: shell-exec: %w", err)
	}
	go func() {
		if err := c.Wait(); err != nil {
			logger.Debug("shell-exec: process exited", "cmd", args[0], "err", err)
		}
	}()
	return nil
}

func (e *Engine) runSetBindingMode(name string, enable bool) error {
	if name == "" {
		return fmt.Errorf("engine: binding mode name required")
	}
	e.mu.Lock()
	if enable {
		e.activeBindingModes[name] = true
	} else if name != "default" {
		delete(e.activeBindingModes, name)
	}
	modes := e.activeModeNames()
	e.mu.Unlock()

	e.emit(WmEvent{Kind: EvBindingModesChanged, NewBindingModes: modes})
	return nil
}

// activeModeNames returns the currently active binding mode names.
// Callers must hold e.mu.
func (e *Engine) activeModeNames() []string {
	names := make([]string, 0, len(e.activeBindingModes))
	for name, active := range e.activeBindingModes {
		if active {
			names = append(names, name)
		}
	}
	return names
}

func (e *Engine) runTogglePause() error {
	e.mu.Lock()
	e.paused = !e.paused
	paused := e.paused
	e.mu.Unlock()
	e.emit(WmEvent{Kind: EvPauseChanged, IsPaused: paused})
	return nil
}

func (e *Engine) runReloadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("engine: wm-reload-config: %w", err)
	}
	e.cfg = cfg
	e.pending.QueueAllWindowEffects()
	e.emit(WmEvent{Kind: EvUserConfigChanged})
	return nil
}
