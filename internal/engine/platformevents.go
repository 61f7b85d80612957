package engine

import (
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/corewm/corewm/internal/platform"
	"github.com/corewm/corewm/internal/tree"
)

// handleWindowShownOrFocused handles both EventWindowShown (a new
// top-level window appeared: manage it) and EventWindowFocused (the OS
// reports a focus change: mirror it into the tree unless it falls
// within the focus-override window following one of our own
// unmanage/minimize operations, spec.md §4.4 scenario 4).
func (e *Engine) handleWindowShownOrFocused(ev platform.Event) {
	if ev.Window == nil {
		return
	}
	if ev.Kind == platform.EventWindowShown {
		if err := e.ManageWindow(ev.Window); err != nil {
			logger.Warn("manage_window failed", "handle", ev.Window.Handle(), "err", err)
		}
		return
	}

	wc, ok := e.findWindow(ev.Window.Handle())
	if !ok {
		return
	}
	if e.shouldOverrideForeignFocus() {
		logger.Debug("overriding foreign focus event", "handle", ev.Window.Handle())
		e.pending.QueueFocusChange()
		return
	}

	c := wc.(container.Container)
	if err := tree.SetFocusedDescendant(c, nil); err != nil {
		logger.Warn("set_focused_descendant failed", "handle", ev.Window.Handle(), "err", err)
		return
	}
	if ws := container.WorkspaceOf(c); ws != nil {
		e.touchWorkspaceRecency(ws)
	}
	e.pending.QueueFocusChange()
	e.pending.QueueFocusedWindowEffect()

	dto := ToDTO(c, c)
	e.emit(WmEvent{Kind: EvFocusChanged, Container: &dto})
}

// handleWindowHidden marks a managed window's display state Hidden
// without detaching it from the tree: the window still exists, it is
// just off-screen (e.g. a virtual-desktop switch on some platforms),
// and the next redraw will show it again once its workspace is
// displayed.
func (e *Engine) handleWindowHidden(ev platform.Event) {
	if ev.Window == nil {
		return
	}
	wc, ok := e.findWindow(ev.Window.Handle())
	if !ok {
		return
	}
	container.SetDisplayState(wc.(container.Container), container.Hidden)
}

// handleWindowDestroyed implements unmanage_window's trigger edge.
func (e *Engine) handleWindowDestroyed(ev platform.Event) {
	if ev.Window == nil {
		return
	}
	wc, ok := e.findWindow(ev.Window.Handle())
	if !ok {
		return
	}
	if err := e.UnmanageWindow(wc); err != nil {
		logger.Warn("unmanage_window failed", "handle", ev.Window.Handle(), "err", err)
	}
}

// handleWindowMinimized implements update_window_state's OS-driven
// trigger edge: the platform reports a window minimized out from under
// the engine (e.g. the user clicked a native minimize button).
func (e *Engine) handleWindowMinimized(ev platform.Event) {
	if ev.Window == nil {
		return
	}
	wc, ok := e.findWindow(ev.Window.Handle())
	if !ok {
		return
	}
	if container.StateOf(wc.(container.Container)) == container.StateMinimized {
		return
	}
	if err := e.UpdateWindowState(wc, container.StateMinimized); err != nil {
		logger.Warn("update_window_state (minimized) failed", "handle", ev.Window.Handle(), "err", err)
		return
	}
	e.markUnmanagedOrMinimizedNow()
}

// handleWindowMovedOrResized keeps a Floating window's
// floating_placement in sync when the user drags or resizes it
// natively; tiling windows ignore this, since their geometry is
// derived from the tree rather than the OS frame.
func (e *Engine) handleWindowMovedOrResized(ev platform.Event) {
	if ev.Window == nil {
		return
	}
	wc, ok := e.findWindow(ev.Window.Handle())
	if !ok {
		return
	}
	nt, ok := wc.(*container.NonTilingWindow)
	if !ok || nt.State != container.StateFloating {
		return
	}
	nt.FloatingPlacement = toContainerRect(ev.Window.Frame())
	e.pending.QueueRedraw(nt)
}

// handleWindowTitleChanged refreshes the cached NativeWindowProperties
// title so DTOs and window-rule re-evaluation see the current title.
func (e *Engine) handleWindowTitleChanged(ev platform.Event) {
	if ev.Window == nil {
		return
	}
	wc, ok := e.findWindow(ev.Window.Handle())
	if !ok {
		return
	}
	switch w := wc.(type) {
	case *container.TilingWindow:
		w.Native.Title = ev.Window.Title()
	case *container.NonTilingWindow:
		w.Native.Title = ev.Window.Title()
	}
}

// handleMouseMove implements focus-follows-cursor when
// cfg.General.FocusFollowsCursor is enabled: find the monitor nearest
// the cursor, then the topmost window whose resolved rect contains it,
// and focus that window.
func (e *Engine) handleMouseMove(ev platform.Event) {
	if !e.cfg.General.FocusFollowsCursor {
		return
	}
	nearest, ok := e.plat.NearestMonitor(ev.X, ev.Y)
	if !ok {
		return
	}
	mon := e.findMonitorByHandle(nearest.Handle)
	if mon == nil {
		return
	}
	ws := mon.DisplayedWorkspace()
	if ws == nil {
		return
	}
	target := containerAtPoint(ws, ev.X, ev.Y)
	if target == nil {
		return
	}
	if err := tree.SetFocusedDescendant(target, nil); err != nil {
		return
	}
	e.touchWorkspaceRecency(ws)
	e.pending.QueueFocusChange()
	if e.cfg.General.CursorJumpOnFocus {
		e.pending.QueueFocusedWindowEffect()
	}

	dto := ToDTO(target, target)
	e.emit(WmEvent{Kind: EvFocusChanged, Container: &dto})
}

// containerAtPoint returns the last (topmost in child order) window
// under ws whose resolved rect contains (x, y), or nil.
func containerAtPoint(ws *container.Workspace, x, y float64) container.Container {
	var best container.Container
	for _, wc := range container.DescendantWindows(ws) {
		c := wc.(container.Container)
		r, err := geometry.Resolve(c)
		if err != nil {
			continue
		}
		if x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom() {
			best = c
		}
	}
	return best
}

// handleKeybinding resolves a fired key chord against every currently
// active binding mode (spec.md §6.1's BindingMode concept) and runs
// the first matching command line found.
func (e *Engine) handleKeybinding(ev platform.Event) {
	e.mu.Lock()
	modes := e.activeModeNames()
	e.mu.Unlock()

	for _, name := range modes {
		mode, ok := e.cfg.BindingModes[name]
		if !ok {
			continue
		}
		line, ok := mode.Bindings[ev.Binding]
		if !ok {
			continue
		}
		cmd, err := ParseCommandLine(line)
		if err != nil {
			logger.Warn("keybinding: invalid command", "binding", ev.Binding, "line", line, "err", err)
			return
		}
		if err := e.runCommand(cmd); err != nil {
			logger.Warn("keybinding: command failed", "binding", ev.Binding, "err", err)
		}
		return
	}
}
