// Package pendingsync implements the reducer that accumulates the
// side-effecting consequences of tree mutations during one dispatch and
// applies them to the platform in a single fixed-order flush
// (spec.md §4.5). Apart from read-only platform queries and the Close
// command's CloseWindow request, no OS call happens anywhere else in the
// engine.
package pendingsync

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/corewm/corewm/internal/config"
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/corewm/corewm/internal/platform"
)

var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "sync",
	})
}

// SetLogLevel sets the logging level for the pendingsync package.
func SetLogLevel(level log.Level) { logger.SetLevel(level) }

// NativeLookup resolves a window's stable handle back to the live
// platform.NativeWindow the engine holds for it. The engine owns this
// registry (populated from platform.Event and platform.ManageableWindows)
// since pendingsync itself never talks to the OS directly.
type NativeLookup interface {
	Lookup(handle string) (platform.NativeWindow, bool)
}

// PendingSync aggregates what a dispatch needs to do to the platform
// before the next event is processed. Commands call the Queue* methods;
// the engine calls Flush at the end of each top-level event or
// successful command, skipping it when nothing is queued. What a failed
// command queued stays queued until the next flush.
type PendingSync struct {
	containersToRedraw map[container.Container]struct{}
	focusChange         bool
	updateFocusedWindow  bool
	updateAllWindows     bool
	cursorJump           bool
}

// New returns an empty reducer.
func New() *PendingSync {
	return &PendingSync{containersToRedraw: make(map[container.Container]struct{})}
}

// QueueRedraw marks c (and, once flushed, its descendant windows) for a
// position/visibility refresh.
func (p *PendingSync) QueueRedraw(c container.Container) {
	if c == nil {
		return
	}
	p.containersToRedraw[c] = struct{}{}
}

// QueueFocusChange marks that the globally focused container changed
// and the platform's foreground window needs updating.
func (p *PendingSync) QueueFocusChange() { p.focusChange = true }

// QueueFocusedWindowEffect marks that the focused window's visual
// effect (border/corner/transparency) needs reapplying.
func (p *PendingSync) QueueFocusedWindowEffect() { p.updateFocusedWindow = true }

// QueueAllWindowEffects marks that every window's visual effect needs
// reapplying (e.g. after a config reload changes effect settings).
func (p *PendingSync) QueueAllWindowEffects() { p.updateAllWindows = true }

// QueueCursorJump marks that the cursor should move to the center of
// the focused container's rect once the flush has finished placing
// windows.
func (p *PendingSync) QueueCursorJump() { p.cursorJump = true }

// Forget removes c from the redraw set without triggering a flush; used
// when a container is detached for good (unmanage_window) so a stale
// entry never reaches expandToWindows on the next flush.
func (p *PendingSync) Forget(c container.Container) {
	delete(p.containersToRedraw, c)
}

// IsEmpty reports whether nothing has been queued; the engine uses this
// to skip a no-op flush.
func (p *PendingSync) IsEmpty() bool {
	return len(p.containersToRedraw) == 0 && !p.focusChange && !p.updateFocusedWindow &&
		!p.updateAllWindows && !p.cursorJump
}

// Flush applies everything queued since the last flush to plat, in the
// fixed order spec.md §4.5 mandates, then clears the reducer. root is
// the tree root, used to resolve the currently focused container for
// steps 3-5. lookup resolves a window's handle to its live
// platform.NativeWindow.
func (p *PendingSync) Flush(root *container.Root, cfg *config.UserConfig, plat platform.Platform, lookup NativeLookup) {
	defer p.clear()

	windows := p.expandToWindows()
	p.redrawWindows(windows, plat, lookup)

	if p.focusChange {
		p.applyFocusChange(root, plat, lookup)
	}

	if p.updateFocusedWindow || p.updateAllWindows {
		p.applyWindowEffects(root, cfg, plat, lookup)
	}

	if p.cursorJump {
		p.applyCursorJump(root, plat)
	}
}

// expandToWindows implements step 1: expand containers_to_redraw to the
// union of each container's descendant WindowContainers, excluding
// anything that has since been detached.
func (p *PendingSync) expandToWindows() []container.WindowContainer {
	seen := make(map[string]struct{})
	var out []container.WindowContainer
	add := func(wc container.WindowContainer) {
		if _, ok := seen[wc.WindowID()]; ok {
			return
		}
		seen[wc.WindowID()] = struct{}{}
		out = append(out, wc)
	}

	for c := range p.containersToRedraw {
		if container.IsDetached(c) {
			continue
		}
		if wc, ok := container.AsWindowContainer(c); ok {
			add(wc)
		}
		for _, wc := range container.DescendantWindows(c) {
			add(wc)
		}
	}
	return out
}

// redrawWindows implements step 2: display-state transitions, restore,
// geometry resolution and placement for every window swept up by the
// redraw set.
func (p *PendingSync) redrawWindows(windows []container.WindowContainer, plat platform.Platform, lookup NativeLookup) {
	for _, wc := range windows {
		c := wc.(container.Container)
		native, ok := lookup.Lookup(wc.WindowID())
		if !ok {
			logger.Debug("skip redraw: native window gone", "window", wc.WindowID())
			continue
		}

		ws := container.WorkspaceOf(c)
		displayed := ws != nil && ws.IsDisplayed()

		state := container.StateOf(c)
		displayState := container.DisplayStateOf(c)
		newDisplayState := nextDisplayState(displayState, displayed)
		container.SetDisplayState(c, newDisplayState)

		nativeProps := container.NativePropsOf(c)
		if (nativeProps.IsMinimized || nativeProps.IsMaximized) && state != container.StateMinimized {
			if err := plat.Restore(native); err != nil {
				logger.Warn("restore failed", "window", wc.WindowID(), "err", err)
			}
		}

		rect, err := geometry.Resolve(c)
		if err != nil {
			logger.Debug("skip redraw: not placeable", "window", wc.WindowID(), "err", err)
			continue
		}
		rect = geometry.WithBorderDelta(rect, container.BorderDeltaOf(c))

		visible := newDisplayState == container.Shown || newDisplayState == container.Showing
		if err := plat.SetPosition(native, state, visible, rect); err != nil {
			logger.Warn("set_position failed", "window", wc.WindowID(), "err", err)
			continue
		}

		if container.HasPendingDPIAdjustment(c) {
			if err := plat.SetPosition(native, state, visible, rect); err != nil {
				logger.Warn("set_position (dpi reapply) failed", "window", wc.WindowID(), "err", err)
			}
			container.SetPendingDPIAdjustment(c, false)
		}
	}
}

// nextDisplayState applies the transition rule from spec.md §4.5 step
// 2: Hidden|Hiding -> Showing if the window's workspace is now
// displayed, Shown|Showing -> Hiding if it is not. Any other
// combination (already settled) is left alone.
func nextDisplayState(cur container.DisplayState, displayed bool) container.DisplayState {
	if displayed {
		if cur == container.Hidden || cur == container.Hiding {
			return container.Showing
		}
		return cur
	}
	if cur == container.Shown || cur == container.Showing {
		return container.Hiding
	}
	return cur
}

// applyFocusChange implements step 3.
func (p *PendingSync) applyFocusChange(root *container.Root, plat platform.Platform, lookup NativeLookup) {
	focused := container.FocusedDescendant(root)
	if wc, ok := container.AsWindowContainer(focused); ok {
		if native, ok := lookup.Lookup(wc.WindowID()); ok {
			if err := plat.SetForeground(native); err != nil {
				logger.Warn("set_foreground failed", "window", wc.WindowID(), "err", err)
			}
			return
		}
	}
	if ws, ok := focused.(*container.Workspace); ok && ws.IsEmpty() {
		if err := plat.SetForegroundDesktop(); err != nil {
			logger.Warn("set_foreground desktop failed", "err", err)
		}
	}
}

// applyWindowEffects implements step 4. The previously focused window
// gets the config's "other windows" effect; the newly focused one gets
// the "focused window" effect. When focus changed, every window is
// refreshed, since the previously focused one is not tracked.
func (p *PendingSync) applyWindowEffects(root *container.Root, cfg *config.UserConfig, plat platform.Platform, lookup NativeLookup) {
	focused := container.FocusedDescendant(root)
	focusedWC, focusedIsWindow := container.AsWindowContainer(focused)

	var targets []container.WindowContainer
	if p.updateAllWindows || p.focusChange {
		targets = container.DescendantWindows(root)
	} else if focusedIsWindow {
		targets = append(targets, focusedWC)
	}

	for _, wc := range targets {
		native, ok := lookup.Lookup(wc.WindowID())
		if !ok {
			continue
		}
		isFocused := focusedIsWindow && wc.WindowID() == focusedWC.WindowID()
		effect := cfg.Appearance.OtherWindowsEffect
		if isFocused {
			effect = cfg.Appearance.FocusedWindowEffect
		}
		if err := plat.SetBorderColor(native, effect.BorderColor); err != nil {
			logger.Warn("set_border_color failed", "window", wc.WindowID(), "err", err)
		}
		if err := plat.SetCornerStyle(native, effect.CornerStyle); err != nil {
			logger.Warn("set_corner_style failed", "window", wc.WindowID(), "err", err)
		}
		if err := plat.SetTransparency(native, effect.Transparency); err != nil {
			logger.Warn("set_transparency failed", "window", wc.WindowID(), "err", err)
		}
	}
}

// applyCursorJump implements step 5.
func (p *PendingSync) applyCursorJump(root *container.Root, plat platform.Platform) {
	focused := container.FocusedDescendant(root)
	rect, err := geometry.Resolve(focused)
	if err != nil {
		return
	}
	if err := plat.SetCursorPos(rect.CenterX(), rect.CenterY()); err != nil {
		logger.Warn("set_cursor_pos failed", "err", err)
	}
}

func (p *PendingSync) clear() {
	p.containersToRedraw = make(map[container.Container]struct{})
	p.focusChange = false
	p.updateFocusedWindow = false
	p.updateAllWindows = false
	p.cursorJump = false
}
