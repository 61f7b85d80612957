package engine

import (
	"fmt"

	"github.com/corewm/corewm/internal/config"
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/corewm/corewm/internal/platform"
	"github.com/corewm/corewm/internal/tree"
)

func toContainerRect(r geometry.Rect) container.Rect {
	return container.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// ManageWindow implements spec.md §4.4 manage_window: determine whether
// native should be managed at all, pick its initial state and
// insertion point, attach it, apply window rules, and queue the sync
// side effects.
func (e *Engine) ManageWindow(native platform.NativeWindow) error {
	handle := native.Handle()
	if _, known := e.findWindow(handle); known {
		return nil
	}
	if !native.IsManageable() {
		return nil
	}

	nativeProps := container.NativeWindowProperties{
		Title:        native.Title(),
		Class:        native.Class(),
		Process:      native.Process(),
		Frame:        toContainerRect(native.Frame()),
		IsMinimized:  native.IsMinimized(),
		IsMaximized:  native.IsMaximized(),
		IsFullscreen: native.IsFullscreen(),
	}

	rule, hasRule := e.matchWindowRule(nativeProps)
	if hasRule && rule.Action.Ignore {
		return nil
	}

	targetWs := e.targetWorkspaceFor(native, rule, hasRule)
	if targetWs == nil {
		return fmt.Errorf("engine: manage_window %s: no workspace available", handle)
	}

	state := initialStateFor(native)

	var node container.Container
	var wc container.WindowContainer
	if state == container.StateTiling {
		tw := container.NewTilingWindow(handle, nativeProps)
		node, wc = tw, tw
	} else {
		placement := initialFloatingPlacement(native, targetWs)
		ntw := container.NewNonTilingWindow(handle, nativeProps, state, placement)
		node, wc = ntw, ntw
	}

	parent, index := e.insertionTargetFor(targetWs, nil)
	if state != container.StateTiling {
		parent, index = targetWs, len(targetWs.Children())
	}
	if err := tree.Attach(node, parent, index); err != nil {
		return err
	}

	if mon := container.MonitorOf(targetWs); mon != nil {
		if nearest, ok := e.plat.NearestMonitor(nativeProps.Frame.CenterX(), nativeProps.Frame.CenterY()); ok {
			if nearest.DPI != mon.Native.DPI {
				container.SetPendingDPIAdjustment(node, true)
			}
		}
	}

	e.registerWindow(native, wc)

	if hasRule {
		e.applyWindowRuleActions(wc, rule)
	}

	e.pending.QueueRedraw(node)
	if err := tree.SetFocusedDescendant(node, nil); err != nil {
		return err
	}
	e.pending.QueueFocusChange()
	e.pending.QueueFocusedWindowEffect()

	focused := container.FocusedDescendant(e.root)
	dto := ToDTO(node, focused)
	e.emit(WmEvent{Kind: EvWindowManaged, Container: &dto})
	return nil
}

// initialStateFor picks a window's starting WindowState per spec.md
// §4.4: Minimized if the OS reports it minimized; Fullscreen if
// maximized or OS-fullscreen; Tiling otherwise. Floating is reached
// only via a window rule (applyWindowRuleActions), since the
// NativeWindow boundary this core consumes does not expose a
// resizable/non-resizable query.
func initialStateFor(native platform.NativeWindow) container.WindowState {
	switch {
	case native.IsMinimized():
		return container.StateMinimized
	case native.IsMaximized() || native.IsFullscreen():
		return container.StateFullscreen
	default:
		return container.StateTiling
	}
}

func initialFloatingPlacement(native platform.NativeWindow, ws *container.Workspace) container.Rect {
	frame := native.Frame()
	if frame.Width > 0 && frame.Height > 0 {
		return toContainerRect(frame)
	}
	if r, err := geometry.Resolve(ws); err == nil {
		return container.Rect{X: r.X + r.Width/4, Y: r.Y + r.Height/4, Width: r.Width / 2, Height: r.Height / 2}
	}
	return container.Rect{}
}

// matchWindowRule returns the first configured WindowRule matching
// native's class/process/title, in declaration order (spec.md §4.4).
// Later matching rules are not consulted, even for actions the first
// one leaves unset.
func (e *Engine) matchWindowRule(props container.NativeWindowProperties) (config.WindowRule, bool) {
	for _, r := range e.cfg.WindowRules {
		if r.Matches(props.Class, props.Process, props.Title) {
			return r, true
		}
	}
	return config.WindowRule{}, false
}

// targetWorkspaceFor resolves the workspace a newly-shown window should
// land in: the rule's forced workspace if any and it resolves, else the
// displayed workspace of the monitor nearest the window.
func (e *Engine) targetWorkspaceFor(native platform.NativeWindow, rule config.WindowRule, hasRule bool) *container.Workspace {
	if hasRule && rule.Action.ForceWorkspace != "" {
		if ws := e.findWorkspaceByName(rule.Action.ForceWorkspace); ws != nil {
			return ws
		}
	}
	frame := native.Frame()
	if nearest, ok := e.plat.NearestMonitor(frame.CenterX(), frame.CenterY()); ok {
		if mon := e.findMonitorByHandle(nearest.Handle); mon != nil {
			return mon.DisplayedWorkspace()
		}
	}
	for _, m := range e.root.Children() {
		if mon, ok := m.(*container.Monitor); ok {
			return mon.DisplayedWorkspace()
		}
	}
	return nil
}

func (e *Engine) applyWindowRuleActions(wc container.WindowContainer, rule config.WindowRule) {
	c := wc.(container.Container)
	if rule.Action.ForceFloating {
		if _, ok := c.(*container.TilingWindow); ok {
			if err := e.UpdateWindowState(wc, container.StateFloating); err != nil {
				logger.Warn("window rule force_floating failed", "window", wc.WindowID(), "err", err)
			}
		}
	}
	if rule.Action.BorderDeltaPixels != 0 {
		delta := container.RectDelta{
			Left: rule.Action.BorderDeltaPixels, Top: rule.Action.BorderDeltaPixels,
			Right: rule.Action.BorderDeltaPixels, Bottom: rule.Action.BorderDeltaPixels,
		}
		setBorderDelta(c, delta)
	}
	setAppliedRule(c, ruleKey(rule))
}

func (e *Engine) findWorkspaceByName(name string) *container.Workspace {
	for _, mon := range e.root.Children() {
		for _, wsC := range mon.Children() {
			if ws, ok := wsC.(*container.Workspace); ok && ws.Name == name {
				return ws
			}
		}
	}
	return nil
}

func (e *Engine) findMonitorByHandle(handle string) *container.Monitor {
	for _, m := range e.root.Children() {
		if mon, ok := m.(*container.Monitor); ok && mon.Native.Handle == handle {
			return mon
		}
	}
	return nil
}

// insertionTargetFor resolves a (parent, index) pair to attach a window
// into ws: an explicit saved InsertionTarget if given and still valid,
// else beside the workspace's last focused tiling window, else the
// workspace end (spec.md §4.4).
func (e *Engine) insertionTargetFor(ws *container.Workspace, explicit *container.InsertionTarget) (container.Container, int) {
	if explicit != nil && explicit.Parent != nil && !container.IsDetached(explicit.Parent) {
		idx := explicit.Index
		if idx > len(explicit.Parent.Children()) {
			idx = len(explicit.Parent.Children())
		}
		return explicit.Parent, idx
	}
	if tw := e.lastFocusedTilingWindow(ws); tw != nil {
		parent := tw.Parent()
		idx := container.IndexOfChild(parent, tw) + 1
		return parent, idx
	}
	return ws, len(ws.Children())
}

// lastFocusedTilingWindow walks ws's focus order looking for the first
// entry that resolves (directly, or by descending a Split's own focus
// order) to a TilingWindow.
func (e *Engine) lastFocusedTilingWindow(ws *container.Workspace) *container.TilingWindow {
	for _, id := range ws.ChildFocusOrder() {
		child := container.ChildByID(ws, id)
		if child == nil {
			continue
		}
		if tw, ok := child.(*container.TilingWindow); ok {
			return tw
		}
		if sp, ok := child.(*container.Split); ok {
			if leaf := deepestTilingLeaf(sp); leaf != nil {
				return leaf
			}
		}
	}
	return nil
}

// deepestTilingLeaf descends c's focus order (c must only contain
// Splits and TilingWindows) until it reaches a leaf.
func deepestTilingLeaf(c container.Container) *container.TilingWindow {
	cur := c
	for {
		if tw, ok := cur.(*container.TilingWindow); ok {
			return tw
		}
		order := cur.ChildFocusOrder()
		if len(order) == 0 {
			return nil
		}
		next := container.ChildByID(cur, order[0])
		if next == nil {
			return nil
		}
		cur = next
	}
}

// UnmanageWindow implements spec.md §4.4 unmanage_window.
func (e *Engine) UnmanageWindow(wc container.WindowContainer) error {
	c := wc.(container.Container)

	focusTarget := e.focusTargetAfterRemoval(c)
	e.pending.Forget(c)

	origParent := c.Parent()
	ancestorChain := container.SelfAndAncestors(origParent)

	if err := tree.Detach(c); err != nil {
		return err
	}
	e.unregisterWindow(wc.WindowID())

	e.emit(WmEvent{Kind: EvWindowUnmanaged, UnmanagedID: c.ID().String(), UnmanagedHandle: wc.WindowID()})

	if focusTarget != nil {
		if err := tree.SetFocusedDescendant(focusTarget, nil); err != nil {
			return err
		}
		e.pending.QueueFocusChange()
		e.markUnmanagedOrMinimizedNow()
	}

	for _, anc := range ancestorChain {
		if !container.IsDetached(anc) {
			e.pending.QueueRedraw(anc)
			break
		}
	}
	return nil
}

// focusTargetAfterRemoval implements the *focus-target-after-removal*
// rule (spec.md §4.4): the nearest tiling-window ancestor-sibling in
// child_focus_order; failing that, the workspace itself.
func (e *Engine) focusTargetAfterRemoval(c container.Container) container.Container {
	ws := container.WorkspaceOf(c)
	if ws == nil {
		return nil
	}
	cur := c.Parent()
	for cur != nil {
		for _, id := range cur.ChildFocusOrder() {
			if id == c.ID() {
				continue
			}
			child := container.ChildByID(cur, id)
			if child == nil {
				continue
			}
			if tw, ok := child.(*container.TilingWindow); ok {
				return tw
			}
			if sp, ok := child.(*container.Split); ok {
				if leaf := deepestTilingLeaf(sp); leaf != nil {
					return leaf
				}
			}
		}
		if _, isWs := cur.(*container.Workspace); isWs {
			break
		}
		cur = cur.Parent()
	}
	return ws
}

// UpdateWindowState implements spec.md §4.4 update_window_state,
// preserving the window's UUID across the Tiling<->NonTiling swap.
func (e *Engine) UpdateWindowState(wc container.WindowContainer, newState container.WindowState) error {
	switch w := wc.(type) {
	case *container.TilingWindow:
		return e.tilingToNonTiling(w, newState)
	case *container.NonTilingWindow:
		if newState == container.StateTiling {
			return e.nonTilingToTiling(w)
		}
		w.PrevState = w.State
		w.State = newState
		e.pending.QueueRedraw(w)
		return nil
	default:
		return fmt.Errorf("engine: update_window_state: unsupported container kind %s", wc.(container.Container).Kind())
	}
}

func (e *Engine) tilingToNonTiling(t *container.TilingWindow, newState container.WindowState) error {
	if newState == container.StateTiling {
		return nil
	}
	ws := container.WorkspaceOf(t)
	if ws == nil {
		return fmt.Errorf("engine: update_window_state: tiling window %s has no workspace", t.ID())
	}
	parent := t.Parent()
	origIdx := container.IndexOfChild(parent, t)
	insertion := &container.InsertionTarget{Parent: parent, Index: origIdx}

	if err := tree.MoveWithinTree(t, ws, len(ws.Children())); err != nil {
		return err
	}

	placement := placementFromTilingRect(t)
	nt := container.NewNonTilingWindow(t.WindowID(), t.Native, newState, placement)
	container.SetID(nt, t.ID())
	nt.BorderDelta = t.BorderDelta
	nt.DisplayState = t.DisplayState
	nt.HasPendingDPIAdjustment = t.HasPendingDPIAdjustment
	nt.AppliedRules = t.AppliedRules
	nt.ActiveDrag = t.ActiveDrag
	nt.PrevState = container.StateTiling
	nt.Insertion = insertion

	idx := container.IndexOfChild(ws, t)
	if err := tree.Replace(nt, ws, idx); err != nil {
		return err
	}

	e.windowByHandle[nt.WindowID()] = nt
	e.pending.QueueRedraw(nt)
	return nil
}

func (e *Engine) nonTilingToTiling(nt *container.NonTilingWindow) error {
	ws := container.WorkspaceOf(nt)
	if ws == nil {
		return fmt.Errorf("engine: update_window_state: non-tiling window %s has no workspace", nt.ID())
	}

	tw := container.NewTilingWindow(nt.WindowID(), nt.Native)
	container.SetID(tw, nt.ID())
	tw.BorderDelta = nt.BorderDelta
	tw.DisplayState = nt.DisplayState
	tw.HasPendingDPIAdjustment = nt.HasPendingDPIAdjustment
	tw.AppliedRules = nt.AppliedRules
	tw.ActiveDrag = nt.ActiveDrag
	tw.PrevState = nt.State

	parentIdx := container.IndexOfChild(ws, nt)
	if err := tree.Replace(tw, ws, parentIdx); err != nil {
		return err
	}

	parent, idx := e.insertionTargetFor(ws, nt.Insertion)
	if err := tree.MoveWithinTree(tw, parent, idx); err != nil {
		return err
	}

	e.windowByHandle[tw.WindowID()] = tw
	e.pending.QueueRedraw(tw)
	return nil
}

func placementFromTilingRect(t *container.TilingWindow) container.Rect {
	if r, err := geometry.Resolve(t); err == nil {
		return container.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return container.Rect{}
}

func setBorderDelta(c container.Container, delta container.RectDelta) {
	switch w := c.(type) {
	case *container.TilingWindow:
		w.BorderDelta = delta
	case *container.NonTilingWindow:
		w.BorderDelta = delta
	}
}

func setAppliedRule(c container.Container, key string) {
	switch w := c.(type) {
	case *container.TilingWindow:
		w.AppliedRules = append(w.AppliedRules, key)
	case *container.NonTilingWindow:
		w.AppliedRules = append(w.AppliedRules, key)
	}
}

func ruleKey(r config.WindowRule) string {
	return r.ClassContains + "|" + r.ProcessContains + "|" + r.TitleContains
}
