package engine

import (
	"fmt"

	"github.com/corewm/corewm/internal/config"
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/tree"
	"github.com/google/uuid"
)

// FocusWorkspace implements spec.md §4.4 focus_workspace: resolve
// target to a workspace (activating it if needed), optionally summon
// it to the currently focused monitor, focus its most recently
// focused descendant, and garbage-collect whatever workspace falls
// out of display as a result.
func (e *Engine) FocusWorkspace(target WorkspaceTarget) error {
	curMon := container.MonitorOf(container.FocusedDescendant(e.root))

	ws, err := e.resolveWorkspaceTarget(target, curMon)
	if err != nil {
		return err
	}

	wasDisplayed := ws.IsDisplayed()
	prevMon := container.MonitorOf(ws)

	if !wasDisplayed && curMon != nil && prevMon != nil && prevMon.ID() != curMon.ID() &&
		e.cfg.General.SummonWorkspaceToCurrentMonitor {
		if err := e.summonWorkspace(ws, curMon); err != nil {
			return err
		}
	}

	mon := container.MonitorOf(ws)
	if mon != nil {
		if err := tree.SetFocusedDescendant(ws, nil); err != nil {
			return err
		}
	}

	focusTarget := container.Container(ws)
	if recent := e.lastFocusedTilingWindow(ws); recent != nil {
		focusTarget = recent
	} else if win := firstNonTilingWindow(ws); win != nil {
		focusTarget = win
	}
	if err := tree.SetFocusedDescendant(focusTarget, nil); err != nil {
		return err
	}

	e.touchWorkspaceRecency(ws)
	e.pending.QueueRedraw(ws)
	if prevMon != nil {
		if old := prevMon.DisplayedWorkspace(); old != nil {
			e.pending.QueueRedraw(old)
		}
	}
	e.pending.QueueFocusChange()
	e.pending.QueueCursorJump()

	dto := ToDTO(ws, focusTarget)
	e.emit(WmEvent{Kind: EvWorkspaceActivated, Workspace: &dto})

	e.gcWorkspaces()
	return nil
}

// summonWorkspace implements the "summon_to_current_monitor" half of
// focus_workspace: it moves ws onto curMon. When ws is the displayed
// workspace of its old monitor, curMon's displayed workspace first moves
// to that monitor and becomes displayed there, so the two are swapped;
// otherwise ws is simply moved and its old monitor keeps displaying
// what it was.
func (e *Engine) summonWorkspace(ws *container.Workspace, curMon *container.Monitor) error {
	curDisplayed := curMon.DisplayedWorkspace()
	oldMon := container.MonitorOf(ws)

	if curDisplayed != nil && oldMon != nil && ws.IsDisplayed() {
		if err := tree.MoveWithinTree(curDisplayed, oldMon, len(oldMon.Children())); err != nil {
			return err
		}
		if err := tree.SetFocusedDescendant(curDisplayed, nil); err != nil {
			return err
		}
		e.sortMonitorWorkspaces(oldMon)
	}

	if err := tree.MoveWithinTree(ws, curMon, len(curMon.Children())); err != nil {
		return err
	}
	e.sortMonitorWorkspaces(curMon)
	return nil
}

// resolveWorkspaceTarget resolves a WorkspaceTarget to a live
// Workspace, activating a config-defined workspace on demand.
func (e *Engine) resolveWorkspaceTarget(target WorkspaceTarget, curMon *container.Monitor) (*container.Workspace, error) {
	switch target.Kind {
	case WSTargetName:
		if ws := e.findWorkspaceByName(target.Name); ws != nil {
			return ws, nil
		}
		return e.ActivateWorkspace(target.Name, curMon)

	case WSTargetRecent:
		cur := container.MonitorOf(container.FocusedDescendant(e.root))
		var curWs *container.Workspace
		if cur != nil {
			curWs = cur.DisplayedWorkspace()
		}
		for _, id := range e.recentWorkspaceIDs {
			ws := e.findWorkspaceByID(id)
			if ws != nil && (curWs == nil || ws.ID() != curWs.ID()) {
				return ws, nil
			}
		}
		return nil, fmt.Errorf("engine: focus_workspace: no recent workspace available")

	case WSTargetNext, WSTargetPrevious:
		if curMon == nil {
			return nil, fmt.Errorf("engine: focus_workspace: no focused monitor")
		}
		cur := curMon.DisplayedWorkspace()
		name, ok := e.adjacentWorkspaceName(cur, target.Kind == WSTargetNext)
		if !ok {
			return nil, fmt.Errorf("engine: focus_workspace: no configured workspace to step to")
		}
		if ws := e.findWorkspaceByName(name); ws != nil {
			return ws, nil
		}
		return e.ActivateWorkspace(name, curMon)

	case WSTargetDirection:
		mon := curMon
		if mon == nil {
			return nil, fmt.Errorf("engine: focus_workspace: no focused monitor")
		}
		next := e.monitorInDirection(mon, target.Direction)
		if next == nil {
			return nil, fmt.Errorf("engine: focus_workspace: %w", errNoMonitorInDirection)
		}
		ws := next.DisplayedWorkspace()
		if ws == nil {
			return nil, fmt.Errorf("engine: focus_workspace: monitor %s has no displayed workspace", next.ID())
		}
		return ws, nil
	}
	return nil, fmt.Errorf("engine: focus_workspace: unknown target kind %d", target.Kind)
}

// adjacentWorkspaceName steps forward or backward through
// e.cfg.Workspaces from cur's name, wrapping around.
func (e *Engine) adjacentWorkspaceName(cur *container.Workspace, forward bool) (string, bool) {
	names := make([]string, len(e.cfg.Workspaces))
	for i, wc := range e.cfg.Workspaces {
		names[i] = wc.Name
	}
	if len(names) == 0 {
		return "", false
	}
	if cur == nil {
		return names[0], true
	}
	idx := -1
	for i, n := range names {
		if n == cur.Name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return names[0], true
	}
	if forward {
		return names[(idx+1)%len(names)], true
	}
	return names[(idx-1+len(names))%len(names)], true
}

func (e *Engine) findWorkspaceByID(id uuid.UUID) *container.Workspace {
	for _, mon := range e.monitors() {
		for _, wsC := range mon.Children() {
			if ws, ok := wsC.(*container.Workspace); ok && ws.ID() == id {
				return ws
			}
		}
	}
	return nil
}

// ActivateWorkspace implements spec.md §4.4 activate_workspace. If
// name is given, locates its WorkspaceConfig and errors if it is
// already active; otherwise finds the next inactive configured
// workspace pinned to (or unpinned and eligible for) targetMonitor.
// Direction is chosen by the monitor's aspect ratio: Vertical if
// taller than wide, else Horizontal.
func (e *Engine) ActivateWorkspace(name string, targetMonitor *container.Monitor) (*container.Workspace, error) {
	if targetMonitor == nil {
		mons := e.monitors()
		if len(mons) == 0 {
			return nil, fmt.Errorf("engine: activate_workspace: no monitors attached")
		}
		targetMonitor = mons[0]
	}

	var wc config.WorkspaceConfig
	if name != "" {
		found := false
		for _, c := range e.cfg.Workspaces {
			if c.Name == name {
				wc, found = c, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("engine: activate_workspace: no configured workspace named %q", name)
		}
		if e.findWorkspaceByName(name) != nil {
			return nil, fmt.Errorf("engine: activate_workspace: workspace %q is already active", name)
		}
	} else {
		idx := e.monitorIndex(targetMonitor)
		found := false
		for _, c := range e.cfg.Workspaces {
			if e.findWorkspaceByName(c.Name) != nil {
				continue
			}
			if c.PinnedMonitorIndex != -1 && c.PinnedMonitorIndex != idx {
				continue
			}
			wc, found = c, true
			break
		}
		if !found {
			return nil, fmt.Errorf("engine: activate_workspace: no inactive configured workspace available")
		}
	}

	dir := container.Horizontal
	if targetMonitor.Native.Height > targetMonitor.Native.Width {
		dir = container.Vertical
	}

	ws := container.NewWorkspace(wc.Name, dir)
	if wc.DisplayName != "" {
		ws.DisplayName = wc.DisplayName
	}
	ws.PinnedMonitorIndex = wc.PinnedMonitorIndex
	ws.KeepAlive = wc.KeepAlive
	if wc.Outer != nil {
		ws.OuterGap = *wc.Outer
	} else {
		ws.OuterGap = e.cfg.Gaps.Outer
	}
	if wc.Inner != nil {
		ws.InnerGap = *wc.Inner
	} else {
		ws.InnerGap = e.cfg.Gaps.Inner
	}
	ws.SingleWindowOuterGap = e.cfg.Gaps.SingleWindowOuter

	if err := tree.Attach(ws, targetMonitor, len(targetMonitor.Children())); err != nil {
		return nil, err
	}
	e.sortMonitorWorkspaces(targetMonitor)

	dto := ToDTO(ws, nil)
	e.emit(WmEvent{Kind: EvWorkspaceActivated, Workspace: &dto})
	return ws, nil
}

// DeactivateWorkspace implements spec.md §4.4 deactivate_workspace.
func (e *Engine) DeactivateWorkspace(ws *container.Workspace) error {
	dto := ToDTO(ws, nil)
	if err := tree.Detach(ws); err != nil {
		return err
	}
	e.emit(WmEvent{Kind: EvWorkspaceDeactivated, Workspace: &dto})
	return nil
}

// gcWorkspaces detaches every empty, non-keep_alive, non-displayed
// workspace still attached to the tree (spec.md §4.4 focus_workspace's
// trailing garbage-collection step).
func (e *Engine) gcWorkspaces() {
	for _, m := range e.monitors() {
		for _, c := range append([]container.Container(nil), m.Children()...) {
			ws, ok := c.(*container.Workspace)
			if !ok {
				continue
			}
			if ws.IsEmpty() && !ws.KeepAlive && !ws.IsDisplayed() {
				if err := e.DeactivateWorkspace(ws); err != nil {
					logger.Warn("gc_workspaces: deactivate failed", "workspace", ws.Name, "err", err)
				}
			}
		}
	}
}

func firstNonTilingWindow(ws *container.Workspace) container.Container {
	for _, wc := range container.DescendantWindows(ws) {
		if _, ok := wc.(*container.NonTilingWindow); ok {
			return wc.(container.Container)
		}
	}
	return nil
}

// MoveWindowToWorkspace implements the `Move(workspace_name)` half of
// spec.md §6.1: detach w from its current slot and attach it at the end
// of target. A TilingWindow takes an even share of target's tiling axis
// (Attach's growth rule) rather than keeping its old tiling size; a
// NonTilingWindow's floating_placement is left untouched. Activates
// target if it isn't already live.
func (e *Engine) MoveWindowToWorkspace(wc container.WindowContainer, target WorkspaceTarget) error {
	c := wc.(container.Container)
	curMon := container.MonitorOf(container.FocusedDescendant(e.root))

	ws, err := e.resolveWorkspaceTarget(target, curMon)
	if err != nil {
		return err
	}
	origWs := container.WorkspaceOf(c)
	if origWs != nil && origWs.ID() == ws.ID() {
		return nil
	}

	if err := tree.MoveWithinTree(c, ws, len(ws.Children())); err != nil {
		return err
	}
	if err := tree.SetFocusedDescendant(c, nil); err != nil {
		return err
	}

	e.pending.QueueRedraw(ws)
	if origWs != nil {
		e.pending.QueueRedraw(origWs)
	}
	e.pending.QueueFocusChange()
	e.gcWorkspaces()
	return nil
}

// MoveWorkspaceInDirection implements spec.md §6.1's MoveWorkspace(direction):
// relocate the currently displayed workspace of the focused monitor onto
// the neighboring monitor in dir; that monitor's displayed workspace, if
// it has one, moves onto the focused monitor in exchange (see
// summonWorkspace).
func (e *Engine) MoveWorkspaceInDirection(dir Direction) error {
	curMon := container.MonitorOf(container.FocusedDescendant(e.root))
	if curMon == nil {
		return fmt.Errorf("engine: move_workspace: no focused monitor")
	}
	ws := curMon.DisplayedWorkspace()
	if ws == nil {
		return fmt.Errorf("engine: move_workspace: current monitor has no displayed workspace")
	}
	destMon := e.monitorInDirection(curMon, dir)
	if destMon == nil {
		return fmt.Errorf("engine: move_workspace: %w", errNoMonitorInDirection)
	}

	if err := e.summonWorkspace(ws, destMon); err != nil {
		return err
	}
	if err := tree.SetFocusedDescendant(ws, nil); err != nil {
		return err
	}

	e.pending.QueueRedraw(curMon)
	e.pending.QueueRedraw(destMon)
	e.pending.QueueFocusChange()

	dto := ToDTO(ws, container.FocusedDescendant(e.root))
	e.emit(WmEvent{Kind: EvWorkspaceUpdated, Workspace: &dto})
	e.gcWorkspaces()
	return nil
}
