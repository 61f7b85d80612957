package engine

import (
	"fmt"
	"sort"

	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/corewm/corewm/internal/platform"
	"github.com/corewm/corewm/internal/tree"
)

func toNativeMonitorProperties(native platform.NativeMonitor) container.NativeMonitorProperties {
	return container.NativeMonitorProperties{
		Handle:     native.Handle,
		DevicePath: native.DevicePath,
		HardwareID: native.HardwareID,
		X:          int(native.Bounds.X),
		Y:          int(native.Bounds.Y),
		Width:      int(native.Bounds.Width),
		Height:     int(native.Bounds.Height),
		WorkingArea: container.RectDelta{
			Left: native.WorkingArea.Left, Top: native.WorkingArea.Top,
			Right: native.WorkingArea.Right, Bottom: native.WorkingArea.Bottom,
		},
		DPI:         native.DPI,
		ScaleFactor: native.ScaleFactor,
	}
}

// AddMonitor implements spec.md §4.4 add_monitor: attaches a new Monitor
// at root, activates any keep_alive workspaces configured for this
// monitor's index, and failing that, activates one inactive workspace so
// the monitor always has something displayed.
func (e *Engine) AddMonitor(native platform.NativeMonitor) (*container.Monitor, error) {
	mon := container.NewMonitor(toNativeMonitorProperties(native))
	if err := tree.Attach(mon, e.root, len(e.root.Children())); err != nil {
		return nil, err
	}
	e.sortMonitors()

	idx := e.monitorIndex(mon)
	for _, wc := range e.cfg.Workspaces {
		if wc.KeepAlive && wc.PinnedMonitorIndex == idx {
			if _, err := e.ActivateWorkspace(wc.Name, mon); err != nil {
				logger.Warn("add_monitor: keep_alive workspace activation failed", "name", wc.Name, "err", err)
			}
		}
	}
	if mon.DisplayedWorkspace() == nil {
		if _, err := e.ActivateWorkspace("", mon); err != nil {
			logger.Warn("add_monitor: fallback workspace activation failed", "err", err)
		}
	}

	e.pending.QueueRedraw(e.root)
	dto := ToDTO(mon, container.FocusedDescendant(e.root))
	e.emit(WmEvent{Kind: EvMonitorAdded, Monitor: &dto})
	return mon, nil
}

// RemoveMonitor implements spec.md §4.4 remove_monitor. The last monitor
// is never removed, since dropping it would orphan every workspace.
func (e *Engine) RemoveMonitor(m *container.Monitor) error {
	others := e.otherMonitors(m)
	if len(others) == 0 {
		logger.Debug("remove_monitor: refusing to remove the last monitor", "monitor", m.Native.Handle)
		return nil
	}
	target := others[0]

	for _, wsC := range append([]container.Container(nil), m.Children()...) {
		ws, ok := wsC.(*container.Workspace)
		if !ok {
			continue
		}
		if ws.IsEmpty() && !ws.KeepAlive {
			if err := tree.Detach(ws); err != nil {
				return err
			}
			continue
		}
		if err := tree.MoveWithinTree(ws, target, len(target.Children())); err != nil {
			return err
		}
	}
	e.sortMonitorWorkspaces(target)

	if err := tree.Detach(m); err != nil {
		return err
	}

	dto := ToDTO(m, nil)
	e.emit(WmEvent{Kind: EvMonitorRemoved, Monitor: &dto})
	e.pending.QueueRedraw(e.root)
	e.pending.QueueFocusChange()
	return nil
}

// UpdateMonitor implements spec.md §4.4 update_monitor.
func (e *Engine) UpdateMonitor(m *container.Monitor, native platform.NativeMonitor) {
	m.Native = toNativeMonitorProperties(native)
	e.pending.QueueRedraw(m)
	dto := ToDTO(m, container.FocusedDescendant(e.root))
	e.emit(WmEvent{Kind: EvMonitorUpdated, Monitor: &dto})
}

// HandleDisplaysChanged implements spec.md §4.4's display-settings-changed
// handler: re-enumerate native displays, match them to existing monitors
// by handle, then device path, then hardware id (only when unique among
// the set), add/remove as needed, sort, mark every window pending a DPI
// re-adjustment, and re-center every floating window against its
// workspace rect (not only those whose workspace moved).
func (e *Engine) HandleDisplaysChanged(natives []platform.NativeMonitor) {
	existing := e.monitors()
	matchedExisting := make(map[string]bool, len(existing))
	matchedNative := make(map[int]bool, len(natives))

	hwCounts := make(map[string]int, len(natives))
	for _, n := range natives {
		if n.HardwareID != "" {
			hwCounts[n.HardwareID]++
		}
	}

	match := func(n platform.NativeMonitor) *container.Monitor {
		for _, m := range existing {
			if matchedExisting[m.ID().String()] {
				continue
			}
			if m.Native.Handle != "" && m.Native.Handle == n.Handle {
				return m
			}
		}
		for _, m := range existing {
			if matchedExisting[m.ID().String()] {
				continue
			}
			if m.Native.DevicePath != "" && m.Native.DevicePath == n.DevicePath {
				return m
			}
		}
		if n.HardwareID != "" && hwCounts[n.HardwareID] == 1 {
			var found *container.Monitor
			for _, m := range existing {
				if matchedExisting[m.ID().String()] || m.Native.HardwareID != n.HardwareID {
					continue
				}
				if found != nil {
					logger.Warn("several monitors share a hardware id; first match wins", "hardware_id", n.HardwareID)
					break
				}
				found = m
			}
			if found != nil {
				return found
			}
		}
		return nil
	}

	for i, n := range natives {
		if m := match(n); m != nil {
			matchedExisting[m.ID().String()] = true
			matchedNative[i] = true
			e.UpdateMonitor(m, n)
		}
	}

	for i, n := range natives {
		if matchedNative[i] {
			continue
		}
		if _, err := e.AddMonitor(n); err != nil {
			logger.Warn("display reconfiguration: add_monitor failed", "err", err)
		}
	}

	for _, m := range existing {
		if !matchedExisting[m.ID().String()] {
			if err := e.RemoveMonitor(m); err != nil {
				logger.Warn("display reconfiguration: remove_monitor failed", "err", err)
			}
		}
	}

	e.sortMonitors()

	for _, w := range container.DescendantWindows(e.root) {
		container.SetPendingDPIAdjustment(w.(container.Container), true)
	}
	e.recenterFloatingWindows()

	e.pending.QueueRedraw(e.root)
}

// recenterFloatingWindows re-centers every Floating window against its
// current workspace rect, used after a display reconfiguration may have
// moved a workspace to a monitor of a different size (spec.md §4.4,
// scenario 5/6).
func (e *Engine) recenterFloatingWindows() {
	for _, wc := range container.DescendantWindows(e.root) {
		nt, ok := wc.(*container.NonTilingWindow)
		if !ok || nt.State != container.StateFloating {
			continue
		}
		ws := container.WorkspaceOf(nt)
		if ws == nil {
			continue
		}
		r, err := geometry.Resolve(ws)
		if err != nil {
			continue
		}
		wsRect := toContainerRect(r)
		fp := nt.FloatingPlacement
		nt.FloatingPlacement = container.Rect{
			X:      wsRect.X + wsRect.Width/2 - fp.Width/2,
			Y:      wsRect.Y + wsRect.Height/2 - fp.Height/2,
			Width:  fp.Width,
			Height: fp.Height,
		}
	}
}

func (e *Engine) monitors() []*container.Monitor {
	var out []*container.Monitor
	for _, c := range e.root.Children() {
		if m, ok := c.(*container.Monitor); ok {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) otherMonitors(exclude *container.Monitor) []*container.Monitor {
	var out []*container.Monitor
	for _, m := range e.monitors() {
		if m.ID() != exclude.ID() {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) monitorIndex(m *container.Monitor) int {
	for i, mon := range e.monitors() {
		if mon.ID() == m.ID() {
			return i
		}
	}
	return -1
}

// sortMonitors orders root's children by top-left screen coordinate,
// x ascending then y ascending (spec.md §4.4 monitor_sort).
func (e *Engine) sortMonitors() {
	mons := e.monitors()
	sort.SliceStable(mons, func(i, j int) bool {
		if mons[i].Native.X != mons[j].Native.X {
			return mons[i].Native.X < mons[j].Native.X
		}
		return mons[i].Native.Y < mons[j].Native.Y
	})
	children := make([]container.Container, len(mons))
	for i, m := range mons {
		children[i] = m
	}
	container.SetChildren(e.root, children)
}

// sortMonitorWorkspaces orders mon's children by their position in
// e.cfg.Workspaces, appending any unconfigured workspace at the end
// (spec.md §4.4 activate_workspace / remove_monitor: "sorting afterward").
func (e *Engine) sortMonitorWorkspaces(mon *container.Monitor) {
	order := make(map[string]int, len(e.cfg.Workspaces))
	for i, wc := range e.cfg.Workspaces {
		order[wc.Name] = i
	}
	children := append([]container.Container(nil), mon.Children()...)
	sort.SliceStable(children, func(i, j int) bool {
		wi, _ := children[i].(*container.Workspace)
		wj, _ := children[j].(*container.Workspace)
		if wi == nil || wj == nil {
			return false
		}
		oi, iok := order[wi.Name]
		oj, jok := order[wj.Name]
		if !iok {
			oi = len(order)
		}
		if !jok {
			oj = len(order)
		}
		return oi < oj
	})
	container.SetChildren(mon, children)
}

var errNoMonitorInDirection = fmt.Errorf("engine: no monitor in requested direction")
