package engine

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/tree"
)

// FocusInDirection implements spec.md §4.4 focus_in_direction: walk from
// c upward until a DirectionContainer is found whose tiling direction
// matches dir's axis and which has a sibling of the container (or its
// ancestor-on-path) in dir's polarity; descend that sibling via
// descendantInDirection. If no such sibling exists anywhere in the
// current workspace, ask the monitor graph for a monitor in dir and
// focus its displayed workspace's descendant in the inverse direction.
func (e *Engine) FocusInDirection(c container.Container, dir Direction) error {
	target, err := e.containerInDirection(c, dir)
	if err != nil {
		return err
	}
	if err := tree.SetFocusedDescendant(target, nil); err != nil {
		return err
	}
	e.pending.QueueFocusChange()
	e.pending.QueueCursorJump()
	return nil
}

// containerInDirection resolves what focus_in_direction/move_window_in_direction
// both need: the container that should receive focus (or host the moved
// window) when moving dir from c.
func (e *Engine) containerInDirection(c container.Container, dir Direction) (container.Container, error) {
	axis := tilingAxis(dir)
	cur := c
	for {
		parent := cur.Parent()
		if parent == nil {
			break
		}
		if dc, ok := container.AsDirectionContainer(parent); ok && dc.Direction() == axis {
			if sib := siblingInPolarity(parent, cur, dir); sib != nil {
				return descendantInDirection(sib, dir), nil
			}
		}
		if _, isWs := parent.(*container.Workspace); isWs {
			break
		}
		cur = parent
	}

	mon := container.MonitorOf(c)
	if mon == nil {
		return nil, fmt.Errorf("engine: focus_in_direction: %s has no monitor ancestor", c.ID())
	}
	next := e.monitorInDirection(mon, dir)
	if next == nil {
		return nil, fmt.Errorf("engine: focus_in_direction: %w", errNoMonitorInDirection)
	}
	ws := next.DisplayedWorkspace()
	if ws == nil {
		return nil, fmt.Errorf("engine: focus_in_direction: monitor %s has no displayed workspace", next.ID())
	}
	return descendantInDirection(ws, dir.Inverse()), nil
}

func tilingAxis(dir Direction) container.TilingDirection {
	if dir.Axis() == AxisHorizontal {
		return container.Horizontal
	}
	return container.Vertical
}

// siblingInPolarity returns the tiling sibling of cur under parent lying
// in dir's polarity (the next one over, in child order), or nil if cur
// is already the endmost child in that polarity.
func siblingInPolarity(parent container.Container, cur container.Container, dir Direction) container.Container {
	siblings := container.TilingChildren(parent)
	idx := -1
	for i, s := range siblings {
		if s.ID() == cur.ID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	if dir.Polarity() {
		if idx+1 < len(siblings) {
			return siblings[idx+1].(container.Container)
		}
		return nil
	}
	if idx-1 >= 0 {
		return siblings[idx-1].(container.Container)
	}
	return nil
}

// descendantInDirection implements spec.md §4.4's descend rule: at each
// level, if the child axis matches dir, pick the endmost child in dir's
// polarity; if perpendicular, pick the most recently focused child.
func descendantInDirection(c container.Container, dir Direction) container.Container {
	cur := c
	for {
		children := container.TilingChildren(cur)
		if len(children) == 0 {
			if wc, ok := container.AsWindowContainer(cur); ok {
				return wc.(container.Container)
			}
			if len(cur.Children()) == 0 {
				return cur
			}
			if next := container.ChildByID(cur, cur.ChildFocusOrder()[0]); next != nil {
				cur = next
				continue
			}
			return cur
		}

		dc, ok := container.AsDirectionContainer(cur)
		if ok && dc.Direction() == tilingAxis(dir) {
			if dir.Polarity() {
				cur = children[len(children)-1].(container.Container)
			} else {
				cur = children[0].(container.Container)
			}
			continue
		}

		focused := mostRecentlyFocusedChild(cur)
		if focused == nil {
			cur = children[0].(container.Container)
			continue
		}
		cur = focused
	}
}

func mostRecentlyFocusedChild(c container.Container) container.Container {
	for _, id := range c.ChildFocusOrder() {
		if child := container.ChildByID(c, id); child != nil {
			return child
		}
	}
	return nil
}

// monitorInDirection finds the nearest monitor whose bounds center lies
// in dir's half-plane relative to cur, per spec.md §4.4's "ask the
// monitor graph for a monitor in dir".
func (e *Engine) monitorInDirection(cur *container.Monitor, dir Direction) *container.Monitor {
	curCX := float64(cur.Native.X) + float64(cur.Native.Width)/2
	curCY := float64(cur.Native.Y) + float64(cur.Native.Height)/2

	var best *container.Monitor
	var bestDist float64
	for _, m := range e.monitors() {
		if m.ID() == cur.ID() {
			continue
		}
		mcx := float64(m.Native.X) + float64(m.Native.Width)/2
		mcy := float64(m.Native.Y) + float64(m.Native.Height)/2

		switch dir {
		case DirLeft:
			if mcx >= curCX {
				continue
			}
		case DirRight:
			if mcx <= curCX {
				continue
			}
		case DirUp:
			if mcy >= curCY {
				continue
			}
		case DirDown:
			if mcy <= curCY {
				continue
			}
		}

		dx, dy := mcx-curCX, mcy-curCY
		dist := dx*dx + dy*dy
		if best == nil || dist < bestDist {
			best, bestDist = m, dist
		}
	}
	return best
}

// MoveWindowInDirection implements spec.md §4.4 move_window_in_direction:
// symmetric to FocusInDirection, but relocates w instead of focus. The
// moved window is inserted as a sibling at the destination (wrapping or
// crossing workspaces/monitors as needed) and given the mean tiling size
// of its new siblings.
func (e *Engine) MoveWindowInDirection(w container.WindowContainer, dir Direction) error {
	c := w.(container.Container)
	tc, isTiling := container.AsTilingContainer(c)
	if !isTiling {
		return fmt.Errorf("engine: move_window_in_direction: %s is not a tiling container", c.ID())
	}

	dest, err := e.containerInDirection(c, dir)
	if err != nil {
		return err
	}
	if dest.ID() == c.ID() {
		return nil
	}

	destWs := container.WorkspaceOf(dest)
	origWs := container.WorkspaceOf(c)

	var parent container.Container
	var index int
	_, destIsWorkspace := dest.(*container.Workspace)
	switch {
	case destIsWorkspace:
		parent, index = dest, 0
	case dest.Parent() != nil:
		parent = dest.Parent()
		index = container.IndexOfChild(parent, dest)
		if dir.Polarity() {
			index++
		}
	default:
		return fmt.Errorf("engine: move_window_in_direction: destination %s is detached", dest.ID())
	}

	if err := tree.MoveWithinTree(c, parent, index); err != nil {
		return err
	}

	siblings := container.TilingSiblings(c)
	if len(siblings) > 0 {
		var sum float64
		for _, s := range siblings {
			sum += s.TilingSize()
		}
		tc.SetTilingSize(sum / float64(len(siblings)))
	}

	e.pending.QueueRedraw(parent)
	if origWs != nil {
		e.pending.QueueRedraw(origWs)
	}
	if destWs != nil {
		e.pending.QueueRedraw(destWs)
	}
	e.pending.QueueFocusChange()
	e.pending.QueueCursorJump()
	return nil
}
