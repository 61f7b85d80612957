package geometry

import (
	"errors"
	"fmt"

	"github.com/corewm/corewm/internal/container"
)

// ErrNotPlaceable is returned for containers the platform never places
// directly: Root, and minimized NonTilingWindows (spec §4.2, "platform
// does not place; skipped in redraw").
var ErrNotPlaceable = errors.New("geometry: container has no placeable rect")

// Resolve computes c's rectangle from the tree: its subtree position,
// siblings' tiling sizes, gaps, outer working area and DPI. It never
// reads or writes a cached value on the node.
func Resolve(c container.Container) (Rect, error) {
	switch n := c.(type) {
	case *container.Root:
		return Rect{}, fmt.Errorf("%w: root", ErrNotPlaceable)
	case *container.Monitor:
		return monitorRect(n), nil
	case *container.Workspace:
		return workspaceRect(n)
	case *container.Split:
		return tilingRect(n)
	case *container.TilingWindow:
		return tilingRect(n)
	case *container.NonTilingWindow:
		return nonTilingRect(n)
	default:
		return Rect{}, fmt.Errorf("geometry: unknown container kind %s", c.Kind())
	}
}

func monitorRect(m *container.Monitor) Rect {
	return Rect{X: float64(m.Native.X), Y: float64(m.Native.Y), Width: float64(m.Native.Width), Height: float64(m.Native.Height)}
}

func workingAreaRect(m *container.Monitor) Rect {
	wa := m.Native.WorkingArea
	return monitorRect(m).Shrink(wa.Left, wa.Top, wa.Right, wa.Bottom)
}

func workspaceRect(ws *container.Workspace) (Rect, error) {
	mon := container.MonitorOf(ws)
	if mon == nil {
		return Rect{}, fmt.Errorf("geometry: workspace %s has no monitor ancestor", ws.ID())
	}
	base := workingAreaRect(mon)

	gaps := ws.OuterGap
	if ws.SingleWindowOuterGap != nil && len(container.TilingChildren(ws)) == 1 {
		gaps = *ws.SingleWindowOuterGap
	}

	scale := mon.Native.ScaleFactor
	if scale == 0 {
		scale = 1
	}
	left := gaps.Left.Resolve(base.Width, scale)
	top := gaps.Top.Resolve(base.Height, scale)
	right := gaps.Right.Resolve(base.Width, scale)
	bottom := gaps.Bottom.Resolve(base.Height, scale)

	return base.Shrink(left, top, right, bottom), nil
}

// tilingRect computes the rect of a Split or TilingWindow from its
// parent's direction, the tiling sizes of its tiling siblings (in child
// order) and the enclosing workspace's inner gap.
func tilingRect(c container.TilingContainer) (Rect, error) {
	parent := c.Parent()
	if parent == nil {
		return Rect{}, fmt.Errorf("geometry: tiling container %s is detached", c.ID())
	}
	parentRect, err := Resolve(parent)
	if err != nil {
		return Rect{}, err
	}
	dc, ok := container.AsDirectionContainer(parent)
	if !ok {
		return Rect{}, fmt.Errorf("geometry: parent of %s is not a direction container", c.ID())
	}

	siblings := container.TilingChildren(parent)
	idx := -1
	for i, s := range siblings {
		if s.ID() == c.ID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Rect{}, fmt.Errorf("geometry: %s is not a tiling child of its parent", c.ID())
	}

	ws := container.WorkspaceOf(c)
	var innerGapPx float64
	if ws != nil {
		mon := container.MonitorOf(ws)
		scale := 1.0
		if mon != nil && mon.Native.ScaleFactor != 0 {
			scale = mon.Native.ScaleFactor
		}
		axis := parentRect.Width
		if dc.Direction() == container.Vertical {
			axis = parentRect.Height
		}
		innerGapPx = ws.InnerGap.Resolve(axis, scale)
	}

	gapCount := 0
	if n := len(siblings); n > 1 {
		gapCount = n - 1
	}

	if dc.Direction() == container.Horizontal {
		available := parentRect.Width - innerGapPx*float64(gapCount)
		var priorWidth float64
		for i := 0; i < idx; i++ {
			priorWidth += siblings[i].TilingSize() * available
		}
		width := c.TilingSize() * available
		x := parentRect.X + priorWidth + innerGapPx*float64(idx)
		return Rect{X: x, Y: parentRect.Y, Width: width, Height: parentRect.Height}, nil
	}

	available := parentRect.Height - innerGapPx*float64(gapCount)
	var priorHeight float64
	for i := 0; i < idx; i++ {
		priorHeight += siblings[i].TilingSize() * available
	}
	height := c.TilingSize() * available
	y := parentRect.Y + priorHeight + innerGapPx*float64(idx)
	return Rect{X: parentRect.X, Y: y, Width: parentRect.Width, Height: height}, nil
}

func nonTilingRect(w *container.NonTilingWindow) (Rect, error) {
	switch w.State {
	case container.StateFloating:
		fp := w.FloatingPlacement
		return Rect{X: fp.X, Y: fp.Y, Width: fp.Width, Height: fp.Height}, nil
	case container.StateFullscreen:
		mon := container.MonitorOf(w)
		if mon == nil {
			return Rect{}, fmt.Errorf("geometry: fullscreen window %s has no monitor ancestor", w.ID())
		}
		if w.Maximized {
			return monitorRect(mon), nil
		}
		ws := container.WorkspaceOf(w)
		if ws == nil {
			return Rect{}, fmt.Errorf("geometry: fullscreen window %s has no workspace ancestor", w.ID())
		}
		return workspaceRect(ws)
	case container.StateMinimized:
		return Rect{}, fmt.Errorf("%w: minimized window %s", ErrNotPlaceable, w.ID())
	default:
		return Rect{}, fmt.Errorf("geometry: non-tiling window %s has unexpected state %s", w.ID(), w.State)
	}
}

// WithBorderDelta applies a window's border_delta compensation to a
// resolved rect before handing it to the platform (spec §4.2 / §9).
func WithBorderDelta(r Rect, delta container.RectDelta) Rect {
	return Rect{
		X:      r.X - delta.Left,
		Y:      r.Y - delta.Top,
		Width:  r.Width + delta.Left + delta.Right,
		Height: r.Height + delta.Top + delta.Bottom,
	}
}
