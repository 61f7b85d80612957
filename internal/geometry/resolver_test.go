package geometry

import (
	"testing"

	"github.com/corewm/corewm/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attach(parent, child container.Container) {
	children := append(parent.Children(), child)
	container.SetChildren(parent, children)
	container.SetParent(child, parent)
	order := append(parent.ChildFocusOrder(), child.ID())
	container.SetChildFocusOrder(parent, order)
}

func newMonitorWithWorkspace(t *testing.T, x, y, w, h int) (*container.Monitor, *container.Workspace) {
	t.Helper()
	mon := container.NewMonitor(container.NativeMonitorProperties{X: x, Y: y, Width: w, Height: h, ScaleFactor: 1})
	ws := container.NewWorkspace("1", container.Horizontal)
	attach(mon, ws)
	return mon, ws
}

func TestMonitorRect(t *testing.T) {
	mon, _ := newMonitorWithWorkspace(t, 0, 0, 1920, 1080)
	r, err := Resolve(mon)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, r)
}

func TestWorkspaceRectAppliesWorkingAreaAndOuterGap(t *testing.T) {
	mon := container.NewMonitor(container.NativeMonitorProperties{
		Width: 1920, Height: 1080, ScaleFactor: 1,
		WorkingArea: container.RectDelta{Top: 30},
	})
	ws := container.NewWorkspace("1", container.Horizontal)
	ws.OuterGap = container.OuterGaps{
		Left:   container.Length{Pixels: 10},
		Top:    container.Length{Pixels: 10},
		Right:  container.Length{Pixels: 10},
		Bottom: container.Length{Pixels: 10},
	}
	attach(mon, ws)

	r, err := Resolve(ws)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 10, Y: 40, Width: 1900, Height: 1030}, r)
}

// Scenario 1 from spec §8: attach grows evenly, two equal tiling
// windows split a workspace 50/50 with no gaps.
func TestTwoEqualTilingWindowsSplitEvenly(t *testing.T) {
	_, ws := newMonitorWithWorkspace(t, 0, 0, 1920, 1080)

	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	a.SetTilingSize(0.5)
	b.SetTilingSize(0.5)
	attach(ws, a)
	attach(ws, b)

	ra, err := Resolve(a)
	require.NoError(t, err)
	rb, err := Resolve(b)
	require.NoError(t, err)

	assert.Equal(t, Rect{X: 0, Y: 0, Width: 960, Height: 1080}, ra)
	assert.Equal(t, Rect{X: 960, Y: 0, Width: 960, Height: 1080}, rb)
}

func TestTilingRectWithInnerGap(t *testing.T) {
	_, ws := newMonitorWithWorkspace(t, 0, 0, 1000, 1000)
	ws.InnerGap = container.Length{Pixels: 20}

	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	a.SetTilingSize(0.5)
	b.SetTilingSize(0.5)
	attach(ws, a)
	attach(ws, b)

	ra, err := Resolve(a)
	require.NoError(t, err)
	rb, err := Resolve(b)
	require.NoError(t, err)

	// available = 1000 - 20*1 = 980; each window gets 490.
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 490, Height: 1000}, ra)
	assert.Equal(t, Rect{X: 510, Y: 0, Width: 490, Height: 1000}, rb)
}

func TestFloatingRectIsPlacementVerbatim(t *testing.T) {
	_, ws := newMonitorWithWorkspace(t, 0, 0, 1920, 1080)
	w := container.NewNonTilingWindow("a", container.NativeWindowProperties{}, container.StateFloating,
		container.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	attach(ws, w)

	r, err := Resolve(w)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 100, Y: 100, Width: 400, Height: 300}, r)
}

func TestFullscreenMaximizedIgnoresWorkingArea(t *testing.T) {
	mon := container.NewMonitor(container.NativeMonitorProperties{
		Width: 1920, Height: 1080, ScaleFactor: 1,
		WorkingArea: container.RectDelta{Top: 30},
	})
	ws := container.NewWorkspace("1", container.Horizontal)
	attach(mon, ws)

	w := container.NewNonTilingWindow("a", container.NativeWindowProperties{}, container.StateFullscreen, container.Rect{})
	w.Maximized = true
	attach(ws, w)

	r, err := Resolve(w)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, r)
}

func TestMinimizedWindowIsNotPlaceable(t *testing.T) {
	_, ws := newMonitorWithWorkspace(t, 0, 0, 1920, 1080)
	w := container.NewNonTilingWindow("a", container.NativeWindowProperties{}, container.StateMinimized, container.Rect{})
	attach(ws, w)

	_, err := Resolve(w)
	require.ErrorIs(t, err, ErrNotPlaceable)
}

func TestSingleWindowOuterGapOverride(t *testing.T) {
	mon := container.NewMonitor(container.NativeMonitorProperties{Width: 1000, Height: 1000, ScaleFactor: 1})
	ws := container.NewWorkspace("1", container.Horizontal)
	ws.OuterGap = container.OuterGaps{Left: container.Length{Pixels: 10}, Top: container.Length{Pixels: 10}, Right: container.Length{Pixels: 10}, Bottom: container.Length{Pixels: 10}}
	ws.SingleWindowOuterGap = &container.OuterGaps{}
	attach(mon, ws)

	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	a.SetTilingSize(1)
	attach(ws, a)

	r, err := Resolve(ws)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 1000, Height: 1000}, r)
}

func TestRootHasNoRect(t *testing.T) {
	root := container.NewRoot()
	_, err := Resolve(root)
	require.ErrorIs(t, err, ErrNotPlaceable)
}
