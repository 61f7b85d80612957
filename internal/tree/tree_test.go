package tree

import (
	"testing"

	"github.com/corewm/corewm/internal/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) (*container.Root, *container.Monitor, *container.Workspace) {
	t.Helper()
	root := container.NewRoot()
	mon := container.NewMonitor(container.NativeMonitorProperties{Width: 1920, Height: 1080, ScaleFactor: 1})
	ws := container.NewWorkspace("1", container.Horizontal)

	require.NoError(t, Attach(mon, root, 0))
	require.NoError(t, Attach(ws, mon, 0))
	return root, mon, ws
}

func TestAttachGrowsEvenly(t *testing.T) {
	_, _, ws := newTree(t)

	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	assert.InDelta(t, 1.0, a.TilingSize(), 1e-9)

	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(b, ws, 1))
	assert.InDelta(t, 0.5, a.TilingSize(), 1e-9)
	assert.InDelta(t, 0.5, b.TilingSize(), 1e-9)

	c := container.NewTilingWindow("c", container.NativeWindowProperties{})
	require.NoError(t, Attach(c, ws, 2))
	assert.InDelta(t, 1.0/3, a.TilingSize(), 1e-9)
	assert.InDelta(t, 1.0/3, b.TilingSize(), 1e-9)
	assert.InDelta(t, 1.0/3, c.TilingSize(), 1e-9)

	root := container.RootOf(ws)
	assert.NoError(t, container.CheckInvariants(root))
}

func TestAttachRejectsAlreadyAttached(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))

	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(b, ws, 0))

	err := Attach(a, ws, 1)
	require.ErrorIs(t, err, ErrNotDetached)
}

// Spec §8 scenario 2: three equal tiling windows, detach one, the other
// two's tiling sizes redistribute the freed share proportionally.
func TestDetachRedistributesProportionally(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	c := container.NewTilingWindow("c", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))
	require.NoError(t, Attach(c, ws, 2))

	require.NoError(t, Detach(b))

	assert.InDelta(t, 0.5, a.TilingSize(), 1e-9)
	assert.InDelta(t, 0.5, c.TilingSize(), 1e-9)
	assert.True(t, container.IsDetached(b))
	assert.NoError(t, container.CheckInvariants(container.RootOf(ws)))
}

func TestDetachWeightsByRoomAboveMinimum(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	c := container.NewTilingWindow("c", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))
	require.NoError(t, Attach(c, ws, 2))

	a.SetTilingSize(0.8)
	b.SetTilingSize(0.1)
	c.SetTilingSize(0.1)

	require.NoError(t, Detach(c))

	// freed 0.1 distributed weighted by (size - min): a has far more
	// room above the floor than b, so a should pick up most of it.
	assert.Greater(t, a.TilingSize(), 0.8)
	assert.Greater(t, b.TilingSize(), 0.1)
	assert.InDelta(t, 1.0, a.TilingSize()+b.TilingSize(), 1e-6)
}

func TestReplacePreservesFocusPositionAndTilingSize(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))
	a.SetTilingSize(0.3)
	b.SetTilingSize(0.7)

	idx := container.IndexOfChild(ws, a)
	newWin := container.NewTilingWindow("a2", container.NativeWindowProperties{})
	require.NoError(t, Replace(newWin, ws, idx))

	assert.InDelta(t, 0.3, newWin.TilingSize(), 1e-9)
	assert.True(t, container.IsDetached(a))
	assert.Equal(t, newWin.ID(), ws.ChildFocusOrder()[idx])
}

func TestMoveWithinSameParentDoesNotResize(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))
	a.SetTilingSize(0.3)
	b.SetTilingSize(0.7)

	require.NoError(t, MoveWithinTree(a, ws, 1))

	assert.InDelta(t, 0.3, a.TilingSize(), 1e-9)
	assert.InDelta(t, 0.7, b.TilingSize(), 1e-9)
	assert.Equal(t, 1, container.IndexOfChild(ws, a))
	assert.Equal(t, 0, container.IndexOfChild(ws, b))
}

// Spec §8 round-trip R1: wrap_in_split followed by flatten_split
// restores the original flat layout modulo direction inversion of any
// nested split.
func TestWrapThenFlattenRoundTrips(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))

	split := container.NewSplit(container.Vertical)
	require.NoError(t, WrapInSplit(split, ws, []container.Container{a, b}))

	require.Len(t, ws.Children(), 1)
	assert.Equal(t, split.ID(), ws.Children()[0].ID())
	assert.InDelta(t, 0.5, a.TilingSize(), 1e-9)
	assert.InDelta(t, 0.5, b.TilingSize(), 1e-9)
	assert.InDelta(t, 1.0, split.TilingSize(), 1e-9)

	require.NoError(t, FlattenSplit(split))

	require.Len(t, ws.Children(), 2)
	assert.Equal(t, a.ID(), ws.Children()[0].ID())
	assert.Equal(t, b.ID(), ws.Children()[1].ID())
	assert.InDelta(t, 0.5, a.TilingSize(), 1e-9)
	assert.InDelta(t, 0.5, b.TilingSize(), 1e-9)
	assert.True(t, container.IsDetached(split))
}

// Spec §8 scenario 3: flattening a split whose child is itself a split
// inverts the grandchild split's direction since it now sits directly
// under the (perpendicular) grandparent.
func TestFlattenInvertsNestedSplitDirection(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	c := container.NewTilingWindow("c", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))
	require.NoError(t, Attach(c, ws, 2))

	inner := container.NewSplit(container.Vertical)
	require.NoError(t, WrapInSplit(inner, ws, []container.Container{b, c}))

	outer := container.NewSplit(container.Horizontal)
	require.NoError(t, WrapInSplit(outer, ws, []container.Container{a, inner}))

	require.NoError(t, FlattenSplit(outer))

	// inner now sits directly under ws (horizontal), so its own
	// direction flips to horizontal.
	assert.Equal(t, container.Horizontal, inner.Direction())
	assert.True(t, container.IsDetached(outer))
	assert.NoError(t, container.CheckInvariants(container.RootOf(ws)))
}

func TestResizeTilingClampsAndRedistributes(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))

	require.NoError(t, ResizeTiling(a, 0.8))
	assert.InDelta(t, 0.8, a.TilingSize(), 1e-9)
	assert.InDelta(t, 0.2, b.TilingSize(), 1e-9)

	require.NoError(t, ResizeTiling(a, 2.0))
	assert.InDelta(t, 1-container.MinTilingSize, a.TilingSize(), 1e-9)
	assert.InDelta(t, container.MinTilingSize, b.TilingSize(), 1e-9)
}

func TestResizeInDirectionClimbsToMatchingAxis(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	c := container.NewTilingWindow("c", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))

	vsplit := container.NewSplit(container.Vertical)
	require.NoError(t, WrapInSplit(vsplit, ws, []container.Container{b}))
	require.NoError(t, Attach(c, vsplit, 1))

	// a's parent (ws) is horizontal; resizing a on the vertical axis
	// must fail since no ancestor of a runs vertical.
	err := ResizeInDirection(a, container.Vertical, 0.6)
	assert.ErrorIs(t, err, ErrNoMatchingAxis)

	// b's parent is vsplit (vertical); resizing b on vertical succeeds.
	require.NoError(t, ResizeInDirection(b, container.Vertical, 0.7))
	assert.InDelta(t, 0.7, b.TilingSize(), 1e-9)
	assert.InDelta(t, 0.3, c.TilingSize(), 1e-9)
}

func TestSetFocusedDescendantShiftsAncestorChain(t *testing.T) {
	_, mon, ws := newTree(t)
	ws2 := container.NewWorkspace("2", container.Horizontal)
	require.NoError(t, Attach(ws2, mon, 1))

	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(b, ws2, 0))

	root := container.RootOf(ws)
	require.NoError(t, SetFocusedDescendant(b, nil))

	focused := container.FocusedDescendant(root)
	assert.Equal(t, b.ID(), focused.ID())
}

func TestSetFocusedDescendantStopsAtEndAncestor(t *testing.T) {
	_, _, ws := newTree(t)
	a := container.NewTilingWindow("a", container.NativeWindowProperties{})
	b := container.NewTilingWindow("b", container.NativeWindowProperties{})
	require.NoError(t, Attach(a, ws, 0))
	require.NoError(t, Attach(b, ws, 1))

	// seed a as focused first.
	require.NoError(t, SetFocusedDescendant(a, nil))
	// now focus b but stop at ws: ws's own position among its
	// siblings (under the monitor) must be untouched.
	mon := container.MonitorOf(ws)
	monOrderBefore := mon.ChildFocusOrder()[0]

	require.NoError(t, SetFocusedDescendant(b, ws))

	assert.Equal(t, b.ID(), ws.ChildFocusOrder()[0])
	assert.Equal(t, monOrderBefore, mon.ChildFocusOrder()[0])
}
