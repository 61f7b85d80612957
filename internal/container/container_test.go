package container

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSimpleTree(t *testing.T) (*Root, *Monitor, *Workspace) {
	t.Helper()
	root := NewRoot()
	mon := NewMonitor(NativeMonitorProperties{Width: 1920, Height: 1080})
	ws := NewWorkspace("1", Horizontal)

	SetChildren(root, []Container{mon})
	SetParent(mon, root)
	SetChildFocusOrder(root, []uuid.UUID{mon.ID()})

	SetChildren(mon, []Container{ws})
	SetParent(ws, mon)
	SetChildFocusOrder(mon, []uuid.UUID{ws.ID()})

	return root, mon, ws
}

func TestIsDetached(t *testing.T) {
	root := NewRoot()
	assert.False(t, IsDetached(root), "root is never detached")

	mon := NewMonitor(NativeMonitorProperties{})
	assert.True(t, IsDetached(mon), "freshly constructed monitor has no parent")
}

func TestAncestorsAndWorkspaceOf(t *testing.T) {
	root, mon, ws := buildSimpleTree(t)

	win := NewTilingWindow("h1", NativeWindowProperties{})
	SetParent(win, ws)
	SetChildren(ws, []Container{win})
	SetChildFocusOrder(ws, []uuid.UUID{win.ID()})

	anc := Ancestors(win)
	require.Len(t, anc, 3)
	assert.Equal(t, ws.ID(), anc[0].ID())
	assert.Equal(t, mon.ID(), anc[1].ID())
	assert.Equal(t, root.ID(), anc[2].ID())

	assert.Equal(t, ws.ID(), WorkspaceOf(win).ID())
	assert.Equal(t, mon.ID(), MonitorOf(win).ID())
	assert.Equal(t, root.ID(), RootOf(win).ID())
}

func TestDowncastFailsWithTypedError(t *testing.T) {
	mon := NewMonitor(NativeMonitorProperties{})
	_, err := AsWorkspace(mon)
	require.Error(t, err)
	var wrongKind *ErrWrongKind
	require.ErrorAs(t, err, &wrongKind)
	assert.Equal(t, KindWorkspace, wrongKind.Want)
	assert.Equal(t, KindMonitor, wrongKind.Got)
}

func TestCheckInvariantsOnWellFormedTree(t *testing.T) {
	root, _, ws := buildSimpleTree(t)

	a := NewTilingWindow("a", NativeWindowProperties{})
	b := NewTilingWindow("b", NativeWindowProperties{})
	a.SetTilingSize(0.5)
	b.SetTilingSize(0.5)
	SetParent(a, ws)
	SetParent(b, ws)
	SetChildren(ws, []Container{a, b})
	SetChildFocusOrder(ws, []uuid.UUID{a.ID(), b.ID()})

	assert.NoError(t, CheckInvariants(root))
}

func TestCheckInvariantsCatchesBadTilingSum(t *testing.T) {
	root, _, ws := buildSimpleTree(t)

	a := NewTilingWindow("a", NativeWindowProperties{})
	a.SetTilingSize(0.9)
	SetParent(a, ws)
	SetChildren(ws, []Container{a})
	SetChildFocusOrder(ws, []uuid.UUID{a.ID()})

	err := CheckInvariants(root)
	require.Error(t, err)
}

func TestSubsumPredicates(t *testing.T) {
	split := NewSplit(Vertical)
	win := NewTilingWindow("a", NativeWindowProperties{})

	_, isTC := AsTilingContainer(split)
	assert.True(t, isTC)
	_, isTC = AsTilingContainer(win)
	assert.True(t, isTC)

	_, isDC := AsDirectionContainer(split)
	assert.True(t, isDC)

	ws := NewWorkspace("1", Horizontal)
	_, isDC = AsDirectionContainer(ws)
	assert.True(t, isDC)

	_, isWC := AsWindowContainer(win)
	assert.True(t, isWC)
	_, isWC = AsWindowContainer(split)
	assert.False(t, isWC)
}
