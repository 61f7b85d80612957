package platform

import (
	"testing"

	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubNearestMonitorPicksClosestCenter(t *testing.T) {
	s := NewStub()
	s.AddMonitor(NativeMonitor{Handle: "m1", Bounds: geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}})
	s.AddMonitor(NativeMonitor{Handle: "m2", Bounds: geometry.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}})

	m, ok := s.NearestMonitor(100, 100)
	require.True(t, ok)
	assert.Equal(t, "m1", m.Handle)

	m, ok = s.NearestMonitor(3000, 100)
	require.True(t, ok)
	assert.Equal(t, "m2", m.Handle)
}

func TestStubRecordsPlacementCalls(t *testing.T) {
	s := NewStub()
	w := NewStubWindow("w1", geometry.Rect{})

	require.NoError(t, s.SetPosition(w, container.StateTiling, true, geometry.Rect{X: 1, Y: 2, Width: 3, Height: 4}))

	require.Len(t, s.Placements, 1)
	assert.Equal(t, "w1", s.Placements[0].Window)
	assert.Equal(t, container.StateTiling, s.Placements[0].State)
}

func TestStubRestoreClearsMinimizedAndMaximized(t *testing.T) {
	s := NewStub()
	w := NewStubWindow("w1", geometry.Rect{})
	w.SetMinimized(true)
	w.SetMaximized(true)

	require.NoError(t, s.Restore(w))
	assert.False(t, w.IsMinimized())
	assert.False(t, w.IsMaximized())
}

func TestStubForegroundTracksLastSet(t *testing.T) {
	s := NewStub()
	w := NewStubWindow("w1", geometry.Rect{})
	s.AddWindow(w)

	require.NoError(t, s.SetForeground(w))
	fg, ok := s.ForegroundWindow()
	require.True(t, ok)
	assert.Equal(t, "w1", fg.Handle())

	require.NoError(t, s.SetForegroundDesktop())
	_, ok = s.ForegroundWindow()
	assert.False(t, ok)
}

func TestStubEmitDeliversOnEventsChannel(t *testing.T) {
	s := NewStub()
	w := NewStubWindow("w1", geometry.Rect{})
	s.Emit(Event{Kind: EventWindowShown, Window: w})

	ev := <-s.Events()
	assert.Equal(t, EventWindowShown, ev.Kind)
	assert.Equal(t, "w1", ev.Window.Handle())
}
