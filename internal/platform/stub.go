package platform

import (
	"sync"

	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
)

// StubWindow is an in-memory NativeWindow, mutable by test code so
// scenarios can simulate the OS reporting a window as minimized,
// maximized, resized, and so on.
type StubWindow struct {
	handle  string
	title   string
	class   string
	process string

	mu          sync.Mutex
	frame       geometry.Rect
	visible     bool
	minimized   bool
	maximized   bool
	fullscreen  bool
	manageable  bool
}

// NewStubWindow constructs a manageable, visible StubWindow.
func NewStubWindow(handle string, frame geometry.Rect) *StubWindow {
	return &StubWindow{
		handle:     handle,
		title:      handle,
		class:      "stub",
		process:    "stub",
		frame:      frame,
		visible:    true,
		manageable: true,
	}
}

func (w *StubWindow) Handle() string  { return w.handle }
func (w *StubWindow) Title() string   { w.mu.Lock(); defer w.mu.Unlock(); return w.title }
func (w *StubWindow) Class() string   { return w.class }
func (w *StubWindow) Process() string { return w.process }
func (w *StubWindow) Frame() geometry.Rect {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frame
}
func (w *StubWindow) IsVisible() bool    { w.mu.Lock(); defer w.mu.Unlock(); return w.visible }
func (w *StubWindow) IsMinimized() bool  { w.mu.Lock(); defer w.mu.Unlock(); return w.minimized }
func (w *StubWindow) IsMaximized() bool  { w.mu.Lock(); defer w.mu.Unlock(); return w.maximized }
func (w *StubWindow) IsFullscreen() bool { w.mu.Lock(); defer w.mu.Unlock(); return w.fullscreen }
func (w *StubWindow) IsManageable() bool { w.mu.Lock(); defer w.mu.Unlock(); return w.manageable }

// SetTitle updates the window's reported title, as if the OS sent a
// title-changed notification.
func (w *StubWindow) SetTitle(t string) { w.mu.Lock(); defer w.mu.Unlock(); w.title = t }

// SetMinimized updates the window's reported minimized state.
func (w *StubWindow) SetMinimized(v bool) { w.mu.Lock(); defer w.mu.Unlock(); w.minimized = v }

// SetMaximized updates the window's reported maximized state.
func (w *StubWindow) SetMaximized(v bool) { w.mu.Lock(); defer w.mu.Unlock(); w.maximized = v }

// PlacementCall records one SetPosition invocation for assertions in
// tests.
type PlacementCall struct {
	Window  string
	State   container.WindowState
	Visible bool
	Rect    geometry.Rect
}

// Stub is an in-memory Platform sufficient to drive the engine for
// tests and for the daemon binary when no real backend is wired up. It
// records every mutator call it receives so tests can assert on engine
// behavior without a real display server.
type Stub struct {
	mu         sync.Mutex
	monitors   []NativeMonitor
	windows    map[string]NativeWindow
	foreground string
	events     chan Event

	Placements     []PlacementCall
	RestoreCalls   []string
	ForegroundCalls []string
	CursorCalls    []struct{ X, Y float64 }
	CloseCalls     []string
}

// NewStub constructs an empty Stub with a buffered event channel.
func NewStub() *Stub {
	return &Stub{
		windows: make(map[string]NativeWindow),
		events:  make(chan Event, 256),
	}
}

// AddMonitor registers a monitor the stub will report from Monitors().
func (s *Stub) AddMonitor(m NativeMonitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitors = append(s.monitors, m)
}

// AddWindow registers a window the stub will report from
// ManageableWindows().
func (s *Stub) AddWindow(w NativeWindow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.windows[w.Handle()] = w
}

// Emit pushes an event onto the engine-facing channel, simulating a
// platform hook firing. It never blocks: a full channel means the
// engine loop has stalled, which is itself a bug worth surfacing as a
// panic in tests rather than a silent drop.
func (s *Stub) Emit(e Event) {
	select {
	case s.events <- e:
	default:
		panic("platform: stub event channel full; engine loop is not consuming")
	}
}

func (s *Stub) Monitors() []NativeMonitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NativeMonitor, len(s.monitors))
	copy(out, s.monitors)
	return out
}

func (s *Stub) ManageableWindows() []NativeWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NativeWindow, 0, len(s.windows))
	for _, w := range s.windows {
		if w.IsManageable() {
			out = append(out, w)
		}
	}
	return out
}

func (s *Stub) ForegroundWindow() (NativeWindow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[s.foreground]
	return w, ok
}

func (s *Stub) NearestMonitor(x, y float64) (NativeMonitor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.monitors) == 0 {
		return NativeMonitor{}, false
	}
	best := s.monitors[0]
	bestDist := distanceToCenter(best, x, y)
	for _, m := range s.monitors[1:] {
		d := distanceToCenter(m, x, y)
		if d < bestDist {
			best, bestDist = m, d
		}
	}
	return best, true
}

func distanceToCenter(m NativeMonitor, x, y float64) float64 {
	cx, cy := m.Bounds.CenterX(), m.Bounds.CenterY()
	dx, dy := cx-x, cy-y
	return dx*dx + dy*dy
}

func (s *Stub) SetPosition(w NativeWindow, state container.WindowState, visible bool, rect geometry.Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Placements = append(s.Placements, PlacementCall{Window: w.Handle(), State: state, Visible: visible, Rect: rect})
	return nil
}

func (s *Stub) Restore(w NativeWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RestoreCalls = append(s.RestoreCalls, w.Handle())
	if sw, ok := w.(*StubWindow); ok {
		sw.SetMinimized(false)
		sw.SetMaximized(false)
	}
	return nil
}

func (s *Stub) SetForeground(w NativeWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foreground = w.Handle()
	s.ForegroundCalls = append(s.ForegroundCalls, w.Handle())
	return nil
}

// CloseWindow simulates the OS posting an asynchronous close request: it
// records the call and enqueues a WindowDestroyed event rather than
// mutating anything synchronously, matching the "enqueue, not nest"
// contract real backends must honor.
func (s *Stub) CloseWindow(w NativeWindow) error {
	s.mu.Lock()
	s.CloseCalls = append(s.CloseCalls, w.Handle())
	s.mu.Unlock()
	s.Emit(Event{Kind: EventWindowDestroyed, Window: w})
	return nil
}

func (s *Stub) SetForegroundDesktop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.foreground = ""
	s.ForegroundCalls = append(s.ForegroundCalls, "<desktop>")
	return nil
}

func (s *Stub) SetBorderColor(w NativeWindow, color string) error    { return nil }
func (s *Stub) SetCornerStyle(w NativeWindow, style string) error    { return nil }
func (s *Stub) SetTransparency(w NativeWindow, alpha float64) error  { return nil }

func (s *Stub) SetCursorPos(x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CursorCalls = append(s.CursorCalls, struct{ X, Y float64 }{x, y})
	return nil
}

func (s *Stub) Events() <-chan Event { return s.events }

func (s *Stub) Close() error {
	close(s.events)
	return nil
}

var _ Platform = (*Stub)(nil)
