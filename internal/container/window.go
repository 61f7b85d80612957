package container

// WindowState is the user-visible placement mode of a window.
type WindowState int

const (
	StateTiling WindowState = iota
	StateFloating
	StateFullscreen
	StateMinimized
)

func (s WindowState) String() string {
	switch s {
	case StateTiling:
		return "tiling"
	case StateFloating:
		return "floating"
	case StateFullscreen:
		return "fullscreen"
	case StateMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// DisplayState tracks the show/hide transition a window is currently in,
// so the pending-sync flush can tell platform-visible windows from ones
// mid-transition.
type DisplayState int

const (
	Shown DisplayState = iota
	Showing
	Hidden
	Hiding
)

// Rect is a display-coordinate rectangle. Defined here (not imported
// from geometry) to keep container free of a dependency on the
// geometry resolver; geometry.Rect is structurally identical and the
// two convert trivially.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) CenterX() float64 { return r.X + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// NativeWindowProperties is the cached snapshot of what the platform
// last reported about a window, refreshed on relevant PlatformEvents.
type NativeWindowProperties struct {
	Title       string
	Class       string
	Process     string
	Frame       Rect
	IsMinimized bool
	IsMaximized bool
	IsFullscreen bool
}

// InsertionTarget is a saved (parent, index) pair on a NonTilingWindow
// so it can be returned to its previous tiling slot.
type InsertionTarget struct {
	Parent Container
	Index  int
}

// ActiveDrag describes an in-progress mouse-driven resize or move, if
// any, for DTO/event purposes; the core does not interpret the values
// beyond carrying them.
type ActiveDrag struct {
	Kind       string // "move" or "resize"
	OriginX, OriginY float64
}

// windowCommon holds the fields shared by TilingWindow and
// NonTilingWindow; both variants embed it alongside Base.
type windowCommon struct {
	NativeHandle   string
	Native         NativeWindowProperties
	BorderDelta    RectDelta
	DisplayState   DisplayState
	HasPendingDPIAdjustment bool
	AppliedRules   []string
	ActiveDrag     *ActiveDrag
	PrevState      WindowState
}

func (w *windowCommon) WindowID() string { return w.NativeHandle }

// TilingWindow is a leaf WindowContainer participating in tiling.
type TilingWindow struct {
	Base
	windowCommon
	tilingSize float64
}

// NewTilingWindow constructs a TilingWindow for the given native handle.
func NewTilingWindow(handle string, native NativeWindowProperties) *TilingWindow {
	return &TilingWindow{
		Base:         NewBase(KindTilingWindow),
		windowCommon: windowCommon{NativeHandle: handle, Native: native, DisplayState: Hidden},
		tilingSize:   1,
	}
}

func (w *TilingWindow) TilingSize() float64     { return w.tilingSize }
func (w *TilingWindow) SetTilingSize(v float64) { w.tilingSize = v }

// NonTilingWindow is a leaf WindowContainer whose state is Floating,
// Fullscreen or Minimized; it always lives as a direct child of a
// Workspace (invariant 7).
type NonTilingWindow struct {
	Base
	windowCommon
	State              WindowState
	FloatingPlacement  Rect
	Maximized          bool // Fullscreen variant reached via OS-maximize, ignores working-area delta
	Insertion          *InsertionTarget
}

// NewNonTilingWindow constructs a NonTilingWindow in the given state.
func NewNonTilingWindow(handle string, native NativeWindowProperties, state WindowState, placement Rect) *NonTilingWindow {
	return &NonTilingWindow{
		Base:         NewBase(KindNonTilingWindow),
		windowCommon: windowCommon{NativeHandle: handle, Native: native, DisplayState: Hidden, PrevState: state},
		State:        state,
		FloatingPlacement: placement,
	}
}
