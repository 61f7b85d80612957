package container

// Length is a gap measurement, either an absolute pixel value or a
// percentage of the relevant monitor axis; Resolve applies the monitor's
// scale factor to Pixels, while a Percent length is taken of the axis
// extent as is.
type Length struct {
	Pixels  float64
	Percent float64 // 0 means "use Pixels"; non-zero is a fraction, e.g. 0.02
}

// Resolve returns the length in pixels against the given axis extent and
// monitor scale factor.
func (l Length) Resolve(axisExtent float64, scaleFactor float64) float64 {
	if l.Percent != 0 {
		return l.Percent * axisExtent
	}
	return l.Pixels * scaleFactor
}

// OuterGaps is the per-side margin between a workspace and its monitor's
// working area.
type OuterGaps struct {
	Left, Top, Right, Bottom Length
}

// Workspace is named, optionally pinned to a monitor index, optionally
// kept alive when empty, and holds its own tiling direction. Its
// children are Splits and Windows.
type Workspace struct {
	Base
	Name       string
	DisplayName string
	direction  TilingDirection

	PinnedMonitorIndex int // -1 if unpinned
	KeepAlive          bool

	OuterGap           OuterGaps
	SingleWindowOuterGap *OuterGaps // nil means "use OuterGap"
	InnerGap           Length
}

// NewWorkspace constructs a Workspace with the given name and initial
// tiling direction.
func NewWorkspace(name string, dir TilingDirection) *Workspace {
	return &Workspace{
		Base:               NewBase(KindWorkspace),
		Name:               name,
		DisplayName:        name,
		direction:          dir,
		PinnedMonitorIndex: -1,
	}
}

func (w *Workspace) Direction() TilingDirection        { return w.direction }
func (w *Workspace) SetDirection(d TilingDirection)    { w.direction = d }

// IsDisplayed reports whether w is the front entry of its monitor
// parent's focus order.
func (w *Workspace) IsDisplayed() bool {
	m, ok := w.Parent().(*Monitor)
	if !ok || m == nil {
		return false
	}
	disp := m.DisplayedWorkspace()
	return disp != nil && disp.ID() == w.ID()
}

// IsEmpty reports whether w has no children.
func (w *Workspace) IsEmpty() bool {
	return len(w.Children()) == 0
}
