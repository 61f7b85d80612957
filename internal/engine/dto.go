package engine

import (
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/google/uuid"
)

// ContainerDTO mirrors one tree node for WmEvent serialization (spec.md
// §6.2). Every DTO carries id/parent_id/children/child_focus_order/
// has_focus; kind-specific fields are populated only for the relevant
// Kind, matching the teacher's pattern of one flat struct per wire
// message rather than a Go interface per variant (easier for
// encoding/json, and the client only ever looks at the Kind tag anyway).
type ContainerDTO struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	ParentID        string          `json:"parent_id,omitempty"`
	Children        []string        `json:"children"`
	ChildFocusOrder []string        `json:"child_focus_order"`
	HasFocus        bool            `json:"has_focus"`

	// Monitor
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	DPI         float64  `json:"dpi,omitempty"`
	ScaleFactor float64  `json:"scale_factor,omitempty"`
	WorkingRect *RectDTO `json:"working_rect,omitempty"`

	// Workspace
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	IsDisplayed bool   `json:"is_displayed,omitempty"`

	// Workspace / Split
	TilingDirection string `json:"tiling_direction,omitempty"`

	// Split / Window
	TilingSize *float64 `json:"tiling_size,omitempty"`

	// Window
	State             string    `json:"state,omitempty"`
	PrevState         string    `json:"prev_state,omitempty"`
	DisplayState      string    `json:"display_state,omitempty"`
	BorderDelta       *RectDeltaDTO `json:"border_delta,omitempty"`
	FloatingPlacement *RectDTO  `json:"floating_placement,omitempty"`
	Handle            string    `json:"handle,omitempty"`
	Title             string    `json:"title,omitempty"`
	Class             string    `json:"class,omitempty"`
	Process           string    `json:"process,omitempty"`
	ActiveDrag        *ActiveDragDTO `json:"active_drag,omitempty"`
}

type RectDTO struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type RectDeltaDTO struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

type ActiveDragDTO struct {
	Kind    string  `json:"kind"`
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
}

func rectDTO(r container.Rect) *RectDTO {
	return &RectDTO{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

func rectDeltaDTO(d container.RectDelta) *RectDeltaDTO {
	return &RectDeltaDTO{Left: d.Left, Top: d.Top, Right: d.Right, Bottom: d.Bottom}
}

// ToDTO serializes c into its wire representation. focused is the
// current globally-focused container, used to set HasFocus.
func ToDTO(c container.Container, focused container.Container) ContainerDTO {
	dto := ContainerDTO{
		ID:              c.ID().String(),
		Kind:            c.Kind().String(),
		Children:        idStrings(childIDs(c)),
		ChildFocusOrder: idStrings(c.ChildFocusOrder()),
		HasFocus:        focused != nil && focused.ID() == c.ID(),
	}
	if p := c.Parent(); p != nil {
		dto.ParentID = p.ID().String()
	}

	switch n := c.(type) {
	case *container.Monitor:
		x, y := float64(n.Native.X), float64(n.Native.Y)
		dto.X, dto.Y = &x, &y
		dto.Width = float64(n.Native.Width)
		dto.Height = float64(n.Native.Height)
		dto.DPI = n.Native.DPI
		dto.ScaleFactor = n.Native.ScaleFactor
		if r, err := geometry.Resolve(n); err == nil {
			wa := n.Native.WorkingArea
			r = r.Shrink(wa.Left, wa.Top, wa.Right, wa.Bottom)
			dto.WorkingRect = &RectDTO{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
		}
	case *container.Workspace:
		dto.Name = n.Name
		dto.DisplayName = n.DisplayName
		dto.IsDisplayed = n.IsDisplayed()
		dto.TilingDirection = n.Direction().String()
	case *container.Split:
		dto.TilingDirection = n.Direction().String()
		ts := n.TilingSize()
		dto.TilingSize = &ts
	case *container.TilingWindow:
		ts := n.TilingSize()
		dto.TilingSize = &ts
		fillWindowDTO(&dto, n.WindowID(), n.Native, n.BorderDelta, n.DisplayState, container.StateTiling, n.PrevState, n.AppliedRules, n.ActiveDrag)
	case *container.NonTilingWindow:
		fillWindowDTO(&dto, n.WindowID(), n.Native, n.BorderDelta, n.DisplayState, n.State, n.PrevState, n.AppliedRules, n.ActiveDrag)
		dto.FloatingPlacement = rectDTO(n.FloatingPlacement)
	}
	return dto
}

func fillWindowDTO(dto *ContainerDTO, handle string, native container.NativeWindowProperties, delta container.RectDelta, displayState container.DisplayState, state, prevState container.WindowState, rules []string, drag *container.ActiveDrag) {
	dto.Handle = handle
	dto.Title = native.Title
	dto.Class = native.Class
	dto.Process = native.Process
	dto.BorderDelta = rectDeltaDTO(delta)
	dto.State = state.String()
	dto.PrevState = prevState.String()
	dto.DisplayState = displayStateString(displayState)
	if drag != nil {
		dto.ActiveDrag = &ActiveDragDTO{Kind: drag.Kind, OriginX: drag.OriginX, OriginY: drag.OriginY}
	}
}

func displayStateString(s container.DisplayState) string {
	switch s {
	case container.Shown:
		return "shown"
	case container.Showing:
		return "showing"
	case container.Hidden:
		return "hidden"
	case container.Hiding:
		return "hiding"
	default:
		return "unknown"
	}
}

func childIDs(c container.Container) []uuid.UUID {
	children := c.Children()
	out := make([]uuid.UUID, len(children))
	for i, ch := range children {
		out[i] = ch.ID()
	}
	return out
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// ToDTOTree serializes root and every descendant, pre-order, for a full
// tree dump.
func ToDTOTree(root *container.Root) []ContainerDTO {
	focused := container.FocusedDescendant(root)
	out := []ContainerDTO{ToDTO(root, focused)}
	for _, d := range container.Descendants(root) {
		out = append(out, ToDTO(d, focused))
	}
	return out
}
