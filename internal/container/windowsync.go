package container

// The accessors below let pendingsync read and update the fields common
// to both window variants (windowCommon) without needing its own
// type-switch on unexported struct internals; they mirror the pattern
// geometry.Resolve already uses for kind-specific dispatch.

// StateOf returns w's WindowState: StateTiling for a TilingWindow, or
// its own State field for a NonTilingWindow.
func StateOf(c Container) WindowState {
	switch w := c.(type) {
	case *TilingWindow:
		return StateTiling
	case *NonTilingWindow:
		return w.State
	default:
		return StateTiling
	}
}

// DisplayStateOf returns w's current show/hide transition state.
func DisplayStateOf(c Container) DisplayState {
	switch w := c.(type) {
	case *TilingWindow:
		return w.DisplayState
	case *NonTilingWindow:
		return w.DisplayState
	default:
		return Hidden
	}
}

// SetDisplayState updates w's show/hide transition state.
func SetDisplayState(c Container, s DisplayState) {
	switch w := c.(type) {
	case *TilingWindow:
		w.DisplayState = s
	case *NonTilingWindow:
		w.DisplayState = s
	}
}

// BorderDeltaOf returns w's per-side frame compensation.
func BorderDeltaOf(c Container) RectDelta {
	switch w := c.(type) {
	case *TilingWindow:
		return w.BorderDelta
	case *NonTilingWindow:
		return w.BorderDelta
	default:
		return RectDelta{}
	}
}

// NativePropsOf returns w's last-cached snapshot of OS-reported window
// properties.
func NativePropsOf(c Container) NativeWindowProperties {
	switch w := c.(type) {
	case *TilingWindow:
		return w.Native
	case *NonTilingWindow:
		return w.Native
	default:
		return NativeWindowProperties{}
	}
}

// HasPendingDPIAdjustment reports whether w still needs the
// double-SetPosition DPI workaround (spec.md §4.5 step 2).
func HasPendingDPIAdjustment(c Container) bool {
	switch w := c.(type) {
	case *TilingWindow:
		return w.HasPendingDPIAdjustment
	case *NonTilingWindow:
		return w.HasPendingDPIAdjustment
	default:
		return false
	}
}

// SetPendingDPIAdjustment sets or clears w's DPI-adjustment flag.
func SetPendingDPIAdjustment(c Container, v bool) {
	switch w := c.(type) {
	case *TilingWindow:
		w.HasPendingDPIAdjustment = v
	case *NonTilingWindow:
		w.HasPendingDPIAdjustment = v
	}
}
