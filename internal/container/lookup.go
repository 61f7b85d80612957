package container

// WorkspaceOf walks up from c and returns its enclosing Workspace, or
// nil if c is not attached beneath one.
func WorkspaceOf(c Container) *Workspace {
	for _, a := range SelfAndAncestors(c) {
		if ws, ok := a.(*Workspace); ok {
			return ws
		}
	}
	return nil
}

// MonitorOf walks up from c and returns its enclosing Monitor, or nil.
func MonitorOf(c Container) *Monitor {
	for _, a := range SelfAndAncestors(c) {
		if m, ok := a.(*Monitor); ok {
			return m
		}
	}
	return nil
}

// RootOf walks up from c and returns the Root, or nil if c is detached.
func RootOf(c Container) *Root {
	for _, a := range SelfAndAncestors(c) {
		if r, ok := a.(*Root); ok {
			return r
		}
	}
	return nil
}

// TilingChildren returns c's children that are TilingContainers, in
// child order.
func TilingChildren(c Container) []TilingContainer {
	var out []TilingContainer
	for _, ch := range c.Children() {
		if tc, ok := AsTilingContainer(ch); ok {
			out = append(out, tc)
		}
	}
	return out
}

// WindowChildren returns c's children that are WindowContainers.
func WindowChildren(c Container) []WindowContainer {
	var out []WindowContainer
	for _, ch := range c.Children() {
		if wc, ok := AsWindowContainer(ch); ok {
			out = append(out, wc)
		}
	}
	return out
}

// DescendantWindows returns every WindowContainer reachable from c.
func DescendantWindows(c Container) []WindowContainer {
	var out []WindowContainer
	for _, d := range Descendants(c) {
		if wc, ok := AsWindowContainer(d); ok {
			out = append(out, wc)
		}
	}
	return out
}
