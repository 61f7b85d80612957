package container

import "fmt"

// ErrWrongKind is returned by the As* narrowing helpers when a Container
// is not the kind the caller expected. Commands that accept a "subject
// container" use this to degrade gracefully instead of panicking when
// the subject turns out to be of an unexpected kind.
type ErrWrongKind struct {
	Want Kind
	Got  Kind
}

func (e *ErrWrongKind) Error() string {
	return fmt.Sprintf("container: expected kind %s, got %s", e.Want, e.Got)
}

// TilingContainer is the structural sub-sum {Split, TilingWindow}: nodes
// that carry a tiling_size fraction of their parent's axis.
type TilingContainer interface {
	Container
	TilingSize() float64
	SetTilingSize(float64)
}

// WindowContainer is the structural sub-sum {TilingWindow, NonTilingWindow}:
// nodes that wrap a native OS window.
type WindowContainer interface {
	Container
	WindowID() string
}

// DirectionContainer is the structural sub-sum {Workspace, Split}: nodes
// that have a tiling direction for their children.
type DirectionContainer interface {
	Container
	Direction() TilingDirection
	SetDirection(TilingDirection)
}

// AsTilingContainer narrows c to TilingContainer if possible.
func AsTilingContainer(c Container) (TilingContainer, bool) {
	tc, ok := c.(TilingContainer)
	return tc, ok
}

// AsWindowContainer narrows c to WindowContainer if possible.
func AsWindowContainer(c Container) (WindowContainer, bool) {
	wc, ok := c.(WindowContainer)
	return wc, ok
}

// AsDirectionContainer narrows c to DirectionContainer if possible.
func AsDirectionContainer(c Container) (DirectionContainer, bool) {
	dc, ok := c.(DirectionContainer)
	return dc, ok
}

// AsRoot narrows c to *Root.
func AsRoot(c Container) (*Root, error) {
	if r, ok := c.(*Root); ok {
		return r, nil
	}
	return nil, &ErrWrongKind{Want: KindRoot, Got: c.Kind()}
}

// AsMonitor narrows c to *Monitor.
func AsMonitor(c Container) (*Monitor, error) {
	if m, ok := c.(*Monitor); ok {
		return m, nil
	}
	return nil, &ErrWrongKind{Want: KindMonitor, Got: c.Kind()}
}

// AsWorkspace narrows c to *Workspace.
func AsWorkspace(c Container) (*Workspace, error) {
	if w, ok := c.(*Workspace); ok {
		return w, nil
	}
	return nil, &ErrWrongKind{Want: KindWorkspace, Got: c.Kind()}
}

// AsSplit narrows c to *Split.
func AsSplit(c Container) (*Split, error) {
	if s, ok := c.(*Split); ok {
		return s, nil
	}
	return nil, &ErrWrongKind{Want: KindSplit, Got: c.Kind()}
}

// AsTilingWindow narrows c to *TilingWindow.
func AsTilingWindow(c Container) (*TilingWindow, error) {
	if w, ok := c.(*TilingWindow); ok {
		return w, nil
	}
	return nil, &ErrWrongKind{Want: KindTilingWindow, Got: c.Kind()}
}

// AsNonTilingWindow narrows c to *NonTilingWindow.
func AsNonTilingWindow(c Container) (*NonTilingWindow, error) {
	if w, ok := c.(*NonTilingWindow); ok {
		return w, nil
	}
	return nil, &ErrWrongKind{Want: KindNonTilingWindow, Got: c.Kind()}
}
