package engine

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/corewm/corewm/internal/tree"
)

// ResizeFocused implements the width/height argument form of spec.md
// §6.1's Resize command: each axis present resolves against the
// nearest tiling ancestor whose parent runs that axis (the same
// resolver tree.ResizeInDirection climbs for keybinding-phrased
// resizes), converting the requested pixel/percent delta into a new
// tiling_size proportion before handing off to tree.ResizeTiling.
func (e *Engine) ResizeFocused(c container.Container, width, height *LengthDelta) error {
	if width == nil && height == nil {
		return fmt.Errorf("engine: resize: missing width or height argument")
	}
	if width != nil {
		if err := e.resizeAxis(c, container.Horizontal, width); err != nil {
			return err
		}
	}
	if height != nil {
		if err := e.resizeAxis(c, container.Vertical, height); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) resizeAxis(c container.Container, axis container.TilingDirection, ld *LengthDelta) error {
	cur := c
	for {
		parent := cur.Parent()
		if parent == nil {
			return fmt.Errorf("engine: resize: %s on axis %s: %w", c.ID(), axis, tree.ErrNoMatchingAxis)
		}
		dc, ok := container.AsDirectionContainer(parent)
		if !ok || dc.Direction() != axis {
			cur = parent
			continue
		}

		tc, ok := cur.(container.TilingContainer)
		if !ok {
			return fmt.Errorf("engine: resize: %s is not a tiling container", cur.ID())
		}
		parentRect, err := geometry.Resolve(parent)
		if err != nil {
			return err
		}
		axisExtent := parentRect.Width
		if axis == container.Vertical {
			axisExtent = parentRect.Height
		}
		if axisExtent <= 0 {
			return fmt.Errorf("engine: resize: %s has a zero-extent parent", cur.ID())
		}
		scale := 1.0
		if mon := container.MonitorOf(parent); mon != nil && mon.Native.ScaleFactor != 0 {
			scale = mon.Native.ScaleFactor
		}

		current := tc.TilingSize() * axisExtent
		newAbs := resolveLengthDelta(ld, current, axisExtent, scale)
		if err := tree.ResizeTiling(tc, newAbs/axisExtent); err != nil {
			return err
		}
		e.pending.QueueRedraw(parent)
		return nil
	}
}
