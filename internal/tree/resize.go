package tree

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
)

// ResizeTiling sets c's tiling_size to target, clamped to
// [MinTilingSize, 1 - n*MinTilingSize] where n is c's tiling sibling
// count, and redistributes the delta across those siblings
// proportionally to how far above the minimum each currently sits
// (spec §4.3, "resize_tiling").
func ResizeTiling(c container.TilingContainer, target float64) error {
	siblings := container.TilingSiblings(c)
	n := len(siblings)

	maxSize := 1 - float64(n)*container.MinTilingSize
	if target < container.MinTilingSize {
		target = container.MinTilingSize
	}
	if target > maxSize {
		target = maxSize
	}

	delta := target - c.TilingSize()
	c.SetTilingSize(target)
	if n == 0 {
		return nil
	}
	redistributeDelta(siblings, delta)
	return nil
}

// redistributeDelta takes delta away from siblings in total (giving it
// back to them if delta is negative), weighted by each sibling's room
// above the minimum, falling back to an even split if every sibling is
// already pinned at the floor.
func redistributeDelta(siblings []container.TilingContainer, delta float64) {
	var totalAboveMin float64
	for _, s := range siblings {
		totalAboveMin += s.TilingSize() - container.MinTilingSize
	}

	if totalAboveMin <= 1e-9 {
		share := delta / float64(len(siblings))
		for _, s := range siblings {
			s.SetTilingSize(s.TilingSize() - share)
		}
		return
	}

	for _, s := range siblings {
		weight := (s.TilingSize() - container.MinTilingSize) / totalAboveMin
		s.SetTilingSize(s.TilingSize() - delta*weight)
	}
}

// ResizeInDirection resizes along a specific axis rather than c's
// immediate parent direction: it climbs from c until it finds an
// ancestor whose parent is a DirectionContainer on the requested axis,
// then resizes that ancestor. This is what lets a resize keybinding
// phrased as "grow left/right" or "grow up/down" act on whichever
// tiling level actually controls that axis, even when c's immediate
// parent runs the other direction.
func ResizeInDirection(c container.TilingContainer, axis container.TilingDirection, target float64) error {
	var cur container.Container = c
	for {
		parent := cur.Parent()
		if parent == nil {
			return fmt.Errorf("tree: resize %s on axis %s: %w", c.ID(), axis, ErrNoMatchingAxis)
		}
		dc, ok := container.AsDirectionContainer(parent)
		if ok && dc.Direction() == axis {
			tc, ok := cur.(container.TilingContainer)
			if !ok {
				return fmt.Errorf("tree: resize %s on axis %s: %w", c.ID(), axis, ErrNoMatchingAxis)
			}
			return ResizeTiling(tc, target)
		}
		cur = parent
	}
}
