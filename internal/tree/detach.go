package tree

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
	"github.com/google/uuid"
)

// flattenAncestorDepth bounds how far detach climbs looking for splits
// left with a single child. Three covers every layout a real user
// builds by hand; deeper redundant splits are vanishingly rare and get
// cleaned up the next time a sibling in that chain is touched.
const flattenAncestorDepth = 3

// Detach removes node from its parent, redistributing its freed
// tiling_size (if any) across its former tiling siblings proportionally
// to (sibling_size - MinTilingSize), falling back to an even split when
// every sibling already sits at the floor. It then climbs up to
// flattenAncestorDepth ancestors, flattening any Split left with exactly
// one child (spec §4.3, "detach").
func Detach(node container.Container) error {
	parent := node.Parent()
	if parent == nil {
		return fmt.Errorf("tree: detach %s: already detached", node.ID())
	}

	idx := container.IndexOfChild(parent, node)
	if idx < 0 {
		return fmt.Errorf("tree: detach %s: %w", node.ID(), ErrNotAChild)
	}

	children := parent.Children()
	newChildren := make([]container.Container, 0, len(children)-1)
	newChildren = append(newChildren, children[:idx]...)
	newChildren = append(newChildren, children[idx+1:]...)
	container.SetChildren(parent, newChildren)

	order := parent.ChildFocusOrder()
	newOrder := make([]uuid.UUID, 0, len(order))
	for _, id := range order {
		if id != node.ID() {
			newOrder = append(newOrder, id)
		}
	}
	container.SetChildFocusOrder(parent, newOrder)
	container.SetParent(node, nil)

	if tc, ok := container.AsTilingContainer(node); ok {
		redistributeFreedSize(parent, tc.TilingSize())
	}

	return flattenAncestors(parent, flattenAncestorDepth)
}

// redistributeFreedSize hands a detached child's tiling_size back to its
// former siblings (now parent's tiling children) proportionally to how
// far each sits above the minimum, or evenly if all are already pinned
// at the minimum.
func redistributeFreedSize(parent container.Container, freed float64) {
	siblings := container.TilingChildren(parent)
	if len(siblings) == 0 {
		return
	}

	var totalAboveMin float64
	for _, s := range siblings {
		totalAboveMin += s.TilingSize() - container.MinTilingSize
	}

	if totalAboveMin <= 1e-9 {
		share := freed / float64(len(siblings))
		for _, s := range siblings {
			s.SetTilingSize(s.TilingSize() + share)
		}
		return
	}

	for _, s := range siblings {
		weight := (s.TilingSize() - container.MinTilingSize) / totalAboveMin
		s.SetTilingSize(s.TilingSize() + freed*weight)
	}
}

// flattenAncestors collects up to maxDepth ancestors of start (start
// included) before mutating anything, then flattens any that are a
// Split left with exactly one child. Collecting up front means a
// flatten at one level never invalidates the identity of an ancestor
// further up that was already captured.
func flattenAncestors(start container.Container, maxDepth int) error {
	var chain []container.Container
	cur := start
	for i := 0; i < maxDepth && cur != nil; i++ {
		chain = append(chain, cur)
		cur = cur.Parent()
	}

	for _, n := range chain {
		split, ok := n.(*container.Split)
		if !ok {
			continue
		}
		if container.IsDetached(split) {
			continue
		}
		if len(split.Children()) == 1 {
			if err := FlattenSplit(split); err != nil {
				return err
			}
		}
	}
	return nil
}
