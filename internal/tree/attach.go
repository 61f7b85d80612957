package tree

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
	"github.com/google/uuid"
)

// Attach inserts child as a child of parent at index, clamped into
// range. child must be detached. If child is a TilingContainer, its
// tiling_size grows the parent's tiling children evenly: with no
// existing tiling siblings it takes the whole axis; otherwise it takes
// 1/(n+1) of the axis and every existing sibling shrinks by the same
// factor, keeping the sum at 1 (spec §4.3, "attach").
func Attach(child, parent container.Container, index int) error {
	if !container.IsDetached(child) {
		return fmt.Errorf("tree: attach %s into %s: %w", child.ID(), parent.ID(), ErrNotDetached)
	}

	children := parent.Children()
	if index < 0 {
		index = 0
	}
	if index > len(children) {
		index = len(children)
	}

	newChildren := make([]container.Container, 0, len(children)+1)
	newChildren = append(newChildren, children[:index]...)
	newChildren = append(newChildren, child)
	newChildren = append(newChildren, children[index:]...)
	container.SetChildren(parent, newChildren)
	container.SetParent(child, parent)

	order := parent.ChildFocusOrder()
	newOrder := make([]uuid.UUID, 0, len(order)+1)
	newOrder = append(newOrder, order...)
	newOrder = append(newOrder, child.ID())
	container.SetChildFocusOrder(parent, newOrder)

	if tc, ok := container.AsTilingContainer(child); ok {
		growTilingChild(tc, parent)
	}
	return nil
}

// growTilingChild implements the even-growth rule: if there are no
// existing tiling siblings, the new child takes the full axis; else it
// takes 1/(n+1) and every sibling is scaled down by (1 - 1/(n+1)).
func growTilingChild(child container.TilingContainer, parent container.Container) {
	var siblings []container.TilingContainer
	for _, sib := range parent.Children() {
		if sib.ID() == child.ID() {
			continue
		}
		if tc, ok := container.AsTilingContainer(sib); ok {
			siblings = append(siblings, tc)
		}
	}

	if len(siblings) == 0 {
		child.SetTilingSize(1)
		return
	}

	newSize := 1.0 / float64(len(siblings)+1)
	for _, sib := range siblings {
		sib.SetTilingSize(sib.TilingSize() * (1 - newSize))
	}
	child.SetTilingSize(newSize)
}
