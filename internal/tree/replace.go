package tree

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
	"github.com/google/uuid"
)

// Replace detaches the container currently at parent.Children()[index]
// and attaches newChild in its place at the same index, preserving its
// position in parent's focus order and copying its tiling_size across
// if both the old and new containers are tiling containers (spec §4.3,
// "replace").
func Replace(newChild, parent container.Container, index int) error {
	if !container.IsDetached(newChild) {
		return fmt.Errorf("tree: replace in %s: %w", parent.ID(), ErrNotDetached)
	}

	children := parent.Children()
	if index < 0 || index >= len(children) {
		return fmt.Errorf("tree: replace in %s at %d: %w", parent.ID(), index, ErrInvalidIndex)
	}
	old := children[index]

	var oldSize float64
	oldIsTiling := false
	if tc, ok := container.AsTilingContainer(old); ok {
		oldSize = tc.TilingSize()
		oldIsTiling = true
	}

	newChildren := make([]container.Container, len(children))
	copy(newChildren, children)
	newChildren[index] = newChild
	container.SetChildren(parent, newChildren)
	container.SetParent(newChild, parent)
	container.SetParent(old, nil)

	order := parent.ChildFocusOrder()
	newOrder := make([]uuid.UUID, len(order))
	for i, id := range order {
		if id == old.ID() {
			newOrder[i] = newChild.ID()
		} else {
			newOrder[i] = id
		}
	}
	container.SetChildFocusOrder(parent, newOrder)

	if newTC, ok := container.AsTilingContainer(newChild); ok && oldIsTiling {
		newTC.SetTilingSize(oldSize)
	}
	return nil
}
