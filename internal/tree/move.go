package tree

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
)

// MoveWithinTree relocates node to index newIndex under newParent. When
// newParent is node's current parent this only reorders the children
// slice; no detach/attach round-trip happens, so tiling sizes are left
// untouched exactly as spec §4.3 requires ("moving within the same
// parent never triggers a resize redistribution"). Otherwise it is a
// Detach followed by an Attach.
func MoveWithinTree(node, newParent container.Container, newIndex int) error {
	oldParent := node.Parent()
	if oldParent != nil && oldParent.ID() == newParent.ID() {
		return reorderWithinParent(node, newIndex)
	}
	if err := Detach(node); err != nil {
		return err
	}
	return Attach(node, newParent, newIndex)
}

func reorderWithinParent(node container.Container, newIndex int) error {
	parent := node.Parent()
	if parent == nil {
		return fmt.Errorf("tree: move %s: already detached", node.ID())
	}

	children := parent.Children()
	oldIndex := container.IndexOfChild(parent, node)
	if oldIndex < 0 {
		return fmt.Errorf("tree: move %s: %w", node.ID(), ErrNotAChild)
	}

	without := make([]container.Container, 0, len(children)-1)
	without = append(without, children[:oldIndex]...)
	without = append(without, children[oldIndex+1:]...)

	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(without) {
		newIndex = len(without)
	}

	result := make([]container.Container, 0, len(children))
	result = append(result, without[:newIndex]...)
	result = append(result, node)
	result = append(result, without[newIndex:]...)
	container.SetChildren(parent, result)
	return nil
}
