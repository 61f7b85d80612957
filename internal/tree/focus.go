package tree

import (
	"github.com/corewm/corewm/internal/container"
	"github.com/google/uuid"
)

// SetFocusedDescendant walks from target up to endAncestor (or to Root
// if endAncestor is nil), moving the id of the node it just came from to
// the front of each ancestor's child_focus_order. After this call,
// container.FocusedDescendant(endAncestor) (or the root) resolves back
// down to target (spec §4.3, "set_focused_descendant").
func SetFocusedDescendant(target container.Container, endAncestor container.Container) error {
	cur := target
	for {
		parent := cur.Parent()
		if parent == nil {
			return nil
		}

		order := parent.ChildFocusOrder()
		newOrder := make([]uuid.UUID, 0, len(order))
		newOrder = append(newOrder, cur.ID())
		for _, id := range order {
			if id != cur.ID() {
				newOrder = append(newOrder, id)
			}
		}
		container.SetChildFocusOrder(parent, newOrder)

		if endAncestor != nil && parent.ID() == endAncestor.ID() {
			return nil
		}
		cur = parent
	}
}
