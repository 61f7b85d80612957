package tree

import (
	"fmt"
	"sort"

	"github.com/corewm/corewm/internal/container"
	"github.com/google/uuid"
)

// WrapInSplit moves children (all currently direct children of
// oldParent) under split, and inserts split into oldParent at the
// lowest index any of children previously occupied. split's
// tiling_size becomes the sum of the moved children's tiling_sizes
// (replacing whatever size split was constructed with), and each
// moved child's tiling_size is rescaled so they still sum to 1 within
// split. Relative order among children is preserved; oldParent's focus
// order has the moved ids collapsed into split's id at the first moved
// id's old position, and split's own focus order is seeded from
// oldParent's former order restricted to the moved ids (spec §4.3,
// "wrap_in_split").
func WrapInSplit(split *container.Split, oldParent container.Container, children []container.Container) error {
	if len(children) == 0 {
		return fmt.Errorf("tree: wrap_in_split: no children given")
	}

	oldChildren := oldParent.Children()
	indexOf := make(map[uuid.UUID]int, len(children))
	moving := make(map[uuid.UUID]bool, len(children))
	for _, c := range children {
		idx := container.IndexOfChild(oldParent, c)
		if idx < 0 {
			return fmt.Errorf("tree: wrap_in_split: %s is not a child of %s: %w", c.ID(), oldParent.ID(), ErrNotAChild)
		}
		indexOf[c.ID()] = idx
		moving[c.ID()] = true
	}

	minIndex := len(oldChildren)
	for _, idx := range indexOf {
		if idx < minIndex {
			minIndex = idx
		}
	}

	remaining := make([]container.Container, 0, len(oldChildren)-len(children))
	for _, c := range oldChildren {
		if !moving[c.ID()] {
			remaining = append(remaining, c)
		}
	}
	if minIndex > len(remaining) {
		minIndex = len(remaining)
	}

	newOldChildren := make([]container.Container, 0, len(remaining)+1)
	newOldChildren = append(newOldChildren, remaining[:minIndex]...)
	newOldChildren = append(newOldChildren, split)
	newOldChildren = append(newOldChildren, remaining[minIndex:]...)
	container.SetChildren(oldParent, newOldChildren)
	container.SetParent(split, oldParent)

	ordered := make([]container.Container, len(children))
	copy(ordered, children)
	sort.Slice(ordered, func(i, j int) bool {
		return indexOf[ordered[i].ID()] < indexOf[ordered[j].ID()]
	})
	for _, c := range ordered {
		container.SetParent(c, split)
	}
	container.SetChildren(split, ordered)

	var sum float64
	for _, c := range ordered {
		if tc, ok := container.AsTilingContainer(c); ok {
			sum += tc.TilingSize()
		}
	}
	split.SetTilingSize(sum)
	for _, c := range ordered {
		tc, ok := container.AsTilingContainer(c)
		if !ok {
			continue
		}
		if sum > 1e-9 {
			tc.SetTilingSize(tc.TilingSize() / sum)
		} else {
			tc.SetTilingSize(1.0 / float64(len(ordered)))
		}
	}

	oldOrder := oldParent.ChildFocusOrder()
	newOldOrder := make([]uuid.UUID, 0, len(oldOrder)-len(children)+1)
	insertedSplit := false
	for _, id := range oldOrder {
		if moving[id] {
			if !insertedSplit {
				newOldOrder = append(newOldOrder, split.ID())
				insertedSplit = true
			}
			continue
		}
		newOldOrder = append(newOldOrder, id)
	}
	if !insertedSplit {
		newOldOrder = append(newOldOrder, split.ID())
	}
	container.SetChildFocusOrder(oldParent, newOldOrder)

	splitOrder := make([]uuid.UUID, 0, len(ordered))
	seen := make(map[uuid.UUID]bool, len(ordered))
	for _, id := range oldOrder {
		if moving[id] {
			splitOrder = append(splitOrder, id)
			seen[id] = true
		}
	}
	for _, c := range ordered {
		if !seen[c.ID()] {
			splitOrder = append(splitOrder, c.ID())
		}
	}
	container.SetChildFocusOrder(split, splitOrder)

	return nil
}

// FlattenSplit is wrap_in_split's inverse: split's children are lifted
// into split's own position within its parent, each scaled by
// split.TilingSize() (so they keep their share of the grandparent's
// axis), and any child that is itself a Split has its direction
// inverted, since it now sits directly under a DirectionContainer whose
// axis used to be perpendicular to split's. split is left detached
// (spec §4.3, "flatten_split").
func FlattenSplit(split *container.Split) error {
	parent := split.Parent()
	if parent == nil {
		return fmt.Errorf("tree: flatten_split %s: already detached", split.ID())
	}

	idx := container.IndexOfChild(parent, split)
	if idx < 0 {
		return fmt.Errorf("tree: flatten_split %s: %w", split.ID(), ErrNotAChild)
	}

	children := make([]container.Container, len(split.Children()))
	copy(children, split.Children())

	parentChildren := parent.Children()
	newParentChildren := make([]container.Container, 0, len(parentChildren)-1+len(children))
	newParentChildren = append(newParentChildren, parentChildren[:idx]...)
	newParentChildren = append(newParentChildren, children...)
	newParentChildren = append(newParentChildren, parentChildren[idx+1:]...)
	container.SetChildren(parent, newParentChildren)

	splitSize := split.TilingSize()
	for _, c := range children {
		container.SetParent(c, parent)
		if tc, ok := container.AsTilingContainer(c); ok {
			tc.SetTilingSize(splitSize * tc.TilingSize())
		}
		if childSplit, ok := c.(*container.Split); ok {
			childSplit.SetDirection(childSplit.Direction().Inverse())
		}
	}

	parentOrder := parent.ChildFocusOrder()
	splitOrder := split.ChildFocusOrder()
	newParentOrder := make([]uuid.UUID, 0, len(parentOrder)-1+len(splitOrder))
	for _, id := range parentOrder {
		if id == split.ID() {
			newParentOrder = append(newParentOrder, splitOrder...)
			continue
		}
		newParentOrder = append(newParentOrder, id)
	}
	container.SetChildFocusOrder(parent, newParentOrder)

	container.SetParent(split, nil)
	container.SetChildren(split, nil)
	container.SetChildFocusOrder(split, nil)
	return nil
}
