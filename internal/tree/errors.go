// Package tree implements the tree mutation primitives the engine
// composes into high-level commands: attach, detach, replace,
// move_within_tree, wrap_in_split, flatten_split, resize_tiling and
// set_focused_descendant. None of them touch the OS; they only mutate
// the container tree (spec §4.3).
package tree

import "errors"

// ErrNotDetached is returned when a primitive that requires a detached
// container (spec invariant: "child.is_detached()") is given one that
// already has a parent.
var ErrNotDetached = errors.New("tree: container is not detached")

// ErrInvalidIndex is returned when an index argument falls outside the
// valid range for the target container's children.
var ErrInvalidIndex = errors.New("tree: invalid child index")

// ErrNotAChild is returned when a container is asserted to be a child of
// a given parent but is not found there.
var ErrNotAChild = errors.New("tree: container is not a child of the given parent")

// ErrNoMatchingAxis is returned by ResizeInDirection when no ancestor's
// tiling direction matches the requested axis.
var ErrNoMatchingAxis = errors.New("tree: no ancestor tiling container on requested axis")

// ErrInvariant wraps a container.CheckInvariants failure surfaced by the
// engine's debug-assert pass. That pass runs after a dispatch has been
// flushed and only logs the error; it neither panics nor undoes the
// dispatch.
var ErrInvariant = errors.New("tree: invariant violation")
