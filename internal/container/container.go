package container

import (
	"github.com/google/uuid"
)

// Container is the common contract every node kind satisfies. Behavior
// differs by variant but the set of variants is fixed and known to the
// engine, so this mirrors a closed sum rather than an open plugin
// interface.
type Container interface {
	ID() uuid.UUID
	Kind() Kind
	Parent() Container
	setParent(Container)
	setID(uuid.UUID)
	Children() []Container
	setChildren([]Container)
	ChildFocusOrder() []uuid.UUID
	setChildFocusOrder([]uuid.UUID)
}

// Base is embedded by every concrete node type and provides the shared
// ownership bookkeeping: a parent back-reference, an ordered child list
// and a most-recent-first focus order over child ids. Parent links are
// strong references to ancestors only, so the tree never cycles back on
// itself; detaching a subtree simply stops anything live from holding a
// pointer into it, and the Go garbage collector reclaims it — there is
// no manual refcounting to get wrong.
type Base struct {
	id              uuid.UUID
	kind            Kind
	parent          Container
	children        []Container
	childFocusOrder []uuid.UUID
}

// NewBase initializes the shared node bookkeeping for a freshly
// constructed container of the given kind.
func NewBase(kind Kind) Base {
	return Base{id: uuid.New(), kind: kind}
}

func (b *Base) ID() uuid.UUID                         { return b.id }
func (b *Base) setID(id uuid.UUID)                    { b.id = id }
func (b *Base) Kind() Kind                            { return b.kind }
func (b *Base) Parent() Container                     { return b.parent }
func (b *Base) setParent(p Container)                 { b.parent = p }
func (b *Base) Children() []Container                 { return b.children }
func (b *Base) setChildren(c []Container)              { b.children = c }
func (b *Base) ChildFocusOrder() []uuid.UUID          { return b.childFocusOrder }
func (b *Base) setChildFocusOrder(order []uuid.UUID)  { b.childFocusOrder = order }

// Equal reports whether a and b are the same node, identity compared by
// id (nil-safe).
func Equal(a, b Container) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// IsDetached reports whether c has no parent and is not the Root — the
// condition under which the engine must never visit it.
func IsDetached(c Container) bool {
	return c.Parent() == nil && c.Kind() != KindRoot
}

// SetParent is the mutator tree.Attach/Detach use. It is not part of the
// Container interface, but it is exported, so any package can call it
// directly and bypass the mutation primitives.
func SetParent(c Container, p Container) { c.setParent(p) }

// SetID overrides c's id. Used only by update_window_state (spec.md
// §4.4) to preserve a window's identity across a Tiling<->NonTiling
// container swap, since the swap must construct a new concrete node of
// the other variant.
func SetID(c Container, id uuid.UUID) { c.setID(id) }

// SetChildren replaces c's child list wholesale. Internal to the
// container/tree packages.
func SetChildren(c Container, children []Container) { c.setChildren(children) }

// SetChildFocusOrder replaces c's focus order wholesale. Internal to the
// container/tree packages.
func SetChildFocusOrder(c Container, order []uuid.UUID) { c.setChildFocusOrder(order) }

// Ancestors returns c's ancestors from its immediate parent up to (but
// excluding) Root's parent, i.e. ending at Root.
func Ancestors(c Container) []Container {
	var out []Container
	for p := c.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// SelfAndAncestors returns c followed by Ancestors(c).
func SelfAndAncestors(c Container) []Container {
	return append([]Container{c}, Ancestors(c)...)
}

// Descendants returns all descendants of c in pre-order.
func Descendants(c Container) []Container {
	var out []Container
	var walk func(Container)
	walk = func(n Container) {
		for _, child := range n.Children() {
			out = append(out, child)
			walk(child)
		}
	}
	walk(c)
	return out
}

// DescendantFocusOrder recursively follows ChildFocusOrder from c
// downward, returning the chain of most-recently-focused descendants
// ending at a leaf (or at c itself if it has no children).
func DescendantFocusOrder(c Container) []Container {
	var out []Container
	cur := c
	for {
		order := cur.ChildFocusOrder()
		if len(order) == 0 || len(cur.Children()) == 0 {
			return out
		}
		next := ChildByID(cur, order[0])
		if next == nil {
			return out
		}
		out = append(out, next)
		cur = next
	}
}

// ChildByID returns the child of c with the given id, or nil.
func ChildByID(c Container, id uuid.UUID) Container {
	for _, child := range c.Children() {
		if child.ID() == id {
			return child
		}
	}
	return nil
}

// IndexOfChild returns the index of child within c.Children(), or -1.
func IndexOfChild(c Container, child Container) int {
	for i, ch := range c.Children() {
		if ch.ID() == child.ID() {
			return i
		}
	}
	return -1
}

// TilingSiblings returns c's siblings that are TilingContainers,
// excluding c itself.
func TilingSiblings(c Container) []TilingContainer {
	p := c.Parent()
	if p == nil {
		return nil
	}
	var out []TilingContainer
	for _, sib := range p.Children() {
		if sib.ID() == c.ID() {
			continue
		}
		if tc, ok := AsTilingContainer(sib); ok {
			out = append(out, tc)
		}
	}
	return out
}

// FocusedDescendant returns the recursive first of ChildFocusOrder
// starting at c; if c has no children it is itself the focused
// container within its own subtree.
func FocusedDescendant(c Container) Container {
	chain := DescendantFocusOrder(c)
	if len(chain) == 0 {
		return c
	}
	return chain[len(chain)-1]
}
