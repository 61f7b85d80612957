package container

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// MinTilingSize is the floor every tiling_size must respect (spec §3,
// invariant 3).
const MinTilingSize = 0.01

const tilingSumEpsilon = 1e-4

// CheckInvariants walks the tree from root and returns the first
// invariant violation found (spec §3, §8 P1-P6), or nil if the tree is
// consistent. It is used by tests and by the engine's debug-assert mode;
// it is never called on the hot path in a release build.
func CheckInvariants(root *Root) error {
	if root == nil {
		return fmt.Errorf("container: nil root")
	}
	return checkNode(root)
}

func checkNode(c Container) error {
	// P2: back-reference consistency.
	if c.Kind() != KindRoot {
		p := c.Parent()
		if p == nil {
			return fmt.Errorf("container %s (%s): non-root has no parent", c.ID(), c.Kind())
		}
		if ChildByID(p, c.ID()) == nil {
			return fmt.Errorf("container %s (%s): parent %s does not list it as a child", c.ID(), c.Kind(), p.ID())
		}
	}

	// P3: focus order is a permutation of children ids.
	if err := checkFocusOrder(c); err != nil {
		return err
	}

	// P4: no redundant splits.
	if c.Kind() == KindSplit && len(c.Children()) == 1 {
		return fmt.Errorf("split %s: has exactly one child (should have been flattened)", c.ID())
	}

	// P1: tiling sum, for DirectionContainers.
	if dc, ok := AsDirectionContainer(c); ok {
		if err := checkTilingSum(dc); err != nil {
			return err
		}
	}

	// P5: exactly one displayed workspace per monitor.
	if m, ok := c.(*Monitor); ok {
		if err := checkDisplayedWorkspace(m); err != nil {
			return err
		}
	}

	// P6/kind-layering + P7 (NonTiling parent is Workspace).
	if err := checkKindLayering(c); err != nil {
		return err
	}

	for _, child := range c.Children() {
		if err := checkNode(child); err != nil {
			return err
		}
	}
	return nil
}

func checkFocusOrder(c Container) error {
	order := c.ChildFocusOrder()
	children := c.Children()
	if len(order) != len(children) {
		return fmt.Errorf("container %s: focus order has %d entries, %d children", c.ID(), len(order), len(children))
	}
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("container %s: focus order has duplicate %s", c.ID(), id)
		}
		seen[id] = true
		if ChildByID(c, id) == nil {
			return fmt.Errorf("container %s: focus order references unknown child %s", c.ID(), id)
		}
	}
	return nil
}

func checkTilingSum(dc DirectionContainer) error {
	children := TilingChildren(dc)
	if len(children) == 0 {
		return nil
	}
	var sum float64
	for _, tc := range children {
		if tc.TilingSize() < MinTilingSize-tilingSumEpsilon {
			return fmt.Errorf("container %s: tiling child %s has size %f below minimum", dc.ID(), tc.ID(), tc.TilingSize())
		}
		sum += tc.TilingSize()
	}
	if math.Abs(sum-1.0) > tilingSumEpsilon {
		return fmt.Errorf("container %s: tiling sizes sum to %f, want 1.0", dc.ID(), sum)
	}
	return nil
}

func checkDisplayedWorkspace(m *Monitor) error {
	if len(m.Children()) == 0 {
		return nil
	}
	displayedCount := 0
	for i, ch := range m.Children() {
		ws, ok := ch.(*Workspace)
		if !ok {
			return fmt.Errorf("monitor %s: child %d is not a workspace", m.ID(), i)
		}
		if ws.IsDisplayed() {
			displayedCount++
		}
	}
	if displayedCount != 1 {
		return fmt.Errorf("monitor %s: %d displayed workspaces, want 1", m.ID(), displayedCount)
	}
	return nil
}

func checkKindLayering(c Container) error {
	for _, child := range c.Children() {
		switch c.Kind() {
		case KindRoot:
			if child.Kind() != KindMonitor {
				return fmt.Errorf("root %s: child %s has kind %s, want monitor", c.ID(), child.ID(), child.Kind())
			}
		case KindMonitor:
			if child.Kind() != KindWorkspace {
				return fmt.Errorf("monitor %s: child %s has kind %s, want workspace", c.ID(), child.ID(), child.Kind())
			}
		case KindWorkspace:
			switch child.Kind() {
			case KindSplit, KindTilingWindow, KindNonTilingWindow:
			default:
				return fmt.Errorf("workspace %s: child %s has invalid kind %s", c.ID(), child.ID(), child.Kind())
			}
		case KindSplit:
			switch child.Kind() {
			case KindSplit, KindTilingWindow:
			default:
				return fmt.Errorf("split %s: child %s has invalid kind %s", c.ID(), child.ID(), child.Kind())
			}
		case KindTilingWindow, KindNonTilingWindow:
			return fmt.Errorf("window %s: must not have children", c.ID())
		}
	}
	return nil
}
