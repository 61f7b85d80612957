package engine

import (
	"fmt"

	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/tree"
)

// SetDebugAssert turns on a post-dispatch container.CheckInvariants
// pass. Tests enable it (cmd/wmd does not) to catch a
// tree invariant violation (spec.md §7) at the dispatch that introduced
// it rather than downstream, at the cost of walking the whole tree
// after every event.
func (e *Engine) SetDebugAssert(v bool) { e.debugAssert = v }

func (e *Engine) assertInvariants() {
	if !e.debugAssert {
		return
	}
	if err := container.CheckInvariants(e.root); err != nil {
		logger.Error("invariant check failed", "err", fmt.Errorf("%w: %v", tree.ErrInvariant, err))
	}
}
