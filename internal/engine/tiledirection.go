package engine

import (
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/tree"
)

// ToggleTilingDirection implements spec.md §4.4 toggle_tiling_direction.
func (e *Engine) ToggleTilingDirection(c container.Container) error {
	switch n := c.(type) {
	case *container.Workspace:
		n.SetDirection(n.Direction().Inverse())
		e.emitTilingDirectionChanged(n, n.Direction())
		e.pending.QueueRedraw(n)
		return nil

	case *container.TilingWindow:
		parent := n.Parent()
		siblings := container.TilingSiblings(n)
		switch p := parent.(type) {
		case *container.Workspace:
			if len(siblings) == 0 {
				p.SetDirection(p.Direction().Inverse())
				e.emitTilingDirectionChanged(p, p.Direction())
				e.pending.QueueRedraw(p)
				return nil
			}
		case *container.Split:
			if len(siblings) == 0 {
				if err := tree.FlattenSplit(p); err != nil {
					return err
				}
				if dc, ok := container.AsDirectionContainer(n.Parent()); ok {
					e.emitTilingDirectionChanged(n.Parent(), dc.Direction())
				}
				e.pending.QueueRedraw(n)
				return nil
			}
		}

		ws := container.WorkspaceOf(n)
		var dir container.TilingDirection
		if dc, ok := container.AsDirectionContainer(parent); ok {
			dir = dc.Direction().Inverse()
		} else if ws != nil {
			dir = ws.Direction().Inverse()
		}
		split := container.NewSplit(dir)
		if err := tree.WrapInSplit(split, parent, []container.Container{n}); err != nil {
			return err
		}
		e.emitTilingDirectionChanged(split, dir)
		e.pending.QueueRedraw(split)
		return nil

	default:
		return nil
	}
}

func (e *Engine) emitTilingDirectionChanged(c container.Container, dir container.TilingDirection) {
	dto := ToDTO(c, container.FocusedDescendant(e.root))
	e.emit(WmEvent{Kind: EvTilingDirectionChanged, DirectionContainer: &dto, NewTilingDirection: dir.String()})
}
