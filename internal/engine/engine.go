// Package engine composes the tree mutation primitives in
// internal/tree into the high-level commands spec.md §4.4 describes,
// drives the single-threaded dispatch loop of §5, and owns the
// pending-sync reducer flush of §4.5. It is the only package that
// mutates the container tree through internal/tree.
package engine

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/corewm/corewm/internal/config"
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/pendingsync"
	"github.com/corewm/corewm/internal/platform"
	"github.com/google/uuid"
)

var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "engine",
	})
}

// SetLogLevel sets the logging level for the engine package.
func SetLogLevel(level log.Level) { logger.SetLevel(level) }

// focusOverrideTolerance is the magic 100ms window spec.md §4.4 gives
// the core to override a foreign OS focus event that follows one of
// its own unmanage/minimize operations (spec.md §9 open question: this
// is tunable but not configured).
const focusOverrideTolerance = 100 * time.Millisecond

// Engine owns the container tree and is the sole writer to it; every
// mutation happens on the single goroutine that calls Run (spec.md
// §5). All other fields are only ever touched from that goroutine,
// except the channel WmEvents() returns, which is safe for concurrent
// consumption.
type Engine struct {
	root *container.Root
	cfg  *config.UserConfig
	plat platform.Platform

	pending *pendingsync.PendingSync

	nativeByHandle map[string]platform.NativeWindow
	windowByHandle map[string]container.WindowContainer

	wmEvents chan WmEvent

	paused              bool
	activeBindingModes  map[string]bool
	recentWorkspaceIDs  []uuid.UUID
	unmanagedOrMinimizedAt time.Time
	debugAssert         bool

	mu sync.Mutex // guards paused/activeBindingModes for concurrent IPC reads
}

// New constructs an Engine around an already-built Root (callers build
// the initial Monitor tree by calling AddMonitor for each
// plat.Monitors() entry before starting Run).
func New(root *container.Root, cfg *config.UserConfig, plat platform.Platform) *Engine {
	return &Engine{
		root:               root,
		cfg:                cfg,
		plat:               plat,
		pending:            pendingsync.New(),
		nativeByHandle:     make(map[string]platform.NativeWindow),
		windowByHandle:     make(map[string]container.WindowContainer),
		wmEvents:           make(chan WmEvent, 256),
		activeBindingModes: map[string]bool{"default": true},
	}
}

// Root returns the engine's container tree root.
func (e *Engine) Root() *container.Root { return e.root }

// WmEvents returns the channel of broadcast WmEvents the IPC hub fans
// out to subscribed clients.
func (e *Engine) WmEvents() <-chan WmEvent { return e.wmEvents }

// Lookup implements pendingsync.NativeLookup, resolving a window's
// stable handle to its live platform.NativeWindow.
func (e *Engine) Lookup(handle string) (platform.NativeWindow, bool) {
	w, ok := e.nativeByHandle[handle]
	return w, ok
}

// IsPaused reports whether the engine is currently ignoring platform
// events (wm-toggle-pause).
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Run drives the single-threaded event loop: select on platform
// events, IPC commands and config reloads, dispatching each to
// completion before taking the next (spec.md §5's ordering
// guarantee). It returns when ctx is cancelled or the platform emits
// ApplicationExiting.
func (e *Engine) Run(ctx context.Context, commands <-chan Command, cfgReload <-chan *config.UserConfig) error {
	platEvents := e.plat.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-platEvents:
			if !ok {
				return nil
			}
			e.dispatchPlatformEvent(ev)
			if ev.Kind == platform.EventApplicationExiting {
				return nil
			}
		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			if e.dispatchCommand(cmd) {
				return nil
			}
		case cfg, ok := <-cfgReload:
			if !ok {
				cfgReload = nil
				continue
			}
			e.cfg = cfg
			e.pending.QueueAllWindowEffects()
			e.flush()
			e.emit(WmEvent{Kind: EvUserConfigChanged})
		}
	}
}

// dispatchPlatformEvent handles one PlatformEvent to completion,
// flushing pending-sync at the end (spec.md §5: "the order of (tree
// mutation -> event emission -> pending-sync flush) is fixed").
func (e *Engine) dispatchPlatformEvent(ev platform.Event) {
	if e.IsPaused() && ev.Kind != platform.EventApplicationExiting {
		return
	}
	switch ev.Kind {
	case platform.EventWindowShown, platform.EventWindowFocused:
		e.handleWindowShownOrFocused(ev)
	case platform.EventWindowHidden:
		e.handleWindowHidden(ev)
	case platform.EventWindowDestroyed:
		e.handleWindowDestroyed(ev)
	case platform.EventWindowMinimized:
		e.handleWindowMinimized(ev)
	case platform.EventWindowMovedOrResized:
		e.handleWindowMovedOrResized(ev)
	case platform.EventWindowTitleChanged:
		e.handleWindowTitleChanged(ev)
	case platform.EventDisplaySettingsChanged:
		e.HandleDisplaysChanged(e.plat.Monitors())
	case platform.EventMouseMove:
		e.handleMouseMove(ev)
	case platform.EventKeybindingTriggered:
		e.handleKeybinding(ev)
	case platform.EventApplicationExiting:
		e.emit(WmEvent{Kind: EvApplicationExiting})
		return
	}
	e.flush()
	e.assertInvariants()
}

// dispatchCommand handles one user-invoked Command to completion,
// reporting whether Run should stop (the WmExit command was issued).
func (e *Engine) dispatchCommand(cmd Command) bool {
	err := e.runCommand(cmd)
	if err != nil && !errors.Is(err, errExit) {
		logger.Warn("command failed", "kind", cmd.Kind, "err", err)
		return false
	}
	e.flush()
	e.assertInvariants()
	return errors.Is(err, errExit)
}

// flush applies everything queued in the pending-sync reducer since
// the last flush, then clears it (spec.md §4.5). Apart from read-only
// platform queries and the Close command's CloseWindow request, no OS
// call happens anywhere else in the engine.
func (e *Engine) flush() {
	if e.pending.IsEmpty() {
		return
	}
	e.pending.Flush(e.root, e.cfg, e.plat, e)
}

// emit sends ev on the broadcast channel without blocking; a full
// channel (no consumer keeping up) drops the event rather than stalling
// the dispatch loop.
func (e *Engine) emit(ev WmEvent) {
	select {
	case e.wmEvents <- ev:
	default:
		logger.Debug("dropped wm event: subscriber channel full", "kind", ev.Kind)
	}
}

func (e *Engine) focusedDTO() *ContainerDTO {
	focused := container.FocusedDescendant(e.root)
	dto := ToDTO(focused, focused)
	return &dto
}

// registerWindow records the live NativeWindow and the tree container
// it backs, keyed by stable handle.
func (e *Engine) registerWindow(native platform.NativeWindow, wc container.WindowContainer) {
	e.nativeByHandle[native.Handle()] = native
	e.windowByHandle[native.Handle()] = wc
}

func (e *Engine) unregisterWindow(handle string) {
	delete(e.nativeByHandle, handle)
	delete(e.windowByHandle, handle)
}

func (e *Engine) findWindow(handle string) (container.WindowContainer, bool) {
	wc, ok := e.windowByHandle[handle]
	return wc, ok
}

// markUnmanagedOrMinimizedNow records the current time as the most
// recent unmanage/minimize, so a foreign OS focus event arriving within
// focusOverrideTolerance can be recognized and overridden (spec.md §4.4
// focus-override-after-close).
func (e *Engine) markUnmanagedOrMinimizedNow() {
	e.unmanagedOrMinimizedAt = time.Now()
}

// shouldOverrideForeignFocus reports whether an OS-reported focus event
// arriving right now falls within the focus-override window following
// the most recent unmanage/minimize (spec.md §4.4, scenario 4).
func (e *Engine) shouldOverrideForeignFocus() bool {
	if e.unmanagedOrMinimizedAt.IsZero() {
		return false
	}
	tolerance := focusOverrideTolerance
	if ms := e.cfg.General.FocusOverrideWindowMillis; ms > 0 {
		tolerance = time.Duration(ms) * time.Millisecond
	}
	return time.Since(e.unmanagedOrMinimizedAt) < tolerance
}

// touchWorkspaceRecency moves ws's id to the front of
// recentWorkspaceIDs, for the Recent workspace target.
func (e *Engine) touchWorkspaceRecency(ws *container.Workspace) {
	id := ws.ID()
	filtered := make([]uuid.UUID, 0, len(e.recentWorkspaceIDs)+1)
	filtered = append(filtered, id)
	for _, existing := range e.recentWorkspaceIDs {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	e.recentWorkspaceIDs = filtered
}
