package platform

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/geometry"
)

var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "platform",
	})
}

// SetLogLevel sets the logging level for the platform package.
func SetLogLevel(level log.Level) {
	logger.SetLevel(level)
}

// Platform is everything the engine needs from the OS: enumeration
// queries, placement/focus mutators, and an event stream. A real
// backend implements this once per OS; the engine never imports OS
// packages directly (spec.md §6.3).
type Platform interface {
	// Monitors returns every connected display, sorted by the
	// implementation in whatever order it discovers them; the engine
	// applies its own monitor_sort (spec.md §4.4) afterward.
	Monitors() []NativeMonitor
	// ManageableWindows enumerates every top-level window the engine
	// could manage, for the initial tree build at startup.
	ManageableWindows() []NativeWindow
	// ForegroundWindow returns the OS's current foreground window, if
	// any.
	ForegroundWindow() (NativeWindow, bool)
	// NearestMonitor returns the monitor whose bounds are closest to
	// the given point (monitor center distance).
	NearestMonitor(x, y float64) (NativeMonitor, bool)

	// SetPosition asks the OS to move/resize/show/hide w.
	SetPosition(w NativeWindow, state container.WindowState, visible bool, rect geometry.Rect) error
	// Restore undoes a minimized or maximized OS-native state so the
	// engine's own placement can take effect.
	Restore(w NativeWindow) error
	// SetForeground gives w input focus.
	SetForeground(w NativeWindow) error
	// CloseWindow asks the OS to close w (the `Close` command, spec.md
	// §6.1). The OS closes windows asynchronously: a real backend
	// returns once the close request is posted, and the actual removal
	// arrives later as a WindowDestroyed event on Events() — it is never
	// applied to the tree synchronously from within a command dispatch
	// (spec.md §5: "a platform call made during flush that synthesizes
	// another OS event will enqueue it, not nest it").
	CloseWindow(w NativeWindow) error
	// SetForegroundDesktop focuses the OS desktop window, used when the
	// globally focused container is an empty workspace.
	SetForegroundDesktop() error
	SetBorderColor(w NativeWindow, color string) error
	SetCornerStyle(w NativeWindow, style string) error
	SetTransparency(w NativeWindow, alpha float64) error
	SetCursorPos(x, y float64) error

	// Events returns the channel of platform-sourced events the engine
	// loop selects on (spec.md §5).
	Events() <-chan Event
	// Close releases any resources the platform implementation holds
	// (hooks, lock files, native handles).
	Close() error
}
