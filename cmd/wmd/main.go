// Package main implements wmd, the corewm window manager daemon: it
// loads configuration, starts a platform backend, drives the engine's
// event loop, and serves the IPC WebSocket that wmctl and other
// subscribers talk to.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/corewm/corewm/internal/config"
	"github.com/corewm/corewm/internal/container"
	"github.com/corewm/corewm/internal/engine"
	"github.com/corewm/corewm/internal/geometry"
	"github.com/corewm/corewm/internal/ipc"
	"github.com/corewm/corewm/internal/lock"
	"github.com/corewm/corewm/internal/platform"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	ipcAddr   string

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "wmd",
	})
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wmd",
		Short: "corewm window manager daemon",
		Long: `wmd is the corewm daemon: it owns the container tree, reacts to
platform events, and exposes a command/event WebSocket for wmctl and
other IPC clients to drive.

This build ships only the in-memory stub platform (spec.md Non-goals);
a real Win32/AppKit/X11 backend would implement the same
platform.Platform interface and be wired in here instead.`,
		RunE:         func(_ *cobra.Command, _ []string) error { return run() },
		SilenceUsage: true,
	}
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.Flags().StringVar(&ipcAddr, "ipc-addr", "", "override the IPC WebSocket bind address (default 127.0.0.1:7790)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	level := log.InfoLevel
	if debugMode {
		level = log.DebugLevel
	}
	engine.SetLogLevel(level)
	config.SetLogLevel(level)
	platform.SetLogLevel(level)
	ipc.SetLogLevel(level)

	l, err := lock.Acquire()
	if err != nil {
		return fmt.Errorf("wmd: %w", err)
	}
	defer l.Close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("wmd: load config: %w", err)
	}

	plat := platform.NewStub()
	plat.AddMonitor(platform.NativeMonitor{
		Handle:      "stub-0",
		Bounds:      geometry.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		DPI:         96,
		ScaleFactor: 1,
	})

	root := container.NewRoot()
	eng := engine.New(root, cfg, plat)
	for _, mon := range plat.Monitors() {
		if _, err := eng.AddMonitor(mon); err != nil {
			return fmt.Errorf("wmd: initial monitor: %w", err)
		}
	}
	for _, w := range plat.ManageableWindows() {
		if err := eng.ManageWindow(w); err != nil {
			logger.Warn("initial window manage failed", "handle", w.Handle(), "err", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		plat.Emit(platform.Event{Kind: platform.EventApplicationExiting})
		cancel()
	}()

	hub := ipc.NewHub()
	commands := make(chan engine.Command, 64)
	cfgReload := make(chan *config.UserConfig, 1)

	watcher, err := watchConfig()
	if err != nil {
		logger.Warn("config watch disabled", "err", err)
	} else {
		defer watcher.Close()
		go func() {
			for newCfg := range watcher.Events {
				select {
				case cfgReload <- newCfg:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go hub.Pump(eng.WmEvents())

	srvCfg := ipc.DefaultConfig()
	if ipcAddr != "" {
		srvCfg.Addr = ipcAddr
	}
	server := ipc.NewServer(srvCfg, hub, commands)
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start(ctx) }()

	runErr := eng.Run(ctx, commands, cfgReload)
	cancel()
	// commands is never closed here: the IPC server's per-connection
	// readPump goroutines may still be mid-send on it until their
	// requests unwind from ctx cancellation, and closing a channel
	// other goroutines can still send on is a race.
	if err := <-serverErr; err != nil {
		logger.Warn("ipc server shutdown error", "err", err)
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("wmd: engine loop: %w", runErr)
	}
	return nil
}

func watchConfig() (*config.Watcher, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	return config.WatchFile(path)
}
