// Package main implements wmctl, the command-line client that talks to
// a running wmd daemon over its IPC WebSocket: one cobra subcommand per
// Command family (spec.md §6.1), plus a `subscribe` command that prints
// the broadcast WmEvent stream until interrupted.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/corewm/corewm/internal/engine"
	"github.com/spf13/cobra"
)

var (
	serverAddr string
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func main() {
	root := &cobra.Command{
		Use:   "wmctl",
		Short: "control a running corewm daemon",
		Long: `wmctl sends a single Command to a wmd daemon over its IPC WebSocket
and reports that it was sent; it does not wait for the resulting
WmEvents. "wmctl subscribe" prints the WmEvent stream.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", "127.0.0.1:7790", "wmd IPC address (host:port)")

	root.AddCommand(
		closeCmd(),
		focusCmd(),
		moveCmd(),
		moveWorkspaceCmd(),
		resizeCmd(),
		changeBordersCmd(),
		toggleCmd(engine.CmdSetFloating, "set-floating"),
		toggleCmd(engine.CmdSetFullscreen, "set-fullscreen"),
		toggleCmd(engine.CmdSetMaximized, "set-maximized"),
		toggleCmd(engine.CmdSetMinimized, "set-minimized"),
		toggleCmd(engine.CmdSetTiling, "set-tiling"),
		shellExecCmd(),
		wmEnableBindingModeCmd(),
		wmDisableBindingModeCmd(),
		simpleCmd(engine.CmdWmTogglePause, "wm-toggle-pause", "pause or resume the engine's platform event handling"),
		simpleCmd(engine.CmdWmReloadConfig, "wm-reload-config", "force a config reload"),
		simpleCmd(engine.CmdWmRedraw, "wm-redraw", "re-apply geometry to every managed window"),
		simpleCmd(engine.CmdWmExit, "wm-exit", "ask the daemon to shut down"),
		rawCmd(),
		subscribeCmd(),
		configPathCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func sendAndReport(cmd engine.Command) error {
	client, err := dial(serverAddr)
	if err != nil {
		return fmt.Errorf("wmctl: connect: %w", err)
	}
	defer client.Close()

	if err := client.Send(cmd); err != nil {
		return fmt.Errorf("wmctl: send: %w", err)
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("sent %s", cmd.Kind)))
	return nil
}

func directionArg(s string) (engine.Direction, error) {
	return engine.ParseDirection(s)
}

func toggleFromString(s string) engine.Toggle {
	switch s {
	case "on":
		return engine.ToggleOn
	case "off":
		return engine.ToggleOff
	default:
		return engine.ToggleFlip
	}
}

func closeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "close the focused window",
		RunE: func(_ *cobra.Command, _ []string) error {
			return sendAndReport(engine.Command{Kind: engine.CmdClose})
		},
	}
}

func workspaceTargetArg(s string) engine.WorkspaceTarget {
	switch s {
	case "next":
		return engine.WorkspaceTarget{Kind: engine.WSTargetNext}
	case "prev", "previous":
		return engine.WorkspaceTarget{Kind: engine.WSTargetPrevious}
	case "recent":
		return engine.WorkspaceTarget{Kind: engine.WSTargetRecent}
	default:
		if d, err := directionArg(s); err == nil {
			return engine.WorkspaceTarget{Kind: engine.WSTargetDirection, Direction: d}
		}
		return engine.WorkspaceTarget{Kind: engine.WSTargetName, Name: s}
	}
}

func focusCmd() *cobra.Command {
	var direction, workspace string
	c := &cobra.Command{
		Use:   "focus",
		Short: "move focus in a direction, or to a named/relative workspace",
		RunE: func(_ *cobra.Command, _ []string) error {
			cmd := engine.Command{Kind: engine.CmdFocus}
			if direction != "" {
				d, err := directionArg(direction)
				if err != nil {
					return err
				}
				cmd.Direction, cmd.HasDirection = d, true
			}
			if workspace != "" {
				cmd.Workspace, cmd.HasWorkspace = workspaceTargetArg(workspace), true
			}
			if !cmd.HasDirection && !cmd.HasWorkspace {
				return fmt.Errorf("focus: specify --direction or --workspace")
			}
			return sendAndReport(cmd)
		},
	}
	c.Flags().StringVar(&direction, "direction", "", "left|right|up|down")
	c.Flags().StringVar(&workspace, "workspace", "", "workspace name, next, prev, recent, or a direction")
	return c
}

func moveCmd() *cobra.Command {
	var direction, workspace string
	c := &cobra.Command{
		Use:   "move",
		Short: "move the focused window in a direction or to a workspace",
		RunE: func(_ *cobra.Command, _ []string) error {
			cmd := engine.Command{Kind: engine.CmdMove}
			if direction != "" {
				d, err := directionArg(direction)
				if err != nil {
					return err
				}
				cmd.Direction, cmd.HasDirection = d, true
			}
			if workspace != "" {
				cmd.Workspace, cmd.HasWorkspace = workspaceTargetArg(workspace), true
			}
			if !cmd.HasDirection && !cmd.HasWorkspace {
				return fmt.Errorf("move: specify --direction or --workspace")
			}
			return sendAndReport(cmd)
		},
	}
	c.Flags().StringVar(&direction, "direction", "", "left|right|up|down")
	c.Flags().StringVar(&workspace, "workspace", "", "workspace name, next, prev, recent, or a direction")
	return c
}

func moveWorkspaceCmd() *cobra.Command {
	var direction string
	c := &cobra.Command{
		Use:   "move-workspace",
		Short: "move the focused workspace to an adjacent monitor",
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := directionArg(direction)
			if err != nil {
				return err
			}
			return sendAndReport(engine.Command{Kind: engine.CmdMoveWorkspace, Direction: d, HasDirection: true})
		},
	}
	c.Flags().StringVar(&direction, "direction", "", "left|right|up|down")
	_ = c.MarkFlagRequired("direction")
	return c
}

func lengthDeltaFlag(s string) (*engine.LengthDelta, error) {
	if s == "" {
		return nil, nil
	}
	cmd, err := engine.ParseCommandLine("resize width=" + s)
	if err != nil {
		return nil, err
	}
	return cmd.Width, nil
}

func resizeCmd() *cobra.Command {
	var width, height string
	c := &cobra.Command{
		Use:   "resize",
		Short: "resize the focused tiling window (<number>(px|%), optionally +/- prefixed)",
		RunE: func(_ *cobra.Command, _ []string) error {
			w, err := lengthDeltaFlag(width)
			if err != nil {
				return err
			}
			h, err := lengthDeltaFlag(height)
			if err != nil {
				return err
			}
			if w == nil && h == nil {
				return fmt.Errorf("resize: specify --width or --height")
			}
			return sendAndReport(engine.Command{Kind: engine.CmdResize, Width: w, Height: h})
		},
	}
	c.Flags().StringVar(&width, "width", "", "")
	c.Flags().StringVar(&height, "height", "", "")
	return c
}

func changeBordersCmd() *cobra.Command {
	var width, height string
	c := &cobra.Command{
		Use:   "change-borders",
		Short: "adjust the focused window's border-delta compensation",
		RunE: func(_ *cobra.Command, _ []string) error {
			w, err := lengthDeltaFlag(width)
			if err != nil {
				return err
			}
			h, err := lengthDeltaFlag(height)
			if err != nil {
				return err
			}
			return sendAndReport(engine.Command{Kind: engine.CmdChangeBorders, Width: w, Height: h})
		},
	}
	c.Flags().StringVar(&width, "width", "", "")
	c.Flags().StringVar(&height, "height", "", "")
	return c
}

func toggleCmd(kind engine.CommandKind, use string) *cobra.Command {
	var toggle string
	c := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s on the focused window", use),
		RunE: func(_ *cobra.Command, _ []string) error {
			return sendAndReport(engine.Command{Kind: kind, Toggle: toggleFromString(toggle)})
		},
	}
	c.Flags().StringVar(&toggle, "toggle", "toggle", "on|off|toggle")
	return c
}

func shellExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell-exec -- <cmd> [args...]",
		Short: "ask the daemon to run a shell command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return sendAndReport(engine.Command{Kind: engine.CmdShellExec, ShellArgs: args})
		},
	}
}

func wmEnableBindingModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wm-enable-binding-mode <name>",
		Short: "enable a named binding mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return sendAndReport(engine.Command{Kind: engine.CmdWmEnableBindingMode, BindingMode: args[0]})
		},
	}
}

func wmDisableBindingModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wm-disable-binding-mode <name>",
		Short: "disable a named binding mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return sendAndReport(engine.Command{Kind: engine.CmdWmDisableBindingMode, BindingMode: args[0]})
		},
	}
}

func simpleCmd(kind engine.CommandKind, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(_ *cobra.Command, _ []string) error {
			return sendAndReport(engine.Command{Kind: kind})
		},
	}
}

// rawCmd passes the small textual command grammar straight through to
// engine.ParseCommandLine, for scripts that would rather write
// "focus direction=left" than learn every flag name.
func rawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "raw <command line>",
		Short: `parse and send a raw command line, e.g. "focus direction=left"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			line := args[0]
			for _, a := range args[1:] {
				line += " " + a
			}
			cmd, err := engine.ParseCommandLine(line)
			if err != nil {
				return err
			}
			return sendAndReport(cmd)
		},
	}
}

// subscribeCmd opens a connection and prints every broadcast WmEvent as
// newline-delimited JSON until the connection closes or --timeout
// elapses; with no --timeout it also stops once 30 seconds pass
// without an event.
func subscribeCmd() *cobra.Command {
	var timeout time.Duration
	c := &cobra.Command{
		Use:   "subscribe",
		Short: "print the daemon's WmEvent stream",
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := dial(serverAddr)
			if err != nil {
				return fmt.Errorf("wmctl: connect: %w", err)
			}
			defer client.Close()

			deadline := time.Now().Add(timeout)
			for timeout <= 0 || time.Now().Before(deadline) {
				remaining := 30 * time.Second
				if timeout > 0 {
					remaining = time.Until(deadline)
				}
				raw, err := client.ReadRawEvent(remaining)
				if err != nil {
					return nil
				}
				fmt.Println(string(raw))
			}
			return nil
		},
	}
	c.Flags().DurationVar(&timeout, "timeout", 0, "stop after this long (0 = until the connection closes or 30s pass without an event)")
	return c
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-path",
		Short: "print the resolved config file path",
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}
