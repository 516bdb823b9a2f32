package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wordglow/internal/config"
	"wordglow/internal/daemonctl"
	"wordglow/internal/daemonrun"
	"wordglow/internal/queue"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var development bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Process the queue in the foreground until interrupted",
		Long: `Run the queue worker in the foreground.

The daemon takes an exclusive lock next to the queue database, resets jobs
left mid-stage by a previous run, sweeps the staging directory and then
processes queued jobs until it receives SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    ctx.logLevel(),
				Development: development,
			})
		},
	}

	cmd.Flags().BoolVar(&development, "dev", false, "Enable development logging (source locations)")
	cmd.AddCommand(newDaemonStatusCommand(ctx))
	cmd.AddCommand(newDaemonStopCommand(ctx))
	return cmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a daemon is running and summarize the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				status, err := daemonctl.Probe(cfg)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				if status.Running {
					msg := "Running"
					if status.PID > 0 {
						msg = fmt.Sprintf("Running (pid %d)", status.PID)
					}
					fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, msg, colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusInfo, "Not running", colorize))
				}
				fmt.Fprintln(out, renderStatusLine("Lock", statusInfo, status.LockPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Log", statusInfo, status.LogPath, colorize))
				summary, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderStatusLine("Queue", statusInfo, formatQueueStats(summary), colorize))
				return nil
			})
		},
	}
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask a running daemon to shut down",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result, err := daemonctl.Stop(cmd.Context(), cfg, grace)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Daemon did not exit within %s; killed pid %d\n", grace, result.PID)
				return nil
			}
			fmt.Fprintf(out, "Daemon stopped (pid %d)\n", result.PID)
			return nil
		},
	}

	cmd.Flags().DurationVar(&grace, "grace", 30*time.Second, "How long to wait for a clean shutdown before killing the process")
	return cmd
}
