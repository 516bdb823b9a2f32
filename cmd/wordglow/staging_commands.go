package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"wordglow/internal/config"
	"wordglow/internal/queue"
	"wordglow/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage staging directories",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staging directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			stagingDir := strings.TrimSpace(cfg.Paths.StagingDir)
			dirs, err := staging.ListDirectories(stagingDir)
			if err != nil {
				return fmt.Errorf("list staging directories: %w", err)
			}
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No staging directories found")
				return nil
			}

			fmt.Fprintf(out, "Staging directory: %s\n\n", stagingDir)
			var totalSize int64
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				job := "-"
				if dir.JobID > 0 {
					job = strconv.FormatInt(dir.JobID, 10)
				}
				totalSize += dir.Size
				rows = append(rows, []string{
					dir.Name,
					job,
					formatDuration(time.Since(dir.ModTime).Truncate(time.Minute)),
					formatBytes(dir.Size),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Directory", "Job", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
				0,
			))
			fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), formatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale and orphaned staging directories",
		Long: `Remove wordglow work directories from the staging root.

Job directories whose queue entry no longer exists are always removed.
Any wordglow directory older than --max-age is removed as well. Directories
that wordglow did not create are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				jobs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				known := make(map[int64]struct{}, len(jobs))
				for _, job := range jobs {
					known[job.ID] = struct{}{}
				}

				orphaned := staging.CleanOrphaned(cmd.Context(), cfg.Paths.StagingDir, known, logger)
				printStagingCleanResult(cmd, orphaned, "orphaned")
				if maxAge > 0 {
					stale := staging.CleanStale(cmd.Context(), cfg.Paths.StagingDir, maxAge, logger)
					printStagingCleanResult(cmd, stale, "stale")
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", 72*time.Hour, "Also remove work directories older than this (0 disables)")
	return cmd
}

func printStagingCleanResult(cmd *cobra.Command, result staging.CleanResult, label string) {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintf(out, "No %s directories to clean\n", label)
		return
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d %s directories, %d errors\n", len(result.Removed), label, len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return
	}
	fmt.Fprintf(out, "Removed %d %s directories\n", len(result.Removed), label)
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
