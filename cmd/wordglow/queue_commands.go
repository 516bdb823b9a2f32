package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wordglow/internal/config"
	"wordglow/internal/fileutil"
	"wordglow/internal/pipeline"
	"wordglow/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the work queue",
	}

	queueCmd.AddCommand(newQueueAddCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))
	queueCmd.AddCommand(newQueueRunCommand(ctx))

	return queueCmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var saveJSON bool
	var force bool

	cmd := &cobra.Command{
		Use:   "add <audio>...",
		Short: "Queue audio files for captioning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath != "" && len(args) > 1 {
				return errors.New("--output can only be used with a single audio file")
			}
			output, err := resolveOutput(outputPath)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, arg := range args {
					audio, err := resolveAudio(arg)
					if err != nil {
						return err
					}
					fingerprint, err := fileutil.Fingerprint(audio)
					if err != nil {
						return fmt.Errorf("fingerprint %s: %w", audio, err)
					}
					if !force {
						existing, err := store.FindByFingerprint(cmd.Context(), fingerprint)
						if err != nil {
							return err
						}
						if existing != nil {
							fmt.Fprintf(out, "Skipped %s: already queued as job #%d (%s)\n", filepath.Base(audio), existing.ID, existing.Status)
							continue
						}
					}

					target := output
					if target == "" {
						target = pipeline.DefaultOutputPath(cfg.Paths.OutputDir, audio)
					}
					job, err := store.NewJob(cmd.Context(), queue.JobRequest{
						AudioPath:   audio,
						OutputPath:  target,
						Engine:      cfg.Transcription.Engine,
						Language:    cfg.Transcription.Language,
						Fingerprint: fingerprint,
						SaveJSON:    saveJSON || cfg.Captions.SaveJSON,
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Queued job #%d (%s)\n", job.ID, filepath.Base(audio))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Subtitle path for a single queued file")
	cmd.Flags().BoolVar(&saveJSON, "save-json", false, "Also write the word-level transcript next to the subtitle")
	cmd.Flags().BoolVar(&force, "force", false, "Queue even when the same audio is already in the queue")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(listStatuses)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				jobs, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Audio", "Status", "Progress", "Cues", "Updated"},
					buildQueueListRows(jobs),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
					48,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStatuses, "status", "s", nil, "Filter by queue status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of a queue job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				job, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %d not found", id)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(fmt.Sprintf("Job #%d", job.ID), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Status", statusKindForJob(job.Status), string(job.Status), colorize))
				for _, field := range jobDetailFields(job) {
					fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth, field[0]+":", field[1])
				}
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Return failed and review jobs to pending (all of them when no id is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseJobIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				updated, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				if updated == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No failed jobs to retry")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retrying %d job(s)\n", updated)
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Delete jobs from the queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseJobIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					job, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if job == nil {
						fmt.Fprintf(out, "Job %d not found\n", id)
						continue
					}
					if job.IsProcessing() {
						fmt.Fprintf(out, "Job %d is %s; stop the daemon before removing it\n", id, job.Status)
						continue
					}
					if _, err := store.Remove(cmd.Context(), id); err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed job %d\n", id)
				}
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var clearAll bool
	var clearFailed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed jobs (or failed jobs, or everything)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll && clearFailed {
				return errors.New("--all and --failed are mutually exclusive")
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				var (
					removed int64
					err     error
					label   string
				)
				switch {
				case clearAll:
					removed, err = store.Clear(cmd.Context())
					label = "job(s)"
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
					label = "failed job(s)"
				default:
					removed, err = store.ClearCompleted(cmd.Context())
					label = "completed job(s)"
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every job")
	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove failed and review jobs")
	return cmd
}

func parseJobID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid job id %q", value)
	}
	return id, nil
}

func parseJobIDs(values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := parseJobID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseStatuses(values []string) ([]queue.Status, error) {
	var statuses []queue.Status
	for _, v := range values {
		status, ok := queue.ParseStatus(v)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", v)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
