package main

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"wordglow/internal/config"
	"wordglow/internal/daemonrun"
	"wordglow/internal/notifications"
	"wordglow/internal/queue"
	"wordglow/internal/stageexec"
)

func newQueueRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run [id]",
		Short: "Process one job in the foreground (the oldest waiting job when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if len(args) == 1 {
				parsed, err := parseJobID(args[0])
				if err != nil {
					return err
				}
				id = parsed
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				lock := flock.New(cfg.LockPath())
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire lock: %w", err)
				}
				if !ok {
					return errors.New("the wordglow daemon is running; let it process the queue or stop it first")
				}
				defer func() { _ = lock.Unlock() }()

				var job *queue.Job
				if id > 0 {
					job, err = store.GetByID(cmd.Context(), id)
				} else {
					job, err = store.NextPending(cmd.Context())
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if job == nil {
					if id > 0 {
						return fmt.Errorf("job %d not found", id)
					}
					fmt.Fprintln(out, "No jobs waiting")
					return nil
				}
				if job.Status != queue.StatusPending && job.Status != queue.StatusTranscribed {
					return fmt.Errorf("job %d is %s; use `wordglow queue retry %d` first", job.ID, job.Status, job.ID)
				}

				stages, err := daemonrun.Stages(cfg, store, logger)
				if err != nil {
					return err
				}
				runErr := stageexec.RunSteps(cmd.Context(), stageexec.Options{
					Logger:   logger,
					Store:    store,
					Notifier: notifications.NewService(cfg),
					Job:      job,
				}, stages.Steps())

				fmt.Fprintln(out, renderStatusLine(fmt.Sprintf("Job #%d", job.ID), statusKindForJob(job.Status), progressText(job), shouldColorize(out)))
				return runErr
			})
		},
	}
}
