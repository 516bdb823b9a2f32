package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"wordglow/internal/config"
	"wordglow/internal/deps"
	"wordglow/internal/preflight"
	"wordglow/internal/queue"
)

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the queue database, directories and external dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				var failures int

				for _, line := range renderSectionHeader("Queue database", colorize) {
					fmt.Fprintln(out, line)
				}
				db, dbErr := store.CheckHealth(cmd.Context())
				fmt.Fprintf(out, "Database path: %s\n", db.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(db.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(db.DatabaseReadable))
				if db.DatabaseReadable {
					fmt.Fprintf(out, "Schema version: %d\n", db.SchemaVersion)
				}
				fmt.Fprintf(out, "queue_jobs table present: %s\n", yesNo(db.TableExists))
				if len(db.MissingColumns) > 0 {
					missing := append([]string(nil), db.MissingColumns...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
					failures++
				} else {
					fmt.Fprintln(out, "Missing columns: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(db.IntegrityCheck))
				if dbErr != nil {
					fmt.Fprintf(out, "Error: %v\n", dbErr)
					failures++
				}
				if summary, err := store.Health(cmd.Context()); err == nil {
					fmt.Fprintf(out, "Jobs: %s\n", formatQueueStats(summary))
				}

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				results := preflight.RunAll(cmd.Context(), cfg)
				failures += len(preflight.Failed(results))
				for _, line := range preflightLines(results, colorize) {
					fmt.Fprintln(out, line)
				}

				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(out, line)
				}
				statuses := preflight.CheckSystemDeps(cfg)
				failures += len(deps.MissingRequired(statuses))
				for _, line := range dependencyLines(statuses, colorize) {
					fmt.Fprintln(out, line)
				}

				if failures > 0 {
					return fmt.Errorf("%d health check(s) failed", failures)
				}
				return nil
			})
		},
	}
}
