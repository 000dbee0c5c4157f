package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ekwe/internal/issued"
	"ekwe/internal/reconcile"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Open one tracking issue per word still missing audio",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			env, err := newRunEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.release()

			if limit > 0 {
				env.cfg.Reconcile.MaxCreations = limit
			}

			cache, err := issued.Open(env.cfg.IssuedDBPath())
			if err != nil {
				return fmt.Errorf("open issued cache: %w", err)
			}
			defer cache.Close()

			r, err := reconcile.New(env.cfg, env.entries, env.client, cache, env.logger, dryRun)
			if err != nil {
				return err
			}
			sum, err := r.Run(env.annotate(signalCtx))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Missing audio: %d\n", sum.Missing)
			fmt.Fprintf(out, "Issues created: %d\n", sum.Created)
			fmt.Fprintf(out, "Issues reused: %d\n", sum.Reused)
			fmt.Fprintf(out, "Cache skips: %d\n", sum.CachedSkips)
			fmt.Fprintf(out, "Duplicates removed: %d\n", sum.DuplicatesRemoved)
			if sum.Failures > 0 {
				fmt.Fprintf(out, "Failures (left for next run): %d\n", sum.Failures)
			}
			if sum.Aborted {
				fmt.Fprintln(out, "Pass ended early after sustained rate limiting; progress so far is recorded.")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Cap on issues created this run (overrides max_creations)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended actions without touching the tracker")
	return cmd
}
