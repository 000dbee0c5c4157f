package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ekwe/internal/assets"
	"ekwe/internal/harvest"
)

func newHarvestCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Collect uploaded recordings from resolved issues into the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			env, err := newRunEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.release()

			store, err := assets.NewStore(env.cfg.Paths.AudioDir)
			if err != nil {
				return err
			}

			h, err := harvest.New(env.cfg, env.entries, env.client, store, env.logger, dryRun)
			if err != nil {
				return err
			}
			sum, err := h.Run(env.annotate(signalCtx))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Issues scanned: %d\n", sum.IssuesScanned)
			fmt.Fprintf(out, "Entries resolved: %d\n", sum.Updated)
			if sum.AlreadyStored > 0 {
				fmt.Fprintf(out, "Linked to existing assets: %d\n", sum.AlreadyStored)
			}
			if sum.Failures > 0 {
				fmt.Fprintf(out, "Failures (left for next run): %d\n", sum.Failures)
			}
			if sum.DatasetChanged {
				fmt.Fprintf(out, "Dataset updated: %s\n", env.cfg.Paths.DatasetFile)
			} else {
				fmt.Fprintln(out, "Dataset unchanged")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log intended actions without writing assets or the dataset")
	return cmd
}
