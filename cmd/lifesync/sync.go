package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		GroupID: "sync",
		Short:   "Sync tasks with the server now",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.scheduler().TriggerManual(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync failed, local edits kept: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced: pushed %d, pulled %d, applied %d\n", res.Pushed, res.Pulled, res.Applied)
			return nil
		},
	}
}

func newDaemonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "daemon",
		GroupID: "sync",
		Short:   "Sync in the background until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if !a.cfg.Configured() {
				a.logger.Warn("server url or credentials missing, background sync will stay idle")
			}

			sched := a.scheduler()
			sched.Start(ctx)

			<-ctx.Done()
			a.logger.Info("Shutting down...")
			sched.Stop()
			return nil
		},
	}
}
