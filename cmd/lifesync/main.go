package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/config"
	"github.com/BuzzLyutic/lifesync/internal/localstore"
	"github.com/BuzzLyutic/lifesync/internal/remote"
	"github.com/BuzzLyutic/lifesync/internal/syncer"
	"github.com/BuzzLyutic/lifesync/internal/worker"
)

// app holds what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	configPath string

	cfg    config.ClientConfig
	logger *zap.Logger
	store  *localstore.Store
}

func (a *app) remote() *remote.Client {
	return remote.New(remote.Config{
		BaseURL:     a.cfg.Server.URL,
		ClientToken: a.cfg.Server.ClientToken,
		Password:    a.cfg.Server.Password,
		Timeout:     a.cfg.Server.Timeout,
	})
}

func (a *app) scheduler() *worker.Scheduler {
	engine := syncer.NewEngine(a.store, a.remote(), a.logger)
	metered := a.cfg.Network.Metered
	return worker.NewScheduler(engine, worker.Policy{
		Enabled:        a.cfg.Sync.Enabled,
		Configured:     a.cfg.Configured(),
		WifiOnly:       a.cfg.Sync.WifiOnly,
		Metered:        func() bool { return metered },
		Interval:       a.cfg.Sync.Interval,
		MaxAttempts:    a.cfg.Sync.MaxAttempts,
		InitialBackoff: a.cfg.Sync.InitialBackoff,
		MaxBackoff:     a.cfg.Sync.MaxBackoff,
	}, a.logger)
}

// close releases what PersistentPreRunE opened. It runs whether or not
// the command failed.
func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "lifesync",
		Short:         "Offline-first task list that syncs with a lifesync server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			a.logger, err = newLogger(cfg.Log)
			if err != nil {
				return err
			}

			a.store, err = localstore.Open(cfg.Store.Path)
			if err != nil {
				return fmt.Errorf("open local store: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ./lifesync.yaml)")

	root.AddGroup(
		&cobra.Group{ID: "tasks", Title: "Tasks:"},
		&cobra.Group{ID: "sync", Title: "Sync:"},
	)
	root.AddCommand(newTaskCmd(a), newSyncCmd(a), newDaemonCmd(a), newStatusCmd(a))
	return root, a
}

func run(args []string) error {
	root, a := newRootCmd()
	defer a.close()

	root.SetArgs(args)
	return root.Execute()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
