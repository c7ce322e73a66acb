package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/lifesync/internal/model"
	"github.com/BuzzLyutic/lifesync/internal/worker"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		GroupID: "sync",
		Short:   "Publish or read the life status",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if !a.cfg.Configured() {
				return worker.ErrNotConfigured
			}
			return nil
		},
	}
	cmd.AddCommand(newStatusSetCmd(a), newStatusShowCmd(a))
	return cmd
}

func newStatusSetCmd(a *app) *cobra.Command {
	var (
		source string
		ttl    time.Duration
		meta   string
	)

	cmd := &cobra.Command{
		Use:   "set <status>",
		Short: "Publish a status observation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.StatusPublish{
				Source: source,
				Status: strings.Join(args, " "),
			}
			if ttl > 0 {
				now := time.Now().UTC()
				expires := now.Add(ttl)
				p.ObservedAt = &now
				p.ExpiresAt = &expires
			}
			if meta != "" {
				if !json.Valid([]byte(meta)) {
					return fmt.Errorf("--meta is not valid JSON")
				}
				p.Meta = json.RawMessage(meta)
			}

			src, err := a.remote().PublishStatus(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (until %s)\n",
				src.Source, src.Status, src.ExpiresAt.Local().Format(time.Kitchen))
			return nil
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", model.SourceManual, "status source name")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "how long the status stays live (server default when unset)")
	cmd.Flags().StringVar(&meta, "meta", "", "JSON object stored with the observation")
	return cmd
}

func newStatusShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current primary status and live sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := a.remote().Status(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", view.Primary.Status, view.Primary.Source)
			for _, s := range view.Sources {
				fmt.Fprintf(out, "  %-12s %-24s until %s\n", s.Source, s.Status, s.ExpiresAt.Local().Format(time.Kitchen))
			}
			return nil
		},
	}
}
