package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/lifesync/internal/model"
)

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		GroupID: "tasks",
		Short:   "Manage tasks on this device",
	}
	cmd.AddCommand(newTaskAddCmd(a), newTaskListCmd(a), newTaskDoneCmd(a), newTaskRmCmd(a), newTaskRemindCmd(a))
	return cmd
}

func newTaskAddCmd(a *app) *cobra.Command {
	var (
		description string
		priority    string
		deadline    string
		start       string
		tags        string
		public      bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePriority(priority)
			if err != nil {
				return err
			}
			task := model.Task{
				Title:    strings.Join(args, " "),
				Priority: p,
				Tags:     tags,
				IsPublic: public,
			}
			if description != "" {
				task.Description = &description
			}

			now := time.Now()
			if task.Deadline, err = parseWhen(deadline, now); err != nil {
				return fmt.Errorf("--deadline: %w", err)
			}
			if task.StartTime, err = parseWhen(start, now); err != nil {
				return fmt.Errorf("--start: %w", err)
			}

			saved, err := a.store.Put(cmd.Context(), task)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "desc", "d", "", "description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low, medium or high")
	cmd.Flags().StringVar(&deadline, "deadline", "", "RFC 3339 time or offset like +2h")
	cmd.Flags().StringVar(&start, "start", "", "RFC 3339 time or offset like +30m")
	cmd.Flags().StringVarP(&tags, "tags", "t", "", "free text tags")
	cmd.Flags().BoolVar(&public, "public", false, "show the task on the public feed")
	return cmd
}

func newTaskListCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDONE\tPRI\tPROGRESS\tDEADLINE\tTITLE")
			for _, t := range tasks {
				if t.IsCompleted && !all {
					continue
				}
				deadline := "-"
				if t.Deadline != nil {
					deadline = t.Deadline.Local().Format("2006-01-02 15:04")
				}
				done := " "
				if t.IsCompleted {
					done = "x"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%3.0f%%\t%s\t%s\n",
					t.ID, done, priorityName(t.Priority), t.Progress*100, deadline, t.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")
	return cmd
}

func newTaskDoneCmd(a *app) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			task.IsCompleted = !undo
			if task.IsCompleted {
				task.Progress = 1
			}
			if _, err := a.store.Put(cmd.Context(), task); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", task.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "reopen the task")
	return cmd
}

func newTaskRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task from this device",
		Long: `Remove a task from this device.

The server keeps its copy: deletions are not sent upstream.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newTaskRemindCmd(a *app) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "remind <id> [when]",
		Short: "Set a reminder kept only on this device",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var at *time.Time
			if !unset {
				if len(args) < 2 {
					return fmt.Errorf("missing reminder time")
				}
				var err error
				if at, err = parseWhen(args[1], time.Now()); err != nil {
					return err
				}
			}
			return a.store.SetReminder(cmd.Context(), args[0], at)
		},
	}
	cmd.Flags().BoolVar(&unset, "clear", false, "remove the reminder")
	return cmd
}

func parsePriority(s string) (model.Priority, error) {
	switch strings.ToLower(s) {
	case "low", "1":
		return model.PriorityLow, nil
	case "", "medium", "2":
		return model.PriorityMedium, nil
	case "high", "3":
		return model.PriorityHigh, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

func priorityName(p model.Priority) string {
	switch p {
	case model.PriorityLow:
		return "low"
	case model.PriorityHigh:
		return "high"
	case model.PriorityMedium:
		return "med"
	}
	return strconv.Itoa(int(p))
}

// parseWhen accepts an RFC 3339 timestamp or a +duration offset from now.
// An empty string yields nil.
func parseWhen(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "+") {
		d, err := time.ParseDuration(s[1:])
		if err != nil {
			return nil, err
		}
		t := now.Add(d).UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}
