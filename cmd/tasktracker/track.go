package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/stopwatch"
)

func trackCmd(e *env) *cobra.Command {
	var limit time.Duration
	cmd := &cobra.Command{
		Use:   "track <task-id>",
		Short: "Run the stopwatch on a task until interrupted, then save the time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}
			return trackTask(ctx, e, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&limit, "for", 0, "stop automatically after this long")
	return cmd
}

// trackTask ticks until ctx is done and then saves the elapsed seconds.
// The save uses its own deadline so an interrupt does not abort it.
func trackTask(ctx context.Context, e *env, taskID string, w io.Writer, opts ...stopwatch.Option) error {
	snap, err := e.requireSession(ctx)
	if err != nil {
		return err
	}
	if err := e.tasks.Fetch(ctx); err != nil {
		return err
	}
	task, ok := e.tasks.Task(taskID)
	if !ok {
		return fmt.Errorf("task %s not found", taskID)
	}

	journal, err := e.Journal()
	if err != nil {
		log.Printf("journal unavailable: %v", err)
	}

	base := []stopwatch.Option{
		stopwatch.WithOnTick(func(elapsed int) {
			fmt.Fprintf(w, "\r%s  %s", model.FormatClock(elapsed), task.Title)
		}),
		stopwatch.WithOnSaved(func(saved model.Task, seconds int) {
			if journal == nil {
				return
			}
			entry := model.TrackedEntry{TaskID: saved.ID, TaskTitle: saved.Title, Seconds: seconds}
			if snap.User != nil {
				entry.UserID = snap.User.ID
			}
			if _, err := journal.RecordEntry(context.Background(), entry); err != nil {
				log.Printf("recording entry: %v", err)
			}
		}),
	}
	sw := stopwatch.New(e.tasks, append(base, opts...)...)
	defer sw.Close()

	if err := sw.Select(task.ID); err != nil {
		return err
	}
	if err := sw.Start(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Tracking %q, press Ctrl+C to stop and save\n", task.Title)

	<-ctx.Done()

	saveCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(e.cfg.API.TimeoutSec)*time.Second)
	defer cancel()

	saved, err := sw.Stop(saveCtx)
	fmt.Fprintln(w)
	if err != nil {
		return fmt.Errorf("%d seconds were not saved: %w", sw.Elapsed(), err)
	}
	if saved.ID == "" {
		fmt.Fprintln(w, "Nothing to save")
		return nil
	}
	fmt.Fprintf(w, "Saved to %q, total %s\n", saved.Title, model.FormatDuration(saved.TimeSpent.Int()))
	return nil
}
