package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nhle/task-tracker/internal/model"
	"github.com/nhle/task-tracker/internal/store"
)

func logCmd(e *env) *cobra.Command {
	var (
		limit  int
		today  bool
		taskID string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show time saved from this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := e.Journal()
			if err != nil {
				return err
			}

			filter := store.EntryFilter{TaskID: taskID, Limit: limit}
			if today {
				filter.Since = store.StartOfDay(time.Now())
			}
			entries, err := journal.GetEntries(cmd.Context(), filter)
			if err != nil {
				return err
			}
			filter.Limit = 0
			total, err := journal.TotalSeconds(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if e.jsonOut {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Saved", "Task", "Duration"})
			for _, en := range entries {
				title := en.TaskTitle
				if title == "" {
					title = en.TaskID
				}
				tw.AppendRow(table.Row{humanize.Time(en.SavedAt), title, model.FormatDuration(en.Seconds)})
			}
			tw.AppendFooter(table.Row{"Total", fmt.Sprintf("%d entries shown", len(entries)), model.FormatDuration(total)})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().BoolVar(&today, "today", false, "only entries saved today")
	cmd.Flags().StringVar(&taskID, "task", "", "only entries for this task")
	return cmd
}
