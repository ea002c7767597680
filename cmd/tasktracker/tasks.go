package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nhle/task-tracker/internal/model"
)

func tasksCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "tasks", Short: "Manage tasks"}
	cmd.AddCommand(tasksListCmd(e))
	cmd.AddCommand(tasksAddCmd(e))
	cmd.AddCommand(tasksEditCmd(e))
	cmd.AddCommand(tasksCompleteCmd(e, "done", true))
	cmd.AddCommand(tasksCompleteCmd(e, "undone", false))
	cmd.AddCommand(tasksRemoveCmd(e))
	return cmd
}

func tasksListCmd(e *env) *cobra.Command {
	var pending bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			if err := e.tasks.Fetch(cmd.Context()); err != nil {
				return err
			}

			items := e.tasks.Tasks()
			if pending {
				open := items[:0]
				for _, t := range items {
					if !t.Completed {
						open = append(open, t)
					}
				}
				items = open
			}

			if e.jsonOut {
				return printJSON(cmd.OutOrStdout(), items)
			}
			renderTasks(cmd.OutOrStdout(), items)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pending, "pending", false, "only tasks that are not completed")
	return cmd
}

func renderTasks(w io.Writer, items []model.Task) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Status", "Time Spent"})
	total := 0
	for _, t := range items {
		tw.AppendRow(table.Row{t.ID, t.Title, t.StatusLabel(), model.FormatDuration(t.TimeSpent.Int())})
		total += t.TimeSpent.Int()
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d tasks", len(items)), "", model.FormatDuration(total)})
	tw.Render()
}

func printTask(cmd *cobra.Command, e *env, verb string, t model.Task) error {
	if e.jsonOut {
		return printJSON(cmd.OutOrStdout(), t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s task %s: %s\n", verb, t.ID, t.Title)
	return nil
}

func tasksAddCmd(e *env) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			t, err := e.tasks.Create(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			return printTask(cmd, e, "Created", t)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func tasksEditCmd(e *env) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to change: pass --title or --description")
			}

			if err := e.open(); err != nil {
				return err
			}
			t, err := e.tasks.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printTask(cmd, e, "Updated", t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func tasksCompleteCmd(e *env, use string, completed bool) *cobra.Command {
	short := "Mark a task as completed"
	if !completed {
		short = "Mark a task as in progress"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			t, err := e.tasks.Update(cmd.Context(), args[0], model.TaskPatch{Completed: &completed})
			if err != nil {
				return err
			}
			return printTask(cmd, e, "Updated", t)
		},
	}
}

func tasksRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its local tracking history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			id := args[0]
			if err := e.tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			if journal, err := e.Journal(); err == nil {
				if err := journal.DeleteEntriesForTask(cmd.Context(), id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", id)
			return nil
		},
	}
}
