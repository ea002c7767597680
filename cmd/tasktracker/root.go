package main

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/task-tracker/internal/app"
	"github.com/nhle/task-tracker/internal/model"
)

const debugLogFile = "tasktracker-debug.log"

// newRootCmd builds the command tree. Without a subcommand it starts the
// terminal UI.
func newRootCmd(e *env) *cobra.Command {
	var (
		configPath string
		apiURL     string
		debug      bool
		jsonOut    bool
	)

	root := &cobra.Command{
		Use:   "tasktracker",
		Short: "Track time on your tasks from the terminal",
		Long: `tasktracker is a client for the task and time-tracking API.
Run it without arguments for the interactive dashboard, or use the
subcommands for scripting.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !debug {
				log.SetOutput(io.Discard)
			}

			v := model.NewViper(configPath)
			if err := v.BindPFlag("api.base_url", cmd.Flags().Lookup("api-url")); err != nil {
				return err
			}
			cfg, err := model.LoadConfigFrom(v)
			if err != nil {
				return err
			}
			e.configPath = configPath
			e.cfg = cfg
			e.jsonOut = jsonOut
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, e, debug)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", model.DefaultConfigPath(), "config file")
	flags.StringVar(&apiURL, "api-url", "", "API base URL (overrides config)")
	flags.BoolVar(&debug, "debug", false, "write debug logs")
	flags.BoolVar(&jsonOut, "json", false, "output JSON")

	root.AddCommand(loginCmd(e))
	root.AddCommand(registerCmd(e))
	root.AddCommand(logoutCmd(e))
	root.AddCommand(whoamiCmd(e))
	root.AddCommand(tasksCmd(e))
	root.AddCommand(trackCmd(e))
	root.AddCommand(logCmd(e))
	root.AddCommand(configCmd(e))

	return root
}

func runTUI(cmd *cobra.Command, e *env, debug bool) error {
	if debug {
		f, err := tea.LogToFile(debugLogFile, "debug")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer f.Close()
	}

	if err := e.open(); err != nil {
		return err
	}
	deps := app.Deps{
		Session: e.session,
		Tasks:   e.tasks,
	}
	// The dashboard works without the journal; it only loses history.
	if journal, err := e.Journal(); err != nil {
		log.Printf("journal unavailable: %v", err)
	} else {
		deps.Journal = journal
	}

	p := tea.NewProgram(app.New(deps), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
