package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nhle/task-tracker/internal/model"
)

func configCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Inspect or change configuration"}
	cmd.AddCommand(configShowCmd(e))
	cmd.AddCommand(configSetURLCmd(e))
	return cmd
}

func configShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.jsonOut {
				return printJSON(cmd.OutOrStdout(), e.cfg)
			}
			b, err := yaml.Marshal(e.cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", e.configPath, b)
			return nil
		},
	}
}

func configSetURLCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-url <url>",
		Short: "Set the API base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := normalizeBaseURL(args[0])
			if err != nil {
				return err
			}

			// Reload without the --api-url binding so the flag is not persisted.
			cfg, err := model.LoadConfigFrom(model.NewViper(e.configPath))
			if err != nil {
				return err
			}
			cfg.API.BaseURL = raw
			if err := model.SaveConfig(e.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API URL set to %s\n", raw)
			return nil
		},
	}
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return raw, nil
}
