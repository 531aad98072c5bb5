package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/dixit-research/dixit/internal/config"
	"github.com/dixit-research/dixit/internal/render"
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change the settings stored in ~/.dixit/config.json.

Flags such as --endpoint override the file for a single run; use
"dixit config set" to make a change permanent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(deps)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return showConfig(deps)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(deps.Stdout, path)
				return nil
			},
		},
		newConfigInitCmd(),
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a single setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return getConfigValue(deps, args[0])
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting and save it",
			Long: "Change a setting and save it.\n\nKeys: " + strings.Join(config.Keys(), ", ") +
				"\n\nSuggestions are separated with |, e.g.\n  dixit config set suggestions \"What is RAG?|Explain BERT\"",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return setConfigValue(deps, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "themes",
			Short: "List the interface and markdown themes",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				listThemes(deps)
			},
		},
	)

	return cmd
}

var configCmd = NewConfigCmd()

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(deps, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

// showConfig prints the effective settings, flags included
func showConfig(d *Dependencies) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(d.Stdout, colorizeJSON(d, data))
	return nil
}

// getConfigValue prints the value stored under key, using the same dotted
// names as "config set"
func getConfigValue(d *Dependencies, key string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if !isConfigKey(key) {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(config.Keys(), ", "))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	value := gjson.GetBytes(data, key)
	if value.IsArray() {
		var parts []string
		for _, item := range value.Array() {
			parts = append(parts, item.String())
		}
		fmt.Fprintln(d.Stdout, strings.Join(parts, "|"))
		return nil
	}
	fmt.Fprintln(d.Stdout, value.String())
	return nil
}

func isConfigKey(key string) bool {
	for _, k := range config.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// setConfigValue updates one key in the stored config. Flags are not applied
// so a one-off --endpoint never leaks into the file.
func setConfigValue(d *Dependencies, key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(d.Stdout, "%s updated\n", key)
	return nil
}

// initConfig writes the defaults, refusing to clobber an existing file
func initConfig(d *Dependencies, force bool) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.SaveConfig(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(d.Stdout, "Wrote default settings to %s\n", path)
	return nil
}

func listThemes(d *Dependencies) {
	fmt.Fprintln(d.Stdout, "Interface themes (tui_theme):")
	for _, name := range render.TUIThemeNames() {
		fmt.Fprintf(d.Stdout, "  %s\n", name)
	}
	fmt.Fprintln(d.Stdout, "\nMarkdown styles (markdown.style):")
	for _, theme := range render.AvailableThemes() {
		fmt.Fprintf(d.Stdout, "  %-12s %s\n", theme.Name, theme.Description)
	}
}

// colorizeJSON pretty-prints JSON, adding color on a terminal. Anything that
// is not JSON is returned unchanged.
func colorizeJSON(d *Dependencies, data []byte) string {
	if !gjson.ValidBytes(data) {
		return strings.TrimRight(string(data), "\n")
	}
	out := pretty.Pretty(data)
	if d.StdoutIsTTY() {
		out = pretty.Color(out, nil)
	}
	return strings.TrimRight(string(out), "\n")
}
