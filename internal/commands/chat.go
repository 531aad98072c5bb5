package commands

import (
	"fmt"
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dixit-research/dixit/internal/config"
	"github.com/dixit-research/dixit/internal/render"
	"github.com/dixit-research/dixit/internal/session"
	"github.com/dixit-research/dixit/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive research session",
	Long: `Start an interactive session with the DIXIT research assistant.

The conversation is kept locally and resets with Ctrl+L or /clear.
Type /help for the slash commands, Ctrl+C or Esc to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		return runChat(deps, cfg)
	},
}

func runChat(d *Dependencies, cfg config.Config) error {
	client, err := d.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	var logf func(format string, args ...any)
	if cfg.Verbose {
		// The alt screen owns the terminal, so diagnostics go to a file
		closeLog, path, err := openDebugLog()
		if err != nil {
			return err
		}
		defer closeLog()
		logf = log.Printf
		logf("chat started against %s (%s backend)", client.Endpoint(), client.Backend())
		fmt.Fprintf(d.Stderr, "Writing diagnostics to %s\n", path)
	}

	ctrl := session.New(client,
		session.WithGreeting(cfg.Greeting),
		session.WithLogf(logf),
	)

	return d.RunChat(tui.Options{
		Controller:  ctrl,
		Health:      client,
		Suggestions: cfg.Suggestions,
		Export:      exportOptions(cfg),
		Render:      render.FromConfig(cfg.Markdown),
		Theme:       cfg.TUITheme,
	})
}

// openDebugLog points the standard logger at debug.log in the config dir
func openDebugLog() (func(), string, error) {
	dir, err := config.EnsureConfigDir()
	if err != nil {
		return nil, "", err
	}
	path := filepath.Join(dir, "debug.log")
	f, err := tea.LogToFile(path, "dixit")
	if err != nil {
		return nil, "", fmt.Errorf("failed to open debug log: %w", err)
	}
	return func() { f.Close() }, path, nil
}
