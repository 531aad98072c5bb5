package commands

import (
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/dixit-research/dixit/internal/api"
	"github.com/dixit-research/dixit/internal/config"
	"github.com/dixit-research/dixit/internal/tui"
)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the backend client for the effective config
	NewClient func(cfg config.Config) (api.BackendClient, error)

	// RunChat starts the interactive interface
	RunChat func(opts tui.Options) error

	CopyToClipboard func(text string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdoutIsTTY selects decorated output over plain text
	StdoutIsTTY func() bool
	// StdinIsPipe reports whether a question is being piped in
	StdinIsPipe func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:       newBackendClient,
		RunChat:         tui.RunChat,
		CopyToClipboard: clipboard.WriteAll,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		StdoutIsTTY: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
		StdinIsPipe: func() bool {
			stat, err := os.Stdin.Stat()
			return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
		},
	}
}

// newBackendClient creates the production HTTP client from cfg
func newBackendClient(cfg config.Config) (api.BackendClient, error) {
	opts := []api.ClientOption{
		api.WithBackend(cfg.BackendKind()),
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
		api.WithUserAgent("dixit-cli/" + Version),
	}
	if cfg.HealthEndpoint != "" {
		opts = append(opts, api.WithHealthEndpoint(cfg.HealthEndpoint))
	}
	return api.NewClient(cfg.Endpoint, opts...)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
