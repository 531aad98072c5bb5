// Package commands provides CLI commands for dixit.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dixit-research/dixit/internal/config"
	"github.com/dixit-research/dixit/internal/tui"
)

// globalFlags holds the persistent flags that override the config file
type globalFlags struct {
	endpoint string
	backend  string
	timeout  time.Duration
	verbose  bool
}

var (
	flags      globalFlags
	outputFlag string
	fileFlag   string

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// deps is swapped out by tests
var deps = NewDependencies()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dixit [question]",
	Short: "Terminal client for the DIXIT research assistant",
	Long: `dixit sends research questions to a DIXIT answering backend and shows
the synthesized answer together with the sources it cites.

Examples:
  dixit "What is quantum entanglement?"   Ask a single question
  dixit -f question.md                    Read the question from a file
  cat question.md | dixit                 Read the question from stdin
  dixit "RAG surveys" -o answer.md        Save the exchange to a file
  dixit chat                              Start an interactive session
  dixit health                            Check the backend
  dixit config set endpoint http://lab:8000`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			printVersion(deps.Stdout)
			return nil
		}

		question, ok, err := readQuestion(args, fileFlag, deps.Stdin, deps.StdinIsPipe())
		if err != nil {
			return err
		}
		if !ok {
			return cmd.Help()
		}

		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		return runQuery(cmd.Context(), deps, cfg, question, outputFlag)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.FormatError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.endpoint, "endpoint", "e", "", "Backend URL (default from config, http://localhost:8000)")
	rootCmd.PersistentFlags().StringVarP(&flags.backend, "backend", "b", "", "Backend contract: ask or chat")
	rootCmd.PersistentFlags().DurationVarP(&flags.timeout, "timeout", "t", 0, "Request timeout, e.g. 30s (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Print diagnostics to stderr")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the exchange to a file (.txt, .md or .json)")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the question from a file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// readQuestion picks the question from, in order, a file, piped stdin or
// the positional arguments. ok is false when no source supplied one.
func readQuestion(args []string, file string, stdin io.Reader, piped bool) (string, bool, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil

	case len(args) > 0:
		return strings.Join(args, " "), true, nil

	case piped:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", false, nil
}

// loadSettings reads the config file and applies the persistent flags
func loadSettings() (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, err
	}
	return applyFlags(cfg, flags)
}

// applyFlags overrides cfg with every flag that was set
func applyFlags(cfg config.Config, f globalFlags) (config.Config, error) {
	if f.endpoint != "" {
		cfg.Endpoint = f.endpoint
	}
	if f.backend != "" {
		cfg.Backend = f.backend
	}
	if f.timeout > 0 {
		cfg.TimeoutSeconds = int(f.timeout.Round(time.Second) / time.Second)
		if cfg.TimeoutSeconds == 0 {
			cfg.TimeoutSeconds = 1
		}
	}
	if f.verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
