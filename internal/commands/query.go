package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dixit-research/dixit/internal/config"
	"github.com/dixit-research/dixit/internal/history"
	"github.com/dixit-research/dixit/internal/models"
	"github.com/dixit-research/dixit/internal/render"
	"github.com/dixit-research/dixit/internal/session"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorWarning  = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	sourcesStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorTextDim).
			BorderLeft(true).
			PaddingLeft(1).
			MarginLeft(1)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner writing to stderr
func newSpinner(message string) *spinner {
	return newSpinnerTo(os.Stderr, message)
}

func newSpinnerTo(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// exportOptions returns the transcript settings derived from cfg
func exportOptions(cfg config.Config) history.ExportOptions {
	opts := history.DefaultExportOptions()
	opts.BotName = cfg.DisplayBotName()
	return opts
}

// runQuery asks a single question and prints the answer. Output is decorated
// when stdout is a terminal and plain otherwise.
func runQuery(ctx context.Context, d *Dependencies, cfg config.Config, question, output string) error {
	question = models.NormalizeInput(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	log := newLogger(d.Stderr, cfg.Verbose)
	tty := d.StdoutIsTTY()

	client, err := d.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	log.Printf("Endpoint: %s (%s backend)", client.Endpoint(), client.Backend())

	ctrl := session.New(client,
		session.WithGreeting(cfg.Greeting),
		session.WithLogf(log.Printf),
	)

	var spin *spinner
	if tty {
		spin = newSpinnerTo(d.Stderr, "Searching the literature")
		spin.start()
	}

	outcome, err := ctrl.Ask(ctx, question)
	if outcome == session.OutcomeFailed && err == nil {
		err = ctrl.LastError()
	}
	if err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return fmt.Errorf("request failed: %w", err)
	}
	if spin != nil {
		spin.stopWithSuccess("Done")
	}

	answer := ctrl.Store().Last().Text
	sources := ctrl.Sources()

	if cfg.CopyToClipboard {
		if err := d.CopyToClipboard(answer); err != nil {
			fmt.Fprintln(d.Stderr, lipgloss.NewStyle().Foreground(colorWarning).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			))
		} else if tty {
			fmt.Fprintln(d.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	if output != "" {
		if err := writeExchange(output, ctrl, cfg); err != nil {
			return err
		}
		if tty {
			fmt.Fprintln(d.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Answer saved to %s", output),
			))
		}
		return nil
	}

	if !tty {
		fmt.Fprintln(d.Stdout, answer)
		if plain := render.SourcesPlain(sources); plain != "" {
			fmt.Fprintln(d.Stdout)
			fmt.Fprintln(d.Stdout, plain)
		}
		return nil
	}

	printDecorated(d.Stdout, cfg, answer, sources)
	return nil
}

// writeExchange saves the session in the format implied by the file extension.
// Plain text files get the answer followed by its sources.
func writeExchange(path string, ctrl *session.Controller, cfg config.Config) error {
	opts := exportOptions(cfg)
	opts.Format = history.FormatFromPath(path)

	var data []byte
	switch opts.Format {
	case history.ExportFormatText:
		text := ctrl.Store().Last().Text
		if plain := render.SourcesPlain(ctrl.Sources()); plain != "" {
			text += "\n\n" + plain
		}
		data = []byte(text + "\n")
	default:
		var err error
		data, err = history.Export(ctrl.Messages(), ctrl.Store().ID(), ctrl.Sources(), opts)
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// printDecorated renders the answer bubble and the source list for a terminal
func printDecorated(w io.Writer, cfg config.Config, answer string, sources []models.Source) {
	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	opts := render.FromConfig(cfg.Markdown).WithWidth(bubbleWidth - 4)

	fmt.Fprintln(w)
	fmt.Fprintln(w, assistantLabelStyle.Render("✦ "+cfg.DisplayBotName()))
	fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(render.Answer(answer, opts)))

	if md := render.SourcesMarkdown(sources); md != "" {
		fmt.Fprintln(w, sourcesStyle.Render(render.Answer(md, opts)))
	}
}
