package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// slashCommand is one of the commands typed into the input box
type slashCommand struct {
	name  string
	usage string
	desc  string
}

var slashCommands = []slashCommand{
	{"/clear", "/clear", "reset the conversation"},
	{"/export", "/export", "open the transcript in your mail client"},
	{"/copy", "/copy", "copy the transcript to the clipboard"},
	{"/save", "/save <file>", "write the transcript (.txt, .md or .json)"},
	{"/health", "/health", "check that the backend is up"},
	{"/suggest", "/suggest [n]", "list suggested questions, or ask number n"},
	{"/help", "/help", "show this list"},
	{"/exit", "/exit", "quit"},
}

// parseCommand splits "/name args..." into its lowercased name and the rest
func parseCommand(input string) (string, string) {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	return strings.ToLower(name), strings.TrimSpace(args)
}

// runCommand executes a slash command. Commands never append to the
// conversation except /suggest n, which submits like typed input.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	name, args := parseCommand(input)

	switch name {
	case "/exit", "/quit":
		return m, tea.Quit

	case "/clear":
		m.clearConversation()

	case "/export":
		m.exportMail()

	case "/copy":
		m.copyTranscript()

	case "/save":
		if args == "" {
			m.setNotice("Usage: /save <file>", true)
			break
		}
		m.saveTranscript(args)

	case "/health":
		m.setNotice("Checking backend health…", false)
		return m, m.checkHealth()

	case "/suggest":
		return m.suggest(args)

	case "/help":
		m.setNotice(helpText(), false)

	default:
		m.setNotice(fmt.Sprintf("Unknown command %s (try /help)", name), true)
	}

	return m, nil
}

// suggest lists the configured suggestions or submits the n-th one
func (m Model) suggest(args string) (tea.Model, tea.Cmd) {
	if len(m.suggestions) == 0 {
		m.setNotice("No suggestions configured (dixit config set suggestions \"a|b\")", true)
		return m, nil
	}

	if args == "" {
		lines := make([]string, 0, len(m.suggestions))
		for i, s := range m.suggestions {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, s))
		}
		m.setNotice(strings.Join(lines, "\n"), false)
		return m, nil
	}

	n, err := strconv.Atoi(args)
	if err != nil || n < 1 || n > len(m.suggestions) {
		m.setNotice(fmt.Sprintf("Pick a suggestion between 1 and %d", len(m.suggestions)), true)
		return m, nil
	}

	return m, m.submit(m.suggestions[n-1])
}

func helpText() string {
	lines := make([]string, 0, len(slashCommands))
	for _, c := range slashCommands {
		lines = append(lines, fmt.Sprintf("%-14s %s", c.usage, c.desc))
	}
	return strings.Join(lines, "\n")
}
