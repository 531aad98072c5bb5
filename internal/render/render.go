package render

import (
	"fmt"
	"strings"

	"github.com/dixit-research/dixit/internal/models"
)

// Markdown renders markdown content for terminal display.
// Uses a pooled renderer for better performance and thread safety.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth is a convenience function for rendering with specific width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// Answer renders a bot answer, returning the raw text if rendering fails.
func Answer(text string, opts Options) string {
	out, err := Markdown(text, opts)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// SourcesMarkdown formats a source list as a numbered markdown list.
// It returns "" for an empty list.
func SourcesMarkdown(sources []models.Source) string {
	if len(sources) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("**Sources**\n\n")
	for i, s := range sources {
		title := s.Title
		if title == "" {
			title = models.DefaultSourceName
		}
		if s.URL != "" {
			sb.WriteString(fmt.Sprintf("%d. [%s](%s)", i+1, title, s.URL))
		} else {
			sb.WriteString(fmt.Sprintf("%d. %s", i+1, title))
		}
		if s.Note != "" && s.URL != "" {
			sb.WriteString(" - ")
			sb.WriteString(s.Note)
		} else if s.Note != "" {
			sb.WriteString(": ")
			sb.WriteString(s.Note)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SourcesPlain formats a source list for non-terminal output, one per line.
func SourcesPlain(sources []models.Source) string {
	if len(sources) == 0 {
		return ""
	}

	lines := make([]string, 0, len(sources)+1)
	lines = append(lines, "Sources:")
	for i, s := range sources {
		line := fmt.Sprintf("  [%d] %s", i+1, s.Title)
		if link := s.Link(); link != "" {
			line += " <" + link + ">"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
