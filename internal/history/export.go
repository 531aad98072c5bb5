package history

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dixit-research/dixit/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatText     ExportFormat = "text"
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format      ExportFormat
	Title       string // Transcript header line
	BotName     string // Label for bot messages
	UserName    string // Label for user messages
	SourcesLine string // Optional line naming the corpora behind the answers
	Subject     string // Mail subject
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:      ExportFormatText,
		Title:       "Research history — DIXIT BOT",
		BotName:     models.DefaultBotName,
		UserName:    models.DefaultUserName,
		SourcesLine: "Sources: arXiv + Semantic Scholar",
		Subject:     "DIXIT BOT — Research history",
	}
}

// ParseExportFormat converts a flag value into an ExportFormat
func ParseExportFormat(name string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return ExportFormatText, nil
	case "markdown", "md":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (expected text, markdown or json)", name)
	}
}

// FormatFromPath guesses the export format from a file extension
func FormatFromPath(path string) ExportFormat {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".json"):
		return ExportFormatJSON
	case strings.HasSuffix(strings.ToLower(path), ".md"):
		return ExportFormatMarkdown
	default:
		return ExportFormatText
	}
}

func (o ExportOptions) label(role models.Role) string {
	if role == models.RoleUser {
		if o.UserName != "" {
			return o.UserName
		}
		return models.DefaultUserName
	}
	if o.BotName != "" {
		return o.BotName
	}
	return models.DefaultBotName
}

// Transcript renders messages as the plain-text body used for mail export
func Transcript(msgs []models.Message, opts ExportOptions) string {
	lines := []string{opts.Title, ""}
	if opts.SourcesLine != "" {
		lines = append(lines, opts.SourcesLine, "")
	}
	lines = append(lines, "— Conversation —", "")

	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", opts.label(m.Role), m.Text), "")
	}

	lines = append(lines, "— End —")
	return strings.Join(lines, "\n")
}

// MailtoURL builds a mailto link with the subject and body encoded the way
// browsers expect (spaces as %20, not +).
func MailtoURL(subject, body string) string {
	return fmt.Sprintf("mailto:?subject=%s&body=%s", encodeURIComponent(subject), encodeURIComponent(body))
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( )
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	).Replace(escaped)
}

// ExportMarkdown exports a conversation to Markdown format
func ExportMarkdown(msgs []models.Message, sessionID string, opts ExportOptions) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(opts.Title)
	sb.WriteString("\n\n")

	if sessionID != "" {
		sb.WriteString("**Session:** ")
		sb.WriteString(sessionID)
		sb.WriteString("\n")
	}
	sb.WriteString("**Messages:** ")
	sb.WriteString(fmt.Sprintf("%d", len(msgs)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range msgs {
		sb.WriteString("## ")
		sb.WriteString(opts.label(msg.Role))
		if !msg.Timestamp.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.Timestamp.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// ExportJSON exports a conversation to JSON format
func ExportJSON(msgs []models.Message, sessionID string, sources []models.Source) ([]byte, error) {
	type exportConversation struct {
		ID         string           `json:"id,omitempty"`
		ExportedAt time.Time        `json:"exported_at"`
		Messages   []models.Message `json:"messages"`
		Sources    []models.Source  `json:"sources"`
	}

	export := exportConversation{
		ID:         sessionID,
		ExportedAt: time.Now(),
		Messages:   msgs,
		Sources:    models.CopySources(sources),
	}
	if export.Messages == nil {
		export.Messages = []models.Message{}
	}

	return json.MarshalIndent(export, "", "  ")
}

// Export renders msgs in the format selected by opts
func Export(msgs []models.Message, sessionID string, sources []models.Source, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return ExportJSON(msgs, sessionID, sources)
	case ExportFormatMarkdown:
		return []byte(ExportMarkdown(msgs, sessionID, opts)), nil
	default:
		return []byte(Transcript(msgs, opts)), nil
	}
}
