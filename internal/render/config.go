package render

import (
	"os"

	"github.com/dixit-research/dixit/internal/config"
)

// FromConfig builds render options from the markdown section of the user config.
// GLAMOUR_STYLE in the environment wins over the configured style.
func FromConfig(md config.MarkdownConfig) Options {
	opts := DefaultOptions()

	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}

	return opts
}

// LoadOptionsFromConfig loads render options from the config file on disk,
// falling back to defaults when it cannot be read.
func LoadOptionsFromConfig() Options {
	cfg, err := config.LoadConfig()
	if err != nil {
		return FromConfig(config.DefaultMarkdownConfig())
	}
	return FromConfig(cfg.Markdown)
}
