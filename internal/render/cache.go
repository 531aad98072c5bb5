package render

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// maxIdle bounds the idle renderers kept per configuration
const maxIdle = 4

// rendererPool keeps idle glamour renderers keyed by the options that built
// them. A TermRenderer must not render concurrently, so each caller takes
// one out and hands it back when done.
type rendererPool struct {
	mu      sync.Mutex
	idle    map[Options][]*glamour.TermRenderer
	created int
}

var globalPool = newRendererPool()

func newRendererPool() *rendererPool {
	return &rendererPool{idle: make(map[Options][]*glamour.TermRenderer)}
}

// get returns an idle renderer for opts or builds a new one
func (p *rendererPool) get(opts Options) (*glamour.TermRenderer, error) {
	p.mu.Lock()
	if list := p.idle[opts]; len(list) > 0 {
		r := list[len(list)-1]
		p.idle[opts] = list[:len(list)-1]
		p.mu.Unlock()
		return r, nil
	}
	p.mu.Unlock()

	r, err := createRenderer(opts)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.created++
	if _, ok := p.idle[opts]; !ok {
		p.idle[opts] = nil
	}
	p.mu.Unlock()
	return r, nil
}

// put hands r back for reuse. Renderers beyond maxIdle are dropped.
func (p *rendererPool) put(opts Options, r *glamour.TermRenderer) {
	if r == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle[opts]) < maxIdle {
		p.idle[opts] = append(p.idle[opts], r)
	}
}

// stats reports the configurations seen and the renderers built so far
func (p *rendererPool) stats() (configs, created int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), p.created
}

// styleOption resolves a style name: the custom themes first, then glamour's
// standard styles, then a JSON style file on disk
func styleOption(style string) (glamour.TermRendererOption, error) {
	if cfg, ok := builtinStyle(style); ok {
		return glamour.WithStyles(cfg), nil
	}
	if _, ok := styles.DefaultStyles[style]; ok {
		return glamour.WithStandardStyle(style), nil
	}
	if _, err := os.Stat(style); err != nil {
		return nil, fmt.Errorf("unknown markdown style %q: not a theme name or a readable file", style)
	}
	return glamour.WithStylePath(style), nil
}

// createRenderer builds a TermRenderer for opts
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	style, err := styleOption(opts.Style)
	if err != nil {
		return nil, err
	}

	rendererOpts := []glamour.TermRendererOption{
		style,
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
		glamour.WithInlineTableLinks(opts.InlineTableLinks),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}

	return glamour.NewTermRenderer(rendererOpts...)
}

// ClearCache drops every pooled renderer.
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.idle = make(map[Options][]*glamour.TermRenderer)
	globalPool.created = 0
	globalPool.mu.Unlock()
}

// CacheSize returns the number of renderer configurations seen since the
// last ClearCache.
func CacheSize() int {
	configs, _ := globalPool.stats()
	return configs
}
