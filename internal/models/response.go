package models

// Source is a display-only citation attached to a bot answer
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Link returns the URL when present, otherwise the note
func (s Source) Link() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Note
}

// Answer is the canonical form of a backend reply
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
	// Field is the payload key the answer was read from
	Field string `json:"-"`
}

// HasSources reports whether the answer carries any citations
func (a *Answer) HasSources() bool {
	return a != nil && len(a.Sources) > 0
}

// CopySources returns a copy of the source list that callers may modify
func CopySources(sources []Source) []Source {
	if len(sources) == 0 {
		return []Source{}
	}
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}
