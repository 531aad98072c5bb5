package commands

import (
	"io"
	"log"
)

// logger prints [verbose] diagnostics when enabled and nothing otherwise
type logger struct {
	out     *log.Logger
	enabled bool
}

func newLogger(w io.Writer, enabled bool) *logger {
	return &logger{
		out:     log.New(w, "[verbose] ", 0),
		enabled: enabled,
	}
}

// Printf logs one line
func (l *logger) Printf(format string, args ...any) {
	if l == nil || !l.enabled {
		return
	}
	l.out.Printf(format, args...)
}
