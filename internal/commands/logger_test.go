package commands

import (
	"bytes"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, false).Printf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}

	newLogger(&buf, true).Printf("shown %d", 2)
	if buf.String() != "[verbose] shown 2\n" {
		t.Errorf("enabled logger wrote %q", buf.String())
	}

	var nilLogger *logger
	nilLogger.Printf("no panic")
}
