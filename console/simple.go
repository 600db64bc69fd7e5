package console

import (
	"io"
	"os"
	"strings"
)

// Simple is the plain console: it writes straight to a writer, stdout by
// default. Used when the gui is disabled and in tests.
type Simple struct {
	out         io.Writer
	currentLine int // counter to keep the position of the cursor
}

// NewSimple returns a pointer to the new stdout console:
func NewSimple() *Simple {
	return &Simple{out: os.Stdout}
}

// NewWriter returns a console writing to the supplied writer.
func NewWriter(w io.Writer) *Simple {
	return &Simple{out: w}
}

// WriteConsole displays a string on the console
func (c *Simple) WriteConsole(msg string) error {
	for _, line := range strings.Split(msg, "\n") {
		if line != "" {
			if _, err := io.WriteString(c.out, line+"\n"); err != nil {
				return err
			}
			c.currentLine++
		}
	}
	return nil
}
