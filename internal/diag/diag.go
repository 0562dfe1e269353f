// Package diag carries structured compiler diagnostics.
//
// Every stage reports failures as *Error values carrying the source file
// and a 1-based line/column, so the CLI can print rustc-style locations.
package diag

import (
	"fmt"
	"strings"
)

// Error is a terminal, whole-file compilation error.
type Error struct {
	File    string
	Line    int
	Col     int
	Message string
	// Help is an optional remediation hint rendered under the message.
	Help string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Message)
}

// Errorf builds an Error at the given location.
func Errorf(file string, line, col int, format string, args ...any) *Error {
	return &Error{File: file, Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
}

// Render formats the error the way the CLI prints it, including the help
// note when present.
func (e *Error) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\n  --> %s:%d:%d", e.Message, e.File, e.Line, e.Col)
	if e.Help != "" {
		b.WriteString("\n   |\n   = help: ")
		b.WriteString(e.Help)
	}
	return b.String()
}

// Warning is a non-fatal diagnostic attached to a compilation result.
type Warning struct {
	File    string
	Line    int
	Col     int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d:%d: warning: %s", w.File, w.Line, w.Col, w.Message)
}

// LineCol computes the 1-based line and column of a byte offset.
func LineCol(source string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(source) {
		offset = len(source)
	}
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
