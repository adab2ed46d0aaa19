// Package script accumulates the text of the generated script and owns the
// naming rules for script variables.
package script

import (
	"fmt"
	"strings"
)

// indentUnit is prepended once per indentation level.
const indentUnit = "  "

// Emitter is an append-only sink of indented script lines. It performs no
// validation of what it is given.
type Emitter struct {
	lines  []string
	indent int
}

// NewEmitter returns an empty emitter at indentation level zero.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Line appends s at the current indentation level.
func (e *Emitter) Line(s string) {
	e.lines = append(e.lines, strings.Repeat(indentUnit, e.indent)+s)
}

// Linef appends a formatted line.
func (e *Emitter) Linef(format string, args ...any) {
	e.Line(fmt.Sprintf(format, args...))
}

// Comment appends a line comment.
func (e *Emitter) Comment(s string) {
	e.Line("// " + s)
}

// Commentf appends a formatted line comment.
func (e *Emitter) Commentf(format string, args ...any) {
	e.Comment(fmt.Sprintf(format, args...))
}

// Blank appends an empty line. Blank lines are never indented.
func (e *Emitter) Blank() {
	e.lines = append(e.lines, "")
}

// Indent increases the indentation level.
func (e *Emitter) Indent() { e.indent++ }

// Dedent decreases the indentation level, stopping at zero.
func (e *Emitter) Dedent() {
	if e.indent > 0 {
		e.indent--
	}
}

// Block runs fn one level deeper and restores the level afterwards.
func (e *Emitter) Block(fn func()) {
	e.Indent()
	defer e.Dedent()
	fn()
}

// Level returns the current indentation level.
func (e *Emitter) Level() int { return e.indent }

// Len returns the number of lines emitted so far.
func (e *Emitter) Len() int { return len(e.lines) }

// Lines returns a copy of the emitted lines.
func (e *Emitter) Lines() []string {
	out := make([]string, len(e.lines))
	copy(out, e.lines)
	return out
}

// String returns the document as newline-joined text.
func (e *Emitter) String() string {
	return strings.Join(e.lines, "\n")
}
