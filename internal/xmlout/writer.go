package xmlout

import (
	"io"
	"strings"
)

const indentUnit = "  "

// Writer appends markup to an output, adding newlines and indentation when
// formatting is enabled. The first write error sticks and later calls are
// no-ops.
type Writer struct {
	out    io.Writer
	format bool
	depth  int
	err    error
}

// NewWriter returns a writer over out.
func NewWriter(out io.Writer, format bool) *Writer {
	return &Writer{out: out, format: format}
}

// Append writes s verbatim.
func (w *Writer) Append(s string) *Writer {
	if w.err != nil || s == "" {
		return w
	}
	_, w.err = io.WriteString(w.out, s)
	return w
}

// AppendNewline writes a newline when formatting.
func (w *Writer) AppendNewline() *Writer {
	if w.format {
		w.Append("\n")
	}
	return w
}

// AppendIndent writes the current indentation when formatting.
func (w *Writer) AppendIndent() *Writer {
	if w.format && w.depth > 0 {
		w.Append(strings.Repeat(indentUnit, w.depth))
	}
	return w
}

// Indent increases the indentation level.
func (w *Writer) Indent() *Writer {
	w.depth++
	return w
}

// Unindent decreases the indentation level.
func (w *Writer) Unindent() *Writer {
	if w.depth > 0 {
		w.depth--
	}
	return w
}

// Err returns the first write error.
func (w *Writer) Err() error {
	return w.err
}
