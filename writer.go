package modelxml

import (
	"fmt"
	"io"
	"strings"

	"github.com/jacoelho/modelxml/internal/serialize"
	"github.com/jacoelho/modelxml/internal/xmlout"
	"github.com/jacoelho/modelxml/pkg/model"
)

// Preamble is the XML declaration written before the root element.
const Preamble = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Writer serializes model instances to XML. A Writer is safe for concurrent
// use.
type Writer struct {
	reg  *model.Registry
	opts resolvedWriteOptions
}

// NewWriter returns a Writer for the packages of reg.
func NewWriter(reg *model.Registry, opts WriteOptions) (*Writer, error) {
	if reg == nil {
		return nil, fmt.Errorf("new writer: nil registry")
	}
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("new writer: %w", err)
	}
	return &Writer{reg: reg, opts: resolved}, nil
}

// ToXML returns the document for el.
func (w *Writer) ToXML(el *model.Element) (string, error) {
	var b strings.Builder
	if err := w.WriteTo(&b, el); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteTo writes the document for el to out. Nothing is written when the
// tree cannot be serialized.
func (w *Writer) WriteTo(out io.Writer, el *model.Element) error {
	if el == nil {
		return fmt.Errorf("write: nil element")
	}
	tree, err := serialize.Build(el, serialize.Config{
		Registry:   w.reg,
		Namespaces: w.opts.namespaces,
		Logger:     w.opts.logger,
	})
	if err != nil {
		return err
	}
	xw := xmlout.NewWriter(out, w.opts.format)
	if w.opts.preamble {
		xw.Append(Preamble)
	}
	tree.SerializeTo(xw)
	if err := xw.Err(); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	return nil
}
