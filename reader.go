package modelxml

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/internal/handler"
	"github.com/jacoelho/modelxml/internal/namespace"
	"github.com/jacoelho/modelxml/pkg/model"
	"github.com/jacoelho/modelxml/pkg/xmlstream"
)

// Reader parses XML documents into model instances. A Reader is safe for
// concurrent use; every call owns its parse state.
type Reader struct {
	reg  *model.Registry
	norm *namespace.Normalizer
	opts resolvedReadOptions
}

// Result is the outcome of a successful read.
type Result struct {
	Root *model.Element
	// ElementsByID indexes every element that declared an id.
	ElementsByID map[string]*model.Element
	// References lists every reference encountered, resolved or not.
	References []*model.Reference
	Warnings   []errors.Warning
}

// NewReader returns a Reader for the packages of reg.
func NewReader(reg *model.Registry, opts ReadOptions) (*Reader, error) {
	if reg == nil {
		return nil, fmt.Errorf("new reader: nil registry")
	}
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("new reader: %w", err)
	}
	return &Reader{
		reg:  reg,
		norm: namespace.NewNormalizer(reg, resolved.namespaces),
		opts: resolved,
	}, nil
}

// Handler returns a reusable root handler for the named type.
func (r *Reader) Handler(typeName string) (*handler.Root, error) {
	root, err := handler.NewRoot(r.reg, typeName)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnknownType, err.Error(), err)
	}
	return root, nil
}

// FromXML parses a document whose root element is an instance of typeName.
func (r *Reader) FromXML(ctx context.Context, in io.Reader, typeName string) (*Result, error) {
	root, err := r.Handler(typeName)
	if err != nil {
		return nil, err
	}
	return r.FromXMLWithHandler(ctx, in, root)
}

// FromXMLFile is FromXML over the file at path.
func (r *Reader) FromXMLFile(ctx context.Context, path, typeName string) (res *Result, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xml file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close xml file %s: %w", path, closeErr)
		}
	}()
	return r.FromXML(ctx, f, typeName)
}

// FromXMLWithHandler parses a document with a root handler obtained from
// Handler. ctx is checked once before the first token is read.
func (r *Reader) FromXMLWithHandler(ctx context.Context, in io.Reader, root *handler.Root) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("read: nil root handler")
	}
	stream, err := xmlstream.NewReader(in, r.opts.parseOptions...)
	if err != nil {
		return nil, &errors.ParseError{Err: errors.Wrap(errors.ErrXMLSyntax, err.Error(), err)}
	}
	out, err := handler.Parse(stream, root, handler.Config{
		Registry:   r.reg,
		Normalizer: r.norm,
		Logger:     r.opts.logger,
		Lax:        r.opts.lax,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Root:         out.Root,
		ElementsByID: out.Context.ElementsByID(),
		References:   out.Context.References(),
		Warnings:     out.Context.Warnings(),
	}, nil
}
