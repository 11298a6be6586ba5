package handler

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/internal/namespace"
	"github.com/jacoelho/modelxml/internal/parsectx"
	"github.com/jacoelho/modelxml/pkg/model"
	"github.com/jacoelho/modelxml/pkg/xmlstream"
)

// Root binds a parse to the type its document element must have.
// A Root holds no per-parse state and may be reused.
type Root struct {
	typ *model.Type
}

// NewRoot returns a root handler for the named type.
func NewRoot(reg *model.Registry, typeName string) (*Root, error) {
	t, err := reg.Type(typeName)
	if err != nil {
		return nil, err
	}
	return &Root{typ: t}, nil
}

// Type returns the expected root type.
func (r *Root) Type() *model.Type {
	return r.typ
}

// Config holds the inputs of one parse.
type Config struct {
	Registry   *model.Registry
	Normalizer *namespace.Normalizer
	Logger     *zap.Logger
	Lax        bool
}

// Outcome is the product of a successful parse.
type Outcome struct {
	Root    *model.Element
	Context *parsectx.Context
}

type parser struct {
	reg    *model.Registry
	ctx    *parsectx.Context
	norm   *namespace.Normalizer
	logger *zap.Logger
	lax    bool
	stack  []handler
}

// Parse drives the handler stack over stream and resolves references at
// the end of the document. Failures are returned as *errors.ParseError
// carrying the warnings collected so far.
func Parse(stream *xmlstream.Reader, root *Root, cfg Config) (*Outcome, error) {
	if root == nil || root.typ == nil {
		return nil, fmt.Errorf("parse: nil root handler")
	}
	p := &parser{
		reg:    cfg.Registry,
		ctx:    parsectx.New(),
		norm:   cfg.Normalizer,
		logger: cfg.Logger,
		lax:    cfg.Lax,
	}
	if p.norm == nil {
		p.norm = namespace.NewNormalizer(p.reg, nil)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	rootHandler := &elementHandler{p: p, typ: root.typ, expected: root.typ}
	p.stack = append(p.stack, rootHandler)

	if err := p.run(stream); err != nil {
		p.logger.Debug("parse aborted", zap.Error(err))
		return nil, &errors.ParseError{Err: err, Warnings: p.ctx.Warnings()}
	}
	p.ctx.Resolve()

	if rootHandler.el == nil {
		err := errors.Newf(errors.ErrFailedToParseDocument, "failed to parse document as <%s>", root.typ.Name)
		p.logger.Debug("parse aborted", zap.Error(err))
		return nil, &errors.ParseError{Err: err, Warnings: p.ctx.Warnings()}
	}
	return &Outcome{Root: rootHandler.el, Context: p.ctx}, nil
}

func (p *parser) run(stream *xmlstream.Reader) error {
	for {
		ev, err := stream.Next()
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(errors.ErrXMLSyntax, err.Error(), err)
		}
		switch ev.Kind {
		case xmlstream.EventXMLDecl:
			p.checkEncoding(ev)
		case xmlstream.EventStartElement:
			node := p.norm.Node(ev, stream.LookupNamespace)
			next, err := p.top().open(node)
			if err != nil {
				if err := p.handleError(err, node.Raw, ev.Line, ev.Column); err != nil {
					return err
				}
				next = noopHandler{}
			}
			p.stack = append(p.stack, next)
		case xmlstream.EventEndElement:
			h := p.top()
			p.stack = p.stack[:len(p.stack)-1]
			if err := h.close(); err != nil {
				if err := p.handleError(err, ev.Name.String(), ev.Line, ev.Column); err != nil {
					return err
				}
			}
		case xmlstream.EventCharData:
			text := strings.TrimSpace(ev.Text)
			if text == "" {
				continue
			}
			p.top().text(text)
		case xmlstream.EventCDATA:
			p.top().text(ev.Text)
		}
	}
}

func (p *parser) top() handler {
	return p.stack[len(p.stack)-1]
}

// handleError wraps err with the position of the failing tag. In lax mode
// recoverable failures become warnings and handleError returns nil.
func (p *parser) handleError(err error, tag string, line, column int) error {
	wrapped := &errors.Error{
		Code: errors.ErrUnparsableContent,
		Message: fmt.Sprintf("unparsable content <%s> detected\n\tline: %d\n\tcolumn: %d\n\tnested error: %s",
			tag, line, column, err.Error()),
		Line:   line,
		Column: column,
		Err:    err,
	}
	if !p.lax || fatal(err) {
		return wrapped
	}
	p.logger.Warn("could not parse node",
		zap.String("tag", tag),
		zap.Int("line", line),
		zap.Int("column", column),
		zap.Error(err),
	)
	p.ctx.AddWarning(errors.Warning{
		Code:    errors.ErrUnparsableContent,
		Message: wrapped.Message,
		Err:     err,
	})
	return nil
}

func fatal(err error) bool {
	return errors.HasCode(err, errors.ErrDuplicateID) ||
		errors.HasCode(err, errors.ErrIllegalID) ||
		errors.HasCode(err, errors.ErrUnexpectedElement)
}

func (p *parser) warn(w errors.Warning) {
	p.ctx.AddWarning(w)
}

func (p *parser) checkEncoding(ev xmlstream.Event) {
	label, ok := ev.Attr("", "encoding")
	if !ok || label == "" {
		return
	}
	if enc, err := htmlindex.Get(label); err == nil {
		if name, err := htmlindex.Name(enc); err == nil && name == "utf-8" {
			return
		}
	}
	p.logger.Warn("unsupported document encoding", zap.String("encoding", label))
	p.warn(errors.Warning{
		Code:    errors.ErrUnsupportedEncoding,
		Message: "unsupported document encoding <" + label + ">, falling back to UTF-8",
		Value:   label,
	})
}
