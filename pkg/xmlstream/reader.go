package xmlstream

import (
	"errors"
	"io"

	"github.com/jacoelho/modelxml/pkg/xmltext"
)

var errNilReader = errors.New("nil XML reader")

// EventKind identifies the kind of a streaming event.
type EventKind uint8

const (
	EventStartElement EventKind = iota + 1
	EventEndElement
	EventCharData
	EventCDATA
	// EventXMLDecl reports the XML declaration; its pseudo-attributes
	// (version, encoding, standalone) are delivered in Attrs.
	EventXMLDecl
)

// String returns a stable name for the kind, suitable for debugging.
func (k EventKind) String() string {
	switch k {
	case EventStartElement:
		return "StartElement"
	case EventEndElement:
		return "EndElement"
	case EventCharData:
		return "CharData"
	case EventCDATA:
		return "CDATA"
	case EventXMLDecl:
		return "XMLDecl"
	default:
		return "Unknown"
	}
}

// QName is a resolved name that keeps its lexical prefix.
type QName struct {
	Namespace string
	Prefix    string
	Local     string
}

// String returns the lexical form prefix:local.
func (n QName) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Is reports whether the name has the given namespace and local part.
func (n QName) Is(namespace, local string) bool {
	return n.Namespace == namespace && n.Local == local
}

// Attr is a resolved attribute.
// Namespace declarations keep their lexical form: xmlns has an empty prefix
// and local name "xmlns"; xmlns:p has prefix "xmlns" and local name "p".
type Attr struct {
	Name  QName
	Value string
}

// IsNamespaceDecl reports whether the attribute declares a namespace.
func (a Attr) IsNamespaceDecl() bool {
	if a.Name.Prefix == "xmlns" {
		return true
	}
	return a.Name.Prefix == "" && a.Name.Local == "xmlns"
}

// Event is a single namespace-resolved XML event.
type Event struct {
	Kind       EventKind
	Name       QName
	Attrs      []Attr
	Text       string
	Line       int
	Column     int
	ScopeDepth int
}

// Attr returns the value of the attribute with the given namespace and local name.
func (e Event) Attr(namespace, local string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Name.Is(namespace, local) {
			return attr.Value, true
		}
	}
	return "", false
}

// Reader provides a streaming XML event interface with namespace tracking.
type Reader struct {
	dec        *xmltext.Decoder
	ns         nsStack
	elemStack  []QName
	pendingPop bool
}

// NewReader creates a new streaming reader for r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	if r == nil {
		return nil, errNilReader
	}
	return &Reader{dec: xmltext.NewDecoder(r, buildOptions(opts...)...)}, nil
}

// Next returns the next XML event, or io.EOF after the document ends.
func (r *Reader) Next() (Event, error) {
	if r == nil || r.dec == nil {
		return Event{}, errNilReader
	}
	if r.pendingPop {
		r.ns.pop()
		r.pendingPop = false
	}
	for {
		tok, err := r.dec.ReadToken()
		if err != nil {
			return Event{}, err
		}
		switch tok.Kind {
		case xmltext.KindStartElement:
			return r.startEvent(tok)
		case xmltext.KindEndElement:
			return r.endEvent(tok), nil
		case xmltext.KindCharData:
			return Event{Kind: EventCharData, Text: tok.Text, Line: tok.Line, Column: tok.Column, ScopeDepth: r.ns.depth() - 1}, nil
		case xmltext.KindCDATA:
			return Event{Kind: EventCDATA, Text: tok.Text, Line: tok.Line, Column: tok.Column, ScopeDepth: r.ns.depth() - 1}, nil
		case xmltext.KindPI:
			if !tok.IsXMLDecl {
				continue
			}
			attrs := make([]Attr, 0, len(tok.Attrs))
			for _, attr := range tok.Attrs {
				attrs = append(attrs, Attr{Name: QName{Local: attr.Name.Local}, Value: attr.Value})
			}
			return Event{Kind: EventXMLDecl, Name: QName{Local: "xml"}, Attrs: attrs, Line: tok.Line, Column: tok.Column}, nil
		}
	}
}

func (r *Reader) startEvent(tok xmltext.Token) (Event, error) {
	attrs := make([]Attr, 0, len(tok.Attrs))
	for _, attr := range tok.Attrs {
		attrs = append(attrs, Attr{
			Name:  QName{Prefix: attr.Name.Prefix, Local: attr.Name.Local},
			Value: attr.Value,
		})
	}
	r.ns.push(collectScope(attrs))
	for i := range attrs {
		name := &attrs[i].Name
		switch {
		case attrs[i].IsNamespaceDecl():
			name.Namespace = XMLNSNamespace
		case name.Prefix != "":
			ns, ok := r.ns.lookup(name.Prefix)
			if !ok {
				r.ns.pop()
				return Event{}, r.unboundPrefix(tok)
			}
			name.Namespace = ns
		}
	}
	namespace, ok := r.ns.lookup(tok.Name.Prefix)
	if !ok {
		r.ns.pop()
		return Event{}, r.unboundPrefix(tok)
	}
	name := QName{Namespace: namespace, Prefix: tok.Name.Prefix, Local: tok.Name.Local}
	r.elemStack = append(r.elemStack, name)
	return Event{
		Kind:       EventStartElement,
		Name:       name,
		Attrs:      attrs,
		Line:       tok.Line,
		Column:     tok.Column,
		ScopeDepth: r.ns.depth() - 1,
	}, nil
}

func (r *Reader) endEvent(tok xmltext.Token) Event {
	name := r.elemStack[len(r.elemStack)-1]
	r.elemStack = r.elemStack[:len(r.elemStack)-1]
	r.pendingPop = true
	return Event{
		Kind:       EventEndElement,
		Name:       name,
		Line:       tok.Line,
		Column:     tok.Column,
		ScopeDepth: r.ns.depth() - 1,
	}
}

// LookupNamespace resolves prefix in the scope of the most recent event.
// The empty prefix resolves to the default namespace.
func (r *Reader) LookupNamespace(prefix string) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.ns.lookup(prefix)
}

// NamespaceDecls returns the declarations made on the innermost open element.
func (r *Reader) NamespaceDecls() []NamespaceDecl {
	if r == nil || len(r.ns.scopes) == 0 {
		return nil
	}
	return r.ns.scopes[len(r.ns.scopes)-1].decls
}

// InputOffset returns the byte offset of the next unread token.
func (r *Reader) InputOffset() int64 {
	if r == nil || r.dec == nil {
		return 0
	}
	return r.dec.InputOffset()
}

func (r *Reader) unboundPrefix(tok xmltext.Token) error {
	return &xmltext.SyntaxError{
		Offset: tok.Offset,
		Line:   tok.Line,
		Column: tok.Column,
		Path:   r.dec.Path(),
		Err:    ErrUnboundPrefix,
	}
}
