package namespace

import (
	"github.com/jacoelho/modelxml/internal/xmlnames"
	"github.com/jacoelho/modelxml/pkg/model"
	"github.com/jacoelho/modelxml/pkg/xmlstream"
)

// LookupFunc resolves a document prefix in the scope of the current element.
type LookupFunc func(prefix string) (string, bool)

// Node is a start element with names normalized to model prefixes.
type Node struct {
	// Name carries the model prefix, the local name and the namespace URI.
	Name model.Name
	// Raw is the tag as written in the document.
	Raw string
	// Attrs holds attributes named with model prefixes. Namespace
	// declarations keep their lexical names.
	Attrs  []model.Attr
	Line   int
	Column int

	lookup LookupFunc
}

// Attr returns the value of a normalized attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// LookupNamespace resolves a document prefix as seen by the node.
// Attribute values such as xsi:type carry document prefixes.
func (n *Node) LookupNamespace(prefix string) (string, bool) {
	if n.lookup == nil {
		return "", false
	}
	return n.lookup(prefix)
}

// Normalizer rewrites document prefixes into the prefixes the model uses.
type Normalizer struct {
	reg      *model.Registry
	custom   map[string]string
	defaults map[string]string
}

// NewNormalizer builds a normalizer over reg. custom maps namespace URIs to
// preferred prefixes and is consulted after the model packages.
func NewNormalizer(reg *model.Registry, custom map[string]string) *Normalizer {
	return &Normalizer{
		reg:      reg,
		custom:   custom,
		defaults: xmlnames.DefaultPrefixes(),
	}
}

// Prefix returns the model prefix bound to uri.
func (n *Normalizer) Prefix(uri string) (string, bool) {
	if uri == "" {
		return "", false
	}
	if n.reg != nil {
		if pkg := n.reg.PackageByURI(uri); pkg != nil {
			return pkg.Prefix, true
		}
	}
	if prefix, ok := n.custom[uri]; ok {
		return prefix, true
	}
	prefix, ok := n.defaults[uri]
	return prefix, ok
}

// Node normalizes a start element event.
func (n *Normalizer) Node(ev xmlstream.Event, lookup LookupFunc) *Node {
	node := &Node{
		Name:   n.name(ev.Name),
		Raw:    ev.Name.String(),
		Line:   ev.Line,
		Column: ev.Column,
		lookup: lookup,
	}
	if len(ev.Attrs) > 0 {
		node.Attrs = make([]model.Attr, 0, len(ev.Attrs))
	}
	for _, attr := range ev.Attrs {
		name := attr.Name.String()
		if !attr.IsNamespaceDecl() {
			name = n.name(attr.Name).String()
		}
		node.Attrs = append(node.Attrs, model.Attr{Name: name, Value: attr.Value})
	}
	return node
}

func (n *Normalizer) name(q xmlstream.QName) model.Name {
	if q.Namespace == "" {
		return model.Name{Local: q.Local}
	}
	prefix, ok := n.Prefix(q.Namespace)
	if !ok {
		prefix = q.Prefix
	}
	return model.Name{Prefix: prefix, Local: q.Local, URI: q.Namespace}
}
