package serialize

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/internal/namespace"
	"github.com/jacoelho/modelxml/internal/xmlnames"
	"github.com/jacoelho/modelxml/internal/xmlout"
	"github.com/jacoelho/modelxml/pkg/model"
)

// Config holds the inputs shared by every node of one serialization.
type Config struct {
	Registry *model.Registry
	// Namespaces maps namespace URIs to preferred prefixes.
	Namespaces map[string]string
	Logger     *zap.Logger
}

type builder struct {
	reg    *model.Registry
	logger *zap.Logger
	// wellknown maps prefixes to the URIs they stand for without a
	// declaration in the tree.
	wellknown map[string]string
}

// Tree is a built element ready to be written.
type Tree struct {
	root *elementNode
}

// Build prepares the serialization of el.
func Build(el *model.Element, cfg Config) (*Tree, error) {
	b := &builder{
		reg:       cfg.Registry,
		logger:    cfg.Logger,
		wellknown: make(map[string]string),
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	for uri, prefix := range xmlnames.DefaultPrefixes() {
		b.wellknown[prefix] = uri
	}
	for uri, prefix := range cfg.Namespaces {
		b.wellknown[prefix] = uri
	}
	root := &elementNode{b: b}
	if err := root.build(el); err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

// SerializeTo writes the tree.
func (t *Tree) SerializeTo(w *xmlout.Writer) {
	t.root.serializeTo(w)
}

type node interface {
	serializeTo(w *xmlout.Writer)
}

type attribute struct {
	name  string
	value string
}

// bodyNode is text written inline, without indentation.
type bodyNode struct {
	text string
}

func (n *bodyNode) serializeTo(w *xmlout.Writer) {
	w.Append(n.text)
}

// valueNode is a child element holding a single text value.
type valueNode struct {
	tag  string
	text string
}

func (n *valueNode) serializeTo(w *xmlout.Writer) {
	w.AppendIndent().
		Append("<" + n.tag + ">").
		Append(n.text).
		Append("</" + n.tag + ">").
		AppendNewline()
}

type elementNode struct {
	b      *builder
	parent *elementNode
	// prop is the containing property when the tag is derived from it.
	prop *model.Property
	// asType marks nodes written with an xsi:type hint.
	asType bool

	el      *model.Element
	ns      model.Name
	typeNS  *model.Name
	tagName string
	attrs   []attribute
	body    []node
	table   *namespace.Table
}

func (n *elementNode) build(el *model.Element) error {
	n.el = el
	typ := el.Type()

	var other []model.Attr
	var err error
	if el.Generic() {
		other, err = n.parseGeneric(el)
	} else {
		other, err = n.parseNSAttributes(el)
	}
	if err != nil {
		return err
	}

	if n.prop != nil {
		ns, err := n.logNamespaceUsed(n.prop.NS.Prefix, n.prop.NS.URI, false)
		if err != nil {
			return err
		}
		n.ns = model.Name{Prefix: ns.Prefix, Local: n.prop.Name, URI: ns.URI}
	} else {
		ns, err := n.tagNS(typ)
		if err != nil {
			return err
		}
		n.ns = ns
	}
	n.tagName = n.addTagName(n.ns)

	if !el.Generic() {
		var attrs, contained []*model.Property
		for _, p := range serializable(el) {
			if p.IsAttr {
				attrs = append(attrs, p)
			} else {
				contained = append(contained, p)
			}
		}
		if err := n.parseAttributes(attrs); err != nil {
			return err
		}
		if err := n.parseContainments(contained); err != nil {
			return err
		}
	}
	n.parseGenericAttributes(other)
	return nil
}

// tagNS returns the element name of typ with its effective prefix.
func (n *elementNode) tagNS(typ *model.Type) (model.Name, error) {
	ns, err := n.logNamespaceUsed(typ.NS.Prefix, typ.NS.URI, false)
	if err != nil {
		return model.Name{}, err
	}
	local := typ.NS.Local
	if !typ.Generic {
		local = typ.Package.TagName(local)
	}
	return model.Name{Prefix: ns.Prefix, Local: local, URI: ns.URI}, nil
}

func serializable(el *model.Element) []*model.Property {
	var out []*model.Property
	for _, p := range el.Type().Properties {
		if p.IsVirtual || !el.Has(p.Name) {
			continue
		}
		v := el.Get(p.Name)
		if v == nil || (p.Default != nil && model.EqualValue(v, p.Default)) {
			continue
		}
		if p.IsMany && len(el.List(p.Name)) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (n *elementNode) parseGeneric(el *model.Element) ([]model.Attr, error) {
	other, err := n.parseNSAttributes(el)
	if err != nil {
		return nil, err
	}
	for _, child := range el.Children() {
		childNode := &elementNode{b: n.b, parent: n}
		if err := childNode.build(child); err != nil {
			return nil, err
		}
		n.body = append(n.body, childNode)
	}
	if body, ok := el.Body(); ok {
		n.body = append(n.body, &bodyNode{text: xmlout.Body(body)})
	}
	return other, nil
}

// parseNSAttributes registers the namespace declarations of the attribute
// bag and returns the remaining attributes.
func (n *elementNode) parseNSAttributes(el *model.Element) ([]model.Attr, error) {
	var other []model.Attr
	for _, attr := range el.Attrs() {
		if !xmlnames.IsXMLNSAttr(attr.Name) {
			other = append(other, attr)
			continue
		}
		_, prefix, _ := strings.Cut(attr.Name, ":")
		if n.b.reg != nil && n.b.reg.PackageByURI(attr.Value) != nil {
			n.logNamespace(prefix, attr.Value, true, true)
			continue
		}
		ns, err := n.logNamespaceUsed(prefix, attr.Value, true)
		if err != nil {
			return nil, err
		}
		n.namespaces(false).LogUsed(ns.URI)
	}
	if n.asType {
		if err := n.addTypeHint(el); err != nil {
			return nil, err
		}
	}
	return other, nil
}

// addTypeHint writes xsi:type when the value's type differs from the
// declared type of the property.
func (n *elementNode) addTypeHint(el *model.Element) error {
	typ := el.Type()
	if typ.Generic || typ.Name == n.prop.Type {
		return nil
	}
	typeNS, err := n.tagNS(typ)
	if err != nil {
		return err
	}
	n.typeNS = &typeNS
	n.namespaces(false).LogUsed(typeNS.URI)

	value := typ.Package.TypePrefix + typ.NS.Local
	if typeNS.Prefix != "" {
		value = typeNS.Prefix + ":" + value
	}
	name, err := n.attributeName(model.ParseName(xmlnames.XSIType, ""), false)
	if err != nil {
		return err
	}
	n.addAttribute(name, value)
	return nil
}

func (n *elementNode) parseGenericAttributes(attrs []model.Attr) {
	for _, attr := range attrs {
		if attr.Name == xmlnames.XSIType {
			continue
		}
		name, err := n.attributeName(model.ParseName(attr.Name, ""), false)
		if err != nil {
			n.b.logger.Warn("missing namespace information, dropping attribute",
				zap.String("attribute", attr.Name),
				zap.String("value", attr.Value),
				zap.String("element", n.tagName),
				zap.Error(err),
			)
			continue
		}
		n.addAttribute(name, attr.Value)
	}
}

func (n *elementNode) parseAttributes(props []*model.Property) error {
	for _, p := range props {
		v := n.el.Get(p.Name)
		var value string
		switch {
		case p.IsReference && p.IsMany:
			ids := make([]string, 0, len(n.el.List(p.Name)))
			for _, ref := range n.el.List(p.Name) {
				ids = append(ids, referenceID(ref))
			}
			value = strings.Join(ids, " ")
		case p.IsReference:
			value = referenceID(v)
		case p.IsMany:
			parts := make([]string, 0, len(n.el.List(p.Name)))
			for _, item := range n.el.List(p.Name) {
				parts = append(parts, model.Format(item))
			}
			value = strings.Join(parts, " ")
		default:
			value = model.Format(v)
		}
		name, err := n.attributeName(p.NS, p.Inherited)
		if err != nil {
			return err
		}
		n.addAttribute(name, value)
	}
	return nil
}

func (n *elementNode) parseContainments(props []*model.Property) error {
	for _, p := range props {
		values := []any{n.el.Get(p.Name)}
		if p.IsMany {
			values = n.el.List(p.Name)
		}
		switch {
		case p.IsBody:
			n.body = append(n.body, &bodyNode{text: bodyText(p, values[0])})
		case p.IsSimple() || p.IsReference:
			ns, err := n.logNamespaceUsed(p.NS.Prefix, p.NS.URI, false)
			if err != nil {
				return err
			}
			tag := n.addTagName(model.Name{Prefix: ns.Prefix, Local: p.Name, URI: ns.URI})
			for _, v := range values {
				text := referenceID(v)
				if !p.IsReference {
					text = xmlout.EscapeText(model.Format(v))
				}
				n.body = append(n.body, &valueNode{tag: tag, text: text})
			}
		default:
			for _, v := range values {
				child, ok := v.(*model.Element)
				if !ok {
					continue
				}
				childNode := &elementNode{b: n.b, parent: n}
				switch {
				case p.AsType():
					childNode.prop = p
					childNode.asType = true
				case p.AsProperty():
					childNode.prop = p
				}
				if err := childNode.build(child); err != nil {
					return err
				}
				n.body = append(n.body, childNode)
			}
		}
	}
	return nil
}

func bodyText(p *model.Property, v any) string {
	if p.Type == model.TypeString {
		return xmlout.Body(model.Format(v))
	}
	return model.Format(v)
}

func referenceID(v any) string {
	switch ref := v.(type) {
	case *model.Element:
		return ref.ID()
	case *model.Reference:
		if ref.Target != nil {
			return ref.Target.ID()
		}
		return ref.ID
	default:
		return model.Format(v)
	}
}

// namespaces returns the table in effect for n. A table is created for the
// root and, when local is set, for n itself; otherwise the parent's table
// is shared.
func (n *elementNode) namespaces(local bool) *namespace.Table {
	if n.table != nil {
		return n.table
	}
	var parent *namespace.Table
	if n.parent != nil {
		parent = n.parent.namespaces(false)
	}
	if local || parent == nil {
		n.table = namespace.NewTable(parent)
		return n.table
	}
	return parent
}

// logNamespace registers a binding without marking it used.
func (n *elementNode) logNamespace(prefix, uri string, wellknown, local bool) {
	t := n.namespaces(local)
	if _, ok := t.ByURI(uri); !ok {
		t.Add(prefix, uri, wellknown)
	}
	t.MapPrefix(prefix, uri)
}

// logNamespaceUsed resolves prefix and uri to the binding written in the
// output, registering one when needed. Names without prefix and URI are
// returned unqualified.
func (n *elementNode) logNamespaceUsed(prefix, uri string, local bool) (model.Name, error) {
	if prefix == "" && uri == "" {
		return model.Name{}, nil
	}
	t := n.namespaces(local)

	wellknown := n.b.wellknown[prefix]
	if wellknown == "" && n.b.reg != nil {
		if pkg := n.b.reg.Package(prefix); pkg != nil {
			wellknown = pkg.URI
		}
	}
	if uri == "" {
		uri = wellknown
	}
	if uri == "" {
		uri, _ = t.URIByPrefix(prefix)
	}
	if uri == "" {
		return model.Name{}, errors.Newf(errors.ErrMissingNamespace, "no namespace uri given for prefix <%s>", prefix)
	}
	if uri == xmlnames.XMLNamespace {
		return model.Name{Prefix: xmlnames.XMLPrefix, URI: uri}, nil
	}

	b, ok := t.ByURI(uri)
	if !ok {
		b = t.Add(prefix, uri, wellknown == uri)
	}
	if prefix != "" {
		t.MapPrefix(prefix, uri)
	}
	return model.Name{Prefix: b.Prefix, URI: uri}, nil
}

// attributeName returns the written name of an attribute. Inherited
// properties and attributes in the element's own namespace are unprefixed.
func (n *elementNode) attributeName(name model.Name, inherited bool) (string, error) {
	if inherited {
		return name.Local, nil
	}
	ns, err := n.logNamespaceUsed(name.Prefix, name.URI, false)
	if err != nil {
		return "", err
	}
	if ns.URI == "" {
		return name.Local, nil
	}
	n.namespaces(false).LogUsed(ns.URI)
	if n.isLocalNS(ns) {
		return name.Local, nil
	}
	return model.Name{Prefix: ns.Prefix, Local: name.Local}.String(), nil
}

func (n *elementNode) isLocalNS(ns model.Name) bool {
	if n.typeNS != nil {
		return ns.URI == n.typeNS.URI
	}
	return ns.URI == n.ns.URI
}

func (n *elementNode) addTagName(ns model.Name) string {
	if ns.URI != "" {
		n.namespaces(false).LogUsed(ns.URI)
	}
	return ns.String()
}

func (n *elementNode) addAttribute(name, value string) {
	n.attrs = append(n.attrs, attribute{name: name, value: xmlout.EscapeAttr(value)})
}

func (n *elementNode) serializeTo(w *xmlout.Writer) {
	var first node
	if len(n.body) > 0 {
		first = n.body[0]
	}
	_, inline := first.(*bodyNode)
	indent := first != nil && !inline

	w.AppendIndent().Append("<" + n.tagName)
	if n.table != nil {
		for _, b := range n.table.Used() {
			w.Append(" " + b.DeclName() + `="` + xmlout.EscapeAttr(b.URI) + `"`)
		}
	}
	for _, attr := range n.attrs {
		w.Append(" " + attr.name + `="` + attr.value + `"`)
	}
	if first == nil {
		w.Append(" />").AppendNewline()
		return
	}
	w.Append(">")
	if indent {
		w.AppendNewline().Indent()
	}
	for _, b := range n.body {
		b.serializeTo(w)
	}
	if indent {
		w.Unindent().AppendIndent()
	}
	w.Append("</" + n.tagName + ">").AppendNewline()
}
