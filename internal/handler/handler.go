package handler

import (
	"fmt"
	"strings"

	"github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/internal/namespace"
	"github.com/jacoelho/modelxml/internal/propresolve"
	"github.com/jacoelho/modelxml/internal/xmlnames"
	"github.com/jacoelho/modelxml/pkg/model"
)

// handler consumes the events of one open element.
type handler interface {
	// open receives the element's own start node first and its children
	// after that. It returns the handler that takes the pushed slot.
	open(node *namespace.Node) (handler, error)
	text(text string)
	close() error
	// result is the value the element produced, if any.
	result() any
}

var errSubNode = errors.New(errors.ErrUnexpectedSubNode, "expected no sub nodes")

type elementHandler struct {
	p    *parser
	typ  *model.Type
	el   *model.Element
	body strings.Builder
	// expected is set on the root handler; the first node must be an
	// instance of it.
	expected *model.Type
	hasBody  bool
}

func (h *elementHandler) open(node *namespace.Node) (handler, error) {
	if h.el != nil {
		return h.child(node)
	}
	if h.expected != nil {
		t, err := h.rootType(node)
		if err != nil {
			return nil, err
		}
		h.typ = t
	}
	el, err := h.create(node)
	if err != nil {
		return nil, err
	}
	h.el = el
	if err := h.p.ctx.AddElement(el); err != nil {
		return nil, err
	}
	return h, nil
}

// rootType accepts the expected type and its subtypes.
func (h *elementHandler) rootType(node *namespace.Node) (*model.Type, error) {
	candidate := node.Name.String()
	if pkg := h.p.reg.PackageByURI(node.Name.URI); pkg != nil {
		candidate = pkg.TypeName(node.Name.Local)
	}
	t, err := h.p.reg.Type(candidate)
	if err != nil || !t.HasType(h.expected.Name) {
		return nil, errors.Newf(errors.ErrUnexpectedElement, "unexpected element <%s>", node.Raw)
	}
	return t, nil
}

func (h *elementHandler) create(node *namespace.Node) (*model.Element, error) {
	el, err := h.p.reg.Create(h.typ.Name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnknownType, err.Error(), err)
	}
	var refs []*model.Reference
	for _, attr := range node.Attrs {
		if xmlnames.IsXMLNSAttr(attr.Name) {
			el.SetAttr(attr.Name, attr.Value)
			continue
		}
		p := h.typ.Property(attr.Name)
		switch {
		case p != nil && p.IsReference:
			ids := []string{attr.Value}
			if p.IsMany {
				ids = strings.Fields(attr.Value)
			}
			for _, id := range ids {
				ref := &model.Reference{Element: el, Property: p.QName(), ID: id}
				if p.IsMany {
					el.Add(p.Name, ref)
				} else {
					el.Set(p.Name, ref)
				}
				refs = append(refs, ref)
			}
		case p != nil:
			if !p.IsMany {
				v, err := coerce(p, attr.Value)
				if err != nil {
					return nil, err
				}
				el.Set(p.Name, v)
				continue
			}
			for _, field := range strings.Fields(attr.Value) {
				v, err := coerce(p, field)
				if err != nil {
					return nil, err
				}
				el.Add(p.Name, v)
			}
		default:
			name := model.ParseName(attr.Name, h.typ.NS.Prefix)
			if h.p.reg.Package(name.Prefix) != nil {
				h.p.warn(errors.Warning{
					Code:     errors.ErrUnknownAttribute,
					Message:  "unknown attribute <" + attr.Name + ">",
					Element:  el,
					Property: attr.Name,
					Value:    attr.Value,
				})
			}
			el.SetAttr(attr.Name, attr.Value)
		}
	}
	// References are queued only once the element is known to be kept.
	for _, ref := range refs {
		h.p.ctx.AddReference(ref)
	}
	return el, nil
}

func (h *elementHandler) child(node *namespace.Node) (handler, error) {
	res, err := propresolve.Resolve(h.p.reg, h.typ, node)
	if err != nil {
		return nil, err
	}
	if len(res.Ambiguous) > 0 {
		names := make([]string, 0, len(res.Ambiguous))
		for _, p := range res.Ambiguous {
			names = append(names, p.Name)
		}
		h.p.warn(errors.Warning{
			Code:     errors.ErrAmbiguousProperty,
			Message:  fmt.Sprintf("element <%s> matches properties %s, using <%s>", node.Raw, strings.Join(names, ", "), res.Property.Name),
			Element:  h.el,
			Property: res.Property.QName(),
		})
	}

	p := res.Property
	var child handler
	switch {
	case res.Type == nil && p.IsSimple():
		return &valueHandler{prop: p, el: h.el}, nil
	case p.IsReference:
		child = &referenceHandler{prop: p}
	case res.Type == nil && p.Type == model.TypeElement:
		child = &genericHandler{p: h.p}
	default:
		child = &elementHandler{p: h.p, typ: res.Type}
	}

	next, err := child.open(node)
	if err != nil {
		return nil, err
	}
	switch v := child.result().(type) {
	case *model.Reference:
		v.Element = h.el
		h.store(p, v)
		h.p.ctx.AddReference(v)
	case *model.Element:
		h.store(p, v)
		v.SetParent(h.el)
	}
	return next, nil
}

func (h *elementHandler) store(p *model.Property, v any) {
	if p.IsMany {
		h.el.Add(p.Name, v)
		return
	}
	h.el.Set(p.Name, v)
}

func (h *elementHandler) text(text string) {
	if h.typ.BodyProperty == nil {
		h.p.warn(errors.Warning{
			Code:    errors.ErrUnexpectedBodyText,
			Message: "unexpected body text <" + text + ">",
			Element: h.el,
			Value:   text,
		})
		return
	}
	h.body.WriteString(text)
	h.hasBody = true
}

func (h *elementHandler) close() error {
	bp := h.typ.BodyProperty
	if bp == nil || !h.hasBody {
		return nil
	}
	v, err := coerce(bp, h.body.String())
	if err != nil {
		return err
	}
	h.el.Set(bp.Name, v)
	return nil
}

func (h *elementHandler) result() any {
	if h.el == nil {
		return nil
	}
	return h.el
}

// valueHandler reads the text of a simple-typed child element. It is
// pushed without seeing its own start node, so any open is a sub-node.
type valueHandler struct {
	prop *model.Property
	el   *model.Element
	body strings.Builder
}

func (h *valueHandler) open(*namespace.Node) (handler, error) {
	return nil, errSubNode
}

func (h *valueHandler) text(text string) {
	h.body.WriteString(text)
}

func (h *valueHandler) close() error {
	v, err := coerce(h.prop, h.body.String())
	if err != nil {
		return err
	}
	if h.prop.IsMany {
		h.el.Add(h.prop.Name, v)
	} else {
		h.el.Set(h.prop.Name, v)
	}
	return nil
}

func (h *valueHandler) result() any { return nil }

type referenceHandler struct {
	prop *model.Property
	ref  *model.Reference
	body strings.Builder
}

func (h *referenceHandler) open(*namespace.Node) (handler, error) {
	if h.ref != nil {
		return nil, errSubNode
	}
	h.ref = &model.Reference{Property: h.prop.QName()}
	return h, nil
}

func (h *referenceHandler) text(text string) {
	h.body.WriteString(text)
}

func (h *referenceHandler) close() error {
	h.ref.ID = h.body.String()
	return nil
}

func (h *referenceHandler) result() any {
	if h.ref == nil {
		return nil
	}
	return h.ref
}

// genericHandler builds elements outside the model verbatim.
type genericHandler struct {
	p    *parser
	el   *model.Element
	body strings.Builder
}

func (h *genericHandler) open(node *namespace.Node) (handler, error) {
	if h.el == nil {
		h.el = h.p.reg.CreateAny(node.Name.String(), node.Name.URI, node.Attrs)
		return h, nil
	}
	child := &genericHandler{p: h.p}
	next, err := child.open(node)
	if err != nil {
		return nil, err
	}
	h.el.AddChild(child.el)
	return next, nil
}

func (h *genericHandler) text(text string) {
	h.body.WriteString(text)
}

func (h *genericHandler) close() error {
	if h.body.Len() > 0 {
		h.el.SetBody(h.body.String())
	}
	return nil
}

func (h *genericHandler) result() any {
	if h.el == nil {
		return nil
	}
	return h.el
}

// noopHandler swallows a subtree skipped after a recovered error.
type noopHandler struct{}

func (noopHandler) open(*namespace.Node) (handler, error) { return noopHandler{}, nil }
func (noopHandler) text(string)                           {}
func (noopHandler) close() error                          { return nil }
func (noopHandler) result() any                           { return nil }

func coerce(p *model.Property, text string) (any, error) {
	v, err := model.Coerce(p.Type, text)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidValue, err.Error(), err)
	}
	return v, nil
}
