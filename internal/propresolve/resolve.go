package propresolve

import (
	"strings"

	"github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/internal/namespace"
	"github.com/jacoelho/modelxml/internal/xmlnames"
	"github.com/jacoelho/modelxml/pkg/model"
)

// Resolved is the property a child element maps to and the type of the
// value it produces.
type Resolved struct {
	Property *model.Property
	// Type is the effective type of the child. It is nil for simple
	// properties and for generic content.
	Type *model.Type
	// Ambiguous lists the properties that also accepted the child when the
	// choice was made by type.
	Ambiguous []*model.Property
}

// Resolve finds the property of owner that a child node belongs to.
func Resolve(reg *model.Registry, owner *model.Type, node *namespace.Node) (Resolved, error) {
	name := node.Name.String()

	if p := owner.Property(name); p != nil {
		if p.AsType() {
			if hint, ok := node.Attr(xmlnames.XSIType); ok {
				t, err := hintedType(reg, node, hint)
				if err != nil {
					return Resolved{}, err
				}
				return Resolved{Property: p, Type: t}, nil
			}
		}
		return byProperty(reg, p)
	}

	if pkg := reg.PackageByURI(node.Name.URI); pkg != nil {
		typeName := pkg.TypeName(node.Name.Local)
		t, err := reg.Type(typeName)
		if err != nil {
			return Resolved{}, unknownType(typeName)
		}
		var eligible []*model.Property
		for _, p := range owner.Properties {
			if p.IsVirtual || p.IsReference || p.IsAttr {
				continue
			}
			if t.HasType(p.Type) {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			return Resolved{}, unplaceable(name)
		}
		res := Resolved{Property: eligible[0], Type: t}
		if len(eligible) > 1 {
			res.Ambiguous = eligible
		}
		return res, nil
	}

	for _, p := range owner.Properties {
		if p.Type == model.TypeElement && !p.IsReference && !p.IsAttr {
			return Resolved{Property: p}, nil
		}
	}
	return Resolved{}, unrecognized(name)
}

func byProperty(reg *model.Registry, p *model.Property) (Resolved, error) {
	if p.IsSimple() || p.IsReference || p.Type == model.TypeElement {
		return Resolved{Property: p}, nil
	}
	t, err := reg.Type(p.Type)
	if err != nil {
		return Resolved{}, unknownType(p.Type)
	}
	return Resolved{Property: p, Type: t}, nil
}

// hintedType resolves an xsi:type value written with document prefixes.
func hintedType(reg *model.Registry, node *namespace.Node, hint string) (*model.Type, error) {
	prefix, local, ok := strings.Cut(strings.TrimSpace(hint), ":")
	if !ok {
		local, prefix = prefix, ""
	}
	uri, _ := node.LookupNamespace(prefix)
	pkg := reg.PackageByURI(uri)
	if pkg == nil {
		pkg = reg.Package(prefix)
	}
	if pkg == nil {
		return nil, unknownType(hint)
	}
	local = strings.TrimPrefix(local, pkg.TypePrefix)
	typeName := pkg.Prefix + ":" + local
	t, err := reg.Type(typeName)
	if err != nil {
		return nil, unknownType(typeName)
	}
	return t, nil
}

func unknownType(name string) error {
	return errors.Newf(errors.ErrUnknownType, "unknown type <%s>", name)
}

// unplaceable reports a child of a known package whose type fits no
// property of the owner.
func unplaceable(name string) error {
	return errors.Newf(errors.ErrUnknownType, "unrecognized element <%s>", name)
}

func unrecognized(name string) error {
	return errors.Newf(errors.ErrUnrecognizedElement, "unrecognized element <%s>", name)
}
