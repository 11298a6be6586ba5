package model

import (
	"fmt"
	"strings"
)

// UnknownTypeError reports a lookup of a type the registry does not know.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return "unknown type <" + e.Name + ">"
}

// Registry holds loaded packages and their types.
type Registry struct {
	packages []*Package
	byPrefix map[string]*Package
	byURI    map[string]*Package
	types    map[string]*Type
}

type buildState uint8

const (
	stateUnvisited buildState = iota
	stateVisiting
	stateDone
)

// New builds a registry from package descriptors.
func New(descs ...PackageDescriptor) (*Registry, error) {
	r := &Registry{
		byPrefix: make(map[string]*Package, len(descs)),
		byURI:    make(map[string]*Package, len(descs)),
		types:    make(map[string]*Type),
	}
	declared := make(map[string]TypeDescriptor)
	for _, desc := range descs {
		if desc.Prefix == "" || desc.URI == "" {
			return nil, fmt.Errorf("package %q: prefix and uri are required", desc.Name)
		}
		if _, ok := r.byPrefix[desc.Prefix]; ok {
			return nil, fmt.Errorf("package %q: duplicate prefix %q", desc.Name, desc.Prefix)
		}
		if _, ok := r.byURI[desc.URI]; ok {
			return nil, fmt.Errorf("package %q: duplicate uri %q", desc.Name, desc.URI)
		}
		pkg := &Package{
			Name:       desc.Name,
			URI:        desc.URI,
			Prefix:     desc.Prefix,
			TagAlias:   desc.XML.TagAlias,
			TypePrefix: desc.XML.TypePrefix,
		}
		for _, td := range desc.Types {
			name := desc.Prefix + ":" + td.Name
			if _, ok := r.types[name]; ok {
				return nil, fmt.Errorf("package %q: duplicate type %s", desc.Name, name)
			}
			t := &Type{
				Name:     name,
				NS:       Name{Prefix: desc.Prefix, Local: td.Name, URI: desc.URI},
				Package:  pkg,
				Abstract: td.IsAbstract,
			}
			for _, super := range td.SuperClass {
				t.supers = append(t.supers, qualifyType(super, desc.Prefix))
			}
			r.types[name] = t
			pkg.Types = append(pkg.Types, t)
			declared[name] = td
		}
		r.packages = append(r.packages, pkg)
		r.byPrefix[pkg.Prefix] = pkg
		r.byURI[pkg.URI] = pkg
	}

	state := make(map[string]buildState, len(r.types))
	for _, pkg := range r.packages {
		for _, t := range pkg.Types {
			if err := r.build(t, declared, state); err != nil {
				return nil, err
			}
		}
	}
	for _, pkg := range r.packages {
		for _, t := range pkg.Types {
			for _, p := range t.Properties {
				if p.Inherited || isBuiltin(p.Type) {
					continue
				}
				if _, ok := r.types[p.Type]; !ok {
					return nil, fmt.Errorf("type %s: property %s has unknown type %s", t.Name, p.Name, p.Type)
				}
			}
		}
	}
	return r, nil
}

func (r *Registry) build(t *Type, declared map[string]TypeDescriptor, state map[string]buildState) error {
	switch state[t.Name] {
	case stateDone:
		return nil
	case stateVisiting:
		return fmt.Errorf("type %s: circular inheritance", t.Name)
	}
	state[t.Name] = stateVisiting

	t.all = make(map[string]struct{})
	var props []*Property
	for _, superName := range t.supers {
		super, ok := r.types[superName]
		if !ok {
			return fmt.Errorf("type %s: unknown supertype %s", t.Name, superName)
		}
		if err := r.build(super, declared, state); err != nil {
			return err
		}
		t.all[super.Name] = struct{}{}
		for name := range super.all {
			t.all[name] = struct{}{}
		}
		for _, p := range super.Properties {
			if indexProperty(props, p.Name) >= 0 {
				continue
			}
			inherited := *p
			inherited.Inherited = true
			props = append(props, &inherited)
		}
	}

	for _, pd := range declared[t.Name].Properties {
		p, err := newProperty(t, pd)
		if err != nil {
			return err
		}
		if pd.Redefines != "" {
			_, target, ok := strings.Cut(pd.Redefines, "#")
			if !ok {
				target = pd.Redefines
			}
			idx := indexProperty(props, target)
			if idx < 0 {
				return fmt.Errorf("type %s: property %s redefines unknown property %s", t.Name, p.Name, pd.Redefines)
			}
			props[idx] = p
			continue
		}
		if indexProperty(props, p.Name) >= 0 {
			return fmt.Errorf("type %s: duplicate property %s", t.Name, p.Name)
		}
		props = append(props, p)
	}

	t.Properties = props
	t.byName = make(map[string]*Property, 2*len(props))
	for _, p := range props {
		t.byName[p.Name] = p
		t.byName[p.QName()] = p
		if p.IsID && t.IDProperty == nil {
			t.IDProperty = p
		}
		if p.IsBody && t.BodyProperty == nil {
			t.BodyProperty = p
		}
	}
	state[t.Name] = stateDone
	return nil
}

func newProperty(t *Type, pd PropertyDescriptor) (*Property, error) {
	if pd.Name == "" {
		return nil, fmt.Errorf("type %s: property without name", t.Name)
	}
	typeName := pd.Type
	if typeName == "" {
		typeName = TypeString
	}
	p := &Property{
		Name:        pd.Name,
		NS:          Name{Prefix: t.NS.Prefix, Local: pd.Name, URI: t.NS.URI},
		Type:        qualifyType(typeName, t.NS.Prefix),
		IsMany:      pd.IsMany,
		IsAttr:      pd.IsAttr,
		IsBody:      pd.IsBody,
		IsReference: pd.IsReference,
		IsVirtual:   pd.IsVirtual,
		IsID:        pd.IsID,
		Serialize:   pd.XML.Serialize,
		Redefines:   pd.Redefines,
		DefinedBy:   t.Name,
	}
	if pd.Default != nil {
		if !IsSimple(p.Type) {
			return nil, fmt.Errorf("type %s: property %s: default on non-primitive type %s", t.Name, p.Name, p.Type)
		}
		v, err := Coerce(p.Type, Format(pd.Default))
		if err != nil {
			return nil, fmt.Errorf("type %s: property %s: default: %w", t.Name, p.Name, err)
		}
		p.Default = v
	}
	return p, nil
}

func indexProperty(props []*Property, name string) int {
	for i, p := range props {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Packages returns the loaded packages in load order.
func (r *Registry) Packages() []*Package {
	return r.packages
}

// Package returns the package bound to prefix, or nil.
func (r *Registry) Package(prefix string) *Package {
	return r.byPrefix[prefix]
}

// PackageByURI returns the package bound to uri, or nil.
func (r *Registry) PackageByURI(uri string) *Package {
	return r.byURI[uri]
}

// Type returns the type with the qualified name.
func (r *Registry) Type(name string) (*Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return t, nil
}

// Create returns a new, empty instance of the named type.
func (r *Registry) Create(typeName string) (*Element, error) {
	t, err := r.Type(typeName)
	if err != nil {
		return nil, err
	}
	return &Element{typ: t}, nil
}

// MustCreate is like Create but panics on unknown types.
func (r *Registry) MustCreate(typeName string) *Element {
	el, err := r.Create(typeName)
	if err != nil {
		panic(err)
	}
	return el
}

// CreateAny returns a generic element for a name outside the known packages.
// name is the qualified element name, uri its namespace.
func (r *Registry) CreateAny(name, uri string, attrs []Attr) *Element {
	ns := ParseName(name, "")
	ns.URI = uri
	t := &Type{
		Name:    name,
		NS:      ns,
		Generic: true,
		byName:  map[string]*Property{},
	}
	el := &Element{typ: t}
	for _, attr := range attrs {
		el.SetAttr(attr.Name, attr.Value)
	}
	return el
}
