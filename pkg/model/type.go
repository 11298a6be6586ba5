package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Serialize modes of a property.
const (
	SerializeXSIType  = "xsi:type"
	SerializeProperty = "property"
)

// Package is a loaded model package.
type Package struct {
	Name       string
	URI        string
	Prefix     string
	TagAlias   string
	TypePrefix string
	Types      []*Type
}

// LowerCaseAlias reports whether element tags lower-case the first letter of
// type names.
func (p *Package) LowerCaseAlias() bool {
	return p != nil && p.TagAlias == "lowerCase"
}

// TagName returns the element tag spelling of a type local name.
func (p *Package) TagName(typeLocal string) string {
	if !p.LowerCaseAlias() {
		return typeLocal
	}
	return mapFirst(typeLocal, unicode.ToLower)
}

// TypeName returns the qualified type name a local element tag stands for.
func (p *Package) TypeName(tagLocal string) string {
	if p.LowerCaseAlias() {
		tagLocal = mapFirst(tagLocal, unicode.ToUpper)
	}
	return p.Prefix + ":" + tagLocal
}

func mapFirst(s string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(fn(r)) + s[size:]
}

// Type describes one model type with its effective property list.
type Type struct {
	// Name is the qualified type name, e.g. "props:Root". Generic types use
	// the literal element name.
	Name     string
	NS       Name
	Package  *Package
	Abstract bool
	// Generic marks types of elements outside any known package.
	Generic bool

	Properties   []*Property
	IDProperty   *Property
	BodyProperty *Property

	supers []string
	byName map[string]*Property
	all    map[string]struct{}
}

// Property looks up a property by local or qualified name.
func (t *Type) Property(name string) *Property {
	if t == nil {
		return nil
	}
	return t.byName[name]
}

// HasType reports whether t is the named type or one of its subtypes.
func (t *Type) HasType(name string) bool {
	if t == nil {
		return false
	}
	if t.Name == name {
		return true
	}
	_, ok := t.all[name]
	return ok
}

// SuperTypes returns the qualified names of the direct supertypes.
func (t *Type) SuperTypes() []string {
	return t.supers
}

// Property describes one declared property of a type.
type Property struct {
	// Name is the local property name.
	Name string
	// NS qualifies the property with the package that declares it.
	NS Name
	// Type is a built-in type name or a qualified type name.
	Type        string
	IsMany      bool
	IsAttr      bool
	IsBody      bool
	IsReference bool
	IsVirtual   bool
	IsID        bool
	Default     any
	Serialize   string
	Redefines   string
	// Inherited is set on properties a type receives from a supertype.
	Inherited bool
	// DefinedBy is the qualified name of the declaring type.
	DefinedBy string
}

// QName returns the property name qualified with its package prefix.
func (p *Property) QName() string {
	return p.NS.String()
}

// AsType reports whether values are written with an xsi:type hint.
func (p *Property) AsType() bool {
	return p.Serialize == SerializeXSIType
}

// AsProperty reports whether values are tagged with the property name.
func (p *Property) AsProperty() bool {
	return p.Serialize == SerializeProperty
}

// IsSimple reports whether the property holds primitive values.
func (p *Property) IsSimple() bool {
	return IsSimple(p.Type)
}

func qualifyType(name, prefix string) string {
	if isBuiltin(name) || strings.Contains(name, ":") {
		return name
	}
	return prefix + ":" + name
}
