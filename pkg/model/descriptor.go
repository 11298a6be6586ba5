package model

// PackageDescriptor is the serialized form of a model package.
// Both YAML and JSON documents decode into it.
type PackageDescriptor struct {
	Name   string           `yaml:"name"`
	URI    string           `yaml:"uri"`
	Prefix string           `yaml:"prefix"`
	XML    PackageXML       `yaml:"xml,omitempty"`
	Types  []TypeDescriptor `yaml:"types"`
}

// PackageXML holds package level XML conventions.
type PackageXML struct {
	// TagAlias is "lowerCase" when element tags spell type names with a
	// lower-cased first letter.
	TagAlias string `yaml:"tagAlias,omitempty"`
	// TypePrefix is prepended to type names written in xsi:type hints.
	TypePrefix string `yaml:"typePrefix,omitempty"`
}

// TypeDescriptor is the serialized form of a type.
type TypeDescriptor struct {
	Name       string               `yaml:"name"`
	SuperClass []string             `yaml:"superClass,omitempty"`
	IsAbstract bool                 `yaml:"isAbstract,omitempty"`
	Properties []PropertyDescriptor `yaml:"properties,omitempty"`
}

// PropertyDescriptor is the serialized form of a property.
type PropertyDescriptor struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	IsAttr      bool        `yaml:"isAttr,omitempty"`
	IsBody      bool        `yaml:"isBody,omitempty"`
	IsMany      bool        `yaml:"isMany,omitempty"`
	IsReference bool        `yaml:"isReference,omitempty"`
	IsID        bool        `yaml:"isId,omitempty"`
	IsVirtual   bool        `yaml:"isVirtual,omitempty"`
	Default     any         `yaml:"default,omitempty"`
	Redefines   string      `yaml:"redefines,omitempty"`
	XML         PropertyXML `yaml:"xml,omitempty"`
}

// PropertyXML holds property level XML conventions.
type PropertyXML struct {
	// Serialize is "xsi:type" for polymorphic properties written with a type
	// hint, or "property" for values tagged with the property name.
	Serialize string `yaml:"serialize,omitempty"`
}
