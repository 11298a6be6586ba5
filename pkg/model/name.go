package model

import "strings"

// Name is a namespace-qualified name.
type Name struct {
	Prefix string
	Local  string
	URI    string
}

// String returns prefix:local, or local when there is no prefix.
func (n Name) String() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// ParseName splits a prefix:local name. Names without a prefix get defaultPrefix.
func ParseName(name, defaultPrefix string) Name {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return Name{Prefix: defaultPrefix, Local: name}
	}
	return Name{Prefix: prefix, Local: local}
}
