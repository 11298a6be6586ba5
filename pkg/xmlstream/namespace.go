package xmlstream

import "errors"

// Common XML namespaces.
const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
)

// ErrUnboundPrefix reports usage of an undeclared namespace prefix.
var ErrUnboundPrefix = errors.New("unbound namespace prefix")

// NamespaceDecl reports a namespace declaration on an element.
type NamespaceDecl struct {
	Prefix string
	URI    string
}

type nsScope struct {
	prefixes   map[string]string
	defaultNS  string
	decls      []NamespaceDecl
	defaultSet bool
}

type nsStack struct {
	scopes []nsScope
}

func (s *nsStack) push(scope nsScope) {
	s.scopes = append(s.scopes, scope)
}

func (s *nsStack) pop() {
	if len(s.scopes) == 0 {
		return
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *nsStack) depth() int {
	return len(s.scopes)
}

func (s *nsStack) lookup(prefix string) (string, bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	if prefix == "xmlns" {
		return XMLNSNamespace, true
	}
	if prefix == "" {
		for i := len(s.scopes) - 1; i >= 0; i-- {
			if s.scopes[i].defaultSet {
				return s.scopes[i].defaultNS, true
			}
		}
		// no default namespace declared; use empty namespace.
		return "", true
	}
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if ns, ok := s.scopes[i].prefixes[prefix]; ok {
			return ns, true
		}
	}
	return "", false
}

// collectScope gathers the declarations among attrs into a new scope.
func collectScope(attrs []Attr) nsScope {
	scope := nsScope{}
	for _, attr := range attrs {
		if !attr.IsNamespaceDecl() {
			continue
		}
		if attr.Name.Prefix == "" {
			scope.defaultNS = attr.Value
			scope.defaultSet = true
			scope.decls = append(scope.decls, NamespaceDecl{URI: attr.Value})
			continue
		}
		prefix := attr.Name.Local
		if prefix == "xml" || prefix == "xmlns" {
			continue
		}
		if scope.prefixes == nil {
			scope.prefixes = make(map[string]string, 1)
		}
		scope.prefixes[prefix] = attr.Value
		scope.decls = append(scope.decls, NamespaceDecl{Prefix: prefix, URI: attr.Value})
	}
	return scope
}
