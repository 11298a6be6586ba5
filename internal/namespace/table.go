package namespace

import "strconv"

// Binding is a prefix to namespace URI binding declared by a table.
type Binding struct {
	Prefix string
	URI    string
	// Wellknown marks bindings whose URI belongs to a model package or to
	// the default namespaces.
	Wellknown bool
}

// Table is a writer-side scope of namespace bindings chained to its parent.
type Table struct {
	parent *Table

	wellknown []Binding
	custom    []Binding
	byURI     map[string]Binding
	// aliases maps prefixes, including the ones that were renamed on
	// collision, to URIs. The default namespace is stored under "".
	aliases map[string]string
	used    map[string]struct{}
}

// NewTable returns an empty table chained to parent, which may be nil.
func NewTable(parent *Table) *Table {
	return &Table{
		parent:  parent,
		byURI:   make(map[string]Binding),
		aliases: make(map[string]string),
		used:    make(map[string]struct{}),
	}
}

// Parent returns the enclosing table.
func (t *Table) Parent() *Table {
	return t.parent
}

// ByURI returns the binding for uri, searching enclosing tables.
func (t *Table) ByURI(uri string) (Binding, bool) {
	for table := t; table != nil; table = table.parent {
		if b, ok := table.byURI[uri]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// URIByPrefix returns the URI a prefix is known under in scope.
func (t *Table) URIByPrefix(prefix string) (string, bool) {
	for table := t; table != nil; table = table.parent {
		if uri, ok := table.aliases[prefix]; ok {
			return uri, true
		}
	}
	return "", false
}

// Bound reports whether prefix is taken in scope.
func (t *Table) Bound(prefix string) bool {
	_, ok := t.URIByPrefix(prefix)
	return ok
}

// Add declares uri on this table. A prefix already taken in scope is
// renamed by appending _1, _2, and so on; an empty prefix declares the
// default namespace. Add returns the binding that was stored.
func (t *Table) Add(prefix, uri string, wellknown bool) Binding {
	if b, ok := t.ByURI(uri); ok {
		return b
	}
	candidate := prefix
	for i := 1; t.Bound(candidate) && !t.boundTo(candidate, uri); i++ {
		base := prefix
		if base == "" {
			base = "ns"
		}
		candidate = base + "_" + strconv.Itoa(i)
	}
	b := Binding{Prefix: candidate, URI: uri, Wellknown: wellknown}
	t.byURI[uri] = b
	if wellknown {
		t.wellknown = append(t.wellknown, b)
	} else {
		t.custom = append(t.custom, b)
	}
	t.aliases[candidate] = uri
	return b
}

func (t *Table) boundTo(prefix, uri string) bool {
	got, ok := t.URIByPrefix(prefix)
	return ok && got == uri
}

// MapPrefix records that prefix refers to uri on this table without
// declaring a binding.
func (t *Table) MapPrefix(prefix, uri string) {
	t.aliases[prefix] = uri
}

// LogUsed marks the binding of uri as used on the table that declares it.
// It reports false when no table in scope binds uri.
func (t *Table) LogUsed(uri string) bool {
	for table := t; table != nil; table = table.parent {
		if _, ok := table.byURI[uri]; ok {
			table.used[uri] = struct{}{}
			return true
		}
	}
	return false
}

// Used returns the bindings of this table that were marked used, well-known
// bindings first, each group in insertion order.
func (t *Table) Used() []Binding {
	var out []Binding
	for _, group := range [][]Binding{t.wellknown, t.custom} {
		for _, b := range group {
			if _, ok := t.used[b.URI]; ok {
				out = append(out, b)
			}
		}
	}
	return out
}

// DeclName returns the attribute name that declares b.
func (b Binding) DeclName() string {
	if b.Prefix == "" {
		return "xmlns"
	}
	return "xmlns:" + b.Prefix
}
