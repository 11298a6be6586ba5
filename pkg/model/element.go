package model

// Attr is an extension attribute kept verbatim for round-tripping.
type Attr struct {
	Name  string
	Value string
}

// Reference is a pending identifier reference held in a property slot until
// the target is resolved.
type Reference struct {
	// Element owns the referencing property.
	Element *Element
	// Property is the qualified name of the referencing property.
	Property string
	ID       string
	Target   *Element
}

// Element is an instance of a model type.
type Element struct {
	typ    *Type
	values map[string]any
	attrs  []Attr
	parent *Element

	// generic content
	body     string
	hasBody  bool
	children []*Element
}

// Type returns the descriptor the element was created from.
func (e *Element) Type() *Type {
	return e.typ
}

// Is reports whether the element is an instance of the named type.
func (e *Element) Is(typeName string) bool {
	return e.typ.HasType(typeName)
}

// Generic reports whether the element represents content outside the model.
func (e *Element) Generic() bool {
	return e.typ.Generic
}

// Parent returns the structural parent, or nil for roots.
func (e *Element) Parent() *Element {
	return e.parent
}

// SetParent records the structural parent. It does not add e to parent.
func (e *Element) SetParent(parent *Element) {
	e.parent = parent
}

// ID returns the value of the id property, or "".
func (e *Element) ID() string {
	if e.typ.IDProperty == nil {
		return ""
	}
	id, _ := e.values[e.typ.IDProperty.Name].(string)
	return id
}

// Get returns a property value. Unset single properties yield their default;
// unset many properties yield a new empty sequence that is not stored. Names
// that are not properties read the extension attribute bag. Get never
// modifies the element.
func (e *Element) Get(name string) any {
	p := e.typ.Property(name)
	if p == nil {
		if v, ok := e.Attr(name); ok {
			return v
		}
		return nil
	}
	if v, ok := e.values[p.Name]; ok {
		return v
	}
	if p.IsMany {
		return []any{}
	}
	return p.Default
}

// List returns the values of a many property.
func (e *Element) List(name string) []any {
	list, _ := e.Get(name).([]any)
	return list
}

// Has reports whether a property value was set explicitly.
func (e *Element) Has(name string) bool {
	p := e.typ.Property(name)
	if p == nil {
		_, ok := e.Attr(name)
		return ok
	}
	_, ok := e.values[p.Name]
	return ok
}

// Set assigns a property value. Names that are not properties are stored in
// the extension attribute bag in their lexical form.
func (e *Element) Set(name string, v any) {
	p := e.typ.Property(name)
	if p == nil {
		e.SetAttr(name, Format(v))
		return
	}
	e.set(p.Name, v)
}

// Unset removes an explicitly set property value.
func (e *Element) Unset(name string) {
	if p := e.typ.Property(name); p != nil {
		delete(e.values, p.Name)
	}
}

// Add appends a value to a many property.
func (e *Element) Add(name string, v any) {
	p := e.typ.Property(name)
	if p == nil {
		return
	}
	list, _ := e.values[p.Name].([]any)
	e.set(p.Name, append(list, v))
}

func (e *Element) set(name string, v any) {
	if e.values == nil {
		e.values = make(map[string]any)
	}
	e.values[name] = v
}

// Attrs returns the extension attributes in insertion order.
func (e *Element) Attrs() []Attr {
	return e.attrs
}

// Attr returns the value of an extension attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetAttr sets an extension attribute, keeping the position of an existing one.
func (e *Element) SetAttr(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
}

// Body returns the text body of a generic element.
func (e *Element) Body() (string, bool) {
	return e.body, e.hasBody
}

// SetBody sets the text body of a generic element.
func (e *Element) SetBody(body string) {
	e.body = body
	e.hasBody = true
}

// Children returns the generic children in document order.
func (e *Element) Children() []*Element {
	return e.children
}

// AddChild appends a generic child and sets its parent.
func (e *Element) AddChild(child *Element) {
	child.parent = e
	e.children = append(e.children, child)
}
