package parsectx

import (
	"regexp"
	"slices"

	"github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/pkg/model"
)

var idPattern = regexp.MustCompile(`(?i)^([a-z][\w\-.]*:)?[a-z_][\w\-.]*$`)

// Context collects the state of one parse: elements by id, pending
// references and warnings.
type Context struct {
	elementsByID map[string]*model.Element
	references   []*model.Reference
	warnings     []errors.Warning
}

// New returns an empty parse context.
func New() *Context {
	return &Context{elementsByID: make(map[string]*model.Element)}
}

// AddElement registers el by id when its type declares an id property and
// the id is set.
func (c *Context) AddElement(el *model.Element) error {
	if el.Type().IDProperty == nil {
		return nil
	}
	id := el.ID()
	if id == "" {
		return nil
	}
	if !idPattern.MatchString(id) {
		return errors.Newf(errors.ErrIllegalID, "illegal ID <%s>", id)
	}
	if _, ok := c.elementsByID[id]; ok {
		return errors.Newf(errors.ErrDuplicateID, "duplicate ID <%s>", id)
	}
	c.elementsByID[id] = el
	return nil
}

// AddReference queues a reference for resolution.
func (c *Context) AddReference(ref *model.Reference) {
	c.references = append(c.references, ref)
}

// AddWarning records a warning.
func (c *Context) AddWarning(w errors.Warning) {
	c.warnings = append(c.warnings, w)
}

// ElementsByID returns the registered elements.
func (c *Context) ElementsByID() map[string]*model.Element {
	return c.elementsByID
}

// References returns the queued references in encounter order.
func (c *Context) References() []*model.Reference {
	return c.references
}

// Warnings returns the warnings in the order they were recorded.
func (c *Context) Warnings() []errors.Warning {
	return c.warnings
}

// Resolve binds every queued reference to its target. Placeholders whose
// target is missing produce an UnresolvedReference warning and are removed:
// collections drop them, single properties are unset.
func (c *Context) Resolve() {
	compact := make(map[*model.Element][]string)
	for _, ref := range c.references {
		target, ok := c.elementsByID[ref.ID]
		if !ok {
			c.AddWarning(errors.Warning{
				Code:     errors.ErrUnresolvedReference,
				Message:  "unresolved reference <" + ref.ID + ">",
				Element:  ref.Element,
				Property: ref.Property,
				Value:    ref.ID,
			})
			p := ref.Element.Type().Property(ref.Property)
			switch {
			case p == nil:
			case p.IsMany:
				if !slices.Contains(compact[ref.Element], p.Name) {
					compact[ref.Element] = append(compact[ref.Element], p.Name)
				}
			default:
				if cur, ok := ref.Element.Get(p.Name).(*model.Reference); ok && cur == ref {
					ref.Element.Unset(p.Name)
				}
			}
			continue
		}
		ref.Target = target
		bind(ref, target)
	}
	for el, props := range compact {
		for _, name := range props {
			dropPlaceholders(el, name)
		}
	}
}

func bind(ref *model.Reference, target *model.Element) {
	el := ref.Element
	p := el.Type().Property(ref.Property)
	if p == nil {
		return
	}
	if !p.IsMany {
		el.Set(p.Name, target)
		return
	}
	list := el.List(p.Name)
	for i, v := range list {
		if slot, ok := v.(*model.Reference); ok && slot == ref {
			list[i] = target
			return
		}
	}
}

func dropPlaceholders(el *model.Element, name string) {
	list := el.List(name)
	kept := list[:0]
	for _, v := range list {
		if _, pending := v.(*model.Reference); pending {
			continue
		}
		kept = append(kept, v)
	}
	clear(list[len(kept):])
	el.Set(name, kept)
}
