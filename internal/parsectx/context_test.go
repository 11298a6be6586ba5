package parsectx

import (
	"testing"

	"github.com/jacoelho/modelxml/errors"
	"github.com/jacoelho/modelxml/pkg/model"
)

func testRegistry(t *testing.T) *model.Registry {
	t.Helper()
	reg, err := model.New(model.PackageDescriptor{
		Name:   "Properties",
		URI:    "http://properties",
		Prefix: "props",
		Types: []model.TypeDescriptor{
			{Name: "Node", Properties: []model.PropertyDescriptor{
				{Name: "id", Type: "String", IsAttr: true, IsID: true},
				{Name: "single", Type: "Node", IsAttr: true, IsReference: true},
				{Name: "many", Type: "Node", IsMany: true, IsReference: true},
			}},
			{Name: "Plain"},
		},
	})
	if err != nil {
		t.Fatalf("model.New error = %v", err)
	}
	return reg
}

func newNode(reg *model.Registry, id string) *model.Element {
	el := reg.MustCreate("props:Node")
	if id != "" {
		el.Set("id", id)
	}
	return el
}

func TestAddElement(t *testing.T) {
	reg := testRegistry(t)
	ctx := New()
	if err := ctx.AddElement(newNode(reg, "a")); err != nil {
		t.Fatalf("AddElement error = %v", err)
	}
	if err := ctx.AddElement(newNode(reg, "")); err != nil {
		t.Fatalf("AddElement without id error = %v", err)
	}
	if err := ctx.AddElement(reg.MustCreate("props:Plain")); err != nil {
		t.Fatalf("AddElement without id property error = %v", err)
	}

	err := ctx.AddElement(newNode(reg, "a"))
	if !errors.HasCode(err, errors.ErrDuplicateID) || err.Error() != "duplicate ID <a>" {
		t.Fatalf("duplicate error = %v", err)
	}
	if len(ctx.ElementsByID()) != 1 {
		t.Fatalf("ElementsByID() = %d entries, want 1", len(ctx.ElementsByID()))
	}
}

func TestAddElementIllegalID(t *testing.T) {
	reg := testRegistry(t)
	for _, id := range []string{"1abc", "a b", "a:", ":a", "a:b:c"} {
		err := New().AddElement(newNode(reg, id))
		if !errors.HasCode(err, errors.ErrIllegalID) {
			t.Fatalf("AddElement(%q) error = %v, want illegal ID", id, err)
		}
	}
	for _, id := range []string{"a", "_a", "A-1.b", "ns:Name_1", "Task_0x9"} {
		if err := New().AddElement(newNode(reg, id)); err != nil {
			t.Fatalf("AddElement(%q) error = %v", id, err)
		}
	}
}

func TestResolveNoReferences(t *testing.T) {
	ctx := New()
	ctx.Resolve()
	if len(ctx.Warnings()) != 0 || len(ctx.References()) != 0 {
		t.Fatalf("Resolve on empty context changed state")
	}
}

func TestResolveSingle(t *testing.T) {
	reg := testRegistry(t)
	ctx := New()
	target := newNode(reg, "target")
	owner := newNode(reg, "owner")
	missingOwner := newNode(reg, "other")
	for _, el := range []*model.Element{target, owner, missingOwner} {
		if err := ctx.AddElement(el); err != nil {
			t.Fatalf("AddElement error = %v", err)
		}
	}
	found := &model.Reference{Element: owner, Property: "props:single", ID: "target"}
	owner.Set("single", found)
	ctx.AddReference(found)
	missing := &model.Reference{Element: missingOwner, Property: "props:single", ID: "nope"}
	missingOwner.Set("single", missing)
	ctx.AddReference(missing)

	ctx.Resolve()

	if owner.Get("single") != target || found.Target != target {
		t.Fatalf("single reference not bound")
	}
	if missingOwner.Has("single") {
		t.Fatalf("unresolved single reference still set")
	}
	warnings := ctx.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v", warnings)
	}
	w := warnings[0]
	if w.Code != errors.ErrUnresolvedReference || w.Message != "unresolved reference <nope>" ||
		w.Element != missingOwner || w.Property != "props:single" || w.Value != "nope" {
		t.Fatalf("warning = %+v", w)
	}
}

func TestResolveCollectionCompacts(t *testing.T) {
	reg := testRegistry(t)
	ctx := New()
	owner := newNode(reg, "owner")
	first := newNode(reg, "first")
	second := newNode(reg, "second")
	for _, el := range []*model.Element{owner, first, second} {
		if err := ctx.AddElement(el); err != nil {
			t.Fatalf("AddElement error = %v", err)
		}
	}
	for _, id := range []string{"first", "missing", "second", "gone"} {
		ref := &model.Reference{Element: owner, Property: "props:many", ID: id}
		owner.Add("many", ref)
		ctx.AddReference(ref)
	}

	ctx.Resolve()

	list := owner.List("many")
	if len(list) != 2 || list[0] != first || list[1] != second {
		t.Fatalf("many = %#v", list)
	}
	if len(ctx.Warnings()) != 2 {
		t.Fatalf("warnings = %d, want 2", len(ctx.Warnings()))
	}
	if ctx.Warnings()[0].Value != "missing" || ctx.Warnings()[1].Value != "gone" {
		t.Fatalf("warning order = %+v", ctx.Warnings())
	}
}

func TestResolveDuplicateTargets(t *testing.T) {
	reg := testRegistry(t)
	ctx := New()
	owner := newNode(reg, "owner")
	target := newNode(reg, "t")
	_ = ctx.AddElement(owner)
	_ = ctx.AddElement(target)
	for range 2 {
		ref := &model.Reference{Element: owner, Property: "props:many", ID: "t"}
		owner.Add("many", ref)
		ctx.AddReference(ref)
	}
	ctx.Resolve()
	list := owner.List("many")
	if len(list) != 2 || list[0] != target || list[1] != target {
		t.Fatalf("many = %#v", list)
	}
}
