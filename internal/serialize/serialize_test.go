package serialize

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jacoelho/modelxml/errors"
	harness "github.com/jacoelho/modelxml/internal/testing"
	"github.com/jacoelho/modelxml/internal/xmlout"
	"github.com/jacoelho/modelxml/pkg/model"
)

func render(t *testing.T, cfg Config, el *model.Element, format bool) string {
	t.Helper()
	tree, err := Build(el, cfg)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	var b strings.Builder
	w := xmlout.NewWriter(&b, format)
	tree.SerializeTo(w)
	if err := w.Err(); err != nil {
		t.Fatalf("write error = %v", err)
	}
	return b.String()
}

func TestSerializeAttributes(t *testing.T) {
	reg := harness.Registry(t, "properties")
	el := reg.MustCreate("props:Attributes")
	el.Set("id", "A")
	el.Set("integerValue", 10)
	el.Set("realValue", 1.5)
	el.Set("defaultBooleanValue", true)

	got := render(t, Config{Registry: reg}, el, false)
	want := `<props:attributes xmlns:props="http://properties" id="A" realValue="1.5" integerValue="10" />`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}

	el.Set("defaultBooleanValue", false)
	if got := render(t, Config{Registry: reg}, el, false); !strings.Contains(got, `defaultBooleanValue="false"`) {
		t.Fatalf("non-default value not written: %s", got)
	}
}

func TestSerializeTypeHint(t *testing.T) {
	reg := harness.Registry(t, "properties")
	root := reg.MustCreate("props:ComplexAttrs")
	attrs := reg.MustCreate("props:SubAttributes")
	attrs.Set("integerValue", 10)
	root.Set("attrs", attrs)

	got := render(t, Config{Registry: reg}, root, false)
	want := `<props:complexAttrs xmlns:props="http://properties" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<props:attrs xsi:type="props:SubAttributes" integerValue="10" /></props:complexAttrs>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}

	declared := reg.MustCreate("props:Attributes")
	declared.Set("integerValue", 10)
	root.Set("attrs", declared)
	got = render(t, Config{Registry: reg}, root, false)
	want = `<props:complexAttrs xmlns:props="http://properties"><props:attrs integerValue="10" /></props:complexAttrs>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestSerializeTypePrefix(t *testing.T) {
	reg := harness.Registry(t, "typed")
	root := reg.MustCreate("ty:Root")
	circle := reg.MustCreate("ty:Circle")
	circle.Set("radius", 5)
	root.Set("shape", circle)

	got := render(t, Config{Registry: reg}, root, false)
	want := `<ty:root xmlns:ty="http://typed" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<ty:shape xsi:type="ty:tCircle" radius="5" /></ty:root>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestSerializeForeignTypeHint(t *testing.T) {
	reg := harness.Registry(t, "datatype", "external")
	root := reg.MustCreate("dt:Root")
	rect := reg.MustCreate("dt:Rect")
	rect.Set("y", 2)
	root.Add("otherBounds", rect)

	got := render(t, Config{Registry: reg}, root, false)
	want := `<dt:root xmlns:dt="http://datatypes" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dt:otherBounds xsi:type="dt:Rect" y="2" /></dt:root>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestSerializeBodyAndValues(t *testing.T) {
	reg := harness.Registry(t, "properties")
	body := reg.MustCreate("props:SimpleBody")
	body.Set("body", "<h2>Hello</h2>")
	got := render(t, Config{Registry: reg}, body, true)
	want := `<props:simpleBody xmlns:props="http://properties"><![CDATA[<h2>Hello</h2>]]></props:simpleBody>` + "\n"
	if got != want {
		t.Fatalf("output = %q\nwant     %q", got, want)
	}

	values := reg.MustCreate("props:SimpleBodyProperties")
	values.Set("intValue", 5)
	values.Add("str", "A")
	values.Add("str", "<B>")
	got = render(t, Config{Registry: reg}, values, true)
	want = `<props:simpleBodyProperties xmlns:props="http://properties">
  <props:intValue>5</props:intValue>
  <props:str>A</props:str>
  <props:str>&lt;B&gt;</props:str>
</props:simpleBodyProperties>
`
	if got != want {
		t.Fatalf("output = %q\nwant     %q", got, want)
	}
}

func TestSerializeNestedFormatting(t *testing.T) {
	reg := harness.Registry(t, "properties")
	root := reg.MustCreate("props:ComplexNesting")
	root.Set("id", "N_0")
	inner := reg.MustCreate("props:ComplexNesting")
	inner.Set("id", "N_1")
	leaf := reg.MustCreate("props:Complex")
	leaf.Set("id", "C_1")
	inner.Add("nested", leaf)
	root.Add("nested", inner)

	got := render(t, Config{Registry: reg}, root, true)
	want := `<props:complexNesting xmlns:props="http://properties" id="N_0">
  <props:complexNesting id="N_1">
    <props:complex id="C_1" />
  </props:complexNesting>
</props:complexNesting>
`
	if got != want {
		t.Fatalf("output = %q\nwant     %q", got, want)
	}
}

func TestSerializeReferences(t *testing.T) {
	reg := harness.Registry(t, "properties")
	c1 := reg.MustCreate("props:Complex")
	c1.Set("id", "C_1")
	c2 := reg.MustCreate("props:Complex")
	c2.Set("id", "C_2")

	single := reg.MustCreate("props:ReferencingSingle")
	single.Set("referencedComplex", c1)
	if got := render(t, Config{Registry: reg}, single, false); got != `<props:referencingSingle xmlns:props="http://properties" referencedComplex="C_1" />` {
		t.Fatalf("single = %s", got)
	}

	attrCol := reg.MustCreate("props:ReferencingAttrCollection")
	attrCol.Add("refs", c1)
	attrCol.Add("refs", c2)
	if got := render(t, Config{Registry: reg}, attrCol, false); got != `<props:referencingAttrCollection xmlns:props="http://properties" refs="C_1 C_2" />` {
		t.Fatalf("attr collection = %s", got)
	}

	col := reg.MustCreate("props:ReferencingCollection")
	col.Add("references", c1)
	col.Add("references", c2)
	want := `<props:referencingCollection xmlns:props="http://properties">` +
		`<props:references>C_1</props:references><props:references>C_2</props:references></props:referencingCollection>`
	if got := render(t, Config{Registry: reg}, col, false); got != want {
		t.Fatalf("collection = %s", got)
	}
}

func TestSerializeInheritedAttributeUnprefixed(t *testing.T) {
	reg := harness.Registry(t, "properties", "extended")
	root := reg.MustCreate("ext:Root")
	root.Set("id", "R")
	child := reg.MustCreate("ext:ExtendedComplex")
	child.Set("id", "E")
	child.Set("numCount", 3)
	root.Add("any", child)

	got := render(t, Config{Registry: reg}, root, false)
	want := `<ext:root xmlns:ext="http://extended" id="R"><ext:extendedComplex id="E" numCount="3" /></ext:root>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestSerializePropertyMode(t *testing.T) {
	reg := harness.Registry(t, "properties")
	labeled := reg.MustCreate("props:Labeled")
	labeled.Set("id", "X")
	label := reg.MustCreate("props:Complex")
	label.Set("id", "L")
	labeled.Set("label", label)

	got := render(t, Config{Registry: reg}, labeled, false)
	want := `<props:labeled xmlns:props="http://properties" id="X"><props:label id="L" /></props:labeled>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestSerializePrefixCollision(t *testing.T) {
	reg := harness.Registry(t, "extensions")
	root := reg.MustCreate("e:Root")
	root.Add("extensions", reg.CreateAny("e:foo", "urn:other", nil))
	root.Add("extensions", reg.CreateAny("e:bar", "urn:third", nil))

	got := render(t, Config{Registry: reg}, root, false)
	want := `<e:root xmlns:e="http://extensions" xmlns:e_1="urn:other" xmlns:e_2="urn:third"><e_1:foo /><e_2:bar /></e:root>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
	names := harness.ExpandedNames(t, got)
	if names[1] != "{urn:other}foo" || names[2] != "{urn:third}bar" {
		t.Fatalf("expanded names = %v", names)
	}
}

func TestSerializeLocalNamespaces(t *testing.T) {
	reg := harness.Registry(t, "extensions", "properties")
	root := reg.MustCreate("e:Root")
	root.SetAttr("xmlns:e", "http://extensions")
	root.SetAttr("xmlns:props", "http://properties")
	meta := reg.CreateAny("x:meta", "urn:x", []model.Attr{
		{Name: "xmlns:x", Value: "urn:x"},
		{Name: "x:a", Value: "1"},
		{Name: "xml:lang", Value: "en"},
	})
	meta.AddChild(reg.CreateAny("x:child", "urn:x", nil))
	root.Add("extensions", meta)

	got := render(t, Config{Registry: reg}, root, false)
	want := `<e:root xmlns:e="http://extensions"><x:meta xmlns:x="urn:x" a="1" xml:lang="en"><x:child /></x:meta></e:root>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
	decls := harness.Declarations(t, got)
	if len(decls) != 2 {
		t.Fatalf("declarations = %v", decls)
	}
}

func TestSerializeDefaultNamespace(t *testing.T) {
	reg := harness.Registry(t, "properties")
	root := reg.MustCreate("props:ContainedCollection")
	root.SetAttr("xmlns", "http://properties")
	child := reg.MustCreate("props:Complex")
	child.Set("id", "C")
	root.Add("children", child)

	got := render(t, Config{Registry: reg}, root, false)
	want := `<containedCollection xmlns="http://properties"><complex id="C" /></containedCollection>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestSerializeGenericBody(t *testing.T) {
	reg := harness.Registry(t, "extensions")
	root := reg.MustCreate("e:Root")
	root.Set("id", "ROOT")
	plain := reg.CreateAny("plain", "", []model.Attr{{Name: "a", Value: `x"<`}})
	plain.SetBody("a & b")
	root.Add("extensions", plain)

	got := render(t, Config{Registry: reg}, root, false)
	want := `<e:root xmlns:e="http://extensions"><e:id>ROOT</e:id><plain a="x&#34;&#60;"><![CDATA[a & b]]></plain></e:root>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}

func TestSerializeMissingNamespace(t *testing.T) {
	reg := harness.Registry(t, "extensions")
	root := reg.MustCreate("e:Root")
	root.Add("extensions", reg.CreateAny("zz:foo", "", nil))
	_, err := Build(root, Config{Registry: reg})
	if !errors.HasCode(err, errors.ErrMissingNamespace) || err.Error() != "no namespace uri given for prefix <zz>" {
		t.Fatalf("Build error = %v", err)
	}
}

func TestSerializeDropsUnboundAttribute(t *testing.T) {
	reg := harness.Registry(t, "extensions")
	core, logs := observer.New(zap.WarnLevel)
	root := reg.MustCreate("e:Root")
	root.SetAttr("zz:a", "1")
	root.SetAttr("b", "2")

	got := render(t, Config{Registry: reg, Logger: zap.New(core)}, root, false)
	if got != `<e:root xmlns:e="http://extensions" b="2" />` {
		t.Fatalf("output = %s", got)
	}
	if logs.Len() != 1 || logs.All()[0].ContextMap()["attribute"] != "zz:a" {
		t.Fatalf("logged = %v", logs.All())
	}
}

func TestSerializeCustomNamespaceMap(t *testing.T) {
	reg := harness.Registry(t, "extensions")
	root := reg.MustCreate("e:Root")
	foo := reg.CreateAny("foo:bar", "urn:foo", []model.Attr{{Name: "foo:attr", Value: "1"}})
	root.Add("extensions", foo)

	got := render(t, Config{Registry: reg, Namespaces: map[string]string{"urn:foo": "foo"}}, root, false)
	want := `<e:root xmlns:e="http://extensions" xmlns:foo="urn:foo"><foo:bar attr="1" /></e:root>`
	if got != want {
		t.Fatalf("output = %s\nwant     %s", got, want)
	}
}
