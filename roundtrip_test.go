package modelxml_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jacoelho/modelxml"
	harness "github.com/jacoelho/modelxml/internal/testing"
)

func roundTrip(t *testing.T, readOpts modelxml.ReadOptions, writeOpts modelxml.WriteOptions, doc, typeName string, fixtures ...string) string {
	t.Helper()
	reg := harness.Registry(t, fixtures...)
	r, err := modelxml.NewReader(reg, readOpts)
	if err != nil {
		t.Fatalf("NewReader error = %v", err)
	}
	w := newWriter(t, reg, writeOpts.WithPreamble(false))

	res, err := r.FromXML(context.Background(), strings.NewReader(doc), typeName)
	if err != nil {
		t.Fatalf("FromXML error = %v", err)
	}
	out, err := w.ToXML(res.Root)
	if err != nil {
		t.Fatalf("ToXML error = %v", err)
	}

	again, err := r.FromXML(context.Background(), strings.NewReader(out), typeName)
	if err != nil {
		t.Fatalf("FromXML of written document error = %v\n%s", err, out)
	}
	second, err := w.ToXML(again.Root)
	if err != nil {
		t.Fatalf("second ToXML error = %v", err)
	}
	if second != out {
		t.Fatalf("round trip not stable:\nfirst  %s\nsecond %s", out, second)
	}
	return out
}

func TestRoundTripDocuments(t *testing.T) {
	tests := []struct {
		name     string
		fixtures []string
		typeName string
		doc      string
	}{
		{
			name:     "attributes",
			fixtures: []string{"properties"},
			typeName: "props:Attributes",
			doc:      `<props:attributes xmlns:props="http://properties" id="A" realValue="1.5" integerValue="3" booleanValue="true" />`,
		},
		{
			name:     "type hint",
			fixtures: []string{"properties"},
			typeName: "props:ComplexAttrs",
			doc: `<props:complexAttrs xmlns:props="http://properties" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
				`<props:attrs xsi:type="props:SubAttributes" integerValue="10" /></props:complexAttrs>`,
		},
		{
			name:     "type prefix",
			fixtures: []string{"typed"},
			typeName: "ty:Root",
			doc: `<ty:root xmlns:ty="http://typed" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
				`<ty:shape xsi:type="ty:tCircle" radius="5" /></ty:root>`,
		},
		{
			name:     "references",
			fixtures: []string{"properties"},
			typeName: "props:Root",
			doc: `<props:root xmlns:props="http://properties" id="R">` +
				`<props:referencingSingle id="S" referencedComplex="C" />` +
				`<props:referencingAttrCollection id="A" refs="C S" />` +
				`<props:referencingCollection id="L"><props:references>C</props:references><props:references>S</props:references></props:referencingCollection>` +
				`<props:complex id="C" /></props:root>`,
		},
		{
			name:     "values and body",
			fixtures: []string{"properties"},
			typeName: "props:SimpleBodyProperties",
			doc: `<props:simpleBodyProperties xmlns:props="http://properties">` +
				`<props:intValue>5</props:intValue><props:boolValue>false</props:boolValue>` +
				`<props:str>A</props:str><props:str>B &amp; C</props:str></props:simpleBodyProperties>`,
		},
		{
			name:     "default namespace",
			fixtures: []string{"properties"},
			typeName: "props:ContainedCollection",
			doc:      `<containedCollection xmlns="http://properties" id="R"><complex id="A" /><complex id="B" /></containedCollection>`,
		},
		{
			name:     "generic content",
			fixtures: []string{"extensions"},
			typeName: "e:Root",
			doc: `<e:root xmlns:e="http://extensions" xmlns:other="urn:other">` +
				`<other:meta xml:lang="en" kind="x"><other:child><![CDATA[a < b]]></other:child><other:note>plain text</other:note></other:meta></e:root>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, modelxml.NewReadOptions(), modelxml.NewWriteOptions(), tt.doc, tt.typeName, tt.fixtures...)
			if got != tt.doc {
				t.Fatalf("round trip =\n%s\nwant\n%s", got, tt.doc)
			}
		})
	}
}

func TestRoundTripNamespaceMapKeepsPrefixes(t *testing.T) {
	ns := map[string]string{"urn:foo": "foo", "urn:bar": "bar"}
	doc := `<e:root xmlns:e="http://extensions" xmlns:foo="urn:foo" xmlns:bar="urn:bar">` +
		`<foo:meta bar:attr="1"><foo:child>text</foo:child></foo:meta></e:root>`

	got := roundTrip(t,
		modelxml.NewReadOptions().WithNamespaceMap(ns),
		modelxml.NewWriteOptions().WithNamespaceMap(ns),
		doc, "e:Root", "extensions")
	if got != doc {
		t.Fatalf("round trip =\n%s\nwant\n%s", got, doc)
	}
}

func TestRoundTripPrefixCollision(t *testing.T) {
	doc := `<e:root xmlns:e="http://extensions"><e:foo xmlns:e="urn:other" /></e:root>`
	got := roundTrip(t, modelxml.NewReadOptions(), modelxml.NewWriteOptions(), doc, "e:Root", "extensions")

	want := `<e:root xmlns:e="http://extensions"><e_1:foo xmlns:e_1="urn:other" /></e:root>`
	if got != want {
		t.Fatalf("round trip = %s\nwant         %s", got, want)
	}
	names := harness.ExpandedNames(t, got)
	if strings.Join(names, " ") != "{http://extensions}root {urn:other}foo" {
		t.Fatalf("names = %v", names)
	}
}

func TestRoundTripDropsUnusedDeclarations(t *testing.T) {
	doc := `<e:root xmlns:e="http://extensions" xmlns:props="http://properties"><e:id>X</e:id></e:root>`
	got := roundTrip(t, modelxml.NewReadOptions(), modelxml.NewWriteOptions(), doc, "e:Root", "extensions", "properties")
	if want := `<e:root xmlns:e="http://extensions"><e:id>X</e:id></e:root>`; got != want {
		t.Fatalf("round trip = %s\nwant         %s", got, want)
	}
}
