// Package harness provides shared model fixtures and XML assertions for tests.
package harness

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/jacoelho/modelxml/pkg/model"
)

//go:embed models
var models embed.FS

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Fixture package files by short name.
var fixtures = map[string]string{
	"properties": "models/properties.yaml",
	"extended":   "models/properties-extended.yaml",
	"datatype":   "models/datatype.yaml",
	"external":   "models/datatype-external.yaml",
	"extensions": "models/extensions.yaml",
	"noalias":    "models/noalias.yaml",
	"typed":      "models/typed.json",
}

// Models returns the embedded fixture package files.
func Models() fs.FS {
	return models
}

// Load builds a registry from the named fixture packages.
func Load(names ...string) (*model.Registry, error) {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, ok := fixtures[name]
		if !ok {
			return nil, fmt.Errorf("unknown fixture %q", name)
		}
		paths = append(paths, path)
	}
	return model.LoadFS(models, paths...)
}

// Registry is Load for tests.
func Registry(tb testing.TB, names ...string) *model.Registry {
	tb.Helper()
	reg, err := Load(names...)
	if err != nil {
		tb.Fatalf("load fixtures %v: %v", names, err)
	}
	return reg
}

// ParseXML parses a document with etree.
func ParseXML(tb testing.TB, xml string) *etree.Document {
	tb.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		tb.Fatalf("parse XML: %v\n%s", err, xml)
	}
	return doc
}

// ExpandedNames lists every element of the document in document order as
// {uri}local, with attributes other than namespace declarations appended as
// @{uri}local. Unresolvable prefixes fail the test.
func ExpandedNames(tb testing.TB, xml string) []string {
	tb.Helper()
	doc := ParseXML(tb, xml)
	var out []string
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		uri := el.NamespaceURI()
		if el.Space != "" && uri == "" {
			tb.Fatalf("element %s:%s has unbound prefix", el.Space, el.Tag)
		}
		out = append(out, "{"+uri+"}"+el.Tag)
		for _, attr := range el.Attr {
			if attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns") {
				continue
			}
			attrURI := ""
			switch attr.Space {
			case "":
			case "xml":
				attrURI = xmlNamespace
			default:
				attrURI = attr.NamespaceURI()
				if attrURI == "" {
					tb.Fatalf("attribute %s:%s has unbound prefix", attr.Space, attr.Key)
				}
			}
			out = append(out, "@{"+attrURI+"}"+attr.Key)
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	if root := doc.Root(); root != nil {
		walk(root)
	}
	return out
}

// Declarations returns the namespace declarations of every element, keyed by
// element path, as prefix=uri strings in document order.
func Declarations(tb testing.TB, xml string) map[string][]string {
	tb.Helper()
	doc := ParseXML(tb, xml)
	out := make(map[string][]string)
	var walk func(el *etree.Element, path string)
	walk = func(el *etree.Element, path string) {
		path = path + "/" + el.FullTag()
		for _, attr := range el.Attr {
			switch {
			case attr.Space == "xmlns":
				out[path] = append(out[path], attr.Key+"="+attr.Value)
			case attr.Space == "" && attr.Key == "xmlns":
				out[path] = append(out[path], "="+attr.Value)
			}
		}
		for _, child := range el.ChildElements() {
			walk(child, path)
		}
	}
	if root := doc.Root(); root != nil {
		walk(root, "")
	}
	return out
}

// Compact strips the indentation of a pretty-printed expectation so it can be
// compared to unformatted output.
func Compact(xml string) string {
	lines := strings.Split(xml, "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strings.TrimSpace(line))
	}
	return b.String()
}
