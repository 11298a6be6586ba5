package namespace

import (
	"slices"
	"testing"
)

func TestTableAddRenamesOnCollision(t *testing.T) {
	root := NewTable(nil)
	a := root.Add("foo", "urn:a", false)
	b := root.Add("foo", "urn:b", false)
	c := root.Add("foo", "urn:c", false)
	if a.Prefix != "foo" || b.Prefix != "foo_1" || c.Prefix != "foo_2" {
		t.Fatalf("prefixes = %s, %s, %s", a.Prefix, b.Prefix, c.Prefix)
	}
	if again := root.Add("other", "urn:b", false); again.Prefix != "foo_1" {
		t.Fatalf("re-adding a bound uri = %+v, want existing binding", again)
	}
}

func TestTableDefaultNamespaceCollision(t *testing.T) {
	root := NewTable(nil)
	root.Add("", "urn:a", false)
	b := root.Add("", "urn:b", false)
	if b.Prefix != "ns_1" {
		t.Fatalf("prefix = %q, want ns_1", b.Prefix)
	}
	if b.DeclName() != "xmlns:ns_1" || (Binding{URI: "urn:a"}).DeclName() != "xmlns" {
		t.Fatalf("DeclName mismatch")
	}
}

func TestTableChainLookup(t *testing.T) {
	root := NewTable(nil)
	root.Add("p", "urn:p", true)
	child := NewTable(root)
	if child.Parent() != root {
		t.Fatalf("Parent() mismatch")
	}
	if b, ok := child.ByURI("urn:p"); !ok || b.Prefix != "p" {
		t.Fatalf("ByURI through parent = %+v, %v", b, ok)
	}
	if uri, ok := child.URIByPrefix("p"); !ok || uri != "urn:p" {
		t.Fatalf("URIByPrefix through parent = %q, %v", uri, ok)
	}
	local := child.Add("p", "urn:other", false)
	if local.Prefix != "p_1" {
		t.Fatalf("local collision prefix = %q, want p_1", local.Prefix)
	}
	if _, ok := root.ByURI("urn:other"); ok {
		t.Fatalf("local binding leaked into parent")
	}
}

func TestTableUsedMarksOwner(t *testing.T) {
	root := NewTable(nil)
	root.Add("custom", "urn:custom", false)
	root.Add("p", "urn:p", true)
	root.Add("unused", "urn:unused", true)
	child := NewTable(root)
	child.Add("local", "urn:local", false)

	if !child.LogUsed("urn:custom") || !child.LogUsed("urn:p") || !child.LogUsed("urn:local") {
		t.Fatalf("LogUsed reported unbound uri")
	}
	if child.LogUsed("urn:missing") {
		t.Fatalf("LogUsed(urn:missing) = true")
	}
	var got []string
	for _, b := range root.Used() {
		got = append(got, b.Prefix)
	}
	if want := []string{"p", "custom"}; !slices.Equal(got, want) {
		t.Fatalf("root Used() = %v, want %v", got, want)
	}
	if used := child.Used(); len(used) != 1 || used[0].Prefix != "local" {
		t.Fatalf("child Used() = %+v", used)
	}
}

func TestTableMapPrefix(t *testing.T) {
	root := NewTable(nil)
	root.MapPrefix("alias", "urn:a")
	if !root.Bound("alias") {
		t.Fatalf("alias not bound")
	}
	if b := root.Add("alias", "urn:b", false); b.Prefix != "alias_1" {
		t.Fatalf("prefix = %q, want alias_1", b.Prefix)
	}
	if b := root.Add("alias", "urn:a", false); b.Prefix != "alias" {
		t.Fatalf("prefix = %q, want alias", b.Prefix)
	}
}
