package xmlnames

import "testing"

func TestIsXMLNSAttr(t *testing.T) {
	tests := map[string]bool{
		"xmlns":       true,
		"xmlns:foo":   true,
		"xmlnsfoo":    false,
		"xml:lang":    false,
		"foo:xmlns":   false,
		"xmlns:":      true,
		"props:attrs": false,
	}
	for name, want := range tests {
		if got := IsXMLNSAttr(name); got != want {
			t.Fatalf("IsXMLNSAttr(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestDefaultPrefixes(t *testing.T) {
	prefixes := DefaultPrefixes()
	if prefixes[XSINamespace] != XSIPrefix || prefixes[XMLNamespace] != XMLPrefix {
		t.Fatalf("DefaultPrefixes() = %v", prefixes)
	}
	prefixes[XSINamespace] = "changed"
	if DefaultPrefixes()[XSINamespace] != XSIPrefix {
		t.Fatalf("DefaultPrefixes shares state between calls")
	}
}
