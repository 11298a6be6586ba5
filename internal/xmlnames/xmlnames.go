package xmlnames

const (
	// XMLPrefix is the reserved prefix for the XML namespace.
	XMLPrefix = "xml"
	// XMLNSPrefix is the reserved prefix for namespace declarations.
	XMLNSPrefix = "xmlns"
	// XSIPrefix is the conventional prefix for the schema instance namespace.
	XSIPrefix = "xsi"
	// XMLNamespace is the XML namespace URI.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
	// XMLNSNamespace is the XMLNS namespace URI.
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
	// XSINamespace is the XML Schema instance namespace URI.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"
	// XSIType is the qualified name of the polymorphic type hint attribute.
	XSIType = XSIPrefix + ":type"
)

// DefaultPrefixes returns the URI to prefix bindings every codec knows about.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		XSINamespace: XSIPrefix,
		XMLNamespace: XMLPrefix,
	}
}

// IsXMLNSAttr reports whether a qualified attribute name declares a namespace.
func IsXMLNSAttr(name string) bool {
	return name == XMLNSPrefix || (len(name) > len(XMLNSPrefix) && name[:len(XMLNSPrefix)+1] == XMLNSPrefix+":")
}
