// Package xmltext tokenizes XML 1.0 documents.
//
// The decoder is namespace-unaware: element and attribute names are returned
// split at the first colon but prefixes are not resolved. Entity and
// character references are expanded in character data and attribute values.
// Line and column positions are 1-based and refer to the first byte of a token.
//
// Document type declarations are skipped. Comments and processing
// instructions are skipped unless enabled through Options; the XML
// declaration is always reported as a KindPI token with IsXMLDecl set.
package xmltext
