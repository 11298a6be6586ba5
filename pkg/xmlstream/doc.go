// Package xmlstream provides a namespace-aware streaming XML reader built on xmltext.
//
// Events carry both the lexical prefix and the resolved namespace URI of
// element and attribute names. Namespace declarations are retained as
// attributes in document order so callers can preserve them verbatim.
package xmlstream
