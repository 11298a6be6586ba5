// Package modelxml reads XML documents into instances of a namespaced,
// schema-typed model and writes such instances back as namespace-correct
// XML.
//
// Types come from a model.Registry built from package descriptors. A Reader
// routes elements and attributes to the properties of those types, follows
// xsi:type hints, resolves id references once the document has been read
// and keeps content outside the model as generic elements. A Writer emits
// the minimal set of namespace declarations, renames colliding prefixes and
// writes xsi:type hints where a value's type differs from the declared one.
//
// Readers and Writers hold no per-call state and may be shared between
// goroutines.
package modelxml
