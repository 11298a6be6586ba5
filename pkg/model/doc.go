// Package model describes schema-typed object graphs.
//
// A Registry is built from one or more package descriptors. Each package
// binds a namespace URI to a prefix and declares types; each type declares
// properties, inheriting those of its supertypes. Elements are instances of
// a type holding property values, an ordered bag of extension attributes and
// a back-reference to their structural parent. Generic elements stand for
// content outside any known package.
//
// A Registry is immutable once built and may be shared between goroutines.
package model
