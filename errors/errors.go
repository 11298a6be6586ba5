package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/modelxml/pkg/model"
)

// Code classifies codec errors and warnings.
type Code string

const (
	// ErrXMLSyntax indicates the document is not well-formed.
	ErrXMLSyntax Code = "xml-syntax"
	// ErrFailedToParseDocument indicates no root element was produced.
	ErrFailedToParseDocument Code = "failed-to-parse-document"
	// ErrUnparsableContent wraps a failure raised while opening an element.
	ErrUnparsableContent Code = "unparsable-content"

	// ErrDuplicateID indicates two elements declare the same id.
	ErrDuplicateID Code = "duplicate-id"
	// ErrIllegalID indicates an id value that is not a valid identifier.
	ErrIllegalID Code = "illegal-id"
	// ErrUnexpectedElement indicates the root element does not match the expected type.
	ErrUnexpectedElement Code = "unexpected-element"
	// ErrUnrecognizedElement indicates a child that maps to no property.
	ErrUnrecognizedElement Code = "unrecognized-element"
	// ErrUnknownType indicates a type name the model does not declare.
	ErrUnknownType Code = "unknown-type"
	// ErrUnexpectedSubNode indicates child elements inside a value element.
	ErrUnexpectedSubNode Code = "unexpected-sub-node"
	// ErrInvalidValue indicates text that does not coerce to the property type.
	ErrInvalidValue Code = "invalid-value"

	// ErrUnresolvedReference warns about a reference to an unknown id.
	ErrUnresolvedReference Code = "unresolved-reference"
	// ErrUnknownAttribute warns about an undeclared attribute in a model namespace.
	ErrUnknownAttribute Code = "unknown-attribute"
	// ErrUnexpectedBodyText warns about text inside an element without a body.
	ErrUnexpectedBodyText Code = "unexpected-body-text"
	// ErrUnsupportedEncoding warns about a declared encoding other than UTF-8.
	ErrUnsupportedEncoding Code = "unsupported-encoding"
	// ErrAmbiguousProperty warns when several properties accept a child element.
	ErrAmbiguousProperty Code = "ambiguous-property"

	// ErrMissingNamespace indicates a prefix without namespace URI while writing.
	ErrMissingNamespace Code = "missing-namespace"
)

// Error is a codec error with a code and optional position.
type Error struct {
	Code    Code
	Message string
	Line    int
	Column  int
	Err     error
}

// New builds an Error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf formats a message and builds an Error.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap builds an Error with an underlying cause.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Error returns the message. Positional context, when wanted, is part of it.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Unwrap exposes the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HasCode reports whether any Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// CodeOf returns the code of the outermost Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Code, true
}

// Warning is a non-fatal diagnostic collected while reading.
type Warning struct {
	Code     Code
	Message  string
	Element  *model.Element
	Property string
	Value    string
	Err      error
}

// String formats the warning for display.
func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	if w.Property != "" {
		b.WriteString(fmt.Sprintf(" (property: %s)", w.Property))
	}
	if w.Value != "" {
		b.WriteString(fmt.Sprintf(" (value: %s)", w.Value))
	}
	return b.String()
}

// ParseError is returned by failed reads. It carries the warnings collected
// before the failure.
type ParseError struct {
	Err      error
	Warnings []Warning
}

// Error returns the message of the underlying failure.
func (e *ParseError) Error() string {
	if e == nil || e.Err == nil {
		return "parse error"
	}
	return e.Err.Error()
}

// Unwrap exposes the underlying failure.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsParseError extracts a ParseError from err.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if err == nil || !errors.As(err, &pe) {
		return nil, false
	}
	return pe, true
}
