package modelxml

import (
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/jacoelho/modelxml/pkg/xmlstream"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

type boolOption struct {
	value bool
	set   bool
}

func (o boolOption) resolved(fallback bool) bool {
	if !o.set {
		return fallback
	}
	return o.value
}

// ReadOptions configures a Reader. The zero value is valid.
type ReadOptions struct {
	lax          bool
	namespaces   map[string]string
	logger       *zap.Logger
	maxDepth     intOption
	maxAttrs     intOption
	maxTokenSize intOption
}

// WriteOptions configures a Writer. The zero value is valid and writes the
// XML declaration without formatting.
type WriteOptions struct {
	format     bool
	preamble   boolOption
	namespaces map[string]string
	logger     *zap.Logger
}

type resolvedReadOptions struct {
	lax          bool
	namespaces   map[string]string
	logger       *zap.Logger
	limits       xmlParseLimits
	parseOptions []xmlstream.Option
}

type resolvedWriteOptions struct {
	format     bool
	preamble   bool
	namespaces map[string]string
	logger     *zap.Logger
}

// NewReadOptions returns a default, valid read options value.
func NewReadOptions() ReadOptions {
	return ReadOptions{}
}

// NewWriteOptions returns a default, valid write options value.
func NewWriteOptions() WriteOptions {
	return WriteOptions{}
}

// Validate validates read options values.
func (o ReadOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// Validate validates write options values.
func (o WriteOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithLax controls whether recoverable element errors become warnings.
func (o ReadOptions) WithLax(value bool) ReadOptions {
	o.lax = value
	return o
}

// WithNamespaceMap sets preferred prefixes by namespace URI for foreign content.
func (o ReadOptions) WithNamespaceMap(value map[string]string) ReadOptions {
	o.namespaces = maps.Clone(value)
	return o
}

// WithLogger sets the diagnostics logger (nil disables logging).
func (o ReadOptions) WithLogger(value *zap.Logger) ReadOptions {
	o.logger = value
	return o
}

// WithMaxDepth sets the XML max depth limit (0 uses default).
func (o ReadOptions) WithMaxDepth(value int) ReadOptions {
	o.maxDepth = intOption{value: value, set: true}
	return o
}

// WithMaxAttrs sets the XML max attributes limit (0 uses default).
func (o ReadOptions) WithMaxAttrs(value int) ReadOptions {
	o.maxAttrs = intOption{value: value, set: true}
	return o
}

// WithMaxTokenSize sets the XML max token size limit (0 uses default).
func (o ReadOptions) WithMaxTokenSize(value int) ReadOptions {
	o.maxTokenSize = intOption{value: value, set: true}
	return o
}

// WithFormat controls indentation of the output.
func (o WriteOptions) WithFormat(value bool) WriteOptions {
	o.format = value
	return o
}

// WithPreamble controls whether the XML declaration is written (default true).
func (o WriteOptions) WithPreamble(value bool) WriteOptions {
	o.preamble = boolOption{value: value, set: true}
	return o
}

// WithNamespaceMap sets preferred prefixes by namespace URI for foreign content.
func (o WriteOptions) WithNamespaceMap(value map[string]string) WriteOptions {
	o.namespaces = maps.Clone(value)
	return o
}

// WithLogger sets the diagnostics logger (nil disables logging).
func (o WriteOptions) WithLogger(value *zap.Logger) WriteOptions {
	o.logger = value
	return o
}

func (o ReadOptions) withDefaults() (resolvedReadOptions, error) {
	limits, err := resolveXMLParseLimits(
		o.maxDepth.resolved(),
		o.maxAttrs.resolved(),
		o.maxTokenSize.resolved(),
	)
	if err != nil {
		return resolvedReadOptions{}, fmt.Errorf("xml limits: %w", err)
	}
	if err := validateNamespaceMap(o.namespaces); err != nil {
		return resolvedReadOptions{}, err
	}
	return resolvedReadOptions{
		lax:          o.lax,
		namespaces:   o.namespaces,
		logger:       loggerOrNop(o.logger),
		limits:       limits,
		parseOptions: limits.options(),
	}, nil
}

func (o WriteOptions) withDefaults() (resolvedWriteOptions, error) {
	if err := validateNamespaceMap(o.namespaces); err != nil {
		return resolvedWriteOptions{}, err
	}
	return resolvedWriteOptions{
		format:     o.format,
		preamble:   o.preamble.resolved(true),
		namespaces: o.namespaces,
		logger:     loggerOrNop(o.logger),
	}, nil
}

func validateNamespaceMap(m map[string]string) error {
	for uri, prefix := range m {
		if uri == "" {
			return fmt.Errorf("namespace map: empty uri for prefix %q", prefix)
		}
		if prefix == "" {
			return fmt.Errorf("namespace map: empty prefix for uri %q", uri)
		}
	}
	return nil
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
