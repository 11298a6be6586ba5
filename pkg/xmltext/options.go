package xmltext

type optionField uint8

const (
	optEmitComments optionField = 1 << iota
	optEmitPI
	optMaxDepth
	optMaxAttrs
	optMaxTokenSize
)

// Options holds decoder configuration values.
// The zero value means no overrides.
type Options struct {
	set          optionField
	emitComments bool
	emitPI       bool
	maxDepth     int
	maxAttrs     int
	maxTokenSize int
}

// JoinOptions combines option sets in order; a value set later wins.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (opts *Options) merge(src Options) {
	if src.set&optEmitComments != 0 {
		opts.emitComments = src.emitComments
	}
	if src.set&optEmitPI != 0 {
		opts.emitPI = src.emitPI
	}
	if src.set&optMaxDepth != 0 {
		opts.maxDepth = src.maxDepth
	}
	if src.set&optMaxAttrs != 0 {
		opts.maxAttrs = src.maxAttrs
	}
	if src.set&optMaxTokenSize != 0 {
		opts.maxTokenSize = src.maxTokenSize
	}
	opts.set |= src.set
}

// EmitComments controls whether comment tokens are emitted.
func EmitComments(value bool) Options {
	return Options{set: optEmitComments, emitComments: value}
}

// EmitPI controls whether processing instructions other than the XML
// declaration are emitted. The declaration is always reported.
func EmitPI(value bool) Options {
	return Options{set: optEmitPI, emitPI: value}
}

// MaxDepth limits element nesting. Zero means unlimited.
func MaxDepth(value int) Options {
	return Options{set: optMaxDepth, maxDepth: value}
}

// MaxAttrs limits the attributes of one start tag. Zero means unlimited.
func MaxAttrs(value int) Options {
	return Options{set: optMaxAttrs, maxAttrs: value}
}

// MaxTokenSize limits the size of a single token in bytes; a token of
// exactly that size is allowed. Zero means unlimited.
func MaxTokenSize(value int) Options {
	return Options{set: optMaxTokenSize, maxTokenSize: value}
}
