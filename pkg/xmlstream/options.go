package xmlstream

import "github.com/jacoelho/modelxml/pkg/xmltext"

// Option configures the xmlstream reader.
// Construct options via helpers in pkg/xmltext.
type Option = xmltext.Options

func buildOptions(opts ...Option) []xmltext.Options {
	out := make([]xmltext.Options, 0, len(opts)+2)
	out = append(out, xmltext.EmitComments(false), xmltext.EmitPI(false))
	out = append(out, opts...)
	return out
}
