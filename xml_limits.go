package modelxml

import (
	"cmp"
	"fmt"

	"github.com/jacoelho/modelxml/pkg/xmlstream"
	"github.com/jacoelho/modelxml/pkg/xmltext"
)

const (
	defaultXMLMaxDepth     = 256
	defaultXMLMaxAttrs     = 256
	defaultXMLMaxTokenSize = 4 << 20
)

type xmlParseLimits struct {
	maxDepth     int
	maxAttrs     int
	maxTokenSize int
}

func resolveXMLParseLimits(maxDepth, maxAttrs, maxTokenSize int) (xmlParseLimits, error) {
	if maxDepth < 0 {
		return xmlParseLimits{}, fmt.Errorf("xml max depth must be >= 0")
	}
	if maxAttrs < 0 {
		return xmlParseLimits{}, fmt.Errorf("xml max attrs must be >= 0")
	}
	if maxTokenSize < 0 {
		return xmlParseLimits{}, fmt.Errorf("xml max token size must be >= 0")
	}
	return xmlParseLimits{
		maxDepth:     defaultXMLLimit(maxDepth, defaultXMLMaxDepth),
		maxAttrs:     defaultXMLLimit(maxAttrs, defaultXMLMaxAttrs),
		maxTokenSize: defaultXMLLimit(maxTokenSize, defaultXMLMaxTokenSize),
	}, nil
}

func (l xmlParseLimits) options() []xmlstream.Option {
	return []xmlstream.Option{
		xmltext.MaxDepth(defaultXMLLimit(l.maxDepth, defaultXMLMaxDepth)),
		xmltext.MaxAttrs(defaultXMLLimit(l.maxAttrs, defaultXMLMaxAttrs)),
		xmltext.MaxTokenSize(defaultXMLLimit(l.maxTokenSize, defaultXMLMaxTokenSize)),
	}
}

func defaultXMLLimit(value, fallback int) int {
	return cmp.Or(value, fallback)
}
