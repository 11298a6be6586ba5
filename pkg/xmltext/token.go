package xmltext

// Kind is the lexical category of a token.
type Kind byte

const (
	KindNone Kind = iota
	KindStartElement
	KindEndElement
	KindCharData
	KindComment
	KindPI
	KindCDATA
)

var kindNames = [...]string{
	KindNone:         "None",
	KindStartElement: "StartElement",
	KindEndElement:   "EndElement",
	KindCharData:     "CharData",
	KindComment:      "Comment",
	KindPI:           "PI",
	KindCDATA:        "CDATA",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// QName is a lexical qualified name split at its first colon.
type QName struct {
	Full   string
	Prefix string
	Local  string
}

// HasPrefix reports whether the name carries a prefix.
func (n QName) HasPrefix() bool {
	return n.Prefix != ""
}

// Attr is an attribute as written in a start tag, with its value unescaped.
type Attr struct {
	Name  QName
	Value string
}

// Token is a single lexical XML token.
//
// For KindStartElement Name and Attrs are set; a self-closing tag produces a
// start token with SelfClosing set followed by a synthesized end token.
// For KindCharData and KindCDATA Text holds the decoded content.
// For KindPI Name holds the target and Text the instruction body; the XML
// declaration additionally has IsXMLDecl set and its pseudo-attributes in Attrs.
type Token struct {
	Kind        Kind
	Name        QName
	Attrs       []Attr
	Text        string
	Offset      int64
	Line        int
	Column      int
	SelfClosing bool
	IsXMLDecl   bool
}

// Attr returns the value of the attribute with the given full name.
func (t Token) Attr(full string) (string, bool) {
	for _, attr := range t.Attrs {
		if attr.Name.Full == full {
			return attr.Value, true
		}
	}
	return "", false
}
