package xmlout

import "strings"

var (
	attrReplacer = strings.NewReplacer(
		"\n\r", "&#10;",
		"\r\n", "&#10;",
		"\n", "&#10;",
		`"`, "&#34;",
		"'", "&#39;",
		"<", "&#60;",
		">", "&#62;",
		"&", "&#38;",
	)
	textReplacer = strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		"&", "&amp;",
	)
)

// EscapeAttr escapes an attribute value using numeric character references.
// Line breaks are folded into a single &#10;.
func EscapeAttr(s string) string {
	return attrReplacer.Replace(s)
}

// EscapeText escapes character data.
func EscapeText(s string) string {
	return textReplacer.Replace(s)
}

// NeedsEscape reports whether s contains characters that must not appear
// verbatim in a body.
func NeedsEscape(s string) bool {
	return strings.ContainsAny(s, "<>&")
}

// Body renders string body content. Values with reserved characters are
// wrapped in a CDATA section unless they contain its terminator, in which
// case they are escaped.
func Body(s string) string {
	if !NeedsEscape(s) {
		return s
	}
	if strings.Contains(s, "]]>") {
		return EscapeText(s)
	}
	return "<![CDATA[" + s + "]]>"
}
