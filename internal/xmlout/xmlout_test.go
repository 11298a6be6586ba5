package xmlout

import (
	"errors"
	"strings"
	"testing"
)

func TestEscapeAttr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a\nb", "a&#10;b"},
		{"a\n\rb", "a&#10;b"},
		{"a\r\nb", "a&#10;b"},
		{`"'<>&`, "&#34;&#39;&#60;&#62;&#38;"},
		{"&#10;", "&#38;#10;"},
	}
	for _, tt := range tests {
		if got := EscapeAttr(tt.in); got != tt.want {
			t.Fatalf("EscapeAttr(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeText(t *testing.T) {
	if got := EscapeText(`<a href="x">&</a>`); got != `&lt;a href="x"&gt;&amp;&lt;/a&gt;` {
		t.Fatalf("EscapeText = %q", got)
	}
}

func TestBody(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"text", "text"},
		{"<h2>Hello</h2>", "<![CDATA[<h2>Hello</h2>]]>"},
		{`say "hi"`, `say "hi"`},
		{"a]]>b<", "a]]&gt;b&lt;"},
	}
	for _, tt := range tests {
		if got := Body(tt.in); got != tt.want {
			t.Fatalf("Body(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriterFormatting(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b, true)
	w.AppendIndent().Append("<a>").AppendNewline().Indent()
	w.AppendIndent().Append("<b />").AppendNewline()
	w.Indent().AppendIndent().Append("<c />").AppendNewline().Unindent()
	w.Unindent().AppendIndent().Append("</a>").AppendNewline()
	want := "<a>\n  <b />\n    <c />\n</a>\n"
	if b.String() != want {
		t.Fatalf("output = %q, want %q", b.String(), want)
	}
}

func TestWriterCompact(t *testing.T) {
	var b strings.Builder
	w := NewWriter(&b, false)
	w.AppendIndent().Append("<a>").AppendNewline().Indent().AppendIndent().Append("<b />").AppendNewline().Unindent().Append("</a>")
	if b.String() != "<a><b /></a>" {
		t.Fatalf("output = %q", b.String())
	}
	w.Unindent().Unindent()
	if w.depth != 0 {
		t.Fatalf("depth went negative")
	}
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, errors.New("boom")
}

func TestWriterStickyError(t *testing.T) {
	fw := &failingWriter{}
	w := NewWriter(fw, false)
	w.Append("a").Append("b")
	if w.Err() == nil || fw.n != 1 {
		t.Fatalf("Err() = %v after %d writes", w.Err(), fw.n)
	}
}
