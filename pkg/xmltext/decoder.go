package xmltext

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

var (
	bom           = []byte{0xEF, 0xBB, 0xBF}
	cdataStart    = []byte("<![CDATA[")
	cdataEnd      = []byte("]]>")
	commentStart  = []byte("<!--")
	commentEnd    = []byte("-->")
	piStart       = []byte("<?")
	piEnd         = []byte("?>")
	endTagStart   = []byte("</")
	directiveOpen = []byte("<!")
)

// Decoder reads XML tokens from an input.
// It buffers the whole input on first use.
type Decoder struct {
	r      io.Reader
	data   []byte
	loaded bool

	pos  int
	line int
	col  int

	opts Options

	stack      []string
	pendingEnd *Token
	rootSeen   bool
	rootClosed bool
	tokens     int

	err error
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader, opts ...Options) *Decoder {
	return &Decoder{
		r:    r,
		line: 1,
		col:  1,
		opts: JoinOptions(opts...),
	}
}

// InputOffset returns the byte offset of the next unread token.
func (d *Decoder) InputOffset() int64 {
	return int64(d.pos)
}

// Depth returns the number of currently open elements.
func (d *Decoder) Depth() int {
	return len(d.stack)
}

// Path returns the slash separated list of open element names.
func (d *Decoder) Path() string {
	if len(d.stack) == 0 {
		return "/"
	}
	return "/" + strings.Join(d.stack, "/")
}

// ReadToken returns the next token. At the end of a well-formed document it
// returns io.EOF. Errors are sticky.
func (d *Decoder) ReadToken() (Token, error) {
	if d.err != nil {
		return Token{}, d.err
	}
	if !d.loaded {
		if err := d.load(); err != nil {
			d.err = err
			return Token{}, err
		}
	}
	if d.pendingEnd != nil {
		tok := *d.pendingEnd
		d.pendingEnd = nil
		d.popElement()
		return tok, nil
	}
	for {
		if d.pos >= len(d.data) {
			if len(d.stack) > 0 {
				return Token{}, d.fail(errUnexpectedEOF)
			}
			return Token{}, io.EOF
		}
		tok, emit, err := d.next()
		if err != nil {
			return Token{}, err
		}
		d.tokens++
		if emit {
			return tok, nil
		}
	}
}

func (d *Decoder) load() error {
	d.loaded = true
	if d.r == nil {
		return errNilReader
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	d.data = bytes.TrimPrefix(data, bom)
	return nil
}

func (d *Decoder) next() (Token, bool, error) {
	rest := d.data[d.pos:]
	if rest[0] != '<' {
		return d.readCharData()
	}
	switch {
	case bytes.HasPrefix(rest, piStart):
		return d.readPI()
	case bytes.HasPrefix(rest, commentStart):
		return d.readComment()
	case bytes.HasPrefix(rest, cdataStart):
		return d.readCDATA()
	case bytes.HasPrefix(rest, endTagStart):
		return d.readEndTag()
	case bytes.HasPrefix(rest, directiveOpen):
		return d.skipDirective()
	default:
		return d.readStartTag()
	}
}

func (d *Decoder) startToken(kind Kind) Token {
	return Token{Kind: kind, Offset: int64(d.pos), Line: d.line, Column: d.col}
}

// advance moves the cursor n bytes forward while tracking line and column.
func (d *Decoder) advance(n int) {
	end := d.pos + n
	for ; d.pos < end; d.pos++ {
		b := d.data[d.pos]
		switch {
		case b == '\n':
			d.line++
			d.col = 1
		case b < utf8.RuneSelf || utf8.RuneStart(b):
			d.col++
		}
	}
}

func (d *Decoder) checkSize(n int) error {
	if d.opts.maxTokenSize > 0 && n > d.opts.maxTokenSize {
		return d.fail(errTokenTooLarge)
	}
	return nil
}

func (d *Decoder) readCharData() (Token, bool, error) {
	tok := d.startToken(KindCharData)
	rest := d.data[d.pos:]
	end := bytes.IndexByte(rest, '<')
	if end < 0 {
		end = len(rest)
	}
	raw := rest[:end]
	if err := d.checkSize(len(raw)); err != nil {
		return Token{}, false, err
	}
	if len(d.stack) == 0 {
		if !isWhitespaceBytes(raw) {
			return Token{}, false, d.fail(errContentOutsideRoot)
		}
		d.advance(end)
		return Token{}, false, nil
	}
	if bytes.Contains(raw, cdataEnd) {
		return Token{}, false, d.fail(errCDATAEnd)
	}
	text, err := unescapeInto(nil, normalizeNewlines(raw))
	if err != nil {
		return Token{}, false, d.fail(err)
	}
	if err := validateXMLChars(text); err != nil {
		return Token{}, false, d.fail(err)
	}
	d.advance(end)
	tok.Text = string(text)
	return tok, true, nil
}

func (d *Decoder) readCDATA() (Token, bool, error) {
	if len(d.stack) == 0 {
		return Token{}, false, d.fail(errContentOutsideRoot)
	}
	tok := d.startToken(KindCDATA)
	body := d.data[d.pos+len(cdataStart):]
	end := bytes.Index(body, cdataEnd)
	if end < 0 {
		return Token{}, false, d.fail(errUnexpectedEOF)
	}
	if err := d.checkSize(end); err != nil {
		return Token{}, false, err
	}
	text := normalizeNewlines(body[:end])
	if err := validateXMLChars(text); err != nil {
		return Token{}, false, d.fail(err)
	}
	d.advance(len(cdataStart) + end + len(cdataEnd))
	tok.Text = string(text)
	return tok, true, nil
}

func (d *Decoder) readComment() (Token, bool, error) {
	tok := d.startToken(KindComment)
	body := d.data[d.pos+len(commentStart):]
	end := bytes.Index(body, commentEnd)
	if end < 0 {
		return Token{}, false, d.fail(errUnexpectedEOF)
	}
	text := body[:end]
	if bytes.Contains(text, []byte("--")) || bytes.HasSuffix(text, []byte("-")) {
		return Token{}, false, d.fail(errInvalidComment)
	}
	d.advance(len(commentStart) + end + len(commentEnd))
	if !d.opts.emitComments {
		return Token{}, false, nil
	}
	tok.Text = string(text)
	return tok, true, nil
}

func (d *Decoder) readPI() (Token, bool, error) {
	tok := d.startToken(KindPI)
	body := d.data[d.pos+len(piStart):]
	n := scanName(body)
	if n == 0 {
		return Token{}, false, d.fail(errInvalidPI)
	}
	target := string(body[:n])
	end := bytes.Index(body, piEnd)
	if end < 0 {
		return Token{}, false, d.fail(errUnexpectedEOF)
	}
	if end > n && !isWhitespace(body[n]) {
		return Token{}, false, d.fail(errInvalidPI)
	}
	text := strings.TrimSpace(string(body[n:end]))
	isDecl := target == "xml"
	if !isDecl && strings.EqualFold(target, "xml") {
		return Token{}, false, d.fail(errInvalidPI)
	}
	if isDecl && (d.pos != 0 || d.tokens != 0) {
		return Token{}, false, d.fail(errMisplacedXMLDecl)
	}
	d.advance(len(piStart) + end + len(piEnd))
	tok.Name = QName{Full: target, Local: target}
	tok.Text = text
	if isDecl {
		attrs, err := parsePseudoAttrs(text)
		if err != nil {
			return Token{}, false, d.fail(err)
		}
		tok.IsXMLDecl = true
		tok.Attrs = attrs
		return tok, true, nil
	}
	return tok, d.opts.emitPI, nil
}

// skipDirective skips a markup declaration such as DOCTYPE, including an
// internal subset in brackets.
func (d *Decoder) skipDirective() (Token, bool, error) {
	if d.rootSeen {
		return Token{}, false, d.fail(errMisplacedDirective)
	}
	depth := 0
	var quote byte
	rest := d.data[d.pos:]
	for i := len(directiveOpen); i < len(rest); i++ {
		b := rest[i]
		switch {
		case quote != 0:
			if b == quote {
				quote = 0
			}
		case b == '"' || b == '\'':
			quote = b
		case b == '[':
			depth++
		case b == ']':
			depth--
		case b == '>' && depth <= 0:
			d.advance(i + 1)
			return Token{}, false, nil
		}
	}
	return Token{}, false, d.fail(errUnexpectedEOF)
}

func (d *Decoder) readEndTag() (Token, bool, error) {
	tok := d.startToken(KindEndElement)
	rest := d.data[d.pos+len(endTagStart):]
	n := scanName(rest)
	if n == 0 {
		return Token{}, false, d.fail(errInvalidName)
	}
	name, err := splitQName(string(rest[:n]))
	if err != nil {
		return Token{}, false, d.fail(err)
	}
	i := n
	for i < len(rest) && isWhitespace(rest[i]) {
		i++
	}
	if i >= len(rest) {
		return Token{}, false, d.fail(errUnexpectedEOF)
	}
	if rest[i] != '>' {
		return Token{}, false, d.fail(errInvalidToken)
	}
	if len(d.stack) == 0 || d.stack[len(d.stack)-1] != name.Full {
		return Token{}, false, d.fail(errMismatchedEndTag)
	}
	d.advance(len(endTagStart) + i + 1)
	tok.Name = name
	d.popElement()
	return tok, true, nil
}

func (d *Decoder) readStartTag() (Token, bool, error) {
	tok := d.startToken(KindStartElement)
	if d.rootClosed && len(d.stack) == 0 {
		return Token{}, false, d.fail(errMultipleRoots)
	}
	rest := d.data[d.pos+1:]
	n := scanName(rest)
	if n == 0 {
		return Token{}, false, d.fail(errInvalidName)
	}
	name, err := splitQName(string(rest[:n]))
	if err != nil {
		return Token{}, false, d.fail(err)
	}
	i := n
	for {
		ws := i
		for i < len(rest) && isWhitespace(rest[i]) {
			i++
		}
		if i >= len(rest) {
			return Token{}, false, d.fail(errUnexpectedEOF)
		}
		if rest[i] == '>' {
			i++
			break
		}
		if rest[i] == '/' {
			if i+1 >= len(rest) || rest[i+1] != '>' {
				return Token{}, false, d.fail(errInvalidToken)
			}
			tok.SelfClosing = true
			i += 2
			break
		}
		if ws == i {
			return Token{}, false, d.fail(errInvalidAttr)
		}
		attr, consumed, err := parseAttr(rest[i:])
		if err != nil {
			return Token{}, false, d.fail(err)
		}
		for _, existing := range tok.Attrs {
			if existing.Name.Full == attr.Name.Full {
				return Token{}, false, d.fail(errDuplicateAttr)
			}
		}
		tok.Attrs = append(tok.Attrs, attr)
		if d.opts.maxAttrs > 0 && len(tok.Attrs) > d.opts.maxAttrs {
			return Token{}, false, d.fail(errAttrLimit)
		}
		i += consumed
	}
	if err := d.checkSize(i + 1); err != nil {
		return Token{}, false, err
	}
	if d.opts.maxDepth > 0 && len(d.stack)+1 > d.opts.maxDepth {
		return Token{}, false, d.fail(errDepthLimit)
	}
	d.advance(i + 1)
	tok.Name = name
	d.stack = append(d.stack, name.Full)
	d.rootSeen = true
	if tok.SelfClosing {
		end := Token{Kind: KindEndElement, Name: name, Offset: int64(d.pos), Line: d.line, Column: d.col}
		d.pendingEnd = &end
	}
	return tok, true, nil
}

func (d *Decoder) popElement() {
	d.stack = d.stack[:len(d.stack)-1]
	if len(d.stack) == 0 {
		d.rootClosed = true
	}
}

// parseAttr parses name="value" at the start of data.
func parseAttr(data []byte) (Attr, int, error) {
	n := scanName(data)
	if n == 0 {
		return Attr{}, 0, errInvalidName
	}
	name, err := splitQName(string(data[:n]))
	if err != nil {
		return Attr{}, 0, err
	}
	i := n
	for i < len(data) && isWhitespace(data[i]) {
		i++
	}
	if i >= len(data) || data[i] != '=' {
		return Attr{}, 0, errInvalidAttr
	}
	i++
	for i < len(data) && isWhitespace(data[i]) {
		i++
	}
	if i >= len(data) || (data[i] != '"' && data[i] != '\'') {
		return Attr{}, 0, errInvalidAttr
	}
	quote := data[i]
	i++
	end := bytes.IndexByte(data[i:], quote)
	if end < 0 {
		return Attr{}, 0, errUnexpectedEOF
	}
	raw := data[i : i+end]
	if bytes.IndexByte(raw, '<') >= 0 {
		return Attr{}, 0, errInvalidAttr
	}
	value, err := unescapeInto(nil, normalizeAttrValue(raw))
	if err != nil {
		return Attr{}, 0, err
	}
	if err := validateXMLChars(value); err != nil {
		return Attr{}, 0, err
	}
	return Attr{Name: name, Value: string(value)}, i + end + 1, nil
}

// parsePseudoAttrs parses the version, encoding and standalone pairs of an
// XML declaration body.
func parsePseudoAttrs(text string) ([]Attr, error) {
	data := []byte(text)
	var attrs []Attr
	for i := 0; i < len(data); {
		if isWhitespace(data[i]) {
			i++
			continue
		}
		attr, n, err := parseAttr(data[i:])
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
		i += n
	}
	return attrs, nil
}

func (d *Decoder) fail(err error) error {
	d.err = &SyntaxError{
		Offset: int64(d.pos),
		Line:   d.line,
		Column: d.col,
		Path:   d.Path(),
		Err:    err,
	}
	return d.err
}
