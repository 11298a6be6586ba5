package xmltext

import "unicode/utf8"

// isValidXMLChar reports whether r is a valid XML 1.0 character.
func isValidXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}

func validateXMLChars(data []byte) error {
	for len(data) > 0 {
		if data[0] < utf8.RuneSelf {
			if !isValidXMLChar(rune(data[0])) {
				return errInvalidChar
			}
			data = data[1:]
			continue
		}
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return errInvalidChar
		}
		if !isValidXMLChar(r) {
			return errInvalidChar
		}
		data = data[size:]
	}
	return nil
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isWhitespaceBytes(data []byte) bool {
	for _, b := range data {
		if !isWhitespace(b) {
			return false
		}
	}
	return true
}

// normalizeNewlines folds "\r\n" and lone "\r" into "\n".
func normalizeNewlines(data []byte) []byte {
	i := indexByte(data, '\r')
	if i < 0 {
		return data
	}
	out := make([]byte, 0, len(data))
	out = append(out, data[:i]...)
	for ; i < len(data); i++ {
		if data[i] != '\r' {
			out = append(out, data[i])
			continue
		}
		out = append(out, '\n')
		if i+1 < len(data) && data[i+1] == '\n' {
			i++
		}
	}
	return out
}

func indexByte(data []byte, c byte) int {
	for i, b := range data {
		if b == c {
			return i
		}
	}
	return -1
}
