package xmltext

import (
	"unicode"
	"unicode/utf8"
)

var nameStartByteLUT = [utf8.RuneSelf]bool{
	':': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'_': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true, 't': true, 'u': true,
	'v': true, 'w': true, 'x': true, 'y': true, 'z': true,
}

var nameByteLUT = [utf8.RuneSelf]bool{
	'-': true, '.': true,
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	':': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,
	'_': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true, 'g': true,
	'h': true, 'i': true, 'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true, 't': true, 'u': true,
	'v': true, 'w': true, 'x': true, 'y': true, 'z': true,
}

// NameStartChar ranges above ASCII, XML 1.0 fifth edition section 2.3.
var nameStartTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00C0, Hi: 0x00D6, Stride: 1},
		{Lo: 0x00D8, Hi: 0x00F6, Stride: 1},
		{Lo: 0x00F8, Hi: 0x02FF, Stride: 1},
		{Lo: 0x0370, Hi: 0x037D, Stride: 1},
		{Lo: 0x037F, Hi: 0x1FFF, Stride: 1},
		{Lo: 0x200C, Hi: 0x200D, Stride: 1},
		{Lo: 0x2070, Hi: 0x218F, Stride: 1},
		{Lo: 0x2C00, Hi: 0x2FEF, Stride: 1},
		{Lo: 0x3001, Hi: 0xD7FF, Stride: 1},
		{Lo: 0xF900, Hi: 0xFDCF, Stride: 1},
		{Lo: 0xFDF0, Hi: 0xFFFD, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x10000, Hi: 0xEFFFF, Stride: 1},
	},
}

var nameCharTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x00B7, Hi: 0x00B7, Stride: 1},
		{Lo: 0x0300, Hi: 0x036F, Stride: 1},
		{Lo: 0x203F, Hi: 0x2040, Stride: 1},
	},
}

func isNameStartByte(b byte) bool {
	return b < utf8.RuneSelf && nameStartByteLUT[b]
}

func isNameByte(b byte) bool {
	return b < utf8.RuneSelf && nameByteLUT[b]
}

func isNameStartRune(r rune) bool {
	if r < utf8.RuneSelf {
		return isNameStartByte(byte(r))
	}
	return unicode.Is(nameStartTable, r)
}

func isNameRune(r rune) bool {
	if r < utf8.RuneSelf {
		return isNameByte(byte(r))
	}
	return unicode.Is(nameStartTable, r) || unicode.Is(nameCharTable, r)
}

// scanName returns the length of the XML Name at the start of data, or 0.
func scanName(data []byte) int {
	i := 0
	for i < len(data) {
		b := data[i]
		if b < utf8.RuneSelf {
			ok := isNameByte(b)
			if i == 0 {
				ok = isNameStartByte(b)
			}
			if !ok {
				return i
			}
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		ok := isNameRune(r)
		if i == 0 {
			ok = isNameStartRune(r)
		}
		if r == utf8.RuneError || !ok {
			return i
		}
		i += size
	}
	return i
}

// splitQName splits a name at its colon. Names with an empty prefix, an empty
// local part or more than one colon are rejected.
func splitQName(full string) (QName, error) {
	colon := -1
	for i := 0; i < len(full); i++ {
		if full[i] != ':' {
			continue
		}
		if colon >= 0 {
			return QName{}, errInvalidName
		}
		colon = i
	}
	if colon < 0 {
		return QName{Full: full, Local: full}, nil
	}
	if colon == 0 || colon == len(full)-1 {
		return QName{}, errInvalidName
	}
	return QName{Full: full, Prefix: full[:colon], Local: full[colon+1:]}, nil
}
