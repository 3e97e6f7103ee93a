package term

import "golang.org/x/text/encoding/charmap"

// CP437Unicode is the default 8-bit→Unicode translate table: byte i
// maps to the glyph IBM code page 437 assigns it (spec §2, §6). Built
// from golang.org/x/text/encoding/charmap instead of a hand-copied
// 256-entry literal.
func CP437Unicode() *TranslateTableUnicode {
	t := NewTranslateTableUnicode()
	for b := 0; b < 256; b++ {
		r := charmap.CodePage437.DecodeByte(byte(b))
		if r == rune(b) {
			continue // identity, no entry needed
		}
		t.Set(rune(b), r)
	}
	return t
}

// EBCDICToCP437 is the EBCDIC↔CP437 preset spec §2 names explicitly:
// an 8-bit table mapping each EBCDIC (code page 037) byte to the
// CP437 byte whose glyph matches it, so EBCDIC input can be displayed
// on a CP437-glyph screen. Bytes with no CP437 equivalent fall back to
// '?' (0x3F), matching a lossy single-byte transcode.
func EBCDICToCP437() *TranslateTable8 {
	t := NewTranslateTable8()
	for b := 0; b < 256; b++ {
		r := charmap.CodePage037.DecodeByte(byte(b))
		out, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			out = '?'
		}
		t.Set(byte(b), out)
	}
	return t
}
