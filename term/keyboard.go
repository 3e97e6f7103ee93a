package term

// keyboard.go implements the keyboard encoder (spec §4.8): a logical
// key plus the parser's current modes maps to a fixed byte sequence
// for the wire, independent of anything the scanner half does.

// Key identifies one logical keyboard input the encoder knows about.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyEnter
	KeyBackspace
	KeyTab
	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	KeyKPDot
	KeyKPEnter
	KeyKPPlus
	KeyKPMinus
	KeyKPMultiply
	KeyKPDivide
)

// KeyOptions carries the per-press transport preferences the fixed
// table branches on (spec §4.8: "Enter emits CR or CRLF depending on
// whether transport requests CRLF semantics").
type KeyOptions struct {
	CRLF     bool // Enter sends CRLF instead of CR
	SoftBS   bool // Backspace sends 0x08 instead of 0x7F
}

var arrowLetter = map[Key]byte{
	KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D',
}

// linuxFKeys holds the Linux-console ESC [ [ A.. sequences for F1-F5,
// which diverge from the xterm ESC O P / ESC [ 1 5 ~ convention used
// for the rest of the table.
var linuxFKeys = map[Key][]byte{
	KeyF1: []byte("\x1b[[A"), KeyF2: []byte("\x1b[[B"),
	KeyF3: []byte("\x1b[[C"), KeyF4: []byte("\x1b[[D"),
	KeyF5: []byte("\x1b[[E"),
}

var xtermFKeys = map[Key][]byte{
	KeyF1: []byte("\x1bOP"), KeyF2: []byte("\x1bOQ"),
	KeyF3: []byte("\x1bOR"), KeyF4: []byte("\x1bOS"),
	KeyF5: []byte("\x1b[15~"), KeyF6: []byte("\x1b[17~"),
	KeyF7: []byte("\x1b[18~"), KeyF8: []byte("\x1b[19~"),
	KeyF9: []byte("\x1b[20~"), KeyF10: []byte("\x1b[21~"),
	KeyF11: []byte("\x1b[23~"), KeyF12: []byte("\x1b[24~"),
}

var editingKeys = map[Key][]byte{
	KeyHome: []byte("\x1b[1~"), KeyEnd: []byte("\x1b[4~"),
	KeyInsert: []byte("\x1b[2~"), KeyDelete: []byte("\x1b[3~"),
	KeyPageUp: []byte("\x1b[5~"), KeyPageDown: []byte("\x1b[6~"),
}

var kpDigit = map[Key]byte{
	KeyKP0: 'p', KeyKP1: 'q', KeyKP2: 'r', KeyKP3: 's', KeyKP4: 't',
	KeyKP5: 'u', KeyKP6: 'v', KeyKP7: 'w', KeyKP8: 'x', KeyKP9: 'y',
	KeyKPDot: '.', KeyKPEnter: 'M', KeyKPPlus: 'l', KeyKPMinus: 'm',
	KeyKPMultiply: 'j', KeyKPDivide: 'o',
}

// EncodeKey returns the byte sequence for k given the parser's
// current mode state (DECCKM, VT52, keypad application mode) and the
// caller's transport preferences.
func (p *Parser) EncodeKey(k Key, opt KeyOptions) []byte {
	if p.vt52 {
		return p.encodeKeyVT52(k, opt)
	}

	switch k {
	case KeyUp, KeyDown, KeyRight, KeyLeft:
		letter := arrowLetter[k]
		if p.decckm {
			return []byte{ESC, 'O', letter}
		}
		return []byte{ESC, '[', letter}
	case KeyEnter:
		if opt.CRLF {
			return []byte("\r\n")
		}
		return []byte("\r")
	case KeyBackspace:
		if opt.SoftBS {
			return []byte{0x08}
		}
		return []byte{0x7F}
	case KeyTab:
		return []byte{0x09}
	}

	if seq, ok := editingKeys[k]; ok {
		return seq
	}

	if digit, ok := kpDigit[k]; ok {
		if p.keypadApplication {
			return []byte{ESC, 'O', digit}
		}
		if k >= KeyKP0 && k <= KeyKP9 {
			return []byte{byte('0' + int(k-KeyKP0))}
		}
		// operators/Enter/dot in numeric mode use their ASCII glyph
		switch k {
		case KeyKPDot:
			return []byte{'.'}
		case KeyKPEnter:
			return []byte("\r")
		case KeyKPPlus:
			return []byte{'+'}
		case KeyKPMinus:
			return []byte{'-'}
		case KeyKPMultiply:
			return []byte{'*'}
		case KeyKPDivide:
			return []byte{'/'}
		}
	}

	if p.cfg.Linux {
		if seq, ok := linuxFKeys[k]; ok {
			return seq
		}
	}
	if seq, ok := xtermFKeys[k]; ok {
		return seq
	}
	return nil
}

// encodeKeyVT52 implements the VT52 arrow/keypad table (spec §4.8:
// "ESC A/B/C/D VT52"; "ESC ? p..y in VT52" application keypad).
func (p *Parser) encodeKeyVT52(k Key, opt KeyOptions) []byte {
	switch k {
	case KeyUp, KeyDown, KeyRight, KeyLeft:
		return []byte{ESC, arrowLetter[k]}
	case KeyEnter:
		if opt.CRLF {
			return []byte("\r\n")
		}
		return []byte("\r")
	case KeyBackspace:
		return []byte{0x7F}
	case KeyTab:
		return []byte{0x09}
	}
	if digit, ok := kpDigit[k]; ok && p.keypadApplication {
		return []byte{ESC, '?', digit}
	}
	return nil
}
