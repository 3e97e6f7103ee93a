package term

// vt52.go implements the VT52 submode grammar (spec §4.6 "VT52
// submode"), reached via DECANM reset (CSI ? 2 l) and exited by
// ESC <.

// vt52Dispatch handles an ESC-final byte while in VT52 mode. consumed
// reports whether final was a recognized VT52 command.
func (p *Parser) vt52Dispatch(final byte) (consumed bool) {
	switch final {
	case '<':
		p.vt52 = false
	case 'A':
		p.moveCursorRel(0, -1)
	case 'B':
		p.moveCursorRel(0, 1)
	case 'C':
		p.moveCursorRel(1, 0)
	case 'D':
		p.moveCursorRel(-1, 0)
	case 'F':
		p.g0 = CharSetDrawing
	case 'G':
		p.g0 = CharSetUS
	case 'H':
		p.moveCursorAbs(0, 0)
	case 'I':
		p.reverseLineFeed()
	case 'J':
		p.screen.Erase(EraseToEnd, p.cursorX, p.cursorY)
	case 'K':
		p.screen.EraseLine(EraseToEnd, p.cursorX, p.cursorY)
	case 'Z':
		p.screen.Reply([]byte("\x1b/Z"))
	case '=':
		p.keypadApplication = true
	case '>':
		p.keypadApplication = false
	default:
		return false
	}
	return true
}

// vt52CursorByte feeds one of the two bytes following ESC Y (row then
// column, each offset by 0x20 per spec §4.6). done reports whether
// this was the second (column) byte, so the scanner knows when to
// leave VT52DirectCursorAddress.
func (p *Parser) vt52CursorByte(b byte) (done bool) {
	if !p.vt52RowDone {
		p.vt52Row = int(b) - 0x20
		p.vt52RowDone = true
		return false
	}
	col := int(b) - 0x20
	p.moveCursorAbs(col, p.vt52Row)
	p.vt52RowDone = false
	return true
}
