package term

import "strconv"

// csi.go implements CSI parameter collection and the final-byte
// dispatch table (spec §4.6 "CSI dispatch final bytes").

// csiParamByte applies a parameter-block byte (';', digits, private
// markers) to the pending sequence, per the Williams diagram's
// CSI_ENTRY/CSI_PARAM collection rule; intermediates go through
// csiCollectByte.
func (p *Parser) csiParamByte(b byte) {
	switch {
	case b == ';':
		p.nparams++
		if p.nparams >= maxCSIParams {
			p.nparams = maxCSIParams - 1
		}
	case b >= '0' && b <= '9':
		if p.nparams < maxCSIParams {
			p.params[p.nparams] = p.params[p.nparams]*10 + int(b-'0')
			p.paramSet[p.nparams] = true
		}
	case b == '?':
		p.decPrivate = true
	case b == '>' || b == '<' || b == '=':
		// parameter prefix bytes (secondary DA, etc.): remembered via
		// collect so the dispatcher can tell "CSI > 0 c" from "CSI 0 c".
		p.csiCollectByte(b)
	}
}

func (p *Parser) csiCollectByte(b byte) {
	if len(p.collect) < maxCSIParamDigits {
		p.collect = append(p.collect, b)
	}
}

// param returns params[i] if present, else def (spec convention: an
// omitted or zero parameter takes the operation's default).
func (p *Parser) param(i, def int) int {
	if i >= p.nparams+1 || !p.paramSet[i] || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

// paramRaw returns params[i] without substituting a default, for
// operations (CSI h/l mode numbers, SGR codes) where 0 is a real
// value rather than "use the default".
func (p *Parser) paramRaw(i int) (int, bool) {
	if i >= p.nparams+1 {
		return 0, false
	}
	return p.params[i], p.paramSet[i]
}

// csiDispatch fires the action bound to final, using the collected
// params/collect/decPrivate state, then resets the collector.
func (p *Parser) csiDispatch(final byte) {
	defer p.clearParams()
	if len(p.collect) > 0 && p.collect[0] == '?' {
		// some scanners deliver the '?' via collect rather than
		// csiParamByte; treat either the same.
		p.decPrivate = true
	}

	switch final {
	case '@':
		p.screen.InsertChars(p.param(0, 1))
	case 'A':
		p.moveCursorRel(0, -p.param(0, 1))
	case 'B':
		p.moveCursorRel(0, p.param(0, 1))
	case 'C':
		p.moveCursorRel(p.param(0, 1), 0)
	case 'D':
		p.moveCursorRel(-p.param(0, 1), 0)
	case 'E':
		p.moveCursorAbs(0, p.cursorY+p.param(0, 1))
	case 'F':
		p.moveCursorAbs(0, p.cursorY-p.param(0, 1))
	case 'G':
		p.moveCursorAbs(p.param(0, 1)-1, p.cursorY)
	case 'H', 'f':
		p.moveCursorOrigin(p.param(1, 1)-1, p.param(0, 1)-1)
	case 'I':
		for n := p.param(0, 1); n > 0; n-- {
			p.tab()
		}
	case 'J':
		p.dispatchED(p.param(0, 0))
	case 'K':
		p.dispatchEL(p.param(0, 0))
	case 'L':
		p.screen.InsertLines(p.param(0, 1))
	case 'M':
		p.screen.DeleteLines(p.param(0, 1))
	case 'P':
		p.screen.DeleteChars(p.param(0, 1))
	case 'S':
		p.screen.ScrollUp(p.regionTop(), p.regionBot(), p.param(0, 1))
	case 'T':
		p.screen.ScrollDown(p.regionTop(), p.regionBot(), p.param(0, 1))
	case 'X':
		p.eraseChars(p.param(0, 1))
	case 'Z':
		p.backTab(p.param(0, 1))
	case '`':
		p.moveCursorAbs(p.param(0, 1)-1, p.cursorY)
	case 'a':
		p.moveCursorRel(p.param(0, 1), 0)
	case 'b':
		for n := p.param(0, 1); n > 0; n-- {
			p.putRune(p.repeatRune)
		}
	case 'c':
		p.dispatchDA()
	case 'd':
		p.moveCursorAbs(p.cursorX, p.param(0, 1)-1)
	case 'e':
		p.moveCursorRel(0, p.param(0, 1))
	case 'g':
		p.clearTabStop(p.param(0, 0))
	case 'h':
		p.dispatchModes(true)
	case 'l':
		p.dispatchModes(false)
	case 'm':
		p.dispatchSGR()
	case 'n':
		p.dispatchDSR(p.param(0, 0))
	case 'q':
		// DECLL load-lights: no physical LEDs to drive, consumed.
	case 'r':
		p.dispatchDECSTBM()
	case 's':
		p.saveCursor()
	case 'u':
		p.restoreCursor()
	case 'x':
		p.dispatchDECREQTPARM(p.param(0, 0))
	}
	p.decPrivate = false
}

// eraseChars implements ECH (CSI X): erase n characters from the
// cursor without moving it.
func (p *Parser) eraseChars(n int) {
	w, _ := p.screen.Resize()
	end := p.cursorX + n
	if end > w {
		end = w
	}
	for x := p.cursorX; x < end; x++ {
		p.screen.MoveCursor(x, p.cursorY)
		p.screen.Put(' ', p.attr)
	}
	p.screen.MoveCursor(p.cursorX, p.cursorY)
}

func (p *Parser) dispatchED(mode int) {
	switch mode {
	case 0:
		p.screen.Erase(EraseToEnd, p.cursorX, p.cursorY)
	case 1:
		p.screen.Erase(EraseToStart, p.cursorX, p.cursorY)
	case 2:
		p.screen.Erase(EraseAll, p.cursorX, p.cursorY)
	case 3:
		p.screen.Erase(EraseScrollback, p.cursorX, p.cursorY)
	}
}

func (p *Parser) dispatchEL(mode int) {
	switch mode {
	case 0:
		p.screen.EraseLine(EraseToEnd, p.cursorX, p.cursorY)
	case 1:
		p.screen.EraseLine(EraseToStart, p.cursorX, p.cursorY)
	case 2:
		p.screen.EraseLine(EraseAll, p.cursorX, p.cursorY)
	}
}

// dispatchDA replies to Device Attributes (CSI c / CSI > c), per
// spec §6's bit-exact reply strings.
func (p *Parser) dispatchDA() {
	if p.decPrivate {
		return
	}
	if len(p.collect) > 0 && p.collect[0] == '>' {
		p.screen.Reply([]byte("\x1b[>0;10;0c"))
		return
	}
	p.screen.Reply([]byte("\x1b[?6c"))
}

// dispatchDSR replies to Device Status Report (CSI n), spec §6.
func (p *Parser) dispatchDSR(code int) {
	if p.decPrivate {
		if code == 13 {
			p.screen.Reply([]byte("\x1b[?13n"))
		}
		return
	}
	switch code {
	case 5:
		p.screen.Reply([]byte("\x1b[0n"))
	case 6:
		row := p.cursorY + 1
		col := p.cursorX + 1
		if p.originMode {
			row -= p.regionTop()
		}
		p.screen.Reply([]byte(formatCPR(row, col)))
	}
}

func formatCPR(row, col int) string {
	return "\x1b[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "R"
}

// dispatchDECSTBM sets the scroll region (CSI r), resetting to the
// full screen on an invalid or inverted range, and homing the cursor
// (spec §4.7).
func (p *Parser) dispatchDECSTBM() {
	_, h := p.screen.Resize()
	top := p.param(0, 1) - 1
	bot := p.param(1, h) - 1
	if top < 0 || bot >= h || top >= bot {
		top, bot = 0, h-1
	}
	p.scrollTop, p.scrollBot = top, bot
	p.moveCursorOrigin(0, 0)
}

func (p *Parser) saveCursor() {
	p.saved = savedCursor{
		x: p.cursorX, y: p.cursorY,
		attr: p.attr, g0: p.g0, g1: p.g1,
		shiftOut: p.shiftOut, originMode: p.originMode,
	}
	p.hasSaved = true
}

func (p *Parser) restoreCursor() {
	if !p.hasSaved {
		return
	}
	s := p.saved
	p.g0, p.g1 = s.g0, s.g1
	p.shiftOut = s.shiftOut
	p.originMode = s.originMode
	p.attr = s.attr
	p.moveCursorAbs(s.x, s.y)
}

// dispatchDECREQTPARM replies to CSI x (report terminal parameters),
// a fixed canned response since there is no real UART to describe.
func (p *Parser) dispatchDECREQTPARM(which int) {
	reply := 2
	if which == 0 {
		reply = 3
	}
	p.screen.Reply([]byte("\x1b[" + strconv.Itoa(reply) + ";1;1;128;128;1;0x"))
}
