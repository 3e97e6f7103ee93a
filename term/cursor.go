package term

// cursor.go holds the low-level cursor/scroll-region primitives
// shared by C0 control handling (scanner.go) and CSI dispatch
// (csi.go) — the "screen buffer interface" collaborator is always
// reached through these so origin mode and scroll-region clamping are
// applied in exactly one place (spec §4.7).

// regionTop/regionBot are the scroll region bounds, 0-indexed,
// inclusive.
func (p *Parser) regionTop() int { return p.scrollTop }
func (p *Parser) regionBot() int { return p.scrollBot }

// clampCol/clampRow bound a column/row to the addressable screen.
func (p *Parser) clampCol(x int) int {
	w, _ := p.screen.Resize()
	if x < 0 {
		return 0
	}
	if x >= w {
		return w - 1
	}
	return x
}

func (p *Parser) clampRow(y int) int {
	_, h := p.screen.Resize()
	if y < 0 {
		return 0
	}
	if y >= h {
		return h - 1
	}
	return y
}

// moveCursorAbs sets the cursor to (x, y) in absolute screen
// coordinates, already clamped.
func (p *Parser) moveCursorAbs(x, y int) {
	p.cursorX = p.clampCol(x)
	p.cursorY = p.clampRow(y)
	p.screen.MoveCursor(p.cursorX, p.cursorY)
}

// moveCursorOrigin positions the cursor at (x, y) relative to the
// scroll region when DECOM is set, absolute otherwise (spec §4.7).
func (p *Parser) moveCursorOrigin(x, y int) {
	if p.originMode {
		y += p.regionTop()
		if y > p.regionBot() {
			y = p.regionBot()
		}
	}
	p.moveCursorAbs(x, y)
}

// moveCursorRel moves the cursor by (dx, dy), clamped to the full
// screen (not the scroll region — only IND/NEL/RI respect the
// region, per spec §4.7).
func (p *Parser) moveCursorRel(dx, dy int) {
	p.moveCursorAbs(p.cursorX+dx, p.cursorY+dy)
}

// lineFeed implements LF/IND: move down one row, scrolling the
// region up if already at its bottom edge.
func (p *Parser) lineFeed() {
	if p.cursorY == p.regionBot() {
		p.screen.ScrollUp(p.regionTop(), p.regionBot(), 1)
		return
	}
	p.moveCursorAbs(p.cursorX, p.cursorY+1)
}

// reverseLineFeed implements RI: move up one row, scrolling the
// region down if already at its top edge.
func (p *Parser) reverseLineFeed() {
	if p.cursorY == p.regionTop() {
		p.screen.ScrollDown(p.regionTop(), p.regionBot(), 1)
		return
	}
	p.moveCursorAbs(p.cursorX, p.cursorY-1)
}

// newLine implements NEL: CR then LF.
func (p *Parser) newLine() {
	p.carriageReturn()
	p.lineFeed()
}

func (p *Parser) carriageReturn() {
	p.moveCursorAbs(0, p.cursorY)
}

func (p *Parser) backspace() {
	if p.cursorX > 0 {
		p.moveCursorAbs(p.cursorX-1, p.cursorY)
	}
}

// tab advances to the next tab stop, or the right edge if none
// remain (spec §4.6 "Tab stops").
func (p *Parser) tab() {
	w, _ := p.screen.Resize()
	for _, stop := range p.tabStops {
		if stop > p.cursorX {
			p.moveCursorAbs(stop, p.cursorY)
			return
		}
	}
	p.moveCursorAbs(w-1, p.cursorY)
}

// backTab implements CBT: walk back through n stops (CSI Z).
func (p *Parser) backTab(n int) {
	for ; n > 0; n-- {
		found := -1
		for _, stop := range p.tabStops {
			if stop < p.cursorX {
				found = stop
			}
		}
		if found < 0 {
			p.moveCursorAbs(0, p.cursorY)
			return
		}
		p.moveCursorAbs(found, p.cursorY)
	}
}

// setTabStop implements HTS: insert a stop at the current column.
func (p *Parser) setTabStop() {
	for _, s := range p.tabStops {
		if s == p.cursorX {
			return
		}
	}
	p.tabStops = append(p.tabStops, p.cursorX)
	// keep sorted so tab()/backTab() can scan linearly
	for i := len(p.tabStops) - 1; i > 0 && p.tabStops[i-1] > p.tabStops[i]; i-- {
		p.tabStops[i-1], p.tabStops[i] = p.tabStops[i], p.tabStops[i-1]
	}
}

// clearTabStop implements TBC: 0 removes the current-column stop, 3
// clears all (spec §4.6 "Tab stops").
func (p *Parser) clearTabStop(mode int) {
	switch mode {
	case 0:
		out := p.tabStops[:0]
		for _, s := range p.tabStops {
			if s != p.cursorX {
				out = append(out, s)
			}
		}
		p.tabStops = out
	case 3:
		p.tabStops = p.tabStops[:0]
	}
}

// activeCharSet returns whichever of g0/g1 SO/SI currently selects.
func (p *Parser) activeCharSet() CharSet {
	if p.shiftOut {
		return p.g1
	}
	return p.g0
}

// putRune writes r at the cursor as given (charset mapping, if any,
// is applied by the caller: groundByte maps 7-bit runes through
// mapCharSet before calling here) and advances the cursor, wrapping
// at the right edge when autowrap is on.
func (p *Parser) putRune(r rune) {
	w, _ := p.screen.Resize()
	p.screen.Put(r, p.attr)
	p.repeatRune = r
	if p.cursorX+1 >= w {
		if p.autowrap {
			p.carriageReturn()
			p.lineFeed()
			return
		}
		return
	}
	p.moveCursorAbs(p.cursorX+1, p.cursorY)
}
