package term

// modes.go implements CSI h/l (set/reset mode), spec §4.6 "Modes".

// dispatchModes applies every collected parameter as a mode toggle;
// CSI allows a single h/l to carry several mode numbers at once.
func (p *Parser) dispatchModes(set bool) {
	for i := 0; i <= p.nparams; i++ {
		mode, ok := p.paramRaw(i)
		if !ok {
			continue
		}
		if p.decPrivate {
			p.applyDECMode(mode, set)
		} else {
			p.applyANSIMode(mode, set)
		}
	}
}

func (p *Parser) applyDECMode(mode int, set bool) {
	switch mode {
	case 1: // DECCKM, application cursor keys
		// tracked in p.decckm, read by the keyboard encoder
		p.decckm = set
	case 2: // DECANM: leaving ANSI mode enters VT52
		p.vt52 = !set
	case 3: // DECCOLM: 80/132 columns
		p.col132 = set
		p.screen.Erase(EraseAll, 0, 0)
		p.moveCursorOrigin(0, 0)
		p.scrollTop, p.scrollBot = 0, p.cfg.ScreenHeight-1
	case 5: // DECSCNM: reverse video
		p.reverseVideo = set
	case 6: // DECOM: origin mode
		p.originMode = set
		p.moveCursorOrigin(0, 0)
	case 7: // DECAWM: autowrap
		p.autowrap = set
	case 8: // DECARM: auto-repeat, no local effect
	case 25: // cursor visibility
		p.cursorShow = set
	case 1000, 1002, 1003:
		if set {
			p.mouseMode = mode
		} else if p.mouseMode == mode {
			p.mouseMode = 0
		}
	case 1005:
		p.mouseUTF8 = set
	}
	if set {
		p.screen.SetMode(mode, true)
	} else {
		p.screen.ResetMode(mode, true)
	}
}

func (p *Parser) applyANSIMode(mode int, set bool) {
	switch mode {
	case 2: // KAM, keyboard action mode: no local effect
	case 4: // IRM, insert/replace: tracked for Put callers upstream
		p.insertMode = set
	case 12: // SRM, local echo: transport concern, not tracked here
	case 20: // LNM, linefeed/newline
		p.lnm = set
	}
	if set {
		p.screen.SetMode(mode, false)
	} else {
		p.screen.ResetMode(mode, false)
	}
}
