package term

// sgr.go implements CSI m (Select Graphic Rendition), spec §4.6 "SGR".

func (p *Parser) dispatchSGR() {
	if p.nparams == 0 && !p.paramSet[0] {
		p.attr = Attr{Fg: ColorDefault, Bg: ColorDefault}
		return
	}
	for i := 0; i <= p.nparams; i++ {
		code, _ := p.paramRaw(i)
		p.applySGRCode(code)
	}
}

func (p *Parser) applySGRCode(code int) {
	switch {
	case code == 0:
		p.attr = Attr{Fg: ColorDefault, Bg: ColorDefault}
	case code == 1:
		p.attr.Bold = true
	case code == 2:
		p.attr.Dim = true
	case code == 4:
		p.attr.Underline = true
	case code == 5:
		p.attr.Blink = true
	case code == 7:
		p.attr.Reverse = true
	case code == 8:
		p.attr.Invisible = true
	case code == 22:
		p.attr.Bold = false
		p.attr.Dim = false
	case code == 24:
		p.attr.Underline = false
	case code == 25:
		p.attr.Blink = false
	case code == 27:
		p.attr.Reverse = false
	case code == 28:
		p.attr.Invisible = false
	case code >= 30 && code <= 37:
		p.attr.Fg = Color(code - 30)
	case code == 38:
		p.attr.Fg = ColorDefault
		if p.cfg.Linux {
			p.attr.Underline = true
		}
	case code == 39:
		p.attr.Fg = ColorDefault
		if p.cfg.Linux {
			p.attr.Underline = false
		}
	case code >= 40 && code <= 47:
		p.attr.Bg = Color(code - 40)
	case code == 49:
		p.attr.Bg = ColorDefault
	}
}
