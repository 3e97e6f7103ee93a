package term

import "log/slog"

// ScanState is one node of the Paul Williams DEC-ANSI state diagram
// (spec §3), plus the VT52 direct-cursor-address extension.
type ScanState int

const (
	Ground ScanState = iota
	Escape
	EscapeIntermediate
	CSIEntry
	CSIParam
	CSIIntermediate
	CSIIgnore
	DCSEntry
	DCSParam
	DCSIntermediate
	DCSPassthrough
	DCSIgnore
	SOSPMAPCString
	OSCString
	VT52DirectCursorAddress
)

func (s ScanState) String() string {
	switch s {
	case Ground:
		return "GROUND"
	case Escape:
		return "ESCAPE"
	case EscapeIntermediate:
		return "ESCAPE_INTERMEDIATE"
	case CSIEntry:
		return "CSI_ENTRY"
	case CSIParam:
		return "CSI_PARAM"
	case CSIIntermediate:
		return "CSI_INTERMEDIATE"
	case CSIIgnore:
		return "CSI_IGNORE"
	case DCSEntry:
		return "DCS_ENTRY"
	case DCSParam:
		return "DCS_PARAM"
	case DCSIntermediate:
		return "DCS_INTERMEDIATE"
	case DCSPassthrough:
		return "DCS_PASSTHROUGH"
	case DCSIgnore:
		return "DCS_IGNORE"
	case SOSPMAPCString:
		return "SOS_PM_APC_STRING"
	case OSCString:
		return "OSC_STRING"
	case VT52DirectCursorAddress:
		return "VT52_DIRECT_CURSOR_ADDRESS"
	default:
		return "UNKNOWN"
	}
}

// CharSet identifies one of the DEC character sets a G0/G1 slot can
// hold (spec §4.6).
type CharSet int

const (
	CharSetUS CharSet = iota
	CharSetUK
	CharSetDrawing
	CharSetROM
	CharSetROMSpecial
)

const maxCSIParams = 16
const maxCSIParamDigits = 16

// savedCursor is the DECSC/DECRC snapshot: position, attributes and
// charset slots, restored verbatim by DECRC.
type savedCursor struct {
	x, y       int
	attr       Attr
	g0, g1     CharSet
	shiftOut   bool
	originMode bool
}

// ParserState holds everything the scanner needs between Write calls:
// the Williams DFA's current node plus all VT100/VT52 mode state
// (spec §3).
type ParserState struct {
	scan ScanState

	vt52        bool
	decPrivate  bool // '?' collected in the current CSI sequence
	shiftOut    bool // true selects G1, false selects G0
	g0, g1      CharSet
	originMode  bool
	col132      bool
	cursorX     int
	cursorY     int
	attr        Attr
	saved       savedCursor
	hasSaved    bool
	tabStops    []int // sorted columns with a tab stop set
	scrollTop   int
	scrollBot   int
	cursorShow  bool
	mouseMode   int  // 0 = off, else 1000/1002/1003
	mouseUTF8   bool // mode 1005
	autowrap    bool
	answerBack  string

	keypadApplication bool // DECKPAM/DECKPNM (ESC = / ESC >)
	decckm       bool // DECCKM: application cursor keys (mode 1)
	reverseVideo bool // DECSCNM (mode 5)
	insertMode   bool // IRM (mode 4)
	lnm          bool // LNM: linefeed implies carriage return (mode 20)

	vt52RowDone bool // true once the row byte of ESC Y row col has been read
	vt52Row     int

	escInString bool // saw ESC while collecting an OSC/DCS/SOS-PM-APC body, awaiting ST's '\\'

	params   [maxCSIParams]int
	paramSet [maxCSIParams]bool
	nparams  int
	collect  []byte // intermediate bytes collected in the current sequence

	utf8 utf8Decoder

	repeatRune rune // last graphic rune printed, for REP (CSI b)

	oscBuf []byte
	dcsBuf []byte
}

// Config controls parser behavior, with a defaults() method that
// fills zero-values, the same shape xfer.Config.defaults uses.
type Config struct {
	// ScreenWidth/ScreenHeight bound cursor addressing and tab stops.
	ScreenWidth  int
	ScreenHeight int
	// AnswerBack is the string replied to ENQ (0x05).
	AnswerBack string
	// Linux selects Linux-console quirks (palette OSC, the SGR 38/39
	// underline behavior, ESC [ [ A.. F-keys) over plain xterm
	// behavior where they differ.
	Linux bool
}

func (c *Config) defaults() {
	if c.ScreenWidth <= 0 {
		c.ScreenWidth = 80
	}
	if c.ScreenHeight <= 0 {
		c.ScreenHeight = 24
	}
}

// Parser drives a Screen from a byte stream. Create one with New and
// feed it transport bytes via Write. Not safe for concurrent use.
type Parser struct {
	cfg    Config
	logger *slog.Logger
	screen Screen

	ParserState
}

// New creates a Parser writing into screen.
func New(screen Screen, cfg *Config) *Parser {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c.defaults()

	p := &Parser{cfg: c, logger: slog.Default(), screen: screen}
	p.answerBack = c.AnswerBack
	p.resetToInitial()
	return p
}

// SetLogger overrides the default slog.Logger.
func (p *Parser) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// resetToInitial implements RIS (ESC c): full terminal reset.
func (p *Parser) resetToInitial() {
	p.scan = Ground
	p.vt52 = false
	p.decPrivate = false
	p.shiftOut = false
	p.g0 = CharSetUS
	p.g1 = CharSetUS
	p.originMode = false
	p.col132 = false
	p.cursorX, p.cursorY = 0, 0
	p.attr = Attr{}
	p.hasSaved = false
	p.scrollTop = 0
	p.scrollBot = p.cfg.ScreenHeight - 1
	p.cursorShow = true
	p.mouseMode = 0
	p.mouseUTF8 = false
	p.autowrap = true
	p.keypadApplication = false
	p.decckm = false
	p.reverseVideo = false
	p.insertMode = false
	p.lnm = false
	p.escInString = false
	p.resetTabStops()
	p.clearParams()
	p.utf8.reset()
	if p.screen != nil {
		p.screen.Reset()
	}
}

func (p *Parser) resetTabStops() {
	p.tabStops = p.tabStops[:0]
	for col := 8; col < p.cfg.ScreenWidth; col += 8 {
		p.tabStops = append(p.tabStops, col)
	}
}

func (p *Parser) clearParams() {
	for i := range p.paramSet {
		p.paramSet[i] = false
		p.params[i] = 0
	}
	p.nparams = 0
	p.collect = p.collect[:0]
}
