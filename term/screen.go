package term

// Color is one of the eight basic ANSI colors, or ColorDefault.
type Color int

const (
	ColorDefault Color = iota - 1
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// Attr is the SGR attribute state applied to subsequently printed
// characters (spec §4.6 "SGR").
type Attr struct {
	Bold      bool
	Dim       bool
	Underline bool
	Blink     bool
	Reverse   bool
	Invisible bool
	Fg        Color
	Bg        Color
}

// EraseMode selects the span erased by ED/EL (spec §4.6: CSI J/K).
type EraseMode int

const (
	EraseToEnd EraseMode = iota
	EraseToStart
	EraseAll
	EraseScrollback // ED(3), xterm extension
)

// Screen is the abstract display collaborator the parser drives. It
// is the terminal-parser analogue of xfer's FileHandler: one
// interface the core never implements itself, so tests can supply a
// mock and a real terminal driver (cmd/bbsterm) supplies the other.
type Screen interface {
	// Resize reports the current width/height, queried by DECCOLM and
	// scroll-region clamping.
	Resize() (width, height int)

	// MoveCursor sets the cursor to (x, y), 0-indexed, already clamped
	// by the parser to the addressable region.
	MoveCursor(x, y int)
	CursorPosition() (x, y int)

	// Put writes r at the cursor's current position using attr, then
	// advances the cursor one column (wrapping per autowrap rules is
	// the parser's responsibility, not the screen's).
	Put(r rune, attr Attr)

	// Erase clears the span mode describes, relative to (x, y).
	Erase(mode EraseMode, x, y int)
	EraseLine(mode EraseMode, x, y int)

	// InsertLines/DeleteLines/InsertChars/DeleteChars implement
	// IL/DL/ICH/DCH at the cursor's row.
	InsertLines(n int)
	DeleteLines(n int)
	InsertChars(n int)
	DeleteChars(n int)

	// ScrollUp/ScrollDown scroll the region [top, bot] by n lines.
	ScrollUp(top, bot, n int)
	ScrollDown(top, bot, n int)

	// SetMode/ResetMode apply a DEC or ANSI mode toggle (spec §4.6
	// "Modes"). dec is true when the mode number was prefixed with
	// '?'.
	SetMode(mode int, dec bool)
	ResetMode(mode int, dec bool)

	// Bell rings the terminal bell (BEL, 0x07).
	Bell()

	// Reset implements the screen-side half of RIS (ESC c): clear to
	// the initial blank state. The parser resets its own mode/charset
	// state separately; this only covers screen content and cursor.
	Reset()

	// Reply sends bytes back to the transport: DA/DSR/ENQ responses,
	// mouse reports, VT52 identify. This is the "parser → transport"
	// arrow in the dataflow diagram, reusing one sink for every
	// parser-originated reply instead of a special Write return path.
	Reply(b []byte)
}
