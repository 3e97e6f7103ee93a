package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kvenn/bbscore/term"
)

// ansiscreen.go implements term.Screen by re-emitting the equivalent
// DEC-ANSI sequences to the local controlling terminal rather than
// maintaining a private cell grid: the local terminal already
// understands cursor addressing, erase and scroll-region sequences,
// so the simplest correct backend for a thin demo is to let it do the
// rendering and just keep the dispatch tables honest about which
// sequence each operation maps to. Screen.Reply is the one method
// that does NOT go to the local terminal — a DA/DSR/ENQ reply is
// addressed to the remote host, so it is written back to the serial
// transport instead.
type ansiScreen struct {
	display io.Writer // local controlling terminal
	replyTo io.Writer // serial transport, for DA/DSR/ENQ/mouse replies

	width, height int
	curAttr       term.Attr
	haveAttr      bool
}

func newAnsiScreen(display, replyTo io.Writer, width, height int) *ansiScreen {
	return &ansiScreen{display: display, replyTo: replyTo, width: width, height: height}
}

// setSize updates the size Resize reports.
func (s *ansiScreen) setSize(width, height int) {
	s.width, s.height = width, height
}

func (s *ansiScreen) Resize() (int, int) { return s.width, s.height }

func (s *ansiScreen) MoveCursor(x, y int) {
	fmt.Fprintf(s.display, "\x1b[%d;%dH", y+1, x+1)
}

// CursorPosition is never queried by the parser itself (it tracks
// cursorX/cursorY independently); returning zero values is enough to
// satisfy the interface.
func (s *ansiScreen) CursorPosition() (int, int) { return 0, 0 }

func (s *ansiScreen) Put(r rune, attr term.Attr) {
	s.applyAttr(attr)
	fmt.Fprint(s.display, string(r))
}

func (s *ansiScreen) applyAttr(attr term.Attr) {
	if s.haveAttr && attr == s.curAttr {
		return
	}
	s.curAttr = attr
	s.haveAttr = true

	codes := []string{"0"}
	if attr.Bold {
		codes = append(codes, "1")
	}
	if attr.Dim {
		codes = append(codes, "2")
	}
	if attr.Underline {
		codes = append(codes, "4")
	}
	if attr.Blink {
		codes = append(codes, "5")
	}
	if attr.Reverse {
		codes = append(codes, "7")
	}
	if attr.Invisible {
		codes = append(codes, "8")
	}
	if attr.Fg != term.ColorDefault {
		codes = append(codes, strconv.Itoa(30+int(attr.Fg)))
	}
	if attr.Bg != term.ColorDefault {
		codes = append(codes, strconv.Itoa(40+int(attr.Bg)))
	}

	fmt.Fprint(s.display, "\x1b[")
	for i, c := range codes {
		if i > 0 {
			fmt.Fprint(s.display, ";")
		}
		fmt.Fprint(s.display, c)
	}
	fmt.Fprint(s.display, "m")
}

func (s *ansiScreen) Erase(mode term.EraseMode, x, y int) {
	n := eraseModeDigit(mode)
	if n < 0 {
		return // EraseScrollback: xterm extension, no local scrollback to clear
	}
	fmt.Fprintf(s.display, "\x1b[%dJ", n)
}

func (s *ansiScreen) EraseLine(mode term.EraseMode, x, y int) {
	n := eraseModeDigit(mode)
	if n < 0 || n > 2 {
		return
	}
	fmt.Fprintf(s.display, "\x1b[%dK", n)
}

func eraseModeDigit(mode term.EraseMode) int {
	switch mode {
	case term.EraseToEnd:
		return 0
	case term.EraseToStart:
		return 1
	case term.EraseAll:
		return 2
	default:
		return -1
	}
}

func (s *ansiScreen) InsertLines(n int) { fmt.Fprintf(s.display, "\x1b[%dL", n) }
func (s *ansiScreen) DeleteLines(n int) { fmt.Fprintf(s.display, "\x1b[%dM", n) }
func (s *ansiScreen) InsertChars(n int) { fmt.Fprintf(s.display, "\x1b[%d@", n) }
func (s *ansiScreen) DeleteChars(n int) { fmt.Fprintf(s.display, "\x1b[%dP", n) }

// ScrollUp/ScrollDown temporarily set the margins to [top, bot],
// scroll, then restore full-screen margins — save/restore cursor
// around it since DECSTBM homes the cursor.
func (s *ansiScreen) ScrollUp(top, bot, n int) {
	fmt.Fprintf(s.display, "\x1b7\x1b[%d;%dr\x1b[%dS\x1b[1;%dr\x1b8", top+1, bot+1, n, s.height)
}

func (s *ansiScreen) ScrollDown(top, bot, n int) {
	fmt.Fprintf(s.display, "\x1b7\x1b[%d;%dr\x1b[%dT\x1b[1;%dr\x1b8", top+1, bot+1, n, s.height)
}

// SetMode/ResetMode forward DEC-private and ANSI modes verbatim; the
// local terminal is expected to understand the same mode numbers the
// remote host's VT100 output does (cursor visibility, mouse tracking).
func (s *ansiScreen) SetMode(mode int, dec bool) {
	if dec {
		fmt.Fprintf(s.display, "\x1b[?%dh", mode)
		return
	}
	fmt.Fprintf(s.display, "\x1b[%dh", mode)
}

func (s *ansiScreen) ResetMode(mode int, dec bool) {
	if dec {
		fmt.Fprintf(s.display, "\x1b[?%dl", mode)
		return
	}
	fmt.Fprintf(s.display, "\x1b[%dl", mode)
}

func (s *ansiScreen) Bell() { fmt.Fprint(s.display, "\a") }

// Reply sends a DA/DSR/ENQ/mouse-report reply back up the serial
// link, not to the local terminal.
func (s *ansiScreen) Reply(b []byte) { s.replyTo.Write(b) }

func (s *ansiScreen) Reset() {
	fmt.Fprint(s.display, "\x1bc")
	s.haveAttr = false
}
