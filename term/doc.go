// Package term implements a DEC-ANSI compatible terminal parser: a
// byte-stream scanner following the Paul Williams state diagram
// (GROUND / ESCAPE / CSI / DCS / OSC / SOS-PM-APC / VT52), a
// character-set mapper, 8-bit and Unicode translate tables, and a
// keyboard encoder.
//
// Like xfer, the parser is a pump: Write never blocks and never reads
// the wall clock. It mutates an external Screen collaborator and
// writes terminal replies (DA, DSR, mouse reports) through the same
// collaborator rather than returning bytes, since those replies are
// not responses to the call that triggered them in any 1:1 sense.
package term
