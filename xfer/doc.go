// Package xfer implements the Xmodem/Ymodem family of file-transfer
// protocols as a single state machine covering seven flavors (Normal,
// Relaxed, CRC, 1K, 1K-G, Ymodem, Ymodem-G) in both send and receive
// directions.
//
// The engine is a pump: it never performs blocking I/O and never reads
// the wall clock. A caller drives a Session by repeatedly calling Feed
// with newly-arrived transport bytes (or nil, to let timeout logic
// advance) and the current time, and writes whatever Feed returns back
// to the transport. All protocol state lives in the Session; nothing
// is shared across sessions and nothing is safe for concurrent use by
// more than one goroutine at a time.
package xfer
