package xfer

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

// ErrSkip is returned by FileHandler.AcceptFile to decline an incoming
// file without aborting the whole batch.
var ErrSkip = errors.New("xfer: skip file")

// FileInfo describes a file as carried in Ymodem batch metadata, or
// synthesized for plain Xmodem (name/size/mtime are never carried on
// the wire, so the receiver's FileInfo stays empty).
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// FileOffer describes a file queued for upload.
type FileOffer struct {
	Name    string
	Size    int64
	ModTime time.Time
	Reader  io.Reader
}

// FileHandler is the application collaborator for file operations:
// NextFile/AcceptFile/FileProgress/FileCompleted, generalized to
// Xmodem/Ymodem's single-active-file-at-a-time model and its batch
// end sentinel.
type FileHandler interface {
	// NextFile returns the next file to send, or nil when the Ymodem
	// batch (or single Xmodem transfer) is exhausted.
	NextFile() *FileOffer

	// AcceptFile decides whether to accept an incoming file. Return
	// (nil, ErrSkip) to skip it (Ymodem only; plain Xmodem has no
	// batch to continue into, so skipping aborts the session).
	//
	// SECURITY: callers MUST sanitize info.Name before using it as a
	// filesystem path; Ymodem batch names are attacker-controlled.
	AcceptFile(info FileInfo) (io.WriteCloser, error)

	// FileProgress is called after each data block sent or received
	// with the current byte count for the active file; one Feed call
	// that handles several blocks calls it several times.
	FileProgress(info FileInfo, transferred int64)

	// FileCompleted is called when a file finishes, successfully or
	// not.
	FileCompleted(info FileInfo, transferred int64, err error)
}

// TransferState enumerates the unified send/receive state machine
// (spec §3).
type TransferState int

const (
	StateInit TransferState = iota
	StatePurgeInput
	StateFirstBlock
	StateBlock
	StateLastBlock
	StateEOTAck
	StateComplete
	StateAbort
	StateYmodemBlock0
	StateYmodemBlock0Ack1
	StateYmodemBlock0Ack2
)

func (s TransferState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StatePurgeInput:
		return "PURGE_INPUT"
	case StateFirstBlock:
		return "FIRST_BLOCK"
	case StateBlock:
		return "BLOCK"
	case StateLastBlock:
		return "LAST_BLOCK"
	case StateEOTAck:
		return "EOT_ACK"
	case StateComplete:
		return "COMPLETE"
	case StateAbort:
		return "ABORT"
	case StateYmodemBlock0:
		return "YMODEM_BLOCK0"
	case StateYmodemBlock0Ack1:
		return "YMODEM_BLOCK0_ACK1"
	case StateYmodemBlock0Ack2:
		return "YMODEM_BLOCK0_ACK2"
	default:
		return "UNKNOWN"
	}
}

// direction distinguishes the two pump implementations sharing one
// Session/TransferState space (spec §4.3 vs §4.4).
type direction int

const (
	dirReceive direction = iota
	dirSend
)

// Config controls session timing and limits, with a defaults() method
// that fills zero-values before the session starts.
type Config struct {
	// TimeoutInterval is the per-wait timeout (default 10s). Relaxed
	// flavors multiply this by 10 (spec §4.3).
	TimeoutInterval time.Duration
	// TimeoutMax is the consecutive-timeout ceiling before abort
	// (default 10; relaxed flavors multiply by 10).
	TimeoutMax int
	// ErrorsMax is the error-count ceiling before abort (default 15,
	// spec §4/§7).
	ErrorsMax int
	// GarbageThreshold bounds bytes discarded per Feed call while
	// purging noise (default 1200).
	GarbageThreshold int
	// DownloadDir is stored with the Session's config but never read by
	// it: received files are always opened by FileHandler.AcceptFile.
	DownloadDir string
}

func (c *Config) defaults() {
	if c.TimeoutInterval <= 0 {
		c.TimeoutInterval = 10 * time.Second
	}
	if c.TimeoutMax <= 0 {
		c.TimeoutMax = 10
	}
	if c.ErrorsMax <= 0 {
		c.ErrorsMax = 15
	}
	if c.GarbageThreshold <= 0 {
		c.GarbageThreshold = 1200
	}
}

// Session is the single state machine implementing all seven flavors,
// both directions. Create one with NewReceiver or NewSender and drive
// it with Feed. A Session is not safe for concurrent use.
type Session struct {
	cfg    Config
	logger *slog.Logger
	dir    direction

	flavor      Flavor
	origFlavor  Flavor // remembered across a receiver downgrade, for reporting
	state       TransferState
	priorState  TransferState // for PURGE_INPUT return path (spec §4.3)
	firstByte   byte
	firstByteN  int // count of first-byte solicitations sent (FIRST_BLOCK retry/downgrade)
	handler     FileHandler
	stats       Stats
	garbageMax  int

	// sequencing
	seqI         byte // current_block_sequence_i, wraps mod 256
	blockNumber  int  // current_block_number, monotone, user-visible
	haveLastGood bool
	lastGoodSeq  byte

	// timeout bookkeeping
	timeoutCount int
	timeoutMax   int
	interval     time.Duration
	lastProgress time.Time
	freebie      bool // sender only: one 2x-interval grace for the receiver before the first timeout

	// active file
	curInfo    FileInfo
	curWriter  io.WriteCloser
	curReader  io.Reader
	curOffer   *FileOffer
	bytesDone  int64
	block0Seen bool
	pending    []byte // held-back last block payload, for Xmodem SUB trimming at EOT

	// scratch
	block *Block
	inbuf []byte // unconsumed input carried across Feed calls
	done  bool
}

func newSession(dir direction, flavor Flavor, handler FileHandler, cfg *Config) *Session {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	c.defaults()

	interval := c.TimeoutInterval
	timeoutMax := c.TimeoutMax
	if flavor.isRelaxed() {
		interval *= 10
		timeoutMax *= 10
	}

	s := &Session{
		cfg:        c,
		logger:     slog.Default(),
		dir:        dir,
		flavor:     flavor,
		origFlavor: flavor,
		handler:    handler,
		interval:   interval,
		timeoutMax: timeoutMax,
		garbageMax: c.GarbageThreshold,
		block:      newBlock(),
	}
	if flavor.isYmodem() {
		s.seqI = 0
	} else {
		s.seqI = 1
	}
	return s
}

// NewReceiver creates a Session that receives one file (Xmodem) or a
// batch (Ymodem) into files opened via handler.AcceptFile.
func NewReceiver(flavor Flavor, handler FileHandler, cfg *Config) *Session {
	s := newSession(dirReceive, flavor, handler, cfg)
	s.firstByte = flavor.initialByte()
	s.state = StateInit
	return s
}

// NewSender creates a Session that sends the files handler.NextFile
// yields until it returns nil (Ymodem batch end) or, for plain Xmodem,
// a single file.
func NewSender(flavor Flavor, handler FileHandler, cfg *Config) *Session {
	s := newSession(dirSend, flavor, handler, cfg)
	s.state = StateInit
	return s
}

// State returns the session's current TransferState.
func (s *Session) State() TransferState { return s.state }

// Flavor returns the flavor currently in effect, which may differ from
// OriginalFlavor after a receiver downgrade (spec §4.3, §8).
func (s *Session) Flavor() Flavor { return s.flavor }

// OriginalFlavor returns the flavor the Session was created with.
func (s *Session) OriginalFlavor() Flavor { return s.origFlavor }

// Stats returns a snapshot of the session's transfer statistics.
func (s *Session) Stats() Stats { return s.stats }

// SetLogger overrides the default slog.Logger.
func (s *Session) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Feed is the pump: it consumes newly-arrived transport bytes (nil is
// valid, purely to let timeout logic advance against now) and returns
// bytes to write to the transport. Feed never blocks and never
// allocates based on peer-controlled sizes beyond the configured
// garbage threshold.
func (s *Session) Feed(in []byte, now time.Time) []byte {
	if s == nil {
		return nil
	}
	var out []byte
	if len(in) > 0 {
		s.inbuf = append(s.inbuf, in...)
	}
	if s.lastProgress.IsZero() {
		s.lastProgress = now
		s.freebie = s.dir == dirSend
	}

	for !s.done {
		produced, consumed, progressed := s.step(now)
		out = append(out, produced...)
		if consumed {
			s.lastProgress = now
			s.freebie = false
			s.timeoutCount = 0
		}
		if !progressed {
			break
		}
	}
	return out
}

// step performs one iteration of the state machine: at most one block
// exchanged, or one timeout tick if no input is available. Returns
// bytes produced, whether input was consumed (resets the timeout
// clock), and whether the caller should loop again (more buffered
// input may still be processable, matching spec §5's "iterate
// internally ... stops when input is drained or state terminal").
func (s *Session) step(now time.Time) (out []byte, consumed bool, again bool) {
	if s.state == StateComplete || s.state == StateAbort {
		s.done = true
		return nil, false, false
	}

	if s.dir == dirReceive {
		return s.stepReceive(now)
	}
	return s.stepSend(now)
}

// checkTimeout advances the timeout clock when no bytes are pending
// and none arrived this tick. Returns (canBytes, hitMax): canBytes is
// non-nil when the caller should emit CAN and abort (receive-only
// asymmetry, spec §9).
func (s *Session) checkTimeout(now time.Time, emitCAN bool) (out []byte, aborted bool) {
	if len(s.inbuf) > 0 {
		return nil, false
	}
	deadline := s.interval
	if s.freebie {
		deadline = s.interval * 2
	}
	if now.Sub(s.lastProgress) < deadline {
		return nil, false
	}
	s.lastProgress = now
	s.freebie = false
	s.timeoutCount++
	s.stats.TimeoutCount++
	if s.timeoutCount >= s.timeoutMax {
		s.stats.LastError = &TransferError{Category: ErrTooManyTimeouts, Block: s.blockNumber}
		s.state = StateAbort
		s.done = true
		if emitCAN {
			return []byte{CAN, CAN}, true
		}
		return nil, true
	}
	return nil, false
}

func closeWriter(w io.WriteCloser) {
	if w != nil {
		_ = w.Close()
	}
}
