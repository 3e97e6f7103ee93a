package xfer

import (
	"errors"
	"time"
)

const (
	firstBlockInterval = 3 * time.Second
	firstBlockRetries  = 5
)

// stepReceive implements one iteration of the receive-side state
// machine (spec §4.3).
func (s *Session) stepReceive(now time.Time) (out []byte, consumed bool, again bool) {
	switch s.state {
	case StateInit:
		if !s.flavor.isYmodem() {
			// Plain Xmodem carries no filename on the wire; the
			// destination is opened up front with whatever name/size
			// the caller already knows (spec §4.3).
			w, err := s.handler.AcceptFile(FileInfo{})
			if err != nil {
				s.stats.LastError = &TransferError{Category: ErrFileOpenError}
				s.state = StateAbort
				return nil, false, false
			}
			s.curWriter = w
		}
		s.firstByte = s.flavor.initialByte()
		out = append(out, s.firstByte)
		if s.flavor == XNormal || s.flavor == XRelaxed {
			s.state = StateBlock
		} else {
			s.state = StateFirstBlock
			s.firstByteN = 1
		}
		return out, false, true

	case StateFirstBlock:
		return s.stepFirstBlock(now)

	case StatePurgeInput:
		if len(s.inbuf) > 0 {
			n := len(s.inbuf)
			if n > s.garbageMax {
				n = s.garbageMax
			}
			s.inbuf = s.inbuf[n:]
			// Stop this Feed call once garbageMax bytes are dropped;
			// any remainder is purged on the next call.
			return nil, true, len(s.inbuf) == 0
		}
		if s.stats.ErrorCount >= s.cfg.ErrorsMax {
			s.state = StateAbort
			return nil, false, false
		}
		out = append(out, NAK)
		s.state = s.priorState
		return out, false, true

	case StateBlock:
		return s.stepBlock(now)

	default:
		return nil, false, false
	}
}

func (s *Session) stepFirstBlock(now time.Time) (out []byte, consumed bool, again bool) {
	if len(s.inbuf) > 0 {
		s.state = StateBlock
		return nil, false, true
	}
	if now.Sub(s.lastProgress) < firstBlockInterval {
		return nil, false, false
	}
	s.lastProgress = now
	if s.firstByteN >= firstBlockRetries {
		// Downgrade to plain Xmodem-Normal (spec §4.3, §8 "Downgrade").
		s.flavor = s.flavor.downgraded()
		s.seqI = 1
		s.stats.LastError = &TransferError{Category: ErrFallbackToNormal}
		out = append(out, NAK)
		s.state = StateBlock
		return out, false, true
	}
	s.firstByteN++
	out = append(out, s.firstByte)
	return out, false, false
}

func (s *Session) stepBlock(now time.Time) (out []byte, consumed bool, again bool) {
	if len(s.inbuf) == 0 {
		if can, aborted := s.checkTimeout(now, true); aborted {
			return can, false, false
		}
		return nil, false, false
	}

	// EOT detection.
	if s.inbuf[0] == EOT {
		s.inbuf = s.inbuf[1:]
		return s.handleEOT(), true, true
	}

	// CAN-storm abort (spec §9 GLOSSARY, receive-symmetric handling of
	// a peer cancel mid-transfer).
	if n := countLeading(s.inbuf, CAN); n >= 2 {
		s.inbuf = s.inbuf[n:]
		s.stats.LastError = &TransferError{Category: ErrCancelledByReceiver}
		s.state = StateAbort
		return nil, true, false
	}

	hdr := s.inbuf[0]
	size := 0
	switch hdr {
	case SOH:
		size = blockSizeSmall
	case STX:
		size = blockSizeLarge
	default:
		// Unrecognized leading byte: one byte of noise, purge it.
		s.inbuf = s.inbuf[1:]
		s.stats.statsIncrementErrors(ErrHeaderError, s.blockNumber+1)
		s.priorState = StateBlock
		s.state = StatePurgeInput
		return nil, true, true
	}

	trailer := 1
	if s.flavor.usesCRC() {
		trailer = 2
	}
	want := 3 + size + trailer
	if len(s.inbuf) < want {
		if can, aborted := s.checkTimeout(now, true); aborted {
			return can, false, false
		}
		return nil, false, false
	}

	raw := s.inbuf[:want]
	s.inbuf = s.inbuf[want:]

	expected := s.seqI
	payload, result := verifyBlock(raw, s.flavor.usesCRC(), expected, s.lastGoodSeq, s.haveLastGood)

	if result != verifyOK && result != verifyDuplicate {
		s.stats.statsIncrementErrors(result.errorCategory(), s.blockNumber+1)
		if s.flavor.isStreaming() {
			s.stats.LastError = &TransferError{Category: result.errorCategory()}
			s.state = StateAbort
			return nil, true, false
		}
		s.priorState = StateBlock
		s.state = StatePurgeInput
		return nil, true, true
	}

	if result == verifyDuplicate {
		s.stats.statsIncrementErrors(ErrDuplicateBlock, s.blockNumber)
		out = append(out, ACK)
		return out, true, true
	}

	// Ymodem block 0 (batch metadata), only meaningful while expecting
	// sequence 0 and not yet consumed one.
	if s.flavor.isYmodem() && expected == 0 && !s.block0Seen {
		return s.handleYmodemBlock0(payload), true, true
	}

	// Ordinary data block.
	s.writeBlockPayload(payload, hdr)
	s.lastGoodSeq = expected
	s.haveLastGood = true
	s.seqI = byte((int(s.seqI) + 1) % 256)
	s.blockNumber++
	growProjected := !s.flavor.isYmodem()
	var ymodemCeil int64
	if s.flavor.isYmodem() && s.curInfo.Size > 0 {
		// Session total at which the current file reaches its declared size.
		ymodemCeil = s.stats.BytesTransferred - s.bytesDone + s.curInfo.Size
	}
	before := s.stats.BytesTransferred
	s.stats.statsIncrementBlocks(len(payload), growProjected, ymodemCeil)
	s.bytesDone += s.stats.BytesTransferred - before
	s.handler.FileProgress(s.curInfo, s.bytesDone)

	if !s.flavor.isStreaming() {
		out = append(out, ACK)
	}
	return out, true, true
}

// writeBlockPayload holds back one block's worth of payload so that,
// for Xmodem, the final block's trailing SUB padding can be trimmed
// once EOT reveals which block was last (spec §4.2, §8 "SUB
// trimming"). Ymodem retains padding and truncates to the declared
// size instead.
func (s *Session) writeBlockPayload(payload []byte, hdr byte) {
	if s.curWriter == nil {
		return
	}
	if s.flavor.isYmodem() {
		_, _ = s.curWriter.Write(payload)
		return
	}
	if s.pending != nil {
		_, _ = s.curWriter.Write(s.pending)
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	s.pending = buf
}

func (s *Session) handleEOT() []byte {
	var out []byte
	if s.flavor.isYmodem() {
		if w, ok := s.curWriter.(truncater); ok && s.curInfo.Size > 0 {
			_ = w.Truncate(s.curInfo.Size)
		}
		closeWriter(s.curWriter)
		if w, ok := s.curWriter.(modTimeSetter); ok && !s.curInfo.ModTime.IsZero() {
			_ = w.SetModTime(s.curInfo.ModTime)
		}
		s.handler.FileCompleted(s.curInfo, s.bytesDone, nil)
		s.curWriter = nil
		s.block0Seen = false
		s.seqI = 0
		s.bytesDone = 0
		out = append(out, ACK)
		s.firstByte = s.flavor.initialByte()
		out = append(out, s.firstByte)
		// Remain in StateBlock awaiting the next block 0.
		return out
	}

	// Xmodem: flush the held-back final block, trimmed of SUB padding.
	if s.pending != nil && s.curWriter != nil {
		_, _ = s.curWriter.Write(trimTrailingSUB(s.pending))
		s.pending = nil
	}
	closeWriter(s.curWriter)
	s.curWriter = nil
	s.handler.FileCompleted(s.curInfo, s.bytesDone, nil)
	out = append(out, ACK)
	s.state = StateComplete
	return out
}

// handleYmodemBlock0 parses filename/size/mtime from a Ymodem block 0
// payload (spec §6 wire format) and opens the destination file, or
// terminates the batch if the filename field is empty.
func (s *Session) handleYmodemBlock0(payload []byte) []byte {
	name, size, mtime := parseBlock0(payload)
	var out []byte
	if name == "" {
		out = append(out, ACK)
		s.state = StateComplete
		return out
	}

	info := FileInfo{Name: name, Size: size, ModTime: mtime}
	w, err := s.handler.AcceptFile(info)
	if errors.Is(err, ErrSkip) {
		// Ymodem has no skip primitive on the wire: the file is still
		// received and ACKed, but its blocks are discarded (nil writer).
		w = nil
	} else if err != nil {
		s.stats.LastError = &TransferError{Category: ErrFileOpenError}
		s.state = StateAbort
		return nil
	}
	s.curWriter = w
	s.curInfo = info
	s.stats.ProjectedTotal += size
	s.block0Seen = true
	s.seqI = 1
	s.pending = nil
	out = append(out, ACK)
	s.firstByte = s.flavor.initialByte()
	out = append(out, s.firstByte)
	return out
}

func countLeading(b []byte, v byte) int {
	n := 0
	for n < len(b) && b[n] == v {
		n++
	}
	return n
}

// truncater is implemented by writers that support truncating to an
// exact size (e.g. *os.File), used for Ymodem's declared-size
// truncation (spec §4.3, §8).
type truncater interface {
	Truncate(size int64) error
}

// modTimeSetter is implemented by writers that can record a
// modification time after close ("touch mtime", spec §4.3).
type modTimeSetter interface {
	SetModTime(t time.Time) error
}
