package xfer

import (
	"io"
	"time"
)

// stepSend implements one iteration of the send-side state machine
// (spec §4.4).
func (s *Session) stepSend(now time.Time) (out []byte, consumed bool, again bool) {
	switch s.state {
	case StateInit:
		return s.stepSendInit(now)
	case StateYmodemBlock0:
		return s.stepYmodemBlock0(), true, true
	case StateYmodemBlock0Ack1:
		return s.stepYmodemBlock0Ack1(now)
	case StateYmodemBlock0Ack2:
		return s.stepYmodemBlock0Ack2(now)
	case StateBlock:
		return s.stepSendBlock(now)
	case StateLastBlock:
		return s.stepLastBlock(now)
	case StateEOTAck:
		return s.stepEOTAck(now)
	default:
		return nil, false, false
	}
}

func (s *Session) stepSendInit(now time.Time) (out []byte, consumed bool, again bool) {
	if len(s.inbuf) == 0 {
		if _, aborted := s.checkTimeout(now, false); aborted {
			return nil, false, false
		}
		return nil, false, false
	}
	b := s.inbuf[0]
	s.inbuf = s.inbuf[1:]

	if n, ok := s.beginFileIfNeeded(); !ok {
		return n, true, false
	}

	want := s.flavor.initialByte()
	switch {
	case b == want:
		if s.flavor.isYmodem() {
			s.firstByte = b
			s.state = StateYmodemBlock0
		} else {
			s.enterBlock()
		}
		return nil, true, true

	case b == NAK && s.flavor.usesCRC() && !s.flavor.isYmodem():
		// Receiver doesn't understand CRC/1K; downgrade and treat the
		// NAK as the normal-flavor solicitation (spec §4.4, §9).
		s.flavor = s.flavor.downgraded()
		s.stats.LastError = &TransferError{Category: ErrFallbackToNormal}
		s.enterBlock()
		return nil, true, true

	case b == CAN:
		s.state = StateAbort
		s.stats.LastError = &TransferError{Category: ErrCancelledByReceiver}
		return nil, true, false

	default:
		// Unexpected byte while waiting: ignore (noise).
		return nil, true, true
	}
}

// enterBlock transitions into StateBlock to send the first data block
// of a file. The handshake byte that got us here (the receiver's
// initial NAK/'C'/'G', or the solicitation after Ymodem's block 0) is
// itself the trigger to send block 1, so for non-streaming flavors we
// inject a synthetic ACK ahead of whatever is still buffered: stepSendBlock
// always waits to consume one ACK/NAK/CAN before producing a block, and
// none will otherwise arrive before the first one.
func (s *Session) enterBlock() {
	s.seqI = 1
	s.state = StateBlock
	if !s.flavor.isStreaming() {
		s.inbuf = append([]byte{ACK}, s.inbuf...)
	}
}

// beginFileIfNeeded asks the handler for the next file the first time
// we have something to send it for. Returns (out, ok): ok is false
// when there is nothing left to send (batch/Xmodem session complete).
func (s *Session) beginFileIfNeeded() ([]byte, bool) {
	if s.curOffer != nil {
		return nil, true
	}
	offer := s.handler.NextFile()
	if offer == nil {
		if s.flavor.isYmodem() {
			s.curOffer = nil
			s.state = StateYmodemBlock0 // will emit the end-of-batch sentinel block
			s.firstByte = s.flavor.initialByte()
			return nil, true
		}
		s.state = StateComplete
		return nil, false
	}
	s.curOffer = offer
	s.curInfo = FileInfo{Name: offer.Name, Size: offer.Size, ModTime: offer.ModTime}
	s.curReader = offer.Reader
	s.bytesDone = 0
	s.pending = nil
	return nil, true
}

func (s *Session) stepYmodemBlock0() []byte {
	payload := marshalBlock0(s.curOffer, blockSizeSmall)
	constructBlock(s.block, 0, payload, false, true)
	buf := append([]byte(nil), s.block.Bytes()...)
	s.pending = buf
	s.state = StateYmodemBlock0Ack1
	return buf
}

func (s *Session) stepYmodemBlock0Ack1(now time.Time) (out []byte, consumed bool, again bool) {
	if len(s.inbuf) == 0 {
		if can, aborted := s.checkTimeout(now, false); aborted {
			return can, false, false
		}
		return nil, false, false
	}
	b := s.inbuf[0]
	switch b {
	case ACK:
		s.inbuf = s.inbuf[1:]
		if s.curOffer == nil {
			s.state = StateComplete
			return nil, true, false
		}
		if len(s.inbuf) > 0 && (s.inbuf[0] == 'C' || s.inbuf[0] == 'G') {
			s.inbuf = s.inbuf[1:]
			s.enterBlock()
			return nil, true, true
		}
		s.state = StateYmodemBlock0Ack2
		return nil, true, true
	case 'C', 'G':
		// Peer coalesced ACK+first_byte is not distinguishable from a
		// bare first_byte on a lossy link; accept either (spec §9).
		s.inbuf = s.inbuf[1:]
		if s.curOffer == nil {
			s.state = StateComplete
			return nil, true, false
		}
		s.enterBlock()
		return nil, true, true
	case NAK:
		s.inbuf = s.inbuf[1:]
		out = append(out, s.pending...)
		return out, true, true
	case CAN:
		s.inbuf = s.inbuf[1:]
		s.state = StateAbort
		return nil, true, false
	default:
		s.inbuf = s.inbuf[1:]
		return nil, true, true
	}
}

func (s *Session) stepYmodemBlock0Ack2(now time.Time) (out []byte, consumed bool, again bool) {
	if len(s.inbuf) == 0 {
		if can, aborted := s.checkTimeout(now, false); aborted {
			return can, false, false
		}
		return nil, false, false
	}
	b := s.inbuf[0]
	s.inbuf = s.inbuf[1:]
	if b == 'C' || b == 'G' {
		s.enterBlock()
	}
	return nil, true, true
}

func (s *Session) stepSendBlock(now time.Time) (out []byte, consumed bool, again bool) {
	streaming := s.flavor.isStreaming()

	if !streaming {
		if len(s.inbuf) == 0 {
			if can, aborted := s.checkTimeout(now, false); aborted {
				return can, false, false
			}
			return nil, false, false
		}
		b := s.inbuf[0]
		switch b {
		case ACK:
			s.inbuf = s.inbuf[1:]
		case NAK:
			s.inbuf = s.inbuf[1:]
			return append([]byte(nil), s.pending...), true, true
		case CAN:
			s.inbuf = s.inbuf[1:]
			s.state = StateAbort
			return nil, true, false
		default:
			s.inbuf = s.inbuf[1:]
			return nil, true, true
		}
	}

	large := s.flavor.allowsLargeBlocks()
	size := blockSizeSmall
	if large {
		size = blockSizeLarge
	}
	buf := make([]byte, size)
	n, rerr := io.ReadFull(s.curReader, buf)
	if n == 0 && rerr != nil {
		// Nothing left to send: final block already went out on a
		// previous iteration (or the file was empty). Proceed to EOT.
		s.state = StateEOTAck
		return []byte{EOT}, true, true
	}
	useSmall := !large
	if large && n <= blockSizeSmall && rerr != nil {
		// Short final read on a 1K flavor: emit a 128-byte block to
		// save bandwidth (spec §4.2).
		useSmall = true
	}
	if useSmall && size != blockSizeSmall {
		buf = buf[:min(n, blockSizeSmall)]
	} else {
		buf = buf[:n]
	}

	constructBlock(s.block, s.seqI, buf, !useSmall, s.flavor.usesCRC())
	frame := append([]byte(nil), s.block.Bytes()...)
	s.pending = frame
	s.seqI = byte((int(s.seqI) + 1) % 256)
	s.blockNumber++
	s.bytesDone += int64(n)
	s.stats.BlocksOK++
	s.stats.BytesTransferred += int64(n)
	s.handler.FileProgress(s.curInfo, s.bytesDone)

	if rerr != nil { // io.EOF or io.ErrUnexpectedEOF: that was the last chunk
		s.state = StateLastBlock
	}
	return frame, true, true
}

func (s *Session) stepLastBlock(now time.Time) (out []byte, consumed bool, again bool) {
	if s.flavor.isStreaming() {
		// No per-block ACKs on a "-G" flavor: nothing will arrive to
		// unblock an ACK wait, so move straight to EOT.
		s.state = StateEOTAck
		return []byte{EOT}, false, true
	}
	if len(s.inbuf) == 0 {
		if can, aborted := s.checkTimeout(now, false); aborted {
			return can, false, false
		}
		return nil, false, false
	}
	b := s.inbuf[0]
	s.inbuf = s.inbuf[1:]
	switch b {
	case ACK:
		s.state = StateEOTAck
		return []byte{EOT}, true, true
	case NAK:
		return append([]byte(nil), s.pending...), true, true
	case CAN:
		s.state = StateAbort
		return nil, true, false
	default:
		return nil, true, true
	}
}

func (s *Session) stepEOTAck(now time.Time) (out []byte, consumed bool, again bool) {
	if len(s.inbuf) == 0 {
		if now.Sub(s.lastProgress) >= s.interval {
			s.lastProgress = now
			return []byte{EOT}, false, true
		}
		return nil, false, false
	}
	b := s.inbuf[0]
	s.inbuf = s.inbuf[1:]
	switch b {
	case ACK:
		s.handler.FileCompleted(s.curInfo, s.bytesDone, nil)
		if !s.flavor.isYmodem() {
			s.state = StateComplete
			return nil, true, false
		}
		s.curOffer = nil
		s.curReader = nil
		s.pending = nil
		s.state = StateInit
		return nil, true, true
	case CAN:
		s.state = StateAbort
		return nil, true, false
	default:
		return nil, true, true
	}
}
