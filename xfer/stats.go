package xfer

// Stats tracks per-session transfer progress, observable to a UI
// without the engine ever calling back into application code
// asynchronously (spec §4.5, §5).
type Stats struct {
	BlocksOK         int
	BlocksBad        int
	BytesTransferred int64
	// ProjectedTotal is the engine's best estimate of the total byte
	// count. For Ymodem receive it grows by each file's declared size
	// from block 0. For Xmodem receive (no up-front size) it grows by the
	// block's payload size as each block arrives (spec §4.5).
	ProjectedTotal int64
	TimeoutCount   int
	ErrorCount     int
	LastError      *TransferError
}

// statsIncrementBlocks records a successfully-verified block of the
// given payload size (128 or 1024, inferred from the header byte by
// the caller). For Xmodem receive, also grows ProjectedTotal by the
// same amount since the final size is unknown until EOT. If the block
// size changed mid-transfer (1K flavor degrading after a resend), the
// remaining-block projection is implicitly correct because we track
// bytes, not block counts. For Ymodem receive, ymodemCeil is the
// session total at which the current file reaches its declared size,
// so the bytes counted for one file never exceed that size (spec §4.5).
func (s *Stats) statsIncrementBlocks(payloadLen int, growProjected bool, ymodemCeil int64) {
	s.BlocksOK++
	n := int64(payloadLen)
	if ymodemCeil > 0 && s.BytesTransferred+n > ymodemCeil {
		n = ymodemCeil - s.BytesTransferred
		if n < 0 {
			n = 0
		}
	}
	s.BytesTransferred += n
	if growProjected {
		s.ProjectedTotal += int64(payloadLen)
	}
}

// statsIncrementErrors records a classified protocol error.
func (s *Stats) statsIncrementErrors(cat ErrorCategory, block int) {
	s.BlocksBad++
	s.ErrorCount++
	s.LastError = &TransferError{Category: cat, Block: block}
}
