package xfer

import "errors"

// Sentinel errors for programmer errors (misuse of the API).
// Protocol-level faults (bad CRC, timeout, peer cancel) are never
// returned as errors — they are surfaced through Stats, per the
// classification in spec §7. Feed has no error result, so no entry
// point returns these sentinels; Feed on a nil *Session returns nil.
var (
	errOutputTooSmall = errors.New("xfer: output buffer must have at least 1024+5 bytes free")
	errNoSession      = errors.New("xfer: session is nil")
	errAlreadyActive  = errors.New("xfer: session already driven by a concurrent Feed call")
)

// ErrorCategory classifies a non-fatal or fatal transfer error for
// observability, per spec §7's taxonomy. It is never used for Go-level
// control flow inside the package — only attached to Stats.LastError.
type ErrorCategory int

const (
	ErrNone ErrorCategory = iota
	ErrShortBlock
	ErrLongBlock
	ErrHeaderError
	ErrBadBlockNumber
	ErrComplementByteBad
	ErrCRCError
	ErrChecksumError
	ErrDuplicateBlock
	ErrFileOpenError
	ErrDiskReadError
	ErrDiskWriteError
	ErrTimeout
	ErrLineNoise
	ErrTooManyTimeouts
	ErrCancelledByReceiver
	ErrFallbackToNormal
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrNone:
		return "none"
	case ErrShortBlock:
		return "short block"
	case ErrLongBlock:
		return "long block"
	case ErrHeaderError:
		return "header error"
	case ErrBadBlockNumber:
		return "bad block number"
	case ErrComplementByteBad:
		return "complement byte bad"
	case ErrCRCError:
		return "crc error"
	case ErrChecksumError:
		return "checksum error"
	case ErrDuplicateBlock:
		return "duplicate block"
	case ErrFileOpenError:
		return "file open error"
	case ErrDiskReadError:
		return "disk read error"
	case ErrDiskWriteError:
		return "disk write error"
	case ErrTimeout:
		return "timeout"
	case ErrLineNoise:
		return "line noise"
	case ErrTooManyTimeouts:
		return "too many timeouts"
	case ErrCancelledByReceiver:
		return "transfer cancelled by receiver"
	case ErrFallbackToNormal:
		return "fallback to normal xmodem"
	default:
		return "unknown"
	}
}

// TransferError records a single classified protocol error for Stats.
type TransferError struct {
	Category ErrorCategory
	Block    int
}

func (e TransferError) Error() string {
	return e.Category.String()
}
