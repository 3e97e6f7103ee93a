package xfer

import (
	"strconv"
	"strings"
	"time"
)

// marshalBlock0 encodes Ymodem batch metadata per spec §6: ASCII
// filename, NUL, ASCII decimal size, space, ASCII octal mtime, NUL,
// then NUL padding to size. An empty name (offer == nil) produces the
// end-of-batch sentinel block.
func marshalBlock0(offer *FileOffer, size int) []byte {
	buf := make([]byte, 0, size)
	if offer == nil {
		for len(buf) < size {
			buf = append(buf, 0)
		}
		return buf
	}
	buf = append(buf, []byte(offer.Name)...)
	buf = append(buf, 0)
	buf = append(buf, []byte(strconv.FormatInt(offer.Size, 10))...)
	buf = append(buf, ' ')
	mtime := int64(0)
	if !offer.ModTime.IsZero() {
		mtime = offer.ModTime.Unix()
	}
	buf = append(buf, []byte(strconv.FormatInt(mtime, 8))...)
	buf = append(buf, 0)
	for len(buf) < size {
		buf = append(buf, 0)
	}
	return buf
}

// parseBlock0 decodes a Ymodem block 0 payload into name/size/mtime. A
// zero-length filename signals end-of-batch (spec §3, §6).
func parseBlock0(payload []byte) (name string, size int64, mtime time.Time) {
	nullIdx := -1
	for i, b := range payload {
		if b == 0 {
			nullIdx = i
			break
		}
	}
	if nullIdx < 0 {
		return "", 0, time.Time{}
	}
	name = string(payload[:nullIdx])
	if name == "" {
		return "", 0, time.Time{}
	}

	rest := payload[nullIdx+1:]
	for len(rest) > 0 && rest[len(rest)-1] == 0 {
		rest = rest[:len(rest)-1]
	}
	fields := strings.Fields(string(rest))
	if len(fields) > 0 {
		if v, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
			size = v
		}
	}
	if len(fields) > 1 {
		if v, err := strconv.ParseInt(fields[1], 8, 64); err == nil && v > 0 {
			mtime = time.Unix(v, 0)
		}
	}
	return name, size, mtime
}
