package xfer

import (
	"bytes"
	"testing"
	"time"
)

// TestGoldenXNormalUpload reproduces the X_NORMAL upload of a 300-byte
// file of 'A' bytes: NAK solicits SOH/1/0xFE/128×'A'/checksum, then
// SOH/2/0xFD/128×'A'/checksum, then SOH/3/0xFC/44×'A'+84×SUB/checksum,
// then EOT; the final ACK completes the transfer.
func TestGoldenXNormalUpload(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, 300)
	sh := &sendHandler{offers: []*FileOffer{{Name: "abc.txt", Size: 300, Reader: bytes.NewReader(data)}}}
	s := NewSender(XNormal, sh, nil)
	now := time.Now()

	out := s.Feed([]byte{NAK}, now)
	block1 := bytes.Repeat([]byte{'A'}, 128)
	want := append([]byte{SOH, 0x01, 0xFE}, block1...)
	want = append(want, Checksum8(block1))
	if !bytes.Equal(out, want) {
		t.Fatalf("block 1 = % X, want % X", out, want)
	}

	out = s.Feed([]byte{ACK}, now)
	want = append([]byte{SOH, 0x02, 0xFD}, block1...)
	want = append(want, Checksum8(block1))
	if !bytes.Equal(out, want) {
		t.Fatalf("block 2 = % X, want % X", out, want)
	}

	out = s.Feed([]byte{ACK}, now)
	block3 := append(bytes.Repeat([]byte{'A'}, 44), bytes.Repeat([]byte{SUB}, 84)...)
	want = append([]byte{SOH, 0x03, 0xFC}, block3...)
	want = append(want, Checksum8(block3))
	if !bytes.Equal(out, want) {
		t.Fatalf("block 3 = % X, want % X", out, want)
	}

	out = s.Feed([]byte{ACK}, now)
	if !bytes.Equal(out, []byte{EOT}) {
		t.Fatalf("after final block ACK = % X, want EOT", out)
	}

	out = s.Feed([]byte{ACK}, now)
	if len(out) != 0 {
		t.Fatalf("final ACK produced output % X, want none", out)
	}
	if s.State() != StateComplete {
		t.Fatalf("state = %v, want COMPLETE", s.State())
	}
}

// TestGoldenXCRCReceiveOneBlock reproduces the X_CRC receive of a
// single "hello" block padded with SUB, trimmed on EOT.
func TestGoldenXCRCReceiveOneBlock(t *testing.T) {
	rh := newRecvHandler()
	r := NewReceiver(XCRC, rh, nil)
	now := time.Now()

	out := r.Feed(nil, now)
	if !bytes.Equal(out, []byte{'C'}) {
		t.Fatalf("initial byte = % X, want 'C'", out)
	}

	payload := append([]byte("hello"), bytes.Repeat([]byte{SUB}, 123)...)
	crc := CRC16(payload)
	raw := append([]byte{SOH, 0x01, 0xFE}, payload...)
	raw = append(raw, byte(crc>>8), byte(crc&0xff))

	out = r.Feed(raw, now)
	if !bytes.Equal(out, []byte{ACK}) {
		t.Fatalf("block ACK = % X, want ACK", out)
	}

	out = r.Feed([]byte{EOT}, now)
	if !bytes.Equal(out, []byte{ACK}) {
		t.Fatalf("EOT ACK = % X, want ACK", out)
	}
	if s := r.State(); s != StateComplete {
		t.Fatalf("state = %v, want COMPLETE", s)
	}

	w := rh.files["unnamed"]
	if w == nil {
		t.Fatalf("no file accepted")
	}
	if w.buf.String() != "hello" {
		t.Errorf("file content = %q, want %q (SUB trimmed)", w.buf.String(), "hello")
	}
}

// TestGoldenYmodemBlock0Layout reproduces the Y_NORMAL upload block 0
// payload layout for file "t" size=5 mtime=0o1.
func TestGoldenYmodemBlock0Layout(t *testing.T) {
	offer := &FileOffer{Name: "t", Size: 5, ModTime: time.Unix(1, 0)}
	raw := marshalBlock0(offer, blockSizeSmall)

	want := []byte("t\x005 1\x00")
	if !bytes.Equal(raw[:len(want)], want) {
		t.Fatalf("block0 prefix = % X (%q), want % X (%q)", raw[:len(want)], raw[:len(want)], want, want)
	}
	for i := len(want); i < len(raw); i++ {
		if raw[i] != 0 {
			t.Fatalf("block0 padding byte %d = 0x%02x, want 0x00", i, raw[i])
		}
	}
}

// TestSequenceWrapXmodem reproduces sending 260 blocks back-to-back:
// sequence bytes wrap 1,2,...,255,0,1,2,3,4.
func TestSequenceWrapXmodem(t *testing.T) {
	b := newBlock()
	seq := byte(1)
	var got []byte
	for i := 0; i < 260; i++ {
		constructBlock(b, seq, []byte("x"), false, true)
		got = append(got, b.sequence())
		seq = byte((int(seq) + 1) % 256)
	}
	if got[0] != 1 || got[253] != 254 || got[254] != 255 || got[255] != 0 || got[259] != 4 {
		t.Fatalf("sequence wrap wrong: first=%d idx253=%d idx254=%d idx255=%d last=%d",
			got[0], got[253], got[254], got[255], got[259])
	}
}

// TestSequenceWrapYmodem reproduces 260 Ymodem blocks after block 0:
// 0,1,...,255,0,1,2,3.
func TestSequenceWrapYmodem(t *testing.T) {
	b := newBlock()
	seq := byte(0)
	var got []byte
	for i := 0; i < 260; i++ {
		constructBlock(b, seq, []byte("x"), false, true)
		got = append(got, b.sequence())
		seq = byte((int(seq) + 1) % 256)
	}
	if got[0] != 0 || got[255] != 255 || got[256] != 0 || got[259] != 3 {
		t.Fatalf("sequence wrap wrong: first=%d idx255=%d idx256=%d last=%d",
			got[0], got[255], got[256], got[259])
	}
}

// TestDowngradeFiveRetries reproduces the Downgrade testable property:
// receiver emits 'C' five times at 3s intervals with no reply, then on
// the sixth invocation emits NAK and is in state BLOCK.
func TestDowngradeFiveRetries(t *testing.T) {
	rh := newRecvHandler()
	r := NewReceiver(XCRC, rh, nil)
	now := time.Now()

	out := r.Feed(nil, now)
	if !bytes.Equal(out, []byte{'C'}) {
		t.Fatalf("first byte = % X, want 'C'", out)
	}

	for i := 0; i < 4; i++ {
		now = now.Add(3 * time.Second)
		out = r.Feed(nil, now)
		if !bytes.Equal(out, []byte{'C'}) {
			t.Fatalf("retry %d = % X, want 'C'", i+2, out)
		}
	}

	now = now.Add(3 * time.Second)
	out = r.Feed(nil, now)
	if !bytes.Equal(out, []byte{NAK}) {
		t.Fatalf("sixth invocation = % X, want NAK", out)
	}
	if r.State() != StateBlock {
		t.Fatalf("state = %v, want BLOCK", r.State())
	}
	if r.Flavor() != XNormal {
		t.Fatalf("flavor = %v, want downgraded to XNormal", r.Flavor())
	}
}

// TestTimeoutAbort reproduces the Timeout abort testable property:
// with no input for 10 consecutive timeout intervals the core emits
// CAN and transitions to ABORT with error counter >= 10.
func TestTimeoutAbort(t *testing.T) {
	rh := newRecvHandler()
	r := NewReceiver(XNormal, rh, nil)
	now := time.Now()

	out := r.Feed(nil, now)
	if !bytes.Equal(out, []byte{NAK}) {
		t.Fatalf("first byte = % X, want NAK", out)
	}

	var last []byte
	for i := 0; i < 10; i++ {
		now = now.Add(11 * time.Second)
		last = r.Feed(nil, now)
	}
	if !bytes.Equal(last, []byte{CAN, CAN}) {
		t.Fatalf("final output = % X, want CAN CAN", last)
	}
	if r.State() != StateAbort {
		t.Fatalf("state = %v, want ABORT", r.State())
	}
	if r.stats.TimeoutCount < 10 {
		t.Fatalf("TimeoutCount = %d, want >= 10", r.stats.TimeoutCount)
	}
}

// TestDuplicateBlockACKedNotAppended reproduces the Duplicate block
// testable property: replaying the most recent good block results in
// an ACK, but the payload is not appended to the file a second time.
func TestDuplicateBlockACKedNotAppended(t *testing.T) {
	rh := newRecvHandler()
	r := NewReceiver(XCRC, rh, nil)
	now := time.Now()
	r.Feed(nil, now)
	w := r.curWriter.(*memWriter)

	payload := append([]byte("hello"), bytes.Repeat([]byte{SUB}, 123)...)
	crc := CRC16(payload)
	raw := append([]byte{SOH, 0x01, 0xFE}, payload...)
	raw = append(raw, byte(crc>>8), byte(crc&0xff))

	out := r.Feed(raw, now)
	if !bytes.Equal(out, []byte{ACK}) {
		t.Fatalf("first send ACK = % X", out)
	}

	out = r.Feed(raw, now)
	if !bytes.Equal(out, []byte{ACK}) {
		t.Fatalf("duplicate ACK = % X, want ACK", out)
	}
	if r.stats.ErrorCount == 0 {
		t.Fatalf("duplicate block should still increment ErrorCount")
	}

	r.Feed([]byte{EOT}, now)
	if w.buf.String() != "hello" {
		t.Fatalf("file content = %q, want %q (duplicate must not be appended twice)", w.buf.String(), "hello")
	}
}
