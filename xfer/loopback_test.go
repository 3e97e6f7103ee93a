package xfer

import (
	"bytes"
	"io"
	"testing"
	"time"
)

// memWriter is an in-memory io.WriteCloser that also implements
// truncater and modTimeSetter, so Ymodem's declared-size truncation and
// mtime-touch can be exercised without touching a real filesystem.
type memWriter struct {
	buf     bytes.Buffer
	closed  bool
	mtime   time.Time
	trunced bool
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *memWriter) Close() error                { w.closed = true; return nil }
func (w *memWriter) Truncate(size int64) error {
	w.trunced = true
	w.buf.Truncate(int(size))
	return nil
}
func (w *memWriter) SetModTime(t time.Time) error { w.mtime = t; return nil }

// sendHandler feeds a fixed list of files to a sending Session.
type sendHandler struct {
	offers []*FileOffer
	i      int
}

func (h *sendHandler) NextFile() *FileOffer {
	if h.i >= len(h.offers) {
		return nil
	}
	o := h.offers[h.i]
	h.i++
	return o
}
func (h *sendHandler) AcceptFile(FileInfo) (io.WriteCloser, error) { return nil, nil }
func (h *sendHandler) FileProgress(FileInfo, int64)                {}
func (h *sendHandler) FileCompleted(FileInfo, int64, error)        {}

// recvHandler collects received files keyed by name.
type recvHandler struct {
	files     map[string]*memWriter
	completed map[string]error
}

func newRecvHandler() *recvHandler {
	return &recvHandler{files: map[string]*memWriter{}, completed: map[string]error{}}
}
func (h *recvHandler) NextFile() *FileOffer { return nil }
func (h *recvHandler) AcceptFile(info FileInfo) (io.WriteCloser, error) {
	w := &memWriter{}
	name := info.Name
	if name == "" {
		name = "unnamed"
	}
	h.files[name] = w
	return w, nil
}
func (h *recvHandler) FileProgress(FileInfo, int64) {}
func (h *recvHandler) FileCompleted(info FileInfo, transferred int64, err error) {
	h.completed[info.Name] = err
}

// pumpUntilComplete drives sender and receiver against each other until
// both reach a terminal state, or fails the test if that never happens.
func pumpUntilComplete(t *testing.T, sender, receiver *Session) {
	t.Helper()
	now := time.Now()
	step := 20 * time.Millisecond

	fromReceiver := receiver.Feed(nil, now)
	for i := 0; i < 10000; i++ {
		now = now.Add(step)
		toReceiver := sender.Feed(fromReceiver, now)
		fromReceiver = receiver.Feed(toReceiver, now)

		senderDone := sender.State() == StateComplete || sender.State() == StateAbort
		receiverDone := receiver.State() == StateComplete || receiver.State() == StateAbort
		if senderDone && receiverDone {
			if sender.State() == StateAbort || receiver.State() == StateAbort {
				t.Fatalf("transfer aborted: sender=%v receiver=%v", sender.State(), receiver.State())
			}
			return
		}
		if len(toReceiver) == 0 && len(fromReceiver) == 0 {
			// No bytes exchanged this round: let timeouts advance faster.
			now = now.Add(11 * time.Second)
		}
	}
	t.Fatalf("transfer did not complete: sender=%v receiver=%v", sender.State(), receiver.State())
}

func TestLoopbackXmodemCRC(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 50)
	sh := &sendHandler{offers: []*FileOffer{{Name: "fox.txt", Size: int64(len(data)), Reader: bytes.NewReader(data)}}}
	rh := newRecvHandler()

	sender := NewSender(XCRC, sh, nil)
	receiver := NewReceiver(XCRC, rh, nil)

	pumpUntilComplete(t, sender, receiver)

	// Plain Xmodem carries no filename on the wire; the receiver opens
	// the destination from out-of-band knowledge, so AcceptFile sees an
	// empty FileInfo.
	w, ok := rh.files["unnamed"]
	if !ok {
		t.Fatalf("file not received")
	}
	if !bytes.Equal(w.buf.Bytes(), data) {
		t.Errorf("received %d bytes, want %d bytes; content mismatch", w.buf.Len(), len(data))
	}
	if err, ok := rh.completed[""]; !ok || err != nil {
		t.Errorf("FileCompleted not called cleanly: ok=%v err=%v", ok, err)
	}
}

func TestLoopbackXmodem1K(t *testing.T) {
	data := bytes.Repeat([]byte{0xAA, 0x55}, 3000) // not a multiple of 1024
	sh := &sendHandler{offers: []*FileOffer{{Name: "bin.dat", Size: int64(len(data)), Reader: bytes.NewReader(data)}}}
	rh := newRecvHandler()

	sender := NewSender(X1K, sh, nil)
	receiver := NewReceiver(X1K, rh, nil)

	pumpUntilComplete(t, sender, receiver)

	w := rh.files["unnamed"]
	if w == nil || !bytes.Equal(w.buf.Bytes(), data) {
		t.Errorf("content mismatch for 1K transfer")
	}
}

func TestLoopbackYmodemSingleFile(t *testing.T) {
	data := []byte("ymodem batch payload, short file")
	mtime := time.Unix(1700000000, 0)
	sh := &sendHandler{offers: []*FileOffer{
		{Name: "note.txt", Size: int64(len(data)), ModTime: mtime, Reader: bytes.NewReader(data)},
	}}
	rh := newRecvHandler()

	sender := NewSender(YNormal, sh, nil)
	receiver := NewReceiver(YNormal, rh, nil)

	pumpUntilComplete(t, sender, receiver)

	w, ok := rh.files["note.txt"]
	if !ok {
		t.Fatalf("file not received")
	}
	if !bytes.Equal(w.buf.Bytes(), data) {
		t.Errorf("content = %q, want %q", w.buf.Bytes(), data)
	}
	if !w.trunced {
		t.Errorf("expected Truncate to be called for declared-size Ymodem block")
	}
	if !w.mtime.Equal(mtime) {
		t.Errorf("mtime = %v, want %v", w.mtime, mtime)
	}
}

func TestLoopbackYmodemTwoFiles(t *testing.T) {
	a := []byte("first file contents")
	b := bytes.Repeat([]byte("second file, longer\n"), 100)
	sh := &sendHandler{offers: []*FileOffer{
		{Name: "a.txt", Size: int64(len(a)), Reader: bytes.NewReader(a)},
		{Name: "b.txt", Size: int64(len(b)), Reader: bytes.NewReader(b)},
	}}
	rh := newRecvHandler()

	sender := NewSender(YNormal, sh, nil)
	receiver := NewReceiver(YNormal, rh, nil)

	pumpUntilComplete(t, sender, receiver)

	if w := rh.files["a.txt"]; w == nil || !bytes.Equal(w.buf.Bytes(), a) {
		t.Errorf("a.txt content mismatch")
	}
	if w := rh.files["b.txt"]; w == nil || !bytes.Equal(w.buf.Bytes(), b) {
		t.Errorf("b.txt content mismatch")
	}
}

func TestLoopbackYmodemG(t *testing.T) {
	data := bytes.Repeat([]byte("streaming flavor, no per-block ACKs\n"), 80)
	sh := &sendHandler{offers: []*FileOffer{
		{Name: "stream.bin", Size: int64(len(data)), Reader: bytes.NewReader(data)},
	}}
	rh := newRecvHandler()

	sender := NewSender(YG, sh, nil)
	receiver := NewReceiver(YG, rh, nil)

	pumpUntilComplete(t, sender, receiver)

	w := rh.files["stream.bin"]
	if w == nil || !bytes.Equal(w.buf.Bytes(), data) {
		t.Errorf("content mismatch for Ymodem-G transfer")
	}
}
