package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kvenn/bbscore/xfer"
)

// transfer.go wires xfer.Session to a real serial transport: the same
// Feed(in, now) pump loopback_test.go drives against an in-memory
// transport, here fed from and drained into an actual tty.

// fileWriter adapts *os.File to xfer's truncater/modTimeSetter
// collaborator interfaces (receive.go) so a Ymodem batch's declared
// size and mtime are honored on real files, not just memWriter's test
// double.
type fileWriter struct {
	*os.File
	path string
}

func (w *fileWriter) SetModTime(t time.Time) error {
	return os.Chtimes(w.path, t, t)
}

// uploadHandler offers a single file to a sending Session.
type uploadHandler struct {
	offer *xfer.FileOffer
	sent  bool
	log   *slog.Logger
}

func newUploadHandler(path string, log *slog.Logger) (*uploadHandler, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &uploadHandler{
		offer: &xfer.FileOffer{
			Name:    filepath.Base(path),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Reader:  f,
		},
		log: log,
	}, nil
}

func (h *uploadHandler) NextFile() *xfer.FileOffer {
	if h.sent {
		return nil
	}
	h.sent = true
	return h.offer
}

func (h *uploadHandler) AcceptFile(xfer.FileInfo) (io.WriteCloser, error) { return nil, xfer.ErrSkip }
func (h *uploadHandler) FileProgress(info xfer.FileInfo, n int64) {
	h.log.Debug("upload progress", "file", info.Name, "bytes", n)
}
func (h *uploadHandler) FileCompleted(info xfer.FileInfo, n int64, err error) {
	h.log.Info("upload complete", "file", info.Name, "bytes", n, "error", err)
}

// downloadHandler saves every offered file under dir.
type downloadHandler struct {
	dir string
	log *slog.Logger
}

func newDownloadHandler(dir string, log *slog.Logger) *downloadHandler {
	return &downloadHandler{dir: dir, log: log}
}

func (h *downloadHandler) NextFile() *xfer.FileOffer { return nil }

func (h *downloadHandler) AcceptFile(info xfer.FileInfo) (io.WriteCloser, error) {
	name := info.Name
	if name == "" {
		name = "bbsterm-download"
	}
	// SECURITY: info.Name arrives over the wire from the remote host
	// in a Ymodem batch header; filepath.Base strips any directory
	// component before it is ever used as a path, per FileHandler's
	// documented contract.
	path := filepath.Join(h.dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &fileWriter{File: f, path: path}, nil
}

func (h *downloadHandler) FileProgress(info xfer.FileInfo, n int64) {
	h.log.Debug("download progress", "file", info.Name, "bytes", n)
}
func (h *downloadHandler) FileCompleted(info xfer.FileInfo, n int64, err error) {
	h.log.Info("download complete", "file", info.Name, "bytes", n, "error", err)
}

// runTransfer drives session against transport until it reaches a
// terminal state, pumping Feed on every read and on a fixed tick so
// the session's own timeout bookkeeping (never wall-clock internally,
// per spec §1) keeps advancing while the line is idle.
func runTransfer(session *xfer.Session, transport io.ReadWriter) error {
	in := make(chan []byte, 16)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := transport.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				in <- chunk
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	pump := func(data []byte) error {
		out := session.Feed(data, time.Now())
		if len(out) > 0 {
			if _, err := transport.Write(out); err != nil {
				return err
			}
		}
		return nil
	}

	if err := pump(nil); err != nil {
		return err
	}
	for {
		if session.State() == xfer.StateComplete {
			return nil
		}
		if session.State() == xfer.StateAbort {
			return fmt.Errorf("bbsterm: transfer aborted (flavor %v, %d errors)",
				session.Flavor(), session.Stats().ErrorCount)
		}
		select {
		case data := <-in:
			if err := pump(data); err != nil {
				return err
			}
		case <-ticker.C:
			if err := pump(nil); err != nil {
				return err
			}
		case err := <-readErr:
			return err
		}
	}
}
