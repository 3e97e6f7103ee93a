// Command bbsterm is a thin demonstration client: it puts the local
// controlling terminal in raw mode, opens a serial line, and pumps
// bytes between them through a term.Parser so the remote end's
// VT100/Linux-console/xterm output renders locally — or, given
// -send/-recv, drives an xfer.Session over the same line instead.
// It exists to prove the pump model end-to-end against a real
// transport; the core logic lives in the term and xfer packages.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	bterm "github.com/kvenn/bbscore/term"
	"github.com/kvenn/bbscore/xfer"
)

func main() {
	device := flag.String("device", "/dev/ttyUSB0", "serial device to dial")
	baud := flag.Int("baud", 115200, "serial baud rate")
	answerBack := flag.String("answerback", "bbsterm", "string replied to ENQ")
	linux := flag.Bool("linux", false, "enable Linux-console SGR/OSC quirks")
	sendPath := flag.String("send", "", "upload this file via Xmodem/Ymodem instead of opening an interactive session")
	recvDir := flag.String("recv", "", "receive into this directory via Xmodem/Ymodem instead of opening an interactive session")
	flavor := flag.String("flavor", "ymodem", "transfer flavor: xmodem, xcrc, x1k, x1kg, ymodem, ymodemg")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	port, err := openSerial(*device, *baud)
	if err != nil {
		logger.Error("open serial", "error", err)
		os.Exit(1)
	}
	defer port.Close()

	if *sendPath != "" || *recvDir != "" {
		if err := runTransferMode(port, *sendPath, *recvDir, *flavor, logger); err != nil {
			logger.Error("transfer failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runInteractive(port, *answerBack, *linux, logger); err != nil {
		logger.Error("session failed", "error", err)
		os.Exit(1)
	}
}

func parseFlavor(name string) (xfer.Flavor, error) {
	switch name {
	case "xmodem":
		return xfer.XNormal, nil
	case "xrelaxed":
		return xfer.XRelaxed, nil
	case "xcrc":
		return xfer.XCRC, nil
	case "x1k":
		return xfer.X1K, nil
	case "x1kg":
		return xfer.X1KG, nil
	case "ymodem":
		return xfer.YNormal, nil
	case "ymodemg":
		return xfer.YG, nil
	default:
		return 0, fmt.Errorf("bbsterm: unknown flavor %q", name)
	}
}

func runTransferMode(port io.ReadWriter, sendPath, recvDir, flavorName string, logger *slog.Logger) error {
	flavor, err := parseFlavor(flavorName)
	if err != nil {
		return err
	}

	var session *xfer.Session
	switch {
	case sendPath != "":
		h, err := newUploadHandler(sendPath, logger)
		if err != nil {
			return fmt.Errorf("bbsterm: %w", err)
		}
		session = xfer.NewSender(flavor, h, nil)
	case recvDir != "":
		if err := os.MkdirAll(recvDir, 0o755); err != nil {
			return fmt.Errorf("bbsterm: %w", err)
		}
		h := newDownloadHandler(recvDir, logger)
		session = xfer.NewReceiver(flavor, h, nil)
	default:
		return fmt.Errorf("bbsterm: neither -send nor -recv given")
	}
	session.SetLogger(logger)

	return runTransfer(session, port)
}

// runInteractive relays bytes between the serial line and the local
// controlling terminal through a bterm.Parser, so the remote host's
// VT100/ANSI output renders on the real screen.
func runInteractive(port io.ReadWriter, answerBack string, linux bool, logger *slog.Logger) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("bbsterm: stdin is not a terminal")
	}

	width, height, err := term.GetSize(fd)
	if err != nil {
		width, height = 80, 24
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("bbsterm: make raw: %w", err)
	}
	defer term.Restore(fd, oldState)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		term.Restore(fd, oldState)
		os.Exit(0)
	}()

	screen := newAnsiScreen(os.Stdout, port, width, height)
	parser := bterm.New(screen, &bterm.Config{
		ScreenWidth:  width,
		ScreenHeight: height,
		AnswerBack:   answerBack,
		Linux:        linux,
	})
	parser.SetLogger(logger)

	done := make(chan error, 2)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := port.Read(buf)
			if n > 0 {
				parser.Write(buf[:n])
			}
			if err != nil {
				done <- err
				return
			}
		}
	}()
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if _, werr := port.Write(buf[:n]); werr != nil {
					done <- werr
					return
				}
			}
			if err != nil {
				done <- err
				return
			}
		}
	}()

	return <-done
}
