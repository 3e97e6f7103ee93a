package main

import (
	"fmt"

	serial "github.com/daedaluz/goserial"
)

// serialtransport.go adapts github.com/daedaluz/goserial's *Port into
// the plain io.ReadWriteCloser the relay loop in main.go drains/fills
// each tick — the "opaque byte buffer transport" collaborator the
// pump model expects, backed by a real tty instead of a test double.

// baudRates maps the handful of rates bbsterm's -baud flag accepts to
// the termios CFlag constants goserial exposes.
var baudRates = map[int]serial.CFlag{
	300:     serial.B300,
	1200:    serial.B1200,
	2400:    serial.B2400,
	4800:    serial.B4800,
	9600:    serial.B9600,
	19200:   serial.B19200,
	38400:   serial.B38400,
	57600:   serial.B57600,
	115200:  serial.B115200,
	230400:  serial.B230400,
	460800:  serial.B460800,
	921600:  serial.B921600,
}

// openSerial opens device in raw 8-N-1 mode at baud, ready to carry
// the VT100 byte stream in both directions.
func openSerial(device string, baud int) (*serial.Port, error) {
	speed, ok := baudRates[baud]
	if !ok {
		return nil, fmt.Errorf("bbsterm: unsupported baud rate %d", baud)
	}

	port, err := serial.Open(device, nil)
	if err != nil {
		return nil, fmt.Errorf("bbsterm: open %s: %w", device, err)
	}

	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("bbsterm: get attr: %w", err)
	}
	attrs.MakeRaw()
	attrs.SetSpeed(speed)
	attrs.Cflag |= serial.CREAD | serial.CLOCAL
	if err := port.SetAttr(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("bbsterm: set attr: %w", err)
	}

	return port, nil
}
