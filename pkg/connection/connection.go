// Package connection provides the byte transports blctl speaks the
// update protocol over: a direct serial link to the board, or a TCP
// socket to a `blctl bridge` relay in front of one.
package connection

import (
	"fmt"
	"strings"
)

// Connection is one open update-protocol link. Reads are exact-count
// because frames carry their own length in the header; there is no
// terminator byte to split on.
type Connection interface {
	// Open establishes the link to port (a device path or host:port).
	Open(port string) error

	// Close tears the link down.
	Close() error

	// IsOpen reports whether the link is currently usable.
	IsOpen() bool

	// Read returns exactly n bytes or an error, never a short slice.
	Read(n int) ([]byte, error)

	// Write sends all of data, reporting how much went out.
	Write(data []byte) (int, error)
}

// NewConnection picks the transport from the shape of port: anything
// with a ':' is taken as a bridge address ("192.168.1.114:2560"),
// anything else as a serial device ("COM3", "/dev/ttyUSB0").
func NewConnection(port string) Connection {
	if strings.Contains(port, ":") {
		return &TCPConnection{}
	}
	return &SerialConnection{}
}

// ValidatePort rejects an empty port string before any open attempt.
func ValidatePort(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	return nil
}
