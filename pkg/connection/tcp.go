package connection

import (
	"fmt"
	"io"
	"net"
	"time"
)

const dialTimeout = 10 * time.Second

// TCPConnection carries update-protocol frames over a TCP socket,
// normally one served by `blctl bridge` relaying to the board's serial
// link.
type TCPConnection struct {
	conn   net.Conn
	isOpen bool
}

// Open dials addr (host:port) with a fixed timeout.
func (t *TCPConnection) Open(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("bad bridge address %q: %w", addr, err)
	}

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("dial bridge %s: %w", addr, err)
	}

	t.conn = conn
	t.isOpen = true
	return nil
}

// Close shuts the socket down.
func (t *TCPConnection) Close() error {
	if t.conn == nil {
		return nil
	}
	t.isOpen = false
	return t.conn.Close()
}

// IsOpen reports whether Open has succeeded and Close has not been
// called since.
func (t *TCPConnection) IsOpen() bool {
	return t.isOpen
}

// Read returns exactly n bytes. Frames have no terminator on the wire,
// so a short read is always an error, never a partial result.
func (t *TCPConnection) Read(n int) ([]byte, error) {
	if t.conn == nil {
		return nil, fmt.Errorf("bridge connection not open")
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(t.conn, buf); err != nil {
		return nil, fmt.Errorf("read %d bytes from bridge: %w", n, err)
	}
	return buf, nil
}

// Write sends all of data.
func (t *TCPConnection) Write(data []byte) (int, error) {
	if t.conn == nil {
		return 0, fmt.Errorf("bridge connection not open")
	}

	n, err := t.conn.Write(data)
	if err != nil {
		return n, fmt.Errorf("write %d bytes to bridge: %w", len(data), err)
	}
	return n, nil
}
