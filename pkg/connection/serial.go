package connection

import (
	"fmt"
	"time"

	"github.com/kvatra/blackshield/pkg/config"
	"go.bug.st/serial"
)

// SerialConnection is the direct link to a board running the
// bootloader: 8N1 at the configured rate (the device defaults to
// 256000 baud).
type SerialConnection struct {
	port   serial.Port
	config *config.Config
}

// NewSerialConnection creates a serial connection using cfg for the
// data rate and read timeout.
func NewSerialConnection(cfg *config.Config) *SerialConnection {
	return &SerialConnection{config: cfg}
}

// Open opens portName with the configured rate and an 8N1 frame, the
// fixed line settings of the device's update link.
func (s *SerialConnection) Open(portName string) error {
	if s.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		s.config = cfg
	}

	mode := &serial.Mode{
		BaudRate: s.config.DataRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		// Some USB-serial adapters need a second open attempt right
		// after enumeration.
		if port != nil {
			port.Close()
		}
		port, err = serial.Open(portName, mode)
		if err != nil {
			return fmt.Errorf("open serial port %s: %w", portName, err)
		}
	}

	timeout := time.Duration(s.config.Timeout) * time.Second
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout on %s: %w", portName, err)
	}

	s.port = port
	return nil
}

// Close releases the port.
func (s *SerialConnection) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}

// IsOpen reports whether Open has succeeded.
func (s *SerialConnection) IsOpen() bool {
	return s.port != nil
}

// Read returns exactly n bytes. The device answers each command with
// one complete frame, so a timeout mid-frame means the link (or the
// board) dropped out and is reported as an error.
func (s *SerialConnection) Read(n int) ([]byte, error) {
	if s.port == nil {
		return nil, fmt.Errorf("serial port not open")
	}

	buf := make([]byte, n)
	got := 0
	for got < n {
		r, err := s.port.Read(buf[got:])
		if err != nil {
			return nil, fmt.Errorf("serial read: %w", err)
		}
		if r == 0 {
			return nil, fmt.Errorf("serial read timed out %d bytes into a %d-byte frame read", got, n)
		}
		got += r
	}
	return buf, nil
}

// Write sends all of data, looping over partial writes.
func (s *SerialConnection) Write(data []byte) (int, error) {
	if s.port == nil {
		return 0, fmt.Errorf("serial port not open")
	}

	sent := 0
	for sent < len(data) {
		n, err := s.port.Write(data[sent:])
		if err != nil {
			return sent, fmt.Errorf("serial write: %w", err)
		}
		sent += n
	}
	return sent, nil
}

// SetConfig replaces the connection's configuration before Open.
func (s *SerialConnection) SetConfig(cfg *config.Config) {
	s.config = cfg
}
