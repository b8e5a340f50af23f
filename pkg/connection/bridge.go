package connection

import (
	"fmt"
	"io"
	"net"

	"go.bug.st/serial"
)

// Bridge relays update-protocol frames between a TCP listener and the
// device's serial link, for developers without direct serial access
// (remote machines, macOS driver quirks). It forwards bytes without
// decoding them: frame shape is internal/codec's concern, not the
// bridge's.
type Bridge struct {
	tcpHost    string
	tcpPort    int
	serialPort string
	baudRate   int
	timeout    int
}

// NewBridge creates a new TCP bridge.
func NewBridge(tcpHost string, tcpPort int, serialPort string, baudRate int, timeout int) *Bridge {
	return &Bridge{
		tcpHost:    tcpHost,
		tcpPort:    tcpPort,
		serialPort: serialPort,
		baudRate:   baudRate,
		timeout:    timeout,
	}
}

// frameHeaderLen is the fixed prefix every update-protocol frame
// carries before its variable-length payload: H1, H2, OP, REQ, LEN.
const frameHeaderLen = 5

// Listen starts the TCP server and relays frames to the serial port.
func (b *Bridge) Listen() error {
	addr := fmt.Sprintf("%s:%d", b.tcpHost, b.tcpPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP listener: %w", err)
	}
	defer listener.Close()

	fmt.Printf("Listening for connections to %s on port %d\n", b.tcpHost, b.tcpPort)

	for {
		conn, err := listener.Accept()
		if err != nil {
			fmt.Printf("Error accepting connection: %v\n", err)
			continue
		}

		fmt.Printf("Received connection from %s\n", conn.RemoteAddr().String())
		go b.handleConnection(conn)
	}
}

// readFrame reads one complete update-protocol frame: a fixed header
// followed by payload+CRC32+footer, whose length the header's LEN byte
// determines.
func readFrame(r io.Reader) ([]byte, error) {
	head := make([]byte, frameHeaderLen)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}
	payloadLen := int(head[4])
	tail := make([]byte, payloadLen+4+2)
	if _, err := io.ReadFull(r, tail); err != nil {
		return nil, err
	}
	return append(head, tail...), nil
}

// handleConnection relays frames for a single TCP client over a
// dedicated serial session until either side closes.
func (b *Bridge) handleConnection(tcpConn net.Conn) {
	defer tcpConn.Close()

	mode := &serial.Mode{BaudRate: b.baudRate}
	serialConn, err := serial.Open(b.serialPort, mode)
	if err != nil {
		fmt.Printf("Error opening serial port: %v\n", err)
		return
	}
	defer serialConn.Close()

	for {
		request, err := readFrame(tcpConn)
		if err != nil {
			if err != io.EOF {
				fmt.Printf("Error reading frame from %s: %v\n", tcpConn.RemoteAddr(), err)
			} else {
				fmt.Printf("Connection from %s closed\n", tcpConn.RemoteAddr())
			}
			return
		}

		if _, err := serialConn.Write(request); err != nil {
			fmt.Printf("Error writing to serial port: %v\n", err)
			return
		}

		response, err := readFrame(serialConn)
		if err != nil {
			fmt.Printf("Error reading response from serial port: %v\n", err)
			return
		}

		if _, err := tcpConn.Write(response); err != nil {
			fmt.Printf("Error writing response to TCP: %v\n", err)
			return
		}
	}
}
