// Package updater is blctl's host-side speaker of the wire protocol
// internal/session implements on the device: it frames commands with
// internal/codec, sends them over a pkg/connection.Connection, and
// parses the ACK. The transfer() method mirrors
// pkg/protocol.DebugPort.transfer()'s one-request/one-response round
// trip, with this protocol's header/CRC framing swapped in for that
// package's sync-byte/LRC request format.
package updater

import (
	"fmt"

	"github.com/kvatra/blackshield/internal/codec"
	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/layout"
	"github.com/kvatra/blackshield/pkg/connection"
)

const reqByte = 0x01

// Opcodes, mirroring internal/session's dispatch table.
const (
	OpConnectDevice    = 0xA0
	OpDisconnectDevice = 0xA1
	OpFetchInfo        = 0xA2
	OpWriteFirmware    = 0xA3
	OpReadFirmware     = 0xA4
	OpEraseFirmware    = 0xA5
	OpRebootMCU        = 0xA6
	OpWriteComplete    = 0xA7
)

// Updater drives one update session against a connected device.
type Updater struct {
	conn connection.Connection
	crc  crc.Engine
}

// New wraps an already-open Connection. Callers are responsible for
// Open()/Close() on conn.
func New(conn connection.Connection) *Updater {
	return &Updater{conn: conn, crc: crc.NewSoftware()}
}

// transfer sends one command frame and returns the ACK's payload.
func (u *Updater) transfer(opcode byte, payload []byte) ([]byte, error) {
	frame := codec.Emit(opcode, reqByte, payload, u.crc)
	if _, err := u.conn.Write(frame); err != nil {
		return nil, fmt.Errorf("write command 0x%02X: %w", opcode, err)
	}

	head, err := u.conn.Read(5)
	if err != nil {
		return nil, fmt.Errorf("read response header: %w", err)
	}
	payloadLen := int(head[4])
	tail, err := u.conn.Read(payloadLen + 4 + 2)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	full := append(append([]byte{}, head...), tail...)
	resp, err := codec.Validate(full, u.crc)
	if err != nil {
		return nil, fmt.Errorf("invalid response to command 0x%02X: %w", opcode, err)
	}
	return resp.Payload, nil
}

// Connect issues Connect_Device and returns the device's fixed identity
// payload.
func (u *Updater) Connect() ([]byte, error) {
	return u.transfer(OpConnectDevice, nil)
}

// Disconnect issues Disconnect_Device.
func (u *Updater) Disconnect() error {
	_, err := u.transfer(OpDisconnectDevice, nil)
	return err
}

// FetchInfo returns the device's current image descriptor.
func (u *Updater) FetchInfo() (layout.Descriptor, error) {
	payload, err := u.transfer(OpFetchInfo, nil)
	if err != nil {
		return layout.Descriptor{}, err
	}
	return layout.DecodeDescriptor(payload), nil
}

// WriteFirmware programs up to 255 bytes at the device's Write Cursor.
func (u *Updater) WriteFirmware(chunk []byte) error {
	if len(chunk) > 255 {
		return fmt.Errorf("chunk too large: %d bytes (max 255)", len(chunk))
	}
	_, err := u.transfer(OpWriteFirmware, chunk)
	return err
}

// ReadFirmware reads back 255 bytes starting at the current cursor.
func (u *Updater) ReadFirmware() ([]byte, error) {
	return u.transfer(OpReadFirmware, nil)
}

// EraseFirmware erases the application and metadata sectors.
func (u *Updater) EraseFirmware() error {
	_, err := u.transfer(OpEraseFirmware, nil)
	return err
}

// Reboot issues Reboot_MCU, ending the update session.
func (u *Updater) Reboot() error {
	_, err := u.transfer(OpRebootMCU, nil)
	return err
}

// WriteComplete commits the image descriptor (length and CRC32).
func (u *Updater) WriteComplete(length, checksum uint32) error {
	payload := layout.EncodeDescriptor(layout.Descriptor{LengthBytes: length, ExpectedCRC: checksum})
	_, err := u.transfer(OpWriteComplete, payload)
	return err
}

// UploadAndCommit writes the full image in WriteFirmware-sized chunks
// and commits its descriptor, the end-to-end sequence blctl's update
// command drives.
func (u *Updater) UploadAndCommit(image []byte) error {
	if err := u.EraseFirmware(); err != nil {
		return fmt.Errorf("erase firmware: %w", err)
	}

	const chunkSize = 255
	for offset := 0; offset < len(image); offset += chunkSize {
		end := offset + chunkSize
		if end > len(image) {
			end = len(image)
		}
		if err := u.WriteFirmware(image[offset:end]); err != nil {
			return fmt.Errorf("write firmware at offset %d: %w", offset, err)
		}
	}

	engine := crc.NewSoftware()
	checksum := engine.Bytes(image)
	return u.WriteComplete(uint32(len(image)), checksum)
}
