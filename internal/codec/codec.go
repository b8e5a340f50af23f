// Package codec implements the Packet Codec (PC) component of spec.md
// §4.3: framing, header/footer recognition, and CRC32 trailer validation
// and emission for the wire protocol's variable-length packets. It owns
// frame validation exclusively, per spec.md §3's ownership rule.
//
// Frame layout:
//
//	[H1=0xAA][H2=0x55][OP][REQ][PAYLOAD_LEN][PAYLOAD ...][CRC_HI..CRC_LO][F1=0xBB][F2=0x66]
//
// The shape of Validate/Emit mirrors the header/CRC-trailer framing in
// pkg/protocol/protocol.go's transfer() method and the
// calculateLRC/verifyLRC pair in pkg/protocol/checksum_test.go, with the
// single-byte LRC there replaced by a CRC32 trailer.
package codec

import (
	"encoding/binary"
	"errors"

	"github.com/kvatra/blackshield/internal/crc"
)

const (
	header1 = 0xAA
	header2 = 0x55
	footer1 = 0xBB
	footer2 = 0x66

	// MinFrameLen and MaxFrameLen are the length bounds Validate checks
	// first, per spec.md §3. A frame is 2 header + 1 opcode + 1 request +
	// 1 length + 0..255 payload + 4 CRC + 2 footer, i.e. 11..266 bytes; a
	// 10-byte buffer passes this bound but fails the payload-length
	// consistency check.
	MinFrameLen = 10
	MaxFrameLen = 266

	// PrefixLen is the fixed run of bytes before the variable-length
	// payload: H1, H2, OP, REQ, LEN. A streaming reader reads this much
	// first, then PrefixLen's LEN byte tells it how much more to read.
	PrefixLen = 5
)

// ErrReject is returned by Validate for any malformed or corrupted frame.
// Per spec.md §7, the caller's only correct response to ErrReject is a
// silent drop — never a NAK.
var ErrReject = errors.New("codec: frame rejected")

// Frame is a validated, decoded packet.
type Frame struct {
	Opcode  byte
	Request byte
	Payload []byte
}

// Validate performs the five-step check spec.md §4.3 describes, in order:
// length bounds, header bytes, footer bytes, CRC32 trailer, and the
// payload-length consistency check. Any failure returns ErrReject with no
// further detail, matching the "silent drop" error taxonomy of spec.md §7.
func Validate(buf []byte, engine crc.Engine) (Frame, error) {
	n := len(buf)
	if n < MinFrameLen || n > MaxFrameLen {
		return Frame{}, ErrReject
	}
	if buf[0] != header1 || buf[1] != header2 {
		return Frame{}, ErrReject
	}
	if buf[n-2] != footer1 || buf[n-1] != footer2 {
		return Frame{}, ErrReject
	}

	receivedCRC := binary.BigEndian.Uint32(buf[n-6 : n-2])
	computedCRC := engine.Bytes(buf[2 : n-6])
	if receivedCRC != computedCRC {
		return Frame{}, ErrReject
	}

	opcode := buf[2]
	request := buf[3]
	payloadLen := int(buf[4])

	if 5+payloadLen+4+2 != n {
		return Frame{}, ErrReject
	}

	payload := buf[5 : 5+payloadLen]
	return Frame{Opcode: opcode, Request: request, Payload: payload}, nil
}

// Emit serializes a response frame with the given opcode, request byte,
// and payload, computing the CRC32 trailer over opcode|request|len|payload.
func Emit(opcode, request byte, payload []byte, engine crc.Engine) []byte {
	n := 5 + len(payload) + 4 + 2
	buf := make([]byte, n)
	buf[0] = header1
	buf[1] = header2
	buf[2] = opcode
	buf[3] = request
	buf[4] = byte(len(payload))
	copy(buf[5:], payload)

	crcVal := engine.Bytes(buf[2 : 5+len(payload)])
	binary.BigEndian.PutUint32(buf[5+len(payload):5+len(payload)+4], crcVal)

	buf[n-2] = footer1
	buf[n-1] = footer2
	return buf
}
