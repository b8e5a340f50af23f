// Package session implements the Update Session / Command Dispatcher (UD)
// component of spec.md §4.4: the two-state protocol state machine that
// owns the Write Cursor and dispatches incoming packets to the Flash
// Store. The function-pointer dispatch table follows spec.md §9's
// suggested shape and the pattern of one small function per operation
// registered against a lookup table, the way cmd/root.go builds its
// command tree, here transplanted from cobra commands to opcode
// handlers.
package session

import (
	"encoding/binary"

	"github.com/kvatra/blackshield/internal/codec"
	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/flash"
	"github.com/kvatra/blackshield/internal/layout"
)

// State is the session's two-state machine, per spec.md §4.4.
type State int

const (
	WaitConnect State = iota
	Connected
)

const (
	reqByte = 0x01
	ackByte = 0x02
)

// Opcodes, per spec.md §4.4's dispatch table.
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

// identityPayload is Connect_Device's fixed ACK payload, grounded in
// original_source's Src/main.c Connect_Device response bytes.
var identityPayload = []byte{0x19, 0x01, 0x01}

// readBackLen is the fixed response size for Read_Firmware, per spec.md
// §4.4's "read 255 bytes" rule.
const readBackLen = 255

// Rebooter abstracts the MCU reset trigger Reboot_MCU issues, so that
// Session stays testable without pulling in the tinygo-only MCU backend.
type Rebooter interface {
	SystemReset()
}

// Session is the Update Session: the Write Cursor, the current protocol
// state, and the wiring to the Flash Store, CRC engine, and (optionally)
// the MCU reset trigger. Created once per bootloader entry, per spec.md
// §9's "Global mutable state" note.
type Session struct {
	state  State
	cursor uint32

	store flash.Store
	crc   crc.Engine
	mcu   Rebooter

	// pendingReset is set by handleReboot and consumed by the caller via
	// TakeResetRequest, so the reset fires only after the ACK frame this
	// Handle() call returns has actually gone out on the wire.
	pendingReset bool
}

// New creates a Session with the Write Cursor initialized to APP_START,
// per spec.md §4's Write Cursor definition.
func New(store flash.Store, engine crc.Engine, mcu Rebooter) *Session {
	return &Session{
		state:  WaitConnect,
		cursor: layout.AppStart,
		store:  store,
		crc:    engine,
		mcu:    mcu,
	}
}

// State reports the session's current protocol state.
func (s *Session) State() State { return s.state }

// Cursor reports the current Write Cursor address.
func (s *Session) Cursor() uint32 { return s.cursor }

// TakeResetRequest reports whether Reboot_MCU was just processed and, if
// so, clears the flag. Callers must send the response frame Handle
// returned before acting on a true result, so the ACK reaches the client
// ahead of the reset, per spec.md §4.4.
func (s *Session) TakeResetRequest() bool {
	v := s.pendingReset
	s.pendingReset = false
	return v
}

// ApplyReset invokes the wired Rebooter, if any. Separated from
// TakeResetRequest so callers control exactly when the reset fires
// relative to flushing the response frame.
func (s *Session) ApplyReset() {
	if s.mcu != nil {
		s.mcu.SystemReset()
	}
}

// handler is one dispatch-table entry: given a validated frame, produce
// a response payload (nil is a valid empty payload) or report that the
// command should be silently dropped.
type handler func(s *Session, payload []byte) (resp []byte, ok bool)

// dispatch maps opcode to handler. Connected-only gating is enforced by
// the handlers themselves via requireConnected; Connect_Device is
// accepted in either state, matching spec.md §4.4 step 3/4's per-state
// acceptance rules.
var dispatch = map[byte]handler{
	OpConnectDevice:    (*Session).handleConnect,
	OpDisconnectDevice: (*Session).handleDisconnect,
	OpFetchInfo:        (*Session).handleFetchInfo,
	OpWriteFirmware:    (*Session).handleWriteFirmware,
	OpReadFirmware:     (*Session).handleReadFirmware,
	OpEraseFirmware:    (*Session).handleEraseFirmware,
	OpRebootMCU:        (*Session).handleReboot,
	OpWriteComplete:    (*Session).handleWriteComplete,
}

// Handle processes one already-validated codec.Frame and returns the
// response frame bytes to send, or false if the packet must be silently
// dropped (spec.md §7's "never NAK on reject" taxonomy: UD never aborts
// the session on a single bad packet).
func (s *Session) Handle(f codec.Frame) (response []byte, ok bool) {
	h, known := dispatch[f.Opcode]
	if !known {
		return nil, false
	}
	resp, accepted := h(s, f.Payload)
	if !accepted {
		return nil, false
	}
	return codec.Emit(f.Opcode, ackByte, resp, s.crc), true
}

func (s *Session) requireConnected() bool { return s.state == Connected }

func (s *Session) handleConnect(_ []byte) ([]byte, bool) {
	s.state = Connected
	s.cursor = layout.AppStart
	return identityPayload, true
}

func (s *Session) handleDisconnect(_ []byte) ([]byte, bool) {
	if !s.requireConnected() {
		return nil, false
	}
	s.state = WaitConnect
	return nil, true
}

func (s *Session) handleFetchInfo(_ []byte) ([]byte, bool) {
	if !s.requireConnected() {
		return nil, false
	}
	d := layout.Descriptor{
		LengthBytes: s.store.ReadWord(layout.MetaStart),
		ExpectedCRC: s.store.ReadWord(layout.MetaStart + 4),
	}
	return layout.EncodeDescriptor(d), true
}

func (s *Session) handleWriteFirmware(payload []byte) ([]byte, bool) {
	if !s.requireConnected() {
		return nil, false
	}
	if s.cursor+uint32(len(payload)) > layout.AppStart+layout.AppMaxSize {
		return nil, false
	}
	s.store.Unlock()
	s.store.WriteEnable(flash.ProgramByte)
	s.store.BulkProgram(s.cursor, payload)
	s.store.WriteDisable()
	s.store.Lock()
	s.cursor += uint32(len(payload))
	return nil, true
}

func (s *Session) handleReadFirmware(_ []byte) ([]byte, bool) {
	if !s.requireConnected() {
		return nil, false
	}
	out := make([]byte, readBackLen)
	for i := range out {
		out[i] = s.store.ReadByte(s.cursor + uint32(i))
	}
	return out, true
}

func (s *Session) handleEraseFirmware(_ []byte) ([]byte, bool) {
	if !s.requireConnected() {
		return nil, false
	}
	s.store.Unlock()
	s.store.EraseSector(layout.AppSector)
	s.store.EraseSector(layout.MetaSector)
	s.store.Lock()
	s.cursor = layout.AppStart
	return nil, true
}

func (s *Session) handleReboot(_ []byte) ([]byte, bool) {
	if !s.requireConnected() {
		return nil, false
	}
	// The reset itself happens after the ACK is sent, per spec.md §4.4's
	// "Reply ACK, then trigger system reset." Handle() only arms the
	// request; the caller flushes the ACK frame and then calls
	// ApplyReset via TakeResetRequest.
	s.pendingReset = true
	return nil, true
}

func (s *Session) handleWriteComplete(payload []byte) ([]byte, bool) {
	if !s.requireConnected() {
		return nil, false
	}
	if len(payload) != 8 {
		return nil, false
	}
	length := binary.BigEndian.Uint32(payload[0:4])
	checksum := binary.BigEndian.Uint32(payload[4:8])

	s.store.Unlock()
	s.store.WriteEnable(flash.ProgramWord)
	s.store.ProgramWord(layout.MetaStart, length)
	s.store.ProgramWord(layout.MetaStart+4, checksum)
	s.store.WriteDisable()
	s.store.Lock()
	return nil, true
}
