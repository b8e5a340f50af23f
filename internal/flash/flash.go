// Package flash models the Flash Store (FS) component of spec.md §4.1: the
// lock/unlock/program/erase protocol of a write-once-per-cell flash
// controller, reduced to race-free primitives. Register names and the
// unlock key pair are grounded in original_source's Drivers/FLASH/Flash.c
// (FLASH_CR_LOCK, FLASH_CR_PG, FLASH_CR_SER, FLASH_CR_SNB, FLASH_CR_STRT,
// FLASH_SR_BSY, keys 0x45670123/0xCDEF89AB).
package flash

import "github.com/kvatra/blackshield/internal/layout"

// ProgramSize selects the controller's program-size bits, set once per
// write_enable call per spec.md §4.1.
type ProgramSize int

const (
	ProgramByte ProgramSize = iota
	ProgramHalfword
	ProgramWord
)

const (
	unlockKey1 = 0x45670123
	unlockKey2 = 0xCDEF89AB
)

// Store is the programmer-visible surface of the flash controller.
// Outside an Unlock..Lock / WriteEnable..WriteDisable window the program
// enable bit stays clear, matching spec.md's invariant.
type Store interface {
	Unlock()
	Lock()
	WriteEnable(size ProgramSize)
	WriteDisable()
	EraseSector(sector layout.Sector)
	ProgramByte(addr uint32, b byte)
	ProgramHalfword(addr uint32, h uint16)
	ProgramWord(addr uint32, w uint32)
	ReadByte(addr uint32) byte
	ReadHalfword(addr uint32) uint16
	ReadWord(addr uint32) uint32
	// BulkProgram copies every byte of src into flash starting at dst,
	// using byte-wide programming. It is the primitive Write_Firmware
	// uses to land an incoming payload (spec.md §4.1).
	BulkProgram(dst uint32, src []byte)
}

// Mem is an in-memory model of the flash array backing Store, used by
// blboot's host-simulated build and by every test in this repo. It
// behaves like real NOR flash: erase sets a sector to all-ones bytes, and
// programming can only clear bits (a program of an unerased cell produces
// the bitwise AND of old and new content, never a 1 where there was a 0).
type Mem struct {
	cells       []byte
	base        uint32
	locked      bool
	programming bool
	progSize    ProgramSize
}

// NewMem allocates a flash image covering every sector in layout.SectorMap,
// pre-erased (all bytes 0xFF), and locked.
func NewMem() *Mem {
	last := layout.SectorMap[len(layout.SectorMap)-1]
	size := last.Base + last.Size - layout.BootloaderStart
	m := &Mem{
		cells:  make([]byte, size),
		base:   layout.BootloaderStart,
		locked: true,
	}
	for i := range m.cells {
		m.cells[i] = 0xFF
	}
	return m
}

func (m *Mem) idx(addr uint32) uint32 { return addr - m.base }

func (m *Mem) Unlock() {
	if m.locked {
		// Real hardware checks the two keys; the model only tracks the
		// resulting lock state since both keys are fixed constants.
		_ = unlockKey1
		_ = unlockKey2
		m.locked = false
	}
}

func (m *Mem) Lock() { m.locked = true }

func (m *Mem) WriteEnable(size ProgramSize) {
	m.progSize = size
	m.programming = true
}

func (m *Mem) WriteDisable() { m.programming = false }

func (m *Mem) EraseSector(sector layout.Sector) {
	s := layout.SectorMap[sector]
	start := m.idx(s.Base)
	for i := uint32(0); i < s.Size; i++ {
		m.cells[start+i] = 0xFF
	}
}

func (m *Mem) ProgramByte(addr uint32, b byte) {
	i := m.idx(addr)
	m.cells[i] &= b
}

func (m *Mem) ProgramHalfword(addr uint32, h uint16) {
	m.ProgramByte(addr, byte(h>>8))
	m.ProgramByte(addr+1, byte(h))
}

func (m *Mem) ProgramWord(addr uint32, w uint32) {
	m.ProgramByte(addr, byte(w>>24))
	m.ProgramByte(addr+1, byte(w>>16))
	m.ProgramByte(addr+2, byte(w>>8))
	m.ProgramByte(addr+3, byte(w))
}

func (m *Mem) ReadByte(addr uint32) byte { return m.cells[m.idx(addr)] }

func (m *Mem) ReadHalfword(addr uint32) uint16 {
	return uint16(m.ReadByte(addr))<<8 | uint16(m.ReadByte(addr+1))
}

func (m *Mem) ReadWord(addr uint32) uint32 {
	return uint32(m.ReadByte(addr))<<24 | uint32(m.ReadByte(addr+1))<<16 |
		uint32(m.ReadByte(addr+2))<<8 | uint32(m.ReadByte(addr+3))
}

func (m *Mem) BulkProgram(dst uint32, src []byte) {
	for i, b := range src {
		m.ProgramByte(dst+uint32(i), b)
	}
}
