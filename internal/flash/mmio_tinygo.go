//go:build tinygo

// Real is the MMIO-backed Store driving the STM32F4-style flash
// controller directly, grounded in original_source's
// Drivers/FLASH/Flash.c lock/unlock/program/erase sequence.
package flash

import (
	"unsafe"

	"github.com/kvatra/blackshield/internal/layout"
)

const (
	flashBase = 0x40023C00

	flashKeyR  = flashBase + 0x04
	flashSR    = flashBase + 0x0C
	flashCR    = flashBase + 0x10

	crLock  = 1 << 31
	crStrt  = 1 << 16
	crSer   = 1 << 1
	crPg    = 1 << 0
	crSnbShift = 3

	srBsy = 1 << 16
)

func reg32(addr uintptr) *uint32 {
	return (*uint32)(unsafe.Pointer(addr))
}

func waitIdle() {
	for *reg32(flashSR)&srBsy != 0 {
	}
}

// Real drives the memory-mapped flash controller registers directly; it
// holds no state of its own beyond what the hardware reports.
type Real struct{}

func NewReal() Real { return Real{} }

func (Real) Unlock() {
	*reg32(flashKeyR) = unlockKey1
	*reg32(flashKeyR) = unlockKey2
}

func (Real) Lock() {
	*reg32(flashCR) |= crLock
}

func (Real) WriteEnable(size ProgramSize) {
	cr := reg32(flashCR)
	*cr &^= 0x3 << 8 // PSIZE field
	*cr |= uint32(size) << 8
	*cr |= crPg
}

func (Real) WriteDisable() {
	*reg32(flashCR) &^= crPg
}

func (Real) EraseSector(sector layout.Sector) {
	waitIdle()
	cr := reg32(flashCR)
	*cr &^= 0xF << crSnbShift
	*cr |= uint32(sector) << crSnbShift
	*cr |= crSer
	*cr |= crStrt
	waitIdle()
	*cr &^= crSer
}

func (Real) ProgramByte(addr uint32, b byte) {
	*(*byte)(unsafe.Pointer(uintptr(addr))) = b
	waitIdle()
}

func (Real) ProgramHalfword(addr uint32, h uint16) {
	*(*uint16)(unsafe.Pointer(uintptr(addr))) = h
	waitIdle()
}

func (Real) ProgramWord(addr uint32, w uint32) {
	*(*uint32)(unsafe.Pointer(uintptr(addr))) = w
	waitIdle()
}

func (Real) ReadByte(addr uint32) byte {
	return *(*byte)(unsafe.Pointer(uintptr(addr)))
}

func (Real) ReadHalfword(addr uint32) uint16 {
	return *(*uint16)(unsafe.Pointer(uintptr(addr)))
}

func (Real) ReadWord(addr uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}

func (r Real) BulkProgram(dst uint32, src []byte) {
	for i, b := range src {
		r.ProgramByte(dst+uint32(i), b)
	}
}
