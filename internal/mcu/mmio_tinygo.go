//go:build tinygo

// Cortex-M core intrinsics (DSB/ISB, CPSID, stack pointer load, and the
// final indirect branch) have no portable Go spelling, so they go through
// cgo inline assembly. This mirrors bindicator's ota.go, which reaches
// for cgo whenever tinygo itself has no API for a low-level machine
// operation (there, ROM function calls; here, core register writes).
package mcu

/*
static inline void bl_dsb(void) { __asm volatile ("dsb" ::: "memory"); }
static inline void bl_isb(void) { __asm volatile ("isb" ::: "memory"); }
static inline void bl_disable_irq(void) { __asm volatile ("cpsid i" ::: "memory"); }
static inline void bl_set_msp(unsigned int sp) { __asm volatile ("msr msp, %0" :: "r" (sp) : "sp"); }
static inline void bl_branch(unsigned int entry) {
    void (*fn)(void) = (void (*)(void))entry;
    fn();
}
*/
import "C"

import "unsafe"

func dsb()                { C.bl_dsb() }
func isb()                { C.bl_isb() }
func disableIRQ()         { C.bl_disable_irq() }
func setMSP(sp uint32)    { C.bl_set_msp(C.uint(sp)) }
func branchTo(entry uint32) { C.bl_branch(C.uint(entry)) }

// Register addresses below are the STM32F4 Cortex-M4 core and RCC
// peripheral offsets exercised by original_source's Bootloader.c jump
// sequence: SysTick (0xE000E010), NVIC ICER/ICPR (0xE000E180/0xE000E280),
// SCB (0xE000ED00), RCC (0x40023800).
const (
	systickBase = 0xE000E010
	nvicICER0   = 0xE000E180
	nvicICPR0   = 0xE000E280
	scbBase     = 0xE000ED00
	rccBase     = 0x40023800
	flashBase   = 0x40023C00

	numNVICRegs = 8 // NVIC covers up to 240 external IRQs on this part.
)

func reg32(addr uintptr) *uint32 {
	return (*uint32)(unsafe.Pointer(addr))
}

// Real is the tinygo-only Controller backed by direct MMIO writes.
type Real struct{}

func NewReal() Real { return Real{} }

func (Real) DisableSysTick() {
	*reg32(systickBase + 0x00) = 0 // CTRL
	*reg32(systickBase + 0x04) = 0 // LOAD
	*reg32(systickBase + 0x08) = 0 // VAL
	shcsr := reg32(scbBase + 0x24)
	*shcsr &^= 1 << 11 // SCB_SHCSR_SYSTICKACT_Msk
}

func (Real) MaskInterrupts() {
	for i := 0; i < numNVICRegs; i++ {
		*reg32(nvicICER0 + uintptr(i)*4) = 0xFFFFFFFF
		*reg32(nvicICPR0 + uintptr(i)*4) = 0xFFFFFFFF
	}
}

func (Real) ResetPeripherals() {
	resetRegs := []uintptr{0x10, 0x14, 0x18, 0x20, 0x24} // AHB1/2/3RSTR, APB1RSTR, APB2RSTR
	for _, off := range resetRegs {
		*reg32(rccBase + off) = 0xFFFFFFFF
		*reg32(rccBase + off) = 0x00000000
	}
	enableRegs := []uintptr{0x30, 0x34, 0x38, 0x40, 0x44} // AHB1/2/3ENR, APB1ENR, APB2ENR
	for _, off := range enableRegs {
		*reg32(rccBase + off) = 0x00000000
	}
}

func (Real) RelockFlash() {
	cr := reg32(flashBase + 0x10)
	*cr |= 1 << 31 // FLASH_CR_LOCK
	sr := reg32(flashBase + 0x0C)
	*sr = 0xF3 // clear EOP | OPERR | WRPERR | PGAERR | PGPERR | PGSERR
}

func (Real) DeinitClockTree() {
	*reg32(rccBase + 0x04) = 0x00000000 // CFGR reset value
	cr := reg32(rccBase + 0x00)
	*cr &^= 1 << 24 // PLLON
	*cr &^= 1 << 16 // HSEON
	*cr &^= 1 << 19 // CSSON
	*reg32(rccBase + 0x08) = 0x24003010 // PLLCFGR reset value (device default)
}

func (Real) MemoryBarrier() {
	dsb()
	isb()
}

func (Real) SetVectorTableOffset(addr uint32) {
	*reg32(scbBase + 0x08) = addr // SCB->VTOR
}

func (Real) DisableGlobalInterrupts() {
	disableIRQ()
}

func (Real) SetMainStackPointer(sp uint32) {
	setMSP(sp)
}

func (Real) Branch(entry uint32) {
	branchTo(entry)
}

func (Real) SystemReset() {
	aircr := reg32(scbBase + 0x0C)
	*aircr = 0x05FA0004 // VECTKEY | SYSRESETREQ
	for {
	}
}
