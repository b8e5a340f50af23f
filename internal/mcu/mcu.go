// Package mcu models the processor-control surface the Boot Decider's
// jump-to-application sequence drives: SysTick, NVIC, peripheral reset,
// clock tree, VTOR, and MSP/PC load. Register-level grounding comes from
// original_source's Src/main.c and Bootloader/Bootloader.c jump sequence
// (SysTick->CTRL/LOAD/VAL, NVIC ICER/ICPR, RCC AHB/APB reset registers,
// FLASH->CR lock bit, RCC CFGR/PLLCFGR, SCB->VTOR).
//
// Build-tagged files split the real tinygo MMIO backend from the
// simulated one used by host-side tests and blboot's host-simulated build, the
// same split bindicator's ota.go uses for its ROM/flash functions.
package mcu

// Controller is the processor-control surface Jump drives, in
// the exact order spec.md §4.5 step 4 requires. Each method is a single
// irreversible hardware action; Controller does not retry or validate.
type Controller interface {
	DisableSysTick()
	MaskInterrupts()
	ResetPeripherals()
	RelockFlash()
	DeinitClockTree()
	MemoryBarrier()
	SetVectorTableOffset(addr uint32)
	DisableGlobalInterrupts()
	SetMainStackPointer(sp uint32)
	// Branch transfers control to the reset handler at entry and never
	// returns. Simulated implementations may return for testability;
	// real ones diverge.
	Branch(entry uint32)
	SystemReset()
}

// Jump executes spec.md §4.5 step 4's jump-to-application
// procedure against an image whose vector table begins at base: the
// Main Stack Pointer is word[base], the reset handler address is
// word[base+4]. Reader is the minimal flash read surface needed to pull
// those two words without importing the flash package's full Store
// interface.
type Reader interface {
	ReadWord(addr uint32) uint32
}

// Jump performs every step of spec.md's jump-to-application procedure,
// in order, against ctl and rd, and branches to the installed
// application. It never returns on real hardware; simulated Controllers
// may let Branch return for test observability.
func Jump(ctl Controller, rd Reader, base uint32) {
	ctl.DisableSysTick()
	ctl.MaskInterrupts()
	ctl.ResetPeripherals()
	ctl.RelockFlash()
	ctl.DeinitClockTree()
	ctl.MemoryBarrier()
	ctl.SetVectorTableOffset(base)
	ctl.DisableGlobalInterrupts()

	sp := rd.ReadWord(base)
	entry := rd.ReadWord(base + 4)

	ctl.SetMainStackPointer(sp)
	ctl.Branch(entry)
}
