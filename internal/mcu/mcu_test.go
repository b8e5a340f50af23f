//go:build !tinygo

package mcu

import "testing"

type fakeReader struct{ words map[uint32]uint32 }

func (f fakeReader) ReadWord(addr uint32) uint32 { return f.words[addr] }

func TestJumpOrderMatchesSpec(t *testing.T) {
	sim := NewSim()
	rd := fakeReader{words: map[uint32]uint32{
		0x08010000: 0x20020000, // initial MSP
		0x08010004: 0x08010101, // reset handler
	}}

	Jump(sim, rd, 0x08010000)

	want := []string{
		"disable_systick",
		"mask_interrupts",
		"reset_peripherals",
		"relock_flash",
		"deinit_clock_tree",
		"memory_barrier",
		"set_vtor",
		"disable_global_interrupts",
		"set_msp",
		"branch",
	}
	if len(sim.Steps) != len(want) {
		t.Fatalf("step count = %d, want %d: %v", len(sim.Steps), len(want), sim.Steps)
	}
	for i, step := range want {
		if sim.Steps[i] != step {
			t.Errorf("step %d = %q, want %q", i, sim.Steps[i], step)
		}
	}
}

func TestJumpLoadsMSPAndEntryFromVectorTable(t *testing.T) {
	sim := NewSim()
	rd := fakeReader{words: map[uint32]uint32{
		0x08010000: 0x20020000,
		0x08010004: 0x08010101,
	}}

	Jump(sim, rd, 0x08010000)

	if sim.MSP != 0x20020000 {
		t.Errorf("MSP = 0x%08X, want 0x20020000", sim.MSP)
	}
	if sim.EntryAddr != 0x08010101 {
		t.Errorf("entry = 0x%08X, want 0x08010101", sim.EntryAddr)
	}
	if sim.VTOR != 0x08010000 {
		t.Errorf("VTOR = 0x%08X, want 0x08010000", sim.VTOR)
	}
	if !sim.Branched {
		t.Error("Branch was never called")
	}
}

func TestSystemResetIsSeparateFromJump(t *testing.T) {
	sim := NewSim()
	sim.SystemReset()
	if sim.ResetCount != 1 {
		t.Errorf("ResetCount = %d, want 1", sim.ResetCount)
	}
	if len(sim.Steps) != 1 || sim.Steps[0] != "system_reset" {
		t.Errorf("Steps = %v, want [system_reset]", sim.Steps)
	}
}
