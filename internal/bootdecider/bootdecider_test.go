package bootdecider

import (
	"testing"

	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/flash"
	"github.com/kvatra/blackshield/internal/layout"
	"github.com/kvatra/blackshield/internal/mcu"
)

type fixedPin bool

func (f fixedPin) Low() bool { return bool(f) }

type fakeFailSafe struct{ entered bool }

func (f *fakeFailSafe) Enter() { f.entered = true }

func writeImage(m *flash.Mem, e crc.Engine, data []byte) {
	m.Unlock()
	m.EraseSector(layout.AppSector)
	m.EraseSector(layout.MetaSector)
	m.WriteEnable(flash.ProgramByte)
	m.BulkProgram(layout.AppStart, data)
	m.WriteDisable()

	m.WriteEnable(flash.ProgramWord)
	m.ProgramWord(layout.MetaStart, uint32(len(data)))
	m.ProgramWord(layout.MetaStart+4, e.Bytes(data))
	m.WriteDisable()
	m.Lock()
}

func TestModePinLowForcesUpdate(t *testing.T) {
	m := flash.NewMem()
	e := crc.NewSoftware()
	writeImage(m, e, []byte{1, 2, 3, 4})

	if got := Decide(fixedPin(true), m, e); got != ModeUpdate {
		t.Errorf("Decide() = %v, want ModeUpdate", got)
	}
}

func TestBlankDescriptorForcesUpdate(t *testing.T) {
	m := flash.NewMem() // freshly erased: descriptor is all-0xFF
	e := crc.NewSoftware()

	if got := Decide(fixedPin(false), m, e); got != ModeUpdate {
		t.Errorf("Decide() = %v, want ModeUpdate", got)
	}
}

func TestOversizeDescriptorForcesUpdate(t *testing.T) {
	m := flash.NewMem()
	e := crc.NewSoftware()
	m.Unlock()
	m.WriteEnable(flash.ProgramWord)
	m.ProgramWord(layout.MetaStart, layout.AppMaxSize+1)
	m.ProgramWord(layout.MetaStart+4, 0)
	m.WriteDisable()
	m.Lock()

	if got := Decide(fixedPin(false), m, e); got != ModeUpdate {
		t.Errorf("Decide() = %v, want ModeUpdate", got)
	}
}

func TestGoodCRCJumps(t *testing.T) {
	m := flash.NewMem()
	e := crc.NewSoftware()
	writeImage(m, e, []byte("DEADBEEF"))

	if got := Decide(fixedPin(false), m, e); got != ModeRun {
		t.Errorf("Decide() = %v, want ModeRun", got)
	}
}

func TestBadCRCEntersFailSafe(t *testing.T) {
	m := flash.NewMem()
	e := crc.NewSoftware()
	writeImage(m, e, []byte("DEADBEEF"))

	// Flip one byte in the installed image after commit.
	m.Unlock()
	m.WriteEnable(flash.ProgramByte)
	m.ProgramByte(layout.AppStart, 0x00)
	m.WriteDisable()
	m.Lock()

	if got := Decide(fixedPin(false), m, e); got != ModeFailSafe {
		t.Errorf("Decide() = %v, want ModeFailSafe", got)
	}
}

func TestRunJumpsToApplication(t *testing.T) {
	m := flash.NewMem()
	e := crc.NewSoftware()
	writeImage(m, e, []byte("DEADBEEF"))

	sim := mcu.NewSim()
	fs := &fakeFailSafe{}
	mode := Run(fixedPin(false), m, e, sim, m, fs)

	if mode != ModeRun {
		t.Fatalf("Run() mode = %v, want ModeRun", mode)
	}
	if !sim.Branched {
		t.Error("expected mcu.Jump to branch into the application")
	}
	if fs.entered {
		t.Error("fail-safe should not run on a good boot")
	}
}

func TestRunEntersFailSafeWithoutJumping(t *testing.T) {
	m := flash.NewMem()
	e := crc.NewSoftware()
	writeImage(m, e, []byte("DEADBEEF"))
	m.Unlock()
	m.WriteEnable(flash.ProgramByte)
	m.ProgramByte(layout.AppStart, 0x00)
	m.WriteDisable()
	m.Lock()

	sim := mcu.NewSim()
	fs := &fakeFailSafe{}
	mode := Run(fixedPin(false), m, e, sim, m, fs)

	if mode != ModeFailSafe {
		t.Fatalf("Run() mode = %v, want ModeFailSafe", mode)
	}
	if sim.Branched {
		t.Error("should not branch into application on CRC mismatch")
	}
	if !fs.entered {
		t.Error("expected fail-safe to run")
	}
}

func TestRunDoesNotJumpInUpdateMode(t *testing.T) {
	m := flash.NewMem()
	e := crc.NewSoftware()

	sim := mcu.NewSim()
	fs := &fakeFailSafe{}
	mode := Run(fixedPin(true), m, e, sim, m, fs)

	if mode != ModeUpdate {
		t.Fatalf("Run() mode = %v, want ModeUpdate", mode)
	}
	if sim.Branched || fs.entered {
		t.Error("update mode should neither jump nor enter fail-safe")
	}
}
