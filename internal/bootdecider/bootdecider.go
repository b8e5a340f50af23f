// Package bootdecider implements the Boot Decider / Jumper (BD) component
// of spec.md §4.5: on reset, decide between update mode and run mode,
// verify the installed image's CRC, and either hand control to the
// application (internal/mcu's jump sequence) or enter a visible
// fail-safe loop. Mode-pin and decision-table grounding comes from
// original_source's Src/main.c boot-mode sampling and Bootloader.c's
// jump sequence.
package bootdecider

import (
	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/flash"
	"github.com/kvatra/blackshield/internal/layout"
	"github.com/kvatra/blackshield/internal/mcu"
)

// Mode is the outcome of the boot decision, per spec.md §4.5 step 3.
type Mode int

const (
	// ModeUpdate means the Update Session should run.
	ModeUpdate Mode = iota
	// ModeRun means the installed application should be jumped to.
	ModeRun
	// ModeFailSafe means the image failed CRC verification in run mode;
	// the device halts in a visible diagnostic loop rather than jumping
	// or silently falling back to update mode.
	ModeFailSafe
)

// ModePin abstracts the mode-select GPIO sampled at boot, per spec.md
// §4.5 step 2.
type ModePin interface {
	// Low reports whether the mode pin reads low (forces update mode).
	Low() bool
}

// Decide implements spec.md §4.5 step 3 / testable property 6: the boot
// mode decision table. It reads the descriptor from meta, and when
// run-mode is otherwise indicated, verifies the installed image's CRC
// against the descriptor before confirming ModeRun.
func Decide(pin ModePin, store flash.Store, engine crc.Engine) Mode {
	if pin.Low() {
		return ModeUpdate
	}

	d := layout.Descriptor{
		LengthBytes: store.ReadWord(layout.MetaStart),
		ExpectedCRC: store.ReadWord(layout.MetaStart + 4),
	}
	if !d.Valid() {
		return ModeUpdate
	}

	image := make([]byte, d.LengthBytes)
	for i := range image {
		image[i] = store.ReadByte(layout.AppStart + uint32(i))
	}
	if engine.Bytes(image) != d.ExpectedCRC {
		return ModeFailSafe
	}
	return ModeRun
}

// FailSafe abstracts the visible diagnostic the device enters on a CRC
// mismatch in run mode, per spec.md §4.5's failure semantics (e.g. an
// LED blink loop). It never returns on real hardware.
type FailSafe interface {
	Enter()
}

// Run executes the full boot sequence: decide the mode, and on ModeRun
// hand control to the application via mcu.Jump. On ModeFailSafe it
// invokes failSafe and returns (real implementations of FailSafe never
// return; the return here only serves host-side tests). On ModeUpdate it
// returns without jumping so the caller can start an Update Session.
func Run(pin ModePin, store flash.Store, engine crc.Engine, ctl mcu.Controller, rd mcu.Reader, failSafe FailSafe) Mode {
	mode := Decide(pin, store, engine)
	switch mode {
	case ModeRun:
		mcu.Jump(ctl, rd, layout.AppStart)
	case ModeFailSafe:
		failSafe.Enter()
	}
	return mode
}
