//go:build tinygo

// Command blboot is the device-side bootloader entry point: on reset it
// runs the Boot Decider, and only drops into the Update Session when the
// decision calls for it. Peripheral setup (UART, mode pin) follows the
// tinygo `machine` package conventions bindicator's main.go uses for its
// own board bring-up.
package main

import (
	"log/slog"
	"machine"
	"os"
	"time"

	"github.com/kvatra/blackshield/internal/bootdecider"
	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/deviceloop"
	"github.com/kvatra/blackshield/internal/flash"
	"github.com/kvatra/blackshield/internal/mcu"
	"github.com/kvatra/blackshield/internal/session"
)

// uartLink adapts machine.UART to deviceloop.Link's exact-count
// read/write contract.
type uartLink struct {
	uart *machine.UART
}

func (l uartLink) Read(n int) ([]byte, error) {
	buf := make([]byte, n)
	got := 0
	for got < n {
		for l.uart.Buffered() == 0 {
			time.Sleep(time.Millisecond)
		}
		c, err := l.uart.ReadByte()
		if err != nil {
			return nil, err
		}
		buf[got] = c
		got++
	}
	return buf, nil
}

func (l uartLink) Write(data []byte) (int, error) {
	return l.uart.Write(data)
}

// modePin reads the update-mode-select GPIO.
type modePin struct{ pin machine.Pin }

func (m modePin) Low() bool { return !m.pin.Get() }

// ledFailSafe blinks an LED forever, the visible diagnostic spec.md
// calls for on a boot-time CRC mismatch.
type ledFailSafe struct{ led machine.Pin }

func (f ledFailSafe) Enter() {
	for {
		f.led.High()
		time.Sleep(200 * time.Millisecond)
		f.led.Low()
		time.Sleep(200 * time.Millisecond)
	}
}

func main() {
	// Console logging goes to the default serial console (machine.Serial
	// via os.Stdout), never UART0: that link carries protocol frames and
	// must stay clean.
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	uart := machine.UART0
	uart.Configure(machine.UARTConfig{BaudRate: 256000})

	pin := machine.Pin(machine.GPIO0)
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	store := flash.NewReal()
	engine := crc.NewHardware()
	ctl := mcu.NewReal()

	mode := bootdecider.Run(modePin{pin}, store, engine, ctl, store, ledFailSafe{led})
	if mode != bootdecider.ModeUpdate {
		return
	}
	logger.Info("entering update session")

	sess := session.New(store, engine, ctl)
	link := uartLink{uart}
	if err := deviceloop.Run(link, sess); err != nil {
		logger.Error("update session ended", "err", err)
	}
}
