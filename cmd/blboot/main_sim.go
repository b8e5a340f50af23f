//go:build !tinygo

// Command blboot, built without the tinygo tag, simulates the device
// side of the update protocol over a regular pkg/connection transport
// (serial or TCP) so the whole protocol can be exercised end to end
// against blctl without real silicon.
package main

import (
	"fmt"
	"os"

	"github.com/kvatra/blackshield/internal/bootdecider"
	"github.com/kvatra/blackshield/internal/crc"
	"github.com/kvatra/blackshield/internal/deviceloop"
	"github.com/kvatra/blackshield/internal/flash"
	"github.com/kvatra/blackshield/internal/mcu"
	"github.com/kvatra/blackshield/internal/session"
	"github.com/kvatra/blackshield/pkg/connection"
)

// envPin reads the mode pin from an environment variable, standing in
// for the real GPIO the tinygo build samples. Set BLACKSHIELD_MODE_PIN=low
// to force the simulated device into update mode.
type envPin struct{}

func (envPin) Low() bool {
	return os.Getenv("BLACKSHIELD_MODE_PIN") == "low"
}

// logFailSafe reports a CRC mismatch instead of blinking an LED.
type logFailSafe struct{}

func (logFailSafe) Enter() {
	fmt.Fprintln(os.Stderr, "blboot: installed image failed CRC verification, halting")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: blboot <port>")
		os.Exit(1)
	}
	port := os.Args[1]

	store := flash.NewMem()
	engine := crc.NewSoftware()
	ctl := mcu.NewSim()

	mode := bootdecider.Run(envPin{}, store, engine, ctl, store, logFailSafe{})
	if mode != bootdecider.ModeUpdate {
		fmt.Fprintf(os.Stderr, "blboot: boot decision = %v, not entering update session\n", mode)
		return
	}

	conn := connection.NewConnection(port)
	if err := conn.Open(port); err != nil {
		fmt.Fprintf(os.Stderr, "blboot: open %s: %v\n", port, err)
		os.Exit(1)
	}
	defer conn.Close()

	sess := session.New(store, engine, ctl)
	if err := deviceloop.Run(conn, sess); err != nil {
		fmt.Fprintf(os.Stderr, "blboot: session ended: %v\n", err)
	}
}
