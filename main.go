// blctl - command-line tool for field-updating a blackshield bootloader
//
// This tool uploads firmware images, drives the update protocol state
// machine on a connected device, and reads back installed image status
// over a serial or TCP connection.
package main

import (
	"fmt"
	"os"

	"github.com/kvatra/blackshield/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
