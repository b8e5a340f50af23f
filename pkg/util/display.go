// Package util holds blctl's console helpers: the hex dump view for
// Read_Firmware windows and the confirmation prompt every destructive
// flash command goes through.
package util

import (
	"fmt"
	"io"
)

// HexDump writes a 16-byte-per-line hex view of a flash read-back
// window to w. base is the flash address of data[0]; it is printed as a
// full 32-bit address so the lines line up with the bootloader's
// address map (APP_START and friends).
func HexDump(w io.Writer, data []byte, base uint32) {
	const perLine = 16

	for off := 0; off < len(data); off += perLine {
		end := off + perLine
		if end > len(data) {
			end = len(data)
		}

		fmt.Fprintf(w, "%08X  ", base+uint32(off))

		for i := off; i < off+perLine; i++ {
			if i < end {
				fmt.Fprintf(w, "%02X ", data[i])
			} else {
				fmt.Fprint(w, "   ")
			}
		}

		fmt.Fprint(w, " |")
		for i := off; i < end; i++ {
			if data[i] >= 0x20 && data[i] <= 0x7E {
				fmt.Fprintf(w, "%c", data[i])
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w, "|")
	}
}
