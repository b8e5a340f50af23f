package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestHexDumpAddressesStartAtBase(t *testing.T) {
	var out bytes.Buffer
	data := make([]byte, 32)
	HexDump(&out, data, 0x08010000)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], "08010000") {
		t.Errorf("line 0 = %q, want prefix 08010000", lines[0])
	}
	if !strings.HasPrefix(lines[1], "08010010") {
		t.Errorf("line 1 = %q, want prefix 08010010", lines[1])
	}
}

func TestHexDumpPartialLastLine(t *testing.T) {
	var out bytes.Buffer
	HexDump(&out, []byte{0xDE, 0xAD, 0xBE, 0xEF}, 0x08010000)

	got := out.String()
	if !strings.Contains(got, "DE AD BE EF") {
		t.Errorf("output %q missing hex bytes", got)
	}
	if strings.Count(got, "\n") != 1 {
		t.Errorf("output %q should be a single line", got)
	}
}

func TestHexDumpASCIIColumn(t *testing.T) {
	var out bytes.Buffer
	HexDump(&out, []byte("MSP\x00"), 0x08010000)

	if !strings.Contains(out.String(), "|MSP.|") {
		t.Errorf("output %q missing ASCII column |MSP.|", out.String())
	}
}

func TestHexDumpEmptyInput(t *testing.T) {
	var out bytes.Buffer
	HexDump(&out, nil, 0x08010000)
	if out.Len() != 0 {
		t.Errorf("HexDump(nil) wrote %q, want nothing", out.String())
	}
}
