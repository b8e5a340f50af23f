// Package layout describes the bootloader's fixed flash address map: the
// bootloader's own region, the installed application region, and the
// metadata sector that publishes an installed image's length and CRC32.
//
// All offsets are compiled in, matching spec.md's "Configuration is
// compile-time constants" rule (§6) — nothing here is read from a file or
// environment variable.
package layout

import "encoding/binary"

const (
	// BootloaderStart is the base address of this program's own flash region.
	BootloaderStart uint32 = 0x08000000
	// BootloaderSize is the size of the bootloader's flash region.
	BootloaderSize uint32 = 64 * 1024

	// AppStart is the base address of the installed application image.
	// The image's vector table lives at word[0] (initial MSP) and
	// word[1] (reset handler).
	AppStart uint32 = 0x08010000
	// AppMaxSize is the largest image length a valid Descriptor may name,
	// one byte short of the 64 KiB application sector.
	AppMaxSize uint32 = 65535

	// MetaStart is the base address of the metadata sector: word 0 holds
	// length_bytes, word 1 holds expected_crc32, both stored big-endian
	// on flash.
	MetaStart uint32 = 0x08020000

	// NoImageLength is the sentinel length value of an erased (blank)
	// metadata sector: no image is installed.
	NoImageLength uint32 = 0xFFFFFFFF
)

// Sector identifies one of the flash controller's twelve erase sectors.
type Sector uint8

// The STM32F4-style sector map: four 16 KiB sectors, one 64 KiB sector,
// seven 128 KiB sectors. Sector 4 holds the entire application region;
// Sector 5 holds the metadata sector plus spare space reserved for future
// use. Grounded in original_source's Flash.h Flash_Sectors_Typedef.
const (
	Sector0 Sector = iota
	Sector1
	Sector2
	Sector3
	Sector4
	Sector5
	Sector6
	Sector7
	Sector8
	Sector9
	Sector10
	Sector11
	numSectors
)

// SectorMap gives the base address and size of every flash sector.
var SectorMap = [numSectors]struct {
	Base uint32
	Size uint32
}{
	Sector0:  {0x08000000, 16 * 1024},
	Sector1:  {0x08004000, 16 * 1024},
	Sector2:  {0x08008000, 16 * 1024},
	Sector3:  {0x0800C000, 16 * 1024},
	Sector4:  {0x08010000, 64 * 1024},
	Sector5:  {0x08020000, 128 * 1024},
	Sector6:  {0x08040000, 128 * 1024},
	Sector7:  {0x08060000, 128 * 1024},
	Sector8:  {0x08080000, 128 * 1024},
	Sector9:  {0x080A0000, 128 * 1024},
	Sector10: {0x080C0000, 128 * 1024},
	Sector11: {0x080E0000, 128 * 1024},
}

// AppSector and MetaSector name the two sectors Erase_Firmware destroys.
const (
	AppSector  = Sector4
	MetaSector = Sector5
)

// Descriptor is the two-word image record published by Write_Complete and
// consulted by the Boot Decider. On flash both words are stored
// big-endian; Descriptor always holds them as native uint32 values.
type Descriptor struct {
	LengthBytes  uint32
	ExpectedCRC  uint32
}

// Valid reports whether the descriptor names an installed image, per
// spec.md's invariant: a blank (all-ones) or oversized length means no
// image is installed.
func (d Descriptor) Valid() bool {
	return d.LengthBytes != NoImageLength && d.LengthBytes <= AppMaxSize
}

// DecodeDescriptor reverses the on-flash big-endian word order into a
// Descriptor. raw must hold at least 8 bytes: length then CRC32.
func DecodeDescriptor(raw []byte) Descriptor {
	return Descriptor{
		LengthBytes: binary.BigEndian.Uint32(raw[0:4]),
		ExpectedCRC: binary.BigEndian.Uint32(raw[4:8]),
	}
}

// EncodeDescriptor serializes a Descriptor into its on-flash big-endian
// byte order, ready to be programmed at MetaStart.
func EncodeDescriptor(d Descriptor) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], d.LengthBytes)
	binary.BigEndian.PutUint32(buf[4:8], d.ExpectedCRC)
	return buf
}
