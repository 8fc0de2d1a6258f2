package cartridge

import (
	"fmt"

	"github.com/thelolagemann/gbcore/internal/coreerr"
)

// Type is the raw MBC type code at header offset 0x147.
type Type uint8

const (
	TypeROM               Type = 0x00
	TypeMBC1              Type = 0x01
	TypeMBC1RAM           Type = 0x02
	TypeMBC1RAMBattery    Type = 0x03
	TypeMBC2              Type = 0x05
	TypeMBC2Battery       Type = 0x06
	TypeROMRAM            Type = 0x08
	TypeROMRAMBattery     Type = 0x09
	TypeMMM01             Type = 0x0B
	TypeMMM01RAM          Type = 0x0C
	TypeMMM01RAMBattery   Type = 0x0D
	TypeMBC3TimerBattery  Type = 0x0F
	TypeMBC3TimerRAMBatt  Type = 0x10
	TypeMBC3              Type = 0x11
	TypeMBC3RAM           Type = 0x12
	TypeMBC3RAMBattery    Type = 0x13
	TypeMBC5              Type = 0x19
	TypeMBC5RAM           Type = 0x1A
	TypeMBC5RAMBattery    Type = 0x1B
	TypeMBC5Rumble        Type = 0x1C
	TypeMBC5RumbleRAM     Type = 0x1D
	TypeMBC5RumbleRAMBatt Type = 0x1E
	TypePocketCamera      Type = 0xFC
	TypeBandaiTama5       Type = 0xFD
	TypeHuC3              Type = 0xFE
	TypeHuC1RAMBattery    Type = 0xFF
)

// Variant is the MBC state-machine family this core implements. Type
// codes the spec lists as "others" (MMM01, HuC1, HuC3, Camera, Tama5) map
// to VariantPassthrough.
type Variant int

const (
	VariantROM Variant = iota
	VariantMBC1
	VariantMBC2
	VariantMBC3
	VariantMBC5
	VariantPassthrough
)

// variant classifies a header Type into the state machine that drives it,
// and reports whether that variant has a battery and/or an RTC.
func (t Type) variant() (v Variant, battery, rtc bool) {
	switch t {
	case TypeROM, TypeROMRAM, TypeROMRAMBattery:
		return VariantROM, t == TypeROMRAMBattery, false
	case TypeMBC1:
		return VariantMBC1, false, false
	case TypeMBC1RAM:
		return VariantMBC1, false, false
	case TypeMBC1RAMBattery:
		return VariantMBC1, true, false
	case TypeMBC2:
		return VariantMBC2, false, false
	case TypeMBC2Battery:
		return VariantMBC2, true, false
	case TypeMBC3TimerBattery:
		return VariantMBC3, true, true
	case TypeMBC3TimerRAMBatt:
		return VariantMBC3, true, true
	case TypeMBC3:
		return VariantMBC3, false, false
	case TypeMBC3RAM:
		return VariantMBC3, false, false
	case TypeMBC3RAMBattery:
		return VariantMBC3, true, false
	case TypeMBC5, TypeMBC5Rumble:
		return VariantMBC5, false, false
	case TypeMBC5RAM, TypeMBC5RumbleRAM:
		return VariantMBC5, false, false
	case TypeMBC5RAMBattery, TypeMBC5RumbleRAMBatt:
		return VariantMBC5, true, false
	case TypeMMM01, TypeMMM01RAM, TypeMMM01RAMBattery, TypePocketCamera,
		TypeBandaiTama5, TypeHuC3, TypeHuC1RAMBattery:
		return VariantPassthrough, false, false
	}
	return VariantPassthrough, false, false
}

// romBanks maps the ROM size code at 0x148 to a bank count; every
// official code doubles the bank count of 2 (32KiB) by 1<<code.
func romBanks(code uint8) (int, error) {
	if code > 0x08 {
		return 0, fmt.Errorf("rom size code %#02x out of range", code)
	}
	return 2 << code, nil
}

// ramBytesTable maps the RAM size code at 0x149 to a byte count.
var ramBytesTable = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,  // unofficial/legacy, never used by licensed carts
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header is the parsed 0x0100-0x014F cartridge header.
type Header struct {
	Title           string
	SGBFlag         bool
	CartridgeType   Type
	ROMSizeCode     uint8
	RAMSizeCode     uint8
	Destination     uint8
	Version         uint8
	HeaderChecksum  uint8
	GlobalChecksum  uint16

	ROMBytes  int
	ROMBanks  int
	RAMBytes  int
	RAMBanks  int

	Variant    Variant
	HasBattery bool
	HasRTC     bool
}

// parseHeader parses the header embedded in a full ROM image. rom must be
// at least 0x150 bytes.
func parseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, coreerr.New(coreerr.MalformedHeader, "rom is %d bytes, need at least 0x150", len(rom))
	}

	h := Header{
		Title:          trimTitle(rom[0x134:0x144]),
		SGBFlag:        rom[0x146] == 0x03,
		CartridgeType:  Type(rom[0x147]),
		ROMSizeCode:    rom[0x148],
		RAMSizeCode:    rom[0x149],
		Destination:    rom[0x14A],
		Version:        rom[0x14C],
		HeaderChecksum: rom[0x14D],
		GlobalChecksum: uint16(rom[0x14E])<<8 | uint16(rom[0x14F]),
	}

	banks, err := romBanks(h.ROMSizeCode)
	if err != nil {
		return Header{}, coreerr.New(coreerr.MalformedHeader, "%s", err)
	}
	h.ROMBanks = banks
	h.ROMBytes = banks * 0x4000

	ramBytes, ok := ramBytesTable[h.RAMSizeCode]
	if !ok {
		return Header{}, coreerr.New(coreerr.MalformedHeader, "ram size code %#02x out of range", h.RAMSizeCode)
	}
	h.RAMBytes = ramBytes
	if ramBytes > 0 {
		h.RAMBanks = (ramBytes + 0x1FFF) / 0x2000
	}

	h.Variant, h.HasBattery, h.HasRTC = h.CartridgeType.variant()

	return h, nil
}

func trimTitle(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return string(b[:end])
}

// ComputedHeaderChecksum returns the checksum §6 defines over
// 0x134..0x14C of the ROM image.
func ComputedHeaderChecksum(rom []byte) uint8 {
	var sum uint8
	for _, b := range rom[0x134:0x14D] {
		sum = sum - b - 1
	}
	return sum
}

// ComputedGlobalChecksum returns the big-endian sum of every byte in the
// ROM image except the two global-checksum bytes themselves.
func ComputedGlobalChecksum(rom []byte) uint16 {
	var sum uint16
	for i, b := range rom {
		if i == 0x14E || i == 0x14F {
			continue
		}
		sum += uint16(b)
	}
	return sum
}
