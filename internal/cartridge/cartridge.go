// Package cartridge parses a Game Boy ROM header and emulates the bank
// switching of the MBC1, MBC2, MBC3 and MBC5 controller families behind a
// single state machine, plus the header-checksum and boot ROM overlay
// handling the bus depends on.
package cartridge

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/coreerr"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// Cartridge owns the ROM image, cartridge RAM, and every MBC family's bank
// registers in one struct; which fields are live is determined entirely by
// Header.Variant. This mirrors the fact that real MBC chips are simple
// register-decode logic, not polymorphic objects, and lets the bus hold one
// concrete type instead of an interface.
type Cartridge struct {
	Header Header
	md5sum string

	rom []byte
	ram []byte

	// MBC1
	bank1     uint8 // 5-bit ROM bank select, low bits
	bank2     uint8 // 2-bit secondary bank select (ROM bank high bits; in mode 1 also the RAM bank)
	mode      uint8 // 0: bank2 affects ROM bank only above 0x4000; 1: also affects bank 0 and RAM
	multicart bool  // 1MiB+8KiB "MBC1M" variant: bank1 is 4 bits wide, not 5

	// MBC2
	mbc2Bank uint8 // 4-bit ROM bank select; RAM is the built-in 512x4-bit array

	// MBC3
	mbc3RomBank uint8 // 7-bit ROM bank select
	mbc3Select  uint8 // 0x00-0x03 selects a RAM bank, 0x08-0x0C selects an RTC register
	rtc         [5]uint8
	rtcLatched  [5]uint8
	latchState  uint8 // tracks the 0x00-then-0x01 write sequence that latches the RTC

	// MBC5
	mbc5RomBank uint16 // 9-bit ROM bank select
	mbc5RamBank uint8  // 4-bit RAM bank select

	ramEnabled bool

	boot       *boot.ROM
	bootMapped bool

	log log.Logger
}

// New parses rom's header and returns a Cartridge ready to be wired into a
// bus. An optional boot ROM overlays bank 0's first 256 bytes until the
// program unmaps it by writing to 0xFF50.
func New(rom []byte, bootROM *boot.ROM, logger log.Logger) (*Cartridge, error) {
	h, err := parseHeader(rom)
	if err != nil {
		return nil, err
	}
	if h.Variant == VariantPassthrough {
		return nil, coreerr.New(coreerr.UnimplementedMbc, "cartridge type %#02x (%s) is not supported", h.CartridgeType, h.Title)
	}

	if logger == nil {
		logger = log.New()
	}

	if got, want := ComputedHeaderChecksum(rom), h.HeaderChecksum; got != want {
		logger.Errorf("cartridge: header checksum mismatch: computed %#02x, header says %#02x", got, want)
	}
	if got, want := ComputedGlobalChecksum(rom), h.GlobalChecksum; got != want {
		logger.Infof("cartridge: global checksum mismatch: computed %#04x, header says %#04x (not fatal, rarely matches on homebrew)", got, want)
	}

	full := make([]byte, h.ROMBytes)
	copy(full, rom)
	sum := md5.Sum(rom)

	ramBytes := h.RAMBytes
	if h.Variant == VariantMBC2 {
		// MBC2's 512x4-bit RAM is built into the MBC2 chip itself, not
		// sized by the header's RAM size code (which MBC2 carts always
		// set to 0x00).
		ramBytes = 512
	}

	c := &Cartridge{
		Header: h,
		md5sum: hex.EncodeToString(sum[:]),
		rom:    full,
		ram:    make([]byte, ramBytes),
		log:    logger,
		boot:   bootROM,
	}
	if h.Variant == VariantMBC1 {
		c.multicart = detectMulticart(full, h)
	}
	if h.Variant == VariantMBC5 {
		c.mbc5RomBank = 1
	}
	if bootROM != nil {
		c.bootMapped = true
	}
	return c, nil
}

// detectMulticart recognizes the MBC1M layout: a 1MiB, 4-game multicart ROM
// wires the bank-2 register to ROM-bank bits 4-5 instead of 5-6, so the
// cartridge's bank-0 region repeats every 0x40000 bytes instead of every
// 0x80000. Real multicarts are identified by a
// Nintendo logo repeated at each 0x40000 boundary; that is a stronger test
// than size alone but still heuristic, matching how real multicart menus
// are detected by emulators in the absence of a dedicated header bit.
func detectMulticart(rom []byte, h Header) bool {
	if h.ROMBanks != 64 {
		return false
	}
	const logoLen = 0x30
	logoAt := func(off int) []byte {
		if off+logoLen > len(rom) {
			return nil
		}
		return rom[off+0x104 : off+0x104+logoLen]
	}
	first := logoAt(0)
	if first == nil {
		return false
	}
	for _, bank := range []int{0x40000, 0x80000, 0xC0000} {
		other := logoAt(bank)
		if other == nil || string(other) != string(first) {
			return false
		}
	}
	return true
}

// MD5 returns the hex-encoded MD5 of the raw ROM image, used as a stable
// cartridge identity for save-file naming and test-ROM recognition.
func (c *Cartridge) MD5() string {
	return c.md5sum
}

// SaveFilename returns the conventional battery-save filename for this
// cartridge, or "" if it has no battery-backed RAM to persist.
func (c *Cartridge) SaveFilename() string {
	if !c.Header.HasBattery {
		return ""
	}
	return c.Header.Title + ".sav"
}

// RAM returns the raw battery-backed RAM image for persistence. It is nil
// if the cartridge has no RAM.
func (c *Cartridge) RAM() []byte {
	if len(c.ram) == 0 {
		return nil
	}
	return c.ram
}

// LoadRAM replaces the cartridge RAM image with previously saved contents.
// It is a no-op if the sizes don't match.
func (c *Cartridge) LoadRAM(data []byte) {
	if len(data) != len(c.ram) {
		return
	}
	copy(c.ram, data)
}

// UnmapBoot unmaps the boot ROM overlay, the one-way transition a program
// triggers by writing to 0xFF50. Once unmapped it cannot be remapped.
func (c *Cartridge) UnmapBoot() {
	c.bootMapped = false
}

// romBank0 returns the bank mapped at 0x0000-0x3FFF, accounting for MBC1
// mode 1's coupling of the secondary bank register into the low bank.
func (c *Cartridge) romBank0() int {
	if c.Header.Variant == VariantMBC1 && c.mode == 1 {
		if c.multicart {
			return int(c.highBits()) << 4 % c.Header.ROMBanks
		}
		return int(c.highBits()) << 5 % c.Header.ROMBanks
	}
	return 0
}

// highBits returns the MBC1 bank2 register's two bits; callers shift them
// into ROM-bank bits 4-5 on a multicart and bits 5-6 otherwise.
func (c *Cartridge) highBits() uint8 {
	return c.bank2 & 0x03
}

// romBankN returns the bank mapped at 0x4000-0x7FFF.
func (c *Cartridge) romBankN() int {
	switch c.Header.Variant {
	case VariantROM:
		return 1
	case VariantMBC1:
		bank1 := c.bank1
		if c.multicart {
			bank1 &= 0x0F
		} else {
			bank1 &= 0x1F
		}
		if bank1 == 0 {
			bank1 = 1
		}
		var bank int
		if c.multicart {
			bank = int(c.highBits())<<4 | int(bank1)
		} else {
			bank = int(c.highBits())<<5 | int(bank1)
		}
		return bank % c.Header.ROMBanks
	case VariantMBC2:
		bank := c.mbc2Bank & 0x0F
		if bank == 0 {
			bank = 1
		}
		return int(bank) % c.Header.ROMBanks
	case VariantMBC3:
		bank := c.mbc3RomBank & 0x7F
		if bank == 0 {
			bank = 1
		}
		return int(bank) % c.Header.ROMBanks
	case VariantMBC5:
		// MBC5 legitimately allows bank 0 to be selected here, unlike the
		// earlier controllers.
		return int(c.mbc5RomBank) % c.Header.ROMBanks
	}
	return 1
}

// Read returns the byte visible at the given cartridge-space address
// (0x0000-0x7FFF for ROM, 0xA000-0xBFFF for RAM).
func (c *Cartridge) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		if c.bootMapped && address < boot.Size {
			return c.boot.Bytes()[address]
		}
		off := c.romBank0()*0x4000 + int(address)
		return c.romByte(off)
	case address < 0x8000:
		off := c.romBankN()*0x4000 + int(address-0x4000)
		return c.romByte(off)
	case address >= 0xA000 && address < 0xC000:
		return c.readRAM(address - 0xA000)
	}
	return 0xFF
}

func (c *Cartridge) romByte(off int) uint8 {
	if off < 0 || off >= len(c.rom) {
		return 0xFF
	}
	return c.rom[off]
}

func (c *Cartridge) readRAM(offset uint16) uint8 {
	switch c.Header.Variant {
	case VariantMBC2:
		if !c.ramEnabled || len(c.ram) == 0 {
			return 0xFF
		}
		// MBC2's 512x4-bit array decodes on 9 address bits: every 0x200
		// byte window mirrors the same 0x200 entries, with the high nibble
		// always reading back as 1s.
		return c.ram[offset%0x200] | 0xF0
	case VariantMBC3:
		if c.mbc3Select <= 0x03 {
			if !c.ramEnabled || len(c.ram) == 0 {
				return 0xFF
			}
			idx := int(c.mbc3Select)*0x2000 + int(offset)
			if idx >= len(c.ram) {
				return 0xFF
			}
			return c.ram[idx]
		}
		if c.mbc3Select >= 0x08 && c.mbc3Select <= 0x0C {
			return c.rtcLatched[c.mbc3Select-0x08]
		}
		return 0xFF
	default:
		if !c.ramEnabled || len(c.ram) == 0 {
			return 0xFF
		}
		bank := c.ramBank()
		idx := bank*0x2000 + int(offset)
		if idx >= len(c.ram) {
			return 0xFF
		}
		return c.ram[idx]
	}
}

func (c *Cartridge) ramBank() int {
	switch c.Header.Variant {
	case VariantMBC1:
		if c.mode == 1 && !c.multicart {
			return int(c.bank2 & 0x03)
		}
		return 0
	case VariantMBC5:
		return int(c.mbc5RamBank & 0x0F)
	}
	return 0
}

// Write handles a CPU write into cartridge-space address space, routing it
// to either a bank register or cartridge RAM depending on the address
// range and the active MBC variant.
func (c *Cartridge) Write(address uint16, value uint8) {
	switch c.Header.Variant {
	case VariantMBC1:
		c.writeMBC1(address, value)
	case VariantMBC2:
		c.writeMBC2(address, value)
	case VariantMBC3:
		c.writeMBC3(address, value)
	case VariantMBC5:
		c.writeMBC5(address, value)
	case VariantROM:
		if address >= 0xA000 && address < 0xC000 {
			c.writePlainRAM(address-0xA000, value)
		}
	}
}

func (c *Cartridge) writePlainRAM(offset uint16, value uint8) {
	if len(c.ram) == 0 {
		return
	}
	idx := int(offset)
	if idx < len(c.ram) {
		c.ram[idx] = value
	}
}

func (c *Cartridge) writeMBC1(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		c.bank1 = value & 0x1F
	case address < 0x6000:
		c.bank2 = value & 0x03
	case address < 0x8000:
		c.mode = value & 0x01
	case address >= 0xA000 && address < 0xC000:
		if !c.ramEnabled {
			return
		}
		c.writePlainRAM(uint16(c.ramBank()*0x2000)+(address-0xA000), value)
	}
}

func (c *Cartridge) writeMBC2(address uint16, value uint8) {
	switch {
	case address < 0x4000:
		// MBC2 decodes the RAM-enable/ROM-bank split on address bit 8 alone,
		// regardless of where else in 0x0000-0x3FFF the write lands.
		if address&0x0100 == 0 {
			c.ramEnabled = value&0x0F == 0x0A
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			c.mbc2Bank = bank
		}
	case address >= 0xA000 && address < 0xC000:
		if !c.ramEnabled || len(c.ram) == 0 {
			return
		}
		c.ram[(address-0xA000)%0x200] = value & 0x0F
	}
}

func (c *Cartridge) writeMBC3(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		c.mbc3RomBank = bank
	case address < 0x6000:
		c.mbc3Select = value
	case address < 0x8000:
		// RTC latch: a 0x00-then-0x01 write pair copies the live registers
		// into the latched snapshot CPU reads observe.
		if c.latchState == 0x00 && value == 0x01 {
			c.rtcLatched = c.rtc
		}
		c.latchState = value
	case address >= 0xA000 && address < 0xC000:
		if c.mbc3Select <= 0x03 {
			if !c.ramEnabled || len(c.ram) == 0 {
				return
			}
			idx := int(c.mbc3Select)*0x2000 + int(address-0xA000)
			if idx < len(c.ram) {
				c.ram[idx] = value
			}
		} else if c.mbc3Select >= 0x08 && c.mbc3Select <= 0x0C {
			c.rtc[c.mbc3Select-0x08] = value
		}
	}
}

func (c *Cartridge) writeMBC5(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x3000:
		c.mbc5RomBank = c.mbc5RomBank&0x100 | uint16(value)
	case address < 0x4000:
		c.mbc5RomBank = c.mbc5RomBank&0x0FF | uint16(value&0x01)<<8
	case address < 0x6000:
		c.mbc5RamBank = value & 0x0F
	case address >= 0xA000 && address < 0xC000:
		if !c.ramEnabled {
			return
		}
		c.writePlainRAM(uint16(c.ramBank()*0x2000)+(address-0xA000), value)
	}
}
