// Package ppu provides the LCD register file (LCDC, STAT, SCY/SCX, LY/LYC,
// the palette and window registers, and OAM DMA) and the scanline/VBlank
// timing that drives the CPU's LCD and VBlank interrupts. Pixel
// composition and the sprite/background fetcher pipeline are out of
// scope here: Tick advances LY and fires interrupts on schedule without
// producing a framebuffer, so the CPU's timing-sensitive STAT/VBlank
// behavior is still exercised by anything built on top of this core.
package ppu

import (
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/ram"
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	cyclesPerLine  = 456
	linesPerFrame  = 154
	vblankStartLine = 144
)

// Mode is the STAT register's 2-bit PPU mode.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMScan
	ModeTransfer
)

// PPU is the LCD register file and its scanline clock.
type PPU struct {
	LCDC uint8
	STAT uint8
	SCY  uint8
	SCX  uint8
	LY   uint8
	LYC  uint8
	BGP  uint8
	OBP0 uint8
	OBP1 uint8
	WY   uint8
	WX   uint8

	VRAM *ram.Ram
	OAM  *ram.Ram

	mode        Mode
	lineCycles  uint16
	irq         *interrupts.Controller
	dmaSource   func(addr uint16) uint8
	dmaPage     uint8
	oamTransfer bool
	oamCycles   uint8
}

// New returns a new PPU with 8KiB of VRAM and 160 bytes of OAM, wired to
// the given interrupt controller.
func New(irq *interrupts.Controller) *PPU {
	return &PPU{
		VRAM: ram.NewRAM(0x2000),
		OAM:  ram.NewRAM(0xA0),
		irq:  irq,
	}
}

// SetDMASource installs the callback OAM DMA reads source bytes through
// (conventionally the owning bus), so a DMA transfer can pull from any
// memory region 0x0000-0xDF00 can address.
func (p *PPU) SetDMASource(f func(addr uint16) uint8) {
	p.dmaSource = f
}

// Tick advances the PPU's scanline clock by n machine cycles (4 dots
// each), transitioning STAT modes and requesting the VBlank and LCD STAT
// interrupts at the same points in the 456-dot line / 154-line frame a
// real LCD controller would.
func (p *PPU) Tick(n uint8) {
	if p.oamTransfer {
		p.stepDMA(n)
	}
	if p.LCDC&0x80 == 0 {
		return
	}
	p.lineCycles += uint16(n) * 4
	for p.lineCycles >= cyclesPerLine {
		p.lineCycles -= cyclesPerLine
		p.advanceLine()
	}
	p.updateMode()
}

func (p *PPU) advanceLine() {
	p.LY++
	if p.LY == vblankStartLine {
		p.irq.Request(interrupts.VBlank)
	}
	if p.LY >= linesPerFrame {
		p.LY = 0
	}
	if p.LY == p.LYC {
		p.STAT |= 0x04
		if p.STAT&0x40 != 0 {
			p.irq.Request(interrupts.LCD)
		}
	} else {
		p.STAT &^= 0x04
	}
}

func (p *PPU) updateMode() {
	var mode Mode
	switch {
	case p.LY >= vblankStartLine:
		mode = ModeVBlank
	case p.lineCycles < 80:
		mode = ModeOAMScan
	case p.lineCycles < 80+172:
		mode = ModeTransfer
	default:
		mode = ModeHBlank
	}
	if mode == p.mode {
		return
	}
	p.mode = mode
	p.STAT = p.STAT&0xFC | uint8(mode)
	statBit := map[Mode]uint8{ModeHBlank: 0x08, ModeVBlank: 0x10, ModeOAMScan: 0x20}[mode]
	if statBit != 0 && p.STAT&statBit != 0 {
		p.irq.Request(interrupts.LCD)
	}
}

func (p *PPU) stepDMA(n uint8) {
	if p.dmaSource == nil {
		p.oamTransfer = false
		return
	}
	for i := uint8(0); i < n && p.oamTransfer; i++ {
		src := uint16(p.dmaPage)<<8 + uint16(p.oamCycles)
		p.OAM.Write(uint16(p.oamCycles), p.dmaSource(src))
		p.oamCycles++
		if p.oamCycles >= 0xA0 {
			p.oamTransfer = false
		}
	}
}

// Read returns the value of the LCD register at the given address.
func (p *PPU) Read(address uint16) uint8 {
	switch address {
	case 0xFF40:
		return p.LCDC
	case 0xFF41:
		return p.STAT | 0x80
	case 0xFF42:
		return p.SCY
	case 0xFF43:
		return p.SCX
	case 0xFF44:
		return p.LY
	case 0xFF45:
		return p.LYC
	case 0xFF46:
		return p.dmaPage
	case 0xFF47:
		return p.BGP
	case 0xFF48:
		return p.OBP0
	case 0xFF49:
		return p.OBP1
	case 0xFF4A:
		return p.WY
	case 0xFF4B:
		return p.WX
	}
	return 0xFF
}

// Write writes the given value to the LCD register at the given address.
// A write to 0xFF46 (DMA) starts a 160-cycle OAM transfer; LY is
// read-only and a write to it is ignored.
func (p *PPU) Write(address uint16, value uint8) {
	switch address {
	case 0xFF40:
		p.LCDC = value
	case 0xFF41:
		p.STAT = p.STAT&0x07 | value&0x78
	case 0xFF42:
		p.SCY = value
	case 0xFF43:
		p.SCX = value
	case 0xFF45:
		p.LYC = value
	case 0xFF46:
		p.dmaPage = value
		p.oamTransfer = true
		p.oamCycles = 0
	case 0xFF47:
		p.BGP = value
	case 0xFF48:
		p.OBP0 = value
	case 0xFF49:
		p.OBP1 = value
	case 0xFF4A:
		p.WY = value
	case 0xFF4B:
		p.WX = value
	}
}
