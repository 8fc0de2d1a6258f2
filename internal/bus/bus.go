// Package bus implements the CPU's 16-bit address space: the single
// switch that routes every Read and Write to cartridge ROM/RAM, VRAM,
// WRAM (with its 0xE000-0xFDFF echo mirror), OAM, the unusable region,
// the I/O register block, HRAM, and IE. Bus constructs and owns the PPU,
// APU, timer, serial port, joypad, WRAM and HRAM it decodes addresses to.
// The cartridge and the interrupt controller are passed in by the caller
// and are also referenced by the CPU and the core facade.
package bus

import (
	"github.com/thelolagemann/gbcore/internal/apu"
	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/ppu"
	"github.com/thelolagemann/gbcore/internal/ram"
	"github.com/thelolagemann/gbcore/internal/serial"
	"github.com/thelolagemann/gbcore/internal/timer"
)

// Bus is the owning aggregate of every addressable component.
type Bus struct {
	Cart *cartridge.Cartridge
	PPU  *ppu.PPU
	APU  *apu.Controller
	IRQ  *interrupts.Controller
	Timer  *timer.Controller
	Serial *serial.Controller
	Joypad *joypad.State

	wram [2]*ram.Ram // bank 0 (0xC000-0xCFFF), bank 1 (0xD000-0xDFFF)
	hram *ram.Ram
}

// New wires a fresh bus around the given cartridge and interrupt
// controller, constructing every other component itself.
func New(cart *cartridge.Cartridge, irq *interrupts.Controller) *Bus {
	b := &Bus{
		Cart:   cart,
		PPU:    ppu.New(irq),
		APU:    apu.New(),
		IRQ:    irq,
		Timer:  timer.New(irq),
		Serial: serial.New(irq),
		Joypad: joypad.New(irq),
		wram:   [2]*ram.Ram{ram.NewRAM(0x1000), ram.NewRAM(0x1000)},
		hram:   ram.NewRAM(0x7F),
	}
	b.PPU.SetDMASource(b.Read)
	return b
}

// Tick advances every clocked component (timer, serial is edge-triggered
// so nothing to advance, PPU) by n machine cycles. The CPU step loop
// calls this once per instruction with the instruction's own cycle cost,
// matching the M-cycle granularity this core models instead of ticking
// per individual memory access.
func (b *Bus) Tick(n uint8) {
	b.Timer.Tick(n)
	b.PPU.Tick(n)
}

// Read returns the byte visible at address.
func (b *Bus) Read(address uint16) uint8 {
	switch {
	case address < 0x8000:
		return b.Cart.Read(address)
	case address < 0xA000:
		return b.PPU.VRAM.Read(address - 0x8000)
	case address < 0xC000:
		return b.Cart.Read(address)
	case address < 0xD000:
		return b.wram[0].Read(address - 0xC000)
	case address < 0xE000:
		return b.wram[1].Read(address - 0xD000)
	case address < 0xF000:
		return b.wram[0].Read(address - 0xE000) // echo of 0xC000-0xCFFF
	case address < 0xFE00:
		return b.wram[1].Read(address - 0xF000) // echo of 0xD000-0xDFFF
	case address < 0xFEA0:
		return b.PPU.OAM.Read(address - 0xFE00)
	case address < 0xFF00:
		return 0xFF // unusable region
	case address < 0xFF80:
		return b.readIO(address)
	case address < 0xFFFF:
		return b.hram.Read(address - 0xFF80)
	default: // 0xFFFF
		return b.IRQ.Read(address)
	}
}

// Write writes value to address.
func (b *Bus) Write(address uint16, value uint8) {
	switch {
	case address < 0x8000:
		b.Cart.Write(address, value)
	case address < 0xA000:
		b.PPU.VRAM.Write(address-0x8000, value)
	case address < 0xC000:
		b.Cart.Write(address, value)
	case address < 0xD000:
		b.wram[0].Write(address-0xC000, value)
	case address < 0xE000:
		b.wram[1].Write(address-0xD000, value)
	case address < 0xF000:
		b.wram[0].Write(address-0xE000, value)
	case address < 0xFE00:
		b.wram[1].Write(address-0xF000, value)
	case address < 0xFEA0:
		b.PPU.OAM.Write(address-0xFE00, value)
	case address < 0xFF00:
		// unusable region: writes are dropped
	case address < 0xFF80:
		b.writeIO(address, value)
	case address < 0xFFFF:
		b.hram.Write(address-0xFF80, value)
	default:
		b.IRQ.Write(address, value)
	}
}

func (b *Bus) readIO(address uint16) uint8 {
	switch {
	case address == 0xFF00:
		return b.Joypad.Read()
	case address == 0xFF01 || address == 0xFF02:
		return b.Serial.Read(address)
	case address >= 0xFF04 && address <= 0xFF07:
		return b.Timer.Read(address)
	case address == 0xFF0F:
		return b.IRQ.Read(address)
	case address >= 0xFF10 && address <= 0xFF3F:
		return b.APU.Read(address)
	case address >= 0xFF40 && address <= 0xFF4B:
		return b.PPU.Read(address)
	case address == 0xFF50:
		return 0xFF
	}
	return 0xFF
}

func (b *Bus) writeIO(address uint16, value uint8) {
	switch {
	case address == 0xFF00:
		b.Joypad.Write(value)
	case address == 0xFF01 || address == 0xFF02:
		b.Serial.Write(address, value)
	case address >= 0xFF04 && address <= 0xFF07:
		b.Timer.Write(address, value)
	case address == 0xFF0F:
		b.IRQ.Write(address, value)
	case address >= 0xFF10 && address <= 0xFF3F:
		b.APU.Write(address, value)
	case address >= 0xFF40 && address <= 0xFF4B:
		b.PPU.Write(address, value)
	case address == 0xFF50:
		if value&0x01 != 0 {
			b.Cart.UnmapBoot()
		}
	}
}

// Load16 reads a little-endian 16-bit value starting at address.
func (b *Bus) Load16(address uint16) uint16 {
	lo := b.Read(address)
	hi := b.Read(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Store16 writes a little-endian 16-bit value starting at address.
func (b *Bus) Store16(address uint16, value uint16) {
	b.Write(address, uint8(value))
	b.Write(address+1, uint8(value>>8))
}
