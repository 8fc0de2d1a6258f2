package bus

import (
	"testing"

	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/pkg/log"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x134:], "TESTROM")
	rom[0x147] = 0x00
	rom[0x14D] = cartridge.ComputedHeaderChecksum(rom)
	c, err := cartridge.New(rom, nil, log.NewNullLogger())
	if err != nil {
		t.Fatal(err)
	}
	return New(c, interrupts.New())
}

func TestEchoRAMMirrorsWorkRAM(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xC010, 0x42)
	if got := b.Read(0xE010); got != 0x42 {
		t.Errorf("echo read = %#02x, want 0x42", got)
	}
	b.Write(0xE020, 0x99)
	if got := b.Read(0xC020); got != 0x99 {
		t.Errorf("write through echo read back from WRAM = %#02x, want 0x99", got)
	}
}

func TestUnusableRegionReadsFFAndDropsWrites(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xFEA0, 0x55)
	if got := b.Read(0xFEA0); got != 0xFF {
		t.Errorf("unusable region read = %#02x, want 0xFF", got)
	}
}

func TestHRAMRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xFF80, 0x01)
	b.Write(0xFFFE, 0x02)
	if got := b.Read(0xFF80); got != 0x01 {
		t.Errorf("HRAM[0] = %#02x, want 0x01", got)
	}
	if got := b.Read(0xFFFE); got != 0x02 {
		t.Errorf("HRAM[last] = %#02x, want 0x02", got)
	}
}

func TestIEAddressRoutesToInterruptController(t *testing.T) {
	b := newTestBus(t)
	b.Write(0xFFFF, 0x1F)
	if got := b.Read(0xFFFF); got != 0x1F {
		t.Errorf("IE = %#02x, want 0x1F", got)
	}
}

func TestLoad16Store16RoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Store16(0xC000, 0xBEEF)
	if got := b.Load16(0xC000); got != 0xBEEF {
		t.Errorf("Load16 = %#04x, want 0xBEEF", got)
	}
	if got := b.Read(0xC000); got != 0xEF {
		t.Errorf("low byte at 0xC000 = %#02x, want 0xEF", got)
	}
	if got := b.Read(0xC001); got != 0xBE {
		t.Errorf("high byte at 0xC001 = %#02x, want 0xBE", got)
	}
}

func TestUnmapBootOnFF50Write(t *testing.T) {
	rom := make([]byte, 0x8000)
	copy(rom[0x134:], "TESTROM")
	rom[0x14D] = cartridge.ComputedHeaderChecksum(rom)
	bootROM := make([]byte, 256)
	bootROM[0] = 0xAA
	rom[0] = 0x11
	br, err := boot.Load(bootROM)
	if err != nil {
		t.Fatal(err)
	}
	c, err := cartridge.New(rom, br, log.NewNullLogger())
	if err != nil {
		t.Fatal(err)
	}
	b := New(c, interrupts.New())

	if got := b.Read(0x0000); got != 0xAA {
		t.Errorf("boot-mapped read = %#02x, want 0xAA", got)
	}
	b.Write(0xFF50, 0x01)
	if got := b.Read(0x0000); got != 0x11 {
		t.Errorf("post-unmap read = %#02x, want cartridge byte 0x11", got)
	}
}
