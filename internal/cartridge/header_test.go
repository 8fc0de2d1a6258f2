package cartridge

import "testing"

func TestParseHeaderRejectsShortROM(t *testing.T) {
	_, err := parseHeader(make([]byte, 0x100))
	if err == nil {
		t.Fatal("expected an error for a too-short rom")
	}
}

func TestParseHeaderRejectsBadROMSizeCode(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x148] = 0x09 // one past the last valid code
	_, err := parseHeader(rom)
	if err == nil {
		t.Fatal("expected an error for an out-of-range rom size code")
	}
}

func TestParseHeaderRejectsBadRAMSizeCode(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x149] = 0x06 // not in ramBytesTable
	_, err := parseHeader(rom)
	if err == nil {
		t.Fatal("expected an error for an out-of-range ram size code")
	}
}

func TestParseHeaderComputesBankCounts(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x147] = uint8(TypeMBC3RAMBattery)
	rom[0x148] = 0x02 // 8 banks, 128KiB
	rom[0x149] = 0x03 // 32KiB RAM, 4 banks
	h, err := parseHeader(rom)
	if err != nil {
		t.Fatal(err)
	}
	if h.ROMBanks != 8 || h.ROMBytes != 0x20000 {
		t.Errorf("ROMBanks=%d ROMBytes=%#x, want 8 / 0x20000", h.ROMBanks, h.ROMBytes)
	}
	if h.RAMBanks != 4 || h.RAMBytes != 32*1024 {
		t.Errorf("RAMBanks=%d RAMBytes=%d, want 4 / 32768", h.RAMBanks, h.RAMBytes)
	}
	if h.Variant != VariantMBC3 || !h.HasBattery || h.HasRTC {
		t.Errorf("variant classification = (%v, %v, %v), want (MBC3, true, false)", h.Variant, h.HasBattery, h.HasRTC)
	}
}

func TestTrimTitleStopsAtNUL(t *testing.T) {
	rom := make([]byte, 0x8000)
	copy(rom[0x134:], "POKEMON\x00\x00\x00")
	h, err := parseHeader(rom)
	if err != nil {
		t.Fatal(err)
	}
	if h.Title != "POKEMON" {
		t.Errorf("Title = %q, want %q", h.Title, "POKEMON")
	}
}

func TestComputedHeaderChecksumMatchesStoredValue(t *testing.T) {
	rom := make([]byte, 0x8000)
	copy(rom[0x134:], "TESTROM")
	rom[0x14D] = ComputedHeaderChecksum(rom)
	if ComputedHeaderChecksum(rom) != rom[0x14D] {
		t.Error("checksum should be stable across repeated computation")
	}
}
