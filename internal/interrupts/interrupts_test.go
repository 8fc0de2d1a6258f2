package interrupts

import "testing"

func TestRequestAndClear(t *testing.T) {
	c := New()
	c.Request(Timer)
	if c.Flag&0x04 == 0 {
		t.Fatal("Request should set the IF bit")
	}
	c.Clear(Timer)
	if c.Flag&0x04 != 0 {
		t.Error("Clear should clear the IF bit")
	}
}

func TestPendingRequiresBothEnableAndFlag(t *testing.T) {
	c := New()
	c.Request(VBlank)
	if c.HasPending() {
		t.Error("requested-but-not-enabled interrupt should not be pending")
	}
	c.Enable = 1 << VBlank
	if !c.HasPending() {
		t.Error("enabled and requested interrupt should be pending")
	}
}

func TestLowestReturnsLowestNumberedBit(t *testing.T) {
	c := New()
	c.Enable = 0xFF
	c.Request(Serial)
	c.Request(VBlank)
	bit, vector := c.Lowest()
	if bit != VBlank || vector != VBlankVector {
		t.Errorf("Lowest() = (%d, %#04x), want (VBlank, VBlankVector)", bit, vector)
	}
}

func TestIFReadForcesUpperBitsHigh(t *testing.T) {
	c := New()
	c.Write(FlagAddress, 0x00)
	if got := c.Read(FlagAddress); got&0xE0 != 0xE0 {
		t.Errorf("IF read = %#02x, want upper 3 bits set", got)
	}
}

func TestIEWriteRoundTrip(t *testing.T) {
	c := New()
	c.Write(EnableAddress, 0x1F)
	if got := c.Read(EnableAddress); got != 0x1F {
		t.Errorf("IE = %#02x, want 0x1F", got)
	}
}
