package cpu

import (
	"testing"

	"github.com/thelolagemann/gbcore/internal/interrupts"
)

// flatBus is a 64KiB byte array satisfying the Bus interface, used so
// these tests can assemble an instruction stream directly instead of
// going through cartridge/bus address decoding.
type flatBus struct {
	mem [0x10000]byte
}

func (b *flatBus) Read(address uint16) uint8  { return b.mem[address] }
func (b *flatBus) Write(address uint16, v uint8) { b.mem[address] = v }

func (b *flatBus) load(addr uint16, bytes ...uint8) {
	copy(b.mem[addr:], bytes)
}

func newTestCPU() (*CPU, *flatBus) {
	bus := &flatBus{}
	irq := interrupts.New()
	return New(bus, irq), bus
}

// S1: LD A,0x42 ; LDH [0xFF80],A ; LDH A,[0xFF80]
func TestLDHRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0x3E, 0x42, 0xE0, 0x80, 0xF0, 0x80)

	var total uint8
	for i := 0; i < 3; i++ {
		cycles, err := c.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		total += cycles
	}

	if c.Reg.A != 0x42 {
		t.Errorf("A = %#02x, want 0x42", c.Reg.A)
	}
	if got := bus.Read(0xFF80); got != 0x42 {
		t.Errorf("memory[0xFF80] = %#02x, want 0x42", got)
	}
	if c.Reg.PC != 0x0106 {
		t.Errorf("PC = %#04x, want 0x0106", c.Reg.PC)
	}
	if total != 8 {
		t.Errorf("total cycles = %d, want 8", total)
	}
}

// S2: CALL 0x0150 ; (at 0x0150) RET
func TestCallRetRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.SP = 0xFFFE
	bus.load(0x0100, 0xCD, 0x50, 0x01)
	bus.load(0x0150, 0xC9)

	if _, err := c.Step(); err != nil {
		t.Fatalf("call step: %v", err)
	}
	if c.Reg.SP != 0xFFFC {
		t.Errorf("after CALL, SP = %#04x, want 0xFFFC", c.Reg.SP)
	}
	if got := bus.Read(0xFFFD); got != 0x01 {
		t.Errorf("memory[0xFFFD] = %#02x, want 0x01", got)
	}
	if got := bus.Read(0xFFFC); got != 0x03 {
		t.Errorf("memory[0xFFFC] = %#02x, want 0x03", got)
	}
	if c.Reg.PC != 0x0150 {
		t.Errorf("after CALL, PC = %#04x, want 0x0150", c.Reg.PC)
	}

	if _, err := c.Step(); err != nil {
		t.Fatalf("ret step: %v", err)
	}
	if c.Reg.SP != 0xFFFE {
		t.Errorf("after RET, SP = %#04x, want 0xFFFE", c.Reg.SP)
	}
	if c.Reg.PC != 0x0103 {
		t.Errorf("after RET, PC = %#04x, want 0x0103", c.Reg.PC)
	}
}

// S3: ADD HL,BC flags
func TestAddHLBCFlags(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.SetHL(0x0FFF)
	c.Reg.SetBC(0x0001)
	c.Reg.SetF(0b11110000)
	bus.load(0x0100, 0x09) // ADD HL,BC

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.Reg.HL() != 0x1000 {
		t.Errorf("HL = %#04x, want 0x1000", c.Reg.HL())
	}
	if !c.Reg.Zero() {
		t.Error("Z flag should remain set")
	}
	if c.Reg.Subtract() {
		t.Error("N flag should be clear")
	}
	if !c.Reg.HalfCarry() {
		t.Error("H flag should be set")
	}
	if c.Reg.Carry() {
		t.Error("C flag should be clear")
	}
}

// S4: ADD SP,e8 flag corner
func TestAddSPSignedFlagCorner(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.SP = 0x00FF
	bus.load(0x0100, 0xE8, 0x01) // ADD SP,+1

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.Reg.SP != 0x0100 {
		t.Errorf("SP = %#04x, want 0x0100", c.Reg.SP)
	}
	if c.Reg.Zero() || c.Reg.Subtract() {
		t.Error("Z and N must both be clear after ADD SP,e8")
	}
	if !c.Reg.HalfCarry() || !c.Reg.Carry() {
		t.Error("H and C should both be set for 0x00FF + 0x01")
	}
}

// S5: interrupt service
func TestInterruptService(t *testing.T) {
	c, bus := newTestCPU()
	c.irq.IME = true
	c.irq.Enable = 0x01
	c.irq.Flag = 0x01
	c.Reg.PC = 0x1234
	c.Reg.SP = 0xFFFE

	cycles, err := c.Step()
	if err != nil {
		t.Fatal(err)
	}
	if c.irq.IME {
		t.Error("IME should be cleared on interrupt dispatch")
	}
	if c.Reg.SP != 0xFFFC {
		t.Errorf("SP = %#04x, want 0xFFFC", c.Reg.SP)
	}
	if got := bus.Read(0xFFFD); got != 0x12 {
		t.Errorf("memory[0xFFFD] = %#02x, want 0x12", got)
	}
	if got := bus.Read(0xFFFC); got != 0x34 {
		t.Errorf("memory[0xFFFC] = %#02x, want 0x34", got)
	}
	if c.Reg.PC != interrupts.VBlankVector {
		t.Errorf("PC = %#04x, want VBlank vector %#04x", c.Reg.PC, interrupts.VBlankVector)
	}
	if c.irq.Flag != 0 {
		t.Errorf("IF = %#02x, want 0", c.irq.Flag)
	}
	if cycles != 5 {
		t.Errorf("cycles = %d, want 5", cycles)
	}
}

func TestDAAIdempotentOnZero(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.A = 0x00
	c.Reg.SetF(0)
	bus.load(0x0100, 0x27) // DAA

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.Reg.A != 0x00 {
		t.Errorf("A = %#02x, want 0x00", c.Reg.A)
	}
	if !c.Reg.Zero() {
		t.Error("Z should be set for DAA of zero")
	}
}

func TestDAAAfterBCDAdd(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	c.Reg.A = 0x45
	c.Reg.B = 0x38
	bus.load(0x0100, 0x80, 0x27) // ADD A,B ; DAA

	for i := 0; i < 2; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	// 0x45 + 0x38 = 0x7D binary, which as BCD should correct to 0x83.
	if c.Reg.A != 0x83 {
		t.Errorf("A = %#02x, want 0x83", c.Reg.A)
	}
}

func TestIllegalOpcode(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0xD3)

	if _, err := c.Step(); err == nil {
		t.Fatal("expected an error for illegal opcode 0xD3")
	}
}

func TestHaltWakesOnPendingInterrupt(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0x76, 0x00) // HALT ; NOP
	c.irq.IME = false

	if _, err := c.Step(); err != nil { // executes HALT, enters Halted mode
		t.Fatal(err)
	}
	if c.mode != Halted {
		t.Fatalf("expected Halted mode, got %v", c.mode)
	}

	c.irq.Enable = 0x01
	c.irq.Flag = 0x01 // interrupt pending but IME still false

	if _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if c.mode != Running {
		t.Error("CPU should wake from HALT once an interrupt is pending, even with IME clear")
	}
}

func TestEIDelaysEnableByOneInstruction(t *testing.T) {
	c, bus := newTestCPU()
	c.Reg.PC = 0x0100
	bus.load(0x0100, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP
	c.irq.Enable = 0x01
	c.irq.Flag = 0x01 // already pending before EI runs

	if _, err := c.Step(); err != nil { // EI itself
		t.Fatal(err)
	}
	if c.irq.IME {
		t.Error("IME must not take effect until after the instruction following EI")
	}

	if _, err := c.Step(); err != nil { // the NOP immediately after EI: IME takes effect here, too late to be serviced this step
		t.Fatal(err)
	}
	if c.Reg.PC == interrupts.VBlankVector {
		t.Error("the instruction right after EI must still execute before any interrupt is serviced")
	}
	if !c.irq.IME {
		t.Error("IME should be active once the instruction following EI has executed")
	}

	if _, err := c.Step(); err != nil { // first step where IME was already true at fetch time: now it vectors
		t.Fatal(err)
	}
	if c.Reg.PC != interrupts.VBlankVector {
		t.Error("pending interrupt should be serviced on the step after EI's delay instruction completes")
	}
}
