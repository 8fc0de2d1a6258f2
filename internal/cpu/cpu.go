// Package cpu implements the Sharp LR35902 instruction interpreter: opcode
// fetch/decode/execute, the HALT/STOP/HALT-bug CPU modes, and interrupt
// servicing. Instructions never set F bits one by one; each builds a flag
// Effect and commits it through the register file's Apply. PC advances as
// the opcode and its operand bytes are fetched, and jumps, calls, returns
// and RSTs write PC directly inside the instruction; no separate
// advance-or-jump result is returned to the step loop.
package cpu

import (
	"github.com/thelolagemann/gbcore/internal/coreerr"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/registers"
)

// Bus is the memory-mapped address space an instruction reads and writes
// through. The CPU package depends only on this interface, never on the
// concrete bus implementation, so it can be tested against a flat byte
// array.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Mode is the CPU's current execution mode.
type Mode int

const (
	Running Mode = iota
	Halted
	Stopped
)

// CPU is the Sharp LR35902 interpreter: a register file, the bus it
// executes against, and the handful of mode flags real hardware tracks
// around HALT and interrupt dispatch.
type CPU struct {
	Reg registers.File
	bus Bus
	irq *interrupts.Controller

	mode Mode

	// haltBug is set when HALT is executed with IME=0 and an interrupt is
	// already pending: real hardware fails to increment PC across the next
	// fetch, so the byte after HALT is read twice.
	haltBug bool

	// eiPending is set by EI; the next Step sets IME only after its own
	// interrupt check, so the instruction following EI always executes
	// before an interrupt can be serviced.
	eiPending bool
}

// New returns a new CPU wired to the given bus and interrupt controller.
func New(bus Bus, irq *interrupts.Controller) *CPU {
	return &CPU{bus: bus, irq: irq}
}

// Mode reports the CPU's current execution mode.
func (c *CPU) Mode() Mode { return c.mode }

// Step executes one instruction (or, while halted, advances one machine
// cycle without executing one) and returns the number of machine cycles it
// took. Interrupt servicing happens here too, ahead of instruction fetch,
// exactly as real hardware decides whether to vector before decoding the
// next opcode.
func (c *CPU) Step() (uint8, error) {
	if serviced, cycles := c.serviceInterrupt(); serviced {
		return cycles, nil
	}

	if c.mode == Halted {
		if c.irq.HasPending() {
			c.mode = Running
		} else {
			return 1, nil
		}
	}

	if c.eiPending {
		c.eiPending = false
		c.irq.IME = true
	}

	opcode := c.fetch()
	return c.execute(opcode)
}

// serviceInterrupt vectors to the lowest-numbered pending interrupt if
// IME is set, clearing IME, the serviced IF bit, and pushing PC the way a
// hardware CALL to the vector would. It takes 5 machine cycles, matching
// real hardware's two internal delay cycles plus the push and jump.
func (c *CPU) serviceInterrupt() (bool, uint8) {
	if !c.irq.IME || !c.irq.HasPending() {
		return false, 0
	}
	bit, vector := c.irq.Lowest()
	c.irq.IME = false
	c.irq.Clear(bit)
	c.mode = Running
	c.push16(c.Reg.PC)
	c.Reg.PC = vector
	return true, 5
}

// fetch reads the byte at PC and advances it, honoring the HALT bug's
// one-time failure to advance.
func (c *CPU) fetch() uint8 {
	b := c.bus.Read(c.Reg.PC)
	if c.haltBug {
		c.haltBug = false
	} else {
		c.Reg.PC++
	}
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push16(v uint16) {
	c.Reg.SP--
	c.bus.Write(c.Reg.SP, uint8(v>>8))
	c.Reg.SP--
	c.bus.Write(c.Reg.SP, uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.bus.Read(c.Reg.SP)
	c.Reg.SP++
	hi := c.bus.Read(c.Reg.SP)
	c.Reg.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// halt enters HALT mode, reproducing the documented HALT-bug condition:
// if IME is clear and an interrupt is already pending at the moment HALT
// executes, the CPU fails to enter HALT and instead corrupts the next
// fetch by not advancing PC.
func (c *CPU) halt() {
	if !c.irq.IME && c.irq.HasPending() {
		c.haltBug = true
		return
	}
	c.mode = Halted
}

// illegalOpcode reports that the decoder fetched one of the eleven
// officially undefined opcode bytes. Real hardware locks up permanently on
// these; this core surfaces it as a fatal error instead.
func illegalOpcode(b uint8) error {
	return coreerr.New(coreerr.IllegalOpcode, "opcode %#02x is undefined", b)
}
