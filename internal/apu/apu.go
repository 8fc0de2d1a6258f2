// Package apu provides register-level passthrough storage for the Game
// Boy's four sound channels (NR10-NR52) and wave RAM. No channel
// synthesis, mixing, or audio output is implemented here: registers read
// back what was last written (with each register's documented read-only
// bits forced), which is enough for a ROM's audio driver to run without
// a real audio backend watching.
package apu

// Controller is the APU's register file.
type Controller struct {
	regs [0x17]uint8 // NR10 (0xFF10) through NR52 (0xFF26)
	wave [0x10]uint8 // FF30-FF3F wave pattern RAM

	enabled bool
}

// New returns a new APU controller with all registers zeroed.
func New() *Controller {
	return &Controller{}
}

// readMasks forces the bits each NRxx register always reads back as 1,
// per the documented register map; this core never clears them itself
// since nothing here drives channel status bits 0-3 of NR52.
var readMasks = map[uint16]uint8{
	0xFF10: 0x80,
	0xFF11: 0x3F,
	0xFF13: 0xFF,
	0xFF14: 0xBF,
	0xFF16: 0x3F,
	0xFF19: 0xBF,
	0xFF1A: 0x7F,
	0xFF1B: 0xFF,
	0xFF1C: 0x9F,
	0xFF1E: 0xBF,
	0xFF20: 0xFF,
	0xFF23: 0xBF,
	0xFF26: 0x70,
}

// Read returns the value of the register at the given address.
func (c *Controller) Read(address uint16) uint8 {
	if address >= 0xFF30 && address <= 0xFF3F {
		return c.wave[address-0xFF30]
	}
	if address < 0xFF10 || address > 0xFF26 {
		return 0xFF
	}
	v := c.regs[address-0xFF10] | readMasks[address]
	if address == 0xFF26 {
		v = v&0xF0 | boolToBit(c.enabled)<<7
	}
	return v
}

// Write writes the given value to the register at the given address.
// Writing 0 to NR52 (0xFF26) powers the APU off, which on real hardware
// also clears every other sound register; this core models that reset
// without modeling what powering back on does to channel phase.
func (c *Controller) Write(address uint16, value uint8) {
	if address >= 0xFF30 && address <= 0xFF3F {
		c.wave[address-0xFF30] = value
		return
	}
	if address < 0xFF10 || address > 0xFF26 {
		return
	}
	if address == 0xFF26 {
		c.enabled = value&0x80 != 0
		if !c.enabled {
			for i := range c.regs {
				c.regs[i] = 0
			}
		}
		return
	}
	if !c.enabled {
		return
	}
	c.regs[address-0xFF10] = value
}

func boolToBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
