package cpu

import "github.com/thelolagemann/gbcore/internal/registers"

// executeCB decodes and runs a CB-prefixed instruction. Its x/y/z fields
// follow the same layout as the unprefixed table: x selects the
// rotate/BIT/RES/SET group, y selects the rotation kind or bit index, and
// z selects the operand register (or (HL) at index 6).
func (c *CPU) executeCB() (uint8, error) {
	opcode := c.fetch()
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7

	switch x {
	case 0:
		v := c.get8(z)
		result, carry := c.rotate(y, v)
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Clear, H: registers.Clear, C: carry})
		c.set8(z, result)
		if z == 6 {
			return 4, nil
		}
		return 2, nil
	case 1:
		v := c.get8(z)
		bitSet := v&(1<<y) != 0
		c.Reg.Apply(registers.Effect{Z: registers.FromBool(!bitSet), N: registers.Clear, H: registers.Set})
		if z == 6 {
			return 3, nil
		}
		return 2, nil
	case 2:
		v := c.get8(z)
		c.set8(z, v&^(1<<y))
		if z == 6 {
			return 4, nil
		}
		return 2, nil
	default: // x == 3: SET
		v := c.get8(z)
		c.set8(z, v|(1<<y))
		if z == 6 {
			return 4, nil
		}
		return 2, nil
	}
}

// rotate applies the rotate/shift operation selected by y (RLC,RRC,RL,RR,
// SLA,SRA,SWAP,SRL) to v, returning the result and the carry-out. RL/RR
// read the incoming carry flag, which is why this is a CPU method rather
// than a pure function like the unprefixed table's ALU helpers.
func (c *CPU) rotate(y uint8, v uint8) (result uint8, carry registers.State) {
	switch y {
	case 0: // RLC
		out := v&0x80 != 0
		return v<<1 | v>>7, registers.FromBool(out)
	case 1: // RRC
		out := v&0x01 != 0
		return v>>1 | v<<7, registers.FromBool(out)
	case 2: // RL
		var in uint8
		if c.Reg.Carry() {
			in = 1
		}
		out := v&0x80 != 0
		return v<<1 | in, registers.FromBool(out)
	case 3: // RR
		var in uint8
		if c.Reg.Carry() {
			in = 0x80
		}
		out := v&0x01 != 0
		return v>>1 | in, registers.FromBool(out)
	case 4: // SLA
		out := v&0x80 != 0
		return v << 1, registers.FromBool(out)
	case 5: // SRA
		out := v&0x01 != 0
		return v&0x80 | v>>1, registers.FromBool(out)
	case 6: // SWAP
		return v<<4 | v>>4, registers.Clear
	default: // SRL
		out := v&0x01 != 0
		return v >> 1, registers.FromBool(out)
	}
}
