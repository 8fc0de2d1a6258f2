package cpu

import "github.com/thelolagemann/gbcore/internal/registers"

// execute decodes and runs the instruction starting with opcode, returning
// its total machine-cycle cost. The unprefixed table is a flat bit-pattern
// dispatch over opcode's x/y/z fields (bits 7-6, 5-3, 2-0) rather than a
// per-opcode closure table: the Sharp LR35902 table is regular enough in
// these fields that decoding reduces to table lookups keyed by a handful
// of bit groups, plus special cases for the handful of slots that don't
// follow the pattern.
func (c *CPU) execute(opcode uint8) (uint8, error) {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.executeX0(opcode, y, z, p, q)
	case 1:
		return c.executeX1(y, z)
	case 2:
		return c.executeX2(y, z)
	default:
		return c.executeX3(opcode, y, z, p, q)
	}
}

var rpTable = [4]registers.R16{registers.RBC, registers.RDE, registers.RHL, registers.RSPorAF}
var rp2Table = [4]registers.R16{registers.RBC, registers.RDE, registers.RHL, registers.RSPorAF}

// cc evaluates one of the four branch conditions NZ,Z,NC,C selected by a
// 0-3 index, as used by both JR/JP/CALL/RET and their table positions.
func (c *CPU) cc(index uint8) bool {
	switch index {
	case 0:
		return !c.Reg.Zero()
	case 1:
		return c.Reg.Zero()
	case 2:
		return !c.Reg.Carry()
	default:
		return c.Reg.Carry()
	}
}

func (c *CPU) get8(z uint8) uint8 {
	if z == 6 {
		return c.bus.Read(c.Reg.HL())
	}
	return c.Reg.Get(registers.R8(z))
}

func (c *CPU) set8(z uint8, v uint8) {
	if z == 6 {
		c.bus.Write(c.Reg.HL(), v)
		return
	}
	c.Reg.Set(registers.R8(z), v)
}

func (c *CPU) executeX0(opcode uint8, y, z, p, q uint8) (uint8, error) {
	switch z {
	case 0:
		switch {
		case y == 0:
			return 1, nil // NOP
		case y == 1:
			addr := c.fetch16()
			lo, hi := uint8(c.Reg.SP), uint8(c.Reg.SP>>8)
			c.bus.Write(addr, lo)
			c.bus.Write(addr+1, hi)
			return 5, nil
		case y == 2:
			c.fetch() // STOP's second byte, conventionally 0x00
			c.mode = Stopped
			return 1, nil
		case y == 3:
			e := int8(c.fetch())
			c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
			return 3, nil
		default: // y = 4..7: JR cc,e8
			e := int8(c.fetch())
			if !c.cc(y - 4) {
				return 2, nil
			}
			c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
			return 3, nil
		}
	case 1:
		rp := rpTable[p]
		if q == 0 {
			c.Reg.SetSP(rp, c.fetch16())
			return 3, nil
		}
		hl := c.Reg.HL()
		operand := c.Reg.GetSP(rp)
		sum := uint32(hl) + uint32(operand)
		c.Reg.Apply(registers.Effect{
			N: registers.Clear,
			H: halfCarryAdd16(hl, operand),
			C: carryAdd16(uint32(hl), uint32(operand)),
		})
		c.Reg.SetHL(uint16(sum))
		return 2, nil
	case 2:
		var addr uint16
		switch p {
		case 0:
			addr = c.Reg.BC()
		case 1:
			addr = c.Reg.DE()
		case 2:
			addr = c.Reg.HL()
			c.Reg.SetHL(addr + 1)
		case 3:
			addr = c.Reg.HL()
			c.Reg.SetHL(addr - 1)
		}
		if q == 0 {
			c.bus.Write(addr, c.Reg.A)
		} else {
			c.Reg.A = c.bus.Read(addr)
		}
		return 2, nil
	case 3:
		rp := rpTable[p]
		v := c.Reg.GetSP(rp)
		if q == 0 {
			c.Reg.SetSP(rp, v+1)
		} else {
			c.Reg.SetSP(rp, v-1)
		}
		return 2, nil
	case 4:
		v := c.get8(y)
		result := v + 1
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Clear, H: halfCarryAdd8(v, 1)})
		c.set8(y, result)
		if y == 6 {
			return 3, nil
		}
		return 1, nil
	case 5:
		v := c.get8(y)
		result := v - 1
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Set, H: halfBorrowSub8(v, 1)})
		c.set8(y, result)
		if y == 6 {
			return 3, nil
		}
		return 1, nil
	case 6:
		v := c.fetch()
		c.set8(y, v)
		if y == 6 {
			return 3, nil
		}
		return 2, nil
	default: // z == 7
		return c.executeRotAcc(y), nil
	}
}

func (c *CPU) executeRotAcc(y uint8) uint8 {
	switch y {
	case 0: // RLCA
		v := c.Reg.A
		carry := v&0x80 != 0
		c.Reg.A = v<<1 | v>>7
		c.Reg.Apply(registers.Effect{Z: registers.Clear, N: registers.Clear, H: registers.Clear, C: registers.FromBool(carry)})
	case 1: // RRCA
		v := c.Reg.A
		carry := v&0x01 != 0
		c.Reg.A = v>>1 | v<<7
		c.Reg.Apply(registers.Effect{Z: registers.Clear, N: registers.Clear, H: registers.Clear, C: registers.FromBool(carry)})
	case 2: // RLA
		v := c.Reg.A
		var oldCarry uint8
		if c.Reg.Carry() {
			oldCarry = 1
		}
		carry := v&0x80 != 0
		c.Reg.A = v<<1 | oldCarry
		c.Reg.Apply(registers.Effect{Z: registers.Clear, N: registers.Clear, H: registers.Clear, C: registers.FromBool(carry)})
	case 3: // RRA
		v := c.Reg.A
		var oldCarry uint8
		if c.Reg.Carry() {
			oldCarry = 0x80
		}
		carry := v&0x01 != 0
		c.Reg.A = v>>1 | oldCarry
		c.Reg.Apply(registers.Effect{Z: registers.Clear, N: registers.Clear, H: registers.Clear, C: registers.FromBool(carry)})
	case 4: // DAA
		result, carry := daa(c.Reg.A, c.Reg.Subtract(), c.Reg.HalfCarry(), c.Reg.Carry())
		c.Reg.A = result
		c.Reg.Apply(registers.Effect{Z: zero(result), H: registers.Clear, C: carry})
	case 5: // CPL
		c.Reg.A = ^c.Reg.A
		c.Reg.Apply(registers.Effect{N: registers.Set, H: registers.Set})
	case 6: // SCF
		c.Reg.Apply(registers.Effect{N: registers.Clear, H: registers.Clear, C: registers.Set})
	case 7: // CCF
		c.Reg.Apply(registers.Effect{N: registers.Clear, H: registers.Clear, C: registers.FromBool(!c.Reg.Carry())})
	}
	return 1
}

func (c *CPU) executeX1(y, z uint8) (uint8, error) {
	if y == 6 && z == 6 {
		c.halt()
		return 1, nil
	}
	v := c.get8(z)
	c.set8(y, v)
	if y == 6 || z == 6 {
		return 2, nil
	}
	return 1, nil
}

func (c *CPU) executeX2(y, z uint8) (uint8, error) {
	v := c.get8(z)
	c.alu(y, v)
	if z == 6 {
		return 2, nil
	}
	return 1, nil
}

// alu applies the ALU operation selected by y (ADD,ADC,SUB,SBC,AND,XOR,OR,CP)
// to A and the given operand.
func (c *CPU) alu(y uint8, v uint8) {
	a := c.Reg.A
	switch y {
	case 0: // ADD
		result := a + v
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Clear, H: halfCarryAdd8(a, v), C: carryAdd8(uint16(a), uint16(v))})
		c.Reg.A = result
	case 1: // ADC
		var carry uint8
		if c.Reg.Carry() {
			carry = 1
		}
		result := a + v + carry
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Clear, H: halfCarryAdd8c(a, v, carry), C: carryAdd8c(uint16(a), uint16(v), uint16(carry))})
		c.Reg.A = result
	case 2: // SUB
		result := a - v
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Set, H: halfBorrowSub8(a, v), C: borrowSub8(a, v)})
		c.Reg.A = result
	case 3: // SBC
		var carry uint8
		if c.Reg.Carry() {
			carry = 1
		}
		result := a - v - carry
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Set, H: halfBorrowSub8c(a, v, carry), C: borrowSub8c(a, v, carry)})
		c.Reg.A = result
	case 4: // AND
		result := a & v
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Clear, H: registers.Set, C: registers.Clear})
		c.Reg.A = result
	case 5: // XOR
		result := a ^ v
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Clear, H: registers.Clear, C: registers.Clear})
		c.Reg.A = result
	case 6: // OR
		result := a | v
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Clear, H: registers.Clear, C: registers.Clear})
		c.Reg.A = result
	case 7: // CP
		result := a - v
		c.Reg.Apply(registers.Effect{Z: zero(result), N: registers.Set, H: halfBorrowSub8(a, v), C: borrowSub8(a, v)})
	}
}

func (c *CPU) executeX3(opcode, y, z, p, q uint8) (uint8, error) {
	switch z {
	case 0:
		switch {
		case y <= 3:
			if !c.cc(y) {
				return 2, nil
			}
			c.Reg.PC = c.pop16()
			return 5, nil
		case y == 4:
			addr := 0xFF00 + uint16(c.fetch())
			c.bus.Write(addr, c.Reg.A)
			return 3, nil
		case y == 5:
			e := int8(c.fetch())
			result, h, cy := addSPSigned(c.Reg.SP, e)
			c.Reg.Apply(registers.Effect{Z: registers.Clear, N: registers.Clear, H: h, C: cy})
			c.Reg.SP = result
			return 4, nil
		case y == 6:
			addr := 0xFF00 + uint16(c.fetch())
			c.Reg.A = c.bus.Read(addr)
			return 3, nil
		default: // y == 7
			e := int8(c.fetch())
			result, h, cy := addSPSigned(c.Reg.SP, e)
			c.Reg.Apply(registers.Effect{Z: registers.Clear, N: registers.Clear, H: h, C: cy})
			c.Reg.SetHL(result)
			return 3, nil
		}
	case 1:
		if q == 0 {
			c.Reg.SetPairAF(rp2Table[p], c.pop16())
			return 3, nil
		}
		switch p {
		case 0:
			c.Reg.PC = c.pop16()
			return 4, nil
		case 1:
			c.Reg.PC = c.pop16()
			c.irq.IME = true
			return 4, nil
		case 2:
			c.Reg.PC = c.Reg.HL()
			return 1, nil
		default:
			c.Reg.SP = c.Reg.HL()
			return 2, nil
		}
	case 2:
		switch {
		case y <= 3:
			addr := c.fetch16()
			if !c.cc(y) {
				return 3, nil
			}
			c.Reg.PC = addr
			return 4, nil
		case y == 4:
			c.bus.Write(0xFF00+uint16(c.Reg.C), c.Reg.A)
			return 2, nil
		case y == 5:
			addr := c.fetch16()
			c.bus.Write(addr, c.Reg.A)
			return 4, nil
		case y == 6:
			c.Reg.A = c.bus.Read(0xFF00 + uint16(c.Reg.C))
			return 2, nil
		default:
			addr := c.fetch16()
			c.Reg.A = c.bus.Read(addr)
			return 4, nil
		}
	case 3:
		switch y {
		case 0:
			c.Reg.PC = c.fetch16()
			return 4, nil
		case 1:
			return c.executeCB()
		case 6:
			c.irq.IME = false
			return 1, nil
		case 7:
			c.eiPending = true
			return 1, nil
		default: // y = 2,3,4,5: the four illegal opcodes in this column
			return 0, illegalOpcode(opcode)
		}
	case 4:
		if y > 3 {
			return 0, illegalOpcode(opcode)
		}
		addr := c.fetch16()
		if !c.cc(y) {
			return 3, nil
		}
		c.push16(c.Reg.PC)
		c.Reg.PC = addr
		return 6, nil
	case 5:
		if q == 0 {
			c.push16(c.Reg.GetAF(rp2Table[p]))
			return 4, nil
		}
		if p == 0 {
			addr := c.fetch16()
			c.push16(c.Reg.PC)
			c.Reg.PC = addr
			return 6, nil
		}
		return 0, illegalOpcode(opcode) // p = 1,2,3: 0xDD, 0xED, 0xFD
	case 6:
		v := c.fetch()
		c.alu(y, v)
		return 2, nil
	default: // z == 7: RST
		c.push16(c.Reg.PC)
		c.Reg.PC = uint16(y) * 8
		return 4, nil
	}
}
