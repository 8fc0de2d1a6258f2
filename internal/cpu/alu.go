package cpu

import "github.com/thelolagemann/gbcore/internal/registers"

// Pure flag-computation helpers, kept separate from register storage so
// every instruction's Effect can be built from an explicit formula instead
// of inline bit-fiddling against F.

func zero(v uint8) registers.State {
	return registers.FromBool(v == 0)
}

func halfCarryAdd8(a, b uint8) registers.State {
	return registers.FromBool((a&0x0F)+(b&0x0F) > 0x0F)
}

// halfCarryAdd8c is halfCarryAdd8 with an incoming carry, for ADC.
func halfCarryAdd8c(a, b, carry uint8) registers.State {
	return registers.FromBool((a&0x0F)+(b&0x0F)+carry > 0x0F)
}

func carryAdd8(a, b uint16) registers.State {
	return registers.FromBool(a+b > 0xFF)
}

func carryAdd8c(a, b, carry uint16) registers.State {
	return registers.FromBool(a+b+carry > 0xFF)
}

func halfBorrowSub8(a, b uint8) registers.State {
	return registers.FromBool(a&0x0F < b&0x0F)
}

func halfBorrowSub8c(a, b, carry uint8) registers.State {
	return registers.FromBool(int(a&0x0F)-int(b&0x0F)-int(carry) < 0)
}

func borrowSub8(a, b uint8) registers.State {
	return registers.FromBool(a < b)
}

func borrowSub8c(a, b, carry uint8) registers.State {
	return registers.FromBool(int(a)-int(b)-int(carry) < 0)
}

func halfCarryAdd16(a, b uint16) registers.State {
	return registers.FromBool((a&0x0FFF)+(b&0x0FFF) > 0x0FFF)
}

func carryAdd16(a, b uint32) registers.State {
	return registers.FromBool(a+b > 0xFFFF)
}

// addSPSigned computes SP + a signed 8-bit displacement and the half-carry
// and carry flags per the unusual rule §4.1 gives for ADD SP,e8 and
// LD HL,SP+e8: both flags are computed as if adding the unsigned byte to
// the low 8 bits of SP, regardless of the displacement's sign.
func addSPSigned(sp uint16, e int8) (result uint16, h, c registers.State) {
	result = uint16(int32(sp) + int32(e))
	low := uint8(sp)
	ub := uint8(e)
	h = halfCarryAdd8(low, ub)
	c = carryAdd8(uint16(low), uint16(ub))
	return result, h, c
}

// daa computes the BCD-correction adjustment for the A register after an
// 8-bit add or subtract, following the standard post-ALU correction table
// keyed by the N, H and C flags left over from that operation.
func daa(a uint8, n, h, c bool) (result uint8, carryOut registers.State) {
	adjust := uint8(0)
	carry := c
	if n {
		if h {
			adjust += 0x06
		}
		if c {
			adjust += 0x60
		}
		result = a - adjust
	} else {
		if h || a&0x0F > 0x09 {
			adjust += 0x06
		}
		if c || a > 0x99 {
			adjust += 0x60
			carry = true
		}
		result = a + adjust
	}
	return result, registers.FromBool(carry)
}
