// Package registers holds the CPU register file: the eight 8-bit
// registers, the SP/PC 16-bit registers, the four AF/BC/DE/HL pairs, and
// the flag-bit types used to describe and apply an instruction's effect on
// F. The interrupt master enable flag is not held here.
//
// Flag storage and flag computation are kept separate: the CPU's ALU
// helpers are pure functions over operands, and instructions build an
// Effect value describing what happens to each flag and commit it with
// Apply rather than setting F bits one by one. This lets tests assert the exact effect of an operation and
// keeps the flag-assignment rules for every opcode group in one place.
package registers

import "github.com/thelolagemann/gbcore/pkg/bits"

// Register is an 8-bit CPU register.
type Register = uint8

// Flag identifies one of the four flag bits held in F.
type Flag uint8

const (
	FlagZero Flag = 1 << iota
	FlagSubtract
	FlagHalfCarry
	FlagCarry
)

const (
	bitZero      = 7
	bitSubtract  = 6
	bitHalfCarry = 5
	bitCarry     = 4
)

// State is the effect an operation has on a single flag bit: either it
// assigns the bit a concrete value, or it leaves the bit untouched.
type State uint8

const (
	// Unchanged leaves the flag bit as it was.
	Unchanged State = iota
	// Clear sets the flag bit to 0.
	Clear
	// Set sets the flag bit to 1.
	Set
)

// FromBool converts a boolean result into a definite (Set or Clear) State.
func FromBool(v bool) State {
	if v {
		return Set
	}
	return Clear
}

// Effect is the four-field partial flag write every instruction returns.
// Each field independently assigns or leaves its flag bit.
type Effect struct {
	Z, N, H, C State
}

// NoEffect leaves every flag untouched.
var NoEffect = Effect{}

// File is the Game Boy CPU register file. IME lives on the interrupt
// controller, not here: it is interrupt-servicing state, not a register
// any opcode addresses directly.
type File struct {
	A, F   Register
	B, C   Register
	D, E   Register
	H, L   Register
	SP, PC uint16
}

// AF returns the AF register pair.
func (f *File) AF() uint16 { return bits.Join(f.A, f.F) }

// SetAF writes the AF register pair; the low nibble of F is always masked
// to zero regardless of what was written.
func (f *File) SetAF(v uint16) {
	f.A = bits.High(v)
	f.F = bits.Low(v) & 0xF0
}

// BC returns the BC register pair.
func (f *File) BC() uint16 { return bits.Join(f.B, f.C) }

// SetBC writes the BC register pair.
func (f *File) SetBC(v uint16) {
	f.B = bits.High(v)
	f.C = bits.Low(v)
}

// DE returns the DE register pair.
func (f *File) DE() uint16 { return bits.Join(f.D, f.E) }

// SetDE writes the DE register pair.
func (f *File) SetDE(v uint16) {
	f.D = bits.High(v)
	f.E = bits.Low(v)
}

// HL returns the HL register pair.
func (f *File) HL() uint16 { return bits.Join(f.H, f.L) }

// SetHL writes the HL register pair.
func (f *File) SetHL(v uint16) {
	f.H = bits.High(v)
	f.L = bits.Low(v)
}

// SetF writes the F register directly, masking the low nibble to zero.
func (f *File) SetF(v uint8) {
	f.F = v & 0xF0
}

// Zero reports whether the Z flag is set.
func (f *File) Zero() bool { return bits.Test(f.F, bitZero) }

// Subtract reports whether the N flag is set.
func (f *File) Subtract() bool { return bits.Test(f.F, bitSubtract) }

// HalfCarry reports whether the H flag is set.
func (f *File) HalfCarry() bool { return bits.Test(f.F, bitHalfCarry) }

// Carry reports whether the C flag is set.
func (f *File) Carry() bool { return bits.Test(f.F, bitCarry) }

// Apply commits a flag Effect to F, masking the low nibble to zero.
func (f *File) Apply(e Effect) {
	v := f.F
	v = applyBit(v, bitZero, e.Z)
	v = applyBit(v, bitSubtract, e.N)
	v = applyBit(v, bitHalfCarry, e.H)
	v = applyBit(v, bitCarry, e.C)
	f.F = v & 0xF0
}

func applyBit(v uint8, bit uint8, s State) uint8 {
	switch s {
	case Set:
		return bits.Set(v, bit)
	case Clear:
		return bits.Reset(v, bit)
	default:
		return v
	}
}

// R8 identifies one of the seven addressable 8-bit registers used by the
// unprefixed and CB-prefixed opcode tables (the encoding omits index 6,
// which instead addresses [HL]).
type R8 uint8

const (
	RB R8 = iota
	RC
	RD
	RE
	RH
	RL
	_ // 6: [HL], handled by the caller
	RA
)

// Get returns the value of the 8-bit register identified by r.
func (f *File) Get(r R8) uint8 {
	switch r {
	case RA:
		return f.A
	case RB:
		return f.B
	case RC:
		return f.C
	case RD:
		return f.D
	case RE:
		return f.E
	case RH:
		return f.H
	case RL:
		return f.L
	}
	panic("registers: invalid R8 index")
}

// Set writes the value of the 8-bit register identified by r.
func (f *File) Set(r R8, v uint8) {
	switch r {
	case RA:
		f.A = v
	case RB:
		f.B = v
	case RC:
		f.C = v
	case RD:
		f.D = v
	case RE:
		f.E = v
	case RH:
		f.H = v
	case RL:
		f.L = v
	default:
		panic("registers: invalid R8 index")
	}
}

// R16 identifies one of the four 16-bit register pairs as encoded in the
// opcode table's dd/qq fields. AF is only ever used by PUSH/POP; SP is
// used everywhere else dd selects a pair.
type R16 uint8

const (
	RBC R16 = iota
	RDE
	RHL
	RSPorAF
)

// GetSP returns the pair selected by r, substituting SP for the 4th slot.
func (f *File) GetSP(r R16) uint16 {
	switch r {
	case RBC:
		return f.BC()
	case RDE:
		return f.DE()
	case RHL:
		return f.HL()
	default:
		return f.SP
	}
}

// SetSP writes the pair selected by r, substituting SP for the 4th slot.
func (f *File) SetSP(r R16, v uint16) {
	switch r {
	case RBC:
		f.SetBC(v)
	case RDE:
		f.SetDE(v)
	case RHL:
		f.SetHL(v)
	default:
		f.SP = v
	}
}

// GetAF returns the pair selected by r, substituting AF for the 4th slot.
func (f *File) GetAF(r R16) uint16 {
	switch r {
	case RBC:
		return f.BC()
	case RDE:
		return f.DE()
	case RHL:
		return f.HL()
	default:
		return f.AF()
	}
}

// SetPairAF writes the pair selected by r, substituting AF for the 4th slot.
func (f *File) SetPairAF(r R16, v uint16) {
	switch r {
	case RBC:
		f.SetBC(v)
	case RDE:
		f.SetDE(v)
	case RHL:
		f.SetHL(v)
	default:
		f.SetAF(v)
	}
}
