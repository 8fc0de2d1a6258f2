// Package joypad emulates the Game Boy's 2x4 button matrix read through
// 0xFF00. Bits 5 and 4 select which half of the matrix is visible; the
// selected half's buttons report 0 when pressed.
package joypad

import "github.com/thelolagemann/gbcore/internal/interrupts"

// Button identifies a physical button.
type Button = uint8

const (
	ButtonA      Button = 0x01
	ButtonB      Button = 0x02
	ButtonSelect Button = 0x04
	ButtonStart  Button = 0x08
	ButtonRight  Button = 0x10
	ButtonLeft   Button = 0x20
	ButtonUp     Button = 0x40
	ButtonDown   Button = 0x80
)

// State is the joypad's register and button state.
type State struct {
	register uint8 // bits 5,4 select which half of the matrix is visible
	pressed  Button

	irq *interrupts.Controller
}

// New returns a new joypad with no buttons pressed and both matrix halves
// deselected.
func New(irq *interrupts.Controller) *State {
	return &State{register: 0x30, irq: irq}
}

// Read returns the value of the 0xFF00 register.
func (s *State) Read() uint8 {
	v := s.register | 0xCF
	if s.register&0x10 == 0 {
		v &^= (s.pressed >> 4) & 0x0F
	}
	if s.register&0x20 == 0 {
		v &^= s.pressed & 0x0F
	}
	if s.register&0x30 == 0x30 {
		v |= 0x0F
	}
	return v
}

// Write updates the matrix-select bits (5,4); the lower nibble is
// read-only from the CPU's perspective. A selection change that makes a
// held button's reported bit go from high to low requests the joypad
// interrupt.
func (s *State) Write(value uint8) {
	before := s.Read()
	s.register = (s.register & 0xCF) | (value & 0x30)
	if before&^s.Read()&0x0F != 0 {
		s.irq.Request(interrupts.Joypad)
	}
}

// visible reports whether the given button is currently selected by the
// matrix-select bits.
func (s *State) visible(key Button) bool {
	if key <= ButtonStart {
		return s.register&0x20 == 0
	}
	return s.register&0x10 == 0
}

// Press marks the given button as held. A high-to-low transition on a
// currently selected button requests the joypad interrupt.
func (s *State) Press(key Button) {
	wasUp := s.pressed&key == 0
	s.pressed |= key
	if wasUp && s.visible(key) {
		s.irq.Request(interrupts.Joypad)
	}
}

// Release marks the given button as no longer held.
func (s *State) Release(key Button) {
	s.pressed &^= key
}
