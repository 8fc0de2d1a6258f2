package joypad

import (
	"testing"

	"github.com/thelolagemann/gbcore/internal/interrupts"
)

func TestSelectedHalfReportsPressedButtonsLow(t *testing.T) {
	irq := interrupts.New()
	s := New(irq)
	s.Write(0x20) // select d-pad half (bit 4 clear)
	s.Press(ButtonUp)

	v := s.Read()
	if v&0x04 != 0 { // up is bit 2 of the d-pad nibble
		t.Errorf("Read() = %#02x, up should report pressed (bit clear)", v)
	}
}

func TestDeselectedHalfReportsAllReleased(t *testing.T) {
	irq := interrupts.New()
	s := New(irq)
	s.Write(0x30) // deselect both halves
	s.Press(ButtonA)

	if v := s.Read(); v&0x0F != 0x0F {
		t.Errorf("Read() = %#02x, want lower nibble all 1s when deselected", v)
	}
}

func TestPressRequestsInterruptOnlyOnEdge(t *testing.T) {
	irq := interrupts.New()
	irq.Enable = 1 << interrupts.Joypad
	s := New(irq)
	s.Write(0x20) // d-pad selected
	s.Press(ButtonUp)
	if !irq.HasPending() {
		t.Fatal("first press should request the joypad interrupt")
	}
	irq.Clear(interrupts.Joypad)
	s.Press(ButtonUp) // already held: no new edge
	if irq.HasPending() {
		t.Error("holding an already-pressed button should not re-request the interrupt")
	}
}

func TestReleaseClearsButton(t *testing.T) {
	irq := interrupts.New()
	s := New(irq)
	s.Write(0x20)
	s.Press(ButtonDown)
	s.Release(ButtonDown)
	if v := s.Read(); v&0x08 == 0 {
		t.Error("released button should report as not pressed")
	}
}
