// Package serial provides the Game Boy's serial port (SB/SC). Only local,
// internal-clock transfers are modeled: the byte in SB is handed to a
// listener callback and replaced with 0xFF, as required to capture the
// Blargg test ROMs' serial-output protocol. Link-cable peer connectivity
// is out of scope.
package serial

import "github.com/thelolagemann/gbcore/internal/interrupts"

// Listener is invoked synchronously from within a transfer with the byte
// that was in SB at the moment the transfer started. It may not call back
// into the emulator.
type Listener func(b uint8)

// Controller is the SB/SC serial port.
type Controller struct {
	sb uint8
	sc uint8

	listener Listener
	irq      *interrupts.Controller
}

// New returns a new serial controller wired to the given interrupt
// controller.
func New(irq *interrupts.Controller) *Controller {
	return &Controller{irq: irq}
}

// SetListener installs the callback fired on every internal-clock transfer.
func (c *Controller) SetListener(l Listener) {
	c.listener = l
}

// Read returns the value of the register at the given address. SC's bits
// 6..1 always read as 1.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case 0xFF01:
		return c.sb
	case 0xFF02:
		return c.sc | 0x7E
	}
	return 0xFF
}

// Write writes the given value to the register at the given address. A
// write to SC with both the transfer-start bit (7) and the internal-clock
// bit (0) set fires the transfer immediately.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case 0xFF01:
		c.sb = value
	case 0xFF02:
		c.sc = value
		if value&0x81 == 0x81 {
			if c.listener != nil {
				c.listener(c.sb)
			}
			c.sb = 0xFF
			c.sc &^= 0x80
			c.irq.Request(interrupts.Serial)
		}
	}
}
