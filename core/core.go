// Package core is the public facade over the emulator: it owns the
// cartridge, bus, CPU and every peripheral, and exposes the operations a
// host (a test harness, a frontend driving input and audio/video output)
// needs without reaching into the internal packages directly.
package core

import (
	"github.com/thelolagemann/gbcore/internal/boot"
	"github.com/thelolagemann/gbcore/internal/bus"
	"github.com/thelolagemann/gbcore/internal/cartridge"
	"github.com/thelolagemann/gbcore/internal/coreerr"
	"github.com/thelolagemann/gbcore/internal/cpu"
	"github.com/thelolagemann/gbcore/internal/interrupts"
	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/thelolagemann/gbcore/internal/serial"
	"github.com/thelolagemann/gbcore/pkg/log"
)

// Error kinds re-exported so callers never need to import the internal
// coreerr package directly to branch on a failure category.
type (
	ErrorKind = coreerr.Kind
	Error     = coreerr.Error
)

const (
	MalformedHeader  = coreerr.MalformedHeader
	UnimplementedMbc = coreerr.UnimplementedMbc
	IllegalOpcode    = coreerr.IllegalOpcode
)

// Button identifies a physical button for Press/Release.
type Button = joypad.Button

const (
	ButtonA      = joypad.ButtonA
	ButtonB      = joypad.ButtonB
	ButtonSelect = joypad.ButtonSelect
	ButtonStart  = joypad.ButtonStart
	ButtonRight  = joypad.ButtonRight
	ButtonLeft   = joypad.ButtonLeft
	ButtonUp     = joypad.ButtonUp
	ButtonDown   = joypad.ButtonDown
)

// config accumulates what the functional Options below set, before New
// constructs the Emulator and its owned components in one pass.
type config struct {
	bootROM  []byte
	listener serial.Listener
	logger   log.Logger
}

// Option configures an Emulator at construction time.
type Option func(*config)

// WithBootROM installs a 256-byte DMG boot ROM image to overlay cartridge
// bank 0 until the program unmaps it.
func WithBootROM(rom []byte) Option {
	return func(c *config) { c.bootROM = rom }
}

// WithSerialListener installs a callback invoked with each byte the
// cartridge's program transfers out over the serial port using the
// internal clock, the channel the Blargg test ROMs report results over.
func WithSerialListener(l func(b uint8)) Option {
	return func(c *config) { c.listener = serial.Listener(l) }
}

// WithLogger installs the logger non-fatal diagnostics (header checksum
// mismatches, and similar) are written to. The default logger writes to
// stdout.
func WithLogger(l log.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Emulator is a single Game Boy: one cartridge, one bus, one CPU. It is
// the sole owner of every component's mutable state.
type Emulator struct {
	Cart *cartridge.Cartridge
	Bus  *bus.Bus
	CPU  *cpu.CPU
	IRQ  *interrupts.Controller
}

// New parses rom's header, constructs every component, and wires them
// into a ready-to-run Emulator. It returns a *coreerr.Error of kind
// MalformedHeader or UnimplementedMbc if rom cannot be emulated.
func New(rom []byte, opts ...Option) (*Emulator, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New()
	}

	var bootROM *boot.ROM
	if cfg.bootROM != nil {
		var err error
		bootROM, err = boot.Load(cfg.bootROM)
		if err != nil {
			return nil, err
		}
	}

	cart, err := cartridge.New(rom, bootROM, cfg.logger)
	if err != nil {
		return nil, err
	}

	irq := interrupts.New()
	b := bus.New(cart, irq)
	if cfg.listener != nil {
		b.Serial.SetListener(cfg.listener)
	}
	c := cpu.New(b, irq)
	if bootROM == nil {
		// with no boot ROM the program starts at the cartridge entry point
		// with the post-boot register state real hardware leaves behind.
		c.Reg.PC = 0x0100
		c.Reg.SetAF(0x01B0)
		c.Reg.SetBC(0x0013)
		c.Reg.SetDE(0x00D8)
		c.Reg.SetHL(0x014D)
		c.Reg.SP = 0xFFFE
	}

	return &Emulator{Cart: cart, Bus: b, CPU: c, IRQ: irq}, nil
}

// Step executes exactly one CPU instruction (or one idle machine cycle
// while halted), advances every clocked peripheral by the same number of
// machine cycles, and returns that cycle count.
func (e *Emulator) Step() (uint8, error) {
	cycles, err := e.CPU.Step()
	if err != nil {
		return 0, err
	}
	e.Bus.Tick(cycles)
	return cycles, nil
}

// Press marks a button as held, requesting the joypad interrupt on a
// high-to-low transition if that button's half of the matrix is selected.
func (e *Emulator) Press(b Button) {
	e.Bus.Joypad.Press(b)
}

// Release marks a button as no longer held.
func (e *Emulator) Release(b Button) {
	e.Bus.Joypad.Release(b)
}

// SaveRAM returns the cartridge's battery-backed RAM image for
// persistence, or nil if the cartridge has no battery.
func (e *Emulator) SaveRAM() []byte {
	if !e.Cart.Header.HasBattery {
		return nil
	}
	return e.Cart.RAM()
}

// LoadSaveRAM restores a previously saved battery RAM image.
func (e *Emulator) LoadSaveRAM(data []byte) {
	e.Cart.LoadRAM(data)
}
