// Package gba wires the CPU, Bus, and Scheduler into the single top-level
// unit a front-end drives: Machine, following the teacher's emu.Machine
// shape (LoadCartridge/StepFrame/Framebuffer/SetButtons) but generalized
// from the DMG's placeholder test-pattern machine to the GBA's real
// CPU-driven pipeline (spec §2's control-flow summary, §6's external
// interfaces).
package gba

import (
	"errors"

	"github.com/tinygba/gba/internal/bus"
	"github.com/tinygba/gba/internal/cart"
	"github.com/tinygba/gba/internal/cpu"
	"github.com/tinygba/gba/internal/keypad"
	"github.com/tinygba/gba/internal/ppu"
	"github.com/tinygba/gba/internal/sched"
)

// BIOSSize is the exact length a BIOS image must have (spec §6).
const BIOSSize = 16 * 1024

// ErrBadBIOS is returned by New when the BIOS image is not exactly
// BIOSSize bytes (spec §7's load-error taxonomy).
var ErrBadBIOS = errors.New("gba: bios image must be exactly 16 KiB")

// Machine couples a CPU to its Bus/Scheduler and exposes the two
// synchronization points (present, poll_input) spec §6 names, plus the
// frame-stepping and input entry points a front-end drives.
type Machine struct {
	bus   *bus.Bus
	cpu   *cpu.CPU
	sched *sched.Scheduler

	frames uint64
}

// New constructs a Machine from a 16 KiB BIOS image and a loaded
// cartridge, in the post-reset CPU/PPU state of spec §8.
func New(bios []byte, rom *cart.ROM) (*Machine, error) {
	if len(bios) != BIOSSize {
		return nil, ErrBadBIOS
	}
	s := sched.New()
	b := bus.New(bios, rom, s)
	c := cpu.New(b)

	m := &Machine{bus: b, cpu: c, sched: s}
	// bus.New already wired OnVBlank to trigger VBlank-start DMA; chain
	// onto it rather than replacing it so both fire.
	prevVBlank := b.PPU().OnVBlank
	b.PPU().OnVBlank = func() {
		if prevVBlank != nil {
			prevVBlank()
		}
		m.frames++
	}
	b.PPU().Start()
	return m, nil
}

// Bus/CPU expose the wired components for front-ends and tests that need
// direct access (trace dumps, headless PNG capture, compliance runners).
func (m *Machine) Bus() *bus.Bus { return m.bus }
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// SetPresent registers the front-end's present callback (spec §6),
// invoked once per VBlank with the 240x160 BGR555 framebuffer.
func (m *Machine) SetPresent(fn func(fb *[ppu.ScreenWidth * ppu.ScreenHeight]uint16)) {
	m.bus.PPU().Present = fn
}

// SetPollInput registers the front-end's poll_input callback (spec §6),
// invoked once per VBlank just after Present.
func (m *Machine) SetPollInput(fn func()) {
	m.bus.PPU().PollInput = fn
}

// SetKeypadState is the poll_input callback's own entry point: pass the
// current 10-bit pressed-button mask (see package keypad's constants).
func (m *Machine) SetKeypadState(mask uint16) {
	m.bus.SetKeypadState(mask)
}

// Framebuffer returns the PPU's current 240x160 BGR555 framebuffer.
func (m *Machine) Framebuffer() *[ppu.ScreenWidth * ppu.ScreenHeight]uint16 {
	return m.bus.PPU().Framebuffer()
}

// Step executes exactly one CPU instruction (or services a pending IRQ)
// and returns its cycle cost (spec §4.9).
func (m *Machine) Step() int {
	return m.cpu.Step()
}

// RunFrame steps the CPU until the scheduler has produced exactly one new
// VBlank (spec §4.3's scanline cadence), i.e. one 240x160 frame's worth of
// scanlines. Front-ends call this once per host vsync tick.
func (m *Machine) RunFrame() {
	target := m.frames + 1
	for m.frames < target {
		m.cpu.Step()
	}
}

// FrameCount returns the number of VBlanks serviced since Machine creation,
// a monotonically increasing counter useful for headless -frames loops.
func (m *Machine) FrameCount() uint64 { return m.frames }

// Buttons is the teacher-style boolean button struct; Mask packs it into
// the keypad's bitmask convention (spec §6's poll_input contract).
type Buttons struct {
	A, B, Select, Start         bool
	Right, Left, Up, Down, R, L bool
}

// Mask converts b into the keypad bit-set convention (set = pressed).
func (b Buttons) Mask() uint16 {
	var m uint16
	if b.A {
		m |= keypad.A
	}
	if b.B {
		m |= keypad.B
	}
	if b.Select {
		m |= keypad.Select
	}
	if b.Start {
		m |= keypad.Start
	}
	if b.Right {
		m |= keypad.Right
	}
	if b.Left {
		m |= keypad.Left
	}
	if b.Up {
		m |= keypad.Up
	}
	if b.Down {
		m |= keypad.Down
	}
	if b.R {
		m |= keypad.R
	}
	if b.L {
		m |= keypad.L
	}
	return m
}

// SetButtons is the teacher-style convenience wrapper over SetKeypadState.
func (m *Machine) SetButtons(b Buttons) {
	m.SetKeypadState(b.Mask())
}
