// Package ppu implements the GBA scanline state machine, DISPCNT/DISPSTAT/
// VCOUNT registers, and the mode-4 framebuffer renderer described in spec
// §4.3, following the teacher's dot-based mode-scheduling PPU (ppu.go) but
// driven through the shared internal/sched scheduler instead of a per-cycle
// Tick loop, per the scheduler-driven design spec §2/§4.3 calls for.
package ppu

import (
	"github.com/tinygba/gba/internal/interrupt"
	"github.com/tinygba/gba/internal/sched"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	CyclesPerLine = 1232
	hDrawCycles   = 960
	hBlankCycles  = CyclesPerLine - hDrawCycles // 272
	LinesPerFrame = 228
	vblankLine    = ScreenHeight // vcount==160 enters VBlank
)

// PPU owns PaletteRAM, VRAM, and OAM (spec §2), the video registers, and
// the 240x160 BGR555 framebuffer. It is the sole mutator of DISPSTAT bits
// 0-2, VCOUNT, and the framebuffer (spec §5).
type PPU struct {
	pram [0x400]byte  // 1 KiB
	vram [0x18000]byte // 96 KiB real storage; 0x18000-0x1FFFF mirrors the last 32 KiB
	oam  [0x400]byte  // 1 KiB

	dispcnt  uint16
	dispstat uint16
	vcount   uint16
	bgcnt    [4]uint16

	vcounterMatchPrev bool

	framebuffer [ScreenWidth * ScreenHeight]uint16

	irq   *interrupt.Controller
	sched *sched.Scheduler

	// Present and PollInput are the two front-end synchronization points
	// invoked from VBlank entry (spec §5/§6). OnHBlank/OnVBlank notify the
	// DMA controller of HBlank/VBlank-timed transfers (SPEC_FULL §D.4)
	// without the PPU importing the dma or bus packages.
	Present   func(fb *[ScreenWidth * ScreenHeight]uint16)
	PollInput func()
	OnHBlank  func()
	OnVBlank  func()
}

// New returns a PPU with LCD registers zeroed, wired to irq for HBlank/
// VBlank/VCounter interrupt requests and s for scanline scheduling.
func New(irq *interrupt.Controller, s *sched.Scheduler) *PPU {
	return &PPU{irq: irq, sched: s}
}

// Start arms the scanline state machine (spec §4.3): StartLine, after
// hDrawCycles, reaches StartHBlank. Call once after wiring Present/
// PollInput/OnHBlank/OnVBlank.
func (p *PPU) Start() {
	p.sched.Schedule(hDrawCycles, p.enterHBlank)
}

func (p *PPU) enterHBlank(late int) {
	p.dispstat |= 1 << 1
	if p.dispstat&(1<<4) != 0 {
		p.irq.Request(interrupt.HBlank)
	}
	if p.OnHBlank != nil {
		p.OnHBlank()
	}
	p.sched.Schedule(clampDelay(hBlankCycles-late), p.endHBlank)
}

func (p *PPU) endHBlank(late int) {
	p.dispstat &^= 1 << 1
	p.vcount++
	if p.vcount == vblankLine {
		p.dispstat |= 1
		if p.dispstat&(1<<3) != 0 {
			p.irq.Request(interrupt.VBlank)
		}
		p.RenderFrame()
		if p.Present != nil {
			p.Present(&p.framebuffer)
		}
		if p.PollInput != nil {
			p.PollInput()
		}
		if p.OnVBlank != nil {
			p.OnVBlank()
		}
	}
	if p.vcount == LinesPerFrame {
		p.vcount = 0
		p.dispstat &^= 1
	}
	p.updateVCounter()
	p.sched.Schedule(clampDelay(hDrawCycles-late), p.enterHBlank)
}

func clampDelay(d int) uint64 {
	if d < 1 {
		return 1
	}
	return uint64(d)
}

// updateVCounter refreshes DISPSTAT bit 2 and fires the VCounter interrupt
// on the rising edge of a VCOUNT==match-setting comparison (spec §4.3).
func (p *PPU) updateVCounter() {
	target := (p.dispstat >> 8) & 0xFF
	match := p.vcount == target
	if match {
		p.dispstat |= 1 << 2
	} else {
		p.dispstat &^= 1 << 2
	}
	if match && !p.vcounterMatchPrev && p.dispstat&(1<<5) != 0 {
		p.irq.Request(interrupt.VCounter)
	}
	p.vcounterMatchPrev = match
}

// DISPCNT / DISPSTAT / VCOUNT / BGnCNT register accessors (spec §6).

func (p *PPU) DISPCNT() uint16     { return p.dispcnt }
func (p *PPU) SetDISPCNT(v uint16) { p.dispcnt = v }

// DISPSTAT returns the live register, bits 0-2 owned by the PPU state
// machine.
func (p *PPU) DISPSTAT() uint16 { return p.dispstat }

// SetDISPSTAT writes the writable bits only: "(v & ~7) | (old & 7)" per
// spec §8's testable property.
func (p *PPU) SetDISPSTAT(v uint16) {
	p.dispstat = (v &^ 0x7) | (p.dispstat & 0x7)
}

func (p *PPU) VCOUNT() uint16 { return p.vcount }

func (p *PPU) BGCNT(n int) uint16     { return p.bgcnt[n] }
func (p *PPU) SetBGCNT(n int, v uint16) { p.bgcnt[n] = v }

// vramOffset folds the 0x6000000 region's 0x20000-byte window down to the
// 96 KiB backing store, mirroring 0x18000..0x1FFFF onto 0x10000..0x17FFF
// (spec §4.5, "the gap at 0x18000").
func vramOffset(addr uint32) uint32 {
	off := addr & 0x1FFFF
	if off >= 0x18000 {
		off -= 0x8000
	}
	return off
}

// ReadVRAM8/WriteVRAM8 implement byte access. A byte write fans out as a
// halfword write with both halves equal to the byte (spec §4.5's VRAM
// policy, resolving the Open Question in §9 per the documented GBA
// behavior); a byte read returns the underlying byte unchanged.
func (p *PPU) ReadVRAM8(addr uint32) byte { return p.vram[vramOffset(addr)] }

func (p *PPU) WriteVRAM8(addr uint32, v byte) {
	off := vramOffset(addr) &^ 1
	p.vram[off] = v
	p.vram[off+1] = v
}

func (p *PPU) ReadVRAM16(addr uint32) uint16 {
	off := vramOffset(addr) &^ 1
	return uint16(p.vram[off]) | uint16(p.vram[off+1])<<8
}

func (p *PPU) WriteVRAM16(addr uint32, v uint16) {
	off := vramOffset(addr) &^ 1
	p.vram[off] = byte(v)
	p.vram[off+1] = byte(v >> 8)
}

func (p *PPU) ReadVRAM32(addr uint32) uint32 {
	off := vramOffset(addr) &^ 3
	lo := uint32(p.ReadVRAM16(off))
	hi := uint32(p.ReadVRAM16(off + 2))
	return lo | hi<<16
}

func (p *PPU) WriteVRAM32(addr uint32, v uint32) {
	off := vramOffset(addr) &^ 3
	p.WriteVRAM16(off, uint16(v))
	p.WriteVRAM16(off+2, uint16(v>>16))
}

// ReadPRAM8/WritePRAM8/ReadOAM8/WriteOAM8 and their 16/32-bit counterparts
// apply the same halfword-duplication byte-write policy as VRAM (spec
// §4.5 groups PRAM/VRAM/OAM under one rule).

func (p *PPU) ReadPRAM8(addr uint32) byte { return p.pram[addr&0x3FF] }

func (p *PPU) WritePRAM8(addr uint32, v byte) {
	off := (addr & 0x3FF) &^ 1
	p.pram[off] = v
	p.pram[off+1] = v
}

func (p *PPU) ReadPRAM16(addr uint32) uint16 {
	off := (addr & 0x3FF) &^ 1
	return uint16(p.pram[off]) | uint16(p.pram[off+1])<<8
}

func (p *PPU) WritePRAM16(addr uint32, v uint16) {
	off := (addr & 0x3FF) &^ 1
	p.pram[off] = byte(v)
	p.pram[off+1] = byte(v >> 8)
}

func (p *PPU) ReadPRAM32(addr uint32) uint32 {
	off := (addr & 0x3FF) &^ 3
	lo := uint32(p.ReadPRAM16(off))
	hi := uint32(p.ReadPRAM16(off + 2))
	return lo | hi<<16
}

func (p *PPU) WritePRAM32(addr uint32, v uint32) {
	off := (addr & 0x3FF) &^ 3
	p.WritePRAM16(off, uint16(v))
	p.WritePRAM16(off+2, uint16(v>>16))
}

func (p *PPU) ReadOAM8(addr uint32) byte { return p.oam[addr&0x3FF] }

func (p *PPU) WriteOAM8(addr uint32, v byte) {
	off := (addr & 0x3FF) &^ 1
	p.oam[off] = v
	p.oam[off+1] = v
}

func (p *PPU) ReadOAM16(addr uint32) uint16 {
	off := (addr & 0x3FF) &^ 1
	return uint16(p.oam[off]) | uint16(p.oam[off+1])<<8
}

func (p *PPU) WriteOAM16(addr uint32, v uint16) {
	off := (addr & 0x3FF) &^ 1
	p.oam[off] = byte(v)
	p.oam[off+1] = byte(v >> 8)
}

func (p *PPU) ReadOAM32(addr uint32) uint32 {
	off := (addr & 0x3FF) &^ 3
	lo := uint32(p.ReadOAM16(off))
	hi := uint32(p.ReadOAM16(off + 2))
	return lo | hi<<16
}

func (p *PPU) WriteOAM32(addr uint32, v uint32) {
	off := (addr & 0x3FF) &^ 3
	p.WriteOAM16(off, uint16(v))
	p.WriteOAM16(off+2, uint16(v>>16))
}

// RenderFrame dispatches on DISPCNT's video mode field. Mode 4 is the one
// mode this core renders; every other mode value (0-3, 5 and above) fills
// the framebuffer with a flat stub colour (sprite/affine rasterization is
// an explicit Non-goal).
func (p *PPU) RenderFrame() {
	switch p.dispcnt & 0x7 {
	case 4:
		p.renderMode4()
	default:
		p.renderStub()
	}
}

// renderMode4 reads one palette-index byte per pixel from the active
// VRAM frame buffer (DISPCNT bit 4 selects frame 1 at 0xA000) and looks
// the BGR555 color up in PaletteRAM (spec §4.3).
func (p *PPU) renderMode4() {
	frameBase := uint32(0)
	if p.dispcnt&(1<<4) != 0 {
		frameBase = 0xA000
	}
	for y := 0; y < ScreenHeight; y++ {
		rowBase := frameBase + uint32(y*ScreenWidth)
		for x := 0; x < ScreenWidth; x++ {
			idx := p.vram[rowBase+uint32(x)]
			p.framebuffer[y*ScreenWidth+x] = p.paletteColor(idx)
		}
	}
}

func (p *PPU) paletteColor(index byte) uint16 {
	off := uint32(index) * 2
	return uint16(p.pram[off]) | uint16(p.pram[off+1])<<8
}

const stubGrey = 0x4210 // flat BGR555 mid-grey for unimplemented BG modes

func (p *PPU) renderStub() {
	for i := range p.framebuffer {
		p.framebuffer[i] = stubGrey
	}
}

// Framebuffer exposes the live 240x160 BGR555 pixel buffer, primarily for
// tests and the headless front-end's PNG dump.
func (p *PPU) Framebuffer() *[ScreenWidth * ScreenHeight]uint16 { return &p.framebuffer }
