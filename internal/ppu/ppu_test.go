package ppu

import (
	"testing"

	"github.com/tinygba/gba/internal/interrupt"
	"github.com/tinygba/gba/internal/sched"
)

func newPPU() (*PPU, *sched.Scheduler, *interrupt.Controller) {
	s := sched.New()
	irq := interrupt.New()
	p := New(irq, s)
	p.Start()
	return p, s, irq
}

func TestHBlankFiresAtLineBoundary(t *testing.T) {
	p, s, _ := newPPU()
	s.Advance(hDrawCycles)
	if p.DISPSTAT()&(1<<1) == 0 {
		t.Fatalf("expected HBlank flag set after %d cycles", hDrawCycles)
	}
}

func TestVBlankEntersAtLine160(t *testing.T) {
	p, s, irq := newPPU()
	irq.SetIME(1)
	irq.SetIE(uint16(interrupt.VBlank))
	s.Advance(CyclesPerLine * vblankLine)
	if p.VCOUNT() != vblankLine {
		t.Fatalf("VCOUNT got %d want %d", p.VCOUNT(), vblankLine)
	}
	if p.DISPSTAT()&1 == 0 {
		t.Fatalf("expected VBlank flag set")
	}
	if !irq.Pending() {
		t.Fatalf("expected VBlank IRQ pending")
	}
}

func TestFrameWrapsAt228Lines(t *testing.T) {
	p, s, _ := newPPU()
	s.Advance(CyclesPerLine * LinesPerFrame)
	if p.VCOUNT() != 0 {
		t.Fatalf("VCOUNT got %d want 0 after full frame", p.VCOUNT())
	}
	if p.DISPSTAT()&1 != 0 {
		t.Fatalf("VBlank flag should clear on wrap")
	}
}

func TestSetDISPSTATPreservesReadOnlyBits(t *testing.T) {
	p, s, _ := newPPU()
	s.Advance(hDrawCycles) // set hblank flag (bit1)
	p.SetDISPSTAT(0xFFFF)
	if p.DISPSTAT()&0x7 != 0x2 {
		t.Fatalf("writable-bit write must not touch bits 0-2, got %#x", p.DISPSTAT())
	}
	if p.DISPSTAT()&0xFFF8 != 0xFFF8 {
		t.Fatalf("writable bits should take the written value, got %#x", p.DISPSTAT())
	}
}

func TestVCounterIRQFiresOnRisingEdge(t *testing.T) {
	p, s, irq := newPPU()
	irq.SetIME(1)
	irq.SetIE(uint16(interrupt.VCounter))
	p.SetDISPSTAT(5 << 8) // match setting = line 5
	p.SetDISPSTAT(p.DISPSTAT() | 1<<5) // vcounter IRQ enable
	s.Advance(CyclesPerLine * 5)
	if !irq.Pending() {
		t.Fatalf("expected VCounter IRQ pending at line 5")
	}
}

func TestVRAMMirrorGapAt0x18000(t *testing.T) {
	p, _, _ := newPPU()
	p.WriteVRAM16(0x10000, 0xBEEF)
	if got := p.ReadVRAM16(0x18000); got != 0xBEEF {
		t.Fatalf("0x18000 should mirror 0x10000, got %#x", got)
	}
}

func TestVRAMByteWriteDuplicatesHalfword(t *testing.T) {
	p, _, _ := newPPU()
	p.WriteVRAM8(0x0100, 0xAB)
	if got := p.ReadVRAM16(0x0100); got != 0xABAB {
		t.Fatalf("byte write should fan out to halfword, got %#x", got)
	}
}

func TestMode4RenderUsesPaletteLookup(t *testing.T) {
	p, _, _ := newPPU()
	p.SetDISPCNT(4) // mode 4, frame 0
	p.WritePRAM16(5*2, 0x1234)
	p.WriteVRAM8(0, 5) // pixel (0,0) palette index 5
	p.RenderFrame()
	fb := p.Framebuffer()
	if fb[0] != 0x1234 {
		t.Fatalf("pixel(0,0) got %#x want 0x1234", fb[0])
	}
}

func TestStubModeFillsFlatColor(t *testing.T) {
	p, _, _ := newPPU()
	p.SetDISPCNT(0) // mode 0, unimplemented
	p.RenderFrame()
	fb := p.Framebuffer()
	for i, v := range fb {
		if v != stubGrey {
			t.Fatalf("pixel %d got %#x want stub grey", i, v)
		}
	}
}
