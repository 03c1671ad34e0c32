package dma

import (
	"testing"

	"github.com/tinygba/gba/internal/interrupt"
)

// fakeBus is a flat byte-addressable memory used only to exercise channel
// transfers in isolation from the real bus's region dispatch.
type fakeBus struct {
	mem [0x1000]byte
}

func (f *fakeBus) Read8(addr uint32) byte   { return f.mem[addr&0xFFF] }
func (f *fakeBus) Write8(addr uint32, v byte) { f.mem[addr&0xFFF] = v }
func (f *fakeBus) Read16(addr uint32) uint16 {
	addr &^= 1
	return uint16(f.Read8(addr)) | uint16(f.Read8(addr+1))<<8
}
func (f *fakeBus) Write16(addr uint32, v uint16) {
	addr &^= 1
	f.Write8(addr, byte(v))
	f.Write8(addr+1, byte(v>>8))
}
func (f *fakeBus) Read32(addr uint32) uint32 {
	addr &^= 3
	return uint32(f.Read16(addr)) | uint32(f.Read16(addr+2))<<16
}
func (f *fakeBus) Write32(addr uint32, v uint32) {
	addr &^= 3
	f.Write16(addr, uint16(v))
	f.Write16(addr+2, uint16(v>>16))
}

func TestImmediateTransferCopiesWords(t *testing.T) {
	bus := &fakeBus{}
	bus.Write32(0x100, 0xDEADBEEF)

	d := New(interrupt.New())
	d.WriteSAD(0, 0x100)
	d.WriteDAD(0, 0x200)
	d.WriteCount(0, 1)
	// enable, 32-bit, immediate timing, increment/increment
	d.WriteControl(0, 1<<15|1<<10, bus)

	if got := bus.Read32(0x200); got != 0xDEADBEEF {
		t.Fatalf("got %#x want 0xDEADBEEF", got)
	}
	if d.ReadControl(0)&(1<<15) != 0 {
		t.Fatalf("non-repeat channel should auto-clear enable bit")
	}
}

func TestIncrementAdvancesBothPointers(t *testing.T) {
	bus := &fakeBus{}
	bus.Write16(0x10, 0x1111)
	bus.Write16(0x12, 0x2222)

	d := New(interrupt.New())
	d.WriteSAD(0, 0x10)
	d.WriteDAD(0, 0x40)
	d.WriteCount(0, 2)
	d.WriteControl(0, 1<<15, bus) // 16-bit, increment/increment, immediate

	if bus.Read16(0x40) != 0x1111 || bus.Read16(0x42) != 0x2222 {
		t.Fatalf("expected sequential 16-bit copy, got %#x %#x", bus.Read16(0x40), bus.Read16(0x42))
	}
}

func TestFixedSourceRepeatsSameValue(t *testing.T) {
	bus := &fakeBus{}
	bus.Write16(0x10, 0xABCD)

	d := New(interrupt.New())
	d.WriteSAD(0, 0x10)
	d.WriteDAD(0, 0x40)
	d.WriteCount(0, 3)
	// source control = fixed (bits 7-8 = 2)
	d.WriteControl(0, 1<<15|ctrlFixed<<7, bus)

	for i := uint32(0); i < 3; i++ {
		if got := bus.Read16(0x40 + i*2); got != 0xABCD {
			t.Fatalf("word %d got %#x want 0xABCD", i, got)
		}
	}
}

func TestIRQRequestedOnCompletion(t *testing.T) {
	bus := &fakeBus{}
	irq := interrupt.New()
	irq.SetIE(uint16(interrupt.DMA0))
	irq.SetIME(1)

	d := New(irq)
	d.WriteSAD(0, 0x10)
	d.WriteDAD(0, 0x40)
	d.WriteCount(0, 1)
	d.WriteControl(0, 1<<15|1<<14, bus) // enable + irq-enable

	if !irq.Pending() {
		t.Fatalf("expected DMA0 completion IRQ to be pending")
	}
}

func TestVBlankTimingDoesNotFireImmediately(t *testing.T) {
	bus := &fakeBus{}
	bus.Write16(0x10, 0x55AA)

	d := New(interrupt.New())
	d.WriteSAD(0, 0x10)
	d.WriteDAD(0, 0x40)
	d.WriteCount(0, 1)
	d.WriteControl(0, 1<<15|TimingVBlank<<12, bus)

	if bus.Read16(0x40) == 0x55AA {
		t.Fatalf("VBlank-timed channel must not fire before NotifyVBlank")
	}
	d.NotifyVBlank(bus)
	if bus.Read16(0x40) != 0x55AA {
		t.Fatalf("expected transfer to fire on NotifyVBlank")
	}
}
