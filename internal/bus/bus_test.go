package bus

import (
	"testing"

	"github.com/tinygba/gba/internal/cart"
	"github.com/tinygba/gba/internal/sched"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	bios := make([]byte, biosSize)
	rom, err := cart.Load(make([]byte, 0x1000))
	if err != nil {
		t.Fatalf("cart.Load: %v", err)
	}
	return New(bios, rom, sched.New())
}

func TestWRAMRoundTrip(t *testing.T) {
	b := newTestBus(t)
	b.Write32(0x02000100, 0xCAFEBABE)
	if got := b.Read32(0x02000100); got != 0xCAFEBABE {
		t.Fatalf("got %#x want 0xCAFEBABE", got)
	}
	b.Write16(0x03000010, 0x1234)
	if got := b.Read16(0x03000010); got != 0x1234 {
		t.Fatalf("on-chip WRAM got %#x want 0x1234", got)
	}
}

func TestUnmappedReadReturnsOpenBus(t *testing.T) {
	b := newTestBus(t)
	if got := b.Read32(0x1FFFFFF0); got != 0xFFFFFFFF {
		t.Fatalf("unmapped read got %#x want all-ones", got)
	}
	if got := b.Read16(0x1FFFFFF0); got != 0xFFFF {
		t.Fatalf("unmapped read got %#x want all-ones", got)
	}
	if got := b.Read8(0x1FFFFFF0); got != 0xFF {
		t.Fatalf("unmapped read got %#x want all-ones", got)
	}
}

func TestDISPSTATWriteReadOnlyBits(t *testing.T) {
	b := newTestBus(t)
	b.Write16(0x04000004, 0xFFFF)
	if got := b.Read16(0x04000004); got&0x7 != 0 {
		t.Fatalf("DISPSTAT bits 0-2 must stay read-only, got %#x", got)
	}
}

func TestIFWriteOneToClear(t *testing.T) {
	b := newTestBus(t)
	b.Interrupts().Request(0x1)
	b.Write16(0x04000202, 0x1)
	if got := b.Read16(0x04000202); got != 0 {
		t.Fatalf("IF got %#x want 0 after W1C ack", got)
	}
}

func TestDMASplitHalfwordWritesLatchFullRegister(t *testing.T) {
	b := newTestBus(t)
	b.Write32(0x02000000, 0xAABBCCDD) // source data, on-board WRAM

	// SAD/DAD written as two independent 16-bit halves, as the CPU's
	// STRH would do.
	b.Write16(0x040000B0, 0x0000) // SAD low
	b.Write16(0x040000B2, 0x0200) // SAD high -> src = 0x02000000
	b.Write16(0x040000B4, 0x0100) // DAD low
	b.Write16(0x040000B6, 0x0200) // DAD high -> dst = 0x02000100
	b.Write16(0x040000B8, 1)      // word count = 1
	b.Write16(0x040000BA, 1<<15|1<<10) // enable, 32-bit, immediate timing

	if got := b.Read32(0x02000100); got != 0xAABBCCDD {
		t.Fatalf("DMA transfer after split-register writes got %#x want 0xAABBCCDD", got)
	}
}

func TestCartReadThroughBus(t *testing.T) {
	rom, _ := cart.Load([]byte{0xEF, 0xBE, 0xAD, 0xDE})
	b := New(make([]byte, biosSize), rom, sched.New())
	if got := b.Read32(0x08000000); got != 0xDEADBEEF {
		t.Fatalf("cart read through bus got %#x want 0xDEADBEEF", got)
	}
}

func TestKeypadReadInverted(t *testing.T) {
	b := newTestBus(t)
	b.SetKeypadState(1) // A pressed
	if got := b.Read16(0x04000130); got&1 != 0 {
		t.Fatalf("pressed A should read as 0, got %#x", got)
	}
}
