package timer

import (
	"testing"

	"github.com/tinygba/gba/internal/interrupt"
)

func TestTimerOverflowAndReload(t *testing.T) {
	irq := interrupt.New()
	b := New(irq)
	b.ReloadWrite(0, 0xFFFE)
	b.ControlWrite(0, 1<<7|0x0) // running, prescaler=1, irq disabled
	if b.CounterRead(0) != 0xFFFE {
		t.Fatalf("counter should load reload on start, got %#x", b.CounterRead(0))
	}
	b.Tick(1) // -> FFFF
	b.Tick(1) // overflow -> reload (FFFE)
	if b.CounterRead(0) != 0xFFFE {
		t.Fatalf("counter after overflow got %#x want FFFE", b.CounterRead(0))
	}
}

func TestTimerIRQOnOverflow(t *testing.T) {
	irq := interrupt.New()
	irq.SetIE(uint16(interrupt.Timer0))
	irq.SetIME(1)
	b := New(irq)
	b.ReloadWrite(0, 0xFFFF)
	b.ControlWrite(0, 1<<7|1<<6) // running, irq enable
	b.Tick(1)                   // overflow immediately
	if !irq.Pending() {
		t.Fatalf("expected Timer0 overflow IRQ to be pending")
	}
}

func TestCountUpChaining(t *testing.T) {
	irq := interrupt.New()
	b := New(irq)
	b.ReloadWrite(0, 0xFFFF)
	b.ControlWrite(0, 1<<7) // timer0 running, prescaler 1
	b.ReloadWrite(1, 0)
	b.ControlWrite(1, 1<<7|1<<2) // timer1 running, count-up

	b.Tick(1) // timer0 overflows once; timer1 should increment by 1
	if b.CounterRead(1) != 1 {
		t.Fatalf("timer1 count-up got %d want 1", b.CounterRead(1))
	}
}

func TestControlWriteZeroToOneLoadsReloadAtomically(t *testing.T) {
	irq := interrupt.New()
	b := New(irq)
	b.ReloadWrite(2, 0x1234)
	b.ControlWrite(2, 0) // stopped: no load
	if b.CounterRead(2) != 0 {
		t.Fatalf("stopped timer should not load, got %#x", b.CounterRead(2))
	}
	b.ControlWrite(2, 1<<7)
	if b.CounterRead(2) != 0x1234 {
		t.Fatalf("0->1 transition should load reload, got %#x", b.CounterRead(2))
	}
}
