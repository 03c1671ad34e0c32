// Package timer implements the four chained 16-bit GBA timers described in
// spec §4.4, following the same register-and-Tick shape the teacher uses
// for the DMG DIV/TIMA/TMA/TAC timer in bus.go, generalized from one
// counter to four chained ones.
package timer

import "github.com/tinygba/gba/internal/interrupt"

var prescalers = [4]int{1, 64, 256, 1024}

// overflowSource maps a timer index to its IF bit.
var overflowSource = [4]interrupt.Source{
	interrupt.Timer0, interrupt.Timer1, interrupt.Timer2, interrupt.Timer3,
}

// Timer is one of the four TIMn counters.
type Timer struct {
	reload  uint16
	counter uint16
	control uint16 // bits: 0-1 prescaler select, 2 count-up, 6 irq-enable, 7 running

	// subCycles accumulates CPU cycles not yet consumed by the prescaler.
	subCycles int
}

func (t *Timer) running() bool   { return t.control&(1<<7) != 0 }
func (t *Timer) countUp() bool   { return t.control&(1<<2) != 0 }
func (t *Timer) irqEnabled() bool { return t.control&(1<<6) != 0 }
func (t *Timer) prescaler() int  { return prescalers[t.control&0x3] }

// Bank is the four-timer unit wired into the bus's I/O dispatch.
type Bank struct {
	t   [4]Timer
	irq *interrupt.Controller
}

// New returns a Bank with all timers stopped, wired to irq for overflow
// requests.
func New(irq *interrupt.Controller) *Bank {
	return &Bank{irq: irq}
}

// CounterRead/ReloadWrite/ControlRead/ControlWrite implement the per-channel
// register halves exposed at 0x4000100 + 4*n (reload+counter) and
// 0x4000102 + 4*n (control), per the GBA I/O map.

// CounterRead returns the live counter value (the low halfword of TIMn).
func (b *Bank) CounterRead(n int) uint16 { return b.t[n].counter }

// ReloadWrite writes the reload value (TIMn_L on write; reads return the
// live counter instead, per hardware).
func (b *Bank) ReloadWrite(n int, v uint16) { b.t[n].reload = v }

// ControlRead returns TIMn_H (the control register).
func (b *Bank) ControlRead(n int) uint16 { return b.t[n].control & 0x00C7 }

// ControlWrite writes TIMn_H. A 0->1 transition of the running bit loads
// counter := reload atomically with the write (spec §4.4).
func (b *Bank) ControlWrite(n int, v uint16) {
	t := &b.t[n]
	wasRunning := t.running()
	t.control = v & 0x00C7
	if !wasRunning && t.running() {
		t.counter = t.reload
		t.subCycles = 0
	}
}

// Tick advances every running, prescaler-driven timer by the elapsed CPU
// cycle batch, then propagates overflow chaining to count-up timers (spec
// §4.4). Timer 0 cannot count-up (there is no preceding timer); its
// count-up bit is ignored like on real hardware.
func (b *Bank) Tick(cycles int) {
	chainOverflow := false
	for i := 0; i < 4; i++ {
		t := &b.t[i]
		if !t.running() {
			chainOverflow = false
			continue
		}
		if i > 0 && t.countUp() {
			if chainOverflow {
				chainOverflow = b.step(i, 1)
			} else {
				chainOverflow = false
			}
			continue
		}
		ticks := 0
		t.subCycles += cycles
		pre := t.prescaler()
		ticks = t.subCycles / pre
		t.subCycles -= ticks * pre
		chainOverflow = b.step(i, ticks)
	}
}

// step increments timer i by n ticks, handling reload-on-overflow and the
// matching IRQ request. Returns whether at least one overflow occurred,
// used to chain timer i+1 when it is in count-up mode.
func (b *Bank) step(i int, n int) bool {
	if n <= 0 {
		return false
	}
	t := &b.t[i]
	overflowed := false
	for ; n > 0; n-- {
		if t.counter == 0xFFFF {
			t.counter = t.reload
			overflowed = true
			if t.irqEnabled() && b.irq != nil {
				b.irq.Request(overflowSource[i])
			}
		} else {
			t.counter++
		}
	}
	return overflowed
}
