package keypad

import "testing"

func TestReadIsActiveLow(t *testing.T) {
	k := New()
	if got := k.Read(); got != allButtons {
		t.Fatalf("no buttons pressed: got %#x want %#x", got, allButtons)
	}
	k.SetState(A | Up)
	got := k.Read()
	if got&A != 0 || got&Up != 0 {
		t.Fatalf("pressed bits must read as 0: got %#x", got)
	}
	if got&B == 0 {
		t.Fatalf("unpressed B bit must read as 1: got %#x", got)
	}
}

func TestIRQTriggeredRespectsEnableBit(t *testing.T) {
	k := New()
	k.SetState(A)
	k.WriteCNT(A) // selects A, bit 14 (IRQ enable) clear
	if k.IRQTriggered() {
		t.Fatalf("IRQ must not trigger when KEYCNT enable bit is clear")
	}
}

func TestIRQTriggeredOR(t *testing.T) {
	k := New()
	k.SetState(A)
	k.WriteCNT(A | B | 1<<14) // OR mode (bit 15 clear): any of A,B pressed
	if !k.IRQTriggered() {
		t.Fatalf("OR condition should trigger with A pressed")
	}
}

func TestIRQTriggeredAND(t *testing.T) {
	k := New()
	k.SetState(A)
	k.WriteCNT(A | B | 1<<14 | 1<<15) // AND mode: both A and B must be pressed
	if k.IRQTriggered() {
		t.Fatalf("AND condition must not trigger with only A pressed")
	}
	k.SetState(A | B)
	if !k.IRQTriggered() {
		t.Fatalf("AND condition should trigger with both A and B pressed")
	}
}
