package gba

import (
	"testing"

	"github.com/tinygba/gba/internal/cart"
	"github.com/tinygba/gba/internal/keypad"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	bios := make([]byte, BIOSSize)
	rom, err := cart.Load(make([]byte, 0x1000))
	if err != nil {
		t.Fatalf("cart.Load: %v", err)
	}
	m, err := New(bios, rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewRejectsWrongSizedBIOS(t *testing.T) {
	rom, _ := cart.Load(make([]byte, 0x1000))
	if _, err := New(make([]byte, 100), rom); err != ErrBadBIOS {
		t.Fatalf("New with short bios: got %v want ErrBadBIOS", err)
	}
}

func TestStepAdvancesPC(t *testing.T) {
	m := newTestMachine(t)
	before := m.CPU().PC()
	m.Step()
	if got := m.CPU().PC(); got != before+4 {
		t.Fatalf("PC after one ARM step: got %#x want %#x", got, before+4)
	}
}

func TestButtonsMaskRoundTrip(t *testing.T) {
	b := Buttons{A: true, Up: true}
	mask := b.Mask()
	if mask&keypad.A == 0 || mask&keypad.Up == 0 {
		t.Fatalf("Mask() missing expected bits: %#x", mask)
	}
	if mask&keypad.B != 0 {
		t.Fatalf("Mask() set unexpected bit B: %#x", mask)
	}
}

func TestSetButtonsReachesKeypadRegister(t *testing.T) {
	m := newTestMachine(t)
	m.SetButtons(Buttons{A: true})
	// KEYINPUT is active-low: pressed buttons read back as 0 bits.
	if got := m.Bus().Keypad().Read(); got&keypad.A != 0 {
		t.Fatalf("KEYINPUT A bit got set(1) want pressed(0): %#x", got)
	}
}

func TestFramebufferSizeMatchesScreen(t *testing.T) {
	m := newTestMachine(t)
	fb := m.Framebuffer()
	if len(fb) != 240*160 {
		t.Fatalf("framebuffer length got %d want %d", len(fb), 240*160)
	}
}
