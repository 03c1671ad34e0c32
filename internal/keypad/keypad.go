// Package keypad models the GBA KEYINPUT register: a 10-bit button state
// with the inverted convention (0 = pressed) described in spec §2/§6.
package keypad

// Button bit positions within KEYINPUT / KEYCNT (spec §6).
const (
	A = 1 << iota
	B
	Select
	Start
	Right
	Left
	Up
	Down
	R
	L
)

const allButtons = 0x3FF

// Keypad holds the 10-bit pressed-button state. Bits set mean "pressed" in
// the external API; Read() inverts them for the hardware register
// convention.
type Keypad struct {
	pressed uint16

	// KEYCNT (0x04000132): bits 0-9 select buttons, bit 14 enables the
	// IRQ condition, bit 15 chooses AND (all selected pressed) vs OR (any).
	cnt uint16
}

// New returns a Keypad with no buttons pressed.
func New() *Keypad {
	return &Keypad{}
}

// SetState replaces the set of pressed buttons (bits from the constants
// above; set = pressed), e.g. from the front-end's poll_input callback.
func (k *Keypad) SetState(mask uint16) {
	k.pressed = mask & allButtons
}

// Read returns the KEYINPUT register value: inverted, so a pressed button
// reads as 0.
func (k *Keypad) Read() uint16 {
	return ^k.pressed & allButtons
}

// ReadCNT returns KEYCNT.
func (k *Keypad) ReadCNT() uint16 { return k.cnt }

// WriteCNT writes KEYCNT.
func (k *Keypad) WriteCNT(v uint16) { k.cnt = v & 0xC3FF }

// IRQTriggered reports whether the current button state satisfies the
// KEYCNT IRQ condition (supplemental keypad-interrupt feature, SPEC_FULL
// §D.4): bit 14 enables it, bit 15 selects AND (all selected buttons
// pressed) vs OR (any selected button pressed).
func (k *Keypad) IRQTriggered() bool {
	if k.cnt&(1<<14) == 0 {
		return false
	}
	sel := k.cnt & allButtons
	if sel == 0 {
		return false
	}
	if k.cnt&(1<<15) != 0 {
		return k.pressed&sel == sel
	}
	return k.pressed&sel != 0
}
