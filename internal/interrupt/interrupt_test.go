package interrupt

import "testing"

func TestRequestAndAck(t *testing.T) {
	c := New()
	c.Request(Timer0)
	if c.IF() != uint16(Timer0) {
		t.Fatalf("IF got %#x want %#x", c.IF(), Timer0)
	}
	c.WriteIF(uint16(Timer0))
	if c.IF() != 0 {
		t.Fatalf("IF after ack got %#x want 0", c.IF())
	}
}

func TestPendingRequiresIMEandIE(t *testing.T) {
	c := New()
	c.Request(VBlank)
	if c.Pending() {
		t.Fatalf("should not be pending: IME and IE both unset")
	}
	c.SetIE(uint16(VBlank))
	if c.Pending() {
		t.Fatalf("should not be pending: IME unset")
	}
	c.SetIME(1)
	if !c.Pending() {
		t.Fatalf("should be pending now")
	}
}

func TestWriteIFIsW1C(t *testing.T) {
	c := New()
	c.Request(VBlank)
	c.Request(Timer0)
	old := c.IF()
	c.WriteIF(uint16(HBlank)) // clearing an unset bit should not affect others
	if c.IF() != old {
		t.Fatalf("clearing unset bit changed IF: got %#x want %#x", c.IF(), old)
	}
}
