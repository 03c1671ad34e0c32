package bits

import "testing"

func TestRange(t *testing.T) {
	v := uint32(0xABCD1234)
	if got := Range(v, 31, 28); got != 0xA {
		t.Fatalf("Range(31,28) got %x want A", got)
	}
	if got := Range(v, 3, 0); got != 0x4 {
		t.Fatalf("Range(3,0) got %x want 4", got)
	}
}

func TestSet(t *testing.T) {
	v := uint32(0x80000001)
	if !Set(v, 31) {
		t.Fatalf("bit 31 should be set")
	}
	if Set(v, 30) {
		t.Fatalf("bit 30 should be clear")
	}
}

func TestRor32(t *testing.T) {
	if got := Ror32(0x12345678, 0); got != 0x12345678 {
		t.Fatalf("ror by 0 should be identity, got %x", got)
	}
	if got := Ror32(0x1, 1); got != 0x80000000 {
		t.Fatalf("ror(1,1) got %x want 80000000", got)
	}
	if got := Ror32(0x12345678, 32); got != 0x12345678 {
		t.Fatalf("ror by 32 should be identity, got %x", got)
	}
}

func TestSignExtend32(t *testing.T) {
	if got := SignExtend32(0x7FF, 12); got != 0x7FF {
		t.Fatalf("positive 12-bit value should be preserved, got %d", got)
	}
	if got := SignExtend32(0xFFF, 12); got != -1 {
		t.Fatalf("all-ones 12-bit value should sign-extend to -1, got %d", got)
	}
	// low bits preserved
	if got := SignExtend32(0x801, 12); got != -2047 {
		t.Fatalf("sign_extend should preserve low bits, got %d", got)
	}
}

func TestShifts(t *testing.T) {
	if Lsl32(1, 32) != 0 {
		t.Fatalf("LSL by 32 should be 0")
	}
	if Lsr32(1, 32) != 0 {
		t.Fatalf("LSR by 32 should be 0")
	}
	if Asr32(0x80000000, 32) != 0xFFFFFFFF {
		t.Fatalf("ASR by 32 of negative should be all-ones")
	}
	if Asr32(0x7FFFFFFF, 32) != 0 {
		t.Fatalf("ASR by 32 of positive should be 0")
	}
}
