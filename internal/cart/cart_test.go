package cart

import "testing"

func TestLoadRejectsEmpty(t *testing.T) {
	if _, err := Load(nil); err != ErrEmpty {
		t.Fatalf("got %v want ErrEmpty", err)
	}
}

func TestLoadRejectsOversize(t *testing.T) {
	big := make([]byte, MaxSize+1)
	if _, err := Load(big); err != ErrTooLarge {
		t.Fatalf("got %v want ErrTooLarge", err)
	}
}

func TestReadOpenBusZero(t *testing.T) {
	r, err := Load([]byte{0x01, 0x02, 0x03, 0x04})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := r.Read8(10); got != 0 {
		t.Fatalf("out-of-range Read8 got %#x want 0", got)
	}
	if got := r.Read32(0); got != 0x04030201 {
		t.Fatalf("Read32 got %#x want 0x04030201", got)
	}
}

func TestReadAlignment(t *testing.T) {
	r, _ := Load([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	if got := r.Read16(1); got != r.Read16(0) {
		t.Fatalf("Read16 should truncate odd addr down: got %#x want %#x", got, r.Read16(0))
	}
	if got := r.Read32(3); got != r.Read32(0) {
		t.Fatalf("Read32 should truncate to word: got %#x want %#x", got, r.Read32(0))
	}
}

func TestTitleTrimsTrailingZeros(t *testing.T) {
	data := make([]byte, 0xC0)
	copy(data[titleStart:], []byte("POKEMON\x00\x00\x00\x00\x00"))
	r, _ := Load(data)
	if got := r.Title(); got != "POKEMON" {
		t.Fatalf("Title() got %q want %q", got, "POKEMON")
	}
}

func TestTitleShortImage(t *testing.T) {
	r, _ := Load([]byte{0x01})
	if got := r.Title(); got != "" {
		t.Fatalf("Title() on short image got %q want empty", got)
	}
}

func TestLen(t *testing.T) {
	r, _ := Load(make([]byte, 128))
	if r.Len() != 128 {
		t.Fatalf("Len() got %d want 128", r.Len())
	}
}
