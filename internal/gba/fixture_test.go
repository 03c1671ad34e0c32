package gba

import (
	"os"
	"testing"

	"github.com/tinygba/gba/internal/cart"
)

// runFixture loads a testdata/*.gba fixture and steps it until the
// well-known status marker at 0x02000000 becomes non-zero (the convention
// cmd/gbarunner also uses), or maxSteps is exceeded.
func runFixture(t *testing.T, path string, maxSteps int) byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	rom, err := cart.Load(data)
	if err != nil {
		t.Fatalf("cart.Load: %v", err)
	}
	m, err := New(make([]byte, BIOSSize), rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < maxSteps; i++ {
		m.Step()
		if status := m.Bus().Read8(0x02000000); status != 0 {
			return status
		}
	}
	t.Fatalf("fixture %s did not signal completion within %d steps", path, maxSteps)
	return 0
}

func TestFixtureImmediateStore(t *testing.T) {
	if got := runFixture(t, "../../testdata/pass_immediate_store.gba", 100); got != 1 {
		t.Fatalf("status got %d want 1 (pass)", got)
	}
}

func TestFixtureThumbBXSwitch(t *testing.T) {
	if got := runFixture(t, "../../testdata/pass_thumb_bx_switch.gba", 100); got != 1 {
		t.Fatalf("status got %d want 1 (pass)", got)
	}
}
