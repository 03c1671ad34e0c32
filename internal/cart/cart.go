// Package cart implements the read-only CartridgeROM region described in
// spec §2/§4.5/§6, following the bounds-checked byte-slice shape of the
// teacher's cart.ROMOnly, adapted to the GBA's flat 32 MiB address space:
// GBA ROM is addressed directly with no MBC-style bank switching to
// emulate, so the interface collapses to a single read-only blob.
package cart

import "errors"

const (
	// MaxSize is the largest cartridge ROM the bus's 0x8 region can address
	// (spec §2: "Cartridge ROM (up to 32 MiB)").
	MaxSize = 32 * 1024 * 1024

	titleStart = 0xA0
	titleEnd   = 0xAC // exclusive
)

// ErrEmpty is returned by Load when given a zero-length image (spec §6:
// cartridge images must be 1 B - 32 MiB).
var ErrEmpty = errors.New("cart: empty ROM image")

// ErrTooLarge is returned by Load when the image exceeds MaxSize.
var ErrTooLarge = errors.New("cart: ROM image exceeds 32 MiB")

// ROM is the read-only cartridge ROM backing store.
type ROM struct {
	data []byte
}

// Load validates and wraps a raw GBA ROM image.
func Load(data []byte) (*ROM, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	return &ROM{data: data}, nil
}

// Read8/Read16/Read32 return bytes from ROM. Out-of-range reads return 0,
// the open-bus approximation required by spec §4.5.
func (r *ROM) Read8(addr uint32) byte {
	if int(addr) >= len(r.data) {
		return 0
	}
	return r.data[addr]
}

func (r *ROM) Read16(addr uint32) uint16 {
	addr &^= 1
	lo := uint16(r.Read8(addr))
	hi := uint16(r.Read8(addr + 1))
	return lo | hi<<8
}

func (r *ROM) Read32(addr uint32) uint32 {
	addr &^= 3
	lo := uint32(r.Read16(addr))
	hi := uint32(r.Read16(addr + 2))
	return lo | hi<<16
}

// Len returns the size of the loaded image in bytes.
func (r *ROM) Len() int { return len(r.data) }

// Title extracts the 12-byte ASCII game title at offset 0xA0 (spec §6),
// surfaced to the front-end for window-title use and otherwise unused by
// the core.
func (r *ROM) Title() string {
	if len(r.data) < titleEnd {
		return ""
	}
	raw := r.data[titleStart:titleEnd]
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end])
}
