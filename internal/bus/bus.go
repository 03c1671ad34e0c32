// Package bus implements the GBA's 28-bit demultiplexing memory gateway
// described in spec §4.5, following the teacher's address-range switch
// dispatch in bus.go (Read/Write over BIOS/WRAM/IO/PPU/cartridge ranges),
// generalized from DMG's 16-bit space to the GBA's 28-bit one and from a
// single CPU-cycle Tick loop to the shared internal/sched scheduler.
package bus

import (
	"github.com/tinygba/gba/internal/cart"
	"github.com/tinygba/gba/internal/dma"
	"github.com/tinygba/gba/internal/interrupt"
	"github.com/tinygba/gba/internal/keypad"
	"github.com/tinygba/gba/internal/ppu"
	"github.com/tinygba/gba/internal/sched"
	"github.com/tinygba/gba/internal/timer"
)

const (
	biosSize    = 16 * 1024
	onBoardSize = 256 * 1024
	onChipSize  = 32 * 1024
)

// Bus wires the whole address space together: BIOS, WRAM, I/O, PaletteRAM/
// VRAM/OAM (via PPU), DMA, Timers, Interrupts, Keypad, and cartridge ROM.
type Bus struct {
	bios []byte

	onBoardWRAM [onBoardSize]byte
	onChipWRAM  [onChipSize]byte

	cart *cart.ROM
	ppu  *ppu.PPU
	dma  *dma.Controller
	tim  *timer.Bank
	key  *keypad.Keypad
	irq  *interrupt.Controller
	sch  *sched.Scheduler

	waitcnt uint16
}

// New constructs a Bus wired to fresh PPU/DMA/Timer/Interrupt/Keypad units
// sharing the given scheduler. bios must be exactly 16 KiB; callers enforce
// the load-error taxonomy of spec §7 before calling New.
func New(bios []byte, rom *cart.ROM, sch *sched.Scheduler) *Bus {
	irq := interrupt.New()
	b := &Bus{
		bios: bios,
		cart: rom,
		irq:  irq,
		sch:  sch,
		tim:  timer.New(irq),
		key:  keypad.New(),
	}
	b.ppu = ppu.New(irq, sch)
	b.dma = dma.New(irq)
	b.ppu.OnHBlank = func() { b.dma.NotifyHBlank(b) }
	b.ppu.OnVBlank = func() { b.dma.NotifyVBlank(b) }
	return b
}

func (b *Bus) PPU() *ppu.PPU                     { return b.ppu }
func (b *Bus) Interrupts() *interrupt.Controller  { return b.irq }
func (b *Bus) Keypad() *keypad.Keypad             { return b.key }
func (b *Bus) Scheduler() *sched.Scheduler        { return b.sch }

// openBus8/16/32 implement the unmapped-region read policy of spec §7:
// reads return all-ones, with no dependence on prior bus activity.
func (b *Bus) openBus16() uint16 { return 0xFFFF }
func (b *Bus) openBus32() uint32 { return 0xFFFFFFFF }
func (b *Bus) openBus8() byte    { return 0xFF }

// Tick advances the scheduler (driving the PPU state machine and any due
// DMA/interrupt side effects) and the timer bank by cycles CPU-announced
// cycles (spec §2's control-flow summary).
func (b *Bus) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	b.sch.Advance(cycles)
	b.tim.Tick(cycles)
}

// SetKeypadState is the front-end's poll_input entry point (spec §6):
// pass a mask of currently pressed buttons (see package keypad constants).
func (b *Bus) SetKeypadState(mask uint16) {
	b.key.SetState(mask)
	b.checkKeypadIRQ()
}

func (b *Bus) checkKeypadIRQ() {
	if b.key.IRQTriggered() {
		b.irq.Request(interrupt.Keypad)
	}
}

// Read8/Read16/Read32 and Write8/Write16/Write32 implement the
// width-polymorphic bus access of spec §4.5. Addresses are masked to 28
// bits, then switched on the top nibble.

func (b *Bus) Read8(addr uint32) byte {
	addr &= 0x0FFFFFFF
	switch addr >> 24 {
	case 0x0:
		if int(addr) < len(b.bios) {
			return b.bios[addr]
		}
		return b.openBus8()
	case 0x2:
		return b.onBoardWRAM[addr&(onBoardSize-1)]
	case 0x3:
		return b.onChipWRAM[addr&(onChipSize-1)]
	case 0x4:
		h := b.readIO16(addr &^ 1)
		if addr&1 != 0 {
			return byte(h >> 8)
		}
		return byte(h)
	case 0x5:
		return b.ppu.ReadPRAM8(addr)
	case 0x6:
		return b.ppu.ReadVRAM8(addr)
	case 0x7:
		return b.ppu.ReadOAM8(addr)
	case 0x8, 0x9, 0xA, 0xB, 0xC, 0xD:
		return b.cart.Read8(addr & 0x01FFFFFF)
	default:
		return b.openBus8()
	}
}

func (b *Bus) Read16(addr uint32) uint16 {
	addr &= 0x0FFFFFFE
	switch addr >> 24 {
	case 0x0:
		if int(addr)+1 < len(b.bios) {
			return uint16(b.bios[addr]) | uint16(b.bios[addr+1])<<8
		}
		return b.openBus16()
	case 0x2:
		o := addr & (onBoardSize - 1)
		return uint16(b.onBoardWRAM[o]) | uint16(b.onBoardWRAM[o+1])<<8
	case 0x3:
		o := addr & (onChipSize - 1)
		return uint16(b.onChipWRAM[o]) | uint16(b.onChipWRAM[o+1])<<8
	case 0x4:
		return b.readIO16(addr)
	case 0x5:
		return b.ppu.ReadPRAM16(addr)
	case 0x6:
		return b.ppu.ReadVRAM16(addr)
	case 0x7:
		return b.ppu.ReadOAM16(addr)
	case 0x8, 0x9, 0xA, 0xB, 0xC, 0xD:
		return b.cart.Read16(addr & 0x01FFFFFF)
	default:
		return b.openBus16()
	}
}

func (b *Bus) Read32(addr uint32) uint32 {
	addr &= 0x0FFFFFFC
	switch addr >> 24 {
	case 0x0:
		if int(addr)+3 < len(b.bios) {
			return uint32(b.bios[addr]) | uint32(b.bios[addr+1])<<8 |
				uint32(b.bios[addr+2])<<16 | uint32(b.bios[addr+3])<<24
		}
		return b.openBus32()
	case 0x2:
		o := addr & (onBoardSize - 1)
		return uint32(b.onBoardWRAM[o]) | uint32(b.onBoardWRAM[o+1])<<8 |
			uint32(b.onBoardWRAM[o+2])<<16 | uint32(b.onBoardWRAM[o+3])<<24
	case 0x3:
		o := addr & (onChipSize - 1)
		return uint32(b.onChipWRAM[o]) | uint32(b.onChipWRAM[o+1])<<8 |
			uint32(b.onChipWRAM[o+2])<<16 | uint32(b.onChipWRAM[o+3])<<24
	case 0x4:
		return b.readIO32(addr)
	case 0x5:
		return b.ppu.ReadPRAM32(addr)
	case 0x6:
		return b.ppu.ReadVRAM32(addr)
	case 0x7:
		return b.ppu.ReadOAM32(addr)
	case 0x8, 0x9, 0xA, 0xB, 0xC, 0xD:
		return b.cart.Read32(addr & 0x01FFFFFF)
	default:
		return b.openBus32()
	}
}

func (b *Bus) Write8(addr uint32, v byte) {
	addr &= 0x0FFFFFFF
	switch addr >> 24 {
	case 0x2:
		b.onBoardWRAM[addr&(onBoardSize-1)] = v
	case 0x3:
		b.onChipWRAM[addr&(onChipSize-1)] = v
	case 0x4:
		// No register this core implements is meaningfully byte-writable;
		// spec §7 treats such partial accesses as dropped.
	case 0x5:
		b.ppu.WritePRAM8(addr, v)
	case 0x6:
		b.ppu.WriteVRAM8(addr, v)
	case 0x7:
		b.ppu.WriteOAM8(addr, v)
	default:
		// BIOS, cartridge, and unmapped regions drop byte writes (spec §7).
	}
}

func (b *Bus) Write16(addr uint32, v uint16) {
	addr &= 0x0FFFFFFE
	switch addr >> 24 {
	case 0x2:
		o := addr & (onBoardSize - 1)
		b.onBoardWRAM[o] = byte(v)
		b.onBoardWRAM[o+1] = byte(v >> 8)
	case 0x3:
		o := addr & (onChipSize - 1)
		b.onChipWRAM[o] = byte(v)
		b.onChipWRAM[o+1] = byte(v >> 8)
	case 0x4:
		b.writeIO16(addr, v)
	case 0x5:
		b.ppu.WritePRAM16(addr, v)
	case 0x6:
		b.ppu.WriteVRAM16(addr, v)
	case 0x7:
		b.ppu.WriteOAM16(addr, v)
	default:
	}
}

func (b *Bus) Write32(addr uint32, v uint32) {
	addr &= 0x0FFFFFFC
	switch addr >> 24 {
	case 0x2:
		o := addr & (onBoardSize - 1)
		b.onBoardWRAM[o] = byte(v)
		b.onBoardWRAM[o+1] = byte(v >> 8)
		b.onBoardWRAM[o+2] = byte(v >> 16)
		b.onBoardWRAM[o+3] = byte(v >> 24)
	case 0x3:
		o := addr & (onChipSize - 1)
		b.onChipWRAM[o] = byte(v)
		b.onChipWRAM[o+1] = byte(v >> 8)
		b.onChipWRAM[o+2] = byte(v >> 16)
		b.onChipWRAM[o+3] = byte(v >> 24)
	case 0x4:
		b.writeIO32(addr, v)
	case 0x5:
		b.ppu.WritePRAM32(addr, v)
	case 0x6:
		b.ppu.WriteVRAM32(addr, v)
	case 0x7:
		b.ppu.WriteOAM32(addr, v)
	default:
	}
}

// I/O register addresses (spec §6's "Selected I/O register map").
const (
	regDISPCNT  = 0x04000000
	regDISPSTAT = 0x04000004
	regVCOUNT   = 0x04000006
	regBG0CNT   = 0x04000008
	regBG1CNT   = 0x0400000A
	regBG2CNT   = 0x0400000C
	regBG3CNT   = 0x0400000E
	regKEYINPUT = 0x04000130
	regKEYCNT   = 0x04000132
	regIE       = 0x04000200
	regIF       = 0x04000202
	regWAITCNT  = 0x04000204
	regIME      = 0x04000208

	timerBase = 0x04000100
	timerEnd  = 0x04000110
	dmaBase   = 0x040000B0
	dmaEnd    = 0x040000E0
)

// readIO16 returns the halfword at the given I/O address. Every register
// this core implements is itself halfword-sized (spec §6); Read8/Read32
// compose on top of this for byte and word accesses.
func (b *Bus) readIO16(addr uint32) uint16 {
	switch {
	case addr == regDISPCNT:
		return b.ppu.DISPCNT()
	case addr == regDISPSTAT:
		return b.ppu.DISPSTAT()
	case addr == regVCOUNT:
		return b.ppu.VCOUNT()
	case addr == regBG0CNT:
		return b.ppu.BGCNT(0)
	case addr == regBG1CNT:
		return b.ppu.BGCNT(1)
	case addr == regBG2CNT:
		return b.ppu.BGCNT(2)
	case addr == regBG3CNT:
		return b.ppu.BGCNT(3)
	case addr == regKEYINPUT:
		return b.key.Read()
	case addr == regKEYCNT:
		return b.key.ReadCNT()
	case addr == regIE:
		return b.irq.IE()
	case addr == regIF:
		return b.irq.IF()
	case addr == regWAITCNT:
		return b.waitcnt
	case addr == regIME:
		if b.irq.IME() {
			return 1
		}
		return 0
	case addr >= timerBase && addr < timerEnd:
		n := int(addr-timerBase) / 4
		if (addr-timerBase)%4 < 2 {
			return b.tim.CounterRead(n)
		}
		return b.tim.ControlRead(n)
	case addr >= dmaBase && addr < dmaEnd:
		n := int(addr-dmaBase) / 12
		off := (addr - dmaBase) % 12
		if off == 0xA {
			return b.dma.ReadControl(n)
		}
		return 0 // SAD/DAD/CNT_L are write-only on real hardware
	default:
		return b.openBus16()
	}
}

func (b *Bus) writeIO16(addr uint32, v uint16) {
	switch {
	case addr == regDISPCNT:
		b.ppu.SetDISPCNT(v)
	case addr == regDISPSTAT:
		b.ppu.SetDISPSTAT(v)
	case addr == regBG0CNT:
		b.ppu.SetBGCNT(0, v)
	case addr == regBG1CNT:
		b.ppu.SetBGCNT(1, v)
	case addr == regBG2CNT:
		b.ppu.SetBGCNT(2, v)
	case addr == regBG3CNT:
		b.ppu.SetBGCNT(3, v)
	case addr == regKEYCNT:
		b.key.WriteCNT(v)
		b.checkKeypadIRQ()
	case addr == regIE:
		b.irq.SetIE(v)
	case addr == regIF:
		b.irq.WriteIF(v)
	case addr == regWAITCNT:
		b.waitcnt = v
	case addr == regIME:
		b.irq.SetIME(v)
	case addr >= timerBase && addr < timerEnd:
		n := int(addr-timerBase) / 4
		if (addr-timerBase)%4 < 2 {
			b.tim.ReloadWrite(n, v)
		} else {
			b.tim.ControlWrite(n, v)
		}
	case addr >= dmaBase && addr < dmaEnd:
		n := int(addr-dmaBase) / 12
		off := (addr - dmaBase) % 12
		switch off {
		case 0x0: // low halfword of SAD
			b.dma.WriteSAD(n, uint32(v)|b.dmaSADHi(n))
		case 0x2: // high halfword of SAD
			b.dma.WriteSAD(n, uint32(v)<<16|b.dmaSADLo(n))
		case 0x4: // low halfword of DAD
			b.dma.WriteDAD(n, uint32(v)|b.dmaDADHi(n))
		case 0x6: // high halfword of DAD
			b.dma.WriteDAD(n, uint32(v)<<16|b.dmaDADLo(n))
		case 0x8:
			b.dma.WriteCount(n, v)
		case 0xA:
			b.dma.WriteControl(n, v, b)
		}
	default:
		// unmapped/unlisted: dropped (spec §7)
	}
}

// readIO32/writeIO32 handle the 32-bit DMA source/destination registers
// directly (rather than decomposing into two independent 16-bit register
// writes, which would be wrong for a register that is genuinely one
// 32-bit word); every other I/O register composes from two readIO16/
// writeIO16 halves.
func (b *Bus) readIO32(addr uint32) uint32 {
	if addr >= dmaBase && addr < dmaEnd {
		off := (addr - dmaBase) % 12
		if off == 0x0 || off == 0x4 {
			return 0 // SAD/DAD are write-only
		}
	}
	lo := uint32(b.readIO16(addr))
	hi := uint32(b.readIO16(addr + 2))
	return lo | hi<<16
}

func (b *Bus) writeIO32(addr uint32, v uint32) {
	if addr >= dmaBase && addr < dmaEnd {
		n := int(addr-dmaBase) / 12
		off := (addr - dmaBase) % 12
		switch off {
		case 0x0:
			b.dma.WriteSAD(n, v)
			return
		case 0x4:
			b.dma.WriteDAD(n, v)
			return
		}
	}
	b.writeIO16(addr, uint16(v))
	b.writeIO16(addr+2, uint16(v>>16))
}

// dmaSADLo/dmaSADHi/dmaDADLo/dmaDADHi read back the channel's last-written
// 32-bit source/destination register so a 16-bit half-write can be
// merged with its still-latched other half.
func (b *Bus) dmaSADLo(n int) uint32 { return b.dma.SAD(n) & 0xFFFF }
func (b *Bus) dmaSADHi(n int) uint32 { return b.dma.SAD(n) &^ 0xFFFF }
func (b *Bus) dmaDADLo(n int) uint32 { return b.dma.DAD(n) & 0xFFFF }
func (b *Bus) dmaDADHi(n int) uint32 { return b.dma.DAD(n) &^ 0xFFFF }
