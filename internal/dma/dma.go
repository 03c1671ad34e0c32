// Package dma implements the four GBA DMA channels described in spec §4.5,
// following the teacher's OAM-DMA register dispatch in bus.go (a byte
// register that triggers an immediate block copy on write), generalized
// to four independently configured channels with source/destination
// address-control behaviors.
package dma

import "github.com/tinygba/gba/internal/interrupt"

// Address-control field values for SAD/DAD (spec §4.5).
const (
	ctrlIncrement = 0
	ctrlDecrement = 1
	ctrlFixed     = 2
	ctrlReload    = 3 // destination only: increment, reload to base at transfer start
)

// Start-timing field values within DMAn_CNT_H bits 12-13.
const (
	TimingImmediate = 0
	TimingVBlank    = 1
	TimingHBlank    = 2
	TimingSpecial   = 3
)

var irqSource = [4]interrupt.Source{interrupt.DMA0, interrupt.DMA1, interrupt.DMA2, interrupt.DMA3}

// Bus is the narrow memory interface a channel needs to perform a transfer.
// internal/bus.Bus satisfies this.
type Bus interface {
	Read8(addr uint32) byte
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, v byte)
	Write16(addr uint32, v uint16)
	Write32(addr uint32, v uint32)
}

// channel holds one DMA unit's registers. src/dst are the live internal
// registers (28-bit masking applied when the channel is armed);
// srcReg/dstReg are the raw written values, latched into src/dst when the
// enable bit goes 0->1. A repeating channel continues from where its
// previous transfer left off; only a reload-mode destination is re-read
// from dstReg after each transfer.
type channel struct {
	srcReg, dstReg uint32
	count          uint16
	control        uint16

	src, dst uint32
}

func (c *channel) enabled() bool   { return c.control&(1<<15) != 0 }
func (c *channel) repeat() bool    { return c.control&(1<<9) != 0 }
func (c *channel) wordSize() bool  { return c.control&(1<<10) != 0 } // true = 32-bit
func (c *channel) irqEnabled() bool { return c.control&(1<<14) != 0 }
func (c *channel) timing() int     { return int(c.control>>12) & 0x3 }
func (c *channel) dstControl() int { return int(c.control>>5) & 0x3 }
func (c *channel) srcControl() int { return int(c.control>>7) & 0x3 }

// srcMask is the address mask applied to both the source and the
// destination register when a channel is armed: 28 bits for every channel.
// Narrower per-channel address widths are not modelled.
func (c *channel) srcMask() uint32 { return 0x0FFFFFFF }

// Controller is the four-channel DMA unit wired into the bus's I/O
// dispatch at 0x40000B0 + 12*n (spec §6).
type Controller struct {
	ch  [4]channel
	irq *interrupt.Controller
}

// New returns a Controller with all channels disabled, wired to irq for
// completion requests.
func New(irq *interrupt.Controller) *Controller {
	return &Controller{irq: irq}
}

// WriteSAD/WriteDAD/WriteCount/WriteControl implement the four register
// halves of channel n. Addresses are masked per spec §4.5 at the point a
// transfer is (re)armed, not at write time, matching real hardware's
// write-then-latch behavior.

func (d *Controller) WriteSAD(n int, v uint32)  { d.ch[n].srcReg = v }
func (d *Controller) WriteDAD(n int, v uint32)  { d.ch[n].dstReg = v }
func (d *Controller) WriteCount(n int, v uint16) { d.ch[n].count = v }

// SAD/DAD return the raw last-written source/destination registers, used
// by the bus to merge a 16-bit half-write into the still-latched other
// half of the 32-bit register.
func (d *Controller) SAD(n int) uint32 { return d.ch[n].srcReg }
func (d *Controller) DAD(n int) uint32 { return d.ch[n].dstReg }

// ReadControl returns DMAn_CNT_H.
func (d *Controller) ReadControl(n int) uint16 { return d.ch[n].control }

// WriteControl writes DMAn_CNT_H. A 0->1 transition of the enable bit
// arms the channel: if start-timing is Immediate, the transfer fires
// synchronously against bus; otherwise the channel only fires when
// NotifyVBlank/NotifyHBlank is called while armed. Special timing is
// accepted and stored but never fires a transfer.
func (d *Controller) WriteControl(n int, v uint16, bus Bus) {
	c := &d.ch[n]
	wasEnabled := c.enabled()
	c.control = v
	if !wasEnabled && c.enabled() {
		d.arm(n)
		if c.timing() == TimingImmediate {
			d.fire(n, bus)
		}
	}
}

// arm latches the live src/dst registers from the raw written values,
// applying the channel's address mask (spec §4.5).
func (d *Controller) arm(n int) {
	c := &d.ch[n]
	c.src = c.srcReg & c.srcMask()
	c.dst = c.dstReg & c.srcMask()
}

// NotifyVBlank and NotifyHBlank fire any armed channel whose start-timing
// matches, called by the PPU's scanline scheduler at the corresponding
// edges (SPEC_FULL §D.4).
func (d *Controller) NotifyVBlank(bus Bus) { d.fireTiming(TimingVBlank, bus) }
func (d *Controller) NotifyHBlank(bus Bus) { d.fireTiming(TimingHBlank, bus) }

func (d *Controller) fireTiming(timing int, bus Bus) {
	for n := 0; n < 4; n++ {
		c := &d.ch[n]
		if c.enabled() && c.timing() == timing {
			d.fire(n, bus)
		}
	}
}

// fire performs the full word_count-unit block copy for channel n, then
// clears the enable bit unless repeat is set and the timing is not
// Immediate (in which case the channel fires again at the next matching
// timing edge).
func (d *Controller) fire(n int, bus Bus) {
	c := &d.ch[n]
	count := int(c.count)
	if count == 0 {
		count = 0x10000
	}

	unit := uint32(2)
	if c.wordSize() {
		unit = 4
	}

	src, dst := c.src, c.dst
	for i := 0; i < count; i++ {
		if c.wordSize() {
			bus.Write32(dst, bus.Read32(src))
		} else {
			bus.Write16(dst, bus.Read16(src))
		}
		src = stepAddr(src, c.srcControl(), unit)
		dst = stepAddr(dst, c.dstControl(), unit)
	}
	c.src = src
	c.dst = dst

	if c.dstControl() == ctrlReload {
		c.dst = c.dstReg & c.srcMask()
	}

	if c.irqEnabled() && d.irq != nil {
		d.irq.Request(irqSource[n])
	}

	if !c.repeat() || c.timing() == TimingImmediate {
		c.control &^= 1 << 15
	}
}

func stepAddr(addr uint32, ctrl int, unit uint32) uint32 {
	switch ctrl {
	case ctrlIncrement, ctrlReload:
		return addr + unit
	case ctrlDecrement:
		return addr - unit
	default: // ctrlFixed
		return addr
	}
}
