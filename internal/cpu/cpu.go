// Package cpu implements the ARM7TDMI interpreter of spec §4.6-§4.9: a
// dual-instruction-set (ARM/Thumb) decoder and executor driving the shared
// memory bus, following the teacher's bus-owning, cycle-reporting Step()
// shape (deferred Bus.Tick, interrupt check at the top of the method)
// generalized from DMG's 8-bit SM83 core to the ARM7TDMI's banked-register,
// dual-state machine.
package cpu

import "github.com/tinygba/gba/internal/bus"

// CPU couples the architectural register file to the bus it drives.
type CPU struct {
	Registers
	bus *bus.Bus

	halted bool
}

// New returns a CPU wired to b, in the post-reset state of spec §8.
func New(b *bus.Bus) *CPU {
	c := &CPU{bus: b}
	c.Reset()
	return c
}

// Bus returns the memory bus this CPU drives.
func (c *CPU) Bus() *bus.Bus { return c.bus }

// SetFetchAddr repositions the fetch pointer directly (used by front-ends
// or tests to start execution somewhere other than the BIOS entry point).
func (c *CPU) SetFetchAddr(addr uint32) {
	c.SetFetchPC(addr)
	c.SetCurrentInstrAddr(addr)
}

// Halted reports whether the CPU is in the low-power wait state entered by
// the BIOS Halt SWI convention; woken by any enabled pending interrupt.
func (c *CPU) Halted() bool     { return c.halted }
func (c *CPU) SetHalted(v bool) { c.halted = v }

// fetch32/fetch16 read the opcode at the current fetch pointer and advance
// the fetch pointer by the instruction width.
func (c *CPU) fetch32() uint32 {
	addr := c.PC()
	op := c.bus.Read32(addr)
	c.SetFetchPC(addr + 4)
	return op
}

func (c *CPU) fetch16() uint16 {
	addr := c.PC()
	op := c.bus.Read16(addr)
	c.SetFetchPC(addr + 2)
	return op
}

// Step executes exactly one instruction (or services a pending IRQ) per
// spec §4.9, and returns the number of cycles consumed. Cycle costs here
// are a coarse per-instruction estimate; this core does not model
// cycle-accurate bus timing (explicitly out of scope).
func (c *CPU) Step() (cycles int) {
	defer func() { c.bus.Tick(cycles) }()

	if !c.IRQDisabled() && c.bus.Interrupts().Pending() {
		// No instruction has been fetched yet this Step(): currentInstrAddr
		// still holds the previous instruction's address. raiseException's
		// LR computation reads PCValue(), which is defined in terms of
		// currentInstrAddr, so point it at the about-to-execute instruction
		// (the current fetch pointer) rather than leaving it stale —
		// otherwise LR_irq comes out one instruction short and the
		// handler's standard SUBS PC,LR,#4 return re-executes an
		// already-completed instruction instead of the pending one.
		c.SetCurrentInstrAddr(c.PC())
		c.raiseException(ModeIRQ, 0x00000018)
		return 3
	}

	if c.halted {
		if c.bus.Interrupts().Pending() {
			c.halted = false
		}
		return 1
	}

	instrAddr := c.PC()
	c.SetCurrentInstrAddr(instrAddr)

	if c.Thumb() {
		op := c.fetch16()
		tag := decodeThumb(op)
		c.execThumb(tag, op)
		return thumbCycles(tag)
	}

	op := c.fetch32()
	cond := op >> 28
	if !condPass(cond, c.N(), c.Z(), c.C(), c.V()) {
		return 1
	}
	tag := decodeARM(op)
	return c.execARM(tag, op)
}

// execARM dispatches a decoded ARM opcode and returns its cycle estimate.
func (c *CPU) execARM(tag armTag, op uint32) int {
	switch tag {
	case tagSoftwareInterrupt:
		c.execSoftwareInterrupt()
		return 3
	case tagCoprocDataOp, tagCoprocRegTransfer, tagCoprocDataTransfer:
		// The GBA has no coprocessor; these trap as undefined (spec §7).
		c.raiseUndefined()
		return 3
	case tagBranch:
		c.execBranch(op)
		return 3
	case tagBlockDataTransfer:
		c.execBlockDataTransfer(op)
		return 3
	case tagUndefined:
		c.raiseUndefined()
		return 3
	case tagSingleDataTransfer:
		c.execSingleDataTransfer(op)
		return 2
	case tagHalfwordTransferImm:
		c.execHalfwordTransfer(op, true)
		return 2
	case tagHalfwordTransferReg:
		c.execHalfwordTransfer(op, false)
		return 2
	case tagBranchAndExchange:
		c.execBranchExchange(op)
		return 3
	case tagSingleDataSwap:
		c.execSingleDataSwap(op)
		return 3
	case tagMultiplyLong:
		c.execMultiplyLong(op)
		return 4
	case tagMultiply:
		c.execMultiply(op)
		return 2
	case tagDataProcessing:
		c.execDataProcessingOrPSR(op)
		return 1
	default:
		c.raiseUndefined()
		return 3
	}
}

// thumbCycles gives a coarse cycle estimate per Thumb class, in the same
// spirit as execARM's estimates.
func thumbCycles(tag thumbTag) int {
	switch tag {
	case thumbPCRelLoad, thumbLoadStoreReg, thumbLoadStoreSigned,
		thumbLoadStoreImm, thumbLoadStoreHalf, thumbSPRelLoadStore:
		return 2
	case thumbPushPop, thumbMultiLoadStore:
		return 3
	case thumbCondBranch, thumbUncondBranch, thumbLongBranchLink, thumbSWI:
		return 3
	default:
		return 1
	}
}
