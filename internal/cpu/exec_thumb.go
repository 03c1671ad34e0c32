package cpu

// execThumb dispatches a decoded 16-bit Thumb opcode to its handler. All
// Thumb operations map onto the same ARM-equivalent semantics (spec §4.8).
func (c *CPU) execThumb(tag thumbTag, op uint16) {
	switch tag {
	case thumbMoveShifted:
		c.thumbMoveShiftedExec(op)
	case thumbAddSub:
		c.thumbAddSubExec(op)
	case thumbImmediate:
		c.thumbImmediateExec(op)
	case thumbALU:
		c.thumbALUExec(op)
	case thumbHiRegBX:
		c.thumbHiRegBXExec(op)
	case thumbPCRelLoad:
		c.thumbPCRelLoadExec(op)
	case thumbLoadStoreReg:
		c.thumbLoadStoreRegExec(op)
	case thumbLoadStoreSigned:
		c.thumbLoadStoreSignedExec(op)
	case thumbLoadStoreImm:
		c.thumbLoadStoreImmExec(op)
	case thumbLoadStoreHalf:
		c.thumbLoadStoreHalfExec(op)
	case thumbSPRelLoadStore:
		c.thumbSPRelLoadStoreExec(op)
	case thumbLoadAddress:
		c.thumbLoadAddressExec(op)
	case thumbAddOffsetSP:
		c.thumbAddOffsetSPExec(op)
	case thumbPushPop:
		c.thumbPushPopExec(op)
	case thumbMultiLoadStore:
		c.thumbMultiLoadStoreExec(op)
	case thumbCondBranch:
		c.thumbCondBranchExec(op)
	case thumbSWI:
		c.execSoftwareInterrupt()
	case thumbUncondBranch:
		c.thumbUncondBranchExec(op)
	case thumbLongBranchLink:
		c.thumbLongBranchLinkExec(op)
	default:
		c.raiseUndefined()
	}
}

// Format 1: move shifted register. LSL/LSR/ASR Rd, Rs, #offset5. Carry-out
// of the shift feeds the C flag; Z/N come from the result (spec §4.8/§9:
// the zero-amount special cases follow the ARMv4T barrel shifter exactly).
func (c *CPU) thumbMoveShiftedExec(op uint16) {
	shiftType := uint32(op>>11) & 0x3
	amount := uint32(op>>6) & 0x1F
	rs := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)

	result, carry := shiftByImmediate(c.R(rs), shiftType, amount, c.C())
	c.SetR(rd, result)
	c.SetNZCV(result&0x80000000 != 0, result == 0, carry, c.V())
}

// Format 2: add/subtract. ADD/SUB Rd, Rs, Rn or #imm3.
func (c *CPU) thumbAddSubExec(op uint16) {
	immediate := op&(1<<10) != 0
	sub := op&(1<<9) != 0
	rn := uint32((op >> 6) & 0x7)
	rs := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)

	var operand uint32
	if immediate {
		operand = rn
	} else {
		operand = c.R(uint(rn))
	}

	var result uint32
	var carry, overflow bool
	if sub {
		result, carry, overflow = subFlags(c.R(rs), operand)
	} else {
		result, carry, overflow = addFlags(c.R(rs), operand)
	}
	c.SetR(rd, result)
	c.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
}

// Format 3: move/compare/add/subtract immediate.
func (c *CPU) thumbImmediateExec(op uint16) {
	opcode := (op >> 11) & 0x3
	rd := uint((op >> 8) & 0x7)
	imm := uint32(op & 0xFF)

	switch opcode {
	case 0x0: // MOV
		c.SetR(rd, imm)
		c.SetNZCV(false, imm == 0, c.C(), c.V())
	case 0x1: // CMP
		result, carry, overflow := subFlags(c.R(rd), imm)
		c.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
	case 0x2: // ADD
		result, carry, overflow := addFlags(c.R(rd), imm)
		c.SetR(rd, result)
		c.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
	case 0x3: // SUB
		result, carry, overflow := subFlags(c.R(rd), imm)
		c.SetR(rd, result)
		c.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
	}
}

// Format 4: ALU operations, Rd, Rs (both in R0-R7).
func (c *CPU) thumbALUExec(op uint16) {
	opcode := (op >> 6) & 0xF
	rs := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)
	a, b := c.R(rd), c.R(rs)

	var result uint32
	carry, overflow := c.C(), c.V()
	writesRd := true

	switch opcode {
	case 0x0: // AND
		result = a & b
	case 0x1: // EOR
		result = a ^ b
	case 0x2: // LSL
		result, carry = shiftByRegister(a, shiftLSL, b&0xFF, c.C())
	case 0x3: // LSR
		result, carry = shiftByRegister(a, shiftLSR, b&0xFF, c.C())
	case 0x4: // ASR
		result, carry = shiftByRegister(a, shiftASR, b&0xFF, c.C())
	case 0x5: // ADC
		result, carry, overflow = adcFlags(a, b, c.C())
	case 0x6: // SBC
		result, carry, overflow = sbcFlags(a, b, c.C())
	case 0x7: // ROR
		result, carry = shiftByRegister(a, shiftROR, b&0xFF, c.C())
	case 0x8: // TST
		result = a & b
		writesRd = false
	case 0x9: // NEG
		result, carry, overflow = subFlags(0, b)
	case 0xA: // CMP
		result, carry, overflow = subFlags(a, b)
		writesRd = false
	case 0xB: // CMN
		result, carry, overflow = addFlags(a, b)
		writesRd = false
	case 0xC: // ORR
		result = a | b
	case 0xD: // MUL
		result = a * b
	case 0xE: // BIC
		result = a &^ b
	case 0xF: // MVN
		result = ^b
	}

	c.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
	if writesRd {
		c.SetR(rd, result)
	}
}

// Format 5: Hi register operations and branch/exchange, reaching R8-R15.
func (c *CPU) thumbHiRegBXExec(op uint16) {
	opcode := (op >> 8) & 0x3
	h1 := op&(1<<7) != 0
	h2 := op&(1<<6) != 0
	rs := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)
	if h2 {
		rs += 8
	}
	if h1 {
		rd += 8
	}

	switch opcode {
	case 0x0: // ADD
		c.SetR(rd, c.R(rd)+c.R(rs))
	case 0x1: // CMP
		result, carry, overflow := subFlags(c.R(rd), c.R(rs))
		c.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
	case 0x2: // MOV
		c.SetR(rd, c.R(rs))
	case 0x3: // BX
		c.BranchExchange(c.R(rs))
	}
}

// Format 6: PC-relative load. LDR Rd, [PC, #imm8*4]; PC is word-aligned
// before the offset is applied.
func (c *CPU) thumbPCRelLoadExec(op uint16) {
	rd := uint((op >> 8) & 0x7)
	imm := uint32(op&0xFF) << 2
	base := c.PCValue() &^ 3
	c.SetR(rd, c.bus.Read32(base+imm))
}

// Format 7: load/store with register offset.
func (c *CPU) thumbLoadStoreRegExec(op uint16) {
	load := op&(1<<11) != 0
	byteAccess := op&(1<<10) != 0
	ro := uint((op >> 6) & 0x7)
	rb := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)
	addr := c.R(rb) + c.R(ro)

	if load {
		if byteAccess {
			c.SetR(rd, uint32(c.bus.Read8(addr)))
		} else {
			c.SetR(rd, c.bus.Read32(addr&^3))
		}
	} else {
		if byteAccess {
			c.bus.Write8(addr, byte(c.R(rd)))
		} else {
			c.bus.Write32(addr&^3, c.R(rd))
		}
	}
}

// Format 8: sign-extended load/store (LDSB, LDSH, STRH, LDRH by reg offset).
func (c *CPU) thumbLoadStoreSignedExec(op uint16) {
	hBit := op&(1<<11) != 0
	sBit := op&(1<<10) != 0
	ro := uint((op >> 6) & 0x7)
	rb := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)
	addr := c.R(rb) + c.R(ro)

	switch {
	case !sBit && !hBit: // STRH
		c.bus.Write16(addr&^1, uint16(c.R(rd)))
	case !sBit && hBit: // LDRH
		c.SetR(rd, uint32(c.bus.Read16(addr&^1)))
	case sBit && !hBit: // LDSB
		c.SetR(rd, signExtend(uint32(c.bus.Read8(addr)), 8))
	default: // LDSH
		c.SetR(rd, signExtend(uint32(c.bus.Read16(addr&^1)), 16))
	}
}

// Format 9: load/store with immediate offset (word or byte).
func (c *CPU) thumbLoadStoreImmExec(op uint16) {
	byteAccess := op&(1<<12) != 0
	load := op&(1<<11) != 0
	offset := uint32((op >> 6) & 0x1F)
	rb := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)

	if !byteAccess {
		offset <<= 2
	}
	addr := c.R(rb) + offset

	if load {
		if byteAccess {
			c.SetR(rd, uint32(c.bus.Read8(addr)))
		} else {
			c.SetR(rd, c.bus.Read32(addr&^3))
		}
	} else {
		if byteAccess {
			c.bus.Write8(addr, byte(c.R(rd)))
		} else {
			c.bus.Write32(addr&^3, c.R(rd))
		}
	}
}

// Format 10: load/store halfword with immediate offset.
func (c *CPU) thumbLoadStoreHalfExec(op uint16) {
	load := op&(1<<11) != 0
	offset := uint32((op>>6)&0x1F) << 1
	rb := uint((op >> 3) & 0x7)
	rd := uint(op & 0x7)
	addr := c.R(rb) + offset

	if load {
		c.SetR(rd, uint32(c.bus.Read16(addr&^1)))
	} else {
		c.bus.Write16(addr&^1, uint16(c.R(rd)))
	}
}

// Format 11: SP-relative load/store.
func (c *CPU) thumbSPRelLoadStoreExec(op uint16) {
	load := op&(1<<11) != 0
	rd := uint((op >> 8) & 0x7)
	imm := uint32(op&0xFF) << 2
	addr := c.R(13) + imm

	if load {
		c.SetR(rd, c.bus.Read32(addr&^3))
	} else {
		c.bus.Write32(addr&^3, c.R(rd))
	}
}

// Format 12: load address (ADD Rd, PC|SP, #imm8*4).
func (c *CPU) thumbLoadAddressExec(op uint16) {
	sp := op&(1<<11) != 0
	rd := uint((op >> 8) & 0x7)
	imm := uint32(op&0xFF) << 2

	if sp {
		c.SetR(rd, c.R(13)+imm)
	} else {
		c.SetR(rd, (c.PCValue()&^3)+imm)
	}
}

// Format 13: add offset to stack pointer (ADD/SUB SP, #imm7*4).
func (c *CPU) thumbAddOffsetSPExec(op uint16) {
	negative := op&(1<<7) != 0
	imm := uint32(op&0x7F) << 2
	if negative {
		c.SetR(13, c.R(13)-imm)
	} else {
		c.SetR(13, c.R(13)+imm)
	}
}

// Format 14: push/pop registers. Push lowers SP by 4 per stored register,
// then stores the list lowest register first at ascending addresses, with
// LR (if R set) last at the highest address; pop loads ascending, PC last
// if R set (spec §4.8).
func (c *CPU) thumbPushPopExec(op uint16) {
	load := op&(1<<11) != 0
	extra := op&(1<<8) != 0
	list := op & 0xFF

	if load {
		addr := c.R(13)
		for i := uint(0); i < 8; i++ {
			if list&(1<<i) != 0 {
				c.SetR(i, c.bus.Read32(addr))
				addr += 4
			}
		}
		if extra {
			pcVal := c.bus.Read32(addr)
			addr += 4
			c.BranchExchange(pcVal | 1) // POP {PC} stays in Thumb state
		}
		c.SetR(13, addr)
	} else {
		count := 0
		for i := uint(0); i < 8; i++ {
			if list&(1<<i) != 0 {
				count++
			}
		}
		if extra {
			count++
		}
		addr := c.R(13) - uint32(count)*4
		c.SetR(13, addr)
		for i := uint(0); i < 8; i++ {
			if list&(1<<i) != 0 {
				c.bus.Write32(addr, c.R(i))
				addr += 4
			}
		}
		if extra {
			c.bus.Write32(addr, c.R(14))
		}
	}
}

// Format 15: multiple load/store (LDMIA/STMIA Rb!, {list}).
func (c *CPU) thumbMultiLoadStoreExec(op uint16) {
	load := op&(1<<11) != 0
	rb := uint((op >> 8) & 0x7)
	list := op & 0xFF
	addr := c.R(rb)

	for i := uint(0); i < 8; i++ {
		if list&(1<<i) != 0 {
			if load {
				c.SetR(i, c.bus.Read32(addr))
			} else {
				c.bus.Write32(addr, c.R(i))
			}
			addr += 4
		}
	}
	c.SetR(rb, addr)
}

// Format 16: conditional branch. cond 0xE is undefined here and raises the
// Undefined Instruction exception; cond 0xF is SWI, which decodeThumb
// routes to thumbSWI before this.
func (c *CPU) thumbCondBranchExec(op uint16) {
	cond := uint32(op>>8) & 0xF
	if cond == 0xE {
		c.raiseUndefined()
		return
	}
	if !condPass(cond, c.N(), c.Z(), c.C(), c.V()) {
		return
	}
	offset := signExtend(uint32(op&0xFF), 8) << 1
	c.SetR(15, c.PCValue()+offset)
}

// Format 18: unconditional branch.
func (c *CPU) thumbUncondBranchExec(op uint16) {
	offset := signExtend(uint32(op&0x7FF), 11) << 1
	c.SetR(15, c.PCValue()+offset)
}

// Format 19: long branch with link, a two-halfword sequence (spec §4.8/
// §9). The first halfword (H=0) sets LR to PC plus the sign-extended bits
// 22:12 of the offset; the second (H=1), executed as its own instruction,
// adds its bits 11:1 to LR, sets LR to the following instruction's
// address with bit 0 set, and branches. Interrupts may land between the
// two halves; they are not fused at decode.
func (c *CPU) thumbLongBranchLinkExec(op uint16) {
	low := op&(1<<11) != 0
	offset := uint32(op & 0x7FF)

	if !low {
		hi := signExtend(offset, 11) << 12
		c.SetR(14, c.PCValue()+hi)
		return
	}

	target := c.R(14) + offset<<1
	nextInstr := c.currentInstrAddr + 2
	c.SetR(14, nextInstr|1)
	c.SetR(15, target)
}
