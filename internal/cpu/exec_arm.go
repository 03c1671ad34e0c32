package cpu

// Data-processing opcodes, bits 24-21 of the instruction (spec §4.7).
const (
	dpAND = 0x0
	dpEOR = 0x1
	dpSUB = 0x2
	dpRSB = 0x3
	dpADD = 0x4
	dpADC = 0x5
	dpSBC = 0x6
	dpRSC = 0x7
	dpTST = 0x8
	dpTEQ = 0x9
	dpCMP = 0xA
	dpCMN = 0xB
	dpORR = 0xC
	dpMOV = 0xD
	dpBIC = 0xE
	dpMVN = 0xF
)

// addFlags/subFlags/adcFlags/sbcFlags implement the carry/overflow laws of
// spec §8 for ADD-family and SUB-family operations.

func addFlags(a, b uint32) (r uint32, c, v bool) {
	sum := uint64(a) + uint64(b)
	r = uint32(sum)
	c = sum > 0xFFFFFFFF
	v = (a^r)&(b^r)&0x80000000 != 0
	return
}

func subFlags(a, b uint32) (r uint32, c, v bool) {
	r = a - b
	c = a >= b
	v = (a^b)&(a^r)&0x80000000 != 0
	return
}

func adcFlags(a, b uint32, carryIn bool) (r uint32, c, v bool) {
	var ci uint64
	if carryIn {
		ci = 1
	}
	sum := uint64(a) + uint64(b) + ci
	r = uint32(sum)
	c = sum > 0xFFFFFFFF
	v = (a^r)&(b^r)&0x80000000 != 0
	return
}

func sbcFlags(a, b uint32, carryIn bool) (r uint32, c, v bool) {
	var ci uint64
	if carryIn {
		ci = 1
	}
	sum := uint64(a) + uint64(^b) + ci
	r = uint32(sum)
	c = sum > 0xFFFFFFFF
	v = (a^b)&(a^r)&0x80000000 != 0
	return
}

// dpOperand2 evaluates the second operand of a data-processing instruction
// and its shifter carry-out (spec §4.7).
func (c *CPU) dpOperand2(op uint32) (value uint32, shifterCarry bool) {
	if op&(1<<25) != 0 {
		imm := op & 0xFF
		rot := uint((op >> 8) & 0xF)
		value = ror32(imm, rot*2)
		if rot == 0 {
			return value, c.C()
		}
		return value, value&0x80000000 != 0
	}
	rm := uint(op & 0xF)
	rmVal := c.R(rm)
	shiftType := (op >> 5) & 0x3
	if op&(1<<4) != 0 {
		rs := uint((op >> 8) & 0xF)
		amount := c.R(rs) & 0xFF
		return shiftByRegister(rmVal, shiftType, amount, c.C())
	}
	amount := (op >> 7) & 0x1F
	return shiftByImmediate(rmVal, shiftType, amount, c.C())
}

func (c *CPU) execDataProcessingOrPSR(op uint32) {
	opcode := (op >> 21) & 0xF
	s := op&(1<<20) != 0

	if !s && (opcode == dpTST || opcode == dpCMP) {
		c.execMRS(op, opcode == dpCMP)
		return
	}
	if !s && (opcode == dpTEQ || opcode == dpCMN) {
		c.execMSR(op, opcode == dpCMN)
		return
	}

	rn := uint((op >> 16) & 0xF)
	rd := uint((op >> 12) & 0xF)
	op2, shifterCarry := c.dpOperand2(op)
	rnVal := c.R(rn)

	var result uint32
	carry, overflow := shifterCarry, c.V()
	writesRd := true

	switch opcode {
	case dpAND:
		result = rnVal & op2
	case dpEOR:
		result = rnVal ^ op2
	case dpSUB:
		result, carry, overflow = subFlags(rnVal, op2)
	case dpRSB:
		result, carry, overflow = subFlags(op2, rnVal)
	case dpADD:
		result, carry, overflow = addFlags(rnVal, op2)
	case dpADC:
		result, carry, overflow = adcFlags(rnVal, op2, c.C())
	case dpSBC:
		result, carry, overflow = sbcFlags(rnVal, op2, c.C())
	case dpRSC:
		result, carry, overflow = sbcFlags(op2, rnVal, c.C())
	case dpTST:
		result = rnVal & op2
		writesRd = false
	case dpTEQ:
		result = rnVal ^ op2
		writesRd = false
	case dpCMP:
		result, carry, overflow = subFlags(rnVal, op2)
		writesRd = false
	case dpCMN:
		result, carry, overflow = addFlags(rnVal, op2)
		writesRd = false
	case dpORR:
		result = rnVal | op2
	case dpMOV:
		result = op2
	case dpBIC:
		result = rnVal &^ op2
	case dpMVN:
		result = ^op2
	}

	if writesRd && rd == 15 && s {
		// Writing R15 with S set is an exception return: restore CPSR from
		// the current mode's SPSR before branching (spec §4.7).
		c.SetCPSR(c.SPSR())
	} else if s {
		c.SetNZCV(result&0x80000000 != 0, result == 0, carry, overflow)
	}
	if writesRd {
		c.SetR(rd, result)
	}
}

// execMRS implements MRS Rd, {CPSR|SPSR} (spec §4.7).
func (c *CPU) execMRS(op uint32, spsr bool) {
	rd := uint((op >> 12) & 0xF)
	if spsr {
		c.SetR(rd, c.SPSR())
	} else {
		c.SetR(rd, c.CPSR())
	}
}

// execMSR implements MSR {CPSR|SPSR}_fields, operand (spec §4.7). The field
// mask (bits 19-16: f,s,x,c) selects which byte lanes of the destination
// PSR are overwritten; in User mode only the flags byte may be written.
func (c *CPU) execMSR(op uint32, spsr bool) {
	var source uint32
	if op&(1<<25) != 0 {
		imm := op & 0xFF
		rot := uint((op >> 8) & 0xF)
		source = ror32(imm, rot*2)
	} else {
		source = c.R(uint(op & 0xF))
	}

	fieldMask := (op >> 16) & 0xF
	if c.Mode() == ModeUser {
		fieldMask &= 0x8 // only the flags (f) lane is writable from User mode
	}

	var dest uint32
	if spsr {
		dest = c.SPSR()
	} else {
		dest = c.CPSR()
	}
	var byteMask uint32
	if fieldMask&0x1 != 0 {
		byteMask |= 0x000000FF // c: control
	}
	if fieldMask&0x2 != 0 {
		byteMask |= 0x0000FF00 // x: extension
	}
	if fieldMask&0x4 != 0 {
		byteMask |= 0x00FF0000 // s: status
	}
	if fieldMask&0x8 != 0 {
		byteMask |= 0xFF000000 // f: flags
	}
	dest = (dest &^ byteMask) | (source & byteMask)

	if spsr {
		c.SetSPSR(dest)
	} else {
		c.SetCPSR(dest)
	}
}

func (c *CPU) execMultiply(op uint32) {
	rd := uint((op >> 16) & 0xF)
	rn := uint((op >> 12) & 0xF)
	rs := uint((op >> 8) & 0xF)
	rm := uint(op & 0xF)
	s := op&(1<<20) != 0
	accumulate := op&(1<<21) != 0

	result := c.R(rm) * c.R(rs)
	if accumulate {
		result += c.R(rn)
	}
	c.SetR(rd, result)
	if s {
		c.SetNZCV(result&0x80000000 != 0, result == 0, c.C(), c.V())
	}
}

func (c *CPU) execMultiplyLong(op uint32) {
	rdHi := uint((op >> 16) & 0xF)
	rdLo := uint((op >> 12) & 0xF)
	rs := uint((op >> 8) & 0xF)
	rm := uint(op & 0xF)
	signed := op&(1<<22) != 0
	accumulate := op&(1<<21) != 0
	s := op&(1<<20) != 0

	var result uint64
	if signed {
		result = uint64(int64(int32(c.R(rm))) * int64(int32(c.R(rs))))
	} else {
		result = uint64(c.R(rm)) * uint64(c.R(rs))
	}
	if accumulate {
		result += uint64(c.R(rdHi))<<32 | uint64(c.R(rdLo))
	}
	hi := uint32(result >> 32)
	lo := uint32(result)
	c.SetR(rdHi, hi)
	c.SetR(rdLo, lo)
	if s {
		c.SetNZCV(hi&0x80000000 != 0, result == 0, c.C(), c.V())
	}
}

func (c *CPU) execSingleDataSwap(op uint32) {
	rn := uint((op >> 16) & 0xF)
	rd := uint((op >> 12) & 0xF)
	rm := uint(op & 0xF)
	byteSwap := op&(1<<22) != 0
	addr := c.R(rn)

	if byteSwap {
		old := c.bus.Read8(addr)
		c.bus.Write8(addr, byte(c.R(rm)))
		c.SetR(rd, uint32(old))
	} else {
		old := c.bus.Read32(addr)
		c.bus.Write32(addr, c.R(rm))
		c.SetR(rd, old)
	}
}

// execBranch implements B/BL (spec §4.7): sign-extend a 24-bit word offset
// and add to the architectural PC; BL additionally sets LR to the return
// address.
func (c *CPU) execBranch(op uint32) {
	link := op&(1<<24) != 0
	offset := signExtend(op&0x00FFFFFF, 24) << 2
	target := c.PCValue() + offset
	if link {
		c.SetR(14, c.currentInstrAddr+4)
	}
	c.SetR(15, target)
}

// execBranchExchange implements BX Rn (spec §4.7).
func (c *CPU) execBranchExchange(op uint32) {
	rm := uint(op & 0xF)
	c.BranchExchange(c.R(rm))
}

// resolveOffset resolves the offset and effective/write-back
// addresses shared by single data transfer and halfword/signed transfer
// (spec §4.7).
func (c *CPU) resolveOffset(op uint32, offset uint32) (effAddr, writeBackAddr uint32, preIndexed bool) {
	rn := uint((op >> 16) & 0xF)
	base := c.R(rn)
	up := op&(1<<23) != 0
	pre := op&(1<<24) != 0

	var adjusted uint32
	if up {
		adjusted = base + offset
	} else {
		adjusted = base - offset
	}
	if pre {
		return adjusted, adjusted, true
	}
	return base, adjusted, false
}

func (c *CPU) execSingleDataTransfer(op uint32) {
	var offset uint32
	if op&(1<<25) != 0 {
		shiftType := (op >> 5) & 0x3
		amount := (op >> 7) & 0x1F
		rm := uint(op & 0xF)
		offset, _ = shiftByImmediate(c.R(rm), shiftType, amount, c.C())
	} else {
		offset = op & 0xFFF
	}

	rd := uint((op >> 12) & 0xF)
	rn := uint((op >> 16) & 0xF)
	load := op&(1<<20) != 0
	byteAccess := op&(1<<22) != 0
	writeBack := op&(1<<21) != 0

	effAddr, wbAddr, preIndexed := c.resolveOffset(op, offset)

	if load {
		var v uint32
		if byteAccess {
			v = uint32(c.bus.Read8(effAddr))
		} else {
			v = c.bus.Read32(effAddr &^ 3)
		}
		c.SetR(rd, v)
	} else {
		v := c.R(rd)
		if rd == 15 {
			v = c.currentInstrAddr + 12 // ARM7TDMI STR-of-PC quirk
		}
		if byteAccess {
			c.bus.Write8(effAddr, byte(v))
		} else {
			c.bus.Write32(effAddr&^3, v)
		}
	}

	if !preIndexed || writeBack {
		if rn != 15 {
			c.SetR(rn, wbAddr)
		}
	}
}

// execHalfwordTransfer implements LDRH/STRH/LDRSB/LDRSH (spec §4.7). imm
// selects whether the 8-bit offset comes from the split hi/lo immediate
// nibbles or a register.
func (c *CPU) execHalfwordTransfer(op uint32, imm bool) {
	var offset uint32
	if imm {
		offset = (op>>4)&0xF0 | op&0xF
	} else {
		offset = c.R(uint(op & 0xF))
	}

	rd := uint((op >> 12) & 0xF)
	rn := uint((op >> 16) & 0xF)
	load := op&(1<<20) != 0
	writeBack := op&(1<<21) != 0
	sBit := op&(1<<6) != 0
	hBit := op&(1<<5) != 0

	effAddr, wbAddr, preIndexed := c.resolveOffset(op, offset)

	if load {
		var v uint32
		switch {
		case sBit && hBit: // LDRSH
			v = signExtend(uint32(c.bus.Read16(effAddr&^1)), 16)
		case sBit && !hBit: // LDRSB
			v = signExtend(uint32(c.bus.Read8(effAddr)), 8)
		default: // LDRH
			v = uint32(c.bus.Read16(effAddr &^ 1))
		}
		c.SetR(rd, v)
	} else { // STRH
		c.bus.Write16(effAddr&^1, uint16(c.R(rd)))
	}

	if !preIndexed || writeBack {
		if rn != 15 {
			c.SetR(rn, wbAddr)
		}
	}
}

// execBlockDataTransfer implements LDM/STM (spec §4.7/§9). The register
// list is always walked in ascending register order; the addressing mode
// (P,U) determines the starting address and per-register step.
func (c *CPU) execBlockDataTransfer(op uint32) {
	rn := uint((op >> 16) & 0xF)
	load := op&(1<<20) != 0
	writeBack := op&(1<<21) != 0
	sBit := op&(1<<22) != 0
	up := op&(1<<23) != 0
	pre := op&(1<<24) != 0
	list := op & 0xFFFF

	count := 0
	for i := 0; i < 16; i++ {
		if list&(1<<i) != 0 {
			count++
		}
	}
	base := c.R(rn)
	var start uint32
	if up {
		start = base
	} else {
		start = base - uint32(count)*4
	}
	addr := start
	if (up && pre) || (!up && !pre) {
		addr += 4
	}

	// userBankTransfer: S set and (not a load-with-R15, or a store) means
	// R0-R14 access the User bank regardless of current mode.
	userBank := sBit && (!load || list&(1<<15) == 0)

	firstInList := uint(0)
	for i := 0; i < 16; i++ {
		if list&(1<<i) != 0 {
			firstInList = uint(i)
			break
		}
	}

	for i := uint(0); i < 16; i++ {
		if list&(1<<i) == 0 {
			continue
		}
		if load {
			v := c.bus.Read32(addr &^ 3)
			if i == 15 {
				c.SetR(15, v)
				if sBit {
					c.SetCPSR(c.SPSR())
				}
			} else if userBank {
				c.setUserBankRegister(i, v)
			} else {
				c.SetR(i, v)
			}
		} else {
			var v uint32
			if userBank {
				v = c.userBankRegister(i)
			} else {
				v = c.R(i)
			}
			if i == 15 {
				v = c.currentInstrAddr + 12 // ARM7TDMI STM-of-PC quirk
			}
			c.bus.Write32(addr&^3, v)
		}
		addr += 4
	}

	if writeBack {
		var newBase uint32
		if up {
			newBase = base + uint32(count)*4
		} else {
			newBase = base - uint32(count)*4
		}
		// spec §9: if the base register is first in the list, the computed
		// write-back value is stored; otherwise (base is not first) the
		// *new* base as seen during the load overwrites the write-back.
		if load && list&(1<<rn) != 0 && rn != firstInList {
			// base was itself overwritten by the load; leave it as loaded.
		} else {
			c.SetR(rn, newBase)
		}
	}
}

// userBankRegister/setUserBankRegister read/write R8-R14 in the User/
// System bank regardless of the live mode, used by the S-bit user-bank
// transfer variant of LDM/STM.
func (c *CPU) userBankRegister(n uint) uint32 {
	if n < 8 || n == 15 {
		return c.R(n)
	}
	if c.Mode() == ModeFIQ && n >= 8 && n <= 12 {
		return c.r8_12Usr[n-8]
	}
	if bankOf(c.Mode()) != bankUser && n >= 13 {
		return c.r13_14[bankUser][n-13]
	}
	return c.R(n)
}

func (c *CPU) setUserBankRegister(n uint, v uint32) {
	if n < 8 || n == 15 {
		c.SetR(n, v)
		return
	}
	if c.Mode() == ModeFIQ && n >= 8 && n <= 12 {
		c.r8_12Usr[n-8] = v
		return
	}
	if bankOf(c.Mode()) != bankUser && n >= 13 {
		c.r13_14[bankUser][n-13] = v
		return
	}
	c.SetR(n, v)
}

// execSoftwareInterrupt implements SWI (spec §4.7): save CPSR to SPSR_svc,
// set LR_svc to the return address, switch to Supervisor mode with IRQ
// disabled and Thumb cleared, and jump to the SWI vector.
func (c *CPU) execSoftwareInterrupt() {
	c.raiseException(ModeSVC, 0x00000008)
}

// raiseUndefined implements the Undefined Instruction exception (spec §7),
// used for decode misses, the Undefined decode tag, and (since the GBA has
// no coprocessor) every coprocessor-class opcode.
func (c *CPU) raiseUndefined() {
	c.raiseException(ModeUND, 0x00000004)
}

// raiseException is the shared exception-entry sequence: save CPSR to the
// new mode's SPSR, compute LR from the architectural PC read value, switch
// mode, disable IRQs, clear Thumb, and jump to vector (spec §4.2/§4.7).
func (c *CPU) raiseException(newMode uint32, vector uint32) {
	var lr uint32
	if c.Thumb() {
		lr = c.PCValue() - 2
	} else {
		lr = c.PCValue() - 4
	}
	oldCPSR := c.CPSR()
	c.SetCPSR((oldCPSR &^ 0x1F) | newMode)
	c.SetSPSR(oldCPSR)
	c.SetR(14, lr)
	c.SetCPSR((c.CPSR() | flagI) &^ flagT)
	c.SetR(15, vector)
}
