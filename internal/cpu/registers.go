package cpu

// Processor modes (CPSR bits 0-4), spec §3.
const (
	ModeUser = 0x10
	ModeFIQ  = 0x11
	ModeIRQ  = 0x12
	ModeSVC  = 0x13
	ModeABT  = 0x17
	ModeUND  = 0x1B
	ModeSYS  = 0x1F
)

// CPSR/SPSR bit positions (spec §3).
const (
	flagT = uint32(1) << 5  // Thumb state
	flagF = uint32(1) << 6  // FIQ disable
	flagI = uint32(1) << 7  // IRQ disable
	flagV = uint32(1) << 28
	flagC = uint32(1) << 29
	flagZ = uint32(1) << 30
	flagN = uint32(1) << 31
)

// bank identifies one of the six register-bank groups the seven processor
// modes map onto: User and System share a bank (bankUser); FIQ, SVC, ABT,
// IRQ, and UND each have their own.
type bank int

const (
	bankUser bank = iota
	bankFIQ
	bankSVC
	bankABT
	bankIRQ
	bankUND
	numBanks
)

func bankOf(mode uint32) bank {
	switch mode {
	case ModeFIQ:
		return bankFIQ
	case ModeSVC:
		return bankSVC
	case ModeABT:
		return bankABT
	case ModeIRQ:
		return bankIRQ
	case ModeUND:
		return bankUND
	default: // User, System
		return bankUser
	}
}

// Registers holds the full architectural register file: the sixteen
// currently visible registers plus every other bank's shadow copies,
// swapped in and out on mode transitions (spec §3's "Lifecycles").
type Registers struct {
	gpr [16]uint32 // R0-R14 live here; R15 is tracked separately as pc

	pc uint32 // architectural PC pointer (address of the next fetch)

	// currentInstrAddr is the address of the instruction presently
	// executing; reads of R15 return this plus the pipeline lookahead
	// (+8 ARM, +4 Thumb) per spec §3's pipeline rule.
	currentInstrAddr uint32

	cpsr uint32

	// r8_12FIQ / r8_12Usr hold R8-R12: FIQ has its own bank, every other
	// mode (User, System, SVC, ABT, IRQ, UND) shares the User bank.
	r8_12FIQ [5]uint32
	r8_12Usr [5]uint32

	// r13_14 holds R13 (SP) and R14 (LR) for each of the six banks.
	r13_14 [numBanks][2]uint32

	// spsr holds the saved CPSR for each privileged bank; bankUser has no
	// SPSR (User/System mode reads/writes to SPSR are no-ops here).
	spsr [numBanks]uint32
}

// Reset puts the register file in the post-reset state spec §8 names:
// R0=0x00000CA5, SP=0x03007F00, LR=PC=0x08000000, mode=System, NZCV=0,
// Thumb=0.
func (r *Registers) Reset() {
	*r = Registers{}
	r.cpsr = ModeSYS
	r.gpr[0] = 0x00000CA5
	r.r13_14[bankUser][0] = 0x03007F00 // SP
	r.r13_14[bankUser][1] = 0x08000000 // LR
	r.gpr[13] = r.r13_14[bankUser][0]
	r.gpr[14] = r.r13_14[bankUser][1]
	r.pc = 0x08000000
	r.currentInstrAddr = 0x08000000
}

func (r *Registers) Mode() uint32   { return r.cpsr & 0x1F }
func (r *Registers) Thumb() bool    { return r.cpsr&flagT != 0 }
func (r *Registers) IRQDisabled() bool { return r.cpsr&flagI != 0 }
func (r *Registers) FIQDisabled() bool { return r.cpsr&flagF != 0 }

func (r *Registers) N() bool { return r.cpsr&flagN != 0 }
func (r *Registers) Z() bool { return r.cpsr&flagZ != 0 }
func (r *Registers) C() bool { return r.cpsr&flagC != 0 }
func (r *Registers) V() bool { return r.cpsr&flagV != 0 }

func (r *Registers) SetNZCV(n, z, c, v bool) {
	cpsr := r.cpsr &^ (flagN | flagZ | flagC | flagV)
	if n {
		cpsr |= flagN
	}
	if z {
		cpsr |= flagZ
	}
	if c {
		cpsr |= flagC
	}
	if v {
		cpsr |= flagV
	}
	r.cpsr = cpsr
}

// CPSR/SetCPSR expose the raw packed status register. SetCPSR drives mode
// switching when the mode field changes.
func (r *Registers) CPSR() uint32 { return r.cpsr }

func (r *Registers) SetCPSR(v uint32) {
	oldMode := r.Mode()
	newMode := v & 0x1F
	r.cpsr = v
	if newMode != oldMode {
		r.switchMode(oldMode, newMode)
	}
}

// SPSR returns the SPSR of the current mode; 0 in User/System (no SPSR
// exists there).
func (r *Registers) SPSR() uint32 {
	b := bankOf(r.Mode())
	if b == bankUser {
		return 0
	}
	return r.spsr[b]
}

func (r *Registers) SetSPSR(v uint32) {
	b := bankOf(r.Mode())
	if b == bankUser {
		return
	}
	r.spsr[b] = v
}

// switchMode swaps the banked R8-R12/R13-R14 storage between the outgoing
// and incoming mode's banks (spec §3: "any register that is not banked in
// M' retains its value across the round trip").
func (r *Registers) switchMode(oldMode, newMode uint32) {
	oldBank := bankOf(oldMode)
	newBank := bankOf(newMode)

	if oldBank == bankFIQ {
		copy(r.r8_12FIQ[:], r.gpr[8:13])
	} else {
		copy(r.r8_12Usr[:], r.gpr[8:13])
	}
	r.r13_14[oldBank][0] = r.gpr[13]
	r.r13_14[oldBank][1] = r.gpr[14]

	if newBank == bankFIQ {
		copy(r.gpr[8:13], r.r8_12FIQ[:])
	} else {
		copy(r.gpr[8:13], r.r8_12Usr[:])
	}
	r.gpr[13] = r.r13_14[newBank][0]
	r.gpr[14] = r.r13_14[newBank][1]
}

// PCValue returns the architectural value of R15 as read by the currently
// executing instruction: instruction address + 8 in ARM state, + 4 in
// Thumb state (spec §3).
func (r *Registers) PCValue() uint32 {
	if r.Thumb() {
		return r.currentInstrAddr + 4
	}
	return r.currentInstrAddr + 8
}

// R returns the live value of Rn (0-15) in the current mode.
func (r *Registers) R(n uint) uint32 {
	if n == 15 {
		return r.PCValue()
	}
	return r.gpr[n]
}

// SetR writes Rn. Writing R15 branches: the new pc is aligned to the
// current instruction set's fetch granularity (word for ARM, halfword for
// Thumb) and does not itself change the Thumb flag — only BX does that
// (spec §4.7's Branch semantics).
func (r *Registers) SetR(n uint, v uint32) {
	if n == 15 {
		if r.Thumb() {
			r.pc = v &^ 1
		} else {
			r.pc = v &^ 3
		}
		return
	}
	r.gpr[n] = v
}

// BranchExchange implements BX's PC write: bit 0 of the target selects
// Thumb state, and the target is then aligned accordingly (spec §4.7).
func (r *Registers) BranchExchange(target uint32) {
	if target&1 != 0 {
		r.cpsr |= flagT
		r.pc = target &^ 1
	} else {
		r.cpsr &^= flagT
		r.pc = target &^ 3
	}
}

// PC returns the raw fetch pointer (the "real" PC used to drive
// fetching), distinct from the +8/+4 architectural read value.
func (r *Registers) PC() uint32 { return r.pc }

// SetFetchPC repositions the fetch pointer directly, used by the fetch
// helpers to advance past each fetched opcode and by CPU.SetFetchAddr.
func (r *Registers) SetFetchPC(v uint32) { r.pc = v }

// SetCurrentInstrAddr records the address of the instruction about to be
// executed, so R15 reads during its execution resolve correctly.
func (r *Registers) SetCurrentInstrAddr(addr uint32) { r.currentInstrAddr = addr }
