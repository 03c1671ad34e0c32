package cpu

import "fmt"

// armTagNames/thumbTagNames give a short mnemonic-class label for each
// decode tag, used only by Disassemble below.
var armTagNames = map[armTag]string{
	tagSoftwareInterrupt:  "SWI",
	tagCoprocDataOp:       "CDP",
	tagCoprocRegTransfer:  "MRC/MCR",
	tagCoprocDataTransfer: "LDC/STC",
	tagBranch:             "B/BL",
	tagBlockDataTransfer:  "LDM/STM",
	tagUndefined:          "UND",
	tagSingleDataTransfer: "LDR/STR",
	tagHalfwordTransferImm: "LDRH/STRH(imm)",
	tagHalfwordTransferReg: "LDRH/STRH(reg)",
	tagBranchAndExchange:  "BX",
	tagSingleDataSwap:     "SWP",
	tagMultiplyLong:       "MULL",
	tagMultiply:           "MUL",
	tagDataProcessing:     "DataProc/PSR",
}

var thumbTagNames = map[thumbTag]string{
	thumbMoveShifted:     "MoveShifted",
	thumbAddSub:          "AddSub",
	thumbImmediate:       "MovCmpAddSubImm",
	thumbALU:             "ALU",
	thumbHiRegBX:         "HiRegBX",
	thumbPCRelLoad:       "LDR(PC-rel)",
	thumbLoadStoreReg:    "LDR/STR(reg)",
	thumbLoadStoreSigned: "LDRSB/LDRSH",
	thumbLoadStoreImm:    "LDR/STR(imm)",
	thumbLoadStoreHalf:   "LDRH/STRH",
	thumbSPRelLoadStore:  "LDR/STR(SP-rel)",
	thumbLoadAddress:     "ADR/ADD(SP|PC)",
	thumbAddOffsetSP:     "ADD/SUB SP",
	thumbPushPop:         "PUSH/POP",
	thumbMultiLoadStore:  "LDMIA/STMIA",
	thumbCondBranch:      "Bcc",
	thumbSWI:             "SWI",
	thumbUncondBranch:    "B",
	thumbLongBranchLink:  "BL",
	thumbUndefined:       "UND",
}

// Disassemble returns a short trace-line description of the instruction at
// pc and its encoded width in bytes, used only by the trace package and by
// cmd/gbarunner's failure dump (SPEC_FULL §D.2). It is deliberately
// coarse — a decode-class label plus the raw encoding — not a full
// operand-rendering disassembler.
func (c *CPU) Disassemble(pc uint32) (string, int) {
	if c.Thumb() {
		op := c.bus.Read16(pc)
		tag := decodeThumb(op)
		return fmt.Sprintf("%08X: %04X  %-16s", pc, op, thumbTagNames[tag]), 2
	}
	op := c.bus.Read32(pc)
	tag := decodeARM(op)
	cond := op >> 28
	return fmt.Sprintf("%08X: %08X  cond=%X %-16s", pc, op, cond, armTagNames[tag]), 4
}
