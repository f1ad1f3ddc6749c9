package emu

import (
	"math/bits"

	"github.com/sarchlab/thumbsim/insts"
)

// executeShiftImm executes LSL/LSR/ASR by immediate.
func (e *Emulator) executeShiftImm(inst *insts.Instruction) {
	kind := insts.ShiftLSL
	switch inst.Op {
	case insts.OpLSRImm:
		kind = insts.ShiftLSR
	case insts.OpASRImm:
		kind = insts.ShiftASR
	}

	value := e.regFile.ReadReg(inst.Rm)
	e.regFile.WriteReg(inst.Rd, e.alu.ShiftWithFlags(value, inst.Imm, kind))
}

// executeAddSub executes the three-operand ADD/SUB forms.
func (e *Emulator) executeAddSub(inst *insts.Instruction) {
	op1 := e.regFile.ReadReg(inst.Rn)

	var op2 uint32
	switch inst.Op {
	case insts.OpADDImm3, insts.OpSUBImm3:
		op2 = inst.Imm
	default:
		op2 = e.regFile.ReadReg(inst.Rm)
	}

	var result uint32
	switch inst.Op {
	case insts.OpADDReg, insts.OpADDImm3:
		result = e.alu.UpdateAddFlags(op1, op2)
	default:
		result = e.alu.UpdateSubFlags(op1, op2)
	}
	e.regFile.WriteReg(inst.Rd, result)
}

// executeImm8 executes MOV/CMP/ADD/SUB with an 8-bit immediate.
func (e *Emulator) executeImm8(inst *insts.Instruction) {
	rd := e.regFile.ReadReg(inst.Rd)

	switch inst.Op {
	case insts.OpMOVImm:
		e.regFile.WriteReg(inst.Rd, e.alu.Logic(inst.Imm))
	case insts.OpCMPImm:
		e.alu.UpdateSubFlags(rd, inst.Imm)
	case insts.OpADDImm8:
		e.regFile.WriteReg(inst.Rd, e.alu.UpdateAddFlags(rd, inst.Imm))
	case insts.OpSUBImm8:
		e.regFile.WriteReg(inst.Rd, e.alu.UpdateSubFlags(rd, inst.Imm))
	}
}

// executeALU executes the sixteen register ALU operations.
// Register shifts take the amount from the bottom byte of Rm.
func (e *Emulator) executeALU(inst *insts.Instruction) {
	a := e.regFile.ReadReg(inst.Rd)
	b := e.regFile.ReadReg(inst.Rm)

	var result uint32
	write := true

	switch inst.Op {
	case insts.OpAND:
		result = e.alu.Logic(a & b)
	case insts.OpEOR:
		result = e.alu.Logic(a ^ b)
	case insts.OpLSLReg:
		result = e.alu.ShiftWithFlags(a, b&0xFF, insts.ShiftLSL)
	case insts.OpLSRReg:
		result = e.alu.ShiftWithFlags(a, b&0xFF, insts.ShiftLSR)
	case insts.OpASRReg:
		result = e.alu.ShiftWithFlags(a, b&0xFF, insts.ShiftASR)
	case insts.OpADC:
		result = e.alu.ADC(a, b)
	case insts.OpSBC:
		result = e.alu.SBC(a, b)
	case insts.OpROR:
		result = e.alu.ShiftWithFlags(a, b&0xFF, insts.ShiftROR)
	case insts.OpTST:
		e.alu.Logic(a & b)
		write = false
	case insts.OpNEG:
		result = e.alu.UpdateSubFlags(0, b)
	case insts.OpCMPReg:
		e.alu.UpdateSubFlags(a, b)
		write = false
	case insts.OpCMN:
		e.alu.UpdateAddFlags(a, b)
		write = false
	case insts.OpORR:
		result = e.alu.Logic(a | b)
	case insts.OpMUL:
		result = e.alu.Logic(a * b)
	case insts.OpBIC:
		result = e.alu.Logic(a &^ b)
	case insts.OpMVN:
		result = e.alu.Logic(^b)
	}

	if write {
		e.regFile.WriteReg(inst.Rd, result)
	}
}

// executeHiReg executes CPY, the high register ADD/MOV/CMP forms, BX and
// BLX. A PC operand reads as the instruction address plus 4 and a PC
// destination branches.
func (e *Emulator) executeHiReg(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpCPY, insts.OpMOVLoHi, insts.OpMOVHiLo, insts.OpMOVHiHi:
		e.regFile.WriteReg(inst.Rd, e.regFile.ReadOperand(inst.Rm))

	case insts.OpADDLoHi, insts.OpADDHiLo, insts.OpADDHiHi:
		sum := e.regFile.ReadOperand(inst.Rd) + e.regFile.ReadOperand(inst.Rm)
		e.regFile.WriteReg(inst.Rd, sum)

	case insts.OpCMPLoHi, insts.OpCMPHiLo, insts.OpCMPHiHi:
		// Only N and Z are updated for the high register compares.
		e.alu.UpdateNZ(e.regFile.ReadOperand(inst.Rn) - e.regFile.ReadOperand(inst.Rm))

	case insts.OpBX:
		e.branchUnit.BX(e.regFile.ReadOperand(inst.Rm))

	case insts.OpBLXReg:
		e.branchUnit.BLX(e.regFile.ReadOperand(inst.Rm))
	}
}

// executeLoadPC executes LDR Ld, [PC, #imm]. A literal inside the loaded
// program is read from program memory, anything else from data memory.
func (e *Emulator) executeLoadPC(inst *insts.Instruction) {
	addr := (e.regFile.PC()+4)&^3 + inst.Imm

	if lo, ok := e.program.Peek(addr); ok {
		hi, _ := e.program.Peek(addr + 2)
		e.regFile.WriteReg(inst.Rd, lo&0xFFFF|hi<<16)
		return
	}

	e.lsu.Load(inst.Rd, addr, SizeWord, false)
}

// executeLoadStore executes the register and immediate offset forms.
func (e *Emulator) executeLoadStore(inst *insts.Instruction) {
	addr := e.regFile.ReadReg(inst.Rn)
	if inst.Format == insts.FormatLoadStoreReg {
		addr += e.regFile.ReadReg(inst.Rm)
	} else {
		addr += inst.Imm
	}

	switch inst.Op {
	case insts.OpSTRReg, insts.OpSTRImm:
		e.lsu.Store(inst.Rd, addr, SizeWord)
	case insts.OpSTRHReg, insts.OpSTRHImm:
		e.lsu.Store(inst.Rd, addr, SizeHalf)
	case insts.OpSTRBReg, insts.OpSTRBImm:
		e.lsu.Store(inst.Rd, addr, SizeByte)
	case insts.OpLDRReg, insts.OpLDRImm:
		e.lsu.Load(inst.Rd, addr, SizeWord, false)
	case insts.OpLDRHReg, insts.OpLDRHImm:
		e.lsu.Load(inst.Rd, addr, SizeHalf, false)
	case insts.OpLDRBReg, insts.OpLDRBImm:
		e.lsu.Load(inst.Rd, addr, SizeByte, false)
	case insts.OpLDRSB:
		e.lsu.Load(inst.Rd, addr, SizeByte, true)
	case insts.OpLDRSH:
		e.lsu.Load(inst.Rd, addr, SizeHalf, true)
	}
}

// executeLoadStoreSP executes STR/LDR Ld, [SP, #imm].
func (e *Emulator) executeLoadStoreSP(inst *insts.Instruction) {
	if inst.Op == insts.OpLDRSP {
		e.lsu.LoadSP(inst.Rd, inst.Imm)
		return
	}
	e.lsu.StoreSP(inst.Rd, inst.Imm)
}

// executeAddress executes ADD Ld, PC/SP, #imm.
func (e *Emulator) executeAddress(inst *insts.Instruction) {
	if inst.Op == insts.OpADR {
		e.regFile.WriteReg(inst.Rd, (e.regFile.PC()+4)&^3+inst.Imm)
		return
	}
	e.regFile.WriteReg(inst.Rd, e.regFile.SP()+inst.Imm)
}

// executeAdjustSP executes ADD/SUB SP, #imm.
func (e *Emulator) executeAdjustSP(inst *insts.Instruction) {
	if inst.Op == insts.OpSUBSP {
		e.regFile.SetSP(e.regFile.SP() - inst.Imm)
		return
	}
	e.regFile.SetSP(e.regFile.SP() + inst.Imm)
}

// executeExtend executes SXTH/SXTB/UXTH/UXTB.
func (e *Emulator) executeExtend(inst *insts.Instruction) {
	v := e.regFile.ReadReg(inst.Rm)

	switch inst.Op {
	case insts.OpSXTH:
		v = uint32(int32(int16(v)))
	case insts.OpSXTB:
		v = uint32(int32(int8(v)))
	case insts.OpUXTH:
		v &= 0xFFFF
	case insts.OpUXTB:
		v &= 0xFF
	}

	e.regFile.WriteReg(inst.Rd, v)
}

// executeReverse executes REV/REV16/REVSH.
func (e *Emulator) executeReverse(inst *insts.Instruction) {
	v := e.regFile.ReadReg(inst.Rm)

	switch inst.Op {
	case insts.OpREV:
		v = bits.ReverseBytes32(v)
	case insts.OpREV16:
		v = (v&0xFF00FF00)>>8 | (v&0x00FF00FF)<<8
	case insts.OpREVSH:
		v = uint32(int32(int16(bits.ReverseBytes16(uint16(v)))))
	}

	e.regFile.WriteReg(inst.Rd, v)
}

func (e *Emulator) executePushPop(inst *insts.Instruction) {
	if inst.Op == insts.OpPUSH {
		e.lsu.Push(inst.RegList, inst.ExtraReg)
		return
	}
	e.lsu.Pop(inst.RegList, inst.ExtraReg)
}

// executeSystem executes SETEND, CPSIE/CPSID, BKPT and SWI.
func (e *Emulator) executeSystem(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpSETEND:
		e.regFile.SetFlag(StatusE, inst.BigEndian)
	case insts.OpCPSIE:
		e.regFile.SetFlag(cpsMask(inst.Imm), false)
	case insts.OpCPSID:
		e.regFile.SetFlag(cpsMask(inst.Imm), true)
	case insts.OpBKPT:
		e.trap(TrapBreakpoint, inst)
	case insts.OpSWI:
		e.trap(TrapSoftwareInterrupt, inst)
	}
}

func cpsMask(flags uint32) uint32 {
	var mask uint32
	if flags&insts.CPSFlagA != 0 {
		mask |= StatusA
	}
	if flags&insts.CPSFlagI != 0 {
		mask |= StatusI
	}
	if flags&insts.CPSFlagF != 0 {
		mask |= StatusF
	}
	return mask
}

func (e *Emulator) executeMultiple(inst *insts.Instruction) {
	if inst.Op == insts.OpSTMIA {
		e.lsu.STMIA(inst.Rn, inst.RegList)
		return
	}
	e.lsu.LDMIA(inst.Rn, inst.RegList)
}

func (e *Emulator) executeLongBranch(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpBLPrefix:
		e.branchUnit.BLPrefix(inst.Offset)
	case insts.OpBLSuffix:
		e.branchUnit.BLSuffix(inst.Offset, false)
	case insts.OpBLXSuffix:
		e.branchUnit.BLSuffix(inst.Offset, true)
	}
}
