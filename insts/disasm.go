package insts

import (
	"fmt"
	"strings"
)

// LinkState carries the first half of a BL/BLX pair to the instruction that
// follows it. It is valid for exactly one instruction.
type LinkState struct {
	Pending bool   // The previous instruction was a BL/BLX prefix
	Addr    uint32 // Address of that prefix
	Offset  int32  // High part of the call offset, already shifted
}

// Advance updates the link state after inst, located at addr, has been
// handled.
func (l *LinkState) Advance(inst *Instruction, addr uint32) {
	if inst.Op == OpBLPrefix {
		*l = LinkState{Pending: true, Addr: addr, Offset: inst.Offset}
		return
	}
	*l = LinkState{}
}

// CallTarget returns the absolute target of a BL/BLX suffix that follows the
// pending prefix.
func (l LinkState) CallTarget(suffix *Instruction) (uint32, bool) {
	if !l.Pending {
		return 0, false
	}
	target := uint32(int64(l.Addr) + 4 + int64(l.Offset) + int64(suffix.Offset))
	if suffix.Op == OpBLXSuffix {
		target &^= 3
	}
	return target, true
}

// BranchTarget returns the target of a B or B<cond> located at addr.
func BranchTarget(inst *Instruction, addr uint32) uint32 {
	return uint32(int64(addr) + 4 + int64(inst.Offset))
}

// RegName returns the assembler name of register r.
func RegName(r uint8) string {
	switch r {
	case 13:
		return "SP"
	case 14:
		return "LR"
	case 15:
		return "PC"
	default:
		return fmt.Sprintf("R%d", r)
	}
}

// Disassemble renders inst, located at addr, as assembler text. link is the
// state left by the previous instruction.
func Disassemble(inst *Instruction, addr uint32, link LinkState) string {
	name := inst.Op.String()
	rd, rn, rm := RegName(inst.Rd), RegName(inst.Rn), RegName(inst.Rm)

	switch inst.Format {
	case FormatShiftImm:
		return fmt.Sprintf("%s %s, %s, #%d", name, rd, rm, inst.Imm)

	case FormatAddSub:
		if inst.Op == OpADDImm3 || inst.Op == OpSUBImm3 {
			return fmt.Sprintf("%s %s, %s, #%d", name, rd, rn, inst.Imm)
		}
		return fmt.Sprintf("%s %s, %s, %s", name, rd, rn, rm)

	case FormatImm8:
		return fmt.Sprintf("%s %s, #%d", name, rd, inst.Imm)

	case FormatALU, FormatExtend, FormatReverse:
		return fmt.Sprintf("%s %s, %s", name, rd, rm)

	case FormatHiReg:
		return disassembleHiReg(inst, name)

	case FormatLoadPC:
		return fmt.Sprintf("%s %s, [PC, #%d]", name, rd, inst.Imm)

	case FormatLoadStoreReg:
		return fmt.Sprintf("%s %s, [%s, %s]", name, rd, rn, rm)

	case FormatLoadStoreImm, FormatLoadStoreSP:
		return fmt.Sprintf("%s %s, [%s, #%d]", name, rd, rn, inst.Imm)

	case FormatAddress:
		return fmt.Sprintf("%s %s, %s, #%d", name, rd, rn, inst.Imm)

	case FormatAdjustSP:
		return fmt.Sprintf("%s SP, #%d", name, inst.Imm)

	case FormatPushPop:
		extra := ""
		if inst.ExtraReg {
			extra = "LR"
			if inst.Op == OpPOP {
				extra = "PC"
			}
		}
		return fmt.Sprintf("%s {%s}", name, regList(inst.RegList, extra))

	case FormatMultiple:
		return fmt.Sprintf("%s %s!, {%s}", name, rn, regList(inst.RegList, ""))

	case FormatSystem:
		return disassembleSystem(inst, name)

	case FormatBranchCond:
		return fmt.Sprintf("B%s #0x%x", inst.Cond, BranchTarget(inst, addr))

	case FormatBranch:
		return fmt.Sprintf("B #0x%x", BranchTarget(inst, addr))

	case FormatLongBranch:
		return disassembleLongBranch(inst, name, addr, link)
	}

	return "UNDEFINED"
}

func disassembleHiReg(inst *Instruction, name string) string {
	switch inst.Op {
	case OpBX, OpBLXReg:
		return fmt.Sprintf("%s %s", name, RegName(inst.Rm))
	case OpCMPLoHi, OpCMPHiLo, OpCMPHiHi:
		return fmt.Sprintf("%s %s, %s", name, RegName(inst.Rn), RegName(inst.Rm))
	default:
		return fmt.Sprintf("%s %s, %s", name, RegName(inst.Rd), RegName(inst.Rm))
	}
}

func disassembleSystem(inst *Instruction, name string) string {
	switch inst.Op {
	case OpSETEND:
		if inst.BigEndian {
			return "SETEND BE"
		}
		return "SETEND LE"
	case OpCPSIE, OpCPSID:
		var flags strings.Builder
		if inst.Imm&CPSFlagA != 0 {
			flags.WriteByte('a')
		}
		if inst.Imm&CPSFlagI != 0 {
			flags.WriteByte('i')
		}
		if inst.Imm&CPSFlagF != 0 {
			flags.WriteByte('f')
		}
		if flags.Len() == 0 {
			return name
		}
		return fmt.Sprintf("%s %s", name, flags.String())
	default:
		return fmt.Sprintf("%s #%d", name, inst.Imm)
	}
}

func disassembleLongBranch(
	inst *Instruction,
	name string,
	addr uint32,
	link LinkState,
) string {
	if inst.Op == OpBLPrefix {
		return fmt.Sprintf("%s #0x%x", name, uint32(int64(addr)+4+int64(inst.Offset)))
	}
	if target, ok := link.CallTarget(inst); ok {
		return fmt.Sprintf("%s #0x%x", name, target)
	}
	return fmt.Sprintf("%s LR, #0x%x", name, inst.Offset)
}

func regList(list uint8, extra string) string {
	var regs []string
	for r := uint8(0); r < 8; r++ {
		if list&(1<<r) != 0 {
			regs = append(regs, RegName(r))
		}
	}
	if extra != "" {
		regs = append(regs, extra)
	}
	return strings.Join(regs, ", ")
}
