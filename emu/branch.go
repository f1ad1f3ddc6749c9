package emu

import "github.com/sarchlab/thumbsim/insts"

// BranchUnit implements Thumb branch operations. All targets are computed
// from R15 holding the address of the executing instruction.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// B performs an unconditional branch to PC + 4 + offset.
func (b *BranchUnit) B(offset int32) {
	b.regFile.SetPC(uint32(int64(b.regFile.PC()) + 4 + int64(offset)))
}

// BCond branches to PC + 4 + offset if cond holds. It reports whether the
// branch was taken.
func (b *BranchUnit) BCond(offset int32, cond insts.Cond) bool {
	if !b.CheckCondition(cond) {
		return false
	}
	b.B(offset)
	return true
}

// BX branches to target and selects the instruction set from bit 0.
func (b *BranchUnit) BX(target uint32) {
	b.regFile.SetFlag(StatusT, target&1 == 1)
	b.regFile.SetPC(target &^ 1)
}

// BLX saves the return address in LR, then behaves as BX.
func (b *BranchUnit) BLX(target uint32) {
	b.regFile.SetLR((b.regFile.PC() + 2) | 1)
	b.BX(target)
}

// BLPrefix executes the first half of a BL/BLX pair. offset is the high part,
// already shifted left by 12.
func (b *BranchUnit) BLPrefix(offset int32) {
	b.regFile.SetLR(uint32(int64(b.regFile.PC()) + 4 + int64(offset)))
}

// BLSuffix executes the second half of a BL/BLX pair. With exchange set the
// target is word aligned and execution continues in ARM state.
func (b *BranchUnit) BLSuffix(offset int32, exchange bool) {
	target := uint32(int64(b.regFile.LR()) + int64(offset))
	b.regFile.SetLR((b.regFile.PC() + 2) | 1)

	if exchange {
		target &^= 3
		b.regFile.SetFlag(StatusT, false)
	}
	b.regFile.SetPC(target)
}

// CheckCondition evaluates a condition code against the CPSR flags.
func (b *BranchUnit) CheckCondition(cond insts.Cond) bool {
	n := b.regFile.N()
	z := b.regFile.Z()
	c := b.regFile.C()
	v := b.regFile.V()

	switch cond {
	case insts.CondEQ:
		return z
	case insts.CondNE:
		return !z
	case insts.CondCS:
		return c
	case insts.CondCC:
		return !c
	case insts.CondMI:
		return n
	case insts.CondPL:
		return !n
	case insts.CondVS:
		return v
	case insts.CondVC:
		return !v
	case insts.CondHI:
		return c && !z
	case insts.CondLS:
		return !c || z
	case insts.CondGE:
		return n == v
	case insts.CondLT:
		return n != v
	case insts.CondGT:
		return !z && n == v
	case insts.CondLE:
		return z || n != v
	case insts.CondAL:
		return true
	default:
		return false
	}
}
