package emu

import (
	"math/bits"

	"github.com/sarchlab/thumbsim/insts"
)

// ALU implements Thumb arithmetic and logic operations and owns the
// condition flag updates.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// UpdateNZ sets N from bit 31 of result and Z from result == 0.
func (a *ALU) UpdateNZ(result uint32) {
	a.regFile.SetFlag(StatusN, result&0x80000000 != 0)
	a.regFile.SetFlag(StatusZ, result == 0)
}

// UpdateAddFlags computes op1 + op2, sets NZCV and returns the sum.
// Carry and overflow are classified by the operand sign bits.
func (a *ALU) UpdateAddFlags(op1, op2 uint32) uint32 {
	result := op1 + op2
	a.UpdateNZ(result)

	negResult := result>>31 == 1

	switch op1>>31 + op2>>31 {
	case 0:
		a.regFile.SetFlag(StatusV, negResult)
		a.regFile.SetFlag(StatusC, false)
	case 1:
		a.regFile.SetFlag(StatusV, false)
		a.regFile.SetFlag(StatusC, !negResult)
	default:
		a.regFile.SetFlag(StatusV, !negResult)
		a.regFile.SetFlag(StatusC, true)
	}

	return result
}

// UpdateSubFlags computes op1 - op2 as op1 + (-op2), sets NZCV and returns
// the difference.
func (a *ALU) UpdateSubFlags(op1, op2 uint32) uint32 {
	return a.UpdateAddFlags(op1, -op2)
}

// UpdateShiftCarry sets C to the last bit shifted out of operand.
// An amount of 0 leaves C unchanged.
func (a *ALU) UpdateShiftCarry(operand, amount uint32, kind insts.ShiftType) {
	if amount == 0 {
		return
	}

	var carry uint32
	switch kind {
	case insts.ShiftLSL:
		switch {
		case amount < 32:
			carry = operand >> (32 - amount)
		case amount == 32:
			carry = operand
		}
	case insts.ShiftLSR:
		switch {
		case amount < 32:
			carry = operand >> (amount - 1)
		case amount == 32:
			carry = operand >> 31
		}
	case insts.ShiftASR:
		if amount < 32 {
			carry = operand >> (amount - 1)
		} else {
			carry = operand >> 31
		}
	case insts.ShiftROR:
		carry = operand >> ((amount - 1) & 31)
	}

	a.regFile.SetFlag(StatusC, carry&1 == 1)
}

// Shift applies a barrel shifter operation. Amounts of 32 or more follow the
// register-specified rules: LSL/LSR give 0, ASR fills with the sign bit and
// ROR rotates by amount mod 32.
func Shift(value, amount uint32, kind insts.ShiftType) uint32 {
	switch kind {
	case insts.ShiftLSL:
		if amount >= 32 {
			return 0
		}
		return value << amount
	case insts.ShiftLSR:
		if amount >= 32 {
			return 0
		}
		return value >> amount
	case insts.ShiftASR:
		if amount >= 32 {
			amount = 31
		}
		return uint32(int32(value) >> amount)
	default:
		return bits.RotateLeft32(value, -int(amount&31))
	}
}

// ShiftWithFlags shifts value, updates C from the shifter and NZ from the
// result.
func (a *ALU) ShiftWithFlags(value, amount uint32, kind insts.ShiftType) uint32 {
	result := Shift(value, amount, kind)
	a.UpdateShiftCarry(value, amount, kind)
	a.UpdateNZ(result)
	return result
}

// ADC computes op1 + op2 + C with flags.
func (a *ALU) ADC(op1, op2 uint32) uint32 {
	var carry uint32
	if a.regFile.C() {
		carry = 1
	}
	return a.UpdateAddFlags(op1, op2+carry)
}

// SBC computes op1 - op2 - NOT(C) with flags.
func (a *ALU) SBC(op1, op2 uint32) uint32 {
	var borrow uint32 = 1
	if a.regFile.C() {
		borrow = 0
	}
	return a.UpdateSubFlags(op1, op2+borrow)
}

// Logic sets NZ from result and returns it. C and V are unchanged.
func (a *ALU) Logic(result uint32) uint32 {
	a.UpdateNZ(result)
	return result
}
