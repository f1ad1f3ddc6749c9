// Package emu provides functional Thumb emulation.
package emu

// Register aliases.
const (
	RegSP uint8 = 13
	RegLR uint8 = 14
	RegPC uint8 = 15
)

// RegFile represents the Thumb register file.
// It contains R0-R15 and the current program status register.
type RegFile struct {
	// R holds R0-R15. R13 is SP, R14 is LR and R15 is PC.
	// While an instruction executes, R15 holds that instruction's address.
	R [16]uint32

	// CPSR holds the condition flags, masks, state and mode bits.
	CPSR uint32

	pcWritten bool
}

// ReadReg reads a register value.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg&0xF]
}

// WriteReg writes a value to a register. A write to PC is a branch: bit 0 is
// cleared and the automatic PC increment is suppressed.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	if reg&0xF == RegPC {
		r.SetPC(value &^ 1)
		return
	}
	r.R[reg&0xF] = value
}

// ReadOperand reads a register as an instruction operand.
// PC reads as the current instruction address plus 4.
func (r *RegFile) ReadOperand(reg uint8) uint32 {
	if reg&0xF == RegPC {
		return r.R[RegPC] + 4
	}
	return r.R[reg&0xF]
}

// SP returns the stack pointer.
func (r *RegFile) SP() uint32 { return r.R[RegSP] }

// SetSP sets the stack pointer.
func (r *RegFile) SetSP(v uint32) { r.R[RegSP] = v }

// LR returns the link register.
func (r *RegFile) LR() uint32 { return r.R[RegLR] }

// SetLR sets the link register.
func (r *RegFile) SetLR(v uint32) { r.R[RegLR] = v }

// PC returns the program counter.
func (r *RegFile) PC() uint32 { return r.R[RegPC] }

// SetPC writes the program counter and marks it as written for this cycle.
func (r *RegFile) SetPC(v uint32) {
	r.R[RegPC] = v
	r.pcWritten = true
}

// takePCWrite reports whether the PC was written since the last call and
// clears the mark.
func (r *RegFile) takePCWrite() bool {
	w := r.pcWritten
	r.pcWritten = false
	return w
}
