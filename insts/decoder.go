package insts

// Op represents a Thumb instruction form.
type Op uint16

// Thumb instruction forms.
const (
	OpUndefined Op = iota

	// Shift by immediate.
	OpLSLImm
	OpLSRImm
	OpASRImm

	// Add/subtract with three operands.
	OpADDReg
	OpSUBReg
	OpADDImm3
	OpSUBImm3

	// 8-bit immediate.
	OpMOVImm
	OpCMPImm
	OpADDImm8
	OpSUBImm8

	// Register ALU operations, in encoding order.
	OpAND
	OpEOR
	OpLSLReg
	OpLSRReg
	OpASRReg
	OpADC
	OpSBC
	OpROR
	OpTST
	OpNEG
	OpCMPReg
	OpCMN
	OpORR
	OpMUL
	OpBIC
	OpMVN

	// High register operations and branch exchange.
	OpCPY
	OpADDLoHi
	OpADDHiLo
	OpADDHiHi
	OpMOVLoHi
	OpMOVHiLo
	OpMOVHiHi
	OpCMPLoHi
	OpCMPHiLo
	OpCMPHiHi
	OpBX
	OpBLXReg

	// PC-relative load.
	OpLDRPC

	// Load/store with register offset.
	OpSTRReg
	OpSTRHReg
	OpSTRBReg
	OpLDRSB
	OpLDRReg
	OpLDRHReg
	OpLDRBReg
	OpLDRSH

	// Load/store with immediate offset.
	OpSTRImm
	OpLDRImm
	OpSTRBImm
	OpLDRBImm
	OpSTRHImm
	OpLDRHImm

	// SP-relative load/store.
	OpSTRSP
	OpLDRSP

	// Address generation.
	OpADR
	OpADDSPRel

	// Miscellaneous.
	OpADDSP
	OpSUBSP
	OpSXTH
	OpSXTB
	OpUXTH
	OpUXTB
	OpREV
	OpREV16
	OpREVSH
	OpPUSH
	OpPOP
	OpSETEND
	OpCPSIE
	OpCPSID
	OpBKPT

	// Load/store multiple.
	OpSTMIA
	OpLDMIA

	// Branches and software interrupt.
	OpBCond
	OpSWI
	OpB
	OpBLXSuffix
	OpBLPrefix
	OpBLSuffix

	numOps
)

var opNames = [numOps]string{
	OpUndefined: "UNDEFINED",
	OpLSLImm:    "LSL", OpLSRImm: "LSR", OpASRImm: "ASR",
	OpADDReg: "ADD", OpSUBReg: "SUB", OpADDImm3: "ADD", OpSUBImm3: "SUB",
	OpMOVImm: "MOV", OpCMPImm: "CMP", OpADDImm8: "ADD", OpSUBImm8: "SUB",
	OpAND: "AND", OpEOR: "EOR", OpLSLReg: "LSL", OpLSRReg: "LSR",
	OpASRReg: "ASR", OpADC: "ADC", OpSBC: "SBC", OpROR: "ROR",
	OpTST: "TST", OpNEG: "NEG", OpCMPReg: "CMP", OpCMN: "CMN",
	OpORR: "ORR", OpMUL: "MUL", OpBIC: "BIC", OpMVN: "MVN",
	OpCPY:     "CPY",
	OpADDLoHi: "ADD", OpADDHiLo: "ADD", OpADDHiHi: "ADD",
	OpMOVLoHi: "MOV", OpMOVHiLo: "MOV", OpMOVHiHi: "MOV",
	OpCMPLoHi: "CMP", OpCMPHiLo: "CMP", OpCMPHiHi: "CMP",
	OpBX: "BX", OpBLXReg: "BLX",
	OpLDRPC:  "LDR",
	OpSTRReg: "STR", OpSTRHReg: "STRH", OpSTRBReg: "STRB", OpLDRSB: "LDRSB",
	OpLDRReg: "LDR", OpLDRHReg: "LDRH", OpLDRBReg: "LDRB", OpLDRSH: "LDRSH",
	OpSTRImm: "STR", OpLDRImm: "LDR", OpSTRBImm: "STRB", OpLDRBImm: "LDRB",
	OpSTRHImm: "STRH", OpLDRHImm: "LDRH",
	OpSTRSP: "STR", OpLDRSP: "LDR",
	OpADR: "ADD", OpADDSPRel: "ADD",
	OpADDSP: "ADD", OpSUBSP: "SUB",
	OpSXTH: "SXTH", OpSXTB: "SXTB", OpUXTH: "UXTH", OpUXTB: "UXTB",
	OpREV: "REV", OpREV16: "REV16", OpREVSH: "REVSH",
	OpPUSH: "PUSH", OpPOP: "POP",
	OpSETEND: "SETEND", OpCPSIE: "CPSIE", OpCPSID: "CPSID", OpBKPT: "BKPT",
	OpSTMIA: "STMIA", OpLDMIA: "LDMIA",
	OpBCond: "B", OpSWI: "SWI", OpB: "B",
	OpBLXSuffix: "BLX", OpBLPrefix: "BL.PREFIX", OpBLSuffix: "BL",
}

// String returns the base mnemonic of the operation.
func (op Op) String() string {
	if op >= numOps {
		return "UNDEFINED"
	}
	return opNames[op]
}

// Format represents a Thumb instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown      Format = iota
	FormatShiftImm            // Move shifted register
	FormatAddSub              // Add/subtract register or imm3
	FormatImm8                // Move/compare/add/subtract imm8
	FormatALU                 // Register ALU operations
	FormatHiReg               // High register operations, BX/BLX
	FormatLoadPC              // PC-relative load
	FormatLoadStoreReg        // Load/store with register offset
	FormatLoadStoreImm        // Load/store with immediate offset
	FormatLoadStoreSP         // SP-relative load/store
	FormatAddress             // Load address from PC or SP
	FormatAdjustSP            // Add/subtract offset to SP
	FormatExtend              // Sign/zero extend
	FormatReverse             // Byte reverse
	FormatPushPop             // Push/pop registers
	FormatSystem              // SETEND, CPS, BKPT, SWI
	FormatMultiple            // Load/store multiple
	FormatBranchCond          // Conditional branch
	FormatBranch              // Unconditional branch
	FormatLongBranch          // BL/BLX halves
)

// Cond represents a condition code.
type Cond uint8

// Condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always (unconditional)
)

var condNames = [...]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL",
}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return "NV"
}

// ShiftType represents a barrel shifter operation.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftLSR ShiftType = 0b01 // Logical shift right
	ShiftASR ShiftType = 0b10 // Arithmetic shift right
	ShiftROR ShiftType = 0b11 // Rotate right
)

// CPS interrupt mask selectors carried in Imm.
const (
	CPSFlagA = 0b100
	CPSFlagI = 0b010
	CPSFlagF = 0b001
)

// Instruction represents a decoded Thumb instruction.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Encoding format
	Word   uint16 // Raw instruction word

	// Nibbles: F0 = bits[15:12], F1 = bits[11:8], F2 = bits[7:4], F3 = bits[3:0].
	F0, F1, F2, F3 uint8

	Rd uint8 // Destination (Ld/Hd), also the source for stores
	Rn uint8 // Base or first operand (Ln/Hn)
	Rm uint8 // Second operand or offset register (Lm/Hm)

	// Imm is the zero-extended immediate. Offsets are already scaled to
	// bytes where the encoding scales them.
	Imm uint32

	// Offset is the sign-extended branch offset in bytes. For the BL/BLX
	// prefix it is the high part, already shifted left by 12.
	Offset int32

	Cond Cond

	RegList   uint8 // R0-R7 bitmap for PUSH/POP/STMIA/LDMIA
	ExtraReg  bool  // PUSH includes LR, POP includes PC
	BigEndian bool  // SETEND BE
}

// Decoder decodes Thumb machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new Thumb instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 16-bit Thumb instruction word.
func (d *Decoder) Decode(word uint16) *Instruction {
	inst := &Instruction{
		Op:     OpUndefined,
		Format: FormatUnknown,
		Word:   word,
		F0:     uint8(word>>12) & 0xF,
		F1:     uint8(word>>8) & 0xF,
		F2:     uint8(word>>4) & 0xF,
		F3:     uint8(word) & 0xF,
	}

	switch inst.F0 {
	case 0x0:
		d.decodeShiftImm(inst)
	case 0x1:
		d.decodeGroup1(inst)
	case 0x2, 0x3:
		d.decodeImm8(inst)
	case 0x4:
		d.decodeGroup4(inst)
	case 0x5:
		d.decodeLoadStoreReg(inst)
	case 0x6, 0x7, 0x8:
		d.decodeLoadStoreImm(inst)
	case 0x9:
		d.decodeLoadStoreSP(inst)
	case 0xA:
		d.decodeAddress(inst)
	case 0xB:
		d.decodeMisc(inst)
	case 0xC:
		d.decodeMultiple(inst)
	case 0xD:
		d.decodeGroup13(inst)
	case 0xE, 0xF:
		d.decodeBranch(inst)
	}

	return inst
}

// Field helpers. The names follow the bit ranges they cover.

// bits[2:0]
func ld(inst *Instruction) uint8 { return inst.F3 & 7 }

// bits[5:3]
func lm(inst *Instruction) uint8 { return ((inst.F2 & 3) << 1) | (inst.F3 >> 3) }

// bits[8:6]
func bits8to6(inst *Instruction) uint8 { return ((inst.F1 & 1) << 2) | (inst.F2 >> 2) }

// bits[10:6]
func imm5(inst *Instruction) uint32 {
	return uint32((inst.F1&7)<<2) | uint32(inst.F2>>2)
}

// bits[7:0]
func imm8(inst *Instruction) uint32 { return uint32(inst.F2)<<4 | uint32(inst.F3) }

// bits[10:8]
func bits10to8(inst *Instruction) uint8 { return inst.F1 & 7 }

func bit11(inst *Instruction) bool { return inst.F1&0x8 != 0 }

// decodeShiftImm decodes LSL/LSR by immediate (f0 = 0).
// Format: 000 | op | imm5 | Lm | Ld
func (d *Decoder) decodeShiftImm(inst *Instruction) {
	inst.Format = FormatShiftImm
	inst.Rd = ld(inst)
	inst.Rm = lm(inst)
	inst.Imm = imm5(inst)

	if !bit11(inst) {
		inst.Op = OpLSLImm
		return
	}

	inst.Op = OpLSRImm
	if inst.Imm == 0 {
		inst.Imm = 32
	}
}

// decodeGroup1 decodes ASR by immediate and the add/subtract forms (f0 = 1).
func (d *Decoder) decodeGroup1(inst *Instruction) {
	if !bit11(inst) {
		inst.Format = FormatShiftImm
		inst.Op = OpASRImm
		inst.Rd = ld(inst)
		inst.Rm = lm(inst)
		inst.Imm = imm5(inst)
		if inst.Imm == 0 {
			inst.Imm = 32
		}
		return
	}

	// 00011 | I | op | Rm/imm3 | Ln | Ld
	inst.Format = FormatAddSub
	inst.Rd = ld(inst)
	inst.Rn = lm(inst)

	immediate := (inst.F1>>2)&1 == 1
	sub := (inst.F1>>1)&1 == 1

	if immediate {
		inst.Imm = uint32(bits8to6(inst))
		if sub {
			inst.Op = OpSUBImm3
		} else {
			inst.Op = OpADDImm3
		}
		return
	}

	inst.Rm = bits8to6(inst)
	if sub {
		inst.Op = OpSUBReg
	} else {
		inst.Op = OpADDReg
	}
}

// decodeImm8 decodes MOV/CMP/ADD/SUB with an 8-bit immediate (f0 = 2, 3).
// Format: 001 | op | Ld | imm8
func (d *Decoder) decodeImm8(inst *Instruction) {
	inst.Format = FormatImm8
	inst.Rd = bits10to8(inst)
	inst.Rn = inst.Rd
	inst.Imm = imm8(inst)

	switch {
	case inst.F0 == 2 && !bit11(inst):
		inst.Op = OpMOVImm
	case inst.F0 == 2:
		inst.Op = OpCMPImm
	case !bit11(inst):
		inst.Op = OpADDImm8
	default:
		inst.Op = OpSUBImm8
	}
}

// decodeGroup4 decodes the ALU, high register, branch exchange and
// PC-relative load forms (f0 = 4).
func (d *Decoder) decodeGroup4(inst *Instruction) {
	f1, sel := inst.F1, inst.F2>>2

	switch {
	case f1 <= 3:
		// 010000 | op | Lm | Ld
		inst.Format = FormatALU
		inst.Op = OpAND + Op(f1<<2|sel)
		inst.Rd = ld(inst)
		inst.Rn = inst.Rd
		inst.Rm = lm(inst)

	case f1 == 6 && sel == 0:
		inst.Format = FormatHiReg
		inst.Op = OpCPY
		inst.Rd = ld(inst)
		inst.Rm = lm(inst)

	case (f1 == 4 || f1 == 6) && sel != 0:
		d.decodeHiAddMov(inst, f1 == 6, sel)

	case f1 == 5 && sel != 0:
		d.decodeHiCompare(inst, sel)

	case f1 == 7:
		// 010001110 | Rm | 000 and 010001111 | Rm | 000
		inst.Format = FormatHiReg
		inst.Rm = ((inst.F2 & 7) << 1) | (inst.F3 >> 3)
		if inst.F2&0x8 == 0 {
			inst.Op = OpBX
		} else {
			inst.Op = OpBLXReg
		}

	case f1 >= 8:
		// 01001 | Ld | imm8
		inst.Format = FormatLoadPC
		inst.Op = OpLDRPC
		inst.Rd = bits10to8(inst)
		inst.Imm = imm8(inst) << 2
	}
}

// hiRegs resolves the destination and source register numbers for the
// high register forms. sel is bits[7:6]: 1 = L,H  2 = H,L  3 = H,H.
func hiRegs(inst *Instruction, sel uint8) (dst, src uint8) {
	dst = ld(inst)
	src = lm(inst)
	if sel&0b10 != 0 {
		dst += 8
	}
	if sel&0b01 != 0 {
		src += 8
	}
	return dst, src
}

func (d *Decoder) decodeHiAddMov(inst *Instruction, mov bool, sel uint8) {
	inst.Format = FormatHiReg
	inst.Rd, inst.Rm = hiRegs(inst, sel)
	inst.Rn = inst.Rd

	base := OpADDLoHi
	if mov {
		base = OpMOVLoHi
	}
	inst.Op = base + Op(sel-1)
}

func (d *Decoder) decodeHiCompare(inst *Instruction, sel uint8) {
	inst.Format = FormatHiReg
	inst.Rn, inst.Rm = hiRegs(inst, sel)
	inst.Op = OpCMPLoHi + Op(sel-1)
}

// decodeLoadStoreReg decodes load/store with register offset (f0 = 5).
// Format: 0101 | op | Lm | Ln | Ld
func (d *Decoder) decodeLoadStoreReg(inst *Instruction) {
	inst.Format = FormatLoadStoreReg
	inst.Rd = ld(inst)
	inst.Rn = lm(inst)
	inst.Rm = bits8to6(inst)

	ops := [2][4]Op{
		{OpSTRReg, OpSTRHReg, OpSTRBReg, OpLDRSB},
		{OpLDRReg, OpLDRHReg, OpLDRBReg, OpLDRSH},
	}
	load := 0
	if bit11(inst) {
		load = 1
	}
	inst.Op = ops[load][(inst.F1>>1)&3]
}

// decodeLoadStoreImm decodes load/store with a 5-bit immediate offset
// (f0 = 6 word, 7 byte, 8 halfword).
func (d *Decoder) decodeLoadStoreImm(inst *Instruction) {
	inst.Format = FormatLoadStoreImm
	inst.Rd = ld(inst)
	inst.Rn = lm(inst)
	inst.Imm = imm5(inst)

	load := bit11(inst)
	switch inst.F0 {
	case 0x6:
		inst.Imm <<= 2
		inst.Op = pick(load, OpLDRImm, OpSTRImm)
	case 0x7:
		inst.Op = pick(load, OpLDRBImm, OpSTRBImm)
	default:
		inst.Imm <<= 1
		inst.Op = pick(load, OpLDRHImm, OpSTRHImm)
	}
}

// decodeLoadStoreSP decodes SP-relative load/store (f0 = 9).
func (d *Decoder) decodeLoadStoreSP(inst *Instruction) {
	inst.Format = FormatLoadStoreSP
	inst.Rd = bits10to8(inst)
	inst.Rn = 13
	inst.Imm = imm8(inst) << 2
	inst.Op = pick(bit11(inst), OpLDRSP, OpSTRSP)
}

// decodeAddress decodes ADD Ld, PC/SP, #imm8*4 (f0 = 10).
func (d *Decoder) decodeAddress(inst *Instruction) {
	inst.Format = FormatAddress
	inst.Rd = bits10to8(inst)
	inst.Imm = imm8(inst) << 2
	if bit11(inst) {
		inst.Op = OpADDSPRel
		inst.Rn = 13
	} else {
		inst.Op = OpADR
		inst.Rn = 15
	}
}

// decodeMisc decodes the miscellaneous group (f0 = 11).
func (d *Decoder) decodeMisc(inst *Instruction) {
	f1, f2 := inst.F1, inst.F2

	switch {
	case f1 == 0x0:
		// 10110000 | S | imm7
		inst.Format = FormatAdjustSP
		inst.Rd = 13
		inst.Imm = (imm8(inst) & 0x7F) << 2
		inst.Op = pick(f2&0x8 != 0, OpSUBSP, OpADDSP)

	case f1 == 0x2:
		inst.Format = FormatExtend
		inst.Rd = ld(inst)
		inst.Rm = lm(inst)
		inst.Op = [4]Op{OpSXTH, OpSXTB, OpUXTH, OpUXTB}[f2>>2]

	case f1 == 0xA:
		if f2>>2 == 2 {
			return
		}
		inst.Format = FormatReverse
		inst.Rd = ld(inst)
		inst.Rm = lm(inst)
		inst.Op = [4]Op{OpREV, OpREV16, OpUndefined, OpREVSH}[f2>>2]

	case (f1>>1)&3 == 2:
		// 1011 | L | 10 | R | list
		inst.Format = FormatPushPop
		inst.RegList = uint8(imm8(inst))
		inst.ExtraReg = f1&1 == 1
		inst.Op = pick(f1&0x8 != 0, OpPOP, OpPUSH)

	case f1 == 0x6 && f2 == 0x5:
		inst.Format = FormatSystem
		inst.Op = OpSETEND
		inst.BigEndian = inst.F3&0x8 != 0

	case f1 == 0x6 && f2 >= 0x6:
		inst.Format = FormatSystem
		inst.Imm = uint32(inst.F3 & 7)
		inst.Op = pick(f2&1 == 1, OpCPSID, OpCPSIE)

	case f1 == 0xE:
		inst.Format = FormatSystem
		inst.Op = OpBKPT
		inst.Imm = imm8(inst)
	}
}

// decodeMultiple decodes STMIA/LDMIA (f0 = 12).
func (d *Decoder) decodeMultiple(inst *Instruction) {
	inst.Format = FormatMultiple
	inst.Rn = bits10to8(inst)
	inst.RegList = uint8(imm8(inst))
	inst.Op = pick(bit11(inst), OpLDMIA, OpSTMIA)
}

// decodeGroup13 decodes conditional branch and SWI (f0 = 13).
func (d *Decoder) decodeGroup13(inst *Instruction) {
	switch {
	case inst.F1 < 0xE:
		inst.Format = FormatBranchCond
		inst.Op = OpBCond
		inst.Cond = Cond(inst.F1)
		inst.Offset = int32(int8(imm8(inst))) << 1
	case inst.F1 == 0xF:
		inst.Format = FormatSystem
		inst.Op = OpSWI
		inst.Imm = imm8(inst)
	}
}

// decodeBranch decodes B and the BL/BLX halves (f0 = 14, 15).
func (d *Decoder) decodeBranch(inst *Instruction) {
	off11 := uint32(inst.Word) & 0x7FF

	switch {
	case inst.F0 == 0xE && !bit11(inst):
		inst.Format = FormatBranch
		inst.Op = OpB
		inst.Offset = signExtend11(off11) << 1
	case inst.F0 == 0xE:
		inst.Format = FormatLongBranch
		inst.Op = OpBLXSuffix
		inst.Offset = int32(off11 << 1)
	case !bit11(inst):
		inst.Format = FormatLongBranch
		inst.Op = OpBLPrefix
		inst.Offset = signExtend11(off11) << 12
	default:
		inst.Format = FormatLongBranch
		inst.Op = OpBLSuffix
		inst.Offset = int32(off11 << 1)
	}
}

func signExtend11(v uint32) int32 {
	return int32(v<<21) >> 21
}

func pick(cond bool, ifTrue, ifFalse Op) Op {
	if cond {
		return ifTrue
	}
	return ifFalse
}
