package emu

import "math/bits"

// LoadStoreUnit implements Thumb load and store operations.
// Push and pop go to stack memory, everything else, SP-relative LDR/STR
// included, to data memory.
type LoadStoreUnit struct {
	regFile *RegFile
	data    *Memory
	stack   *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memories.
func NewLoadStoreUnit(regFile *RegFile, data, stack *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		data:    data,
		stack:   stack,
	}
}

// Load performs rd = data[addr] with the given size and signedness.
func (lsu *LoadStoreUnit) Load(rd uint8, addr uint32, size Size, signed bool) {
	v := lsu.data.Load(addr, size, signed, lsu.regFile.BigEndian())
	lsu.regFile.WriteReg(rd, v)
}

// Store performs data[addr] = rd with the given size.
func (lsu *LoadStoreUnit) Store(rd uint8, addr uint32, size Size) {
	lsu.data.Store(addr, lsu.regFile.ReadReg(rd), size, lsu.regFile.BigEndian())
}

// LoadSP performs rd = data[SP + offset].
func (lsu *LoadStoreUnit) LoadSP(rd uint8, offset uint32) {
	lsu.Load(rd, lsu.regFile.SP()+offset, SizeWord, false)
}

// StoreSP performs data[SP + offset] = rd.
func (lsu *LoadStoreUnit) StoreSP(rd uint8, offset uint32) {
	lsu.Store(rd, lsu.regFile.SP()+offset, SizeWord)
}

// Push stores the listed low registers in ascending order, then LR if
// withLR is set. The lowest register ends at the lowest address and SP
// points at it afterwards.
func (lsu *LoadStoreUnit) Push(list uint8, withLR bool) {
	n := uint32(bits.OnesCount8(list))
	if withLR {
		n++
	}

	start := lsu.regFile.SP() - 4*n
	addr := start
	for r := uint8(0); r < 8; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		lsu.stack.Write(addr, lsu.regFile.ReadReg(r))
		addr += 4
	}
	if withLR {
		lsu.stack.Write(addr, lsu.regFile.LR())
	}

	lsu.regFile.SetSP(start)
}

// Pop loads the listed low registers in ascending order, then PC if withPC
// is set. Each read advances SP by 4. A popped PC selects the instruction
// set from bit 0.
func (lsu *LoadStoreUnit) Pop(list uint8, withPC bool) {
	for r := uint8(0); r < 8; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		lsu.regFile.WriteReg(r, lsu.stack.Read(lsu.regFile.SP()))
		lsu.regFile.SetSP(lsu.regFile.SP() + 4)
	}

	if withPC {
		target := lsu.stack.Read(lsu.regFile.SP())
		lsu.regFile.SetSP(lsu.regFile.SP() + 4)
		lsu.regFile.SetFlag(StatusT, target&1 == 1)
		lsu.regFile.SetPC(target &^ 1)
	}
}

// STMIA stores the listed registers to ascending addresses from rn, then
// writes the end address back to rn.
func (lsu *LoadStoreUnit) STMIA(rn uint8, list uint8) {
	addr := lsu.regFile.ReadReg(rn)
	for r := uint8(0); r < 8; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		lsu.Store(r, addr, SizeWord)
		addr += 4
	}
	lsu.regFile.WriteReg(rn, addr)
}

// LDMIA loads the listed registers from ascending addresses starting at rn.
// rn receives the end address unless it was itself loaded.
func (lsu *LoadStoreUnit) LDMIA(rn uint8, list uint8) {
	addr := lsu.regFile.ReadReg(rn)
	for r := uint8(0); r < 8; r++ {
		if list&(1<<r) == 0 {
			continue
		}
		lsu.Load(r, addr, SizeWord, false)
		addr += 4
	}
	if list&(1<<rn) == 0 {
		lsu.regFile.WriteReg(rn, addr)
	}
}
